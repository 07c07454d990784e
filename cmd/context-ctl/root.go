/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	struct_logger "github.com/SENERGY-Platform/go-service-base/struct-logger"
	handler_database "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/database"
	handler_database_schema "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/database/schema"
	handler_jobs "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/jobs"
	handler_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/relocation"
	handler_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/repair"
	handler_shards "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/shards"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const name = "context-ctl"

type ctl struct {
	configPath string
	stdout     io.Writer
	stderr     io.Writer
	srv        *service.Service
	closers    []func()
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &ctl{stdout: stdout, stderr: stderr}
	defer c.close()
	rootCmd := newRootCommand(c)
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(c *ctl) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          name,
		Short:        "Administer contexts, pools and tenant data",
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return c.open(cmd.Context())
		},
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetOut(c.stdout)
	rootCmd.SetErr(c.stderr)
	rootCmd.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "configuration file")
	rootCmd.AddCommand(
		newPoolCommand(c),
		newContextCommand(c),
		newGroupCommand(c),
		newUserCommand(c),
		newEventCommand(c),
		newRepairCommand(c),
	)
	return rootCmd
}

func (c *ctl) open(ctx context.Context) error {
	config, err := configuration.New(c.configPath)
	if err != nil {
		return err
	}
	logger := struct_logger.New(config.Logger, c.stderr, "", name)
	configDialect, err := dialect.Get(config.ConfigDatabase.Driver)
	if err != nil {
		return err
	}
	helper_sql_db.InitLogger(logger)
	sqlDB, err := handler_database.NewSQLDatabase(config.ConfigDatabase, config.SQL)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, func() { _ = sqlDB.Close() })
	databaseHdl := handler_database.New(sqlDB, configDialect)
	if err = databaseHdl.Migrate(ctx, handler_database_schema.Init); err != nil {
		return err
	}
	handler_shards.InitLogger(logger)
	shardsHdl := handler_shards.New(config.SQL, config.Shards.Timeout)
	c.closers = append(c.closers, func() { _ = shardsHdl.Close() })
	handler_relocation.InitLogger(logger)
	handler_repair.InitLogger(logger)
	handler_jobs.InitLogger(logger)
	ccHandler := ccjh.New(config.Jobs.BufferSize)
	if err = ccHandler.RunAsync(config.Jobs.MaxConcurrent, config.Jobs.RunInterval); err != nil {
		return err
	}
	jobsCtx, cf := context.WithCancel(context.Background())
	jobsHdl := handler_jobs.New(jobsCtx, ccHandler)
	c.closers = append(c.closers, func() {
		cf()
		ccHandler.Stop()
		jobsHdl.Stop()
	})
	metrics, err := service.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	service.InitLogger(logger)
	c.srv = service.New(
		databaseHdl,
		shardsHdl,
		handler_relocation.New(config.Relocation),
		handler_repair.New(config.Repair, handler_repair.DefaultTasks()...),
		jobsHdl,
		metrics,
		config.Service,
	)
	return nil
}

func (c *ctl) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func (c *ctl) print(v any) error {
	encoder := yaml.NewEncoder(c.stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id '%s'", arg)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseTime(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, errors.New("invalid timestamp '" + v + "', expected RFC3339")
	}
	return &t, nil
}
