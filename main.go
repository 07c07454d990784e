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
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	sb_config_hdl "github.com/SENERGY-Platform/go-service-base/config-hdl"
	srv_info_hdl "github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
	struct_logger "github.com/SENERGY-Platform/go-service-base/struct-logger"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/api"
	handler_database "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/database"
	handler_database_schema "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/database/schema"
	handler_jobs "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/jobs"
	handler_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/relocation"
	handler_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/repair"
	handler_shards "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/shards"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_os_signal "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/os_signal"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/configuration"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var version string

func main() {
	ec := 0
	defer func() {
		os.Exit(ec)
	}()

	srvInfoHdl := srv_info_hdl.New("context-manager", version)

	configuration.ParseFlags()

	config, err := configuration.New(configuration.ConfPath)
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		ec = 1
		return
	}

	logger := struct_logger.New(config.Logger, os.Stderr, "", srvInfoHdl.Name())

	logger.Info("starting service", slog_attr.VersionKey, srvInfoHdl.Version(), slog_attr.ConfigValuesKey, sb_config_hdl.StructToMap(config, true))

	ctx, cf := context.WithCancel(context.Background())

	configDialect, err := dialect.Get(config.ConfigDatabase.Driver)
	if err != nil {
		logger.Error("invalid config database driver", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	helper_sql_db.InitLogger(logger)
	sqlDB, err := handler_database.NewSQLDatabase(config.ConfigDatabase, config.SQL)
	if err != nil {
		logger.Error("creating config database connection failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}
	defer sqlDB.Close()

	ctxWt, cf2 := context.WithTimeout(ctx, config.ConfigDatabase.Timeout)
	err = helper_sql_db.WaitForDB(ctxWt, sqlDB, time.Second*5)
	cf2()
	if err != nil {
		logger.Error("config database not available", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	databaseHdl := handler_database.New(sqlDB, configDialect)
	err = databaseHdl.Migrate(ctx, handler_database_schema.Init)
	if err != nil {
		logger.Error("database migration failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	handler_shards.InitLogger(logger)
	shardsHdl := handler_shards.New(config.SQL, config.Shards.Timeout)
	defer shardsHdl.Close()

	handler_relocation.InitLogger(logger)
	relocationEngine := handler_relocation.New(config.Relocation)

	handler_repair.InitLogger(logger)
	repairHdl := handler_repair.New(config.Repair, handler_repair.DefaultTasks()...)

	handler_jobs.InitLogger(logger)
	ccHandler := ccjh.New(config.Jobs.BufferSize)
	jobsHdl := handler_jobs.New(ctx, ccHandler)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := service.NewMetrics(registry)
	if err != nil {
		logger.Error("registering metrics failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	service.InitLogger(logger)
	srv := service.New(databaseHdl, shardsHdl, relocationEngine, repairHdl, jobsHdl, metrics, config.Service)

	if config.PoolsPath != "" {
		if err = srv.SeedPools(ctx, config.PoolsPath); err != nil {
			logger.Error("seeding pools failed", slog_attr.ErrorKey, err)
			ec = 1
			return
		}
	}

	httpApi, err := api.New(
		srv,
		srvInfoHdl,
		registry,
		logger,
		config.HttpAccessLog,
	)
	if err != nil {
		logger.Error("creating http engine failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	httpServer := &http.Server{Handler: httpApi.Handler()}
	serverListener, err := net.Listen("tcp", ":"+strconv.FormatInt(int64(config.ServerPort), 10))
	if err != nil {
		logger.Error("creating server listener failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	go func() {
		helper_os_signal.Wait(ctx, logger, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
		cf()
	}()

	wg := &sync.WaitGroup{}

	if err = ccHandler.RunAsync(config.Jobs.MaxConcurrent, config.Jobs.RunInterval); err != nil {
		logger.Error("starting job handler failed", slog_attr.ErrorKey, err)
		ec = 1
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		jobsHdl.RunPurge(ctx, config.Jobs.PurgeInterval, config.Jobs.MaxAge)
	}()

	go func() {
		logger.Info("starting http server")
		if err := httpServer.Serve(serverListener); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("starting server failed", slog_attr.ErrorKey, err)
			ec = 1
		}
		cf()
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		logger.Info("stopping http server")
		ctxWt, cf2 := context.WithTimeout(context.Background(), time.Second*5)
		defer cf2()
		if err := httpServer.Shutdown(ctxWt); err != nil {
			logger.Error("stopping server failed", slog_attr.ErrorKey, err)
			ec = 1
		} else {
			logger.Info("http server stopped")
		}
		ccHandler.Stop()
		jobsHdl.Stop()
		logger.Info("jobs stopped")
	}()

	wg.Wait()
}
