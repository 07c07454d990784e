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
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	"github.com/spf13/cobra"
)

func newPoolCommand(c *ctl) *cobra.Command {
	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage database pools",
	}
	poolCmd.AddCommand(
		newPoolRegisterCommand(c),
		&cobra.Command{
			Use:   "list",
			Short: "List pools",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				pools, err := c.srv.ListPools(cmd.Context())
				if err != nil {
					return err
				}
				return c.print(pools)
			},
		},
		&cobra.Command{
			Use:   "unregister <id>",
			Short: "Unregister a pool without schemas",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return c.srv.UnregisterPool(cmd.Context(), id)
			},
		},
		&cobra.Command{
			Use:   "schemas <id>",
			Short: "List the schemas of a pool",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				schemas, err := c.srv.ListSchemas(cmd.Context(), id)
				if err != nil {
					return err
				}
				return c.print(schemas)
			},
		},
	)
	return poolCmd
}

func newPoolRegisterCommand(c *ctl) *cobra.Command {
	var pool models_pool.Pool
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a database pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.srv.RegisterPool(cmd.Context(), pool)
			if err != nil {
				return err
			}
			pool, err := c.srv.GetPool(cmd.Context(), id)
			if err != nil {
				return err
			}
			return c.print(pool)
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&pool.ID, "id", 0, "pool id, allocated if zero")
	flags.StringVar(&pool.Name, "name", "", "unique pool name")
	flags.StringVar(&pool.Driver, "driver", models_pool.DriverMySQL, "database driver (mysql, postgres, sqlite)")
	flags.StringVar(&pool.Address, "address", "", "host:port, postgres dsn or sqlite directory")
	flags.StringVar(&pool.User, "user", "", "database user")
	flags.StringVar(&pool.Password, "password", "", "database password")
	flags.StringVar(&pool.Database, "database", "", "postgres database")
	flags.IntVar(&pool.MaxContexts, "max-contexts", 0, "maximum number of contexts, unlimited if zero")
	flags.IntVar(&pool.ContextsPerSchema, "contexts-per-schema", 0, "contexts per schema, unlimited if zero")
	flags.IntVar(&pool.Weight, "weight", 1, "placement weight")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}
