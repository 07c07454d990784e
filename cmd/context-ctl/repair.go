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
	models_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/repair"
	"github.com/spf13/cobra"
)

func newRepairCommand(c *ctl) *cobra.Command {
	repairCmd := &cobra.Command{
		Use:   "repair",
		Short: "Run repair tasks on tenant schemas",
	}
	var req models_repair.Request
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run repair tasks, all tasks on all pools by default",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := c.srv.Repair(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.print(report)
		},
	}
	runCmd.Flags().StringSliceVar(&req.Tasks, "task", nil, "task name")
	runCmd.Flags().Int64SliceVar(&req.PoolIDs, "pool", nil, "pool id")
	runCmd.Flags().BoolVar(&req.Force, "force", false, "run tasks already recorded as successful")
	repairCmd.AddCommand(
		&cobra.Command{
			Use:   "tasks",
			Short: "List repair tasks",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.print(c.srv.RepairTasks(cmd.Context()))
			},
		},
		runCmd,
	)
	return repairCmd
}
