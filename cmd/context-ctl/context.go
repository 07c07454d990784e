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
	"errors"

	models_context "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/context"
	"github.com/spf13/cobra"
)

func newContextCommand(c *ctl) *cobra.Command {
	contextCmd := &cobra.Command{
		Use:   "context",
		Short: "Manage contexts",
	}
	contextCmd.AddCommand(
		newContextCreateCommand(c),
		newContextListCommand(c),
		&cobra.Command{
			Use:   "get <cid>",
			Short: "Show a context",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := parseID(args[0])
				if err != nil {
					return err
				}
				ctx, err := c.srv.GetContext(cmd.Context(), cid)
				if err != nil {
					return err
				}
				return c.print(ctx)
			},
		},
		newContextChangeCommand(c),
		newContextEnableCommand(c),
		newContextDisableCommand(c),
		&cobra.Command{
			Use:   "delete <cid>",
			Short: "Delete a context and its tenant data",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := parseID(args[0])
				if err != nil {
					return err
				}
				return c.srv.DeleteContext(cmd.Context(), cid)
			},
		},
		newContextMoveCommand(c),
	)
	return contextCmd
}

func newContextCreateCommand(c *ctl) *cobra.Command {
	var req models_context.CreateRequest
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a context",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := c.srv.CreateContext(cmd.Context(), req)
			if err != nil {
				return err
			}
			return c.print(ctx)
		},
	}
	flags := cmd.Flags()
	flags.Int64Var(&req.ID, "id", 0, "context id, allocated if zero")
	flags.StringVar(&req.Name, "name", "", "unique context name")
	flags.Int64Var(&req.QuotaMB, "quota", 0, "quota in MB")
	flags.Int64Var(&req.PoolID, "pool", 0, "pool id, selected by load if zero")
	flags.StringSliceVar(&req.Logins, "login", nil, "login mapped to the context")
	flags.StringToStringVar(&req.Attributes, "attr", nil, "context attribute")
	flags.StringVar(&req.Admin.Name, "admin-name", "admin", "admin user name")
	flags.StringVar(&req.Admin.DisplayName, "admin-display-name", "", "admin display name")
	flags.StringVar(&req.Admin.Mail, "admin-mail", "", "admin mail address")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newContextListCommand(c *ctl) *cobra.Command {
	var filter models_context.ContextFilter
	var state string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List contexts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch state {
			case "":
			case "enabled":
				filter.Enabled = 1
			case "disabled":
				filter.Enabled = -1
			default:
				return errors.New("invalid state '" + state + "'")
			}
			contexts, err := c.srv.ListContexts(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return c.print(contexts)
		},
	}
	flags := cmd.Flags()
	flags.Int64SliceVar(&filter.IDs, "id", nil, "context id")
	flags.StringVar(&filter.Name, "name", "", "name pattern, '*' matches any sequence")
	flags.StringVar(&state, "state", "", "enabled or disabled")
	flags.StringVar(&filter.Reason, "reason", "", "disable reason")
	flags.Int64Var(&filter.PoolID, "pool", 0, "pool id")
	flags.StringVar(&filter.Schema, "schema", "", "schema name")
	flags.StringVar(&filter.Login, "login", "", "mapped login")
	return cmd
}

func newContextChangeCommand(c *ctl) *cobra.Command {
	var req models_context.ChangeRequest
	var ctxName string
	var quota int64
	cmd := &cobra.Command{
		Use:   "change <cid>",
		Short: "Change name, quota, logins or attributes of a context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := parseID(args[0])
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("name") {
				req.Name = &ctxName
			}
			if cmd.Flags().Changed("quota") {
				req.QuotaMB = &quota
			}
			ctx, err := c.srv.ChangeContext(cmd.Context(), cid, req)
			if err != nil {
				return err
			}
			return c.print(ctx)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&ctxName, "name", "", "new context name")
	flags.Int64Var(&quota, "quota", 0, "new quota in MB")
	flags.StringSliceVar(&req.AddLogins, "add-login", nil, "login to map")
	flags.StringSliceVar(&req.RemoveLogins, "remove-login", nil, "login to unmap")
	flags.StringToStringVar(&req.SetAttributes, "set-attr", nil, "attribute to set")
	flags.StringSliceVar(&req.RemoveAttributes, "remove-attr", nil, "attribute to remove")
	return cmd
}

func newContextEnableCommand(c *ctl) *cobra.Command {
	var all bool
	var reason string
	cmd := &cobra.Command{
		Use:   "enable [cid]",
		Short: "Enable a context or all contexts disabled for a reason",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				n, err := c.srv.EnableAllContexts(cmd.Context(), reason)
				if err != nil {
					return err
				}
				return c.print(map[string]int64{"enabled": n})
			}
			if len(args) == 0 {
				return errors.New("missing context id")
			}
			cid, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.srv.EnableContext(cmd.Context(), cid)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "enable all contexts disabled for the given reason")
	cmd.Flags().StringVar(&reason, "reason", "", "disable reason")
	return cmd
}

func newContextDisableCommand(c *ctl) *cobra.Command {
	var all bool
	var reason string
	cmd := &cobra.Command{
		Use:   "disable [cid]",
		Short: "Disable a context or all enabled contexts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				n, err := c.srv.DisableAllContexts(cmd.Context(), reason)
				if err != nil {
					return err
				}
				return c.print(map[string]int64{"disabled": n})
			}
			if len(args) == 0 {
				return errors.New("missing context id")
			}
			cid, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.srv.DisableContext(cmd.Context(), cid, reason)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "disable all enabled contexts")
	cmd.Flags().StringVar(&reason, "reason", models_context.ReasonMaintenance, "disable reason")
	return cmd
}

func newContextMoveCommand(c *ctl) *cobra.Command {
	var poolID int64
	cmd := &cobra.Command{
		Use:   "move <cid>",
		Short: "Move the tenant data of a context to another pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := c.srv.MoveContext(cmd.Context(), cid, poolID)
			if err != nil {
				return err
			}
			return c.print(res)
		},
	}
	cmd.Flags().Int64Var(&poolID, "pool", 0, "target pool id")
	_ = cmd.MarkFlagRequired("pool")
	return cmd
}
