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
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
	"github.com/spf13/cobra"
)

func newGroupCommand(c *ctl) *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Manage the groups of a context",
	}
	var req models_tenant.GroupCreateRequest
	createCmd := &cobra.Command{
		Use:   "create <cid>",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := parseID(args[0])
			if err != nil {
				return err
			}
			group, err := c.srv.CreateGroup(cmd.Context(), cid, req)
			if err != nil {
				return err
			}
			return c.print(group)
		},
	}
	createCmd.Flags().StringVar(&req.Name, "name", "", "group name")
	createCmd.Flags().StringVar(&req.DisplayName, "display-name", "", "display name")
	createCmd.Flags().Int64SliceVar(&req.Members, "member", nil, "member user id")
	_ = createCmd.MarkFlagRequired("name")
	groupCmd.AddCommand(
		createCmd,
		&cobra.Command{
			Use:   "list <cid>",
			Short: "List groups",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := parseID(args[0])
				if err != nil {
					return err
				}
				groups, err := c.srv.ListGroups(cmd.Context(), cid)
				if err != nil {
					return err
				}
				return c.print(groups)
			},
		},
		&cobra.Command{
			Use:   "delete <cid> <gid>",
			Short: "Delete a group",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				ids, err := parseIDs(args)
				if err != nil {
					return err
				}
				return c.srv.DeleteGroup(cmd.Context(), ids[0], ids[1])
			},
		},
		newGroupMembersCommand(c, "add-members", "Add users to a group", func(ids []int64) models_tenant.GroupChangeRequest {
			return models_tenant.GroupChangeRequest{AddMembers: ids}
		}),
		newGroupMembersCommand(c, "remove-members", "Remove users from a group", func(ids []int64) models_tenant.GroupChangeRequest {
			return models_tenant.GroupChangeRequest{RemoveMembers: ids}
		}),
	)
	return groupCmd
}

func newGroupMembersCommand(c *ctl, use, short string, genReq func([]int64) models_tenant.GroupChangeRequest) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <cid> <gid> <uid>...",
		Short: short,
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			group, err := c.srv.ChangeGroup(cmd.Context(), ids[0], ids[1], genReq(ids[2:]))
			if err != nil {
				return err
			}
			return c.print(group)
		},
	}
}

func newUserCommand(c *ctl) *cobra.Command {
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the users of a context",
	}
	var base models_tenant.UserBase
	createCmd := &cobra.Command{
		Use:   "create <cid>",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cid, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := c.srv.CreateUser(cmd.Context(), cid, base)
			if err != nil {
				return err
			}
			return c.print(user)
		},
	}
	createCmd.Flags().StringVar(&base.Name, "name", "", "user name")
	createCmd.Flags().StringVar(&base.DisplayName, "display-name", "", "display name")
	createCmd.Flags().StringVar(&base.Mail, "mail", "", "mail address")
	_ = createCmd.MarkFlagRequired("name")
	userCmd.AddCommand(
		createCmd,
		&cobra.Command{
			Use:   "list <cid>",
			Short: "List users",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cid, err := parseID(args[0])
				if err != nil {
					return err
				}
				users, err := c.srv.ListUsers(cmd.Context(), cid)
				if err != nil {
					return err
				}
				return c.print(users)
			},
		},
	)
	return userCmd
}
