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

package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_slices "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/slices"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
)

const selectGroupsStatement = "SELECT id, name, display_name, created, updated FROM user_groups WHERE cid = ?"

func CreateGroup(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid int64, req models_tenant.GroupCreateRequest, timestamp time.Time) (models_tenant.Group, error) {
	if strings.TrimSpace(req.Name) == "" {
		return models_tenant.Group{}, models_error.NewInvalidInputError(errors.New("group name required"))
	}
	if err := checkGroupName(ctx, tx, d, cid, req.Name); err != nil {
		return models_tenant.Group{}, err
	}
	members := helper_slices.RemoveDuplicates(req.Members)
	if err := checkUsers(ctx, tx, d, cid, members); err != nil {
		return models_tenant.Group{}, err
	}
	id, err := NextID(ctx, tx, d, cid, models_tenant.SequenceGroup)
	if err != nil {
		return models_tenant.Group{}, err
	}
	ts := timestamp.UnixMilli()
	_, err = tx.ExecContext(
		ctx,
		d.Rebind("INSERT INTO user_groups (cid, id, name, display_name, created, updated) VALUES (?, ?, ?, ?, ?, ?)"),
		cid,
		id,
		req.Name,
		req.DisplayName,
		ts,
		ts,
	)
	if err != nil {
		return models_tenant.Group{}, err
	}
	if err = addMembers(ctx, tx, d, cid, id, members); err != nil {
		return models_tenant.Group{}, err
	}
	return ReadGroup(ctx, tx, d, cid, id)
}

func ReadGroup(ctx context.Context, e Executor, d dialect.Dialect, cid, id int64) (models_tenant.Group, error) {
	group, err := scanGroup(e.QueryRowContext(ctx, d.Rebind(selectGroupsStatement+" AND id = ?"), cid, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models_tenant.Group{}, models_error.NotFoundErr
		}
		return models_tenant.Group{}, err
	}
	members, err := listMembers(ctx, e, d, cid, &id)
	if err != nil {
		return models_tenant.Group{}, err
	}
	group.Members = members[id]
	return group, nil
}

func ListGroups(ctx context.Context, e Executor, d dialect.Dialect, cid int64) ([]models_tenant.Group, error) {
	rows, err := e.QueryContext(ctx, d.Rebind(selectGroupsStatement+" ORDER BY id"), cid)
	if err != nil {
		return nil, err
	}
	var groups []models_tenant.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		groups = append(groups, group)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}
	members, err := listMembers(ctx, e, d, cid, nil)
	if err != nil {
		return nil, err
	}
	for i := range groups {
		groups[i].Members = members[groups[i].ID]
	}
	return groups, nil
}

// UpdateGroup changes names and members. Members of the all users group are managed implicitly.
func UpdateGroup(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid, id int64, req models_tenant.GroupChangeRequest, timestamp time.Time) (models_tenant.Group, error) {
	group, err := ReadGroup(ctx, tx, d, cid, id)
	if err != nil {
		return models_tenant.Group{}, err
	}
	if id == models_tenant.AllUsersGroupID {
		if req.Name != nil || len(req.AddMembers) > 0 || len(req.RemoveMembers) > 0 {
			return models_tenant.Group{}, models_error.NewInvalidInputError(errors.New("only the display name of the all users group can be changed"))
		}
	}
	if req.Name != nil && *req.Name != group.Name {
		if strings.TrimSpace(*req.Name) == "" {
			return models_tenant.Group{}, models_error.NewInvalidInputError(errors.New("group name required"))
		}
		if err = checkGroupName(ctx, tx, d, cid, *req.Name); err != nil {
			return models_tenant.Group{}, err
		}
		group.Name = *req.Name
	}
	if req.DisplayName != nil {
		group.DisplayName = *req.DisplayName
	}
	_, err = tx.ExecContext(
		ctx,
		d.Rebind("UPDATE user_groups SET name = ?, display_name = ?, updated = ? WHERE cid = ? AND id = ?"),
		group.Name,
		group.DisplayName,
		timestamp.UnixMilli(),
		cid,
		id,
	)
	if err != nil {
		return models_tenant.Group{}, err
	}
	removed := make(map[int64]struct{}, len(req.RemoveMembers))
	if len(req.RemoveMembers) > 0 {
		rm := helper_slices.RemoveDuplicates(req.RemoveMembers)
		for _, m := range rm {
			removed[m] = struct{}{}
		}
		_, err = tx.ExecContext(
			ctx,
			d.Rebind("DELETE FROM group_members WHERE cid = ? AND group_id = ? AND user_id IN ("+helper_slices.GenQuestionMarks(len(rm))+")"),
			append([]any{cid, id}, helper_slices.ToAnySlice(rm)...)...,
		)
		if err != nil {
			return models_tenant.Group{}, err
		}
	}
	if len(req.AddMembers) > 0 {
		existing := make(map[int64]struct{}, len(group.Members))
		for _, m := range group.Members {
			if _, ok := removed[m]; !ok {
				existing[m] = struct{}{}
			}
		}
		var add []int64
		for _, m := range helper_slices.RemoveDuplicates(req.AddMembers) {
			if _, ok := existing[m]; !ok {
				add = append(add, m)
			}
		}
		if err = checkUsers(ctx, tx, d, cid, add); err != nil {
			return models_tenant.Group{}, err
		}
		if err = addMembers(ctx, tx, d, cid, id, add); err != nil {
			return models_tenant.Group{}, err
		}
	}
	return ReadGroup(ctx, tx, d, cid, id)
}

func DeleteGroup(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid, id int64) error {
	if id == models_tenant.AllUsersGroupID {
		return models_error.NewInvalidInputError(errors.New("all users group can not be deleted"))
	}
	if _, err := tx.ExecContext(ctx, d.Rebind("DELETE FROM group_members WHERE cid = ? AND group_id = ?"), cid, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, d.Rebind("DELETE FROM user_groups WHERE cid = ? AND id = ?"), cid, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models_error.NotFoundErr
	}
	return nil
}

func addMembers(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid, groupID int64, members []int64) error {
	if len(members) == 0 {
		return nil
	}
	stmt, err := tx.PrepareContext(ctx, d.Rebind("INSERT INTO group_members (cid, group_id, user_id) VALUES (?, ?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, m := range members {
		if _, err = stmt.ExecContext(ctx, cid, groupID, m); err != nil {
			return err
		}
	}
	return nil
}

// listMembers returns the sorted member ids per group, optionally of a single group.
func listMembers(ctx context.Context, e Executor, d dialect.Dialect, cid int64, groupID *int64) (map[int64][]int64, error) {
	q := "SELECT group_id, user_id FROM group_members WHERE cid = ?"
	args := []any{cid}
	if groupID != nil {
		q += " AND group_id = ?"
		args = append(args, *groupID)
	}
	rows, err := e.QueryContext(ctx, d.Rebind(q+" ORDER BY group_id, user_id"), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	members := make(map[int64][]int64)
	for rows.Next() {
		var gID, uID int64
		if err = rows.Scan(&gID, &uID); err != nil {
			return nil, err
		}
		members[gID] = append(members[gID], uID)
	}
	return members, rows.Err()
}

func checkGroupName(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid int64, name string) error {
	var n int
	if err := tx.QueryRowContext(ctx, d.Rebind("SELECT COUNT(*) FROM user_groups WHERE cid = ? AND name = ?"), cid, name).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return models_error.NewInvalidInputError(fmt.Errorf("group '%s' already exists", name))
	}
	return nil
}

func checkUsers(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	var n int
	err := tx.QueryRowContext(
		ctx,
		d.Rebind("SELECT COUNT(*) FROM users WHERE cid = ? AND id IN ("+helper_slices.GenQuestionMarks(len(ids))+")"),
		append([]any{cid}, helper_slices.ToAnySlice(ids)...)...,
	).Scan(&n)
	if err != nil {
		return err
	}
	if n != len(ids) {
		return models_error.NewInvalidInputError(fmt.Errorf("unknown users in %v", ids))
	}
	return nil
}

func scanGroup(s scanner) (models_tenant.Group, error) {
	var group models_tenant.Group
	var ct, ut int64
	if err := s.Scan(&group.ID, &group.Name, &group.DisplayName, &ct, &ut); err != nil {
		return models_tenant.Group{}, err
	}
	group.Created = time.UnixMilli(ct).UTC()
	group.Updated = time.UnixMilli(ut).UTC()
	return group, nil
}
