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

const selectUsersStatement = "SELECT id, name, display_name, mail, enabled, created FROM users WHERE cid = ?"

func CreateUser(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid int64, base models_tenant.UserBase, timestamp time.Time) (models_tenant.User, error) {
	if err := validateUser(base); err != nil {
		return models_tenant.User{}, err
	}
	var n int
	if err := tx.QueryRowContext(ctx, d.Rebind("SELECT COUNT(*) FROM users WHERE cid = ? AND name = ?"), cid, base.Name).Scan(&n); err != nil {
		return models_tenant.User{}, err
	}
	if n > 0 {
		return models_tenant.User{}, models_error.NewInvalidInputError(fmt.Errorf("user '%s' already exists", base.Name))
	}
	id, err := NextID(ctx, tx, d, cid, models_tenant.SequenceUser)
	if err != nil {
		return models_tenant.User{}, err
	}
	if err = insertUser(ctx, tx, d, cid, id, base, timestamp); err != nil {
		return models_tenant.User{}, err
	}
	if err = addMembers(ctx, tx, d, cid, models_tenant.AllUsersGroupID, []int64{id}); err != nil {
		return models_tenant.User{}, err
	}
	return models_tenant.User{
		ID:       id,
		UserBase: base,
		Enabled:  true,
		Created:  time.UnixMilli(timestamp.UnixMilli()).UTC(),
	}, nil
}

func ReadUser(ctx context.Context, e Executor, d dialect.Dialect, cid, id int64) (models_tenant.User, error) {
	user, err := scanUser(e.QueryRowContext(ctx, d.Rebind(selectUsersStatement+" AND id = ?"), cid, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models_tenant.User{}, models_error.NotFoundErr
		}
		return models_tenant.User{}, err
	}
	return user, nil
}

func ListUsers(ctx context.Context, e Executor, d dialect.Dialect, cid int64) ([]models_tenant.User, error) {
	rows, err := e.QueryContext(ctx, d.Rebind(selectUsersStatement+" ORDER BY id"), cid)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var users []models_tenant.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// DeleteUser removes the user and its group memberships. The admin user can not be deleted.
func DeleteUser(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid, id int64) error {
	if id == models_tenant.AdminUserID {
		return models_error.NewInvalidInputError(errors.New("context admin can not be deleted"))
	}
	if _, err := tx.ExecContext(ctx, d.Rebind("DELETE FROM group_members WHERE cid = ? AND user_id = ?"), cid, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, d.Rebind("DELETE FROM users WHERE cid = ? AND id = ?"), cid, id)
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

func insertUser(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid, id int64, base models_tenant.UserBase, timestamp time.Time) error {
	_, err := tx.ExecContext(
		ctx,
		d.Rebind("INSERT INTO users (cid, id, name, display_name, mail, enabled, created) VALUES (?, ?, ?, ?, ?, ?, ?)"),
		cid,
		id,
		base.Name,
		base.DisplayName,
		base.Mail,
		helper_slices.BoolToInt(true),
		timestamp.UnixMilli(),
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (models_tenant.User, error) {
	var user models_tenant.User
	var enabled int
	var ct int64
	if err := s.Scan(&user.ID, &user.Name, &user.DisplayName, &user.Mail, &enabled, &ct); err != nil {
		return models_tenant.User{}, err
	}
	user.Enabled = enabled != 0
	user.Created = time.UnixMilli(ct).UTC()
	return user, nil
}

func validateUser(base models_tenant.UserBase) error {
	if strings.TrimSpace(base.Name) == "" {
		return models_error.NewInvalidInputError(errors.New("user name required"))
	}
	if base.Mail != "" && !strings.Contains(base.Mail, "@") {
		return models_error.NewInvalidInputError(fmt.Errorf("invalid mail address '%s'", base.Mail))
	}
	return nil
}
