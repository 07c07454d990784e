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
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
)

// Executor is satisfied by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	allUsersGroupName        = "users"
	allUsersGroupDisplayName = "All users"
)

// Bootstrap seeds the sequences and creates the all users group and the admin user of a new context.
func Bootstrap(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid int64, admin models_tenant.UserBase, timestamp time.Time) error {
	if err := validateUser(admin); err != nil {
		return err
	}
	seeds := []struct {
		name string
		next int64
	}{
		{models_tenant.SequenceUser, models_tenant.AdminUserID + 1},
		{models_tenant.SequenceGroup, models_tenant.AllUsersGroupID + 1},
		{models_tenant.SequenceEvent, 1},
	}
	for _, s := range seeds {
		if _, err := tx.ExecContext(ctx, d.Rebind("INSERT INTO sequences (cid, name, next_id) VALUES (?, ?, ?)"), cid, s.name, s.next); err != nil {
			return err
		}
	}
	ts := timestamp.UnixMilli()
	_, err := tx.ExecContext(
		ctx,
		d.Rebind("INSERT INTO user_groups (cid, id, name, display_name, created, updated) VALUES (?, ?, ?, ?, ?, ?)"),
		cid,
		models_tenant.AllUsersGroupID,
		allUsersGroupName,
		allUsersGroupDisplayName,
		ts,
		ts,
	)
	if err != nil {
		return err
	}
	if err = insertUser(ctx, tx, d, cid, models_tenant.AdminUserID, admin, timestamp); err != nil {
		return err
	}
	return addMembers(ctx, tx, d, cid, models_tenant.AllUsersGroupID, []int64{models_tenant.AdminUserID})
}
