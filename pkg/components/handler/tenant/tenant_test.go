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
	"testing"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/shards"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
	"github.com/stretchr/testify/require"
)

func newTestSchema(t *testing.T) (*sql.DB, dialect.Dialect) {
	t.Helper()
	h := shards.New(helper_sql_db.Config{}, time.Second*5)
	t.Cleanup(func() {
		_ = h.Close()
	})
	pool := models_pool.Pool{ID: 1, Driver: dialect.SQLite, Address: t.TempDir()}
	require.NoError(t, h.Provision(context.Background(), pool, "ctx_1_1"))
	db, err := h.DB(pool, "ctx_1_1")
	require.NoError(t, err)
	return db, dialect.MustGet(dialect.SQLite)
}

func inTx(t *testing.T, db *sql.DB, f func(tx *sql.Tx) error) error {
	t.Helper()
	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	defer tx.Rollback()
	if err = f(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func TestBootstrap(t *testing.T) {
	db, d := newTestSchema(t)
	ctx := context.Background()
	ts := time.Now()
	admin := models_tenant.UserBase{Name: "oxadmin", DisplayName: "Admin", Mail: "admin@example.org"}
	require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
		return Bootstrap(ctx, tx, d, 7, admin, ts)
	}))
	users, err := ListUsers(ctx, db, d, 7)
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, int64(models_tenant.AdminUserID), users[0].ID)
	require.Equal(t, admin, users[0].UserBase)
	require.True(t, users[0].Enabled)
	groups, err := ListGroups(ctx, db, d, 7)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Equal(t, int64(models_tenant.AllUsersGroupID), groups[0].ID)
	require.Equal(t, []int64{models_tenant.AdminUserID}, groups[0].Members)
	// another context in the same schema stays separate
	users, err = ListUsers(ctx, db, d, 8)
	require.NoError(t, err)
	require.Empty(t, users)
	err = inTx(t, db, func(tx *sql.Tx) error {
		return Bootstrap(ctx, tx, d, 9, models_tenant.UserBase{}, ts)
	})
	var iie *models_error.InvalidInputError
	require.True(t, errors.As(err, &iie))
}

func TestNextID(t *testing.T) {
	db, d := newTestSchema(t)
	ctx := context.Background()
	var ids []int64
	require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
		for i := 0; i < 3; i++ {
			id, err := NextID(ctx, tx, d, 1, models_tenant.SequenceEvent)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	}))
	require.Equal(t, []int64{1, 2, 3}, ids)
}

func TestUsersAndGroups(t *testing.T) {
	db, d := newTestSchema(t)
	ctx := context.Background()
	ts := time.Now()
	require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
		return Bootstrap(ctx, tx, d, 1, models_tenant.UserBase{Name: "admin"}, ts)
	}))
	var u1, u2 models_tenant.User
	require.NoError(t, inTx(t, db, func(tx *sql.Tx) (err error) {
		if u1, err = CreateUser(ctx, tx, d, 1, models_tenant.UserBase{Name: "alice", Mail: "alice@example.org"}, ts); err != nil {
			return err
		}
		u2, err = CreateUser(ctx, tx, d, 1, models_tenant.UserBase{Name: "bob"}, ts)
		return err
	}))
	require.Equal(t, int64(2), u1.ID)
	require.Equal(t, int64(3), u2.ID)

	t.Run("duplicate user", func(t *testing.T) {
		err := inTx(t, db, func(tx *sql.Tx) error {
			_, err := CreateUser(ctx, tx, d, 1, models_tenant.UserBase{Name: "alice"}, ts)
			return err
		})
		var iie *models_error.InvalidInputError
		require.True(t, errors.As(err, &iie))
	})

	var group models_tenant.Group
	t.Run("create group", func(t *testing.T) {
		require.NoError(t, inTx(t, db, func(tx *sql.Tx) (err error) {
			group, err = CreateGroup(ctx, tx, d, 1, models_tenant.GroupCreateRequest{
				GroupBase: models_tenant.GroupBase{Name: "staff", DisplayName: "Staff"},
				Members:   []int64{u1.ID, u1.ID},
			}, ts)
			return err
		}))
		require.Equal(t, int64(1), group.ID)
		require.Equal(t, []int64{u1.ID}, group.Members)
		err := inTx(t, db, func(tx *sql.Tx) error {
			_, err := CreateGroup(ctx, tx, d, 1, models_tenant.GroupCreateRequest{
				GroupBase: models_tenant.GroupBase{Name: "ghosts"},
				Members:   []int64{99},
			}, ts)
			return err
		})
		var iie *models_error.InvalidInputError
		require.True(t, errors.As(err, &iie))
	})

	t.Run("update group", func(t *testing.T) {
		name := "team"
		var updated models_tenant.Group
		require.NoError(t, inTx(t, db, func(tx *sql.Tx) (err error) {
			updated, err = UpdateGroup(ctx, tx, d, 1, group.ID, models_tenant.GroupChangeRequest{
				Name:          &name,
				AddMembers:    []int64{u2.ID},
				RemoveMembers: []int64{u1.ID},
			}, ts)
			return err
		}))
		require.Equal(t, "team", updated.Name)
		require.Equal(t, "Staff", updated.DisplayName)
		require.Equal(t, []int64{u2.ID}, updated.Members)
		require.NoError(t, inTx(t, db, func(tx *sql.Tx) (err error) {
			updated, err = UpdateGroup(ctx, tx, d, 1, group.ID, models_tenant.GroupChangeRequest{
				AddMembers:    []int64{u2.ID},
				RemoveMembers: []int64{u2.ID},
			}, ts)
			return err
		}))
		require.Equal(t, []int64{u2.ID}, updated.Members)
		err := inTx(t, db, func(tx *sql.Tx) error {
			_, err := UpdateGroup(ctx, tx, d, 1, models_tenant.AllUsersGroupID, models_tenant.GroupChangeRequest{RemoveMembers: []int64{1}}, ts)
			return err
		})
		var iie *models_error.InvalidInputError
		require.True(t, errors.As(err, &iie))
	})

	t.Run("delete user", func(t *testing.T) {
		require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
			return DeleteUser(ctx, tx, d, 1, u2.ID)
		}))
		g, err := ReadGroup(ctx, db, d, 1, group.ID)
		require.NoError(t, err)
		require.Empty(t, g.Members)
		g, err = ReadGroup(ctx, db, d, 1, models_tenant.AllUsersGroupID)
		require.NoError(t, err)
		require.Equal(t, []int64{1, u1.ID}, g.Members)
		err = inTx(t, db, func(tx *sql.Tx) error {
			return DeleteUser(ctx, tx, d, 1, models_tenant.AdminUserID)
		})
		require.Error(t, err)
		_, err = ReadUser(ctx, db, d, 1, u2.ID)
		require.ErrorIs(t, err, models_error.NotFoundErr)
	})

	t.Run("delete group", func(t *testing.T) {
		require.NoError(t, inTx(t, db, func(tx *sql.Tx) error {
			return DeleteGroup(ctx, tx, d, 1, group.ID)
		}))
		err := inTx(t, db, func(tx *sql.Tx) error {
			return DeleteGroup(ctx, tx, d, 1, group.ID)
		})
		require.ErrorIs(t, err, models_error.NotFoundErr)
		err = inTx(t, db, func(tx *sql.Tx) error {
			return DeleteGroup(ctx, tx, d, 1, models_tenant.AllUsersGroupID)
		})
		var iie *models_error.InvalidInputError
		require.True(t, errors.As(err, &iie))
	})
}
