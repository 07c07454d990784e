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

package relocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/calendar"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/shards"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/tenant"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	models_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/calendar"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	models_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/relocation"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func newEndpoints(t *testing.T) (Endpoint, Endpoint) {
	t.Helper()
	h := shards.New(helper_sql_db.Config{}, time.Second*5)
	t.Cleanup(func() {
		_ = h.Close()
	})
	d := dialect.MustGet(dialect.SQLite)
	var eps []Endpoint
	for i, dir := range []string{t.TempDir(), t.TempDir()} {
		pool := models_pool.Pool{ID: int64(i + 1), Driver: dialect.SQLite, Address: dir}
		schema := fmt.Sprintf("ctx_%d_1", i+1)
		require.NoError(t, h.Provision(context.Background(), pool, schema))
		db, err := h.DB(pool, schema)
		require.NoError(t, err)
		eps = append(eps, Endpoint{DB: db, Dialect: d})
	}
	return eps[0], eps[1]
}

func seedContext(t *testing.T, ep Endpoint, cid int64, users, events int) {
	t.Helper()
	ctx := context.Background()
	tx, err := ep.DB.BeginTx(ctx, nil)
	require.NoError(t, err)
	defer tx.Rollback()
	ts := time.Now()
	require.NoError(t, tenant.Bootstrap(ctx, tx, ep.Dialect, cid, models_tenant.UserBase{Name: "admin"}, ts))
	var members []int64
	for i := 0; i < users; i++ {
		u, err := tenant.CreateUser(ctx, tx, ep.Dialect, cid, models_tenant.UserBase{Name: fmt.Sprintf("user%d", i), Mail: fmt.Sprintf("user%d@example.org", i)}, ts)
		require.NoError(t, err)
		members = append(members, u.ID)
	}
	_, err = tenant.CreateGroup(ctx, tx, ep.Dialect, cid, models_tenant.GroupCreateRequest{GroupBase: models_tenant.GroupBase{Name: "staff"}, Members: members}, ts)
	require.NoError(t, err)
	start := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < events; i++ {
		_, err = calendar.CreateEvent(ctx, tx, ep.Dialect, cid, models_calendar.EventCreateRequest{
			EventBase: models_calendar.EventBase{Subject: fmt.Sprintf("event %d", i), Start: start, End: start.Add(time.Hour), Organizer: "admin@example.org"},
			Attendees: []models_calendar.Attendee{{Mail: "a@example.org"}, {Mail: "b@example.org"}},
			Alarms:    []models_calendar.Alarm{{TriggerOffset: -time.Minute, Action: "DISPLAY"}},
		}, ts)
		require.NoError(t, err)
	}
	require.NoError(t, tx.Commit())
}

func TestDiscoverAndOrder(t *testing.T) {
	src, _ := newEndpoints(t)
	ctx := context.Background()
	tables, err := Discover(ctx, src.DB, src.Dialect, DefaultColumn)
	require.NoError(t, err)
	want := []Table{
		{Name: "calendar_events"},
		{Name: "event_alarms"},
		{Name: "event_attendees", Parents: []string{"calendar_events"}},
		{Name: "group_members", Parents: []string{"user_groups"}},
		{Name: "sequences"},
		{Name: "user_groups"},
		{Name: "users"},
	}
	if diff := cmp.Diff(want, tables); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	order, err := Order(tables)
	require.NoError(t, err)
	require.Len(t, order, len(tables))
	pos := make(map[string]int)
	for i, name := range order {
		pos[name] = i
	}
	require.Less(t, pos["calendar_events"], pos["event_attendees"])
	require.Less(t, pos["user_groups"], pos["group_members"])
}

func TestOrder(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		order, err := Order(nil)
		require.NoError(t, err)
		require.Empty(t, order)
	})
	t.Run("chain", func(t *testing.T) {
		order, err := Order([]Table{
			{Name: "c", Parents: []string{"b"}},
			{Name: "a"},
			{Name: "b", Parents: []string{"a"}},
		})
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, order)
	})
	t.Run("cycle", func(t *testing.T) {
		_, err := Order([]Table{
			{Name: "a", Parents: []string{"b"}},
			{Name: "b", Parents: []string{"a"}},
		})
		require.Error(t, err)
	})
}

func TestDiscoverDropsForeignParents(t *testing.T) {
	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "fk.db")+"?_pragma=foreign_keys(1)")
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range []string{
		"CREATE TABLE folders (id INTEGER NOT NULL PRIMARY KEY)",
		"CREATE TABLE items (cid INTEGER NOT NULL, id INTEGER NOT NULL, parent INTEGER, folder INTEGER, PRIMARY KEY (cid, id), FOREIGN KEY (cid, parent) REFERENCES items (cid, id), FOREIGN KEY (folder) REFERENCES folders (id))",
	} {
		_, err = db.Exec(stmt)
		require.NoError(t, err)
	}
	tables, err := Discover(context.Background(), db, dialect.MustGet(dialect.SQLite), DefaultColumn)
	require.NoError(t, err)
	require.Equal(t, []Table{{Name: "items"}}, tables)
}

func countRows(t *testing.T, ep Endpoint, cid int64, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, ep.DB.QueryRow("SELECT COUNT(*) FROM "+table+" WHERE cid = ?", cid).Scan(&n))
	return n
}

func TestCopyVerifyPurge(t *testing.T) {
	src, dst := newEndpoints(t)
	ctx := context.Background()
	seedContext(t, src, 1, 5, 7)
	seedContext(t, src, 2, 1, 1)
	e := New(Config{ChunkSize: 2, VerifyCounts: true})
	order, err := e.Plan(ctx, src)
	require.NoError(t, err)

	var progress []models_relocation.TableStat
	copied, err := e.Copy(ctx, src, dst, 1, order, func(stat models_relocation.TableStat) {
		progress = append(progress, stat)
	})
	require.NoError(t, err)
	require.Equal(t, copied, progress)
	require.Len(t, copied, len(order))
	rows := map[string]int64{}
	for _, stat := range copied {
		rows[stat.Table] = stat.Rows
	}
	require.Equal(t, int64(6), rows["users"])
	require.Equal(t, int64(7), rows["calendar_events"])
	require.Equal(t, int64(14), rows["event_attendees"])
	require.Equal(t, int64(2), rows["user_groups"])
	require.Equal(t, int64(11), rows["group_members"])
	require.NoError(t, e.Verify(ctx, src, dst, 1, order))
	require.Equal(t, int64(0), countRows(t, dst, 2, "users"))

	event, err := calendar.ReadEvent(ctx, dst.DB, dst.Dialect, 1, 3)
	require.NoError(t, err)
	require.Equal(t, "event 2", event.Subject)
	require.Len(t, event.Attendees, 2)

	deleted, err := e.Purge(ctx, src, 1, order)
	require.NoError(t, err)
	require.Equal(t, order[len(order)-1], deleted[0].Table)
	require.Equal(t, int64(0), countRows(t, src, 1, "users"))
	require.Equal(t, int64(2), countRows(t, src, 2, "users"))
	require.Error(t, e.Verify(ctx, src, dst, 1, order))

	empty, err := e.IsEmpty(ctx, src, order)
	require.NoError(t, err)
	require.False(t, empty)
	_, err = e.Purge(ctx, src, 2, order)
	require.NoError(t, err)
	empty, err = e.IsEmpty(ctx, src, order)
	require.NoError(t, err)
	require.True(t, empty)
}

func TestCopyFailureAndRollback(t *testing.T) {
	src, dst := newEndpoints(t)
	ctx := context.Background()
	seedContext(t, src, 1, 2, 2)
	// a conflicting row makes the events table fail on the target
	_, err := dst.DB.Exec("INSERT INTO calendar_events (cid, id, folder_id, subject, location, description, start_ts, end_ts, all_day, organizer, created, updated) VALUES (1, 2, 0, 'x', '', '', 0, 0, 0, '', 0, 0)")
	require.NoError(t, err)
	e := New(Config{})
	order := []string{"users", "user_groups", "group_members", "calendar_events", "event_attendees"}
	copied, err := e.Copy(ctx, src, dst, 1, order, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "copy table calendar_events")
	require.Len(t, copied, 3)
	// the failed table is not partially written
	require.Equal(t, int64(1), countRows(t, dst, 1, "calendar_events"))
	require.NoError(t, e.Rollback(ctx, dst, 1, copied))
	for _, table := range []string{"users", "user_groups", "group_members"} {
		require.Equal(t, int64(0), countRows(t, dst, 1, table), table)
	}
	require.Equal(t, int64(3), countRows(t, src, 1, "users"))
}

func TestCopyCanceled(t *testing.T) {
	src, dst := newEndpoints(t)
	seedContext(t, src, 1, 1, 1)
	ctx, cf := context.WithCancel(context.Background())
	cf()
	copied, err := New(Config{}).Copy(ctx, src, dst, 1, []string{"users"}, nil)
	require.True(t, errors.Is(err, context.Canceled))
	require.Empty(t, copied)
}

func TestInserter(t *testing.T) {
	ins := newInserter(dialect.MustGet(dialect.Postgres), "users", []string{"cid", "id"}, 2)
	ins.add([]any{1, 1})
	require.False(t, ins.full())
	ins.add([]any{1, 2})
	require.True(t, ins.full())
	require.Equal(t, `INSERT INTO "users" ("cid", "id") VALUES ($1, $2), ($3, $4)`, ins.statement())
	e := New(Config{ChunkSize: 100000})
	require.Equal(t, 100000, e.chunkSize)
}
