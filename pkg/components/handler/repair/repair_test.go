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

package repair

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/shards"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	models_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/repair"
)

func newTargets(t *testing.T, n int) []Target {
	t.Helper()
	h := shards.New(helper_sql_db.Config{}, time.Second*5)
	t.Cleanup(func() {
		_ = h.Close()
	})
	pool := models_pool.Pool{ID: 1, Driver: dialect.SQLite, Address: t.TempDir()}
	var targets []Target
	for i := 0; i < n; i++ {
		schema := fmt.Sprintf("ctx_1_%d", i+1)
		if err := h.Provision(context.Background(), pool, schema); err != nil {
			t.Fatal(err)
		}
		db, err := h.DB(pool, schema)
		if err != nil {
			t.Fatal(err)
		}
		targets = append(targets, Target{PoolID: pool.ID, Schema: schema, DB: db, Dialect: dialect.MustGet(dialect.SQLite)})
	}
	return targets
}

func execAll(t *testing.T, db *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatal(err)
		}
	}
}

func queryInt(t *testing.T, db *sql.DB, query string) int64 {
	t.Helper()
	var n int64
	if err := db.QueryRow(query).Scan(&n); err != nil {
		t.Fatal(err)
	}
	return n
}

func seedBroken(t *testing.T, db *sql.DB) {
	execAll(t, db,
		"INSERT INTO users (cid, id, name, display_name, mail, enabled, created) VALUES (1, 1, 'admin', '', '', 1, 0), (1, 5, 'bob', '', '', 1, 0)",
		"INSERT INTO user_groups (cid, id, name, display_name, created, updated) VALUES (1, 0, 'users', '', 0, 0)",
		"INSERT INTO group_members (cid, group_id, user_id) VALUES (1, 0, 1), (1, 0, 5), (1, 0, 9)",
		"INSERT INTO calendar_events (cid, id, folder_id, subject, location, description, start_ts, end_ts, all_day, timezone, organizer, created, updated) VALUES (1, 1, 0, 'a', '', '', 100, 50, 0, NULL, '', 0, 0), (1, 2, 0, 'b', '', '', 100, 200, 0, '', '', 0, 0), (1, 3, 0, 'c', '', '', 100, 200, 0, 'UTC', '', 0, 0)",
		"INSERT INTO event_attendees (cid, event_id, mail, user_id, status) VALUES (1, 1, 'a@x', NULL, 'accepted'), (1, 1, 'b@x', NULL, 'MAYBE'), (1, 2, 'c@x', NULL, 'DECLINED')",
		"INSERT INTO event_alarms (cid, id, event_id, trigger_offset, action) VALUES (1, 1, 1, 0, 'DISPLAY'), (1, 2, 42, 0, 'DISPLAY')",
	)
}

func TestRun(t *testing.T) {
	targets := newTargets(t, 2)
	seedBroken(t, targets[0].DB)
	h := New(Config{Parallel: 2}, DefaultTasks()...)
	ctx := context.Background()
	report, err := h.Run(ctx, targets, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != 12 {
		t.Fatalf("expected 12 results, got %d", len(report.Results))
	}
	want := []models_repair.TaskResult{
		{PoolID: 1, Schema: "ctx_1_1", Task: "fix-empty-event-timezone", Status: models_repair.StatusOK, RowsAffected: 2},
		{PoolID: 1, Schema: "ctx_1_1", Task: "fix-inverted-event-range", Status: models_repair.StatusOK, RowsAffected: 1},
		{PoolID: 1, Schema: "ctx_1_1", Task: "normalize-attendee-status", Status: models_repair.StatusOK, RowsAffected: 2},
		{PoolID: 1, Schema: "ctx_1_1", Task: "remove-orphaned-alarms", Status: models_repair.StatusOK, RowsAffected: 1},
		{PoolID: 1, Schema: "ctx_1_1", Task: "remove-dangling-group-members", Status: models_repair.StatusOK, RowsAffected: 1},
		{PoolID: 1, Schema: "ctx_1_1", Task: "fix-missing-sequences", Status: models_repair.StatusOK, RowsAffected: 3},
	}
	for i, w := range want {
		if report.Results[i] != w {
			t.Errorf("expected %+v, got %+v", w, report.Results[i])
		}
	}
	for _, r := range report.Results[6:] {
		if r.Schema != "ctx_1_2" || r.Status != models_repair.StatusClean {
			t.Errorf("unexpected result %+v", r)
		}
	}
	db := targets[0].DB
	if n := queryInt(t, db, "SELECT COUNT(*) FROM calendar_events WHERE timezone = 'UTC'"); n != 3 {
		t.Errorf("expected 3, got %d", n)
	}
	if n := queryInt(t, db, "SELECT end_ts FROM calendar_events WHERE id = 1"); n != 100 {
		t.Errorf("expected 100, got %d", n)
	}
	if n := queryInt(t, db, "SELECT COUNT(*) FROM event_attendees WHERE status = 'ACCEPTED' OR status = 'NEEDS-ACTION'"); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}
	if n := queryInt(t, db, "SELECT next_id FROM sequences WHERE cid = 1 AND name = 'user'"); n != 6 {
		t.Errorf("expected 6, got %d", n)
	}
	if n := queryInt(t, db, "SELECT next_id FROM sequences WHERE cid = 1 AND name = 'group'"); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}

	t.Run("skip successful", func(t *testing.T) {
		report, err := h.Run(ctx, targets[:1], []string{"fix-inverted-event-range"}, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(report.Results) != 1 || report.Results[0].Status != models_repair.StatusSkipped {
			t.Errorf("unexpected results %+v", report.Results)
		}
	})
	t.Run("force", func(t *testing.T) {
		report, err := h.Run(ctx, targets[:1], []string{"fix-inverted-event-range"}, true)
		if err != nil {
			t.Fatal(err)
		}
		if len(report.Results) != 1 || report.Results[0].Status != models_repair.StatusClean {
			t.Errorf("unexpected results %+v", report.Results)
		}
	})
	t.Run("states", func(t *testing.T) {
		states, err := ListStates(ctx, db, targets[0].Dialect)
		if err != nil {
			t.Fatal(err)
		}
		if len(states) != 6 {
			t.Fatalf("expected 6 states, got %d", len(states))
		}
		for _, s := range states {
			if !s.Successful {
				t.Errorf("expected successful state %+v", s)
			}
		}
	})
}

type failingTask struct{}

func (failingTask) Name() string {
	return "failing"
}

func (failingTask) Description() string {
	return ""
}

func (failingTask) Required(_ context.Context, _ *sql.Tx, _ dialect.Dialect) (bool, error) {
	return true, nil
}

func (failingTask) Run(ctx context.Context, tx *sql.Tx, _ dialect.Dialect) (int64, error) {
	if _, err := tx.ExecContext(ctx, "DELETE FROM event_attendees"); err != nil {
		return 0, err
	}
	return 0, errors.New("test")
}

func TestRunFailure(t *testing.T) {
	targets := newTargets(t, 1)
	seedBroken(t, targets[0].DB)
	h := New(Config{}, failingTask{})
	report, err := h.Run(context.Background(), targets, nil, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Results) != 1 || report.Results[0].Status != models_repair.StatusFailed || report.Results[0].Error != "test" {
		t.Errorf("unexpected results %+v", report.Results)
	}
	if n := queryInt(t, targets[0].DB, "SELECT COUNT(*) FROM event_attendees"); n != 3 {
		t.Errorf("expected rollback, got %d attendees", n)
	}
	if n := queryInt(t, targets[0].DB, "SELECT successful FROM update_tasks WHERE task_name = 'failing'"); n != 0 {
		t.Errorf("expected failed state, got %d", n)
	}
}

func TestSelect(t *testing.T) {
	h := New(Config{}, DefaultTasks()...)
	if len(h.Tasks()) != 6 {
		t.Errorf("expected 6 tasks, got %d", len(h.Tasks()))
	}
	tasks, err := h.Select([]string{"fix-missing-sequences", "fix-empty-event-timezone", "fix-missing-sequences"})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 || tasks[0].Name() != "fix-empty-event-timezone" {
		t.Errorf("unexpected tasks %v", tasks)
	}
	_, err = h.Select([]string{"drop-everything"})
	var iie *models_error.InvalidInputError
	if !errors.As(err, &iie) {
		t.Errorf("expected InvalidInputError, got %v", err)
	}
}
