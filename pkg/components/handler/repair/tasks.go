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

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	models_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/calendar"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
)

// Task detects malformed rows of a schema and fixes them.
type Task interface {
	Name() string
	Description() string
	Required(ctx context.Context, tx *sql.Tx, d dialect.Dialect) (bool, error)
	Run(ctx context.Context, tx *sql.Tx, d dialect.Dialect) (int64, error)
}

// stmtTask is a task made of a detection query returning a count and fix statements.
type stmtTask struct {
	name        string
	description string
	detect      string
	fix         []string
	args        []any
}

func (t *stmtTask) Name() string {
	return t.name
}

func (t *stmtTask) Description() string {
	return t.description
}

func (t *stmtTask) Required(ctx context.Context, tx *sql.Tx, d dialect.Dialect) (bool, error) {
	var n int64
	if err := tx.QueryRowContext(ctx, d.Rebind(t.detect), t.args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (t *stmtTask) Run(ctx context.Context, tx *sql.Tx, d dialect.Dialect) (int64, error) {
	var total int64
	for _, stmt := range t.fix {
		res, err := tx.ExecContext(ctx, d.Rebind(stmt), t.args...)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

var statusArgs = []any{
	models_calendar.StatusNeedsAction,
	models_calendar.StatusAccepted,
	models_calendar.StatusDeclined,
	models_calendar.StatusTentative,
	models_calendar.StatusDelegated,
}

func FixEmptyEventTimezone() Task {
	return &stmtTask{
		name:        "fix-empty-event-timezone",
		description: "set the timezone of events without one to UTC",
		detect:      "SELECT COUNT(*) FROM calendar_events WHERE timezone IS NULL OR timezone = ''",
		fix:         []string{"UPDATE calendar_events SET timezone = 'UTC' WHERE timezone IS NULL OR timezone = ''"},
	}
}

func FixInvertedEventRange() Task {
	return &stmtTask{
		name:        "fix-inverted-event-range",
		description: "set the end of events ending before their start to the start",
		detect:      "SELECT COUNT(*) FROM calendar_events WHERE end_ts < start_ts",
		fix:         []string{"UPDATE calendar_events SET end_ts = start_ts WHERE end_ts < start_ts"},
	}
}

// NormalizeAttendeeStatus upper cases known statuses and resets unknown ones.
func NormalizeAttendeeStatus() Task {
	return &normalizeStatusTask{
		stmtTask: stmtTask{
			name:        "normalize-attendee-status",
			description: "reset unknown attendee participation statuses to NEEDS-ACTION",
			detect:      "SELECT COUNT(*) FROM event_attendees WHERE status NOT IN (?, ?, ?, ?, ?)",
			args:        statusArgs,
		},
	}
}

type normalizeStatusTask struct {
	stmtTask
}

func (t *normalizeStatusTask) Run(ctx context.Context, tx *sql.Tx, d dialect.Dialect) (int64, error) {
	res, err := tx.ExecContext(ctx, d.Rebind("UPDATE event_attendees SET status = UPPER(status) WHERE status NOT IN (?, ?, ?, ?, ?) AND UPPER(status) IN (?, ?, ?, ?, ?)"), append(append([]any{}, statusArgs...), statusArgs...)...)
	if err != nil {
		return 0, err
	}
	n1, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	res, err = tx.ExecContext(ctx, d.Rebind("UPDATE event_attendees SET status = ? WHERE status NOT IN (?, ?, ?, ?, ?)"), append([]any{models_calendar.StatusNeedsAction}, statusArgs...)...)
	if err != nil {
		return 0, err
	}
	n2, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n1 + n2, nil
}

func RemoveOrphanedAlarms() Task {
	const cond = " WHERE NOT EXISTS (SELECT 1 FROM calendar_events e WHERE e.cid = event_alarms.cid AND e.id = event_alarms.event_id)"
	return &stmtTask{
		name:        "remove-orphaned-alarms",
		description: "delete alarms of missing events",
		detect:      "SELECT COUNT(*) FROM event_alarms" + cond,
		fix:         []string{"DELETE FROM event_alarms" + cond},
	}
}

func RemoveDanglingGroupMembers() Task {
	const cond = " WHERE NOT EXISTS (SELECT 1 FROM users u WHERE u.cid = group_members.cid AND u.id = group_members.user_id)"
	return &stmtTask{
		name:        "remove-dangling-group-members",
		description: "delete group memberships of missing users",
		detect:      "SELECT COUNT(*) FROM group_members" + cond,
		fix:         []string{"DELETE FROM group_members" + cond},
	}
}

// FixMissingSequences inserts the sequences of contexts holding rows without one.
func FixMissingSequences() Task {
	sequences := []struct {
		name  string
		table string
	}{
		{models_tenant.SequenceUser, "users"},
		{models_tenant.SequenceGroup, "user_groups"},
		{models_tenant.SequenceEvent, "calendar_events"},
	}
	t := &stmtTask{
		name:        "fix-missing-sequences",
		description: "create missing id sequences starting after the highest id in use",
	}
	var detect []string
	for _, s := range sequences {
		cond := " FROM " + s.table + " t WHERE NOT EXISTS (SELECT 1 FROM sequences s WHERE s.cid = t.cid AND s.name = '" + s.name + "')"
		detect = append(detect, "(SELECT COUNT(*)"+cond+")")
		t.fix = append(t.fix, "INSERT INTO sequences (cid, name, next_id) SELECT t.cid, '"+s.name+"', MAX(t.id) + 1"+cond+" GROUP BY t.cid")
	}
	t.detect = "SELECT " + detect[0] + " + " + detect[1] + " + " + detect[2]
	return t
}

func DefaultTasks() []Task {
	return []Task{
		FixEmptyEventTimezone(),
		FixInvertedEventRange(),
		NormalizeAttendeeStatus(),
		RemoveOrphanedAlarms(),
		RemoveDanglingGroupMembers(),
		FixMissingSequences(),
	}
}
