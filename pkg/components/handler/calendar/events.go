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

package calendar

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/tenant"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_slices "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/slices"
	models_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/calendar"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
)

const sequenceAlarm = "alarm"

const selectEventsStatement = "SELECT e.id, e.folder_id, e.subject, e.location, e.description, e.start_ts, e.end_ts, e.all_day, e.timezone, e.organizer, e.created, e.updated FROM calendar_events e"

func CreateEvent(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid int64, req models_calendar.EventCreateRequest, timestamp time.Time) (models_calendar.Event, error) {
	if err := validateEvent(req); err != nil {
		return models_calendar.Event{}, err
	}
	id, err := tenant.NextID(ctx, tx, d, cid, models_tenant.SequenceEvent)
	if err != nil {
		return models_calendar.Event{}, err
	}
	var tz any
	if req.Timezone != "" {
		tz = req.Timezone
	}
	ts := timestamp.UnixMilli()
	_, err = tx.ExecContext(
		ctx,
		d.Rebind("INSERT INTO calendar_events (cid, id, folder_id, subject, location, description, start_ts, end_ts, all_day, timezone, organizer, created, updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		cid,
		id,
		req.FolderID,
		req.Subject,
		req.Location,
		req.Description,
		req.Start.UnixMilli(),
		req.End.UnixMilli(),
		helper_slices.BoolToInt(req.AllDay),
		tz,
		req.Organizer,
		ts,
		ts,
	)
	if err != nil {
		return models_calendar.Event{}, err
	}
	for _, a := range req.Attendees {
		status := a.Status
		if status == "" {
			status = models_calendar.StatusNeedsAction
		}
		var userID any
		if a.UserID != nil {
			userID = *a.UserID
		}
		_, err = tx.ExecContext(ctx, d.Rebind("INSERT INTO event_attendees (cid, event_id, mail, user_id, status) VALUES (?, ?, ?, ?, ?)"), cid, id, a.Mail, userID, status)
		if err != nil {
			return models_calendar.Event{}, err
		}
	}
	for _, a := range req.Alarms {
		aID, err := tenant.NextID(ctx, tx, d, cid, sequenceAlarm)
		if err != nil {
			return models_calendar.Event{}, err
		}
		_, err = tx.ExecContext(ctx, d.Rebind("INSERT INTO event_alarms (cid, id, event_id, trigger_offset, action) VALUES (?, ?, ?, ?, ?)"), cid, aID, id, int64(a.TriggerOffset/time.Second), a.Action)
		if err != nil {
			return models_calendar.Event{}, err
		}
	}
	return ReadEvent(ctx, tx, d, cid, id)
}

func ReadEvent(ctx context.Context, e tenant.Executor, d dialect.Dialect, cid, id int64) (models_calendar.Event, error) {
	event, err := scanEvent(e.QueryRowContext(ctx, d.Rebind(selectEventsStatement+" WHERE e.cid = ? AND e.id = ?"), cid, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models_calendar.Event{}, models_error.NotFoundErr
		}
		return models_calendar.Event{}, err
	}
	events := []models_calendar.Event{event}
	if err = fillEvents(ctx, e, d, cid, events); err != nil {
		return models_calendar.Event{}, err
	}
	return events[0], nil
}

func ListEvents(ctx context.Context, e tenant.Executor, d dialect.Dialect, cid, folderID int64) ([]models_calendar.Event, error) {
	events, err := queryEvents(ctx, e, d, selectEventsStatement+" WHERE e.cid = ? AND e.folder_id = ? ORDER BY e.start_ts, e.id", cid, folderID)
	if err != nil {
		return nil, err
	}
	if err = fillEvents(ctx, e, d, cid, events); err != nil {
		return nil, err
	}
	return events, nil
}

func DeleteEvent(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid, id int64) error {
	if _, err := tx.ExecContext(ctx, d.Rebind("DELETE FROM event_alarms WHERE cid = ? AND event_id = ?"), cid, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, d.Rebind("DELETE FROM event_attendees WHERE cid = ? AND event_id = ?"), cid, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, d.Rebind("DELETE FROM calendar_events WHERE cid = ? AND id = ?"), cid, id)
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

func queryEvents(ctx context.Context, e tenant.Executor, d dialect.Dialect, query string, args ...any) ([]models_calendar.Event, error) {
	rows, err := e.QueryContext(ctx, d.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []models_calendar.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// fillEvents loads attendees and alarms of the given events.
func fillEvents(ctx context.Context, e tenant.Executor, d dialect.Dialect, cid int64, events []models_calendar.Event) error {
	if len(events) == 0 {
		return nil
	}
	index := make(map[int64]int, len(events))
	args := []any{cid}
	for i, event := range events {
		index[event.ID] = i
		args = append(args, event.ID)
	}
	in := " IN (" + helper_slices.GenQuestionMarks(len(events)) + ")"
	rows, err := e.QueryContext(ctx, d.Rebind("SELECT event_id, mail, user_id, status FROM event_attendees WHERE cid = ? AND event_id"+in+" ORDER BY event_id, mail"), args...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var eID int64
		var a models_calendar.Attendee
		var userID sql.NullInt64
		if err = rows.Scan(&eID, &a.Mail, &userID, &a.Status); err != nil {
			rows.Close()
			return err
		}
		if userID.Valid {
			a.UserID = &userID.Int64
		}
		if i, ok := index[eID]; ok {
			events[i].Attendees = append(events[i].Attendees, a)
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}
	rows, err = e.QueryContext(ctx, d.Rebind("SELECT event_id, id, trigger_offset, action FROM event_alarms WHERE cid = ? AND event_id"+in+" ORDER BY event_id, id"), args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var eID, offset int64
		var a models_calendar.Alarm
		if err = rows.Scan(&eID, &a.ID, &offset, &a.Action); err != nil {
			return err
		}
		a.TriggerOffset = time.Duration(offset) * time.Second
		if i, ok := index[eID]; ok {
			events[i].Alarms = append(events[i].Alarms, a)
		}
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (models_calendar.Event, error) {
	var event models_calendar.Event
	var start, end, ct, ut int64
	var allDay int
	var tz sql.NullString
	err := s.Scan(
		&event.ID,
		&event.FolderID,
		&event.Subject,
		&event.Location,
		&event.Description,
		&start,
		&end,
		&allDay,
		&tz,
		&event.Organizer,
		&ct,
		&ut,
	)
	if err != nil {
		return models_calendar.Event{}, err
	}
	event.Start = time.UnixMilli(start).UTC()
	event.End = time.UnixMilli(end).UTC()
	event.AllDay = allDay != 0
	event.Timezone = tz.String
	event.Created = time.UnixMilli(ct).UTC()
	event.Updated = time.UnixMilli(ut).UTC()
	return event, nil
}

func validateEvent(req models_calendar.EventCreateRequest) error {
	if strings.TrimSpace(req.Subject) == "" {
		return models_error.NewInvalidInputError(errors.New("subject required"))
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return models_error.NewInvalidInputError(errors.New("start and end required"))
	}
	if req.End.Before(req.Start) {
		return models_error.NewInvalidInputError(errors.New("end before start"))
	}
	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return models_error.NewInvalidInputError(fmt.Errorf("invalid timezone '%s'", req.Timezone))
		}
	}
	mails := make(map[string]struct{}, len(req.Attendees))
	for _, a := range req.Attendees {
		if a.Mail == "" {
			return models_error.NewInvalidInputError(errors.New("attendee mail required"))
		}
		if _, ok := mails[a.Mail]; ok {
			return models_error.NewInvalidInputError(fmt.Errorf("duplicate attendee '%s'", a.Mail))
		}
		mails[a.Mail] = struct{}{}
		if a.Status != "" {
			if _, ok := models_calendar.AttendeeStatuses[a.Status]; !ok {
				return models_error.NewInvalidInputError(fmt.Errorf("invalid attendee status '%s'", a.Status))
			}
		}
	}
	return nil
}
