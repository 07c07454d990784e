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
	"testing"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/shards"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	models_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/calendar"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	"github.com/google/go-cmp/cmp"
)

var base = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) (*sql.DB, dialect.Dialect) {
	t.Helper()
	h := shards.New(helper_sql_db.Config{}, time.Second*5)
	t.Cleanup(func() {
		_ = h.Close()
	})
	pool := models_pool.Pool{ID: 1, Driver: dialect.SQLite, Address: t.TempDir()}
	if err := h.Provision(context.Background(), pool, "ctx_1_1"); err != nil {
		t.Fatal(err)
	}
	db, err := h.DB(pool, "ctx_1_1")
	if err != nil {
		t.Fatal(err)
	}
	return db, dialect.MustGet(dialect.SQLite)
}

func seedEvents(t *testing.T, db *sql.DB, d dialect.Dialect, cid int64) []models_calendar.Event {
	t.Helper()
	uid := int64(3)
	reqs := []models_calendar.EventCreateRequest{
		{
			EventBase: models_calendar.EventBase{FolderID: 10, Subject: "Team meeting", Location: "Room 1", Description: "weekly sync", Start: base, End: base.Add(time.Hour), Timezone: "Europe/Berlin", Organizer: "alice@example.org"},
			Attendees: []models_calendar.Attendee{{Mail: "bob@example.org", UserID: &uid, Status: models_calendar.StatusAccepted}, {Mail: "carol@example.org"}},
			Alarms:    []models_calendar.Alarm{{TriggerOffset: -15 * time.Minute, Action: "DISPLAY"}},
		},
		{
			EventBase: models_calendar.EventBase{FolderID: 10, Subject: "Lunch", Location: "Cafe 100%", Start: base.Add(3 * time.Hour), End: base.Add(4 * time.Hour), Organizer: "bob@example.org"},
			Attendees: []models_calendar.Attendee{{Mail: "alice@example.org", Status: models_calendar.StatusDeclined}},
		},
		{
			EventBase: models_calendar.EventBase{FolderID: 20, Subject: "Holiday", Start: base.AddDate(0, 0, 1), End: base.AddDate(0, 0, 2), AllDay: true, Timezone: "UTC", Organizer: "alice@example.org"},
		},
	}
	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	defer tx.Rollback()
	var events []models_calendar.Event
	for _, req := range reqs {
		event, err := CreateEvent(context.Background(), tx, d, cid, req, base)
		if err != nil {
			t.Fatal(err)
		}
		events = append(events, event)
	}
	if err = tx.Commit(); err != nil {
		t.Fatal(err)
	}
	return events
}

func TestEvents(t *testing.T) {
	db, d := newTestDB(t)
	ctx := context.Background()
	events := seedEvents(t, db, d, 1)
	seedEvents(t, db, d, 2)
	if events[0].ID != 1 || events[2].ID != 3 {
		t.Errorf("unexpected ids %d %d", events[0].ID, events[2].ID)
	}
	e, err := ReadEvent(ctx, db, d, 1, events[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(events[0], e); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if len(e.Attendees) != 2 || e.Attendees[1].Status != models_calendar.StatusNeedsAction {
		t.Errorf("unexpected attendees %+v", e.Attendees)
	}
	if len(e.Alarms) != 1 || e.Alarms[0].TriggerOffset != -15*time.Minute {
		t.Errorf("unexpected alarms %+v", e.Alarms)
	}
	list, err := ListEvents(ctx, db, d, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 {
		t.Errorf("expected 2 events, got %d", len(list))
	}
	tx, err := db.Begin()
	if err != nil {
		t.Fatal(err)
	}
	if err = DeleteEvent(ctx, tx, d, 1, events[0].ID); err != nil {
		t.Fatal(err)
	}
	if err = DeleteEvent(ctx, tx, d, 1, events[0].ID); !errors.Is(err, models_error.NotFoundErr) {
		t.Errorf("expected NotFoundErr, got %v", err)
	}
	if err = tx.Commit(); err != nil {
		t.Fatal(err)
	}
	if _, err = ReadEvent(ctx, db, d, 1, events[0].ID); !errors.Is(err, models_error.NotFoundErr) {
		t.Errorf("expected NotFoundErr, got %v", err)
	}
	if _, err = ReadEvent(ctx, db, d, 2, events[0].ID); err != nil {
		t.Errorf("event of other context must remain: %v", err)
	}
}

func TestCreateEventValidation(t *testing.T) {
	db, d := newTestDB(t)
	tests := []struct {
		name string
		req  models_calendar.EventCreateRequest
	}{
		{"no subject", models_calendar.EventCreateRequest{EventBase: models_calendar.EventBase{Start: base, End: base}}},
		{"inverted", models_calendar.EventCreateRequest{EventBase: models_calendar.EventBase{Subject: "a", Start: base, End: base.Add(-time.Hour)}}},
		{"timezone", models_calendar.EventCreateRequest{EventBase: models_calendar.EventBase{Subject: "a", Start: base, End: base, Timezone: "Mars/Olympus"}}},
		{"status", models_calendar.EventCreateRequest{EventBase: models_calendar.EventBase{Subject: "a", Start: base, End: base}, Attendees: []models_calendar.Attendee{{Mail: "a@b", Status: "MAYBE"}}}},
		{"duplicate attendee", models_calendar.EventCreateRequest{EventBase: models_calendar.EventBase{Subject: "a", Start: base, End: base}, Attendees: []models_calendar.Attendee{{Mail: "a@b"}, {Mail: "a@b"}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tx, err := db.Begin()
			if err != nil {
				t.Fatal(err)
			}
			defer tx.Rollback()
			_, err = CreateEvent(context.Background(), tx, d, 1, tc.req, base)
			var iie *models_error.InvalidInputError
			if !errors.As(err, &iie) {
				t.Errorf("expected InvalidInputError, got %v", err)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestSearch(t *testing.T) {
	db, d := newTestDB(t)
	ctx := context.Background()
	seedEvents(t, db, d, 1)
	seedEvents(t, db, d, 2)
	tests := []struct {
		name string
		req  models_calendar.SearchRequest
		want []int64
		more bool
	}{
		{"all", models_calendar.SearchRequest{}, []int64{1, 2, 3}, false},
		{"global", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetGlobal, Values: []string{"WEEKLY"}}}}, []int64{1}, false},
		{"global or", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetGlobal, Values: []string{"lunch", "holiday"}}}}, []int64{2, 3}, false},
		{"escaped wildcard", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetLocation, Values: []string{"100%"}}}}, []int64{2}, false},
		{"percent is literal", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetLocation, Values: []string{"%"}}}}, []int64{2}, false},
		{"attendee", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetAttendee, Values: []string{"carol"}}}}, []int64{1}, false},
		{"organizer and folder", models_calendar.SearchRequest{Facets: []models_calendar.Facet{
			{Type: models_calendar.FacetOrganizer, Values: []string{"alice"}},
			{Type: models_calendar.FacetFolder, Values: []string{"20"}},
		}}, []int64{3}, false},
		{"status", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetStatus, Values: []string{"declined", "tentative"}}}}, []int64{2}, false},
		{"all day", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetAllDay, Values: []string{"true"}}}}, []int64{3}, false},
		{"timezone", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetTimezone, Values: []string{"Europe/Berlin", "UTC"}}}}, []int64{1, 3}, false},
		{"range", models_calendar.SearchRequest{From: timePtr(base.Add(30 * time.Minute)), Until: timePtr(base.Add(3 * time.Hour))}, []int64{1}, false},
		{"range end exclusive", models_calendar.SearchRequest{From: timePtr(base.Add(time.Hour)), Until: timePtr(base.Add(5 * time.Hour))}, []int64{2}, false},
		{"desc limit", models_calendar.SearchRequest{Order: models_calendar.OrderStartDesc, Limit: 2}, []int64{3, 2}, true},
		{"offset", models_calendar.SearchRequest{Limit: 2, Offset: 2}, []int64{3}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Search(ctx, db, d, 1, tc.req)
			if err != nil {
				t.Fatal(err)
			}
			var ids []int64
			for _, e := range res.Events {
				ids = append(ids, e.ID)
			}
			if diff := cmp.Diff(tc.want, ids); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
			if res.More != tc.more {
				t.Errorf("expected more=%v", tc.more)
			}
		})
	}
}

func TestSearchInvalid(t *testing.T) {
	db, d := newTestDB(t)
	tests := []struct {
		name string
		req  models_calendar.SearchRequest
	}{
		{"unknown facet", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: "color", Values: []string{"red"}}}}},
		{"no values", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetSubject}}}},
		{"empty text", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetSubject, Values: []string{" "}}}}},
		{"folder", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetFolder, Values: []string{"abc"}}}}},
		{"status", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetStatus, Values: []string{"maybe"}}}}},
		{"all day", models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetAllDay, Values: []string{"sometimes"}}}}},
		{"range", models_calendar.SearchRequest{From: timePtr(base), Until: timePtr(base)}},
		{"order", models_calendar.SearchRequest{Order: "random"}},
		{"limit", models_calendar.SearchRequest{Limit: MaxLimit + 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Search(context.Background(), db, d, 1, tc.req)
			var iie *models_error.InvalidInputError
			if !errors.As(err, &iie) {
				t.Errorf("expected InvalidInputError, got %v", err)
			}
		})
	}
}

func TestFacetCounts(t *testing.T) {
	db, d := newTestDB(t)
	ctx := context.Background()
	seedEvents(t, db, d, 1)
	tests := []struct {
		facet string
		req   models_calendar.SearchRequest
		want  []models_calendar.FacetCount
	}{
		{models_calendar.FacetFolder, models_calendar.SearchRequest{}, []models_calendar.FacetCount{{Value: "10", Count: 2}, {Value: "20", Count: 1}}},
		{models_calendar.FacetOrganizer, models_calendar.SearchRequest{}, []models_calendar.FacetCount{{Value: "alice@example.org", Count: 2}, {Value: "bob@example.org", Count: 1}}},
		{models_calendar.FacetTimezone, models_calendar.SearchRequest{}, []models_calendar.FacetCount{{Value: "", Count: 1}, {Value: "Europe/Berlin", Count: 1}, {Value: "UTC", Count: 1}}},
		{models_calendar.FacetStatus, models_calendar.SearchRequest{}, []models_calendar.FacetCount{{Value: "ACCEPTED", Count: 1}, {Value: "DECLINED", Count: 1}, {Value: "NEEDS-ACTION", Count: 1}}},
		{models_calendar.FacetFolder, models_calendar.SearchRequest{Facets: []models_calendar.Facet{{Type: models_calendar.FacetAllDay, Values: []string{"false"}}}}, []models_calendar.FacetCount{{Value: "10", Count: 2}}},
	}
	for _, tc := range tests {
		t.Run(tc.facet, func(t *testing.T) {
			counts, err := FacetCounts(ctx, db, d, 1, tc.facet, tc.req)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, counts); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
	_, err := FacetCounts(ctx, db, d, 1, models_calendar.FacetSubject, models_calendar.SearchRequest{})
	var iie *models_error.InvalidInputError
	if !errors.As(err, &iie) {
		t.Errorf("expected InvalidInputError, got %v", err)
	}
}
