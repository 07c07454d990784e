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
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/tenant"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_slices "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/slices"
	models_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/calendar"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

type condition struct {
	clause string
	args   []any
}

// textColumns lists the event columns matched by each text facet.
var textColumns = map[string][]string{
	models_calendar.FacetGlobal:      {"e.subject", "e.location", "e.description"},
	models_calendar.FacetSubject:     {"e.subject"},
	models_calendar.FacetLocation:    {"e.location"},
	models_calendar.FacetDescription: {"e.description"},
	models_calendar.FacetOrganizer:   {"e.organizer"},
}

// Search returns the events of a context matching all facets of the request.
func Search(ctx context.Context, e tenant.Executor, d dialect.Dialect, cid int64, req models_calendar.SearchRequest) (models_calendar.SearchResult, error) {
	where, args, err := genSearchFilter(cid, req)
	if err != nil {
		return models_calendar.SearchResult{}, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		return models_calendar.SearchResult{}, models_error.NewInvalidInputError(fmt.Errorf("limit exceeds %d", MaxLimit))
	}
	if req.Offset < 0 {
		return models_calendar.SearchResult{}, models_error.NewInvalidInputError(errors.New("negative offset"))
	}
	var order string
	switch req.Order {
	case "", models_calendar.OrderStartAsc:
		order = " ORDER BY e.start_ts, e.id"
	case models_calendar.OrderStartDesc:
		order = " ORDER BY e.start_ts DESC, e.id DESC"
	default:
		return models_calendar.SearchResult{}, models_error.NewInvalidInputError(fmt.Errorf("unknown order '%s'", req.Order))
	}
	args = append(args, limit+1, req.Offset)
	events, err := queryEvents(ctx, e, d, selectEventsStatement+where+order+" LIMIT ? OFFSET ?", args...)
	if err != nil {
		return models_calendar.SearchResult{}, err
	}
	var result models_calendar.SearchResult
	if len(events) > limit {
		events = events[:limit]
		result.More = true
	}
	if err = fillEvents(ctx, e, d, cid, events); err != nil {
		return models_calendar.SearchResult{}, err
	}
	result.Events = events
	return result, nil
}

// FacetCounts returns the number of matching events per value of a facet, most frequent first.
func FacetCounts(ctx context.Context, e tenant.Executor, d dialect.Dialect, cid int64, facetType string, req models_calendar.SearchRequest) ([]models_calendar.FacetCount, error) {
	where, args, err := genSearchFilter(cid, req)
	if err != nil {
		return nil, err
	}
	var query string
	switch facetType {
	case models_calendar.FacetFolder:
		query = "SELECT e.folder_id, COUNT(*) FROM calendar_events e" + where + " GROUP BY e.folder_id"
	case models_calendar.FacetOrganizer:
		query = "SELECT e.organizer, COUNT(*) FROM calendar_events e" + where + " GROUP BY e.organizer"
	case models_calendar.FacetTimezone:
		query = "SELECT COALESCE(e.timezone, ''), COUNT(*) FROM calendar_events e" + where + " GROUP BY COALESCE(e.timezone, '')"
	case models_calendar.FacetStatus:
		query = "SELECT a.status, COUNT(DISTINCT e.id) FROM calendar_events e JOIN event_attendees a ON a.cid = e.cid AND a.event_id = e.id" + where + " GROUP BY a.status"
	default:
		return nil, models_error.NewInvalidInputError(fmt.Errorf("facet '%s' can not be counted", facetType))
	}
	rows, err := e.QueryContext(ctx, d.Rebind(query+" ORDER BY 2 DESC, 1"), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var counts []models_calendar.FacetCount
	for rows.Next() {
		var fc models_calendar.FacetCount
		if err = rows.Scan(&fc.Value, &fc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, fc)
	}
	return counts, rows.Err()
}

func genSearchFilter(cid int64, req models_calendar.SearchRequest) (string, []any, error) {
	conditions := []condition{{clause: "e.cid = ?", args: []any{cid}}}
	if req.From != nil && req.Until != nil && !req.From.Before(*req.Until) {
		return "", nil, models_error.NewInvalidInputError(errors.New("invalid time range"))
	}
	if req.From != nil {
		from := req.From.UnixMilli()
		conditions = append(conditions, condition{clause: "(e.end_ts > ? OR e.start_ts >= ?)", args: []any{from, from}})
	}
	if req.Until != nil {
		conditions = append(conditions, condition{clause: "e.start_ts < ?", args: []any{req.Until.UnixMilli()}})
	}
	for _, facet := range req.Facets {
		c, err := genFacetCondition(facet)
		if err != nil {
			return "", nil, models_error.NewInvalidInputError(err)
		}
		conditions = append(conditions, c)
	}
	var clauses []string
	var args []any
	for _, c := range conditions {
		clauses = append(clauses, c.clause)
		args = append(args, c.args...)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

// genFacetCondition ORs the values of a facet.
func genFacetCondition(facet models_calendar.Facet) (condition, error) {
	if len(facet.Values) == 0 {
		return condition{}, fmt.Errorf("facet '%s' without values", facet.Type)
	}
	var c condition
	switch facet.Type {
	case models_calendar.FacetGlobal, models_calendar.FacetSubject, models_calendar.FacetLocation, models_calendar.FacetDescription, models_calendar.FacetOrganizer:
		var parts []string
		for _, v := range facet.Values {
			if strings.TrimSpace(v) == "" {
				return condition{}, fmt.Errorf("empty value for facet '%s'", facet.Type)
			}
			for _, col := range textColumns[facet.Type] {
				parts = append(parts, "LOWER("+col+") LIKE ? ESCAPE '!'")
				c.args = append(c.args, likePattern(v))
			}
		}
		c.clause = "(" + strings.Join(parts, " OR ") + ")"
	case models_calendar.FacetAttendee:
		var parts []string
		for _, v := range facet.Values {
			if strings.TrimSpace(v) == "" {
				return condition{}, fmt.Errorf("empty value for facet '%s'", facet.Type)
			}
			parts = append(parts, "LOWER(a.mail) LIKE ? ESCAPE '!'")
			c.args = append(c.args, likePattern(v))
		}
		c.clause = "EXISTS (SELECT 1 FROM event_attendees a WHERE a.cid = e.cid AND a.event_id = e.id AND (" + strings.Join(parts, " OR ") + "))"
	case models_calendar.FacetFolder:
		for _, v := range facet.Values {
			id, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return condition{}, fmt.Errorf("invalid folder id '%s'", v)
			}
			c.args = append(c.args, id)
		}
		c.clause = "e.folder_id IN (" + helper_slices.GenQuestionMarks(len(c.args)) + ")"
	case models_calendar.FacetStatus:
		for _, v := range facet.Values {
			s := strings.ToUpper(v)
			if _, ok := models_calendar.AttendeeStatuses[s]; !ok {
				return condition{}, fmt.Errorf("invalid status '%s'", v)
			}
			c.args = append(c.args, s)
		}
		c.clause = "EXISTS (SELECT 1 FROM event_attendees a WHERE a.cid = e.cid AND a.event_id = e.id AND a.status IN (" + helper_slices.GenQuestionMarks(len(c.args)) + "))"
	case models_calendar.FacetAllDay:
		for _, v := range facet.Values {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return condition{}, fmt.Errorf("invalid all_day value '%s'", v)
			}
			c.args = append(c.args, helper_slices.BoolToInt(b))
		}
		c.clause = "e.all_day IN (" + helper_slices.GenQuestionMarks(len(c.args)) + ")"
	case models_calendar.FacetTimezone:
		for _, v := range facet.Values {
			c.args = append(c.args, v)
		}
		c.clause = "e.timezone IN (" + helper_slices.GenQuestionMarks(len(c.args)) + ")"
	default:
		return condition{}, fmt.Errorf("unknown facet '%s'", facet.Type)
	}
	return c, nil
}

func likePattern(v string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(v)) + "%"
}
