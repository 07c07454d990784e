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

package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	handler_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/calendar"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	models_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/calendar"
)

func (s *Service) CreateEvent(ctx context.Context, cid int64, req models_calendar.EventCreateRequest) (models_calendar.Event, error) {
	var event models_calendar.Event
	err := s.tenantWrite(ctx, cid, "create event", func(tx *sql.Tx, d dialect.Dialect) error {
		var err error
		event, err = handler_calendar.CreateEvent(ctx, tx, d, cid, req, time.Now().UTC())
		return wrapErr(err, "event")
	})
	return event, err
}

func (s *Service) GetEvent(ctx context.Context, cid, id int64) (models_calendar.Event, error) {
	ep, err := s.tenantEndpoint(ctx, cid)
	if err != nil {
		return models_calendar.Event{}, err
	}
	event, err := handler_calendar.ReadEvent(ctx, ep.DB, ep.Dialect, cid, id)
	if err != nil {
		return models_calendar.Event{}, wrapErr(err, fmt.Sprintf("event %d", id))
	}
	return event, nil
}

func (s *Service) DeleteEvent(ctx context.Context, cid, id int64) error {
	return s.tenantWrite(ctx, cid, "delete event", func(tx *sql.Tx, d dialect.Dialect) error {
		return wrapErr(handler_calendar.DeleteEvent(ctx, tx, d, cid, id), fmt.Sprintf("event %d", id))
	})
}

func (s *Service) SearchEvents(ctx context.Context, cid int64, req models_calendar.SearchRequest) (models_calendar.SearchResult, error) {
	ep, err := s.tenantEndpoint(ctx, cid)
	if err != nil {
		return models_calendar.SearchResult{}, err
	}
	res, err := handler_calendar.Search(ctx, ep.DB, ep.Dialect, cid, req)
	if err != nil {
		return models_calendar.SearchResult{}, wrapErr(err, "event")
	}
	return res, nil
}

func (s *Service) EventFacetCounts(ctx context.Context, cid int64, facetType string, req models_calendar.SearchRequest) ([]models_calendar.FacetCount, error) {
	ep, err := s.tenantEndpoint(ctx, cid)
	if err != nil {
		return nil, err
	}
	counts, err := handler_calendar.FacetCounts(ctx, ep.DB, ep.Dialect, cid, facetType, req)
	if err != nil {
		return nil, wrapErr(err, "event")
	}
	return counts, nil
}

func (s *Service) ListEvents(ctx context.Context, cid, folderID int64) ([]models_calendar.Event, error) {
	ep, err := s.tenantEndpoint(ctx, cid)
	if err != nil {
		return nil, err
	}
	events, err := handler_calendar.ListEvents(ctx, ep.DB, ep.Dialect, cid, folderID)
	if err != nil {
		return nil, wrapErr(err, "event")
	}
	return events, nil
}
