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

package api

import (
	"net/http"
	"path"

	models_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/calendar"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	"github.com/gin-gonic/gin"
)

type eventsQuery struct {
	FolderID int64 `form:"folder_id"`
}

func getEventsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(ContextsPath, ":"+cidParam, EventsPath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var query eventsQuery
		if err = gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		events, err := a.service.ListEvents(gc.Request.Context(), cid, query.FolderID)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, events)
	}
}

func postEventH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join(ContextsPath, ":"+cidParam, EventsPath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var req models_calendar.EventCreateRequest
		if err = gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		event, err := a.service.CreateEvent(gc.Request.Context(), cid, req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, event)
	}
}

func getEventH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(ContextsPath, ":"+cidParam, EventsPath, ":"+eventIDParam), func(gc *gin.Context) {
		cid, id, err := tenantParams(gc, eventIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		event, err := a.service.GetEvent(gc.Request.Context(), cid, id)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, event)
	}
}

func deleteEventH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join(ContextsPath, ":"+cidParam, EventsPath, ":"+eventIDParam), func(gc *gin.Context) {
		cid, id, err := tenantParams(gc, eventIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		if err = a.service.DeleteEvent(gc.Request.Context(), cid, id); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

// postEventSearchH godoc
// @Summary Search events
// @Description Search the events of a context by facets and time range.
// @Tags Events
// @Accept json
// @Produce	json
// @Param cid path int true "context ID"
// @Param data body models_calendar.SearchRequest true "search request"
// @Success	200 {object} models_calendar.SearchResult "events"
// @Failure	400 {string} string "error message"
// @Failure	404 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /contexts/{cid}/events/search [post]
func postEventSearchH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join(ContextsPath, ":"+cidParam, EventsPath, SearchPath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var req models_calendar.SearchRequest
		if err = gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		res, err := a.service.SearchEvents(gc.Request.Context(), cid, req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, res)
	}
}

func postEventFacetsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join(ContextsPath, ":"+cidParam, EventsPath, FacetsPath, ":"+facetParam), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var req models_calendar.SearchRequest
		if err = gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		counts, err := a.service.EventFacetCounts(gc.Request.Context(), cid, gc.Param(facetParam), req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, counts)
	}
}
