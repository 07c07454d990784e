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
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	srv_info_hdl "github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
	models_context "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/context"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_job "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/job"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

type mockService struct {
	serviceItf
	healthErr   error
	pool        models_pool.Pool
	filter      models_context.ContextFilter
	contexts    map[int64]models_context.Context
	reason      string
	moveCID     int64
	movePool    int64
	jobFilter   models_job.JobFilter
	busyContext int64
}

func (m *mockService) Health(_ context.Context) error {
	return m.healthErr
}

func (m *mockService) RegisterPool(_ context.Context, pool models_pool.Pool) (int64, error) {
	if pool.Name == "" {
		return 0, models_error.NewInvalidInputError(errors.New("missing name"))
	}
	m.pool = pool
	return 3, nil
}

func (m *mockService) ListContexts(_ context.Context, filter models_context.ContextFilter) ([]models_context.Context, error) {
	m.filter = filter
	var contexts []models_context.Context
	for _, c := range m.contexts {
		contexts = append(contexts, c)
	}
	return contexts, nil
}

func (m *mockService) GetContext(_ context.Context, cid int64) (models_context.Context, error) {
	c, ok := m.contexts[cid]
	if !ok {
		return models_context.Context{}, models_error.NewNotFoundError(errors.New("context not found"))
	}
	return c, nil
}

func (m *mockService) DeleteContext(_ context.Context, cid int64) error {
	if cid == m.busyContext {
		return models_error.NewResourceBusyError(errors.New("context busy"))
	}
	delete(m.contexts, cid)
	return nil
}

func (m *mockService) DisableAllContexts(_ context.Context, reason string) (int64, error) {
	m.reason = reason
	return int64(len(m.contexts)), nil
}

func (m *mockService) StartMoveContext(_ context.Context, cid, targetPoolID int64) (string, error) {
	m.moveCID = cid
	m.movePool = targetPoolID
	return "job-1", nil
}

func (m *mockService) GetJobs(_ context.Context, filter models_job.JobFilter) ([]models_job.Job, error) {
	m.jobFilter = filter
	return []models_job.Job{}, nil
}

func newTestApi(t *testing.T, srv *mockService) (*Api, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := New(srv, srv_info_hdl.New("context-manager", "v0.0.0"), reg, logger, true)
	require.NoError(t, err)
	return a, reg
}

func do(a *Api, method, target, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	return rec
}

func TestApi(t *testing.T) {
	srv := &mockService{
		contexts: map[int64]models_context.Context{
			7: {ID: 7, ContextBase: models_context.ContextBase{Name: "seven"}, Enabled: true, PoolID: 1, Schema: "ctx_1_1"},
		},
		busyContext: 8,
	}
	a, reg := newTestApi(t, srv)
	t.Run("health check", func(t *testing.T) {
		rec := do(a, http.MethodGet, HealthCheckPath, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "context-manager", rec.Header().Get(HeaderSrvName))
		require.NotEmpty(t, rec.Header().Get(HeaderRequestID))
		srv.healthErr = models_error.NewInternalError(errors.New("database unreachable"))
		rec = do(a, http.MethodGet, HealthCheckPath, "")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		srv.healthErr = nil
	})
	t.Run("register pool", func(t *testing.T) {
		rec := do(a, http.MethodPost, PoolsPath, `{"name":"p1","driver":"sqlite","address":"/tmp","max_contexts":10,"contexts_per_schema":5}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "3", rec.Body.String())
		require.Equal(t, "p1", srv.pool.Name)
		require.Equal(t, 5, srv.pool.ContextsPerSchema)
		rec = do(a, http.MethodPost, PoolsPath, `{"driver":"sqlite"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		rec = do(a, http.MethodPost, PoolsPath, `{"name":`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("list contexts", func(t *testing.T) {
		rec := do(a, http.MethodGet, ContextsPath+"?ids=7&ids=9&enabled=false&pool_id=1&name=se*", "")
		require.Equal(t, http.StatusOK, rec.Code)
		expected := models_context.ContextFilter{IDs: []int64{7, 9}, Name: "se*", Enabled: -1, PoolID: 1}
		if diff := cmp.Diff(expected, srv.filter); diff != "" {
			t.Error(diff)
		}
		var contexts []models_context.Context
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &contexts))
		require.Len(t, contexts, 1)
		require.Equal(t, "seven", contexts[0].Name)
		rec = do(a, http.MethodGet, ContextsPath+"?enabled=maybe", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("get context", func(t *testing.T) {
		rec := do(a, http.MethodGet, ContextsPath+"/7", "")
		require.Equal(t, http.StatusOK, rec.Code)
		rec = do(a, http.MethodGet, ContextsPath+"/70", "")
		require.Equal(t, http.StatusNotFound, rec.Code)
		rec = do(a, http.MethodGet, ContextsPath+"/seven", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("disable all", func(t *testing.T) {
		rec := do(a, http.MethodPatch, ContextsPath+"/"+DisablePath+"?reason=maintenance", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "1", rec.Body.String())
		require.Equal(t, "maintenance", srv.reason)
	})
	t.Run("move", func(t *testing.T) {
		rec := do(a, http.MethodPatch, ContextsPath+"/7/"+MovePath, `{"pool_id":2}`)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "job-1", rec.Body.String())
		require.EqualValues(t, 7, srv.moveCID)
		require.EqualValues(t, 2, srv.movePool)
	})
	t.Run("delete busy", func(t *testing.T) {
		rec := do(a, http.MethodDelete, ContextsPath+"/8", "")
		require.Equal(t, http.StatusConflict, rec.Code)
	})
	t.Run("jobs", func(t *testing.T) {
		rec := do(a, http.MethodGet, JobsPath+"?status=running&sort_desc=true&since=2025-01-02T03:04:05Z", "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, models_job.JobRunning, srv.jobFilter.Status)
		require.True(t, srv.jobFilter.SortDesc)
		require.Equal(t, 2025, srv.jobFilter.Since.Year())
		rec = do(a, http.MethodGet, JobsPath+"?until=yesterday", "")
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("metrics", func(t *testing.T) {
		counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_requests_total", Help: "test"})
		require.NoError(t, reg.Register(counter))
		counter.Inc()
		rec := do(a, http.MethodGet, MetricsPath, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "test_requests_total 1")
	})
}

func TestGetStatusCode(t *testing.T) {
	cases := map[error]int{
		models_error.NewNotFoundError(errors.New("a")):     http.StatusNotFound,
		models_error.NewInvalidInputError(errors.New("b")): http.StatusBadRequest,
		models_error.NewResourceBusyError(errors.New("c")): http.StatusConflict,
		models_error.NewInternalError(errors.New("d")):     http.StatusInternalServerError,
		errors.New("e"): 0,
	}
	for err, code := range cases {
		if c := getStatusCode(err); c != code {
			t.Errorf("%s: expected %d, got %d", err, code, c)
		}
	}
}
