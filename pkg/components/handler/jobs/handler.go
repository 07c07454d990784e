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

package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_job "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/job"
	"github.com/google/uuid"
)

var logger = slog.Default()

func InitLogger(sl *slog.Logger) {
	logger = sl
}

type Handler struct {
	mu        sync.RWMutex
	ctx       context.Context
	ccHandler *ccjh.Handler
	wg        sync.WaitGroup
	jobs      map[string]*job
}

func New(ctx context.Context, ccHandler *ccjh.Handler) *Handler {
	return &Handler{
		ctx:       ctx,
		ccHandler: ccHandler,
		jobs:      make(map[string]*job),
	}
}

// Create queues a job on the cc handler.
func (h *Handler) Create(desc string, tFunc func(context.Context, context.CancelFunc) (any, error)) (string, error) {
	uid, err := uuid.NewRandom()
	if err != nil {
		return "", models_error.NewInternalError(err)
	}
	id := uid.String()
	ctx, cf := context.WithCancel(h.ctx)
	j := &job{
		meta: models_job.Job{
			ID:          id,
			Created:     time.Now().UTC(),
			Description: desc,
		},
		tFunc: tFunc,
		ctx:   ctx,
		cFunc: cf,
		done:  h.wg.Done,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wg.Add(1)
	if err = h.ccHandler.Add(j); err != nil {
		h.wg.Done()
		cf()
		return "", models_error.NewResourceBusyError(err)
	}
	h.jobs[id] = j
	return id, nil
}

func (h *Handler) Get(id string) (models_job.Job, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	j, ok := h.jobs[id]
	if !ok {
		return models_job.Job{}, models_error.NewNotFoundError(fmt.Errorf("job %s not found", id))
	}
	return j.Meta(), nil
}

func (h *Handler) Cancel(id string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	j, ok := h.jobs[id]
	if !ok {
		return models_error.NewNotFoundError(fmt.Errorf("job %s not found", id))
	}
	j.Cancel()
	return nil
}

func (h *Handler) List(filter models_job.JobFilter) ([]models_job.Job, error) {
	if filter.Status != "" {
		if _, ok := models_job.JobStateMap[filter.Status]; !ok {
			return nil, models_error.NewInvalidInputError(fmt.Errorf("unknown job status '%s'", filter.Status))
		}
	}
	var jobs []models_job.Job
	h.mu.RLock()
	for _, v := range h.jobs {
		m := v.Meta()
		if check(filter, m) {
			jobs = append(jobs, m)
		}
	}
	h.mu.RUnlock()
	if filter.SortDesc {
		sort.Slice(jobs, func(i, j int) bool {
			return jobs[i].Created.After(jobs[j].Created)
		})
	} else {
		sort.Slice(jobs, func(i, j int) bool {
			return jobs[i].Created.Before(jobs[j].Created)
		})
	}
	return jobs, nil
}

// PurgeJobs removes finished jobs created more than maxAge ago.
func (h *Handler) PurgeJobs(maxAge time.Duration) int {
	var l []string
	tNow := time.Now().UTC()
	h.mu.RLock()
	for k, v := range h.jobs {
		m := v.Meta()
		if m.Completed != nil {
			if tNow.Sub(m.Created) >= maxAge {
				l = append(l, k)
			}
		}
	}
	h.mu.RUnlock()
	h.mu.Lock()
	for _, id := range l {
		delete(h.jobs, id)
	}
	h.mu.Unlock()
	return len(l)
}

// RunPurge purges old jobs every interval until ctx is done.
func (h *Handler) RunPurge(ctx context.Context, interval, maxAge time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := h.PurgeJobs(maxAge); n > 0 {
				logger.Debug(fmt.Sprintf("purged %d jobs", n))
			}
		}
	}
}

// Stop cancels jobs that have not started and blocks until running jobs have returned.
func (h *Handler) Stop() {
	h.mu.RLock()
	for _, j := range h.jobs {
		if j.Meta().Started == nil {
			j.Cancel()
		}
	}
	h.mu.RUnlock()
	h.wg.Wait()
}

func check(filter models_job.JobFilter, job models_job.Job) bool {
	if !filter.Since.IsZero() && !job.Created.After(filter.Since) {
		return false
	}
	if !filter.Until.IsZero() && !job.Created.Before(filter.Until) {
		return false
	}
	switch filter.Status {
	case models_job.JobPending:
		if job.Started != nil || job.Canceled != nil || job.Completed != nil {
			return false
		}
	case models_job.JobRunning:
		if job.Started == nil || job.Canceled != nil || job.Completed != nil {
			return false
		}
	case models_job.JobCanceled:
		if job.Canceled == nil {
			return false
		}
	case models_job.JobCompleted:
		if job.Completed == nil {
			return false
		}
	case models_job.JobError:
		if job.Completed == nil || job.Error == nil {
			return false
		}
	case models_job.JobOK:
		if job.Completed == nil || job.Error != nil {
			return false
		}
	}
	return true
}
