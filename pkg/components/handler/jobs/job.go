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
	"errors"
	"sync"
	"time"

	models_job "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/job"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
)

type job struct {
	mu    sync.RWMutex
	meta  models_job.Job
	tFunc func(context.Context, context.CancelFunc) (any, error)
	ctx   context.Context
	cFunc context.CancelFunc
	done  func()
}

func (j *job) CallTarget(cbk func()) {
	defer cbk()
	j.mu.Lock()
	if j.meta.Completed != nil {
		j.mu.Unlock()
		return
	}
	t := time.Now().UTC()
	j.meta.Started = &t
	j.mu.Unlock()
	logger.Debug("job started", slog_attr.JobIDKey, j.meta.ID)
	res, err := j.tFunc(j.ctx, j.cFunc)
	j.mu.Lock()
	if err != nil {
		j.meta.Error = err.Error()
	}
	j.meta.Result = res
	t2 := time.Now().UTC()
	j.meta.Completed = &t2
	j.mu.Unlock()
	j.cFunc()
	logger.Debug("job completed", slog_attr.JobIDKey, j.meta.ID)
	j.done()
}

func (j *job) IsCanceled() bool {
	return errors.Is(j.ctx.Err(), context.Canceled)
}

// Cancel cancels the job context. A job that has not started is completed right away.
func (j *job) Cancel() {
	j.cFunc()
	j.mu.Lock()
	if j.meta.Completed != nil {
		j.mu.Unlock()
		return
	}
	t := time.Now().UTC()
	if j.meta.Canceled == nil {
		j.meta.Canceled = &t
	}
	pending := j.meta.Started == nil
	if pending {
		j.meta.Error = context.Canceled.Error()
		j.meta.Completed = &t
	}
	j.mu.Unlock()
	if pending {
		j.done()
	}
}

func (j *job) Meta() models_job.Job {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.meta
}
