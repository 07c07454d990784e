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
	"testing"
	"time"

	"github.com/SENERGY-Platform/go-cc-job-handler/ccjh"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_job "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/job"
	"go.uber.org/goleak"
)

func newHandler(t *testing.T, ctx context.Context, maxJobs int) (*Handler, *ccjh.Handler) {
	t.Helper()
	ccHandler := ccjh.New(10)
	if err := ccHandler.RunAsync(maxJobs, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	return New(ctx, ccHandler), ccHandler
}

func waitFor(t *testing.T, h *Handler, id string, cond func(models_job.Job) bool) models_job.Job {
	t.Helper()
	timeout := time.After(time.Second * 5)
	for {
		j, err := h.Get(id)
		if err != nil {
			t.Fatal(err)
		}
		if cond(j) {
			return j
		}
		select {
		case <-timeout:
			t.Fatalf("timeout waiting for job %s", id)
		case <-time.After(time.Millisecond * 5):
		}
	}
}

func completed(j models_job.Job) bool {
	return j.Completed != nil
}

func TestHandler(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cf := context.WithCancel(context.Background())
	h, ccHandler := newHandler(t, ctx, 1)
	defer func() {
		cf()
		ccHandler.Stop()
		h.Stop()
	}()
	t.Run("result", func(t *testing.T) {
		id, err := h.Create("test", func(ctx context.Context, _ context.CancelFunc) (any, error) {
			return 42, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		j := waitFor(t, h, id, completed)
		if j.Result != 42 || j.Error != nil || j.Started == nil || j.Description != "test" {
			t.Errorf("unexpected job %+v", j)
		}
	})
	t.Run("error", func(t *testing.T) {
		id, err := h.Create("test", func(ctx context.Context, _ context.CancelFunc) (any, error) {
			return nil, errors.New("test")
		})
		if err != nil {
			t.Fatal(err)
		}
		j := waitFor(t, h, id, completed)
		if j.Error != "test" {
			t.Errorf("expected error 'test', got %v", j.Error)
		}
	})
	t.Run("cancel running and pending", func(t *testing.T) {
		started := make(chan struct{})
		id1, err := h.Create("blocking", func(ctx context.Context, _ context.CancelFunc) (any, error) {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		})
		if err != nil {
			t.Fatal(err)
		}
		<-started
		id2, err := h.Create("pending", func(ctx context.Context, _ context.CancelFunc) (any, error) {
			return nil, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		jobs, err := h.List(models_job.JobFilter{Status: models_job.JobPending})
		if err != nil {
			t.Fatal(err)
		}
		if len(jobs) != 1 || jobs[0].ID != id2 {
			t.Errorf("expected pending job %s, got %v", id2, jobs)
		}
		if err = h.Cancel(id2); err != nil {
			t.Fatal(err)
		}
		if err = h.Cancel(id1); err != nil {
			t.Fatal(err)
		}
		j1 := waitFor(t, h, id1, completed)
		j2 := waitFor(t, h, id2, completed)
		if j1.Canceled == nil || j2.Canceled == nil {
			t.Error("expected canceled jobs")
		}
		if j2.Started != nil {
			t.Error("pending job must not start after cancel")
		}
	})
	t.Run("list", func(t *testing.T) {
		jobs, err := h.List(models_job.JobFilter{SortDesc: true})
		if err != nil {
			t.Fatal(err)
		}
		if len(jobs) != 4 {
			t.Fatalf("expected 4 jobs, got %d", len(jobs))
		}
		for i := 1; i < len(jobs); i++ {
			if jobs[i].Created.After(jobs[i-1].Created) {
				t.Error("expected descending order")
			}
		}
		jobs, err = h.List(models_job.JobFilter{Status: models_job.JobOK})
		if err != nil {
			t.Fatal(err)
		}
		if len(jobs) != 1 {
			t.Errorf("expected 1 job, got %d", len(jobs))
		}
		_, err = h.List(models_job.JobFilter{Status: "unknown"})
		var iie *models_error.InvalidInputError
		if !errors.As(err, &iie) {
			t.Errorf("expected InvalidInputError, got %v", err)
		}
	})
	t.Run("not found", func(t *testing.T) {
		var nfe *models_error.NotFoundError
		if _, err := h.Get("x"); !errors.As(err, &nfe) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
		if err := h.Cancel("x"); !errors.As(err, &nfe) {
			t.Errorf("expected NotFoundError, got %v", err)
		}
	})
	t.Run("purge", func(t *testing.T) {
		if n := h.PurgeJobs(time.Hour); n != 0 {
			t.Errorf("expected 0 purged jobs, got %d", n)
		}
		if n := h.PurgeJobs(0); n != 4 {
			t.Errorf("expected 4 purged jobs, got %d", n)
		}
	})
}

func TestRunPurge(t *testing.T) {
	defer goleak.VerifyNone(t)
	ctx, cf := context.WithCancel(context.Background())
	h, ccHandler := newHandler(t, ctx, 2)
	id, err := h.Create("test", func(ctx context.Context, _ context.CancelFunc) (any, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	waitFor(t, h, id, completed)
	done := make(chan struct{})
	go func() {
		h.RunPurge(ctx, time.Millisecond, 0)
		close(done)
	}()
	timeout := time.After(time.Second * 5)
	for {
		if _, err = h.Get(id); err != nil {
			break
		}
		select {
		case <-timeout:
			t.Fatal("timeout waiting for purge")
		case <-time.After(time.Millisecond * 5):
		}
	}
	cf()
	<-done
	ccHandler.Stop()
	h.Stop()
}

func TestStop(t *testing.T) {
	defer goleak.VerifyNone(t)
	ccHandler := ccjh.New(1)
	h := New(context.Background(), ccHandler)
	id, err := h.Create("queued", func(ctx context.Context, _ context.CancelFunc) (any, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	_, err = h.Create("overflow", func(ctx context.Context, _ context.CancelFunc) (any, error) {
		return nil, nil
	})
	var rbe *models_error.ResourceBusyError
	if !errors.As(err, &rbe) {
		t.Errorf("expected ResourceBusyError, got %v", err)
	}
	h.Stop()
	j, err := h.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if j.Started != nil || j.Canceled == nil || j.Completed == nil {
		t.Errorf("expected canceled job that never started, got %+v", j)
	}
	jobs, err := h.List(models_job.JobFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 {
		t.Errorf("expected 1 job, got %d", len(jobs))
	}
	if err = ccHandler.RunAsync(1, time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond * 20)
	if ccHandler.Pending() != 0 || ccHandler.Active() != 0 {
		t.Error("canceled job must be skipped")
	}
	ccHandler.Stop()
}
