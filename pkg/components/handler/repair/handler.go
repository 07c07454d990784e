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
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/repair"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
	"golang.org/x/sync/errgroup"
)

var logger = slog.Default()

func InitLogger(sl *slog.Logger) {
	logger = sl
}

// Target is a schema the tasks run against.
type Target struct {
	PoolID  int64
	Schema  string
	DB      *sql.DB
	Dialect dialect.Dialect
}

type Handler struct {
	tasks    []Task
	index    map[string]int
	parallel int
}

func New(config Config, tasks ...Task) *Handler {
	h := &Handler{
		tasks:    tasks,
		index:    make(map[string]int, len(tasks)),
		parallel: config.Parallel,
	}
	if h.parallel <= 0 {
		h.parallel = 1
	}
	for i, t := range tasks {
		h.index[t.Name()] = i
	}
	return h
}

func (h *Handler) Tasks() []models_repair.TaskInfo {
	infos := make([]models_repair.TaskInfo, 0, len(h.tasks))
	for _, t := range h.tasks {
		infos = append(infos, models_repair.TaskInfo{Name: t.Name(), Description: t.Description()})
	}
	return infos
}

// Select returns the named tasks in registration order, all tasks if names is empty.
func (h *Handler) Select(names []string) ([]Task, error) {
	if len(names) == 0 {
		return h.tasks, nil
	}
	idx := make([]int, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		i, ok := h.index[name]
		if !ok {
			return nil, models_error.NewInvalidInputError(fmt.Errorf("unknown task '%s'", name))
		}
		if _, ok = seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		idx = append(idx, i)
	}
	sort.Ints(idx)
	tasks := make([]Task, 0, len(idx))
	for _, i := range idx {
		tasks = append(tasks, h.tasks[i])
	}
	return tasks, nil
}

// Run executes the tasks on every target. Targets are processed in parallel,
// tasks of a target one after another, each in its own transaction.
func (h *Handler) Run(ctx context.Context, targets []Target, names []string, force bool) (models_repair.Report, error) {
	tasks, err := h.Select(names)
	if err != nil {
		return models_repair.Report{}, err
	}
	start := time.Now()
	var mu sync.Mutex
	var results []models_repair.TaskResult
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(h.parallel)
	for _, target := range targets {
		eg.Go(func() error {
			var tResults []models_repair.TaskResult
			for _, task := range tasks {
				if err := egCtx.Err(); err != nil {
					return err
				}
				tResults = append(tResults, h.runTask(egCtx, target, task, force))
			}
			mu.Lock()
			results = append(results, tResults...)
			mu.Unlock()
			return nil
		})
	}
	if err = eg.Wait(); err != nil {
		return models_repair.Report{}, err
	}
	order := make(map[string]int, len(tasks))
	for i, t := range tasks {
		order[t.Name()] = i
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].PoolID != results[j].PoolID {
			return results[i].PoolID < results[j].PoolID
		}
		if results[i].Schema != results[j].Schema {
			return results[i].Schema < results[j].Schema
		}
		return order[results[i].Task] < order[results[j].Task]
	})
	return models_repair.Report{Results: results, Duration: time.Since(start)}, nil
}

func (h *Handler) runTask(ctx context.Context, target Target, task Task, force bool) models_repair.TaskResult {
	result := models_repair.TaskResult{PoolID: target.PoolID, Schema: target.Schema, Task: task.Name()}
	status, n, err := h.execTask(ctx, target, task, force)
	result.Status = status
	result.RowsAffected = n
	if err != nil {
		result.Status = models_repair.StatusFailed
		result.Error = err.Error()
		logger.Error("repair task failed", slog_attr.PoolIDKey, target.PoolID, slog_attr.SchemaKey, target.Schema, slog_attr.TaskKey, task.Name(), slog_attr.ErrorKey, err)
		if e := recordState(ctx, target.DB, target.Dialect, task.Name(), false, 0); e != nil {
			logger.Error("recording task state failed", slog_attr.SchemaKey, target.Schema, slog_attr.TaskKey, task.Name(), slog_attr.ErrorKey, e)
		}
		return result
	}
	if status == models_repair.StatusOK {
		logger.Info("repair task executed", slog_attr.PoolIDKey, target.PoolID, slog_attr.SchemaKey, target.Schema, slog_attr.TaskKey, task.Name(), slog_attr.RowsKey, n)
	}
	return result
}

// execTask commits the fix together with the task state or rolls both back.
func (h *Handler) execTask(ctx context.Context, target Target, task Task, force bool) (string, int64, error) {
	tx, err := target.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", 0, err
	}
	defer tx.Rollback()
	if !force {
		state, err := readState(ctx, tx, target.Dialect, task.Name())
		if err != nil && !errors.Is(err, models_error.NotFoundErr) {
			return "", 0, err
		}
		if err == nil && state.Successful {
			return models_repair.StatusSkipped, 0, nil
		}
	}
	ok, err := task.Required(ctx, tx, target.Dialect)
	if err != nil {
		return "", 0, err
	}
	status := models_repair.StatusClean
	var n int64
	if ok {
		if n, err = task.Run(ctx, tx, target.Dialect); err != nil {
			return "", 0, err
		}
		status = models_repair.StatusOK
	}
	if err = recordState(ctx, tx, target.Dialect, task.Name(), true, n); err != nil {
		return "", 0, err
	}
	if err = tx.Commit(); err != nil {
		return "", 0, err
	}
	return status, n, nil
}
