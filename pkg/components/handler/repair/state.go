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
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/repair"
)

type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func ListStates(ctx context.Context, e executor, d dialect.Dialect) ([]models_repair.TaskState, error) {
	rows, err := e.QueryContext(ctx, "SELECT task_name, successful, rows_affected, last_modified FROM update_tasks ORDER BY task_name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var states []models_repair.TaskState
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, rows.Err()
}

func readState(ctx context.Context, e executor, d dialect.Dialect, name string) (models_repair.TaskState, error) {
	state, err := scanState(e.QueryRowContext(ctx, d.Rebind("SELECT task_name, successful, rows_affected, last_modified FROM update_tasks WHERE task_name = ?"), name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models_repair.TaskState{}, models_error.NotFoundErr
		}
		return models_repair.TaskState{}, err
	}
	return state, nil
}

func recordState(ctx context.Context, e executor, d dialect.Dialect, name string, successful bool, rows int64) error {
	if _, err := e.ExecContext(ctx, d.Rebind("DELETE FROM update_tasks WHERE task_name = ?"), name); err != nil {
		return err
	}
	var s int
	if successful {
		s = 1
	}
	_, err := e.ExecContext(ctx, d.Rebind("INSERT INTO update_tasks (task_name, successful, rows_affected, last_modified) VALUES (?, ?, ?, ?)"), name, s, rows, time.Now().UnixMilli())
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanState(s scanner) (models_repair.TaskState, error) {
	var state models_repair.TaskState
	var successful int
	var lm int64
	if err := s.Scan(&state.Name, &successful, &state.RowsAffected, &lm); err != nil {
		return models_repair.TaskState{}, err
	}
	state.Successful = successful != 0
	state.LastModified = time.UnixMilli(lm).UTC()
	return state, nil
}
