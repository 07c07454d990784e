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

import "time"

const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusClean   = "clean"
	StatusFailed  = "failed"
)

type TaskInfo struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
}

type Request struct {
	Tasks   []string `json:"tasks"`    // all tasks if empty
	PoolIDs []int64  `json:"pool_ids"` // all pools if empty
	Force   bool     `json:"force"`    // run tasks already recorded as successful
}

type TaskResult struct {
	PoolID       int64  `json:"pool_id" yaml:"pool_id"`
	Schema       string `json:"schema" yaml:"schema"`
	Task         string `json:"task" yaml:"task"`
	Status       string `json:"status" yaml:"status"`
	RowsAffected int64  `json:"rows_affected" yaml:"rows_affected"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
}

type Report struct {
	Results  []TaskResult  `json:"results" yaml:"results"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

type TaskState struct {
	Name         string
	Successful   bool
	RowsAffected int64
	LastModified time.Time
}
