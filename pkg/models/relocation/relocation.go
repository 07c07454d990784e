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

package relocation

import "time"

type TableStat struct {
	Table string `json:"table" yaml:"table"`
	Rows  int64  `json:"rows" yaml:"rows"`
}

type MoveResult struct {
	ContextID     int64         `json:"context_id" yaml:"context_id"`
	SourcePoolID  int64         `json:"source_pool_id" yaml:"source_pool_id"`
	SourceSchema  string        `json:"source_schema" yaml:"source_schema"`
	TargetPoolID  int64         `json:"target_pool_id" yaml:"target_pool_id"`
	TargetSchema  string        `json:"target_schema" yaml:"target_schema"`
	Tables        []TableStat   `json:"tables" yaml:"tables"`
	SchemaDropped bool          `json:"schema_dropped" yaml:"schema_dropped"`
	Warnings      []string      `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Duration      time.Duration `json:"duration" yaml:"duration"`
}

func (r MoveResult) Rows() int64 {
	var n int64
	for _, t := range r.Tables {
		n += t.Rows
	}
	return n
}
