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

package context

import "time"

const (
	ReasonMove        = "context-move"
	ReasonDelete      = "context-delete"
	ReasonMaintenance = "maintenance"
)

type ContextBase struct {
	Name    string `json:"name" yaml:"name"`
	QuotaMB int64  `json:"quota_mb" yaml:"quota_mb"`
}

type Context struct {
	ID          int64 `json:"id" yaml:"id"`
	ContextBase `yaml:",inline"`
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	Reason      string            `json:"reason,omitempty" yaml:"reason,omitempty"`
	PoolID      int64             `json:"pool_id" yaml:"pool_id"`
	Schema      string            `json:"schema" yaml:"schema"`
	Logins      []string          `json:"logins" yaml:"logins"`
	Attributes  map[string]string `json:"attributes" yaml:"attributes"`
	Created     time.Time         `json:"created" yaml:"created"`
	Updated     time.Time         `json:"updated" yaml:"updated"`
}

type ContextFilter struct {
	IDs     []int64
	Name    string // sql like pattern, '*' is accepted as wildcard
	Enabled int8   // 1 enabled, -1 disabled, 0 both
	Reason  string
	PoolID  int64
	Schema  string
	Login   string
}

type CreateRequest struct {
	ID int64 `json:"id"` // optional, allocated if zero
	ContextBase
	PoolID     int64             `json:"pool_id"` // optional, selected by load if zero
	Logins     []string          `json:"logins"`
	Attributes map[string]string `json:"attributes"`
	Admin      AdminUser         `json:"admin"`
}

type AdminUser struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Mail        string `json:"mail"`
}

type ChangeRequest struct {
	Name             *string           `json:"name"`
	QuotaMB          *int64            `json:"quota_mb"`
	AddLogins        []string          `json:"add_logins"`
	RemoveLogins     []string          `json:"remove_logins"`
	SetAttributes    map[string]string `json:"set_attributes"`
	RemoveAttributes []string          `json:"remove_attributes"`
}

type MoveRequest struct {
	PoolID int64 `json:"pool_id"`
}
