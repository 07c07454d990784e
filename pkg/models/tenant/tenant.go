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

package tenant

import "time"

const (
	AllUsersGroupID = 0
	AdminUserID     = 1
)

const (
	SequenceUser  = "user"
	SequenceGroup = "group"
	SequenceEvent = "event"
)

type UserBase struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Mail        string `json:"mail" yaml:"mail"`
}

type User struct {
	ID       int64 `json:"id" yaml:"id"`
	UserBase `yaml:",inline"`
	Enabled  bool      `json:"enabled" yaml:"enabled"`
	Created  time.Time `json:"created" yaml:"created"`
}

type GroupBase struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"display_name" yaml:"display_name"`
}

type Group struct {
	ID        int64 `json:"id" yaml:"id"`
	GroupBase `yaml:",inline"`
	Members   []int64   `json:"members" yaml:"members"`
	Created   time.Time `json:"created" yaml:"created"`
	Updated   time.Time `json:"updated" yaml:"updated"`
}

type GroupCreateRequest struct {
	GroupBase
	Members []int64 `json:"members"`
}

type GroupChangeRequest struct {
	Name          *string `json:"name"`
	DisplayName   *string `json:"display_name"`
	AddMembers    []int64 `json:"add_members"`
	RemoveMembers []int64 `json:"remove_members"`
}
