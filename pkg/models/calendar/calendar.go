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

package calendar

import "time"

const (
	StatusNeedsAction = "NEEDS-ACTION"
	StatusAccepted    = "ACCEPTED"
	StatusDeclined    = "DECLINED"
	StatusTentative   = "TENTATIVE"
	StatusDelegated   = "DELEGATED"
)

var AttendeeStatuses = map[string]struct{}{
	StatusNeedsAction: {},
	StatusAccepted:    {},
	StatusDeclined:    {},
	StatusTentative:   {},
	StatusDelegated:   {},
}

const (
	FacetGlobal      = "global"
	FacetSubject     = "subject"
	FacetLocation    = "location"
	FacetDescription = "description"
	FacetAttendee    = "attendee"
	FacetOrganizer   = "organizer"
	FacetFolder      = "folder"
	FacetStatus      = "status"
	FacetAllDay      = "all_day"
	FacetTimezone    = "timezone"
)

const (
	OrderStartAsc  = "start_asc"
	OrderStartDesc = "start_desc"
)

type Attendee struct {
	Mail   string `json:"mail" yaml:"mail"`
	UserID *int64 `json:"user_id,omitempty" yaml:"user_id,omitempty"`
	Status string `json:"status" yaml:"status"`
}

type Alarm struct {
	ID            int64         `json:"id" yaml:"id"`
	TriggerOffset time.Duration `json:"trigger_offset" yaml:"trigger_offset"` // relative to start
	Action        string        `json:"action" yaml:"action"`
}

type EventBase struct {
	FolderID    int64     `json:"folder_id" yaml:"folder_id"`
	Subject     string    `json:"subject" yaml:"subject"`
	Location    string    `json:"location" yaml:"location"`
	Description string    `json:"description" yaml:"description"`
	Start       time.Time `json:"start" yaml:"start"`
	End         time.Time `json:"end" yaml:"end"`
	AllDay      bool      `json:"all_day" yaml:"all_day"`
	Timezone    string    `json:"timezone" yaml:"timezone"`
	Organizer   string    `json:"organizer" yaml:"organizer"`
}

type Event struct {
	ID        int64 `json:"id" yaml:"id"`
	EventBase `yaml:",inline"`
	Attendees []Attendee `json:"attendees" yaml:"attendees"`
	Alarms    []Alarm    `json:"alarms" yaml:"alarms"`
	Created   time.Time  `json:"created" yaml:"created"`
	Updated   time.Time  `json:"updated" yaml:"updated"`
}

type EventCreateRequest struct {
	EventBase
	Attendees []Attendee `json:"attendees"`
	Alarms    []Alarm    `json:"alarms"`
}

type Facet struct {
	Type   string   `json:"type" yaml:"type"`
	Values []string `json:"values" yaml:"values"`
}

type SearchRequest struct {
	Facets []Facet    `json:"facets"`
	From   *time.Time `json:"from"`
	Until  *time.Time `json:"until"`
	Order  string     `json:"order"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

type SearchResult struct {
	Events []Event `json:"events" yaml:"events"`
	More   bool    `json:"more" yaml:"more"`
}

type FacetCount struct {
	Value string `json:"value" yaml:"value"`
	Count int64  `json:"count" yaml:"count"`
}
