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

package api

import (
	"context"

	srv_info_hdl "github.com/SENERGY-Platform/go-service-base/srv-info-hdl"
	models_calendar "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/calendar"
	models_context "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/context"
	models_job "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/job"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	models_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/repair"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
)

type serviceItf interface {
	Health(ctx context.Context) error
	RegisterPool(ctx context.Context, pool models_pool.Pool) (int64, error)
	ListPools(ctx context.Context) ([]models_pool.PoolInfo, error)
	GetPool(ctx context.Context, id int64) (models_pool.PoolInfo, error)
	UnregisterPool(ctx context.Context, id int64) error
	ListSchemas(ctx context.Context, poolID int64) ([]models_pool.Schema, error)
	CreateContext(ctx context.Context, req models_context.CreateRequest) (models_context.Context, error)
	ChangeContext(ctx context.Context, cid int64, req models_context.ChangeRequest) (models_context.Context, error)
	EnableContext(ctx context.Context, cid int64) error
	DisableContext(ctx context.Context, cid int64, reason string) error
	EnableAllContexts(ctx context.Context, reason string) (int64, error)
	DisableAllContexts(ctx context.Context, reason string) (int64, error)
	DeleteContext(ctx context.Context, cid int64) error
	GetContext(ctx context.Context, cid int64) (models_context.Context, error)
	ListContexts(ctx context.Context, filter models_context.ContextFilter) ([]models_context.Context, error)
	ResolveLogin(ctx context.Context, login string) (int64, error)
	StartMoveContext(ctx context.Context, cid, targetPoolID int64) (string, error)
	CreateGroup(ctx context.Context, cid int64, req models_tenant.GroupCreateRequest) (models_tenant.Group, error)
	GetGroup(ctx context.Context, cid, id int64) (models_tenant.Group, error)
	ListGroups(ctx context.Context, cid int64) ([]models_tenant.Group, error)
	ChangeGroup(ctx context.Context, cid, id int64, req models_tenant.GroupChangeRequest) (models_tenant.Group, error)
	DeleteGroup(ctx context.Context, cid, id int64) error
	CreateUser(ctx context.Context, cid int64, base models_tenant.UserBase) (models_tenant.User, error)
	ListUsers(ctx context.Context, cid int64) ([]models_tenant.User, error)
	GetUser(ctx context.Context, cid, id int64) (models_tenant.User, error)
	DeleteUser(ctx context.Context, cid, id int64) error
	CreateEvent(ctx context.Context, cid int64, req models_calendar.EventCreateRequest) (models_calendar.Event, error)
	GetEvent(ctx context.Context, cid, id int64) (models_calendar.Event, error)
	DeleteEvent(ctx context.Context, cid, id int64) error
	ListEvents(ctx context.Context, cid, folderID int64) ([]models_calendar.Event, error)
	SearchEvents(ctx context.Context, cid int64, req models_calendar.SearchRequest) (models_calendar.SearchResult, error)
	EventFacetCounts(ctx context.Context, cid int64, facetType string, req models_calendar.SearchRequest) ([]models_calendar.FacetCount, error)
	RepairTasks(ctx context.Context) []models_repair.TaskInfo
	StartRepair(ctx context.Context, req models_repair.Request) (string, error)
	GetJobs(ctx context.Context, filter models_job.JobFilter) ([]models_job.Job, error)
	GetJob(ctx context.Context, id string) (models_job.Job, error)
	CancelJob(ctx context.Context, id string) error
}

type infoHandler interface {
	ServiceInfo() srv_info_hdl.ServiceInfo
	Version() string
	Name() string
}
