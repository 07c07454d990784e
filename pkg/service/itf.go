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

package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"time"

	handler_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/relocation"
	handler_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/repair"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	models_context "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/context"
	models_job "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/job"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	models_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/relocation"
	models_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/repair"
)

type DatabaseHandler interface {
	Ping(ctx context.Context) error
	BeginTransaction(ctx context.Context) (driver.Tx, error)
	ListPools(ctx context.Context) ([]models_pool.PoolInfo, error)
	ReadPool(ctx context.Context, itf driver.Tx, id int64) (models_pool.PoolInfo, error)
	CreatePool(ctx context.Context, itf driver.Tx, pool models_pool.Pool, timestamp time.Time) (int64, error)
	PoolNameExists(ctx context.Context, name string) (bool, error)
	DeletePool(ctx context.Context, itf driver.Tx, id int64) error
	ListSchemas(ctx context.Context, itf driver.Tx, poolID int64) ([]models_pool.Schema, error)
	CreateSchema(ctx context.Context, itf driver.Tx, poolID int64, name string, timestamp time.Time) error
	DeleteSchema(ctx context.Context, itf driver.Tx, poolID int64, name string) error
	CountSchemaContexts(ctx context.Context, itf driver.Tx, poolID int64, name string) (int, error)
	NextContextID(ctx context.Context, itf driver.Tx) (int64, error)
	ContextExists(ctx context.Context, itf driver.Tx, id int64, name string) (bool, error)
	CreateContext(ctx context.Context, itf driver.Tx, c models_context.Context) error
	ReadContext(ctx context.Context, itf driver.Tx, id int64) (models_context.Context, error)
	ListContexts(ctx context.Context, itf driver.Tx, filter models_context.ContextFilter) ([]models_context.Context, error)
	UpdateContext(ctx context.Context, itf driver.Tx, id int64, base models_context.ContextBase, timestamp time.Time) error
	SetContextEnabled(ctx context.Context, itf driver.Tx, id int64, enabled bool, reason string, timestamp time.Time) error
	DisableAllContexts(ctx context.Context, itf driver.Tx, reason string, timestamp time.Time) (int64, error)
	EnableAllContexts(ctx context.Context, itf driver.Tx, reason string, timestamp time.Time) (int64, error)
	SetContextLocation(ctx context.Context, itf driver.Tx, id int64, poolID int64, schema string, timestamp time.Time) error
	DeleteContext(ctx context.Context, itf driver.Tx, id int64) error
	AddLogins(ctx context.Context, itf driver.Tx, id int64, logins []string) error
	RemoveLogins(ctx context.Context, itf driver.Tx, id int64, logins []string) error
	MappedLogins(ctx context.Context, itf driver.Tx, logins []string) ([]string, error)
	ResolveLogin(ctx context.Context, login string) (int64, error)
	SetAttributes(ctx context.Context, itf driver.Tx, id int64, attributes map[string]string) error
	RemoveAttributes(ctx context.Context, itf driver.Tx, id int64, names []string) error
}

type ShardsHandler interface {
	Dialect(pool models_pool.Pool) (dialect.Dialect, error)
	Provision(ctx context.Context, pool models_pool.Pool, schemaName string) error
	DB(pool models_pool.Pool, schemaName string) (*sql.DB, error)
	Drop(ctx context.Context, pool models_pool.Pool, schemaName string) error
	ClosePool(poolID int64)
}

type RelocationEngine interface {
	VerifyCounts() bool
	Plan(ctx context.Context, ep handler_relocation.Endpoint) ([]string, error)
	Copy(ctx context.Context, src, dst handler_relocation.Endpoint, cid int64, order []string, progress func(models_relocation.TableStat)) ([]models_relocation.TableStat, error)
	Verify(ctx context.Context, src, dst handler_relocation.Endpoint, cid int64, order []string) error
	Purge(ctx context.Context, ep handler_relocation.Endpoint, cid int64, order []string) ([]models_relocation.TableStat, error)
	Rollback(ctx context.Context, dst handler_relocation.Endpoint, cid int64, copied []models_relocation.TableStat) error
	IsEmpty(ctx context.Context, ep handler_relocation.Endpoint, tables []string) (bool, error)
}

type RepairHandler interface {
	Tasks() []models_repair.TaskInfo
	Select(names []string) ([]handler_repair.Task, error)
	Run(ctx context.Context, targets []handler_repair.Target, names []string, force bool) (models_repair.Report, error)
}

type JobHandler interface {
	Create(desc string, tFunc func(context.Context, context.CancelFunc) (any, error)) (string, error)
	Get(id string) (models_job.Job, error)
	List(filter models_job.JobFilter) ([]models_job.Job, error)
	Cancel(id string) error
}
