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
	"errors"
	"fmt"
	"log/slog"
	"sync"

	handler_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/relocation"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/context_lock"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
)

var logger = slog.Default()

func InitLogger(sl *slog.Logger) {
	logger = sl
}

const defaultSchemaPrefix = "ctx"

type Config struct {
	SchemaPrefix string `json:"schema_prefix" env_var:"SCHEMA_PREFIX"`
}

type Service struct {
	dbHdl       DatabaseHandler
	shardsHdl   ShardsHandler
	relocEngine RelocationEngine
	repairHdl   RepairHandler
	jobHdl      JobHandler
	metrics     *Metrics
	locker      *context_lock.Locker
	config      Config
	placementMu sync.Mutex
	reserved    reservations
}

func New(dbHdl DatabaseHandler, shardsHdl ShardsHandler, relocEngine RelocationEngine, repairHdl RepairHandler, jobHdl JobHandler, metrics *Metrics, config Config) *Service {
	if config.SchemaPrefix == "" {
		config.SchemaPrefix = defaultSchemaPrefix
	}
	return &Service{
		dbHdl:       dbHdl,
		shardsHdl:   shardsHdl,
		relocEngine: relocEngine,
		repairHdl:   repairHdl,
		jobHdl:      jobHdl,
		metrics:     metrics,
		locker:      context_lock.New(),
		config:      config,
	}
}

// Health checks the config database connection.
func (s *Service) Health(ctx context.Context) error {
	if err := s.dbHdl.Ping(ctx); err != nil {
		return models_error.NewInternalError(err)
	}
	return nil
}

func (s *Service) lockContext(cid int64, reason string) error {
	if err := s.locker.TryLock(cid, reason); err != nil {
		return models_error.NewResourceBusyError(err)
	}
	return nil
}

func (s *Service) lockAll(reason string) error {
	if err := s.locker.TryLockAll(reason); err != nil {
		return models_error.NewResourceBusyError(err)
	}
	return nil
}

func (s *Service) readPool(ctx context.Context, itf driver.Tx, id int64) (models_pool.PoolInfo, error) {
	pool, err := s.dbHdl.ReadPool(ctx, itf, id)
	if err != nil {
		if errors.Is(err, models_error.NotFoundErr) {
			return models_pool.PoolInfo{}, models_error.NewNotFoundError(fmt.Errorf("pool %d not found", id))
		}
		return models_pool.PoolInfo{}, models_error.NewInternalError(err)
	}
	return pool, nil
}

func (s *Service) endpoint(pool models_pool.Pool, schema string) (handler_relocation.Endpoint, error) {
	d, err := s.shardsHdl.Dialect(pool)
	if err != nil {
		return handler_relocation.Endpoint{}, err
	}
	db, err := s.shardsHdl.DB(pool, schema)
	if err != nil {
		return handler_relocation.Endpoint{}, err
	}
	return handler_relocation.Endpoint{DB: db, Dialect: d}, nil
}

// inConfigTx runs f in a config database transaction and commits if f succeeds.
func (s *Service) inConfigTx(ctx context.Context, f func(tx driver.Tx) error) error {
	tx, err := s.dbHdl.BeginTransaction(ctx)
	if err != nil {
		return models_error.NewInternalError(err)
	}
	defer tx.Rollback()
	if err = f(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return models_error.NewInternalError(err)
	}
	return nil
}

// inShardTx runs f in a transaction on a tenant schema and commits if f succeeds.
func inShardTx(ctx context.Context, ep handler_relocation.Endpoint, f func(tx *sql.Tx) error) error {
	tx, err := ep.DB.BeginTx(ctx, nil)
	if err != nil {
		return models_error.NewInternalError(err)
	}
	defer tx.Rollback()
	if err = f(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return models_error.NewInternalError(err)
	}
	return nil
}

// wrapErr keeps typed errors, maps NotFoundErr to a NotFoundError naming what and wraps everything else as internal.
func wrapErr(err error, what string) error {
	if err == nil {
		return nil
	}
	var nfe *models_error.NotFoundError
	var iie *models_error.InvalidInputError
	var rbe *models_error.ResourceBusyError
	var ie *models_error.InternalError
	if errors.As(err, &nfe) || errors.As(err, &iie) || errors.As(err, &rbe) || errors.As(err, &ie) {
		return err
	}
	if errors.Is(err, models_error.NotFoundErr) {
		return models_error.NewNotFoundError(fmt.Errorf("%s not found", what))
	}
	return models_error.NewInternalError(err)
}

func logWarning(msg string, cid int64, err error) string {
	logger.Warn(msg, slog_attr.ContextIDKey, cid, slog_attr.ErrorKey, err)
	return fmt.Sprintf("%s: %s", msg, err)
}
