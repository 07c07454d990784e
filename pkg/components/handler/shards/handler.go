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

package shards

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/shards/schema"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
)

var logger = slog.Default()

func InitLogger(sl *slog.Logger) {
	logger = sl
}

var schemaNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

type dbKey struct {
	poolID int64
	schema string
}

type Handler struct {
	sqlConfig helper_sql_db.Config
	timeout   time.Duration
	providers map[string]provider
	dbs       map[dbKey]*sql.DB
	mu        sync.Mutex
}

func New(sqlConfig helper_sql_db.Config, timeout time.Duration) *Handler {
	h := &Handler{
		sqlConfig: sqlConfig,
		timeout:   timeout,
		dbs:       make(map[dbKey]*sql.DB),
	}
	h.providers = map[string]provider{
		dialect.MySQL:    &mysqlProvider{h: h},
		dialect.Postgres: &postgresProvider{h: h},
		dialect.SQLite:   &sqliteProvider{h: h},
	}
	return h
}

func ValidSchemaName(name string) error {
	if !schemaNameRe.MatchString(name) {
		return fmt.Errorf("invalid schema name '%s'", name)
	}
	return nil
}

func (h *Handler) Dialect(pool models_pool.Pool) (dialect.Dialect, error) {
	return dialect.Get(pool.Driver)
}

// Provision creates the schema if missing and applies the tenant tables.
func (h *Handler) Provision(ctx context.Context, pool models_pool.Pool, schemaName string) error {
	if err := ValidSchemaName(schemaName); err != nil {
		return err
	}
	p, err := h.getProvider(pool)
	if err != nil {
		return err
	}
	if err = p.Create(ctx, pool, schemaName); err != nil {
		return err
	}
	db, err := h.DB(pool, schemaName)
	if err != nil {
		return err
	}
	if err = helper_sql_db.ExecScript(ctx, db, schema.Tenant); err != nil {
		return err
	}
	logger.Info("provisioned schema", slog_attr.PoolIDKey, pool.ID, slog_attr.SchemaKey, schemaName)
	return nil
}

func (h *Handler) DB(pool models_pool.Pool, schemaName string) (*sql.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := dbKey{poolID: pool.ID, schema: schemaName}
	if db, ok := h.dbs[key]; ok {
		return db, nil
	}
	p, err := h.getProvider(pool)
	if err != nil {
		return nil, err
	}
	db, err := p.Connect(pool, schemaName)
	if err != nil {
		return nil, err
	}
	h.dbs[key] = db
	return db, nil
}

// Drop closes cached connections and removes the schema.
func (h *Handler) Drop(ctx context.Context, pool models_pool.Pool, schemaName string) error {
	p, err := h.getProvider(pool)
	if err != nil {
		return err
	}
	h.closeDB(pool.ID, schemaName)
	if err = p.Drop(ctx, pool, schemaName); err != nil {
		return err
	}
	logger.Info("dropped schema", slog_attr.PoolIDKey, pool.ID, slog_attr.SchemaKey, schemaName)
	return nil
}

// ClosePool closes all cached connections of a pool.
func (h *Handler) ClosePool(poolID int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for key, db := range h.dbs {
		if key.poolID == poolID {
			_ = db.Close()
			delete(h.dbs, key)
		}
	}
}

func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for key, db := range h.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(h.dbs, key)
	}
	return errors.Join(errs...)
}

func (h *Handler) closeDB(poolID int64, schemaName string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := dbKey{poolID: poolID, schema: schemaName}
	if db, ok := h.dbs[key]; ok {
		if err := db.Close(); err != nil {
			logger.Warn("closing database failed", slog_attr.SchemaKey, schemaName, slog_attr.ErrorKey, err)
		}
		delete(h.dbs, key)
	}
}

func (h *Handler) getProvider(pool models_pool.Pool) (provider, error) {
	p, ok := h.providers[pool.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver '%s'", pool.Driver)
	}
	return p, nil
}
