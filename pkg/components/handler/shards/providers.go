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
	"io/fs"
	"os"
	"path/filepath"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
)

type provider interface {
	Create(ctx context.Context, pool models_pool.Pool, schema string) error
	Drop(ctx context.Context, pool models_pool.Pool, schema string) error
	Connect(pool models_pool.Pool, schema string) (*sql.DB, error)
}

type mysqlProvider struct {
	h *Handler
}

func (p *mysqlProvider) Create(ctx context.Context, pool models_pool.Pool, schema string) error {
	return p.h.execAdmin(ctx, pool, "CREATE DATABASE IF NOT EXISTS "+dialect.MustGet(pool.Driver).Quote(schema))
}

func (p *mysqlProvider) Drop(ctx context.Context, pool models_pool.Pool, schema string) error {
	return p.h.execAdmin(ctx, pool, "DROP DATABASE IF EXISTS "+dialect.MustGet(pool.Driver).Quote(schema))
}

func (p *mysqlProvider) Connect(pool models_pool.Pool, schema string) (*sql.DB, error) {
	return helper_sql_db.Connect(p.h.connConfig(pool, schema, ""), p.h.sqlConfig)
}

type postgresProvider struct {
	h *Handler
}

func (p *postgresProvider) Create(ctx context.Context, pool models_pool.Pool, schema string) error {
	return p.h.execAdmin(ctx, pool, "CREATE SCHEMA IF NOT EXISTS "+dialect.MustGet(pool.Driver).Quote(schema))
}

func (p *postgresProvider) Drop(ctx context.Context, pool models_pool.Pool, schema string) error {
	return p.h.execAdmin(ctx, pool, "DROP SCHEMA IF EXISTS "+dialect.MustGet(pool.Driver).Quote(schema)+" CASCADE")
}

func (p *postgresProvider) Connect(pool models_pool.Pool, schema string) (*sql.DB, error) {
	return helper_sql_db.Connect(p.h.connConfig(pool, pool.Database, schema), p.h.sqlConfig)
}

// sqliteProvider keeps every schema in its own file below the pool directory.
type sqliteProvider struct {
	h *Handler
}

func (p *sqliteProvider) Create(_ context.Context, pool models_pool.Pool, _ string) error {
	return os.MkdirAll(pool.Address, 0770)
}

func (p *sqliteProvider) Drop(_ context.Context, pool models_pool.Pool, schema string) error {
	path := sqlitePath(pool, schema)
	for _, f := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (p *sqliteProvider) Connect(pool models_pool.Pool, schema string) (*sql.DB, error) {
	return helper_sql_db.Connect(helper_sql_db.ConnConfig{Driver: dialect.SQLite, Address: sqlitePath(pool, schema)}, p.h.sqlConfig)
}

func sqlitePath(pool models_pool.Pool, schema string) string {
	return filepath.Join(pool.Address, schema+".db")
}

func (h *Handler) execAdmin(ctx context.Context, pool models_pool.Pool, stmt string) error {
	var cc helper_sql_db.ConnConfig
	switch pool.Driver {
	case dialect.MySQL:
		cc = h.connConfig(pool, "", "")
	case dialect.Postgres:
		cc = h.connConfig(pool, pool.Database, "")
	default:
		return fmt.Errorf("unsupported driver '%s'", pool.Driver)
	}
	db, err := helper_sql_db.Connect(cc, helper_sql_db.Config{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		return err
	}
	defer db.Close()
	ctxWT, cf := context.WithTimeout(ctx, h.timeout)
	defer cf()
	_, err = db.ExecContext(ctxWT, stmt)
	return err
}

func (h *Handler) connConfig(pool models_pool.Pool, database, schema string) helper_sql_db.ConnConfig {
	return helper_sql_db.ConnConfig{
		Driver:   pool.Driver,
		Address:  pool.Address,
		User:     pool.User,
		Password: pool.Password,
		Database: database,
		Schema:   schema,
		Timeout:  h.timeout,
	}
}
