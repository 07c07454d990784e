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

package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
)

type Migration interface {
	Required(ctx context.Context, db *sql.DB) (bool, error)
	Run(ctx context.Context, db *sql.DB) error
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func NewSQLDatabase(config Config, sqlConfig helper_sql_db.Config) (*sql.DB, error) {
	return helper_sql_db.Connect(helper_sql_db.ConnConfig{
		Driver:   config.Driver,
		Address:  config.Address,
		User:     config.User,
		Password: config.Password,
		Database: config.Database,
		Timeout:  config.Timeout,
	}, sqlConfig)
}

type Handler struct {
	sqlDB   *sql.DB
	dialect dialect.Dialect
}

func New(sqlDB *sql.DB, d dialect.Dialect) *Handler {
	return &Handler{sqlDB: sqlDB, dialect: d}
}

func (h *Handler) Migrate(ctx context.Context, migrations ...Migration) error {
	for _, m := range migrations {
		ok, err := m.Required(ctx, h.sqlDB)
		if err != nil {
			return err
		}
		if ok {
			if err = m.Run(ctx, h.sqlDB); err != nil {
				return err
			}
		}
	}
	return nil
}

func (h *Handler) Ping(ctx context.Context) error {
	return h.sqlDB.PingContext(ctx)
}

func (h *Handler) BeginTransaction(ctx context.Context) (driver.Tx, error) {
	return h.sqlDB.BeginTx(ctx, nil)
}

// queryer returns the transaction if one is given.
func (h *Handler) queryer(itf driver.Tx) querier {
	if itf == nil {
		return h.sqlDB
	}
	return itf.(*sql.Tx)
}

func (h *Handler) q(query string) string {
	return h.dialect.Rebind(query)
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// checkAffected returns NotFoundErr if the statement matched no rows.
func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models_error.NotFoundErr
	}
	return nil
}
