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

package sql_db

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
)

var logger = slog.Default()

func InitLogger(sl *slog.Logger) {
	logger = sl
}

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func NewSQLDatabase(connector driver.Connector, config Config) *sql.DB {
	db := sql.OpenDB(connector)
	setPool(db, config)
	return db
}

// Open is used for drivers that only register a name, like modernc sqlite.
func Open(driverName, dsn string, config Config) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	setPool(db, config)
	return db, nil
}

func setPool(db *sql.DB, config Config) {
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}
}

func WaitForDB(ctx context.Context, db *sql.DB, delay time.Duration) error {
	err := db.PingContext(ctx)
	if err == nil {
		return nil
	}
	logger.Error("database not ready", slog_attr.ErrorKey, err)
	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			err = db.PingContext(ctx)
			if err == nil {
				return nil
			}
			logger.Error("database not ready", slog_attr.ErrorKey, err)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// SplitStatements splits a script on ';' and drops empty statements and
// lines starting with '--'.
func SplitStatements(script []byte) ([]string, error) {
	reader := bufio.NewReader(bytes.NewReader(script))
	var stmts []string
	for {
		stmt, err := reader.ReadString(';')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		if s := cleanStatement(stmt); s != "" {
			stmts = append(stmts, s)
		}
		if err != nil {
			break
		}
	}
	return stmts, nil
}

func ExecScript(ctx context.Context, e Execer, script []byte) error {
	stmts, err := SplitStatements(script)
	if err != nil {
		return err
	}
	for _, stmt := range stmts {
		if _, err = e.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func cleanStatement(stmt string) string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSuffix(strings.TrimSpace(stmt), ";"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, " ")
}
