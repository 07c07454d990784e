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

package relocation

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	models_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/relocation"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
	"github.com/pkg/errors"
)

const (
	DefaultColumn    = "cid"
	DefaultChunkSize = 1000
	maxPlaceholders  = 30000
)

var logger = slog.Default()

func InitLogger(sl *slog.Logger) {
	logger = sl
}

// Endpoint is one side of a relocation.
type Endpoint struct {
	DB      *sql.DB
	Dialect dialect.Dialect
}

type Engine struct {
	column       string
	chunkSize    int
	verifyCounts bool
}

func New(config Config) *Engine {
	e := &Engine{
		column:       config.Column,
		chunkSize:    config.ChunkSize,
		verifyCounts: config.VerifyCounts,
	}
	if e.column == "" {
		e.column = DefaultColumn
	}
	if e.chunkSize <= 0 {
		e.chunkSize = DefaultChunkSize
	}
	return e
}

func (e *Engine) Column() string {
	return e.column
}

func (e *Engine) VerifyCounts() bool {
	return e.verifyCounts
}

// Plan discovers the tenant tables of an endpoint and returns them parent first.
func (e *Engine) Plan(ctx context.Context, ep Endpoint) ([]string, error) {
	tables, err := Discover(ctx, ep.DB, ep.Dialect, e.column)
	if err != nil {
		return nil, err
	}
	return Order(tables)
}

// Copy copies the rows of a tenant table by table in the given order. Each
// table is written in one transaction on the target. The returned stats list
// the committed tables, also on error.
func (e *Engine) Copy(ctx context.Context, src, dst Endpoint, cid int64, order []string, progress func(models_relocation.TableStat)) ([]models_relocation.TableStat, error) {
	var copied []models_relocation.TableStat
	for _, table := range order {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		start := time.Now()
		n, err := e.copyTable(ctx, src, dst, cid, table)
		if err != nil {
			return copied, errors.Wrapf(err, "copy table %s", table)
		}
		stat := models_relocation.TableStat{Table: table, Rows: n}
		copied = append(copied, stat)
		logger.Debug("copied table", slog_attr.ContextIDKey, cid, slog_attr.TableKey, table, slog_attr.RowsKey, n, slog_attr.DurationKey, time.Since(start).String())
		if progress != nil {
			progress(stat)
		}
	}
	return copied, nil
}

func (e *Engine) copyTable(ctx context.Context, src, dst Endpoint, cid int64, table string) (int64, error) {
	rows, err := src.DB.QueryContext(ctx, src.Dialect.Rebind("SELECT * FROM "+src.Dialect.Quote(table)+" WHERE "+src.Dialect.Quote(e.column)+" = ?"), cid)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("table %s has no columns", table)
	}
	batchSize := e.chunkSize
	if batchSize*len(cols) > maxPlaceholders {
		batchSize = maxPlaceholders / len(cols)
	}
	convert := src.Dialect.Name() != dst.Dialect.Name()
	tx, err := dst.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	ins := newInserter(dst.Dialect, table, cols, batchSize)
	var n int64
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err = rows.Scan(ptrs...); err != nil {
			return 0, err
		}
		if convert {
			for i, v := range vals {
				if b, ok := v.([]byte); ok {
					vals[i] = string(b)
				}
			}
		}
		ins.add(vals)
		if ins.full() {
			if err = ins.flush(ctx, tx); err != nil {
				return 0, err
			}
		}
		n++
	}
	if err = rows.Err(); err != nil {
		return 0, err
	}
	if err = ins.flush(ctx, tx); err != nil {
		return 0, err
	}
	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return n, nil
}

// Verify compares the tenant row counts of every table on both endpoints.
func (e *Engine) Verify(ctx context.Context, src, dst Endpoint, cid int64, order []string) error {
	var mismatches []string
	for _, table := range order {
		sn, err := e.count(ctx, src, cid, table)
		if err != nil {
			return errors.Wrapf(err, "count source table %s", table)
		}
		dn, err := e.count(ctx, dst, cid, table)
		if err != nil {
			return errors.Wrapf(err, "count target table %s", table)
		}
		if sn != dn {
			mismatches = append(mismatches, fmt.Sprintf("%s: %d != %d", table, sn, dn))
		}
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("row count mismatch: %s", strings.Join(mismatches, ", "))
	}
	return nil
}

// Purge deletes the tenant rows in reverse order inside one transaction.
func (e *Engine) Purge(ctx context.Context, ep Endpoint, cid int64, order []string) ([]models_relocation.TableStat, error) {
	tx, err := ep.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	var deleted []models_relocation.TableStat
	for i := len(order) - 1; i >= 0; i-- {
		n, err := e.deleteRows(ctx, tx, ep.Dialect, cid, order[i])
		if err != nil {
			return nil, errors.Wrapf(err, "purge table %s", order[i])
		}
		deleted = append(deleted, models_relocation.TableStat{Table: order[i], Rows: n})
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return deleted, nil
}

// Rollback removes the copied rows from the target in reverse order.
func (e *Engine) Rollback(ctx context.Context, dst Endpoint, cid int64, copied []models_relocation.TableStat) error {
	if len(copied) == 0 {
		return nil
	}
	order := make([]string, 0, len(copied))
	for _, stat := range copied {
		order = append(order, stat.Table)
	}
	_, err := e.Purge(ctx, dst, cid, order)
	if err != nil {
		return errors.Wrap(err, "rollback")
	}
	return nil
}

// IsEmpty reports whether none of the tables holds a row.
func (e *Engine) IsEmpty(ctx context.Context, ep Endpoint, tables []string) (bool, error) {
	for _, table := range tables {
		var one int
		err := ep.DB.QueryRowContext(ctx, "SELECT 1 FROM "+ep.Dialect.Quote(table)+" LIMIT 1").Scan(&one)
		if err == nil {
			return false, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return false, errors.Wrapf(err, "check table %s", table)
		}
	}
	return true, nil
}

func (e *Engine) count(ctx context.Context, ep Endpoint, cid int64, table string) (int64, error) {
	var n int64
	err := ep.DB.QueryRowContext(ctx, ep.Dialect.Rebind("SELECT COUNT(*) FROM "+ep.Dialect.Quote(table)+" WHERE "+ep.Dialect.Quote(e.column)+" = ?"), cid).Scan(&n)
	return n, err
}

func (e *Engine) deleteRows(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid int64, table string) (int64, error) {
	res, err := tx.ExecContext(ctx, d.Rebind("DELETE FROM "+d.Quote(table)+" WHERE "+d.Quote(e.column)+" = ?"), cid)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
