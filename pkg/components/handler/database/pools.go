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
	"errors"
	"time"

	helper_slices "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/slices"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
)

const selectPoolsStatement = "SELECT p.id, p.name, p.driver, p.address, p.db_user, p.db_password, p.db_name, p.max_contexts, p.contexts_per_schema, p.weight, (SELECT COUNT(*) FROM contexts c WHERE c.pool_id = p.id), (SELECT COUNT(*) FROM db_schemas s WHERE s.pool_id = p.id) FROM db_pools p"

func (h *Handler) ListPools(ctx context.Context) ([]models_pool.PoolInfo, error) {
	rows, err := h.sqlDB.QueryContext(ctx, selectPoolsStatement+" ORDER BY p.id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var pools []models_pool.PoolInfo
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return pools, nil
}

func (h *Handler) ReadPool(ctx context.Context, itf driver.Tx, id int64) (models_pool.PoolInfo, error) {
	row := h.queryer(itf).QueryRowContext(ctx, h.q(selectPoolsStatement+" WHERE p.id = ?"), id)
	p, err := scanPool(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models_pool.PoolInfo{}, models_error.NotFoundErr
		}
		return models_pool.PoolInfo{}, err
	}
	return p, nil
}

// CreatePool inserts the pool and returns its id. A new id is allocated if pool.ID is zero.
func (h *Handler) CreatePool(ctx context.Context, itf driver.Tx, pool models_pool.Pool, timestamp time.Time) (int64, error) {
	tx := itf.(*sql.Tx)
	if pool.ID == 0 {
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM db_pools").Scan(&pool.ID); err != nil {
			return 0, err
		}
	}
	_, err := tx.ExecContext(
		ctx,
		h.q("INSERT INTO db_pools (id, name, driver, address, db_user, db_password, db_name, max_contexts, contexts_per_schema, weight, created) VALUES ("+helper_slices.GenQuestionMarks(11)+")"),
		pool.ID,
		pool.Name,
		pool.Driver,
		pool.Address,
		pool.User,
		pool.Password,
		pool.Database,
		pool.MaxContexts,
		pool.ContextsPerSchema,
		pool.Weight,
		timestamp.UnixMilli(),
	)
	if err != nil {
		return 0, err
	}
	return pool.ID, nil
}

func (h *Handler) PoolNameExists(ctx context.Context, name string) (bool, error) {
	var n int
	if err := h.sqlDB.QueryRowContext(ctx, h.q("SELECT COUNT(*) FROM db_pools WHERE name = ?"), name).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (h *Handler) DeletePool(ctx context.Context, itf driver.Tx, id int64) error {
	res, err := h.queryer(itf).ExecContext(ctx, h.q("DELETE FROM db_pools WHERE id = ?"), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPool(s scanner) (models_pool.PoolInfo, error) {
	var p models_pool.PoolInfo
	err := s.Scan(
		&p.ID,
		&p.Name,
		&p.Driver,
		&p.Address,
		&p.User,
		&p.Password,
		&p.Database,
		&p.MaxContexts,
		&p.ContextsPerSchema,
		&p.Weight,
		&p.Contexts,
		&p.Schemas,
	)
	return p, err
}
