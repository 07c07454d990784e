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
	"database/sql/driver"
	"time"

	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
)

func (h *Handler) ListSchemas(ctx context.Context, itf driver.Tx, poolID int64) ([]models_pool.Schema, error) {
	rows, err := h.queryer(itf).QueryContext(
		ctx,
		h.q("SELECT s.pool_id, s.name, s.created, (SELECT COUNT(*) FROM contexts c WHERE c.pool_id = s.pool_id AND c.db_schema = s.name) FROM db_schemas s WHERE s.pool_id = ? ORDER BY s.name"),
		poolID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var schemas []models_pool.Schema
	for rows.Next() {
		var s models_pool.Schema
		var ct int64
		if err = rows.Scan(&s.PoolID, &s.Name, &ct, &s.Contexts); err != nil {
			return nil, err
		}
		s.Created = fromMillis(ct)
		schemas = append(schemas, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return schemas, nil
}

func (h *Handler) CreateSchema(ctx context.Context, itf driver.Tx, poolID int64, name string, timestamp time.Time) error {
	_, err := h.queryer(itf).ExecContext(ctx, h.q("INSERT INTO db_schemas (pool_id, name, created) VALUES (?, ?, ?)"), poolID, name, timestamp.UnixMilli())
	return err
}

func (h *Handler) DeleteSchema(ctx context.Context, itf driver.Tx, poolID int64, name string) error {
	res, err := h.queryer(itf).ExecContext(ctx, h.q("DELETE FROM db_schemas WHERE pool_id = ? AND name = ?"), poolID, name)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (h *Handler) CountSchemaContexts(ctx context.Context, itf driver.Tx, poolID int64, name string) (int, error) {
	var n int
	err := h.queryer(itf).QueryRowContext(ctx, h.q("SELECT COUNT(*) FROM contexts WHERE pool_id = ? AND db_schema = ?"), poolID, name).Scan(&n)
	return n, err
}
