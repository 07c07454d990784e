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
	"sort"
	"strings"
	"time"

	helper_slices "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/slices"
	models_context "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/context"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
)

const selectContextsStatement = "SELECT cid, name, enabled, reason, quota_mb, pool_id, db_schema, created, updated FROM contexts"

func (h *Handler) NextContextID(ctx context.Context, itf driver.Tx) (int64, error) {
	var id int64
	err := h.queryer(itf).QueryRowContext(ctx, "SELECT COALESCE(MAX(cid), 0) + 1 FROM contexts").Scan(&id)
	return id, err
}

func (h *Handler) ContextExists(ctx context.Context, itf driver.Tx, id int64, name string) (bool, error) {
	var n int
	err := h.queryer(itf).QueryRowContext(ctx, h.q("SELECT COUNT(*) FROM contexts WHERE cid = ? OR name = ?"), id, name).Scan(&n)
	return n > 0, err
}

func (h *Handler) CreateContext(ctx context.Context, itf driver.Tx, c models_context.Context) error {
	tx := itf.(*sql.Tx)
	_, err := tx.ExecContext(
		ctx,
		h.q("INSERT INTO contexts (cid, name, enabled, reason, quota_mb, pool_id, db_schema, created, updated) VALUES ("+helper_slices.GenQuestionMarks(9)+")"),
		c.ID,
		c.Name,
		helper_slices.BoolToInt(c.Enabled),
		c.Reason,
		c.QuotaMB,
		c.PoolID,
		c.Schema,
		c.Created.UnixMilli(),
		c.Updated.UnixMilli(),
	)
	if err != nil {
		return err
	}
	if err = h.AddLogins(ctx, itf, c.ID, c.Logins); err != nil {
		return err
	}
	return h.SetAttributes(ctx, itf, c.ID, c.Attributes)
}

func (h *Handler) ReadContext(ctx context.Context, itf driver.Tx, id int64) (models_context.Context, error) {
	qr := h.queryer(itf)
	c, err := scanContext(qr.QueryRowContext(ctx, h.q(selectContextsStatement+" WHERE cid = ?"), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models_context.Context{}, models_error.NotFoundErr
		}
		return models_context.Context{}, err
	}
	contexts := map[int64]*models_context.Context{c.ID: &c}
	if err = h.fillContexts(ctx, qr, contexts); err != nil {
		return models_context.Context{}, err
	}
	return c, nil
}

func (h *Handler) ListContexts(ctx context.Context, itf driver.Tx, filter models_context.ContextFilter) ([]models_context.Context, error) {
	qr := h.queryer(itf)
	fc, val := genContextFilter(filter)
	rows, err := qr.QueryContext(ctx, h.q(selectContextsStatement+fc+" ORDER BY cid"), val...)
	if err != nil {
		return nil, err
	}
	var contexts []models_context.Context
	for rows.Next() {
		c, err := scanContext(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		contexts = append(contexts, c)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}
	if len(contexts) == 0 {
		return nil, nil
	}
	cMap := make(map[int64]*models_context.Context, len(contexts))
	for i := range contexts {
		cMap[contexts[i].ID] = &contexts[i]
	}
	if err = h.fillContexts(ctx, qr, cMap); err != nil {
		return nil, err
	}
	return contexts, nil
}

func (h *Handler) UpdateContext(ctx context.Context, itf driver.Tx, id int64, base models_context.ContextBase, timestamp time.Time) error {
	res, err := h.queryer(itf).ExecContext(ctx, h.q("UPDATE contexts SET name = ?, quota_mb = ?, updated = ? WHERE cid = ?"), base.Name, base.QuotaMB, timestamp.UnixMilli(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (h *Handler) SetContextEnabled(ctx context.Context, itf driver.Tx, id int64, enabled bool, reason string, timestamp time.Time) error {
	res, err := h.queryer(itf).ExecContext(ctx, h.q("UPDATE contexts SET enabled = ?, reason = ?, updated = ? WHERE cid = ?"), helper_slices.BoolToInt(enabled), reason, timestamp.UnixMilli(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// DisableAllContexts disables every enabled context and returns the number of affected contexts.
func (h *Handler) DisableAllContexts(ctx context.Context, itf driver.Tx, reason string, timestamp time.Time) (int64, error) {
	res, err := h.queryer(itf).ExecContext(ctx, h.q("UPDATE contexts SET enabled = 0, reason = ?, updated = ? WHERE enabled = 1"), reason, timestamp.UnixMilli())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// EnableAllContexts enables the contexts disabled for reason.
func (h *Handler) EnableAllContexts(ctx context.Context, itf driver.Tx, reason string, timestamp time.Time) (int64, error) {
	res, err := h.queryer(itf).ExecContext(ctx, h.q("UPDATE contexts SET enabled = 1, reason = '', updated = ? WHERE enabled = 0 AND reason = ?"), timestamp.UnixMilli(), reason)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (h *Handler) SetContextLocation(ctx context.Context, itf driver.Tx, id int64, poolID int64, schema string, timestamp time.Time) error {
	res, err := h.queryer(itf).ExecContext(ctx, h.q("UPDATE contexts SET pool_id = ?, db_schema = ?, updated = ? WHERE cid = ?"), poolID, schema, timestamp.UnixMilli(), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (h *Handler) DeleteContext(ctx context.Context, itf driver.Tx, id int64) error {
	tx := itf.(*sql.Tx)
	if _, err := tx.ExecContext(ctx, h.q("DELETE FROM login2context WHERE cid = ?"), id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, h.q("DELETE FROM context_attributes WHERE cid = ?"), id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, h.q("DELETE FROM contexts WHERE cid = ?"), id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (h *Handler) fillContexts(ctx context.Context, qr querier, contexts map[int64]*models_context.Context) error {
	ids := make([]int64, 0, len(contexts))
	for id := range contexts {
		ids = append(ids, id)
	}
	in := " WHERE cid IN (" + helper_slices.GenQuestionMarks(len(ids)) + ")"
	rows, err := qr.QueryContext(ctx, h.q("SELECT cid, login FROM login2context"+in+" ORDER BY login"), helper_slices.ToAnySlice(ids)...)
	if err != nil {
		return err
	}
	for rows.Next() {
		var id int64
		var login string
		if err = rows.Scan(&id, &login); err != nil {
			rows.Close()
			return err
		}
		if c, ok := contexts[id]; ok {
			c.Logins = append(c.Logins, login)
		}
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return err
	}
	rows, err = qr.QueryContext(ctx, h.q("SELECT cid, name, attr_value FROM context_attributes"+in), helper_slices.ToAnySlice(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var name, value string
		if err = rows.Scan(&id, &name, &value); err != nil {
			return err
		}
		if c, ok := contexts[id]; ok {
			if c.Attributes == nil {
				c.Attributes = make(map[string]string)
			}
			c.Attributes[name] = value
		}
	}
	return rows.Err()
}

func scanContext(s scanner) (models_context.Context, error) {
	var c models_context.Context
	var enabled int
	var ct, ut int64
	if err := s.Scan(&c.ID, &c.Name, &enabled, &c.Reason, &c.QuotaMB, &c.PoolID, &c.Schema, &ct, &ut); err != nil {
		return models_context.Context{}, err
	}
	c.Enabled = enabled != 0
	c.Created = fromMillis(ct)
	c.Updated = fromMillis(ut)
	return c, nil
}

func genContextFilter(filter models_context.ContextFilter) (string, []any) {
	var fc []string
	var val []any
	if len(filter.IDs) > 0 {
		ids := helper_slices.RemoveDuplicates(filter.IDs)
		fc = append(fc, "cid IN ("+helper_slices.GenQuestionMarks(len(ids))+")")
		val = append(val, helper_slices.ToAnySlice(ids)...)
	}
	if filter.Name != "" {
		if strings.Contains(filter.Name, "*") {
			fc = append(fc, "name LIKE ? ESCAPE '!'")
			val = append(val, namePattern(filter.Name))
		} else {
			fc = append(fc, "name = ?")
			val = append(val, filter.Name)
		}
	}
	switch {
	case filter.Enabled > 0:
		fc = append(fc, "enabled = 1")
	case filter.Enabled < 0:
		fc = append(fc, "enabled = 0")
	}
	if filter.Reason != "" {
		fc = append(fc, "reason = ?")
		val = append(val, filter.Reason)
	}
	if filter.PoolID != 0 {
		fc = append(fc, "pool_id = ?")
		val = append(val, filter.PoolID)
	}
	if filter.Schema != "" {
		fc = append(fc, "db_schema = ?")
		val = append(val, filter.Schema)
	}
	if filter.Login != "" {
		fc = append(fc, "cid IN (SELECT cid FROM login2context WHERE login = ?)")
		val = append(val, filter.Login)
	}
	if len(fc) > 0 {
		return " WHERE " + strings.Join(fc, " AND "), val
	}
	return "", nil
}

// namePattern turns a '*' wildcard pattern into a LIKE pattern escaped with '!'.
func namePattern(p string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "*", "%")
	return r.Replace(p)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
