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

	helper_slices "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/slices"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
)

func (h *Handler) AddLogins(ctx context.Context, itf driver.Tx, id int64, logins []string) error {
	if len(logins) == 0 {
		return nil
	}
	tx := itf.(*sql.Tx)
	stmt, err := tx.PrepareContext(ctx, h.q("INSERT INTO login2context (login, cid) VALUES (?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, login := range helper_slices.RemoveDuplicates(logins) {
		if _, err = stmt.ExecContext(ctx, login, id); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) RemoveLogins(ctx context.Context, itf driver.Tx, id int64, logins []string) error {
	if len(logins) == 0 {
		return nil
	}
	logins = helper_slices.RemoveDuplicates(logins)
	_, err := h.queryer(itf).ExecContext(
		ctx,
		h.q("DELETE FROM login2context WHERE cid = ? AND login IN ("+helper_slices.GenQuestionMarks(len(logins))+")"),
		append([]any{id}, helper_slices.ToAnySlice(logins)...)...,
	)
	return err
}

// MappedLogins returns the logins already mapped to any context.
func (h *Handler) MappedLogins(ctx context.Context, itf driver.Tx, logins []string) ([]string, error) {
	if len(logins) == 0 {
		return nil, nil
	}
	logins = helper_slices.RemoveDuplicates(logins)
	rows, err := h.queryer(itf).QueryContext(ctx, h.q("SELECT login FROM login2context WHERE login IN ("+helper_slices.GenQuestionMarks(len(logins))+") ORDER BY login"), helper_slices.ToAnySlice(logins)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var mapped []string
	for rows.Next() {
		var login string
		if err = rows.Scan(&login); err != nil {
			return nil, err
		}
		mapped = append(mapped, login)
	}
	return mapped, rows.Err()
}

func (h *Handler) ResolveLogin(ctx context.Context, login string) (int64, error) {
	var id int64
	err := h.sqlDB.QueryRowContext(ctx, h.q("SELECT cid FROM login2context WHERE login = ?"), login).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, models_error.NotFoundErr
		}
		return 0, err
	}
	return id, nil
}

// SetAttributes inserts or replaces the given attributes.
func (h *Handler) SetAttributes(ctx context.Context, itf driver.Tx, id int64, attributes map[string]string) error {
	if len(attributes) == 0 {
		return nil
	}
	tx := itf.(*sql.Tx)
	names := sortedKeys(attributes)
	if err := h.RemoveAttributes(ctx, itf, id, names); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, h.q("INSERT INTO context_attributes (cid, name, attr_value) VALUES (?, ?, ?)"))
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, name := range names {
		if _, err = stmt.ExecContext(ctx, id, name, attributes[name]); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) RemoveAttributes(ctx context.Context, itf driver.Tx, id int64, names []string) error {
	if len(names) == 0 {
		return nil
	}
	names = helper_slices.RemoveDuplicates(names)
	_, err := h.queryer(itf).ExecContext(
		ctx,
		h.q("DELETE FROM context_attributes WHERE cid = ? AND name IN ("+helper_slices.GenQuestionMarks(len(names))+")"),
		append([]any{id}, helper_slices.ToAnySlice(names)...)...,
	)
	return err
}
