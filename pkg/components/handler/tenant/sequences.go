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

package tenant

import (
	"context"
	"database/sql"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
)

// NextID allocates the next id of a sequence. The caller's transaction serializes concurrent allocations.
func NextID(ctx context.Context, tx *sql.Tx, d dialect.Dialect, cid int64, name string) (int64, error) {
	res, err := tx.ExecContext(ctx, d.Rebind("UPDATE sequences SET next_id = next_id + 1 WHERE cid = ? AND name = ?"), cid, name)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		if _, err = tx.ExecContext(ctx, d.Rebind("INSERT INTO sequences (cid, name, next_id) VALUES (?, ?, ?)"), cid, name, 2); err != nil {
			return 0, err
		}
		return 1, nil
	}
	var id int64
	if err = tx.QueryRowContext(ctx, d.Rebind("SELECT next_id - 1 FROM sequences WHERE cid = ? AND name = ?"), cid, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
