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

package schema

import (
	"context"
	"database/sql"
	_ "embed"

	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
)

//go:embed config.sql
var config []byte

type migration [][]byte

func (m migration) Required(_ context.Context, _ *sql.DB) (bool, error) {
	return true, nil
}

func (m migration) Run(ctx context.Context, db *sql.DB) error {
	for _, script := range m {
		if err := helper_sql_db.ExecScript(ctx, db, script); err != nil {
			return err
		}
	}
	return nil
}

var Init = migration{
	config,
}
