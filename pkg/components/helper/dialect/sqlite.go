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

package dialect

import "context"

type sqliteDialect struct{}

func (sqliteDialect) Name() string {
	return SQLite
}

func (sqliteDialect) Quote(ident string) string {
	return quote(ident, "\"")
}

func (sqliteDialect) Rebind(query string) string {
	return query
}

const sqliteTablesStmt = "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite!_%' ESCAPE '!'"

func (sqliteDialect) Tables(ctx context.Context, q Querier) ([]string, error) {
	return queryStrings(ctx, q, sqliteTablesStmt)
}

const sqliteTablesWithColumnStmt = "SELECT m.name FROM sqlite_master m JOIN pragma_table_info(m.name) p WHERE m.type = 'table' AND p.name = ?"

func (sqliteDialect) TablesWithColumn(ctx context.Context, q Querier, column string) ([]string, error) {
	return queryStrings(ctx, q, sqliteTablesWithColumnStmt, column)
}

const sqliteForeignKeysStmt = "SELECT DISTINCT m.name, p.\"table\" FROM sqlite_master m JOIN pragma_foreign_key_list(m.name) p WHERE m.type = 'table'"

func (sqliteDialect) ForeignKeys(ctx context.Context, q Querier) ([]ForeignKey, error) {
	return queryForeignKeys(ctx, q, sqliteForeignKeysStmt)
}
