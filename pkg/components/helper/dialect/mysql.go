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

type mysqlDialect struct{}

func (mysqlDialect) Name() string {
	return MySQL
}

func (mysqlDialect) Quote(ident string) string {
	return quote(ident, "`")
}

func (mysqlDialect) Rebind(query string) string {
	return query
}

const mysqlTablesStmt = "SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_TYPE = 'BASE TABLE'"

func (mysqlDialect) Tables(ctx context.Context, q Querier) ([]string, error) {
	return queryStrings(ctx, q, mysqlTablesStmt)
}

const mysqlTablesWithColumnStmt = "SELECT c.TABLE_NAME FROM information_schema.COLUMNS c JOIN information_schema.TABLES t ON t.TABLE_SCHEMA = c.TABLE_SCHEMA AND t.TABLE_NAME = c.TABLE_NAME WHERE c.TABLE_SCHEMA = DATABASE() AND t.TABLE_TYPE = 'BASE TABLE' AND c.COLUMN_NAME = ?"

func (mysqlDialect) TablesWithColumn(ctx context.Context, q Querier, column string) ([]string, error) {
	return queryStrings(ctx, q, mysqlTablesWithColumnStmt, column)
}

const mysqlForeignKeysStmt = "SELECT DISTINCT TABLE_NAME, REFERENCED_TABLE_NAME FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = DATABASE() AND REFERENCED_TABLE_SCHEMA = DATABASE() AND REFERENCED_TABLE_NAME IS NOT NULL"

func (mysqlDialect) ForeignKeys(ctx context.Context, q Querier) ([]ForeignKey, error) {
	return queryForeignKeys(ctx, q, mysqlForeignKeysStmt)
}
