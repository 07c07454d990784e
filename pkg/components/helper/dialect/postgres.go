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

type postgresDialect struct{}

func (postgresDialect) Name() string {
	return Postgres
}

func (postgresDialect) Quote(ident string) string {
	return quote(ident, "\"")
}

func (postgresDialect) Rebind(query string) string {
	return rebindDollar(query)
}

const postgresTablesStmt = "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE'"

func (postgresDialect) Tables(ctx context.Context, q Querier) ([]string, error) {
	return queryStrings(ctx, q, postgresTablesStmt)
}

const postgresTablesWithColumnStmt = "SELECT c.table_name FROM information_schema.columns c JOIN information_schema.tables t ON t.table_schema = c.table_schema AND t.table_name = c.table_name WHERE c.table_schema = current_schema() AND t.table_type = 'BASE TABLE' AND c.column_name = $1"

func (postgresDialect) TablesWithColumn(ctx context.Context, q Querier, column string) ([]string, error) {
	return queryStrings(ctx, q, postgresTablesWithColumnStmt, column)
}

const postgresForeignKeysStmt = "SELECT DISTINCT tc.table_name, ccu.table_name FROM information_schema.table_constraints tc JOIN information_schema.constraint_column_usage ccu ON ccu.constraint_name = tc.constraint_name AND ccu.constraint_schema = tc.constraint_schema WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = current_schema()"

func (postgresDialect) ForeignKeys(ctx context.Context, q Querier) ([]ForeignKey, error) {
	return queryForeignKeys(ctx, q, postgresForeignKeysStmt)
}
