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

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const (
	MySQL    = "mysql"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ForeignKey links a child table to the table it references.
type ForeignKey struct {
	Table    string
	RefTable string
}

type Dialect interface {
	Name() string
	Quote(ident string) string
	Rebind(query string) string
	Tables(ctx context.Context, q Querier) ([]string, error)
	TablesWithColumn(ctx context.Context, q Querier, column string) ([]string, error)
	ForeignKeys(ctx context.Context, q Querier) ([]ForeignKey, error)
}

func Get(name string) (Dialect, error) {
	switch name {
	case MySQL:
		return mysqlDialect{}, nil
	case Postgres:
		return postgresDialect{}, nil
	case SQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported dialect '%s'", name)
	}
}

func MustGet(name string) Dialect {
	d, err := Get(name)
	if err != nil {
		panic(err)
	}
	return d
}

func queryStrings(ctx context.Context, q Querier, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var item string
		if err = rows.Scan(&item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(items)
	return items, nil
}

func queryForeignKeys(ctx context.Context, q Querier, query string) ([]ForeignKey, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err = rows.Scan(&fk.Table, &fk.RefTable); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(fks, func(i, j int) bool {
		if fks[i].Table == fks[j].Table {
			return fks[i].RefTable < fks[j].RefTable
		}
		return fks[i].Table < fks[j].Table
	})
	return fks, nil
}

func quote(ident string, q string) string {
	return q + strings.ReplaceAll(ident, q, q+q) + q
}

// rebindDollar replaces '?' placeholders outside of quoted literals with $1..$n.
func rebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	var inQuote byte
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case inQuote != 0:
			if c == inQuote {
				inQuote = 0
			}
			b.WriteByte(c)
		case c == '\'' || c == '"' || c == '`':
			inQuote = c
			b.WriteByte(c)
		case c == '?':
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
