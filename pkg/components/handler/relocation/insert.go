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

package relocation

import (
	"context"
	"database/sql"
	"strings"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
)

// inserter buffers rows and writes them as multi row INSERT statements.
type inserter struct {
	d       dialect.Dialect
	prefix  string
	rowTmpl string
	size    int
	rows    int
	args    []any
}

func newInserter(d dialect.Dialect, table string, cols []string, size int) *inserter {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = d.Quote(c)
	}
	return &inserter{
		d:       d,
		prefix:  "INSERT INTO " + d.Quote(table) + " (" + strings.Join(quoted, ", ") + ") VALUES ",
		rowTmpl: "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")",
		size:    size,
		args:    make([]any, 0, size*len(cols)),
	}
}

func (i *inserter) add(vals []any) {
	i.args = append(i.args, vals...)
	i.rows++
}

func (i *inserter) full() bool {
	return i.rows >= i.size
}

func (i *inserter) statement() string {
	var b strings.Builder
	b.WriteString(i.prefix)
	for r := 0; r < i.rows; r++ {
		if r > 0 {
			b.WriteString(", ")
		}
		b.WriteString(i.rowTmpl)
	}
	return i.d.Rebind(b.String())
}

func (i *inserter) flush(ctx context.Context, tx *sql.Tx) error {
	if i.rows == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx, i.statement(), i.args...); err != nil {
		return err
	}
	i.rows = 0
	i.args = i.args[:0]
	return nil
}
