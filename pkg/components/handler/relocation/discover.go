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
	"fmt"
	"sort"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	"github.com/SENERGY-Platform/mgw-module-lib/tsort"
	"github.com/pkg/errors"
)

// Table is a tenant table and the tenant tables it references.
type Table struct {
	Name    string
	Parents []string
}

// Discover returns the tables carrying the tenant column. Parents without the
// tenant column and self references are dropped.
func Discover(ctx context.Context, q dialect.Querier, d dialect.Dialect, column string) ([]Table, error) {
	names, err := d.TablesWithColumn(ctx, q, column)
	if err != nil {
		return nil, errors.Wrapf(err, "list tables with column %s", column)
	}
	fks, err := d.ForeignKeys(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "list foreign keys")
	}
	parents := make(map[string]map[string]struct{}, len(names))
	for _, name := range names {
		parents[name] = make(map[string]struct{})
	}
	for _, fk := range fks {
		p, ok := parents[fk.Table]
		if !ok || fk.Table == fk.RefTable {
			continue
		}
		if _, ok = parents[fk.RefTable]; !ok {
			continue
		}
		p[fk.RefTable] = struct{}{}
	}
	tables := make([]Table, 0, len(names))
	for _, name := range names {
		t := Table{Name: name}
		for p := range parents[name] {
			t.Parents = append(t.Parents, p)
		}
		sort.Strings(t.Parents)
		tables = append(tables, t)
	}
	return tables, nil
}

// Order returns the table names with every parent before its children.
func Order(tables []Table) ([]string, error) {
	if len(tables) == 0 {
		return nil, nil
	}
	if len(tables) == 1 {
		return []string{tables[0].Name}, nil
	}
	known := make(map[string]Table, len(tables))
	nodes := make(tsort.Nodes)
	for _, t := range tables {
		known[t.Name] = t
		var reqIDs map[string]struct{}
		if len(t.Parents) > 0 {
			reqIDs = make(map[string]struct{})
			for _, p := range t.Parents {
				reqIDs[p] = struct{}{}
			}
		}
		nodes.Add(t.Name, reqIDs, nil)
	}
	order, err := tsort.GetTopOrder(nodes)
	if err != nil {
		return nil, errors.Wrap(err, "sort tables")
	}
	seen := make(map[string]struct{}, len(order))
	result := make([]string, 0, len(tables))
	for _, name := range order {
		if _, ok := known[name]; !ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	var missing []string
	for name := range known {
		if _, ok := seen[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	result = append(result, missing...)
	if err = checkOrder(result, known); err != nil {
		return nil, err
	}
	return result, nil
}

func checkOrder(order []string, tables map[string]Table) error {
	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	for _, name := range order {
		for _, p := range tables[name].Parents {
			if pos[p] > pos[name] {
				return fmt.Errorf("table %s ordered before parent %s", name, p)
			}
		}
	}
	return nil
}
