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

package sql_db

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestSplitStatements(t *testing.T) {
	script := []byte(`-- pools
CREATE TABLE a (
    id BIGINT NOT NULL
);

CREATE INDEX a_id ON a (id);
  `)
	stmts, err := SplitStatements(script)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"CREATE TABLE a ( id BIGINT NOT NULL )",
		"CREATE INDEX a_id ON a (id)",
	}
	if !reflect.DeepEqual(stmts, want) {
		t.Errorf("expected %v, got %v", want, stmts)
	}
	stmts, err = SplitStatements(nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(stmts) != 0 {
		t.Errorf("expected no statements, got %v", stmts)
	}
}

func TestPostgresDSN(t *testing.T) {
	dsn, err := PostgresDSN(ConnConfig{
		Address:  "db:5432",
		User:     "admin",
		Password: "secret",
		Database: "groupware",
		Schema:   "ctx_1_1",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "postgres://admin:secret@db:5432/groupware?search_path=ctx_1_1&sslmode=disable"
	if dsn != want {
		t.Errorf("expected %s, got %s", want, dsn)
	}
	dsn, err = PostgresDSN(ConnConfig{
		Address: "postgres://db:5432/?sslmode=require",
		Schema:  "s",
	})
	if err != nil {
		t.Fatal(err)
	}
	want = "postgres://db:5432/?search_path=s&sslmode=require"
	if dsn != want {
		t.Errorf("expected %s, got %s", want, dsn)
	}
}

func TestConnectSQLite(t *testing.T) {
	db, err := Connect(ConnConfig{Driver: "sqlite", Address: filepath.Join(t.TempDir(), "test.db")}, Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err = WaitForDB(context.Background(), db, time.Millisecond*10); err != nil {
		t.Fatal(err)
	}
	if err = ExecScript(context.Background(), db, []byte("CREATE TABLE a (id INTEGER NOT NULL);\nINSERT INTO a (id) VALUES (1);")); err != nil {
		t.Fatal(err)
	}
	var n int
	if err = db.QueryRow("SELECT COUNT(*) FROM a").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 row, got %d", n)
	}
	if _, err = Connect(ConnConfig{Driver: "oracle"}, Config{}); err == nil {
		t.Error("expected error")
	}
}
