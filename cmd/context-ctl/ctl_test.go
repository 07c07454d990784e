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

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	models_context "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/context"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	models_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/repair"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type testCtl struct {
	dir    string
	config string
}

func newTestCtl(t *testing.T) *testCtl {
	t.Helper()
	dir := t.TempDir()
	config := filepath.Join(dir, "conf.json")
	data := `{"config_database": {"driver": "sqlite", "address": "` + filepath.Join(dir, "config.db") + `"}}`
	require.NoError(t, os.WriteFile(config, []byte(data), 0644))
	return &testCtl{dir: dir, config: config}
}

func (tc *testCtl) run(args ...string) (string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	err := execute(context.Background(), append([]string{"--config", tc.config}, args...), stdout, stderr)
	return stdout.String(), err
}

func runYAML[T any](t *testing.T, tc *testCtl, args ...string) T {
	t.Helper()
	out, err := tc.run(args...)
	require.NoError(t, err)
	var v T
	require.NoError(t, yaml.Unmarshal([]byte(out), &v), out)
	return v
}

func TestCommands(t *testing.T) {
	tc := newTestCtl(t)
	pool := runYAML[models_pool.PoolInfo](t, tc, "pool", "register", "--name", "a", "--driver", "sqlite", "--address", filepath.Join(tc.dir, "a"), "--contexts-per-schema", "2")
	require.EqualValues(t, 1, pool.ID)
	require.Equal(t, 2, pool.ContextsPerSchema)
	poolID := strconv.FormatInt(pool.ID, 10)

	c := runYAML[models_context.Context](t, tc, "context", "create", "--name", "c1", "--login", "alice", "--attr", "plan=basic")
	require.Equal(t, pool.ID, c.PoolID)
	require.Equal(t, "ctx_1_1", c.Schema)
	require.Equal(t, []string{"alice"}, c.Logins)
	require.Equal(t, map[string]string{"plan": "basic"}, c.Attributes)
	cid := strconv.FormatInt(c.ID, 10)

	contexts := runYAML[[]models_context.Context](t, tc, "context", "list", "--state", "enabled", "--login", "alice")
	require.Len(t, contexts, 1)
	_, err := tc.run("context", "list", "--state", "maybe")
	require.Error(t, err)

	schemas := runYAML[[]models_pool.Schema](t, tc, "pool", "schemas", poolID)
	require.Len(t, schemas, 1)
	require.Equal(t, 1, schemas[0].Contexts)

	group := runYAML[models_tenant.Group](t, tc, "group", "create", cid, "--name", "staff")
	gid := strconv.FormatInt(group.ID, 10)
	group = runYAML[models_tenant.Group](t, tc, "group", "add-members", cid, gid, strconv.Itoa(models_tenant.AdminUserID))
	require.Equal(t, []int64{models_tenant.AdminUserID}, group.Members)
	group = runYAML[models_tenant.Group](t, tc, "group", "remove-members", cid, gid, strconv.Itoa(models_tenant.AdminUserID))
	require.Empty(t, group.Members)

	user := runYAML[models_tenant.User](t, tc, "user", "create", cid, "--name", "bob", "--mail", "bob@example.com")
	require.Equal(t, "bob", user.Name)
	users := runYAML[[]models_tenant.User](t, tc, "user", "list", cid)
	require.Len(t, users, 2)

	tasks := runYAML[[]models_repair.TaskInfo](t, tc, "repair", "tasks")
	require.NotEmpty(t, tasks)
	report := runYAML[models_repair.Report](t, tc, "repair", "run", "--pool", poolID)
	require.Len(t, report.Results, len(tasks))

	_, err = tc.run("context", "disable", cid, "--reason", models_context.ReasonMaintenance)
	require.NoError(t, err)
	c = runYAML[models_context.Context](t, tc, "context", "get", cid)
	require.False(t, c.Enabled)
	require.Equal(t, models_context.ReasonMaintenance, c.Reason)
	_, err = tc.run("context", "get", "first")
	require.Error(t, err)

	_, err = tc.run("pool", "unregister", poolID)
	require.Error(t, err)
	_, err = tc.run("group", "delete", cid, gid)
	require.NoError(t, err)
	_, err = tc.run("context", "delete", cid)
	require.NoError(t, err)
	contexts = runYAML[[]models_context.Context](t, tc, "context", "list")
	require.Empty(t, contexts)
}

func TestParseFacets(t *testing.T) {
	facets, err := parseFacets([]string{"subject=standup", "location=room 1", "subject=retro"})
	require.NoError(t, err)
	require.Len(t, facets, 2)
	require.Equal(t, "subject", facets[0].Type)
	require.Equal(t, []string{"standup", "retro"}, facets[0].Values)
	require.Equal(t, []string{"room 1"}, facets[1].Values)
	_, err = parseFacets([]string{"subject"})
	require.Error(t, err)
}
