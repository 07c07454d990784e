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

package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	handler_shards "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/shards"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
	"gopkg.in/yaml.v3"
)

func (s *Service) RegisterPool(ctx context.Context, pool models_pool.Pool) (int64, error) {
	if err := validatePool(pool); err != nil {
		return 0, err
	}
	ok, err := s.dbHdl.PoolNameExists(ctx, pool.Name)
	if err != nil {
		return 0, models_error.NewInternalError(err)
	}
	if ok {
		return 0, models_error.NewInvalidInputError(fmt.Errorf("pool '%s' already exists", pool.Name))
	}
	var id int64
	err = s.inConfigTx(ctx, func(tx driver.Tx) error {
		var err error
		if pool.ID != 0 {
			if _, err = s.dbHdl.ReadPool(ctx, tx, pool.ID); err == nil {
				return models_error.NewInvalidInputError(fmt.Errorf("pool %d already exists", pool.ID))
			} else if !errors.Is(err, models_error.NotFoundErr) {
				return models_error.NewInternalError(err)
			}
		}
		id, err = s.dbHdl.CreatePool(ctx, tx, pool, time.Now().UTC())
		return wrapErr(err, "pool")
	})
	if err != nil {
		return 0, err
	}
	logger.Info("pool registered", slog_attr.PoolIDKey, id)
	return id, nil
}

func (s *Service) ListPools(ctx context.Context) ([]models_pool.PoolInfo, error) {
	pools, err := s.dbHdl.ListPools(ctx)
	if err != nil {
		return nil, models_error.NewInternalError(err)
	}
	return pools, nil
}

func (s *Service) GetPool(ctx context.Context, id int64) (models_pool.PoolInfo, error) {
	return s.readPool(ctx, nil, id)
}

// UnregisterPool removes a pool without schemas.
func (s *Service) UnregisterPool(ctx context.Context, id int64) error {
	s.placementMu.Lock()
	defer s.placementMu.Unlock()
	err := s.inConfigTx(ctx, func(tx driver.Tx) error {
		pool, err := s.readPool(ctx, tx, id)
		if err != nil {
			return err
		}
		if pool.Schemas > 0 {
			return models_error.NewInvalidInputError(fmt.Errorf("pool %d still has %d schemas", id, pool.Schemas))
		}
		return wrapErr(s.dbHdl.DeletePool(ctx, tx, id), "pool")
	})
	if err != nil {
		return err
	}
	s.shardsHdl.ClosePool(id)
	logger.Info("pool unregistered", slog_attr.PoolIDKey, id)
	return nil
}

func (s *Service) ListSchemas(ctx context.Context, poolID int64) ([]models_pool.Schema, error) {
	if _, err := s.readPool(ctx, nil, poolID); err != nil {
		return nil, err
	}
	schemas, err := s.dbHdl.ListSchemas(ctx, nil, poolID)
	if err != nil {
		return nil, models_error.NewInternalError(err)
	}
	return schemas, nil
}

// SeedPools registers the pools of a yaml file. Pools whose name is already registered are skipped.
func (s *Service) SeedPools(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sf models_pool.SeedFile
	if err = yaml.Unmarshal(b, &sf); err != nil {
		return err
	}
	for _, pool := range sf.Pools {
		ok, err := s.dbHdl.PoolNameExists(ctx, pool.Name)
		if err != nil {
			return err
		}
		if ok {
			logger.Debug(fmt.Sprintf("pool '%s' already registered", pool.Name))
			continue
		}
		if _, err = s.RegisterPool(ctx, pool); err != nil {
			return fmt.Errorf("registering pool '%s' failed: %w", pool.Name, err)
		}
	}
	return nil
}

func validatePool(pool models_pool.Pool) error {
	if pool.Name == "" {
		return models_error.NewInvalidInputError(errors.New("missing pool name"))
	}
	if _, err := dialect.Get(pool.Driver); err != nil {
		return models_error.NewInvalidInputError(err)
	}
	if pool.Address == "" {
		return models_error.NewInvalidInputError(errors.New("missing pool address"))
	}
	if pool.ID < 0 || pool.MaxContexts < 0 || pool.ContextsPerSchema < 0 || pool.Weight < 0 {
		return models_error.NewInvalidInputError(errors.New("negative pool values"))
	}
	return nil
}

// reservations counts schema slots held by moves that have not switched the registration yet.
type reservations struct {
	mu    sync.Mutex
	slots map[int64]map[string]int
}

func (r *reservations) add(poolID int64, schema string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots == nil {
		r.slots = make(map[int64]map[string]int)
	}
	if r.slots[poolID] == nil {
		r.slots[poolID] = make(map[string]int)
	}
	r.slots[poolID][schema]++
}

func (r *reservations) remove(poolID int64, schema string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[poolID][schema] <= 1 {
		delete(r.slots[poolID], schema)
		if len(r.slots[poolID]) == 0 {
			delete(r.slots, poolID)
		}
		return
	}
	r.slots[poolID][schema]--
}

func (r *reservations) pool(poolID int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int
	for _, c := range r.slots[poolID] {
		n += c
	}
	return n
}

func (r *reservations) schema(poolID int64, schema string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[poolID][schema]
}

func (s *Service) poolContexts(pool models_pool.PoolInfo) int {
	return pool.Contexts + s.reserved.pool(pool.ID)
}

func (s *Service) isFull(pool models_pool.PoolInfo) bool {
	return pool.MaxContexts > 0 && s.poolContexts(pool) >= pool.MaxContexts
}

// selectPool returns the given pool or the pool with the lowest load relative to its weight.
func (s *Service) selectPool(ctx context.Context, poolID int64) (models_pool.PoolInfo, error) {
	if poolID != 0 {
		pool, err := s.readPool(ctx, nil, poolID)
		if err != nil {
			return models_pool.PoolInfo{}, err
		}
		if s.isFull(pool) {
			return models_pool.PoolInfo{}, models_error.NewInvalidInputError(fmt.Errorf("pool %d is full", poolID))
		}
		return pool, nil
	}
	pools, err := s.dbHdl.ListPools(ctx)
	if err != nil {
		return models_pool.PoolInfo{}, models_error.NewInternalError(err)
	}
	var sel *models_pool.PoolInfo
	var selLoad float64
	for i := range pools {
		if s.isFull(pools[i]) {
			continue
		}
		load := float64(s.poolContexts(pools[i])) / float64(max(pools[i].Weight, 1))
		if sel == nil || load < selLoad {
			sel = &pools[i]
			selLoad = load
		}
	}
	if sel == nil {
		return models_pool.PoolInfo{}, models_error.NewResourceBusyError(errors.New("no database pool with free capacity"))
	}
	return *sel, nil
}

// selectSchema returns the first schema of a pool with room or the name for a new one.
func (s *Service) selectSchema(ctx context.Context, pool models_pool.PoolInfo) (string, bool, error) {
	schemas, err := s.dbHdl.ListSchemas(ctx, nil, pool.ID)
	if err != nil {
		return "", false, models_error.NewInternalError(err)
	}
	names := make(map[string]struct{}, len(schemas))
	for _, sc := range schemas {
		if pool.ContextsPerSchema <= 0 || sc.Contexts+s.reserved.schema(pool.ID, sc.Name) < pool.ContextsPerSchema {
			return sc.Name, false, nil
		}
		names[sc.Name] = struct{}{}
	}
	for n := len(schemas) + 1; ; n++ {
		name := fmt.Sprintf("%s_%d_%d", s.config.SchemaPrefix, pool.ID, n)
		if _, ok := names[name]; !ok {
			if err = handler_shards.ValidSchemaName(name); err != nil {
				return "", false, models_error.NewInternalError(err)
			}
			return name, true, nil
		}
	}
}

func (s *Service) provisionSchema(ctx context.Context, pool models_pool.Pool, name string) error {
	if err := s.shardsHdl.Provision(ctx, pool, name); err != nil {
		return models_error.NewInternalError(err)
	}
	if err := s.dbHdl.CreateSchema(ctx, nil, pool.ID, name, time.Now().UTC()); err != nil {
		if e := s.shardsHdl.Drop(ctx, pool, name); e != nil {
			logger.Error("dropping schema failed", slog_attr.PoolIDKey, pool.ID, slog_attr.SchemaKey, name, slog_attr.ErrorKey, e)
		}
		return models_error.NewInternalError(err)
	}
	logger.Info("schema provisioned", slog_attr.PoolIDKey, pool.ID, slog_attr.SchemaKey, name)
	return nil
}

func (s *Service) releaseSchema(ctx context.Context, pool models_pool.Pool, name string) error {
	if err := s.shardsHdl.Drop(ctx, pool, name); err != nil {
		return err
	}
	if err := s.dbHdl.DeleteSchema(ctx, nil, pool.ID, name); err != nil && !errors.Is(err, models_error.NotFoundErr) {
		return err
	}
	logger.Info("schema dropped", slog_attr.PoolIDKey, pool.ID, slog_attr.SchemaKey, name)
	return nil
}

// reclaimSchema drops a schema no context is registered for and whose tenant tables are empty.
func (s *Service) reclaimSchema(ctx context.Context, pool models_pool.Pool, name string, tables []string) (bool, error) {
	s.placementMu.Lock()
	defer s.placementMu.Unlock()
	n, err := s.dbHdl.CountSchemaContexts(ctx, nil, pool.ID, name)
	if err != nil {
		return false, err
	}
	if n > 0 || s.reserved.schema(pool.ID, name) > 0 {
		return false, nil
	}
	ep, err := s.endpoint(pool, name)
	if err != nil {
		return false, err
	}
	ok, err := s.relocEngine.IsEmpty(ctx, ep, tables)
	if err != nil || !ok {
		return false, err
	}
	if err = s.releaseSchema(ctx, pool, name); err != nil {
		return false, err
	}
	return true, nil
}
