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
	"fmt"
	"strings"

	handler_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/repair"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	models_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/repair"
)

func (s *Service) RepairTasks(_ context.Context) []models_repair.TaskInfo {
	return s.repairHdl.Tasks()
}

// StartRepair checks a repair request and runs the tasks as a job.
func (s *Service) StartRepair(ctx context.Context, req models_repair.Request) (string, error) {
	if _, err := s.repairHdl.Select(req.Tasks); err != nil {
		return "", wrapErr(err, "task")
	}
	if _, err := s.repairPools(ctx, req.PoolIDs); err != nil {
		return "", err
	}
	desc := "repair"
	if len(req.Tasks) > 0 {
		desc += " " + strings.Join(req.Tasks, ", ")
	}
	return s.jobHdl.Create(desc, func(ctx context.Context, cf context.CancelFunc) (any, error) {
		defer cf()
		return s.Repair(ctx, req)
	})
}

// Repair runs the requested tasks on every schema of the requested pools.
// Per context operations are rejected while the tasks run.
func (s *Service) Repair(ctx context.Context, req models_repair.Request) (models_repair.Report, error) {
	if err := s.lockAll("repair"); err != nil {
		return models_repair.Report{}, err
	}
	defer s.locker.UnlockAll()
	pools, err := s.repairPools(ctx, req.PoolIDs)
	if err != nil {
		return models_repair.Report{}, err
	}
	var targets []handler_repair.Target
	for _, pool := range pools {
		schemas, err := s.dbHdl.ListSchemas(ctx, nil, pool.ID)
		if err != nil {
			return models_repair.Report{}, models_error.NewInternalError(err)
		}
		for _, sc := range schemas {
			ep, err := s.endpoint(pool.Pool, sc.Name)
			if err != nil {
				return models_repair.Report{}, models_error.NewInternalError(err)
			}
			targets = append(targets, handler_repair.Target{PoolID: pool.ID, Schema: sc.Name, DB: ep.DB, Dialect: ep.Dialect})
		}
	}
	report, err := s.repairHdl.Run(ctx, targets, req.Tasks, req.Force)
	if err != nil {
		return models_repair.Report{}, wrapErr(err, "task")
	}
	for _, r := range report.Results {
		s.metrics.rowsRepaired.Add(float64(r.RowsAffected))
	}
	return report, nil
}

func (s *Service) repairPools(ctx context.Context, ids []int64) ([]models_pool.PoolInfo, error) {
	pools, err := s.dbHdl.ListPools(ctx)
	if err != nil {
		return nil, models_error.NewInternalError(err)
	}
	if len(ids) == 0 {
		return pools, nil
	}
	index := make(map[int64]models_pool.PoolInfo, len(pools))
	for _, p := range pools {
		index[p.ID] = p
	}
	var sel []models_pool.PoolInfo
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		p, ok := index[id]
		if !ok {
			return nil, models_error.NewNotFoundError(fmt.Errorf("pool %d not found", id))
		}
		if _, ok = seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		sel = append(sel, p)
	}
	return sel, nil
}
