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
	"fmt"
	"time"

	handler_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/relocation"
	models_context "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/context"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	models_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/relocation"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
)

// StartMoveContext checks a move request and runs the move as a job.
func (s *Service) StartMoveContext(ctx context.Context, cid, targetPoolID int64) (string, error) {
	c, err := s.getContext(ctx, cid)
	if err != nil {
		return "", err
	}
	if _, err = s.checkMoveTarget(ctx, c, targetPoolID); err != nil {
		return "", err
	}
	return s.jobHdl.Create(fmt.Sprintf("move context %d to pool %d", cid, targetPoolID), func(ctx context.Context, cf context.CancelFunc) (any, error) {
		defer cf()
		return s.MoveContext(ctx, cid, targetPoolID)
	})
}

// MoveContext copies the tenant data of a context to a schema on another pool
// and switches the registration. Failures before the switch are rolled back,
// failures after the switch are returned as warnings.
func (s *Service) MoveContext(ctx context.Context, cid, targetPoolID int64) (models_relocation.MoveResult, error) {
	start := time.Now()
	if err := s.lockContext(cid, "move"); err != nil {
		return models_relocation.MoveResult{}, err
	}
	defer s.locker.Unlock(cid)
	c, err := s.getContext(ctx, cid)
	if err != nil {
		return models_relocation.MoveResult{}, err
	}
	target, err := s.checkMoveTarget(ctx, c, targetPoolID)
	if err != nil {
		return models_relocation.MoveResult{}, err
	}
	source, err := s.readPool(ctx, nil, c.PoolID)
	if err != nil {
		return models_relocation.MoveResult{}, err
	}
	result := models_relocation.MoveResult{
		ContextID:    cid,
		SourcePoolID: source.ID,
		SourceSchema: c.Schema,
		TargetPoolID: target.ID,
	}
	logger.Info("moving context", slog_attr.ContextIDKey, cid, slog_attr.PoolIDKey, target.ID)
	if err = s.dbHdl.SetContextEnabled(ctx, nil, cid, false, models_context.ReasonMove, time.Now().UTC()); err != nil {
		return models_relocation.MoveResult{}, wrapErr(err, fmt.Sprintf("context %d", cid))
	}
	bgCtx := context.WithoutCancel(ctx)
	restore := func() error {
		return s.dbHdl.SetContextEnabled(bgCtx, nil, cid, c.Enabled, c.Reason, time.Now().UTC())
	}
	schema, created, err := s.prepareTarget(ctx, target)
	if err != nil {
		if e := restore(); e != nil {
			logWarning("restoring context state failed", cid, e)
		}
		s.metrics.contextsMoved.WithLabelValues("failed").Inc()
		return models_relocation.MoveResult{}, err
	}
	result.TargetSchema = schema
	src, dst, order, copied, err := s.copyContext(ctx, source.Pool, c.Schema, target.Pool, schema, cid)
	if err == nil {
		err = s.inConfigTx(ctx, func(tx driver.Tx) error {
			if err := s.checkTargetCapacity(ctx, tx, target.ID, schema); err != nil {
				return err
			}
			return wrapErr(s.dbHdl.SetContextLocation(ctx, tx, cid, target.ID, schema, time.Now().UTC()), fmt.Sprintf("context %d", cid))
		})
	}
	s.reserved.remove(target.ID, schema)
	if err != nil {
		s.rollbackMove(bgCtx, dst, target.Pool, schema, created, cid, copied)
		if e := restore(); e != nil {
			logWarning("restoring context state failed", cid, e)
		}
		s.metrics.contextsMoved.WithLabelValues("failed").Inc()
		logger.Error("moving context failed", slog_attr.ContextIDKey, cid, slog_attr.ErrorKey, err)
		return models_relocation.MoveResult{}, wrapErr(err, fmt.Sprintf("context %d", cid))
	}
	result.Tables = copied
	if _, err = s.relocEngine.Purge(bgCtx, src, cid, order); err != nil {
		result.Warnings = append(result.Warnings, logWarning("purging source rows failed", cid, err))
	} else {
		dropped, err := s.reclaimSchema(bgCtx, source.Pool, c.Schema, order)
		if err != nil {
			result.Warnings = append(result.Warnings, logWarning("reclaiming source schema failed", cid, err))
		}
		result.SchemaDropped = dropped
	}
	if err = restore(); err != nil {
		result.Warnings = append(result.Warnings, logWarning("restoring context state failed", cid, err))
	}
	result.Duration = time.Since(start)
	s.metrics.contextsMoved.WithLabelValues("ok").Inc()
	s.metrics.moveDuration.Observe(result.Duration.Seconds())
	s.metrics.rowsCopied.Add(float64(result.Rows()))
	logger.Info("context moved", slog_attr.ContextIDKey, cid, slog_attr.PoolIDKey, target.ID, slog_attr.SchemaKey, schema, slog_attr.RowsKey, result.Rows(), slog_attr.DurationKey, result.Duration.String())
	return result, nil
}

func (s *Service) checkMoveTarget(ctx context.Context, c models_context.Context, targetPoolID int64) (models_pool.PoolInfo, error) {
	if c.PoolID == targetPoolID {
		return models_pool.PoolInfo{}, models_error.NewInvalidInputError(fmt.Errorf("context %d already on pool %d", c.ID, targetPoolID))
	}
	target, err := s.readPool(ctx, nil, targetPoolID)
	if err != nil {
		return models_pool.PoolInfo{}, err
	}
	if s.isFull(target) {
		return models_pool.PoolInfo{}, models_error.NewInvalidInputError(fmt.Errorf("pool %d is full", targetPoolID))
	}
	return target, nil
}

// prepareTarget selects or provisions a schema on the target pool and reserves
// a slot in it until the registration is switched.
func (s *Service) prepareTarget(ctx context.Context, target models_pool.PoolInfo) (string, bool, error) {
	s.placementMu.Lock()
	defer s.placementMu.Unlock()
	target, err := s.readPool(ctx, nil, target.ID)
	if err != nil {
		return "", false, err
	}
	if s.isFull(target) {
		return "", false, models_error.NewResourceBusyError(fmt.Errorf("pool %d is full", target.ID))
	}
	schema, created, err := s.selectSchema(ctx, target)
	if err != nil {
		return "", false, err
	}
	if created {
		if err = s.provisionSchema(ctx, target.Pool, schema); err != nil {
			return "", false, err
		}
	}
	s.reserved.add(target.ID, schema)
	return schema, created, nil
}

func (s *Service) checkTargetCapacity(ctx context.Context, tx driver.Tx, poolID int64, schema string) error {
	pool, err := s.readPool(ctx, tx, poolID)
	if err != nil {
		return err
	}
	if pool.MaxContexts > 0 && pool.Contexts >= pool.MaxContexts {
		return models_error.NewResourceBusyError(fmt.Errorf("pool %d is full", poolID))
	}
	n, err := s.dbHdl.CountSchemaContexts(ctx, tx, poolID, schema)
	if err != nil {
		return models_error.NewInternalError(err)
	}
	if pool.ContextsPerSchema > 0 && n >= pool.ContextsPerSchema {
		return models_error.NewResourceBusyError(fmt.Errorf("schema %s is full", schema))
	}
	return nil
}

func (s *Service) copyContext(ctx context.Context, srcPool models_pool.Pool, srcSchema string, dstPool models_pool.Pool, dstSchema string, cid int64) (src, dst handler_relocation.Endpoint, order []string, copied []models_relocation.TableStat, err error) {
	if src, err = s.endpoint(srcPool, srcSchema); err != nil {
		return
	}
	if dst, err = s.endpoint(dstPool, dstSchema); err != nil {
		return
	}
	if order, err = s.relocEngine.Plan(ctx, src); err != nil {
		return
	}
	copied, err = s.relocEngine.Copy(ctx, src, dst, cid, order, func(stat models_relocation.TableStat) {
		logger.Debug("table copied", slog_attr.ContextIDKey, cid, slog_attr.TableKey, stat.Table, slog_attr.RowsKey, stat.Rows)
	})
	if err != nil {
		return
	}
	if s.relocEngine.VerifyCounts() {
		err = s.relocEngine.Verify(ctx, src, dst, cid, order)
	}
	return
}

// rollbackMove deletes the copied rows and drops a target schema created by the move once it is unused.
func (s *Service) rollbackMove(ctx context.Context, dst handler_relocation.Endpoint, pool models_pool.Pool, schema string, created bool, cid int64, copied []models_relocation.TableStat) {
	if dst.DB != nil && len(copied) > 0 {
		if err := s.relocEngine.Rollback(ctx, dst, cid, copied); err != nil {
			logWarning("rolling back copied rows failed", cid, err)
			return
		}
	}
	if !created {
		return
	}
	ep, err := s.endpoint(pool, schema)
	if err != nil {
		logWarning("dropping target schema failed", cid, err)
		return
	}
	tables, err := s.relocEngine.Plan(ctx, ep)
	if err != nil {
		logWarning("dropping target schema failed", cid, err)
		return
	}
	if _, err = s.reclaimSchema(ctx, pool, schema, tables); err != nil {
		logWarning("dropping target schema failed", cid, err)
	}
}
