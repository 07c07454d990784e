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
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	handler_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/relocation"
	handler_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/tenant"
	models_context "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/context"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/models/slog_attr"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
)

var contextNameRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

func (s *Service) CreateContext(ctx context.Context, req models_context.CreateRequest) (models_context.Context, error) {
	if err := validateContextBase(req.ContextBase); err != nil {
		return models_context.Context{}, err
	}
	if req.ID < 0 {
		return models_context.Context{}, models_error.NewInvalidInputError(fmt.Errorf("invalid context id %d", req.ID))
	}
	logins, err := validateLogins(req.Logins)
	if err != nil {
		return models_context.Context{}, err
	}
	if err = validateAttributes(req.Attributes); err != nil {
		return models_context.Context{}, err
	}
	s.placementMu.Lock()
	defer s.placementMu.Unlock()
	cid := req.ID
	if cid == 0 {
		if cid, err = s.dbHdl.NextContextID(ctx, nil); err != nil {
			return models_context.Context{}, models_error.NewInternalError(err)
		}
	}
	ok, err := s.dbHdl.ContextExists(ctx, nil, cid, req.Name)
	if err != nil {
		return models_context.Context{}, models_error.NewInternalError(err)
	}
	if ok {
		return models_context.Context{}, models_error.NewInvalidInputError(fmt.Errorf("context %d or name '%s' already exists", cid, req.Name))
	}
	if err = s.checkLoginsFree(ctx, nil, logins); err != nil {
		return models_context.Context{}, err
	}
	if err = s.lockContext(cid, "create"); err != nil {
		return models_context.Context{}, err
	}
	defer s.locker.Unlock(cid)
	pool, err := s.selectPool(ctx, req.PoolID)
	if err != nil {
		return models_context.Context{}, err
	}
	schema, created, err := s.selectSchema(ctx, pool)
	if err != nil {
		return models_context.Context{}, err
	}
	if created {
		if err = s.provisionSchema(ctx, pool.Pool, schema); err != nil {
			return models_context.Context{}, err
		}
	}
	// releases a schema provisioned for this context on failure
	fail := func(err error) (models_context.Context, error) {
		if created {
			if e := s.releaseSchema(context.WithoutCancel(ctx), pool.Pool, schema); e != nil {
				logger.Error("dropping schema failed", slog_attr.PoolIDKey, pool.ID, slog_attr.SchemaKey, schema, slog_attr.ErrorKey, e)
			}
		}
		return models_context.Context{}, err
	}
	ep, err := s.endpoint(pool.Pool, schema)
	if err != nil {
		return fail(models_error.NewInternalError(err))
	}
	timestamp := time.Now().UTC()
	admin := models_tenant.UserBase{Name: req.Admin.Name, DisplayName: req.Admin.DisplayName, Mail: req.Admin.Mail}
	err = inShardTx(ctx, ep, func(tx *sql.Tx) error {
		return wrapErr(handler_tenant.Bootstrap(ctx, tx, ep.Dialect, cid, admin, timestamp), "context")
	})
	if err != nil {
		return fail(err)
	}
	c := models_context.Context{
		ID:          cid,
		ContextBase: req.ContextBase,
		Enabled:     true,
		PoolID:      pool.ID,
		Schema:      schema,
		Logins:      logins,
		Attributes:  req.Attributes,
		Created:     timestamp,
		Updated:     timestamp,
	}
	err = s.inConfigTx(ctx, func(tx driver.Tx) error {
		return wrapErr(s.dbHdl.CreateContext(ctx, tx, c), "context")
	})
	if err != nil {
		if e := s.purgeTenant(context.WithoutCancel(ctx), ep, cid); e != nil {
			logger.Error("removing tenant data failed", slog_attr.ContextIDKey, cid, slog_attr.ErrorKey, e)
		}
		return fail(err)
	}
	s.metrics.contextsCreated.Inc()
	logger.Info("context created", slog_attr.ContextIDKey, cid, slog_attr.PoolIDKey, pool.ID, slog_attr.SchemaKey, schema)
	return s.getContext(ctx, cid)
}

func (s *Service) ChangeContext(ctx context.Context, cid int64, req models_context.ChangeRequest) (models_context.Context, error) {
	if err := s.lockContext(cid, "change"); err != nil {
		return models_context.Context{}, err
	}
	defer s.locker.Unlock(cid)
	addLogins, err := validateLogins(req.AddLogins)
	if err != nil {
		return models_context.Context{}, err
	}
	if err = validateAttributes(req.SetAttributes); err != nil {
		return models_context.Context{}, err
	}
	err = s.inConfigTx(ctx, func(tx driver.Tx) error {
		c, err := s.dbHdl.ReadContext(ctx, tx, cid)
		if err != nil {
			return wrapErr(err, fmt.Sprintf("context %d", cid))
		}
		base := c.ContextBase
		if req.Name != nil {
			base.Name = *req.Name
		}
		if req.QuotaMB != nil {
			base.QuotaMB = *req.QuotaMB
		}
		if base != c.ContextBase {
			if err = validateContextBase(base); err != nil {
				return err
			}
			if base.Name != c.Name {
				ok, err := s.dbHdl.ContextExists(ctx, tx, 0, base.Name)
				if err != nil {
					return models_error.NewInternalError(err)
				}
				if ok {
					return models_error.NewInvalidInputError(fmt.Errorf("context name '%s' already exists", base.Name))
				}
			}
			if err = s.dbHdl.UpdateContext(ctx, tx, cid, base, time.Now().UTC()); err != nil {
				return wrapErr(err, fmt.Sprintf("context %d", cid))
			}
		}
		if err = s.dbHdl.RemoveLogins(ctx, tx, cid, req.RemoveLogins); err != nil {
			return models_error.NewInternalError(err)
		}
		if err = s.checkLoginsFree(ctx, tx, addLogins); err != nil {
			return err
		}
		if err = s.dbHdl.AddLogins(ctx, tx, cid, addLogins); err != nil {
			return models_error.NewInternalError(err)
		}
		if err = s.dbHdl.RemoveAttributes(ctx, tx, cid, req.RemoveAttributes); err != nil {
			return models_error.NewInternalError(err)
		}
		return wrapErr(s.dbHdl.SetAttributes(ctx, tx, cid, req.SetAttributes), "context")
	})
	if err != nil {
		return models_context.Context{}, err
	}
	return s.getContext(ctx, cid)
}

func (s *Service) EnableContext(ctx context.Context, cid int64) error {
	if err := s.lockContext(cid, "enable"); err != nil {
		return err
	}
	defer s.locker.Unlock(cid)
	return wrapErr(s.dbHdl.SetContextEnabled(ctx, nil, cid, true, "", time.Now().UTC()), fmt.Sprintf("context %d", cid))
}

func (s *Service) DisableContext(ctx context.Context, cid int64, reason string) error {
	if err := s.lockContext(cid, "disable"); err != nil {
		return err
	}
	defer s.locker.Unlock(cid)
	return wrapErr(s.dbHdl.SetContextEnabled(ctx, nil, cid, false, reason, time.Now().UTC()), fmt.Sprintf("context %d", cid))
}

// DisableAllContexts disables all enabled contexts with the given reason and returns their number.
func (s *Service) DisableAllContexts(ctx context.Context, reason string) (int64, error) {
	if reason == "" {
		return 0, models_error.NewInvalidInputError(errors.New("missing reason"))
	}
	if err := s.lockAll("disable all contexts"); err != nil {
		return 0, err
	}
	defer s.locker.UnlockAll()
	n, err := s.dbHdl.DisableAllContexts(ctx, nil, reason, time.Now().UTC())
	if err != nil {
		return 0, models_error.NewInternalError(err)
	}
	logger.Info(fmt.Sprintf("disabled %d contexts", n), slog_attr.ReasonKey, reason)
	return n, nil
}

// EnableAllContexts enables the contexts disabled with the given reason and returns their number.
func (s *Service) EnableAllContexts(ctx context.Context, reason string) (int64, error) {
	if reason == "" {
		return 0, models_error.NewInvalidInputError(errors.New("missing reason"))
	}
	if err := s.lockAll("enable all contexts"); err != nil {
		return 0, err
	}
	defer s.locker.UnlockAll()
	n, err := s.dbHdl.EnableAllContexts(ctx, nil, reason, time.Now().UTC())
	if err != nil {
		return 0, models_error.NewInternalError(err)
	}
	logger.Info(fmt.Sprintf("enabled %d contexts", n), slog_attr.ReasonKey, reason)
	return n, nil
}

// DeleteContext removes the tenant data and the registration of a context and drops its schema if unused.
func (s *Service) DeleteContext(ctx context.Context, cid int64) error {
	if err := s.lockContext(cid, "delete"); err != nil {
		return err
	}
	defer s.locker.Unlock(cid)
	c, err := s.getContext(ctx, cid)
	if err != nil {
		return err
	}
	pool, err := s.readPool(ctx, nil, c.PoolID)
	if err != nil {
		return err
	}
	ep, err := s.endpoint(pool.Pool, c.Schema)
	if err != nil {
		return models_error.NewInternalError(err)
	}
	order, err := s.relocEngine.Plan(ctx, ep)
	if err != nil {
		return models_error.NewInternalError(err)
	}
	// a context left disabled with the delete reason has lost tenant rows and can be deleted again
	if err = s.dbHdl.SetContextEnabled(ctx, nil, cid, false, models_context.ReasonDelete, time.Now().UTC()); err != nil {
		return wrapErr(err, fmt.Sprintf("context %d", cid))
	}
	if _, err = s.relocEngine.Purge(ctx, ep, cid, order); err != nil {
		logger.Error("purging tenant rows failed", slog_attr.ContextIDKey, cid, slog_attr.ErrorKey, err)
		return models_error.NewInternalError(err)
	}
	err = s.inConfigTx(ctx, func(tx driver.Tx) error {
		return wrapErr(s.dbHdl.DeleteContext(ctx, tx, cid), fmt.Sprintf("context %d", cid))
	})
	if err != nil {
		return err
	}
	s.metrics.contextsDeleted.Inc()
	logger.Info("context deleted", slog_attr.ContextIDKey, cid)
	if _, err = s.reclaimSchema(context.WithoutCancel(ctx), pool.Pool, c.Schema, order); err != nil {
		logger.Error("reclaiming schema failed", slog_attr.PoolIDKey, pool.ID, slog_attr.SchemaKey, c.Schema, slog_attr.ErrorKey, err)
	}
	return nil
}

func (s *Service) GetContext(ctx context.Context, cid int64) (models_context.Context, error) {
	return s.getContext(ctx, cid)
}

func (s *Service) ListContexts(ctx context.Context, filter models_context.ContextFilter) ([]models_context.Context, error) {
	contexts, err := s.dbHdl.ListContexts(ctx, nil, filter)
	if err != nil {
		return nil, models_error.NewInternalError(err)
	}
	return contexts, nil
}

func (s *Service) ResolveLogin(ctx context.Context, login string) (int64, error) {
	cid, err := s.dbHdl.ResolveLogin(ctx, login)
	if err != nil {
		return 0, wrapErr(err, fmt.Sprintf("login '%s'", login))
	}
	return cid, nil
}

func (s *Service) getContext(ctx context.Context, cid int64) (models_context.Context, error) {
	c, err := s.dbHdl.ReadContext(ctx, nil, cid)
	if err != nil {
		return models_context.Context{}, wrapErr(err, fmt.Sprintf("context %d", cid))
	}
	return c, nil
}

func (s *Service) checkLoginsFree(ctx context.Context, tx driver.Tx, logins []string) error {
	mapped, err := s.dbHdl.MappedLogins(ctx, tx, logins)
	if err != nil {
		return models_error.NewInternalError(err)
	}
	if len(mapped) > 0 {
		return models_error.NewInvalidInputError(fmt.Errorf("logins already mapped: %s", strings.Join(mapped, ", ")))
	}
	return nil
}

func (s *Service) purgeTenant(ctx context.Context, ep handler_relocation.Endpoint, cid int64) error {
	order, err := s.relocEngine.Plan(ctx, ep)
	if err != nil {
		return err
	}
	_, err = s.relocEngine.Purge(ctx, ep, cid, order)
	return err
}

func validateContextBase(base models_context.ContextBase) error {
	if !contextNameRe.MatchString(base.Name) {
		return models_error.NewInvalidInputError(fmt.Errorf("invalid context name '%s'", base.Name))
	}
	if base.QuotaMB < 0 {
		return models_error.NewInvalidInputError(errors.New("negative quota"))
	}
	return nil
}

func validateLogins(logins []string) ([]string, error) {
	var valid []string
	set := make(map[string]struct{}, len(logins))
	for _, login := range logins {
		if login == "" || strings.TrimSpace(login) != login {
			return nil, models_error.NewInvalidInputError(fmt.Errorf("invalid login '%s'", login))
		}
		if _, ok := set[login]; ok {
			continue
		}
		set[login] = struct{}{}
		valid = append(valid, login)
	}
	return valid, nil
}

func validateAttributes(attributes map[string]string) error {
	for name := range attributes {
		if name == "" {
			return models_error.NewInvalidInputError(errors.New("empty attribute name"))
		}
	}
	return nil
}
