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
	"fmt"
	"time"

	handler_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/relocation"
	handler_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/tenant"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
)

func (s *Service) tenantEndpoint(ctx context.Context, cid int64) (handler_relocation.Endpoint, error) {
	c, err := s.getContext(ctx, cid)
	if err != nil {
		return handler_relocation.Endpoint{}, err
	}
	pool, err := s.readPool(ctx, nil, c.PoolID)
	if err != nil {
		return handler_relocation.Endpoint{}, err
	}
	ep, err := s.endpoint(pool.Pool, c.Schema)
	if err != nil {
		return handler_relocation.Endpoint{}, models_error.NewInternalError(err)
	}
	return ep, nil
}

// tenantWrite locks the context and runs f in a transaction on its schema.
func (s *Service) tenantWrite(ctx context.Context, cid int64, reason string, f func(tx *sql.Tx, d dialect.Dialect) error) error {
	if err := s.lockContext(cid, reason); err != nil {
		return err
	}
	defer s.locker.Unlock(cid)
	ep, err := s.tenantEndpoint(ctx, cid)
	if err != nil {
		return err
	}
	return inShardTx(ctx, ep, func(tx *sql.Tx) error {
		return f(tx, ep.Dialect)
	})
}

func (s *Service) CreateGroup(ctx context.Context, cid int64, req models_tenant.GroupCreateRequest) (models_tenant.Group, error) {
	var group models_tenant.Group
	err := s.tenantWrite(ctx, cid, "create group", func(tx *sql.Tx, d dialect.Dialect) error {
		var err error
		group, err = handler_tenant.CreateGroup(ctx, tx, d, cid, req, time.Now().UTC())
		return wrapErr(err, "group")
	})
	return group, err
}

func (s *Service) GetGroup(ctx context.Context, cid, id int64) (models_tenant.Group, error) {
	ep, err := s.tenantEndpoint(ctx, cid)
	if err != nil {
		return models_tenant.Group{}, err
	}
	group, err := handler_tenant.ReadGroup(ctx, ep.DB, ep.Dialect, cid, id)
	if err != nil {
		return models_tenant.Group{}, wrapErr(err, fmt.Sprintf("group %d", id))
	}
	return group, nil
}

func (s *Service) ListGroups(ctx context.Context, cid int64) ([]models_tenant.Group, error) {
	ep, err := s.tenantEndpoint(ctx, cid)
	if err != nil {
		return nil, err
	}
	groups, err := handler_tenant.ListGroups(ctx, ep.DB, ep.Dialect, cid)
	if err != nil {
		return nil, models_error.NewInternalError(err)
	}
	return groups, nil
}

func (s *Service) ChangeGroup(ctx context.Context, cid, id int64, req models_tenant.GroupChangeRequest) (models_tenant.Group, error) {
	var group models_tenant.Group
	err := s.tenantWrite(ctx, cid, "change group", func(tx *sql.Tx, d dialect.Dialect) error {
		var err error
		group, err = handler_tenant.UpdateGroup(ctx, tx, d, cid, id, req, time.Now().UTC())
		return wrapErr(err, fmt.Sprintf("group %d", id))
	})
	return group, err
}

func (s *Service) DeleteGroup(ctx context.Context, cid, id int64) error {
	return s.tenantWrite(ctx, cid, "delete group", func(tx *sql.Tx, d dialect.Dialect) error {
		return wrapErr(handler_tenant.DeleteGroup(ctx, tx, d, cid, id), fmt.Sprintf("group %d", id))
	})
}

func (s *Service) CreateUser(ctx context.Context, cid int64, base models_tenant.UserBase) (models_tenant.User, error) {
	var user models_tenant.User
	err := s.tenantWrite(ctx, cid, "create user", func(tx *sql.Tx, d dialect.Dialect) error {
		var err error
		user, err = handler_tenant.CreateUser(ctx, tx, d, cid, base, time.Now().UTC())
		return wrapErr(err, "user")
	})
	return user, err
}

func (s *Service) ListUsers(ctx context.Context, cid int64) ([]models_tenant.User, error) {
	ep, err := s.tenantEndpoint(ctx, cid)
	if err != nil {
		return nil, err
	}
	users, err := handler_tenant.ListUsers(ctx, ep.DB, ep.Dialect, cid)
	if err != nil {
		return nil, models_error.NewInternalError(err)
	}
	return users, nil
}

func (s *Service) GetUser(ctx context.Context, cid, id int64) (models_tenant.User, error) {
	ep, err := s.tenantEndpoint(ctx, cid)
	if err != nil {
		return models_tenant.User{}, err
	}
	user, err := handler_tenant.ReadUser(ctx, ep.DB, ep.Dialect, cid, id)
	if err != nil {
		return models_tenant.User{}, wrapErr(err, fmt.Sprintf("user %d", id))
	}
	return user, nil
}

func (s *Service) DeleteUser(ctx context.Context, cid, id int64) error {
	return s.tenantWrite(ctx, cid, "delete user", func(tx *sql.Tx, d dialect.Dialect) error {
		return wrapErr(handler_tenant.DeleteUser(ctx, tx, d, cid, id), fmt.Sprintf("user %d", id))
	})
}
