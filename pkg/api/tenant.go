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

package api

import (
	"net/http"
	"path"

	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_tenant "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/tenant"
	"github.com/gin-gonic/gin"
)

func getGroupsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(ContextsPath, ":"+cidParam, GroupsPath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		groups, err := a.service.ListGroups(gc.Request.Context(), cid)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, groups)
	}
}

func postGroupH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join(ContextsPath, ":"+cidParam, GroupsPath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var req models_tenant.GroupCreateRequest
		if err = gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		group, err := a.service.CreateGroup(gc.Request.Context(), cid, req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, group)
	}
}

func getGroupH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(ContextsPath, ":"+cidParam, GroupsPath, ":"+groupIDParam), func(gc *gin.Context) {
		cid, id, err := tenantParams(gc, groupIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		group, err := a.service.GetGroup(gc.Request.Context(), cid, id)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, group)
	}
}

func patchGroupH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(ContextsPath, ":"+cidParam, GroupsPath, ":"+groupIDParam), func(gc *gin.Context) {
		cid, id, err := tenantParams(gc, groupIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var req models_tenant.GroupChangeRequest
		if err = gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		group, err := a.service.ChangeGroup(gc.Request.Context(), cid, id, req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, group)
	}
}

func deleteGroupH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join(ContextsPath, ":"+cidParam, GroupsPath, ":"+groupIDParam), func(gc *gin.Context) {
		cid, id, err := tenantParams(gc, groupIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		if err = a.service.DeleteGroup(gc.Request.Context(), cid, id); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func getUsersH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(ContextsPath, ":"+cidParam, UsersPath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		users, err := a.service.ListUsers(gc.Request.Context(), cid)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, users)
	}
}

func postUserH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, path.Join(ContextsPath, ":"+cidParam, UsersPath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var base models_tenant.UserBase
		if err = gc.ShouldBindJSON(&base); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		user, err := a.service.CreateUser(gc.Request.Context(), cid, base)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, user)
	}
}

func getUserH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(ContextsPath, ":"+cidParam, UsersPath, ":"+userIDParam), func(gc *gin.Context) {
		cid, id, err := tenantParams(gc, userIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		user, err := a.service.GetUser(gc.Request.Context(), cid, id)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, user)
	}
}

func deleteUserH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join(ContextsPath, ":"+cidParam, UsersPath, ":"+userIDParam), func(gc *gin.Context) {
		cid, id, err := tenantParams(gc, userIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		if err = a.service.DeleteUser(gc.Request.Context(), cid, id); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func tenantParams(gc *gin.Context, idParam string) (int64, int64, error) {
	cid, err := intParam(gc, cidParam)
	if err != nil {
		return 0, 0, err
	}
	id, err := intParam(gc, idParam)
	if err != nil {
		return 0, 0, err
	}
	return cid, id, nil
}
