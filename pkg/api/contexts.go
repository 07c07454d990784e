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
	"strconv"

	models_context "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/context"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	"github.com/gin-gonic/gin"
)

type contextsQuery struct {
	IDs     []int64 `form:"ids"`
	Name    string  `form:"name"`
	Enabled *bool   `form:"enabled"`
	Reason  string  `form:"reason"`
	PoolID  int64   `form:"pool_id"`
	Schema  string  `form:"schema"`
	Login   string  `form:"login"`
}

type reasonQuery struct {
	Reason string `form:"reason"`
}

// getContextsH godoc
// @Summary List contexts
// @Tags Contexts
// @Produce	json
// @Param ids query []int false "context IDs"
// @Param name query string false "name pattern, '*' matches any sequence"
// @Param enabled query bool false "filter by state"
// @Param reason query string false "filter by disable reason"
// @Param pool_id query int false "filter by pool"
// @Param schema query string false "filter by schema"
// @Param login query string false "filter by login"
// @Success	200 {array} models_context.Context "contexts"
// @Failure	400 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /contexts [get]
func getContextsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, ContextsPath, func(gc *gin.Context) {
		var query contextsQuery
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		filter := models_context.ContextFilter{
			IDs:    query.IDs,
			Name:   query.Name,
			Reason: query.Reason,
			PoolID: query.PoolID,
			Schema: query.Schema,
			Login:  query.Login,
		}
		if query.Enabled != nil {
			filter.Enabled = -1
			if *query.Enabled {
				filter.Enabled = 1
			}
		}
		contexts, err := a.service.ListContexts(gc.Request.Context(), filter)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, contexts)
	}
}

// postContextH godoc
// @Summary Create context
// @Description Create a context, select a pool and schema and provision the tenant data.
// @Tags Contexts
// @Accept json
// @Produce	json
// @Param data body models_context.CreateRequest true "context data"
// @Success	200 {object} models_context.Context "context"
// @Failure	400 {string} string "error message"
// @Failure	409 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /contexts [post]
func postContextH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, ContextsPath, func(gc *gin.Context) {
		var req models_context.CreateRequest
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		c, err := a.service.CreateContext(gc.Request.Context(), req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, c)
	}
}

func patchContextsEnableH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(ContextsPath, EnablePath), func(gc *gin.Context) {
		var query reasonQuery
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		n, err := a.service.EnableAllContexts(gc.Request.Context(), query.Reason)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, strconv.FormatInt(n, 10))
	}
}

func patchContextsDisableH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(ContextsPath, DisablePath), func(gc *gin.Context) {
		var query reasonQuery
		if err := gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		n, err := a.service.DisableAllContexts(gc.Request.Context(), query.Reason)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, strconv.FormatInt(n, 10))
	}
}

func getContextH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(ContextsPath, ":"+cidParam), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		c, err := a.service.GetContext(gc.Request.Context(), cid)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, c)
	}
}

func patchContextH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(ContextsPath, ":"+cidParam), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var req models_context.ChangeRequest
		if err = gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		c, err := a.service.ChangeContext(gc.Request.Context(), cid, req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, c)
	}
}

// deleteContextH godoc
// @Summary Delete context
// @Description Remove the tenant data and the registration of a context.
// @Tags Contexts
// @Param cid path int true "context ID"
// @Success	200
// @Failure	404 {string} string "error message"
// @Failure	409 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /contexts/{cid} [delete]
func deleteContextH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join(ContextsPath, ":"+cidParam), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		if err = a.service.DeleteContext(gc.Request.Context(), cid); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func patchContextEnableH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(ContextsPath, ":"+cidParam, EnablePath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		if err = a.service.EnableContext(gc.Request.Context(), cid); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func patchContextDisableH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(ContextsPath, ":"+cidParam, DisablePath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var query reasonQuery
		if err = gc.ShouldBindQuery(&query); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		if err = a.service.DisableContext(gc.Request.Context(), cid, query.Reason); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

// patchContextMoveH godoc
// @Summary Move context
// @Description Relocate the tenant data of a context to another pool.
// @Tags Contexts
// @Accept json
// @Produce	plain
// @Param cid path int true "context ID"
// @Param data body models_context.MoveRequest true "target pool"
// @Success	200 {string} string "job ID"
// @Failure	400 {string} string "error message"
// @Failure	404 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /contexts/{cid}/move [patch]
func patchContextMoveH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, path.Join(ContextsPath, ":"+cidParam, MovePath), func(gc *gin.Context) {
		cid, err := intParam(gc, cidParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		var req models_context.MoveRequest
		if err = gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		jID, err := a.service.StartMoveContext(gc.Request.Context(), cid, req.PoolID)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}

func getLoginH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(LoginsPath, ":"+loginParam), func(gc *gin.Context) {
		cid, err := a.service.ResolveLogin(gc.Request.Context(), gc.Param(loginParam))
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, strconv.FormatInt(cid, 10))
	}
}
