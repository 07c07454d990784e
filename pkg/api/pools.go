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

	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	models_pool "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/pool"
	"github.com/gin-gonic/gin"
)

// getPoolsH godoc
// @Summary List pools
// @Description List registered database pools with their context and schema counts.
// @Tags Pools
// @Produce	json
// @Success	200 {array} models_pool.PoolInfo "pools"
// @Failure	500 {string} string "error message"
// @Router /pools [get]
func getPoolsH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, PoolsPath, func(gc *gin.Context) {
		pools, err := a.service.ListPools(gc.Request.Context())
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, pools)
	}
}

// postPoolH godoc
// @Summary Register pool
// @Tags Pools
// @Accept json
// @Produce	plain
// @Param data body models_pool.Pool true "pool data"
// @Success	200 {string} string "pool ID"
// @Failure	400 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /pools [post]
func postPoolH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPost, PoolsPath, func(gc *gin.Context) {
		var pool models_pool.Pool
		if err := gc.ShouldBindJSON(&pool); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		id, err := a.service.RegisterPool(gc.Request.Context(), pool)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, strconv.FormatInt(id, 10))
	}
}

func getPoolH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(PoolsPath, ":"+poolIDParam), func(gc *gin.Context) {
		id, err := intParam(gc, poolIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		pool, err := a.service.GetPool(gc.Request.Context(), id)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, pool)
	}
}

// deletePoolH godoc
// @Summary Unregister pool
// @Description Unregister a pool without schemas.
// @Tags Pools
// @Param id path int true "pool ID"
// @Success	200
// @Failure	404 {string} string "error message"
// @Failure	409 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /pools/{id} [delete]
func deletePoolH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodDelete, path.Join(PoolsPath, ":"+poolIDParam), func(gc *gin.Context) {
		id, err := intParam(gc, poolIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		if err = a.service.UnregisterPool(gc.Request.Context(), id); err != nil {
			_ = gc.Error(err)
			return
		}
		gc.Status(http.StatusOK)
	}
}

func getPoolSchemasH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(PoolsPath, ":"+poolIDParam, SchemasPath), func(gc *gin.Context) {
		id, err := intParam(gc, poolIDParam)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		schemas, err := a.service.ListSchemas(gc.Request.Context(), id)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.JSON(http.StatusOK, schemas)
	}
}
