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
	models_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/repair"
	"github.com/gin-gonic/gin"
)

func getRepairTasksH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodGet, path.Join(RepairPath, TasksPath), func(gc *gin.Context) {
		gc.JSON(http.StatusOK, a.service.RepairTasks(gc.Request.Context()))
	}
}

// patchRepairH godoc
// @Summary Run repair tasks
// @Description Run repair tasks on the schemas of the selected pools.
// @Tags Repair
// @Accept json
// @Produce	plain
// @Param data body models_repair.Request true "tasks and pools"
// @Success	200 {string} string "job ID"
// @Failure	400 {string} string "error message"
// @Failure	404 {string} string "error message"
// @Failure	500 {string} string "error message"
// @Router /repair [patch]
func patchRepairH(a *Api) (string, string, gin.HandlerFunc) {
	return http.MethodPatch, RepairPath, func(gc *gin.Context) {
		var req models_repair.Request
		if err := gc.ShouldBindJSON(&req); err != nil {
			_ = gc.Error(models_error.NewInvalidInputError(err))
			return
		}
		jID, err := a.service.StartRepair(gc.Request.Context(), req)
		if err != nil {
			_ = gc.Error(err)
			return
		}
		gc.String(http.StatusOK, jID)
	}
}
