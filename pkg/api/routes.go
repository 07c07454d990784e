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
	"fmt"
	"strconv"

	gin_mw "github.com/SENERGY-Platform/gin-middleware"
	models_error "github.com/SENERGY-Platform/mgw-context-manager/pkg/models/error"
	"github.com/gin-gonic/gin"
)

var routes = gin_mw.Routes[*Api]{
	getHealthCheckH,
	getMetricsH,
	getInfoH,
	getPoolsH,
	postPoolH,
	getPoolH,
	deletePoolH,
	getPoolSchemasH,
	getContextsH,
	postContextH,
	patchContextsEnableH,
	patchContextsDisableH,
	getContextH,
	patchContextH,
	deleteContextH,
	patchContextEnableH,
	patchContextDisableH,
	patchContextMoveH,
	getLoginH,
	getGroupsH,
	postGroupH,
	getGroupH,
	patchGroupH,
	deleteGroupH,
	getUsersH,
	postUserH,
	getUserH,
	deleteUserH,
	getEventsH,
	postEventH,
	getEventH,
	deleteEventH,
	postEventSearchH,
	postEventFacetsH,
	getRepairTasksH,
	patchRepairH,
	getJobsH,
	getJobH,
	patchJobCancelH,
}

func intParam(gc *gin.Context, name string) (int64, error) {
	v, err := strconv.ParseInt(gc.Param(name), 10, 64)
	if err != nil {
		return 0, models_error.NewInvalidInputError(fmt.Errorf("invalid %s '%s'", name, gc.Param(name)))
	}
	return v, nil
}
