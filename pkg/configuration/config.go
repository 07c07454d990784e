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

package configuration

import (
	"time"

	sb_config_hdl "github.com/SENERGY-Platform/go-service-base/config-hdl"
	struct_logger "github.com/SENERGY-Platform/go-service-base/struct-logger"
	handler_database "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/database"
	handler_jobs "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/jobs"
	handler_relocation "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/relocation"
	handler_repair "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/handler/repair"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	helper_sql_db "github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/sql_db"
	"github.com/SENERGY-Platform/mgw-context-manager/pkg/service"
)

type ShardsConfig struct {
	Timeout time.Duration `json:"timeout" env_var:"SHARDS_TIMEOUT"`
}

type Config struct {
	ServerPort     uint                      `json:"server_port" env_var:"SERVER_PORT"`
	Logger         struct_logger.Config      `json:"logger"`
	HttpAccessLog  bool                      `json:"http_access_log" env_var:"HTTP_ACCESS_LOG"`
	ConfigDatabase handler_database.Config   `json:"config_database"`
	SQL            helper_sql_db.Config      `json:"sql"`
	Shards         ShardsConfig              `json:"shards"`
	Relocation     handler_relocation.Config `json:"relocation"`
	Repair         handler_repair.Config     `json:"repair"`
	Jobs           handler_jobs.Config       `json:"jobs"`
	Service        service.Config            `json:"service"`
	PoolsPath      string                    `json:"pools_path" env_var:"POOLS_PATH"`
}

func New(path string) (*Config, error) {
	cfg := Config{
		ServerPort: 80,
		Logger: struct_logger.Config{
			Handler:    struct_logger.TextHandlerSelector,
			Level:      struct_logger.LevelInfo,
			TimeFormat: time.RFC3339Nano,
			TimeUtc:    true,
			AddMeta:    false,
		},
		ConfigDatabase: handler_database.Config{
			Driver:   dialect.MySQL,
			Address:  "config-db:3306",
			Database: "configdb",
			Timeout:  time.Second * 30,
		},
		SQL: helper_sql_db.Config{
			MaxOpenConns:    25,
			MaxIdleConns:    25,
			ConnMaxLifetime: time.Minute * 5,
		},
		Shards: ShardsConfig{
			Timeout: time.Second * 30,
		},
		Relocation: handler_relocation.Config{
			Column:       handler_relocation.DefaultColumn,
			ChunkSize:    handler_relocation.DefaultChunkSize,
			VerifyCounts: true,
		},
		Repair: handler_repair.Config{
			Parallel: 4,
		},
		Jobs: handler_jobs.Config{
			BufferSize:    50,
			MaxConcurrent: 2,
			RunInterval:   time.Millisecond * 500,
			MaxAge:        time.Hour * 48,
			PurgeInterval: time.Minute * 5,
		},
		Service: service.Config{
			SchemaPrefix: "ctx",
		},
	}
	err := sb_config_hdl.Load(&cfg, nil, nil, nil, path)
	return &cfg, err
}
