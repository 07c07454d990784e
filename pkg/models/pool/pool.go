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

package pool

import "time"

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Pool struct {
	ID                int64  `json:"id" yaml:"id"`
	Name              string `json:"name" yaml:"name"`
	Driver            string `json:"driver" yaml:"driver"`
	Address           string `json:"address" yaml:"address"` // host:port, postgres dsn or sqlite directory
	User              string `json:"user,omitempty" yaml:"user,omitempty"`
	Password          string `json:"password,omitempty" yaml:"password,omitempty"`
	Database          string `json:"database,omitempty" yaml:"database,omitempty"` // postgres only
	MaxContexts       int    `json:"max_contexts" yaml:"max_contexts"`
	ContextsPerSchema int    `json:"contexts_per_schema" yaml:"contexts_per_schema"`
	Weight            int    `json:"weight" yaml:"weight"`
}

type PoolInfo struct {
	Pool     `yaml:",inline"`
	Contexts int `json:"contexts" yaml:"contexts"`
	Schemas  int `json:"schemas" yaml:"schemas"`
}

type Schema struct {
	PoolID   int64     `json:"pool_id" yaml:"pool_id"`
	Name     string    `json:"name" yaml:"name"`
	Created  time.Time `json:"created" yaml:"created"`
	Contexts int       `json:"contexts" yaml:"contexts"`
}

type SeedFile struct {
	Pools []Pool `yaml:"pools"`
}
