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

package sql_db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/SENERGY-Platform/mgw-context-manager/pkg/components/helper/dialect"
	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"
)

type ConnConfig struct {
	Driver   string
	Address  string // host:port, postgres url or sqlite file path
	User     string
	Password string
	Database string
	Schema   string // postgres search_path
	Timeout  time.Duration
}

func Connect(cc ConnConfig, config Config) (*sql.DB, error) {
	switch cc.Driver {
	case dialect.MySQL:
		cfg := mysql.NewConfig()
		cfg.Addr = cc.Address
		cfg.User = cc.User
		cfg.Passwd = cc.Password
		cfg.DBName = cc.Database
		if cc.Timeout > 0 {
			cfg.Timeout = cc.Timeout
			cfg.ReadTimeout = cc.Timeout
			cfg.WriteTimeout = cc.Timeout
		}
		connector, err := mysql.NewConnector(cfg)
		if err != nil {
			return nil, err
		}
		return NewSQLDatabase(connector, config), nil
	case dialect.Postgres:
		dsn, err := PostgresDSN(cc)
		if err != nil {
			return nil, err
		}
		connector, err := pq.NewConnector(dsn)
		if err != nil {
			return nil, err
		}
		return NewSQLDatabase(connector, config), nil
	case dialect.SQLite:
		return Open("sqlite", SQLiteDSN(cc.Address), config)
	default:
		return nil, fmt.Errorf("unsupported driver '%s'", cc.Driver)
	}
}

func PostgresDSN(cc ConnConfig) (string, error) {
	var u *url.URL
	if strings.HasPrefix(cc.Address, "postgres://") || strings.HasPrefix(cc.Address, "postgresql://") {
		var err error
		if u, err = url.Parse(cc.Address); err != nil {
			return "", err
		}
	} else {
		u = &url.URL{Scheme: "postgres", Host: cc.Address}
		q := u.Query()
		q.Set("sslmode", "disable")
		u.RawQuery = q.Encode()
	}
	if cc.User != "" {
		u.User = url.UserPassword(cc.User, cc.Password)
	}
	if cc.Database != "" {
		u.Path = "/" + cc.Database
	}
	q := u.Query()
	if cc.Schema != "" {
		q.Set("search_path", cc.Schema)
	}
	if cc.Timeout > 0 {
		q.Set("connect_timeout", strconv.FormatInt(int64(cc.Timeout/time.Second), 10))
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func SQLiteDSN(path string) string {
	return "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)&_txlock=immediate"
}
