/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config holds the broker's runtime knobs and a loader that
// populates them from environment variables.
//
// Typical flow (see cmd/broker):
//
//	cfg := config.Load()
//	db, err := database.NewBrokerDb(cfg.DBPath)
package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime knobs for the broker.
type Config struct {
	// FIX acceptor
	FIXListenAddr string // e.g. ":5001"
	BrokerCompID  string // served as SenderCompID on every outbound message
	HeartBtInt    int    // heartbeat interval offered at Logon, seconds

	// Admin HTTP API (order inspection, fills, cancels, /metrics)
	APIListenAddr string // e.g. ":8080"

	// Storage
	DBPath string // sqlite file; ":memory:" for ephemeral runs

	// Symbol universe
	SymbolFile string // CSV of symbol,last_price rows loaded at startup
}

// Load reads the configuration from the environment, applying defaults
// for anything unset.
func Load() Config {
	return Config{
		FIXListenAddr: getEnv("FIX_LISTEN_ADDR", ":5001"),
		BrokerCompID:  getEnv("BROKER_COMP_ID", "BROKER"),
		HeartBtInt:    getEnvInt("HEARTBT_INT", 30),
		APIListenAddr: getEnv("API_LISTEN_ADDR", ":8080"),
		DBPath:        getEnv("DB_PATH", "broker.db"),
		SymbolFile:    getEnv("SYMBOL_FILE", "symbols.csv"),
	}
}

// --------- Env helpers ---------

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}
