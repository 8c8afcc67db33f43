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

// Command broker runs the simulated brokerage: a FIX 4.2 acceptor for
// order entry, a sqlite-backed order lifecycle engine, and an admin HTTP
// API for fills, cancels, and symbol universe management.
package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"sim-broker-go/api"
	"sim-broker-go/config"
	"sim-broker-go/database"
	"sim-broker-go/fixserver"
	"sim-broker-go/lifecycle"
	"sim-broker-go/universe"
)

func main() {
	cfg := config.Load()

	db, err := database.NewBrokerDb(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if pairs, err := universe.LoadFile(cfg.SymbolFile); err != nil {
		log.Printf("symbol universe not loaded from %s: %v", cfg.SymbolFile, err)
	} else {
		count, err := db.ReloadSymbols(pairs)
		if err != nil {
			log.Fatalf("failed to load symbol universe: %v", err)
		}
		log.Printf("symbol universe loaded: %d symbols from %s", count, cfg.SymbolFile)
	}

	engine := lifecycle.NewEngine(db, nil)

	fixSrv := fixserver.NewServer(fixserver.Config{
		ListenAddr:   cfg.FIXListenAddr,
		BrokerCompID: cfg.BrokerCompID,
		HeartBtInt:   cfg.HeartBtInt,
	}, engine, db)
	if err := fixSrv.Start(); err != nil {
		log.Fatalf("failed to start FIX server: %v", err)
	}

	apiSrv := api.NewServer(cfg.APIListenAddr, db, engine, fixSrv.Router(), cfg.SymbolFile)
	if err := apiSrv.Start(); err != nil {
		log.Fatalf("failed to start admin API: %v", err)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Printf("shutting down")
	apiSrv.Stop()
	fixSrv.Stop()
}
