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

// Package database provides SQLite persistence for the broker: the
// symbol universe, orders, and their executions. Prepared statements are
// initialized once and reused, avoiding SQL parsing overhead on the
// per-order path. Every lifecycle mutation runs inside a single
// transaction so the quantity and status invariants hold at each commit.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when an order or symbol does not exist.
	ErrNotFound = errors.New("database: not found")

	// ErrDuplicateClOrdID is returned when an insert collides on the
	// orders.cl_ord_id unique index.
	ErrDuplicateClOrdID = errors.New("database: duplicate ClOrdID")
)

const schema = `
CREATE TABLE IF NOT EXISTS symbols (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	symbol     TEXT NOT NULL UNIQUE,
	last_price REAL NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	cl_ord_id          TEXT NOT NULL UNIQUE,
	sender_id          TEXT NOT NULL,
	symbol             TEXT NOT NULL,
	side               TEXT NOT NULL,
	order_type         TEXT NOT NULL,
	quantity           INTEGER NOT NULL,
	limit_price        REAL,
	time_in_force      TEXT NOT NULL,
	status             TEXT NOT NULL,
	filled_quantity    INTEGER NOT NULL,
	remaining_quantity INTEGER NOT NULL,
	reject_reason      TEXT,
	created_at         TIMESTAMP NOT NULL,
	updated_at         TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_orders_symbol ON orders(symbol);

CREATE TABLE IF NOT EXISTS executions (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	order_id      INTEGER NOT NULL REFERENCES orders(id),
	exec_id       TEXT NOT NULL UNIQUE,
	exec_quantity INTEGER NOT NULL,
	exec_price    REAL NOT NULL,
	executed_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_executions_order ON executions(order_id);
`

// BrokerDb is the broker's SQLite store.
type BrokerDb struct {
	db *sql.DB

	// Prepared statements for the hot order path
	stmtInsertOrder *sql.Stmt
	stmtInsertExec  *sql.Stmt
	stmtGetSymbol   *sql.Stmt
}

// NewBrokerDb opens (creating if needed) the broker database at dbPath.
// WAL mode keeps admin API reads from blocking the FIX write path.
func NewBrokerDb(dbPath string) (*BrokerDb, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	// A single writer connection sidesteps SQLITE_BUSY between the FIX
	// handlers and the admin workers; sqlite serializes writes anyway.
	db.SetMaxOpenConns(1)

	bdb := &BrokerDb{db: db}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %v", err)
	}

	if bdb.stmtInsertOrder, err = db.Prepare(insertOrderQuery); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare order insert: %v", err)
	}
	if bdb.stmtInsertExec, err = db.Prepare(insertExecutionQuery); err != nil {
		_ = bdb.stmtInsertOrder.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare execution insert: %v", err)
	}
	if bdb.stmtGetSymbol, err = db.Prepare(getSymbolQuery); err != nil {
		_ = bdb.stmtInsertOrder.Close()
		_ = bdb.stmtInsertExec.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare symbol lookup: %v", err)
	}

	log.Printf("SQLite database initialized at %s", dbPath)
	return bdb, nil
}

// Close releases prepared statements and the underlying handle.
func (bdb *BrokerDb) Close() error {
	if bdb.stmtInsertOrder != nil {
		_ = bdb.stmtInsertOrder.Close()
	}
	if bdb.stmtInsertExec != nil {
		_ = bdb.stmtInsertExec.Close()
	}
	if bdb.stmtGetSymbol != nil {
		_ = bdb.stmtGetSymbol.Close()
	}
	return bdb.db.Close()
}

// Tx wraps a single transaction over orders, executions, and symbols.
// Lifecycle transitions acquire one Tx so that an execution append and
// the matching quantity/status update commit together or not at all.
type Tx struct {
	tx  *sql.Tx
	bdb *BrokerDb
}

// WithTx runs fn inside a transaction, committing on nil and rolling
// back on error.
func (bdb *BrokerDb) WithTx(fn func(*Tx) error) error {
	tx, err := bdb.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	if err := fn(&Tx{tx: tx, bdb: bdb}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a sqlite unique-constraint
// failure.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.Code == sqlite3.ErrConstraint &&
			serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
