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

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sim-broker-go/models"
)

const getSymbolQuery = `SELECT id, symbol, last_price, updated_at FROM symbols WHERE symbol = ?`

// SymbolPrice is one (symbol, last_price) pair from a universe source.
type SymbolPrice struct {
	Symbol    string
	LastPrice float64
}

// GetSymbol looks up a symbol's reference price row.
func (bdb *BrokerDb) GetSymbol(symbol string) (*models.Symbol, error) {
	row := bdb.stmtGetSymbol.QueryRow(symbol)
	var s models.Symbol
	if err := row.Scan(&s.ID, &s.Symbol, &s.LastPrice, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load symbol: %v", err)
	}
	return &s, nil
}

// ListSymbols returns the whole universe ordered by ticker.
func (bdb *BrokerDb) ListSymbols() ([]models.Symbol, error) {
	rows, err := bdb.db.Query(`SELECT id, symbol, last_price, updated_at FROM symbols ORDER BY symbol`)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %v", err)
	}
	defer rows.Close()

	var symbols []models.Symbol
	for rows.Next() {
		var s models.Symbol
		if err := rows.Scan(&s.ID, &s.Symbol, &s.LastPrice, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %v", err)
		}
		symbols = append(symbols, s)
	}
	return symbols, rows.Err()
}

// CountSymbols returns the number of rows in the universe.
func (bdb *BrokerDb) CountSymbols() (int, error) {
	var n int
	if err := bdb.db.QueryRow(`SELECT COUNT(*) FROM symbols`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count symbols: %v", err)
	}
	return n, nil
}

// ReloadSymbols replaces the whole universe atomically: readers observe
// either the pre-reload set or the post-reload set, never a partial mix.
// Returns the number of rows inserted.
func (bdb *BrokerDb) ReloadSymbols(pairs []SymbolPrice) (int, error) {
	count := 0
	err := bdb.WithTx(func(t *Tx) error {
		if _, err := t.tx.Exec(`DELETE FROM symbols`); err != nil {
			return fmt.Errorf("failed to clear symbols: %v", err)
		}
		now := time.Now().UTC()
		stmt, err := t.tx.Prepare(`INSERT INTO symbols (symbol, last_price, updated_at) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare symbol insert: %v", err)
		}
		defer stmt.Close()

		for _, p := range pairs {
			if _, err := stmt.Exec(p.Symbol, p.LastPrice, now); err != nil {
				return fmt.Errorf("failed to insert symbol %s: %v", p.Symbol, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
