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

// Package universe loads the tradable symbol set from CSV. Each data row
// is symbol,last_price; a header row is skipped when the price column
// does not parse as a number.
package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"sim-broker-go/database"
)

// LoadFile reads a symbol universe CSV from disk.
func LoadFile(path string) ([]database.SymbolPrice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open symbol file: %v", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses symbol,last_price rows from r. Symbols are trimmed and
// upper-cased; a later duplicate of a symbol replaces the earlier row.
func Load(r io.Reader) ([]database.SymbolPrice, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var pairs []database.SymbolPrice
	seen := make(map[string]int)
	line := 0
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read symbol csv: %v", err)
		}
		line++

		if len(record) < 2 {
			return nil, fmt.Errorf("symbol csv line %d: expected symbol,last_price", line)
		}

		symbol := strings.ToUpper(strings.TrimSpace(record[0]))
		price, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
		if err != nil {
			// Tolerate a header row in first position only.
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("symbol csv line %d: bad price %q", line, record[1])
		}
		if symbol == "" {
			return nil, fmt.Errorf("symbol csv line %d: empty symbol", line)
		}
		if price <= 0 {
			return nil, fmt.Errorf("symbol csv line %d: price must be positive", line)
		}

		if i, ok := seen[symbol]; ok {
			pairs[i].LastPrice = price
			continue
		}
		seen[symbol] = len(pairs)
		pairs = append(pairs, database.SymbolPrice{Symbol: symbol, LastPrice: price})
	}
	return pairs, nil
}
