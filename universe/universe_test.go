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

package universe

import (
	"strings"
	"testing"
)

// Tests for symbol universe CSV parsing.

// TestLoad_Basic verifies plain rows parse with symbols normalized.
func TestLoad_Basic(t *testing.T) {
	pairs, err := Load(strings.NewReader("AAPL,187.50\nmsft, 420.00\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("pair count: got %d, want 2", len(pairs))
	}
	if pairs[0].Symbol != "AAPL" || pairs[0].LastPrice != 187.50 {
		t.Errorf("first pair: got %+v", pairs[0])
	}
	if pairs[1].Symbol != "MSFT" || pairs[1].LastPrice != 420.00 {
		t.Errorf("second pair: got %+v", pairs[1])
	}
}

// TestLoad_HeaderSkipped verifies a header row is tolerated in first
// position only.
func TestLoad_HeaderSkipped(t *testing.T) {
	pairs, err := Load(strings.NewReader("symbol,last_price\nAAPL,187.50\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 1 || pairs[0].Symbol != "AAPL" {
		t.Errorf("pairs: got %+v", pairs)
	}

	_, err = Load(strings.NewReader("AAPL,187.50\nsymbol,last_price\n"))
	if err == nil {
		t.Error("non-numeric price past the first row parsed")
	}
}

// TestLoad_DuplicateLastWins verifies a repeated symbol keeps the later
// price without duplicating the row.
func TestLoad_DuplicateLastWins(t *testing.T) {
	pairs, err := Load(strings.NewReader("AAPL,100\nAAPL,105\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("pair count: got %d, want 1", len(pairs))
	}
	if pairs[0].LastPrice != 105 {
		t.Errorf("price: got %v, want 105", pairs[0].LastPrice)
	}
}

// TestLoad_BadRows verifies the failure modes.
func TestLoad_BadRows(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing price column", "AAPL\n"},
		{"zero price", "AAPL,0\n"},
		{"negative price", "AAPL,-5\n"},
		{"empty symbol", ",100\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.input)); err == nil {
				t.Error("bad row parsed without error")
			}
		})
	}
}

// TestLoad_Empty verifies an empty file yields an empty universe.
func TestLoad_Empty(t *testing.T) {
	pairs, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pairs) != 0 {
		t.Errorf("pair count: got %d, want 0", len(pairs))
	}
}
