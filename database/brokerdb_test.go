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
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sim-broker-go/models"
)

// Tests for the SQLite store: order persistence, ClOrdID uniqueness, the
// transactional fill path, and atomic symbol universe reloads.

// newTestDb opens a fresh database in a per-test directory.
func newTestDb(t *testing.T) *BrokerDb {
	t.Helper()
	bdb, err := NewBrokerDb(filepath.Join(t.TempDir(), "broker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })
	return bdb
}

func testOrder(clOrdID string) *models.Order {
	return &models.Order{
		ClOrdID:           clOrdID,
		SenderID:          "CLIENT1",
		Symbol:            "AAPL",
		Side:              models.SideBuy,
		OrderType:         models.OrderTypeMarket,
		Quantity:          100,
		TimeInForce:       models.TimeInForceDay,
		Status:            models.StatusNew,
		FilledQuantity:    0,
		RemainingQuantity: 100,
	}
}

// TestInsertAndGetOrder verifies an order round-trips through the store,
// including the nullable limit price.
func TestInsertAndGetOrder(t *testing.T) {
	bdb := newTestDb(t)

	o := testOrder("ord-1")
	require.NoError(t, bdb.InsertOrder(o))
	require.Greater(t, o.ID, int64(0))
	require.False(t, o.CreatedAt.IsZero())

	got, err := bdb.GetOrder(o.ID)
	require.NoError(t, err)
	require.Equal(t, "ord-1", got.ClOrdID)
	require.Equal(t, models.SideBuy, got.Side)
	require.Equal(t, 100, got.RemainingQuantity)
	require.Nil(t, got.LimitPrice)

	px := 187.50
	limit := testOrder("ord-2")
	limit.OrderType = models.OrderTypeLimit
	limit.LimitPrice = &px
	require.NoError(t, bdb.InsertOrder(limit))

	got, err = bdb.GetOrder(limit.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LimitPrice)
	require.Equal(t, 187.50, *got.LimitPrice)
}

// TestInsertOrder_DuplicateClOrdID verifies the unique index surfaces as
// the sentinel error and leaves the first order intact.
func TestInsertOrder_DuplicateClOrdID(t *testing.T) {
	bdb := newTestDb(t)

	first := testOrder("dup-1")
	require.NoError(t, bdb.InsertOrder(first))

	second := testOrder("dup-1")
	second.Quantity = 999
	err := bdb.InsertOrder(second)
	require.ErrorIs(t, err, ErrDuplicateClOrdID)

	got, err := bdb.GetOrderByClOrdID("dup-1")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)
	require.Equal(t, 100, got.Quantity)
}

// TestGetOrder_NotFound verifies lookups of absent rows.
func TestGetOrder_NotFound(t *testing.T) {
	bdb := newTestDb(t)

	_, err := bdb.GetOrder(12345)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = bdb.GetOrderByClOrdID("missing")
	require.ErrorIs(t, err, ErrNotFound)
}

// TestWithTx_RollbackOnError verifies that a failed transaction persists
// nothing.
func TestWithTx_RollbackOnError(t *testing.T) {
	bdb := newTestDb(t)

	o := testOrder("ord-1")
	require.NoError(t, bdb.InsertOrder(o))

	boom := errors.New("boom")
	err := bdb.WithTx(func(tx *Tx) error {
		require.NoError(t, tx.InsertExecution(&models.Execution{
			OrderID:      o.ID,
			ExecID:       "exec-1",
			ExecQuantity: 40,
			ExecPrice:    187.0,
		}))
		require.NoError(t, tx.UpdateOrderFill(o.ID, 40, 60, models.StatusPartiallyFilled))
		return boom
	})
	require.ErrorIs(t, err, boom)

	execs, err := bdb.ListExecutions(o.ID)
	require.NoError(t, err)
	require.Empty(t, execs)

	got, err := bdb.GetOrder(o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, got.Status)
	require.Equal(t, 0, got.FilledQuantity)
}

// TestWithTx_FillCommit verifies the execution append and the quantity
// update land together, and SumExecutions sees them.
func TestWithTx_FillCommit(t *testing.T) {
	bdb := newTestDb(t)

	o := testOrder("ord-1")
	require.NoError(t, bdb.InsertOrder(o))

	err := bdb.WithTx(func(tx *Tx) error {
		if err := tx.InsertExecution(&models.Execution{
			OrderID: o.ID, ExecID: "exec-1", ExecQuantity: 40, ExecPrice: 100.0,
		}); err != nil {
			return err
		}
		if err := tx.InsertExecution(&models.Execution{
			OrderID: o.ID, ExecID: "exec-2", ExecQuantity: 60, ExecPrice: 110.0,
		}); err != nil {
			return err
		}
		return tx.UpdateOrderFill(o.ID, 100, 0, models.StatusFilled)
	})
	require.NoError(t, err)

	got, err := bdb.GetOrder(o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFilled, got.Status)
	require.Equal(t, 100, got.FilledQuantity)
	require.Equal(t, 0, got.RemainingQuantity)

	execs, err := bdb.ListExecutions(o.ID)
	require.NoError(t, err)
	require.Len(t, execs, 2)
	require.Equal(t, "exec-1", execs[0].ExecID)

	err = bdb.WithTx(func(tx *Tx) error {
		value, qty, err := tx.SumExecutions(o.ID)
		require.NoError(t, err)
		require.Equal(t, 100, qty)
		require.InDelta(t, 40*100.0+60*110.0, value, 1e-9)
		return nil
	})
	require.NoError(t, err)
}

// TestUpdateOrderStatus verifies the reject reason is recorded and
// preserved on later status-only updates.
func TestUpdateOrderStatus(t *testing.T) {
	bdb := newTestDb(t)

	o := testOrder("ord-1")
	require.NoError(t, bdb.InsertOrder(o))

	err := bdb.WithTx(func(tx *Tx) error {
		return tx.UpdateOrderStatus(o.ID, models.StatusRejected, "symbol not in universe")
	})
	require.NoError(t, err)

	got, err := bdb.GetOrder(o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, got.Status)
	require.Equal(t, "symbol not in universe", got.RejectReason)
}

// TestReloadSymbols verifies the universe swap is total: the old set is
// gone, the new one is queryable.
func TestReloadSymbols(t *testing.T) {
	bdb := newTestDb(t)

	count, err := bdb.ReloadSymbols([]SymbolPrice{
		{Symbol: "AAPL", LastPrice: 187.50},
		{Symbol: "MSFT", LastPrice: 420.00},
	})
	require.NoError(t, err)
	require.Equal(t, 2, count)

	s, err := bdb.GetSymbol("AAPL")
	require.NoError(t, err)
	require.Equal(t, 187.50, s.LastPrice)

	count, err = bdb.ReloadSymbols([]SymbolPrice{
		{Symbol: "TSLA", LastPrice: 250.00},
	})
	require.NoError(t, err)
	require.Equal(t, 1, count)

	_, err = bdb.GetSymbol("AAPL")
	require.ErrorIs(t, err, ErrNotFound)

	symbols, err := bdb.ListSymbols()
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	require.Equal(t, "TSLA", symbols[0].Symbol)

	n, err := bdb.CountSymbols()
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

// TestListOrders verifies insertion ordering.
func TestListOrders(t *testing.T) {
	bdb := newTestDb(t)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, bdb.InsertOrder(testOrder(id)))
	}

	orders, err := bdb.ListOrders()
	require.NoError(t, err)
	require.Len(t, orders, 3)
	require.Equal(t, "a", orders[0].ClOrdID)
	require.Equal(t, "c", orders[2].ClOrdID)
}
