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

package lifecycle

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sim-broker-go/constants"
	"sim-broker-go/database"
	"sim-broker-go/models"
)

// Tests for the order state machine: admission rules, quantity
// invariants, limit crossing, and time-in-force semantics.

// newTestEngine returns an engine over a fresh database seeded with a
// two-symbol universe (AAPL at 100, MSFT at 420).
func newTestEngine(t *testing.T) (*Engine, *database.BrokerDb) {
	t.Helper()
	bdb, err := database.NewBrokerDb(filepath.Join(t.TempDir(), "broker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	_, err = bdb.ReloadSymbols([]database.SymbolPrice{
		{Symbol: "AAPL", LastPrice: 100.0},
		{Symbol: "MSFT", LastPrice: 420.0},
	})
	require.NoError(t, err)

	return NewEngine(bdb, nil), bdb
}

func submitOrder(t *testing.T, e *Engine, o *models.Order) *models.Order {
	t.Helper()
	ev, err := e.Submit(o)
	require.NoError(t, err)
	require.Equal(t, constants.ExecTypeNew, ev.ExecType)
	require.Equal(t, models.StatusNew, ev.Order.Status)
	return o
}

func marketBuy(clOrdID string, qty int) *models.Order {
	return &models.Order{
		ClOrdID:     clOrdID,
		SenderID:    "CLIENT1",
		Symbol:      "AAPL",
		Side:        models.SideBuy,
		OrderType:   models.OrderTypeMarket,
		Quantity:    qty,
		TimeInForce: models.TimeInForceDay,
	}
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// TestFill_MarketFullFill verifies a market order fills completely at
// the reference price in one event.
func TestFill_MarketFullFill(t *testing.T) {
	e, _ := newTestEngine(t)
	o := submitOrder(t, e, marketBuy("ord-1", 100))

	events, err := e.Fill(o.ID, nil)
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	require.Equal(t, constants.ExecTypeFilled, ev.ExecType)
	require.Equal(t, models.StatusFilled, ev.Order.Status)
	require.Equal(t, 100, ev.CumQty)
	require.Equal(t, 0, ev.LeavesQty)
	require.InDelta(t, 100.0, ev.AvgPx, 1e-9)
	require.NotNil(t, ev.LastQty)
	require.Equal(t, 100, *ev.LastQty)
	require.NotNil(t, ev.LastPx)
	require.InDelta(t, 100.0, *ev.LastPx, 1e-9)
}

// TestFill_PartialThenComplete verifies two partial fills accumulate
// quantities and the average price is execution-weighted.
func TestFill_PartialThenComplete(t *testing.T) {
	e, bdb := newTestEngine(t)
	o := submitOrder(t, e, marketBuy("ord-1", 100))

	events, err := e.Fill(o.ID, intPtr(40))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, constants.ExecTypePartialFill, events[0].ExecType)
	require.Equal(t, 40, events[0].CumQty)
	require.Equal(t, 60, events[0].LeavesQty)

	// Reference price moves between the fills.
	_, err = bdb.ReloadSymbols([]database.SymbolPrice{{Symbol: "AAPL", LastPrice: 110.0}})
	require.NoError(t, err)

	events, err = e.Fill(o.ID, intPtr(60))
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	require.Equal(t, constants.ExecTypeFilled, ev.ExecType)
	require.Equal(t, 100, ev.CumQty)
	require.Equal(t, 0, ev.LeavesQty)
	require.InDelta(t, (40*100.0+60*110.0)/100.0, ev.AvgPx, 1e-9)

	got, err := bdb.GetOrder(o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusFilled, got.Status)
	require.Equal(t, got.Quantity, got.FilledQuantity+got.RemainingQuantity)
}

// TestFill_QuantityClampedToRemaining verifies an oversized fill request
// executes only the remainder.
func TestFill_QuantityClampedToRemaining(t *testing.T) {
	e, _ := newTestEngine(t)
	o := submitOrder(t, e, marketBuy("ord-1", 50))

	events, err := e.Fill(o.ID, intPtr(500))
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, 50, *events[0].LastQty)
	require.Equal(t, models.StatusFilled, events[0].Order.Status)
}

// TestFill_LimitCrossing verifies the limit admissibility rule on both
// sides of the book.
func TestFill_LimitCrossing(t *testing.T) {
	tests := []struct {
		name      string
		side      models.Side
		limit     float64
		wantCross bool
	}{
		{"buy limit below reference", models.SideBuy, 95.0, false},
		{"buy limit at reference", models.SideBuy, 100.0, true},
		{"buy limit above reference", models.SideBuy, 105.0, true},
		{"sell limit above reference", models.SideSell, 105.0, false},
		{"sell limit at reference", models.SideSell, 100.0, true},
		{"sell limit below reference", models.SideSell, 95.0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, bdb := newTestEngine(t)
			o := &models.Order{
				ClOrdID:     "ord-1",
				SenderID:    "CLIENT1",
				Symbol:      "AAPL",
				Side:        tt.side,
				OrderType:   models.OrderTypeLimit,
				Quantity:    10,
				LimitPrice:  floatPtr(tt.limit),
				TimeInForce: models.TimeInForceDay,
			}
			submitOrder(t, e, o)

			events, err := e.Fill(o.ID, nil)
			if !tt.wantCross {
				require.ErrorIs(t, err, ErrLimitNotCrossed)
				got, gerr := bdb.GetOrder(o.ID)
				require.NoError(t, gerr)
				require.Equal(t, models.StatusNew, got.Status)
				require.Equal(t, 0, got.FilledQuantity)
				return
			}
			require.NoError(t, err)
			// Execution happens at the reference price, not the limit.
			require.InDelta(t, 100.0, *events[0].LastPx, 1e-9)
		})
	}
}

// TestFill_IOCResidualCanceled verifies a partial fill on an IOC order
// cancels the residual in the same commit and reports both transitions.
func TestFill_IOCResidualCanceled(t *testing.T) {
	e, bdb := newTestEngine(t)
	o := marketBuy("ord-1", 100)
	o.TimeInForce = models.TimeInForceIOC
	submitOrder(t, e, o)

	events, err := e.Fill(o.ID, intPtr(30))
	require.NoError(t, err)
	require.Len(t, events, 2)

	fill := events[0]
	require.Equal(t, constants.ExecTypePartialFill, fill.ExecType)
	require.Equal(t, 30, fill.CumQty)
	require.Equal(t, 70, fill.LeavesQty)

	cancel := events[1]
	require.Equal(t, constants.ExecTypeCanceled, cancel.ExecType)
	require.Equal(t, 30, cancel.CumQty)
	require.Equal(t, 70, cancel.LeavesQty)
	require.InDelta(t, fill.AvgPx, cancel.AvgPx, 1e-9)

	got, err := bdb.GetOrder(o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCanceled, got.Status)
	require.Equal(t, 30, got.FilledQuantity)
	require.Equal(t, 70, got.RemainingQuantity)
}

// TestFill_FOKRefusesPartial verifies fill-or-kill refuses any fill that
// would not complete the order, while a full fill passes.
func TestFill_FOKRefusesPartial(t *testing.T) {
	e, bdb := newTestEngine(t)
	o := marketBuy("ord-1", 100)
	o.TimeInForce = models.TimeInForceFOK
	submitOrder(t, e, o)

	_, err := e.Fill(o.ID, intPtr(50))
	require.ErrorIs(t, err, ErrFOKNotFullyFillable)

	got, err := bdb.GetOrder(o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusNew, got.Status)
	require.Equal(t, 0, got.FilledQuantity)

	events, err := e.Fill(o.ID, nil)
	require.NoError(t, err)
	require.Equal(t, models.StatusFilled, events[0].Order.Status)
}

// TestSubmit_DuplicateClOrdID verifies a colliding submit persists
// nothing and the first order is untouched.
func TestSubmit_DuplicateClOrdID(t *testing.T) {
	e, bdb := newTestEngine(t)
	submitOrder(t, e, marketBuy("dup-1", 100))

	_, err := e.Submit(marketBuy("dup-1", 999))
	require.ErrorIs(t, err, ErrDuplicateClOrdID)

	orders, err := bdb.ListOrders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 100, orders[0].Quantity)
}

// TestFill_AdmissionErrors verifies the remaining fill refusals: unknown
// order, unknown symbol, terminal state, bad quantity.
func TestFill_AdmissionErrors(t *testing.T) {
	e, _ := newTestEngine(t)

	_, err := e.Fill(9999, nil)
	require.ErrorIs(t, err, ErrOrderNotFound)

	unknown := marketBuy("ord-unknown", 10)
	unknown.Symbol = "ZZZZ"
	submitOrder(t, e, unknown)
	_, err = e.Fill(unknown.ID, nil)
	require.ErrorIs(t, err, ErrSymbolUnknown)

	o := submitOrder(t, e, marketBuy("ord-1", 10))
	_, err = e.Fill(o.ID, intPtr(0))
	require.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = e.Fill(o.ID, intPtr(-5))
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = e.Fill(o.ID, nil)
	require.NoError(t, err)
	_, err = e.Fill(o.ID, nil)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

// TestCancel verifies cancel semantics: LeavesQty reports the pre-cancel
// remainder and AvgPx reflects prior fills.
func TestCancel(t *testing.T) {
	e, bdb := newTestEngine(t)
	o := submitOrder(t, e, marketBuy("ord-1", 100))

	_, err := e.Fill(o.ID, intPtr(40))
	require.NoError(t, err)

	ev, err := e.Cancel(o.ID)
	require.NoError(t, err)
	require.Equal(t, constants.ExecTypeCanceled, ev.ExecType)
	require.Equal(t, 40, ev.CumQty)
	require.Equal(t, 60, ev.LeavesQty)
	require.InDelta(t, 100.0, ev.AvgPx, 1e-9)

	got, err := bdb.GetOrder(o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusCanceled, got.Status)

	_, err = e.Cancel(o.ID)
	require.ErrorIs(t, err, ErrIllegalTransition)
}

// TestCancel_NewOrderAvgPxZero verifies a never-filled cancel reports a
// zero average price.
func TestCancel_NewOrderAvgPxZero(t *testing.T) {
	e, _ := newTestEngine(t)
	o := submitOrder(t, e, marketBuy("ord-1", 100))

	ev, err := e.Cancel(o.ID)
	require.NoError(t, err)
	require.Equal(t, 0, ev.CumQty)
	require.Equal(t, 100, ev.LeavesQty)
	require.Zero(t, ev.AvgPx)
}

// TestReject verifies rejects are admitted only from the new state and
// record the reason.
func TestReject(t *testing.T) {
	e, bdb := newTestEngine(t)
	o := submitOrder(t, e, marketBuy("ord-1", 100))

	ev, err := e.Reject(o.ID, "risk limit breached")
	require.NoError(t, err)
	require.Equal(t, constants.ExecTypeRejected, ev.ExecType)
	require.Equal(t, "risk limit breached", ev.Text)
	require.Zero(t, ev.CumQty)
	require.Zero(t, ev.AvgPx)

	got, err := bdb.GetOrder(o.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, got.Status)
	require.Equal(t, "risk limit breached", got.RejectReason)

	partial := submitOrder(t, e, marketBuy("ord-2", 100))
	_, err = e.Fill(partial.ID, intPtr(10))
	require.NoError(t, err)
	_, err = e.Reject(partial.ID, "too late")
	require.ErrorIs(t, err, ErrOnlyNewRejectable)
}

// TestObserver verifies the observer fires once per committed mutation.
func TestObserver(t *testing.T) {
	bdb, err := database.NewBrokerDb(filepath.Join(t.TempDir(), "broker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })
	_, err = bdb.ReloadSymbols([]database.SymbolPrice{{Symbol: "AAPL", LastPrice: 100.0}})
	require.NoError(t, err)

	var notified []int64
	e := NewEngine(bdb, func(orderID int64) { notified = append(notified, orderID) })

	o := submitOrder(t, e, marketBuy("ord-1", 100))
	_, err = e.Fill(o.ID, intPtr(40))
	require.NoError(t, err)
	_, err = e.Cancel(o.ID)
	require.NoError(t, err)

	require.Equal(t, []int64{o.ID, o.ID, o.ID}, notified)
}
