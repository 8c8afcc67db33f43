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

// Package lifecycle implements the order state machine: which actions
// (submit, fill, cancel, reject) are admissible in which states, the
// quantity invariants, limit-price admissibility, and time-in-force
// semantics. Every transition runs inside one database transaction; the
// externally observable ones come back as Events for the execution
// report router.
package lifecycle

import (
	"errors"

	"github.com/google/uuid"

	"sim-broker-go/constants"
	"sim-broker-go/database"
	"sim-broker-go/models"
)

// Event is an externally observable lifecycle transition, carrying the
// post-commit order snapshot plus the report fields that depend on the
// transition rather than the final state (LeavesQty on a cancel is the
// pre-cancel remainder, for instance).
type Event struct {
	Order     models.Order
	ExecType  string // tag 150 wire code
	OrdStatus string // tag 39 wire code
	CumQty    int
	LeavesQty int
	AvgPx     float64
	LastQty   *int     // set on fills
	LastPx    *float64 // set on fills
	Text      string   // reject reason text
}

// Observer is notified after any committed order mutation. The engine
// knows nothing about delivery; nil disables notifications.
type Observer func(orderID int64)

// Engine applies lifecycle transitions against the order store.
type Engine struct {
	db       *database.BrokerDb
	observer Observer
}

// NewEngine creates a lifecycle engine. observer may be nil.
func NewEngine(db *database.BrokerDb, observer Observer) *Engine {
	return &Engine{db: db, observer: observer}
}

func (e *Engine) notify(orderID int64) {
	if e.observer != nil {
		e.observer(orderID)
	}
}

// newExecID mints a short opaque execution token.
func newExecID() string {
	return uuid.NewString()[:8]
}

// Submit accepts a validated order: persists it with status new and zero
// fills, and returns the acknowledgement event. A ClOrdID collision
// returns ErrDuplicateClOrdID and persists nothing.
func (e *Engine) Submit(o *models.Order) (*Event, error) {
	o.Status = models.StatusNew
	o.FilledQuantity = 0
	o.RemainingQuantity = o.Quantity

	if err := e.db.InsertOrder(o); err != nil {
		if errors.Is(err, database.ErrDuplicateClOrdID) {
			return nil, ErrDuplicateClOrdID
		}
		return nil, err
	}

	e.notify(o.ID)
	return &Event{
		Order:     *o,
		ExecType:  constants.ExecTypeNew,
		OrdStatus: constants.OrdStatusNew,
		CumQty:    0,
		LeavesQty: o.Quantity,
		AvgPx:     0,
	}, nil
}

// Fill executes an order against the symbol's current reference price.
// qty of nil means "fill the remainder"; an explicit qty is clamped to
// the remaining quantity. One or two events result: the fill itself,
// plus a cancel when an IOC order leaves a residual.
func (e *Engine) Fill(orderID int64, qty *int) ([]Event, error) {
	if qty != nil && *qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	var events []Event
	err := e.db.WithTx(func(t *database.Tx) error {
		o, err := t.GetOrder(orderID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if o.Status != models.StatusNew && o.Status != models.StatusPartiallyFilled {
			return ErrIllegalTransition
		}

		sym, err := t.GetSymbol(o.Symbol)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrSymbolUnknown
			}
			return err
		}
		execPrice := sym.LastPrice

		// Limit admissibility: a buy crosses when its limit is at or
		// above the reference, a sell when at or below.
		if o.OrderType == models.OrderTypeLimit {
			if o.Side == models.SideBuy && *o.LimitPrice < execPrice {
				return ErrLimitNotCrossed
			}
			if o.Side == models.SideSell && *o.LimitPrice > execPrice {
				return ErrLimitNotCrossed
			}
		}

		q := o.RemainingQuantity
		if qty != nil && *qty < q {
			q = *qty
		}

		if o.TimeInForce == models.TimeInForceFOK && q != o.RemainingQuantity {
			return ErrFOKNotFullyFillable
		}

		exec := models.Execution{
			OrderID:      o.ID,
			ExecID:       newExecID(),
			ExecQuantity: q,
			ExecPrice:    execPrice,
		}
		if err := t.InsertExecution(&exec); err != nil {
			return err
		}

		o.FilledQuantity += q
		o.RemainingQuantity -= q
		if o.RemainingQuantity == 0 {
			o.Status = models.StatusFilled
		} else {
			o.Status = models.StatusPartiallyFilled
		}
		if err := t.UpdateOrderFill(o.ID, o.FilledQuantity, o.RemainingQuantity, o.Status); err != nil {
			return err
		}

		totalValue, totalQty, err := t.SumExecutions(o.ID)
		if err != nil {
			return err
		}
		avgPx := 0.0
		if totalQty > 0 {
			avgPx = totalValue / float64(totalQty)
		}

		execType := constants.ExecTypeFilled
		if o.Status == models.StatusPartiallyFilled {
			execType = constants.ExecTypePartialFill
		}
		lastQty, lastPx := q, execPrice
		events = append(events, Event{
			Order:     *o,
			ExecType:  execType,
			OrdStatus: o.Status.WireCode(),
			CumQty:    o.FilledQuantity,
			LeavesQty: o.RemainingQuantity,
			AvgPx:     avgPx,
			LastQty:   &lastQty,
			LastPx:    &lastPx,
		})

		// IOC completion: a residual after the fill is canceled in the
		// same commit, reported as a second event.
		if o.TimeInForce == models.TimeInForceIOC && o.RemainingQuantity > 0 {
			o.Status = models.StatusCanceled
			if err := t.UpdateOrderStatus(o.ID, models.StatusCanceled, ""); err != nil {
				return err
			}
			events = append(events, Event{
				Order:     *o,
				ExecType:  constants.ExecTypeCanceled,
				OrdStatus: constants.OrdStatusCanceled,
				CumQty:    o.FilledQuantity,
				LeavesQty: o.RemainingQuantity,
				AvgPx:     avgPx,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notify(orderID)
	return events, nil
}

// Cancel transitions an order to canceled. The event reports LeavesQty
// as the remaining quantity at the time of cancel.
func (e *Engine) Cancel(orderID int64) (*Event, error) {
	var event *Event
	err := e.db.WithTx(func(t *database.Tx) error {
		o, err := t.GetOrder(orderID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if o.Status != models.StatusNew && o.Status != models.StatusPartiallyFilled {
			return ErrIllegalTransition
		}

		preCancelRemaining := o.RemainingQuantity
		o.Status = models.StatusCanceled
		if err := t.UpdateOrderStatus(o.ID, models.StatusCanceled, ""); err != nil {
			return err
		}

		totalValue, totalQty, err := t.SumExecutions(o.ID)
		if err != nil {
			return err
		}
		avgPx := 0.0
		if totalQty > 0 {
			avgPx = totalValue / float64(totalQty)
		}

		event = &Event{
			Order:     *o,
			ExecType:  constants.ExecTypeCanceled,
			OrdStatus: constants.OrdStatusCanceled,
			CumQty:    o.FilledQuantity,
			LeavesQty: preCancelRemaining,
			AvgPx:     avgPx,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notify(orderID)
	return event, nil
}

// Reject transitions a new order to rejected, recording the reason.
func (e *Engine) Reject(orderID int64, reason string) (*Event, error) {
	var event *Event
	err := e.db.WithTx(func(t *database.Tx) error {
		o, err := t.GetOrder(orderID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return ErrOrderNotFound
			}
			return err
		}

		if o.Status != models.StatusNew {
			return ErrOnlyNewRejectable
		}

		o.Status = models.StatusRejected
		o.RejectReason = reason
		if err := t.UpdateOrderStatus(o.ID, models.StatusRejected, reason); err != nil {
			return err
		}

		event = &Event{
			Order:     *o,
			ExecType:  constants.ExecTypeRejected,
			OrdStatus: constants.OrdStatusRejected,
			CumQty:    0,
			LeavesQty: o.RemainingQuantity,
			AvgPx:     0,
			Text:      reason,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.notify(orderID)
	return event, nil
}
