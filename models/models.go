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

// Package models holds the broker's persistent domain types: orders,
// executions, and symbols, plus the enumerations that appear both in the
// database and (as single-character codes) on the FIX wire.
package models

import (
	"time"

	"sim-broker-go/constants"
)

// Side is the order side.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType distinguishes market from limit orders. Stop and stop-limit
// are accepted on the wire but rejected at admission; they never reach
// the database.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// TimeInForce is the order's lifetime policy.
type TimeInForce string

const (
	TimeInForceDay TimeInForce = "DAY"
	TimeInForceGTC TimeInForce = "GTC"
	TimeInForceIOC TimeInForce = "IOC"
	TimeInForceFOK TimeInForce = "FOK"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusNew             OrderStatus = "NEW"
	StatusPartiallyFilled OrderStatus = "PARTIALLY_FILLED"
	StatusFilled          OrderStatus = "FILLED"
	StatusCanceled        OrderStatus = "CANCELED"
	StatusRejected        OrderStatus = "REJECTED"
)

// Terminal reports whether no further transitions are admissible.
func (s OrderStatus) Terminal() bool {
	switch s {
	case StatusFilled, StatusCanceled, StatusRejected:
		return true
	}
	return false
}

// Order is a single client instruction as persisted by the broker.
type Order struct {
	// Time fields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Identity
	ID       int64  `json:"id"`        // internal id, assigned on acceptance
	ClOrdID  string `json:"cl_ord_id"` // client-supplied, globally unique
	SenderID string `json:"sender_id"` // submitting session's SenderCompID

	// Instruction
	Symbol      string      `json:"symbol"`
	Side        Side        `json:"side"`
	OrderType   OrderType   `json:"order_type"`
	Quantity    int         `json:"quantity"`
	LimitPrice  *float64    `json:"limit_price,omitempty"` // present iff limit
	TimeInForce TimeInForce `json:"time_in_force"`

	// Lifecycle
	Status            OrderStatus `json:"status"`
	FilledQuantity    int         `json:"filled_quantity"`
	RemainingQuantity int         `json:"remaining_quantity"`
	RejectReason      string      `json:"reject_reason,omitempty"`
}

// Execution is an immutable fill record owned by exactly one order.
type Execution struct {
	ExecutedAt   time.Time `json:"executed_at"`
	ID           int64     `json:"id"`
	OrderID      int64     `json:"order_id"`
	ExecID       string    `json:"exec_id"` // short opaque token, globally unique
	ExecQuantity int       `json:"exec_quantity"`
	ExecPrice    float64   `json:"exec_price"`
}

// Symbol is one row of the tradable universe.
type Symbol struct {
	UpdatedAt time.Time `json:"updated_at"`
	ID        int64     `json:"id"`
	Symbol    string    `json:"symbol"`
	LastPrice float64   `json:"last_price"`
}

// --- Wire code conversion ---

// SideFromWire maps tag 54 codes to Side.
func SideFromWire(code string) (Side, bool) {
	switch code {
	case constants.SideBuy:
		return SideBuy, true
	case constants.SideSell:
		return SideSell, true
	}
	return "", false
}

// WireCode returns the tag 54 code for s.
func (s Side) WireCode() string {
	if s == SideSell {
		return constants.SideSell
	}
	return constants.SideBuy
}

// OrderTypeFromWire maps tag 40 codes to OrderType. Stop ("3") and
// stop-limit ("4") return false: they are recognized but unsupported.
func OrderTypeFromWire(code string) (OrderType, bool) {
	switch code {
	case constants.OrdTypeMarket:
		return OrderTypeMarket, true
	case constants.OrdTypeLimit:
		return OrderTypeLimit, true
	}
	return "", false
}

// WireCode returns the tag 40 code for t.
func (t OrderType) WireCode() string {
	if t == OrderTypeLimit {
		return constants.OrdTypeLimit
	}
	return constants.OrdTypeMarket
}

// TimeInForceFromWire maps tag 59 codes to TimeInForce. An empty code
// defaults to Day, per the schema.
func TimeInForceFromWire(code string) (TimeInForce, bool) {
	switch code {
	case "", constants.TimeInForceDay:
		return TimeInForceDay, true
	case constants.TimeInForceGTC:
		return TimeInForceGTC, true
	case constants.TimeInForceIOC:
		return TimeInForceIOC, true
	case constants.TimeInForceFOK:
		return TimeInForceFOK, true
	}
	return "", false
}

// WireCode returns the tag 59 code for tif.
func (tif TimeInForce) WireCode() string {
	switch tif {
	case TimeInForceGTC:
		return constants.TimeInForceGTC
	case TimeInForceIOC:
		return constants.TimeInForceIOC
	case TimeInForceFOK:
		return constants.TimeInForceFOK
	}
	return constants.TimeInForceDay
}

// WireCode returns the tag 39 code for s.
func (s OrderStatus) WireCode() string {
	switch s {
	case StatusPartiallyFilled:
		return constants.OrdStatusPartiallyFilled
	case StatusFilled:
		return constants.OrdStatusFilled
	case StatusCanceled:
		return constants.OrdStatusCanceled
	case StatusRejected:
		return constants.OrdStatusRejected
	}
	return constants.OrdStatusNew
}
