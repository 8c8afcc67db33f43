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

// Package fixclient is the interactive FIX order entry client: a dialer,
// a reader goroutine that applies broker reports to a local order store,
// and a readline REPL for submitting and canceling orders.
//
// OrderStore maintains the state of all orders submitted through the FIX
// session, tracking their lifecycle from submission through fill or
// cancellation.
package fixclient

import (
	"sync"
	"time"

	"sim-broker-go/fixmsg"
)

// Order represents an order's current state as tracked by the client.
type Order struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ClOrdID     string `json:"clOrdId"`     // Client order ID
	OrderID     string `json:"orderId"`     // Broker-assigned order ID
	Symbol      string `json:"symbol"`      // Ticker (e.g., AAPL)
	Side        string `json:"side"`        // "1" buy, "2" sell
	OrdType     string `json:"ordType"`     // "1" market, "2" limit
	TimeInForce string `json:"timeInForce"` // "0", "1", "3", "4"
	OrdStatus   string `json:"ordStatus"`   // Current status
	ExecType    string `json:"execType"`    // Last execution type

	OrderQty  int     `json:"orderQty"`  // Original order quantity
	Price     string  `json:"price"`     // Limit price
	AvgPx     float64 `json:"avgPx"`     // Average fill price
	CumQty    int     `json:"cumQty"`    // Cumulative filled quantity
	LeavesQty int     `json:"leavesQty"` // Remaining quantity

	LastPx  *float64 `json:"lastPx,omitempty"`  // Last fill price
	LastQty *int     `json:"lastQty,omitempty"` // Last fill quantity
	ExecID  string   `json:"execId"`            // Last execution ID

	Text string `json:"text,omitempty"` // Reject reason text
}

// OrderStore provides thread-safe storage for orders.
type OrderStore struct {
	mu     sync.RWMutex
	orders map[string]*Order // ClOrdID -> Order
}

// NewOrderStore creates a new OrderStore.
func NewOrderStore() *OrderStore {
	return &OrderStore{orders: make(map[string]*Order)}
}

// AddOrder adds or updates an order in the store.
func (os *OrderStore) AddOrder(order *Order) {
	os.mu.Lock()
	defer os.mu.Unlock()
	order.UpdatedAt = time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = order.UpdatedAt
	}
	os.orders[order.ClOrdID] = order
}

// GetOrder retrieves an order by ClOrdID.
func (os *OrderStore) GetOrder(clOrdID string) *Order {
	os.mu.RLock()
	defer os.mu.RUnlock()
	if order, exists := os.orders[clOrdID]; exists {
		copy := *order
		return &copy
	}
	return nil
}

// UpdateOrderFromReport updates an order based on an execution report.
// A report for an unknown ClOrdID creates the order entry, so rejections
// of never-accepted orders still show up in the order list.
func (os *OrderStore) UpdateOrderFromReport(er *fixmsg.ExecutionReport) {
	os.mu.Lock()
	defer os.mu.Unlock()

	order, exists := os.orders[er.ClOrdID]
	if !exists {
		order = &Order{
			ClOrdID:   er.ClOrdID,
			CreatedAt: time.Now(),
		}
		os.orders[er.ClOrdID] = order
	}

	order.UpdatedAt = time.Now()
	order.OrdStatus = er.OrdStatus
	order.ExecType = er.ExecType
	order.CumQty = er.CumQty
	order.LeavesQty = er.LeavesQty
	order.AvgPx = er.AvgPx

	if er.OrderID != "" {
		order.OrderID = er.OrderID
	}
	if er.Symbol != "" {
		order.Symbol = er.Symbol
	}
	if er.Side != "" {
		order.Side = er.Side
	}
	if er.OrdType != "" {
		order.OrdType = er.OrdType
	}
	if er.OrderQty > 0 {
		order.OrderQty = er.OrderQty
	}
	if er.ExecID != "" {
		order.ExecID = er.ExecID
	}
	if er.LastQty != nil {
		order.LastQty = er.LastQty
	}
	if er.LastPx != nil {
		order.LastPx = er.LastPx
	}
	if er.Text != "" {
		order.Text = er.Text
	}
}

// GetAllOrders returns a copy of all orders.
func (os *OrderStore) GetAllOrders() []*Order {
	os.mu.RLock()
	defer os.mu.RUnlock()

	result := make([]*Order, 0, len(os.orders))
	for _, order := range os.orders {
		copy := *order
		result = append(result, &copy)
	}
	return result
}

// GetOpenOrders returns orders that are still open (not filled, canceled,
// or rejected).
func (os *OrderStore) GetOpenOrders() []*Order {
	os.mu.RLock()
	defer os.mu.RUnlock()

	result := make([]*Order, 0)
	for _, order := range os.orders {
		if isOpenStatus(order.OrdStatus) {
			copy := *order
			result = append(result, &copy)
		}
	}
	return result
}

// RemoveOrder removes an order from the store.
func (os *OrderStore) RemoveOrder(clOrdID string) {
	os.mu.Lock()
	defer os.mu.Unlock()
	delete(os.orders, clOrdID)
}

// isOpenStatus returns true if the order status indicates an open order.
func isOpenStatus(status string) bool {
	switch status {
	case "0", "1": // New, PartiallyFilled
		return true
	default:
		return false
	}
}
