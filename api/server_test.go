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

package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"sim-broker-go/database"
	"sim-broker-go/lifecycle"
	"sim-broker-go/models"
)

// Tests for the admin HTTP surface: the order action endpoints, their
// status-code mapping, and event dispatch to the report router.

// recordingDispatcher captures routed lifecycle events.
type recordingDispatcher struct {
	events []lifecycle.Event
}

func (d *recordingDispatcher) Dispatch(events ...lifecycle.Event) {
	d.events = append(d.events, events...)
}

func newTestAPI(t *testing.T) (*httptest.Server, *lifecycle.Engine, *recordingDispatcher) {
	t.Helper()

	bdb, err := database.NewBrokerDb(filepath.Join(t.TempDir(), "broker.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bdb.Close() })

	_, err = bdb.ReloadSymbols([]database.SymbolPrice{{Symbol: "AAPL", LastPrice: 100.0}})
	require.NoError(t, err)

	engine := lifecycle.NewEngine(bdb, nil)
	disp := &recordingDispatcher{}
	srv := NewServer("127.0.0.1:0", bdb, engine, disp, "symbols.csv")

	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, engine, disp
}

func submitTestOrder(t *testing.T, engine *lifecycle.Engine, clOrdID string, qty int) *models.Order {
	t.Helper()
	o := &models.Order{
		ClOrdID:     clOrdID,
		SenderID:    "CLIENT1",
		Symbol:      "AAPL",
		Side:        models.SideBuy,
		OrderType:   models.OrderTypeMarket,
		Quantity:    qty,
		TimeInForce: models.TimeInForceDay,
	}
	_, err := engine.Submit(o)
	require.NoError(t, err)
	return o
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := http.Post(url, "application/json", &buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

// TestListSymbols verifies the universe endpoint.
func TestListSymbols(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	resp, err := http.Get(ts.URL + "/api/symbols")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var symbols []models.Symbol
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&symbols))
	require.Len(t, symbols, 1)
	require.Equal(t, "AAPL", symbols[0].Symbol)
}

// TestGetOrderDetail verifies the order detail payload includes
// executions.
func TestGetOrderDetail(t *testing.T) {
	ts, engine, _ := newTestAPI(t)
	o := submitTestOrder(t, engine, "ord-1", 100)

	qty := 40
	_, err := engine.Fill(o.ID, &qty)
	require.NoError(t, err)

	resp, err := http.Get(fmt.Sprintf("%s/api/orders/%d", ts.URL, o.ID))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var detail struct {
		models.Order
		Executions []models.Execution `json:"executions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&detail))
	require.Equal(t, "ord-1", detail.ClOrdID)
	require.Equal(t, 40, detail.FilledQuantity)
	require.Len(t, detail.Executions, 1)
	require.Equal(t, 40, detail.Executions[0].ExecQuantity)

	resp, err = http.Get(ts.URL + "/api/orders/9999")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// TestExecuteOrder verifies the fill endpoint dispatches the resulting
// events.
func TestExecuteOrder(t *testing.T) {
	ts, engine, disp := newTestAPI(t)
	o := submitTestOrder(t, engine, "ord-1", 100)

	resp := postJSON(t, fmt.Sprintf("%s/api/orders/%d/execute", ts.URL, o.ID), map[string]int{"quantity": 40})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, models.StatusPartiallyFilled, got.Status)
	require.Equal(t, 40, got.FilledQuantity)

	require.Len(t, disp.events, 1)
	require.Equal(t, o.ID, disp.events[0].Order.ID)

	// Empty body fills the remainder.
	resp = postJSON(t, fmt.Sprintf("%s/api/orders/%d/execute", ts.URL, o.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, models.StatusFilled, got.Status)
}

// TestExecuteOrder_ErrorMapping verifies lifecycle refusals map to the
// right status codes.
func TestExecuteOrder_ErrorMapping(t *testing.T) {
	ts, engine, _ := newTestAPI(t)

	resp := postJSON(t, ts.URL+"/api/orders/9999/execute", nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	o := submitTestOrder(t, engine, "ord-1", 100)
	resp = postJSON(t, fmt.Sprintf("%s/api/orders/%d/execute", ts.URL, o.ID), map[string]int{"quantity": -1})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	_, err := engine.Cancel(o.ID)
	require.NoError(t, err)
	resp = postJSON(t, fmt.Sprintf("%s/api/orders/%d/execute", ts.URL, o.ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

// TestCancelAndRejectEndpoints verifies the remaining order actions.
func TestCancelAndRejectEndpoints(t *testing.T) {
	ts, engine, disp := newTestAPI(t)

	o := submitTestOrder(t, engine, "ord-1", 100)
	resp := postJSON(t, fmt.Sprintf("%s/api/orders/%d/cancel", ts.URL, o.ID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, models.StatusCanceled, got.Status)

	r := submitTestOrder(t, engine, "ord-2", 50)
	resp = postJSON(t, fmt.Sprintf("%s/api/orders/%d/reject", ts.URL, r.ID), map[string]string{"reason": "risk check failed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Equal(t, models.StatusRejected, got.Status)
	require.Equal(t, "risk check failed", got.RejectReason)

	// Reject of a terminal order conflicts.
	resp = postJSON(t, fmt.Sprintf("%s/api/orders/%d/reject", ts.URL, o.ID), nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	require.Len(t, disp.events, 2)
}

// TestMetricsEndpoint verifies the Prometheus handler is mounted.
func TestMetricsEndpoint(t *testing.T) {
	ts, _, _ := newTestAPI(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
