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

// Package api is the admin HTTP surface: order inspection, manual fills,
// cancels and rejects, symbol universe management, and the Prometheus
// /metrics endpoint. It drives the same lifecycle engine as the FIX
// session layer; reports triggered here reach clients through the
// execution report router.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sim-broker-go/database"
	"sim-broker-go/lifecycle"
	"sim-broker-go/models"
	"sim-broker-go/universe"
)

// Dispatcher delivers lifecycle events to client FIX sessions.
type Dispatcher interface {
	Dispatch(events ...lifecycle.Event)
}

// Server is the admin HTTP server.
type Server struct {
	db         *database.BrokerDb
	engine     *lifecycle.Engine
	dispatcher Dispatcher
	symbolFile string

	httpServer *http.Server
	ln         net.Listener
}

// NewServer wires the admin API over the store and engine. symbolFile is
// re-read on POST /api/symbols/reload.
func NewServer(addr string, db *database.BrokerDb, engine *lifecycle.Engine, dispatcher Dispatcher, symbolFile string) *Server {
	s := &Server{
		db:         db,
		engine:     engine,
		dispatcher: dispatcher,
		symbolFile: symbolFile,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/symbols", s.handleSymbols)
	mux.HandleFunc("/api/symbols/reload", s.handleSymbolsReload)
	mux.HandleFunc("/api/orders", s.handleOrders)
	mux.HandleFunc("/api/orders/", s.handleOrder)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{Addr: addr, Handler: mux}
	return s
}

// Start binds the listener and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	s.ln = ln
	log.Printf("admin API listening on %s", ln.Addr())
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("admin API serve error: %v", err)
		}
	}()
	return nil
}

// Addr returns the bound listener address.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Stop closes the server without waiting for idle connections.
func (s *Server) Stop() {
	_ = s.httpServer.Close()
}

// --- Handlers ---

func (s *Server) handleSymbols(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	symbols, err := s.db.ListSymbols()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if symbols == nil {
		symbols = []models.Symbol{}
	}
	writeJSON(w, http.StatusOK, symbols)
}

func (s *Server) handleSymbolsReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	pairs, err := universe.LoadFile(s.symbolFile)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := s.db.ReloadSymbols(pairs)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	log.Printf("symbol universe reloaded: %d symbols from %s", count, s.symbolFile)
	writeJSON(w, http.StatusOK, map[string]int{"loaded": count})
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	orders, err := s.db.ListOrders()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}
	writeJSON(w, http.StatusOK, orders)
}

// handleOrder serves /api/orders/{id} and the action endpoints
// /api/orders/{id}/execute, /cancel, /reject.
func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/orders/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "order id required")
		return
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "order id must be an integer")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		s.getOrder(w, id)
	case len(parts) == 2 && r.Method == http.MethodPost:
		switch parts[1] {
		case "execute":
			s.executeOrder(w, r, id)
		case "cancel":
			s.cancelOrder(w, id)
		case "reject":
			s.rejectOrder(w, r, id)
		default:
			writeError(w, http.StatusNotFound, "unknown action")
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// orderDetail is the GET /api/orders/{id} payload.
type orderDetail struct {
	models.Order
	Executions []models.Execution `json:"executions"`
}

func (s *Server) getOrder(w http.ResponseWriter, id int64) {
	order, err := s.db.GetOrder(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	execs, err := s.db.ListExecutions(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if execs == nil {
		execs = []models.Execution{}
	}
	writeJSON(w, http.StatusOK, orderDetail{Order: *order, Executions: execs})
}

type executeRequest struct {
	Quantity *int `json:"quantity"` // nil fills the remainder
}

func (s *Server) executeOrder(w http.ResponseWriter, r *http.Request, id int64) {
	var req executeRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := s.engine.Fill(id, req.Quantity)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	s.dispatcher.Dispatch(events...)
	writeJSON(w, http.StatusOK, events[0].Order)
}

func (s *Server) cancelOrder(w http.ResponseWriter, id int64) {
	ev, err := s.engine.Cancel(id)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	s.dispatcher.Dispatch(*ev)
	writeJSON(w, http.StatusOK, ev.Order)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (s *Server) rejectOrder(w http.ResponseWriter, r *http.Request, id int64) {
	var req rejectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Reason == "" {
		req.Reason = "rejected by broker"
	}

	ev, err := s.engine.Reject(id, req.Reason)
	if err != nil {
		writeLifecycleError(w, err)
		return
	}
	s.dispatcher.Dispatch(*ev)
	writeJSON(w, http.StatusOK, ev.Order)
}

// --- Helpers ---

// decodeBody parses an optional JSON body. An empty body decodes to the
// zero value.
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}

func writeLifecycleError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, lifecycle.ErrOrderNotFound):
		status = http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidQuantity):
		status = http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrIllegalTransition),
		errors.Is(err, lifecycle.ErrOnlyNewRejectable),
		errors.Is(err, lifecycle.ErrSymbolUnknown),
		errors.Is(err, lifecycle.ErrLimitNotCrossed),
		errors.Is(err, lifecycle.ErrFOKNotFullyFillable):
		status = http.StatusConflict
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
