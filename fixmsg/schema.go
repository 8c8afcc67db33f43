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

// Package fixmsg provides typed views of the five FIX 4.2 message kinds
// this broker speaks: Logon (A), Heartbeat (0), NewOrderSingle (D),
// OrderCancelRequest (F), and ExecutionReport (8), plus the outbound
// OrderCancelReject (9). Decoding validates required tags and value
// shapes; a failure is a *SchemaError, which the session layer turns into
// the appropriate wire rejection.
package fixmsg

import (
	"fmt"
	"strings"

	"sim-broker-go/constants"
	"sim-broker-go/fixwire"
)

// SchemaError reports a missing or ill-typed required tag.
type SchemaError struct {
	MsgType string
	Tag     constants.Tag
	Reason  string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("fixmsg: %s message, tag %d: %s", e.MsgType, e.Tag, e.Reason)
}

func schemaErr(msgType string, tag constants.Tag, reason string) error {
	return &SchemaError{MsgType: msgType, Tag: tag, Reason: reason}
}

// Header carries the session-level tags common to every message.
type Header struct {
	SenderCompID string
	TargetCompID string
	MsgSeqNum    int
	SendingTime  string
}

// Logon is MsgType=A.
type Logon struct {
	Header
	EncryptMethod string // must be "0"
	HeartBtInt    int
}

// Heartbeat is MsgType=0.
type Heartbeat struct {
	Header
	TestReqID string // optional; non-empty demands a heartbeat echo
}

// NewOrderSingle is MsgType=D.
type NewOrderSingle struct {
	Header
	ClOrdID      string
	Symbol       string // normalized: trimmed, upper-cased
	Side         string // wire code, tag 54
	OrderQty     int
	OrdType      string   // wire code, tag 40
	Price        *float64 // required for limit and stop-limit
	TimeInForce  string   // wire code, tag 59; "" decoded as Day
	TransactTime string
}

// OrderCancelRequest is MsgType=F.
type OrderCancelRequest struct {
	Header
	ClOrdID      string
	OrigClOrdID  string
	Symbol       string
	Side         string
	TransactTime string
}

// ExecutionReport is MsgType=8 (outbound only, but decodable for the
// client and for round-trip tests).
type ExecutionReport struct {
	Header
	ClOrdID   string
	OrderID   string
	ExecID    string
	ExecType  string
	OrdStatus string
	Symbol    string
	Side      string
	OrderQty  int
	OrdType   string
	CumQty    int
	LeavesQty int
	AvgPx     float64
	LastQty   *int     // only on fills
	LastPx    *float64 // only on fills
	Text      string
}

// OrderCancelReject is MsgType=9.
type OrderCancelReject struct {
	Header
	ClOrdID          string
	OrigClOrdID      string
	CxlRejReason     string
	CxlRejResponseTo string
	Text             string
}

// --- Decoding ---

func decodeHeader(m *fixwire.Message, msgType string) (Header, error) {
	var h Header
	h.SenderCompID = m.GetOrEmpty(constants.TagSenderCompID)
	if h.SenderCompID == "" {
		return h, schemaErr(msgType, constants.TagSenderCompID, "SenderCompID required")
	}
	h.TargetCompID = m.GetOrEmpty(constants.TagTargetCompID)
	if h.TargetCompID == "" {
		return h, schemaErr(msgType, constants.TagTargetCompID, "TargetCompID required")
	}
	seq, ok := m.GetInt(constants.TagMsgSeqNum)
	if !ok || seq < 1 {
		return h, schemaErr(msgType, constants.TagMsgSeqNum, "MsgSeqNum must be a positive integer")
	}
	h.MsgSeqNum = seq
	h.SendingTime = m.GetOrEmpty(constants.TagSendingTime)
	if h.SendingTime == "" {
		return h, schemaErr(msgType, constants.TagSendingTime, "SendingTime required")
	}
	return h, nil
}

// DecodeLogon validates and types a Logon (A) message.
func DecodeLogon(m *fixwire.Message) (*Logon, error) {
	h, err := decodeHeader(m, constants.MsgTypeLogon)
	if err != nil {
		return nil, err
	}
	enc := m.GetOrEmpty(constants.TagEncryptMethod)
	if enc != constants.EncryptMethodNone {
		return nil, schemaErr(constants.MsgTypeLogon, constants.TagEncryptMethod, "EncryptMethod must be 0")
	}
	hb, ok := m.GetInt(constants.TagHeartBtInt)
	if !ok || hb < 1 || hb > 3600 {
		return nil, schemaErr(constants.MsgTypeLogon, constants.TagHeartBtInt, "HeartBtInt must be 1..3600")
	}
	return &Logon{Header: h, EncryptMethod: enc, HeartBtInt: hb}, nil
}

// DecodeHeartbeat validates and types a Heartbeat (0) message.
func DecodeHeartbeat(m *fixwire.Message) (*Heartbeat, error) {
	h, err := decodeHeader(m, constants.MsgTypeHeartbeat)
	if err != nil {
		return nil, err
	}
	return &Heartbeat{Header: h, TestReqID: m.GetOrEmpty(constants.TagTestReqID)}, nil
}

// DecodeNewOrderSingle validates and types a NewOrderSingle (D) message.
// The symbol is trimmed and upper-cased; TimeInForce defaults to Day.
func DecodeNewOrderSingle(m *fixwire.Message) (*NewOrderSingle, error) {
	const mt = constants.MsgTypeNewOrderSingle
	h, err := decodeHeader(m, mt)
	if err != nil {
		return nil, err
	}

	o := &NewOrderSingle{Header: h}

	o.ClOrdID = m.GetOrEmpty(constants.TagClOrdID)
	if o.ClOrdID == "" {
		return nil, schemaErr(mt, constants.TagClOrdID, "ClOrdID required")
	}

	o.Symbol = strings.ToUpper(strings.TrimSpace(m.GetOrEmpty(constants.TagSymbol)))
	if o.Symbol == "" || len(o.Symbol) > 10 {
		return nil, schemaErr(mt, constants.TagSymbol, "Symbol must be 1..10 characters")
	}

	o.Side = m.GetOrEmpty(constants.TagSide)
	if o.Side != constants.SideBuy && o.Side != constants.SideSell {
		return nil, schemaErr(mt, constants.TagSide, "Side must be 1 or 2")
	}

	qty, ok := m.GetInt(constants.TagOrderQty)
	if !ok || qty <= 0 {
		return nil, schemaErr(mt, constants.TagOrderQty, "OrderQty must be a positive integer")
	}
	o.OrderQty = qty

	o.OrdType = m.GetOrEmpty(constants.TagOrdType)
	switch o.OrdType {
	case constants.OrdTypeMarket, constants.OrdTypeLimit,
		constants.OrdTypeStop, constants.OrdTypeStopLimit:
	default:
		return nil, schemaErr(mt, constants.TagOrdType, "OrdType must be 1, 2, 3 or 4")
	}

	// Price is required for limit and stop-limit, must be absent-or-positive
	// otherwise.
	if m.Has(constants.TagPrice) {
		px, ok := m.GetFloat(constants.TagPrice)
		if !ok || px <= 0 {
			return nil, schemaErr(mt, constants.TagPrice, "Price must be a positive decimal")
		}
		o.Price = &px
	} else if o.OrdType == constants.OrdTypeLimit || o.OrdType == constants.OrdTypeStopLimit {
		return nil, schemaErr(mt, constants.TagPrice, "Price required for limit orders")
	}

	o.TimeInForce = m.GetOrEmpty(constants.TagTimeInForce)
	switch o.TimeInForce {
	case "", constants.TimeInForceDay, constants.TimeInForceGTC,
		constants.TimeInForceIOC, constants.TimeInForceFOK:
		if o.TimeInForce == "" {
			o.TimeInForce = constants.TimeInForceDay
		}
	default:
		return nil, schemaErr(mt, constants.TagTimeInForce, "TimeInForce must be 0, 1, 3 or 4")
	}

	o.TransactTime = m.GetOrEmpty(constants.TagTransactTime)
	if o.TransactTime == "" {
		return nil, schemaErr(mt, constants.TagTransactTime, "TransactTime required")
	}

	return o, nil
}

// DecodeOrderCancelRequest validates and types an OrderCancelRequest (F).
func DecodeOrderCancelRequest(m *fixwire.Message) (*OrderCancelRequest, error) {
	const mt = constants.MsgTypeOrderCancelRequest
	h, err := decodeHeader(m, mt)
	if err != nil {
		return nil, err
	}

	c := &OrderCancelRequest{Header: h}

	c.ClOrdID = m.GetOrEmpty(constants.TagClOrdID)
	if c.ClOrdID == "" {
		return nil, schemaErr(mt, constants.TagClOrdID, "ClOrdID required")
	}
	c.OrigClOrdID = m.GetOrEmpty(constants.TagOrigClOrdID)
	if c.OrigClOrdID == "" {
		return nil, schemaErr(mt, constants.TagOrigClOrdID, "OrigClOrdID required")
	}
	c.Symbol = strings.ToUpper(strings.TrimSpace(m.GetOrEmpty(constants.TagSymbol)))
	if c.Symbol == "" {
		return nil, schemaErr(mt, constants.TagSymbol, "Symbol required")
	}
	c.Side = m.GetOrEmpty(constants.TagSide)
	if c.Side != constants.SideBuy && c.Side != constants.SideSell {
		return nil, schemaErr(mt, constants.TagSide, "Side must be 1 or 2")
	}
	c.TransactTime = m.GetOrEmpty(constants.TagTransactTime)
	if c.TransactTime == "" {
		return nil, schemaErr(mt, constants.TagTransactTime, "TransactTime required")
	}

	return c, nil
}

// DecodeExecutionReport validates and types an ExecutionReport (8).
func DecodeExecutionReport(m *fixwire.Message) (*ExecutionReport, error) {
	const mt = constants.MsgTypeExecutionReport
	h, err := decodeHeader(m, mt)
	if err != nil {
		return nil, err
	}

	er := &ExecutionReport{Header: h}

	er.ClOrdID = m.GetOrEmpty(constants.TagClOrdID)
	if er.ClOrdID == "" {
		return nil, schemaErr(mt, constants.TagClOrdID, "ClOrdID required")
	}
	er.ExecID = m.GetOrEmpty(constants.TagExecID)
	if er.ExecID == "" {
		return nil, schemaErr(mt, constants.TagExecID, "ExecID required")
	}
	er.ExecType = m.GetOrEmpty(constants.TagExecType)
	if er.ExecType == "" {
		return nil, schemaErr(mt, constants.TagExecType, "ExecType required")
	}
	er.OrdStatus = m.GetOrEmpty(constants.TagOrdStatus)
	if er.OrdStatus == "" {
		return nil, schemaErr(mt, constants.TagOrdStatus, "OrdStatus required")
	}
	er.Symbol = m.GetOrEmpty(constants.TagSymbol)
	if er.Symbol == "" {
		return nil, schemaErr(mt, constants.TagSymbol, "Symbol required")
	}
	er.Side = m.GetOrEmpty(constants.TagSide)
	if er.Side == "" {
		return nil, schemaErr(mt, constants.TagSide, "Side required")
	}

	qty, ok := m.GetInt(constants.TagOrderQty)
	if !ok || qty < 0 {
		return nil, schemaErr(mt, constants.TagOrderQty, "OrderQty must be a non-negative integer")
	}
	er.OrderQty = qty

	cum, ok := m.GetInt(constants.TagCumQty)
	if !ok || cum < 0 {
		return nil, schemaErr(mt, constants.TagCumQty, "CumQty must be a non-negative integer")
	}
	er.CumQty = cum

	leaves, ok := m.GetInt(constants.TagLeavesQty)
	if !ok || leaves < 0 {
		return nil, schemaErr(mt, constants.TagLeavesQty, "LeavesQty must be a non-negative integer")
	}
	er.LeavesQty = leaves

	avg, ok := m.GetFloat(constants.TagAvgPx)
	if !ok || avg < 0 {
		return nil, schemaErr(mt, constants.TagAvgPx, "AvgPx must be a non-negative decimal")
	}
	er.AvgPx = avg

	er.OrderID = m.GetOrEmpty(constants.TagOrderID)
	er.OrdType = m.GetOrEmpty(constants.TagOrdType)
	er.Text = m.GetOrEmpty(constants.TagText)

	if m.Has(constants.TagLastQty) {
		lq, ok := m.GetInt(constants.TagLastQty)
		if !ok || lq <= 0 {
			return nil, schemaErr(mt, constants.TagLastQty, "LastQty must be a positive integer")
		}
		er.LastQty = &lq
	}
	if m.Has(constants.TagLastPx) {
		lp, ok := m.GetFloat(constants.TagLastPx)
		if !ok || lp <= 0 {
			return nil, schemaErr(mt, constants.TagLastPx, "LastPx must be a positive decimal")
		}
		er.LastPx = &lp
	}

	return er, nil
}

// DecodeOrderCancelReject validates and types an OrderCancelReject (9).
func DecodeOrderCancelReject(m *fixwire.Message) (*OrderCancelReject, error) {
	const mt = constants.MsgTypeOrderCancelReject
	h, err := decodeHeader(m, mt)
	if err != nil {
		return nil, err
	}

	r := &OrderCancelReject{Header: h}
	r.ClOrdID = m.GetOrEmpty(constants.TagClOrdID)
	r.OrigClOrdID = m.GetOrEmpty(constants.TagOrigClOrdID)
	r.CxlRejReason = m.GetOrEmpty(constants.TagCxlRejReason)
	r.CxlRejResponseTo = m.GetOrEmpty(constants.TagCxlRejResponseTo)
	r.Text = m.GetOrEmpty(constants.TagText)
	return r, nil
}
