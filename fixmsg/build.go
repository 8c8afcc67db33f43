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

package fixmsg

import (
	"time"

	"sim-broker-go/constants"
	"sim-broker-go/fixwire"
)

// Builders produce outbound messages with MsgType and CompIDs set.
// MsgSeqNum and SendingTime are stamped by the session write path
// (fixwire.Stamp) so that sequence numbers are assigned under the
// session's write lock.

func setIfNotEmpty(m *fixwire.Message, tag constants.Tag, value string) {
	if value != "" {
		m.Set(tag, value)
	}
}

func buildHeader(msgType, senderCompID, targetCompID string) *fixwire.Message {
	m := fixwire.NewMessage()
	m.Set(constants.TagMsgType, msgType)
	m.Set(constants.TagSenderCompID, senderCompID)
	m.Set(constants.TagTargetCompID, targetCompID)
	return m
}

// BuildLogon creates a Logon (A) message.
func BuildLogon(senderCompID, targetCompID string, heartBtInt int) *fixwire.Message {
	m := buildHeader(constants.MsgTypeLogon, senderCompID, targetCompID)
	m.Set(constants.TagEncryptMethod, constants.EncryptMethodNone)
	m.SetInt(constants.TagHeartBtInt, heartBtInt)
	return m
}

// BuildHeartbeat creates a Heartbeat (0) message, echoing testReqID when
// the heartbeat answers a TestRequest.
func BuildHeartbeat(senderCompID, targetCompID, testReqID string) *fixwire.Message {
	m := buildHeader(constants.MsgTypeHeartbeat, senderCompID, targetCompID)
	setIfNotEmpty(m, constants.TagTestReqID, testReqID)
	return m
}

// NewOrderParams contains parameters for creating a new order.
type NewOrderParams struct {
	ClOrdID     string // client order ID (required)
	Symbol      string // ticker, e.g. AAPL (required)
	Side        string // "1" buy, "2" sell (required)
	OrdType     string // "1" market, "2" limit (required)
	OrderQty    int    // share count (required)
	Price       string // limit price (required for limit orders)
	TimeInForce string // "0" day, "1" gtc, "3" ioc, "4" fok (optional)
}

// BuildNewOrderSingle creates a New Order Single (D) message.
//
// Example - market order:
//
//	params := NewOrderParams{
//	    ClOrdID: "order-1", Symbol: "AAPL",
//	    Side: constants.SideBuy, OrdType: constants.OrdTypeMarket,
//	    OrderQty: 100,
//	}
//	msg := BuildNewOrderSingle(params, senderCompID, targetCompID)
func BuildNewOrderSingle(params NewOrderParams, senderCompID, targetCompID string) *fixwire.Message {
	m := buildHeader(constants.MsgTypeNewOrderSingle, senderCompID, targetCompID)

	m.Set(constants.TagClOrdID, params.ClOrdID)
	m.Set(constants.TagSymbol, params.Symbol)
	m.Set(constants.TagSide, params.Side)
	m.SetInt(constants.TagOrderQty, params.OrderQty)
	m.Set(constants.TagOrdType, params.OrdType)
	m.Set(constants.TagTransactTime, time.Now().UTC().Format(constants.FixTimeFormat))

	setIfNotEmpty(m, constants.TagPrice, params.Price)
	setIfNotEmpty(m, constants.TagTimeInForce, params.TimeInForce)

	return m
}

// CancelOrderParams contains parameters for canceling an order.
type CancelOrderParams struct {
	ClOrdID     string // cancel request ID (required)
	OrigClOrdID string // original order's ClOrdID (required)
	Symbol      string // ticker (required)
	Side        string // "1" buy, "2" sell (required)
}

// BuildOrderCancelRequest creates an Order Cancel Request (F) message.
func BuildOrderCancelRequest(params CancelOrderParams, senderCompID, targetCompID string) *fixwire.Message {
	m := buildHeader(constants.MsgTypeOrderCancelRequest, senderCompID, targetCompID)

	m.Set(constants.TagClOrdID, params.ClOrdID)
	m.Set(constants.TagOrigClOrdID, params.OrigClOrdID)
	m.Set(constants.TagSymbol, params.Symbol)
	m.Set(constants.TagSide, params.Side)
	m.Set(constants.TagTransactTime, time.Now().UTC().Format(constants.FixTimeFormat))

	return m
}

// ExecReportParams contains the fields of an outbound Execution Report.
type ExecReportParams struct {
	ClOrdID   string
	OrderID   string // internal order id; empty for unpersisted rejections
	ExecID    string
	ExecType  string // tag 150 code
	OrdStatus string // tag 39 code
	Symbol    string
	Side      string // tag 54 code
	OrderQty  int
	OrdType   string   // tag 40 code; optional
	CumQty    int
	LeavesQty int
	AvgPx     float64
	LastQty   *int     // set on fills
	LastPx    *float64 // set on fills
	Text      string   // reject reason text
}

// BuildExecutionReport creates an Execution Report (8) message.
func BuildExecutionReport(params ExecReportParams, senderCompID, targetCompID string) *fixwire.Message {
	m := buildHeader(constants.MsgTypeExecutionReport, senderCompID, targetCompID)

	m.Set(constants.TagClOrdID, params.ClOrdID)
	setIfNotEmpty(m, constants.TagOrderID, params.OrderID)
	m.Set(constants.TagExecID, params.ExecID)
	m.Set(constants.TagExecType, params.ExecType)
	m.Set(constants.TagOrdStatus, params.OrdStatus)
	m.Set(constants.TagSymbol, params.Symbol)
	m.Set(constants.TagSide, params.Side)
	m.SetInt(constants.TagOrderQty, params.OrderQty)
	setIfNotEmpty(m, constants.TagOrdType, params.OrdType)

	if params.LastQty != nil {
		m.SetInt(constants.TagLastQty, *params.LastQty)
	}
	if params.LastPx != nil {
		m.SetFloat(constants.TagLastPx, *params.LastPx)
	}

	m.SetInt(constants.TagCumQty, params.CumQty)
	m.SetInt(constants.TagLeavesQty, params.LeavesQty)
	m.SetFloat(constants.TagAvgPx, params.AvgPx)

	setIfNotEmpty(m, constants.TagText, params.Text)

	return m
}

// CancelRejectParams contains the fields of an outbound Order Cancel Reject.
type CancelRejectParams struct {
	ClOrdID      string
	OrigClOrdID  string
	CxlRejReason string // tag 102 code
	Text         string
}

// BuildOrderCancelReject creates an Order Cancel Reject (9) message in
// response to a cancel request that cannot be honored.
func BuildOrderCancelReject(params CancelRejectParams, senderCompID, targetCompID string) *fixwire.Message {
	m := buildHeader(constants.MsgTypeOrderCancelReject, senderCompID, targetCompID)

	m.Set(constants.TagClOrdID, params.ClOrdID)
	setIfNotEmpty(m, constants.TagOrigClOrdID, params.OrigClOrdID)
	m.Set(constants.TagCxlRejReason, params.CxlRejReason)
	m.Set(constants.TagCxlRejResponseTo, constants.CxlRejResponseToCancel)
	setIfNotEmpty(m, constants.TagText, params.Text)

	return m
}
