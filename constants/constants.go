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

// Package constants defines the FIX 4.2 tags, message types, and wire
// enumeration codes used by the broker and the client.
package constants

// Tag is a FIX field tag number.
type Tag int

// --- Message Types ---
const (
	// Admin Messages
	MsgTypeHeartbeat   = "0" // Heartbeat
	MsgTypeTestRequest = "1" // Test Request
	MsgTypeReject      = "3" // Session-level Reject
	MsgTypeLogout      = "5" // Logout
	MsgTypeLogon       = "A" // Logon

	// Order Entry Messages
	MsgTypeNewOrderSingle     = "D" // New Order Single
	MsgTypeOrderCancelRequest = "F" // Order Cancel Request
	MsgTypeExecutionReport    = "8" // Execution Report
	MsgTypeOrderCancelReject  = "9" // Order Cancel Reject
)

// --- Protocol Constants ---
const (
	FixTimeFormat     = "20060102-15:04:05"
	FixBeginString    = "FIX.4.2"
	EncryptMethodNone = "0"
	HeartBtInterval   = "30"
	MsgSeqNumInit     = 1

	// SOH is the FIX field delimiter.
	SOH = "\x01"
)

// --- Side (Tag 54) ---
const (
	SideBuy  = "1" // Buy
	SideSell = "2" // Sell
)

// --- Order Types (Tag 40) ---
const (
	OrdTypeMarket    = "1" // Market
	OrdTypeLimit     = "2" // Limit
	OrdTypeStop      = "3" // Stop (accepted on the wire, not supported)
	OrdTypeStopLimit = "4" // Stop Limit (accepted on the wire, not supported)
)

// --- Time In Force (Tag 59) ---
const (
	TimeInForceDay = "0" // Day (default)
	TimeInForceGTC = "1" // Good Till Cancel
	TimeInForceIOC = "3" // Immediate or Cancel
	TimeInForceFOK = "4" // Fill or Kill
)

// --- Order Status (Tag 39) ---
const (
	OrdStatusNew             = "0" // New
	OrdStatusPartiallyFilled = "1" // Partially Filled
	OrdStatusFilled          = "2" // Filled
	OrdStatusCanceled        = "4" // Canceled
	OrdStatusRejected        = "8" // Rejected
)

// --- Execution Type (Tag 150) ---
const (
	ExecTypeNew         = "0" // New Order
	ExecTypePartialFill = "1" // Partial Fill
	ExecTypeFilled      = "2" // Filled
	ExecTypeCanceled    = "4" // Canceled
	ExecTypeRejected    = "8" // Rejected
)

// --- Cancel Reject Reason (Tag 102) ---
const (
	CxlRejReasonTooLate         = "0" // Too late to cancel (order already terminal)
	CxlRejReasonUnknownOrder    = "1" // Unknown order
	CxlRejReasonUnableToProcess = "4" // Unable to process request
)

// --- Cancel Reject Response To (Tag 434) ---
const (
	CxlRejResponseToCancel = "1" // Order Cancel Request (F)
)

// --- Standard FIX Tags ---
const (
	TagAvgPx         Tag = 6
	TagBeginString   Tag = 8
	TagBodyLength    Tag = 9
	TagCheckSum      Tag = 10
	TagClOrdID       Tag = 11
	TagCumQty        Tag = 14
	TagExecID        Tag = 17
	TagLastPx        Tag = 31
	TagLastQty       Tag = 32
	TagMsgSeqNum     Tag = 34
	TagMsgType       Tag = 35
	TagOrderID       Tag = 37
	TagOrderQty      Tag = 38
	TagOrdStatus     Tag = 39
	TagOrdType       Tag = 40
	TagOrigClOrdID   Tag = 41
	TagPrice         Tag = 44
	TagSenderCompID  Tag = 49
	TagSendingTime   Tag = 52
	TagSide          Tag = 54
	TagSymbol        Tag = 55
	TagTargetCompID  Tag = 56
	TagText          Tag = 58
	TagTimeInForce   Tag = 59
	TagTransactTime  Tag = 60
	TagEncryptMethod Tag = 98
	TagCxlRejReason  Tag = 102
	TagHeartBtInt    Tag = 108
	TagTestReqID     Tag = 112
	TagExecType      Tag = 150
	TagLeavesQty     Tag = 151

	TagCxlRejResponseTo Tag = 434
)
