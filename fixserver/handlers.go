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

package fixserver

import (
	"errors"
	"log"
	"time"

	"sim-broker-go/constants"
	"sim-broker-go/database"
	"sim-broker-go/fixmsg"
	"sim-broker-go/fixwire"
	"sim-broker-go/lifecycle"
	"sim-broker-go/metrics"
	"sim-broker-go/models"
)

// handleLogon processes the first message on a connection. Anything other
// than a well-formed Logon closes the session (false return). On success
// the peer is registered and answered with the broker's own Logon.
func (s *Server) handleLogon(sess *Session, msg *fixwire.Message) bool {
	if msg.MsgType() != constants.MsgTypeLogon {
		log.Printf("first message from %s is %q, expected Logon; closing",
			sess.conn.RemoteAddr(), msg.MsgType())
		return false
	}

	logon, err := fixmsg.DecodeLogon(msg)
	if err != nil {
		log.Printf("invalid Logon from %s: %v; closing", sess.conn.RemoteAddr(), err)
		return false
	}

	sess.setPeerID(logon.SenderCompID)
	s.reg.add(sess)

	reply := fixmsg.BuildLogon(s.cfg.BrokerCompID, logon.SenderCompID, s.cfg.HeartBtInt)
	if err := sess.Send(reply); err != nil {
		log.Printf("failed to send Logon to %s: %v", logon.SenderCompID, err)
		return false
	}
	log.Printf("logon accepted for %s (HeartBtInt=%d)", logon.SenderCompID, logon.HeartBtInt)
	return true
}

// handleHeartbeat records liveness. A Heartbeat carrying a TestReqID
// demands a Heartbeat back echoing tag 112; a plain one needs no answer.
func (s *Server) handleHeartbeat(sess *Session, msg *fixwire.Message) {
	hb, err := fixmsg.DecodeHeartbeat(msg)
	if err != nil {
		log.Printf("malformed Heartbeat from %s ignored: %v", sess.PeerID(), err)
		return
	}
	sess.noteHeartbeat(time.Now())

	if hb.TestReqID == "" {
		return
	}
	reply := fixmsg.BuildHeartbeat(s.cfg.BrokerCompID, sess.PeerID(), hb.TestReqID)
	if err := sess.Send(reply); err != nil {
		log.Printf("failed to echo TestReqID for %s: %v", sess.PeerID(), err)
	}
}

// handleTestRequest answers with a Heartbeat echoing the TestReqID.
func (s *Server) handleTestRequest(sess *Session, msg *fixwire.Message) {
	testReqID := msg.GetOrEmpty(constants.TagTestReqID)
	reply := fixmsg.BuildHeartbeat(s.cfg.BrokerCompID, sess.PeerID(), testReqID)
	if err := sess.Send(reply); err != nil {
		log.Printf("failed to answer TestRequest from %s: %v", sess.PeerID(), err)
	}
}

// handleNewOrderSingle validates, persists, and acknowledges an incoming
// order. Every failure mode answers on the wire:
//
//	schema violation      → ExecutionReport(rejected), nothing persisted
//	stop / stop-limit     → ExecutionReport(rejected), nothing persisted
//	duplicate ClOrdID     → ExecutionReport(rejected), nothing persisted
//	storage failure       → ExecutionReport(rejected)
func (s *Server) handleNewOrderSingle(sess *Session, msg *fixwire.Message) {
	nos, err := fixmsg.DecodeNewOrderSingle(msg)
	if err != nil {
		log.Printf("invalid NewOrderSingle from %s: %v", sess.PeerID(), err)
		s.sendUnpersistedReject(sess, msg, err.Error())
		return
	}

	side, _ := models.SideFromWire(nos.Side)
	ordType, ok := models.OrderTypeFromWire(nos.OrdType)
	if !ok {
		log.Printf("unsupported OrdType %q from %s (ClOrdID=%s)", nos.OrdType, sess.PeerID(), nos.ClOrdID)
		s.sendUnpersistedReject(sess, msg, lifecycle.ErrUnsupportedOrderType.Error())
		return
	}
	tif, _ := models.TimeInForceFromWire(nos.TimeInForce)

	order := models.Order{
		ClOrdID:     nos.ClOrdID,
		SenderID:    sess.PeerID(),
		Symbol:      nos.Symbol,
		Side:        side,
		OrderType:   ordType,
		Quantity:    nos.OrderQty,
		LimitPrice:  nos.Price,
		TimeInForce: tif,
	}

	ev, err := s.engine.Submit(&order)
	if err != nil {
		if errors.Is(err, lifecycle.ErrDuplicateClOrdID) {
			log.Printf("duplicate ClOrdID %s from %s", nos.ClOrdID, sess.PeerID())
		} else {
			log.Printf("failed to accept order %s from %s: %v", nos.ClOrdID, sess.PeerID(), err)
		}
		metrics.IncOrdersRejected()
		s.sendUnpersistedReject(sess, msg, err.Error())
		return
	}

	metrics.IncOrdersAccepted()
	log.Printf("order accepted: id=%d ClOrdID=%s %s %s %d %s",
		order.ID, order.ClOrdID, order.Side, order.Symbol, order.Quantity, order.OrderType)
	if err := s.router.sendReport(sess, *ev); err != nil {
		log.Printf("failed to send ack for order %d: %v", order.ID, err)
	}
}

// sendUnpersistedReject answers a NewOrderSingle that never became an
// order. Fields are copied best-effort from the raw message so the client
// can correlate the rejection.
func (s *Server) sendUnpersistedReject(sess *Session, msg *fixwire.Message, reason string) {
	qty, _ := msg.GetInt(constants.TagOrderQty)
	report := fixmsg.BuildExecutionReport(fixmsg.ExecReportParams{
		ClOrdID:   msg.GetOrEmpty(constants.TagClOrdID),
		ExecID:    s.router.newExecID(),
		ExecType:  constants.ExecTypeRejected,
		OrdStatus: constants.OrdStatusRejected,
		Symbol:    msg.GetOrEmpty(constants.TagSymbol),
		Side:      msg.GetOrEmpty(constants.TagSide),
		OrderQty:  qty,
		OrdType:   msg.GetOrEmpty(constants.TagOrdType),
		CumQty:    0,
		LeavesQty: qty,
		AvgPx:     0,
		Text:      reason,
	}, s.cfg.BrokerCompID, sess.PeerID())

	if err := sess.Send(report); err != nil {
		log.Printf("failed to send rejection to %s: %v", sess.PeerID(), err)
		return
	}
	metrics.IncReportSent(constants.ExecTypeRejected)
}

// handleCancelRequest resolves the target order by OrigClOrdID and runs
// the cancel. Failures answer with an OrderCancelReject whose reason code
// distinguishes unknown orders, already-terminal orders, and everything
// else.
func (s *Server) handleCancelRequest(sess *Session, msg *fixwire.Message) {
	req, err := fixmsg.DecodeOrderCancelRequest(msg)
	if err != nil {
		log.Printf("invalid OrderCancelRequest from %s: %v", sess.PeerID(), err)
		s.sendCancelReject(sess, msg.GetOrEmpty(constants.TagClOrdID),
			msg.GetOrEmpty(constants.TagOrigClOrdID),
			constants.CxlRejReasonUnableToProcess, err.Error())
		return
	}

	order, err := s.db.GetOrderByClOrdID(req.OrigClOrdID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			s.sendCancelReject(sess, req.ClOrdID, req.OrigClOrdID,
				constants.CxlRejReasonUnknownOrder, "unknown order")
			return
		}
		log.Printf("failed to resolve OrigClOrdID %s: %v", req.OrigClOrdID, err)
		s.sendCancelReject(sess, req.ClOrdID, req.OrigClOrdID,
			constants.CxlRejReasonUnableToProcess, "unable to process")
		return
	}

	ev, err := s.engine.Cancel(order.ID)
	if err != nil {
		reason := constants.CxlRejReasonUnableToProcess
		text := err.Error()
		switch {
		case errors.Is(err, lifecycle.ErrOrderNotFound):
			reason = constants.CxlRejReasonUnknownOrder
		case errors.Is(err, lifecycle.ErrIllegalTransition):
			reason = constants.CxlRejReasonTooLate
			text = "order already in terminal state"
		}
		log.Printf("cancel of order %d (OrigClOrdID=%s) refused: %v", order.ID, req.OrigClOrdID, err)
		s.sendCancelReject(sess, req.ClOrdID, req.OrigClOrdID, reason, text)
		return
	}

	log.Printf("order canceled: id=%d OrigClOrdID=%s", order.ID, req.OrigClOrdID)
	if err := s.router.sendReport(sess, *ev); err != nil {
		log.Printf("failed to send cancel report for order %d: %v", order.ID, err)
	}
}

func (s *Server) sendCancelReject(sess *Session, clOrdID, origClOrdID, reason, text string) {
	reject := fixmsg.BuildOrderCancelReject(fixmsg.CancelRejectParams{
		ClOrdID:      clOrdID,
		OrigClOrdID:  origClOrdID,
		CxlRejReason: reason,
		Text:         text,
	}, s.cfg.BrokerCompID, sess.PeerID())

	if err := sess.Send(reject); err != nil {
		log.Printf("failed to send OrderCancelReject to %s: %v", sess.PeerID(), err)
	}
}
