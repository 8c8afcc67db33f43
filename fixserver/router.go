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
	"log"
	"strconv"

	"github.com/google/uuid"

	"sim-broker-go/fixmsg"
	"sim-broker-go/lifecycle"
	"sim-broker-go/metrics"
)

// Router turns lifecycle events into Execution Reports and delivers them
// to the owning client's live session. Events for disconnected clients
// are logged and dropped; the order state in the database is already
// committed and unaffected by delivery.
type Router struct {
	reg          *sessionRegistry
	brokerCompID string
}

func newRouter(reg *sessionRegistry, brokerCompID string) *Router {
	return &Router{reg: reg, brokerCompID: brokerCompID}
}

// newExecID mints the report's ExecID. Every outbound report gets a fresh
// one, independent of any persisted execution's exec_id.
func (r *Router) newExecID() string {
	return uuid.NewString()[:8]
}

// Dispatch delivers the events to the session of the client that owns the
// order. Used by the admin workers, whose fills and cancels originate
// outside any FIX session.
func (r *Router) Dispatch(events ...lifecycle.Event) {
	for _, ev := range events {
		sess := r.reg.lookup(ev.Order.SenderID)
		if sess == nil {
			log.Printf("no live session for %s; dropping %s report for order %d",
				ev.Order.SenderID, ev.ExecType, ev.Order.ID)
			metrics.IncReportsDropped()
			continue
		}
		if err := r.sendReport(sess, ev); err != nil {
			log.Printf("failed to deliver %s report for order %d to %s: %v",
				ev.ExecType, ev.Order.ID, ev.Order.SenderID, err)
		}
	}
}

// sendReport builds the Execution Report for one event and writes it on
// the given session.
func (r *Router) sendReport(sess *Session, ev lifecycle.Event) error {
	report := fixmsg.BuildExecutionReport(fixmsg.ExecReportParams{
		ClOrdID:   ev.Order.ClOrdID,
		OrderID:   strconv.FormatInt(ev.Order.ID, 10),
		ExecID:    r.newExecID(),
		ExecType:  ev.ExecType,
		OrdStatus: ev.OrdStatus,
		Symbol:    ev.Order.Symbol,
		Side:      ev.Order.Side.WireCode(),
		OrderQty:  ev.Order.Quantity,
		OrdType:   ev.Order.OrderType.WireCode(),
		CumQty:    ev.CumQty,
		LeavesQty: ev.LeavesQty,
		AvgPx:     ev.AvgPx,
		LastQty:   ev.LastQty,
		LastPx:    ev.LastPx,
		Text:      ev.Text,
	}, r.brokerCompID, sess.PeerID())

	if err := sess.Send(report); err != nil {
		return err
	}
	metrics.IncReportSent(ev.ExecType)
	return nil
}
