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

// Package metrics registers the broker's Prometheus collectors and the
// one-line helpers the rest of the code calls to update them.
//
// broker_fix_messages_total counts FIX messages by message type and
// direction. broker_exec_reports_total counts Execution Reports written
// to a client socket, by exec type, and broker_exec_reports_dropped_total
// counts reports whose owning client had no live session.
// broker_orders_total counts orders by outcome (accepted or rejected)
// and broker_sessions_active gauges live FIX sessions.
//
// Everything is registered in init() and served at /metrics by the admin
// HTTP server.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	fixMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_fix_messages_total",
			Help: "FIX messages processed, by message type and direction",
		},
		[]string{"msg_type", "direction"}, // direction: in|out
	)

	execReports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_exec_reports_total",
			Help: "Execution Reports sent, by exec type wire code",
		},
		[]string{"exec_type"},
	)

	execReportsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "broker_exec_reports_dropped_total",
			Help: "Execution Reports dropped because the owning client had no live session",
		},
	)

	orders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "broker_orders_total",
			Help: "Orders by outcome (accepted|rejected)",
		},
		[]string{"outcome"},
	)

	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "broker_sessions_active",
			Help: "Live FIX sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(fixMessages, execReports, execReportsDropped)
	prometheus.MustRegister(orders, sessionsActive)
}

func IncMessagesReceived(msgType string) { fixMessages.WithLabelValues(msgType, "in").Inc() }
func IncMessagesSent(msgType string)     { fixMessages.WithLabelValues(msgType, "out").Inc() }

func IncReportSent(execType string) { execReports.WithLabelValues(execType).Inc() }
func IncReportsDropped()            { execReportsDropped.Inc() }

func IncOrdersAccepted() { orders.WithLabelValues("accepted").Inc() }
func IncOrdersRejected() { orders.WithLabelValues("rejected").Inc() }

func IncSessionsActive() { sessionsActive.Inc() }
func DecSessionsActive() { sessionsActive.Dec() }
