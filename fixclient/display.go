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

package fixclient

import (
	"fmt"
	"sort"

	"sim-broker-go/constants"
	"sim-broker-go/fixmsg"
)

func displayHelp() {
	fmt.Print(`Commands:
  --- Order Entry ---
  order <buy|sell> <symbol> <qty> [flags...]  - Submit new order
  cancel <clOrdId>              - Cancel an order
  orders                        - List tracked orders
  status <clOrdId>              - Show one order in detail

  --- General ---
  help                          - Show this help message
  exit

Order Flags:
  --limit <price>               - Limit order at the given price
  --tif <day|gtc|ioc|fok>       - Time in force (default day)

Examples:
  order buy AAPL 100                      - Market buy 100 AAPL
  order sell MSFT 50 --limit 420.50       - Limit sell 50 MSFT at 420.50
  order buy TSLA 200 --limit 250 --tif ioc
  cancel 3fa1b2c4                         - Cancel order by ClOrdID
`)
}

// printExecutionReport announces an inbound report on the console.
func printExecutionReport(er *fixmsg.ExecutionReport) {
	switch er.ExecType {
	case constants.ExecTypeNew:
		fmt.Printf("\n✅ Order accepted: ClOrdID=%s OrderID=%s %s %s x%d\n",
			er.ClOrdID, er.OrderID, sideName(er.Side), er.Symbol, er.OrderQty)
	case constants.ExecTypePartialFill:
		fmt.Printf("\n💧 Partial fill: ClOrdID=%s last %d @ %s (cum %d, leaves %d, avg %.4f)\n",
			er.ClOrdID, deref(er.LastQty), formatPx(er.LastPx), er.CumQty, er.LeavesQty, er.AvgPx)
	case constants.ExecTypeFilled:
		fmt.Printf("\n💰 Filled: ClOrdID=%s last %d @ %s (cum %d, avg %.4f)\n",
			er.ClOrdID, deref(er.LastQty), formatPx(er.LastPx), er.CumQty, er.AvgPx)
	case constants.ExecTypeCanceled:
		fmt.Printf("\n🚫 Canceled: ClOrdID=%s (filled %d of %d)\n",
			er.ClOrdID, er.CumQty, er.OrderQty)
	case constants.ExecTypeRejected:
		fmt.Printf("\n❌ Rejected: ClOrdID=%s reason: %s\n", er.ClOrdID, er.Text)
	default:
		fmt.Printf("\nℹ️ Execution report: ClOrdID=%s ExecType=%s OrdStatus=%s\n",
			er.ClOrdID, er.ExecType, er.OrdStatus)
	}
}

// printCancelReject announces a cancel rejection on the console.
func printCancelReject(rej *fixmsg.OrderCancelReject) {
	reason := rej.Text
	if reason == "" {
		reason = cxlRejReasonName(rej.CxlRejReason)
	}
	fmt.Printf("\n❌ Cancel rejected: OrigClOrdID=%s reason: %s\n", rej.OrigClOrdID, reason)
}

// displayOrders renders the tracked orders as a table, newest last.
func displayOrders(orders []*Order) {
	if len(orders) == 0 {
		fmt.Println("No tracked orders")
		return
	}

	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.Before(orders[j].CreatedAt)
	})

	fmt.Printf("┌──────────┬──────────┬──────┬────────┬──────────┬────────┬────────┬────────────┐\n")
	fmt.Printf("│ ClOrdID  │ Symbol   │ Side │ Qty    │ Status   │ CumQty │ Leaves │ AvgPx      │\n")
	fmt.Printf("├──────────┼──────────┼──────┼────────┼──────────┼────────┼────────┼────────────┤\n")
	for _, o := range orders {
		fmt.Printf("│ %-8s │ %-8s │ %-4s │ %-6d │ %-8s │ %-6d │ %-6d │ %-10.4f │\n",
			o.ClOrdID, o.Symbol, sideName(o.Side), o.OrderQty,
			ordStatusName(o.OrdStatus), o.CumQty, o.LeavesQty, o.AvgPx)
	}
	fmt.Printf("└──────────┴──────────┴──────┴────────┴──────────┴────────┴────────┴────────────┘\n")
}

// displayOrderDetail renders one order with every tracked field.
func displayOrderDetail(o *Order) {
	fmt.Printf("ClOrdID:     %s\n", o.ClOrdID)
	fmt.Printf("OrderID:     %s\n", o.OrderID)
	fmt.Printf("Symbol:      %s\n", o.Symbol)
	fmt.Printf("Side:        %s\n", sideName(o.Side))
	fmt.Printf("Type:        %s\n", ordTypeName(o.OrdType))
	if o.Price != "" {
		fmt.Printf("Limit Price: %s\n", o.Price)
	}
	fmt.Printf("TIF:         %s\n", tifName(o.TimeInForce))
	fmt.Printf("Status:      %s\n", ordStatusName(o.OrdStatus))
	fmt.Printf("Quantity:    %d (filled %d, leaves %d)\n", o.OrderQty, o.CumQty, o.LeavesQty)
	fmt.Printf("AvgPx:       %.4f\n", o.AvgPx)
	if o.LastQty != nil {
		fmt.Printf("Last Fill:   %d @ %s\n", *o.LastQty, formatPx(o.LastPx))
	}
	if o.Text != "" {
		fmt.Printf("Text:        %s\n", o.Text)
	}
}

// --- Wire code names ---

func sideName(code string) string {
	switch code {
	case constants.SideBuy:
		return "BUY"
	case constants.SideSell:
		return "SELL"
	default:
		return code
	}
}

func ordTypeName(code string) string {
	switch code {
	case constants.OrdTypeMarket:
		return "Market"
	case constants.OrdTypeLimit:
		return "Limit"
	default:
		return code
	}
}

func tifName(code string) string {
	switch code {
	case "", constants.TimeInForceDay:
		return "Day"
	case constants.TimeInForceGTC:
		return "GTC"
	case constants.TimeInForceIOC:
		return "IOC"
	case constants.TimeInForceFOK:
		return "FOK"
	default:
		return code
	}
}

func ordStatusName(code string) string {
	switch code {
	case constants.OrdStatusNew:
		return "New"
	case constants.OrdStatusPartiallyFilled:
		return "Partial"
	case constants.OrdStatusFilled:
		return "Filled"
	case constants.OrdStatusCanceled:
		return "Canceled"
	case constants.OrdStatusRejected:
		return "Rejected"
	case "":
		return "Pending"
	default:
		return code
	}
}

func cxlRejReasonName(code string) string {
	switch code {
	case constants.CxlRejReasonTooLate:
		return "too late to cancel"
	case constants.CxlRejReasonUnknownOrder:
		return "unknown order"
	case constants.CxlRejReasonUnableToProcess:
		return "unable to process"
	default:
		return code
	}
}

func formatPx(px *float64) string {
	if px == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *px)
}

func deref(q *int) int {
	if q == nil {
		return 0
	}
	return *q
}
