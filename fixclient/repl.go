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
	"log"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"sim-broker-go/constants"
	"sim-broker-go/fixmsg"
)

// Repl runs the interactive command loop until exit or EOF.
func Repl(c *Client) {
	completer := readline.NewPrefixCompleter(
		readline.PcItem("order",
			readline.PcItem("buy"),
			readline.PcItem("sell"),
		),
		readline.PcItem("cancel"),
		readline.PcItem("orders"),
		readline.PcItem("status"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "FIX> ",
		HistoryFile:     "/tmp/simbroker_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Printf("Failed to create readline: %v", err)
		return
	}
	defer rl.Close()

	for {
		select {
		case <-c.done:
			fmt.Println("Connection to broker lost. Exiting.")
			return
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			break
		}

		parts := strings.Fields(strings.TrimSpace(line))
		if len(parts) == 0 {
			continue
		}

		cmd := strings.ToLower(parts[0])
		switch cmd {
		case "order":
			handleOrderCommand(c, parts)
		case "cancel":
			handleCancelCommand(c, parts)
		case "orders":
			displayOrders(c.store.GetAllOrders())
		case "status":
			handleStatusCommand(c, parts)
		case "help":
			displayHelp()
		case "exit":
			return
		default:
			fmt.Println("Unknown command. Type 'help' for available commands.")
		}
	}
}

func handleOrderCommand(c *Client, parts []string) {
	if len(parts) < 4 {
		fmt.Print(`Usage: order <buy|sell> <symbol> <qty> [flags...]

Flags:
  --limit <price>          - Limit order at the given price
  --tif <day|gtc|ioc|fok>  - Time in force (default day)

Examples:
  order buy AAPL 100
  order sell MSFT 50 --limit 420.50
  order buy TSLA 200 --limit 250 --tif fok
`)
		return
	}

	var side string
	switch strings.ToLower(parts[1]) {
	case "buy":
		side = constants.SideBuy
	case "sell":
		side = constants.SideSell
	default:
		fmt.Println("Error: side must be buy or sell")
		return
	}

	symbol := strings.ToUpper(parts[2])
	qty, err := strconv.Atoi(parts[3])
	if err != nil || qty <= 0 {
		fmt.Println("Error: quantity must be a positive integer")
		return
	}

	params := fixmsg.NewOrderParams{
		Symbol:   symbol,
		Side:     side,
		OrdType:  constants.OrdTypeMarket,
		OrderQty: qty,
	}

	for i := 4; i < len(parts); i++ {
		switch parts[i] {
		case "--limit":
			if i+1 >= len(parts) {
				fmt.Println("Error: --limit requires a price")
				return
			}
			i++
			if _, err := strconv.ParseFloat(parts[i], 64); err != nil {
				fmt.Printf("Error: bad limit price %q\n", parts[i])
				return
			}
			params.OrdType = constants.OrdTypeLimit
			params.Price = parts[i]
		case "--tif":
			if i+1 >= len(parts) {
				fmt.Println("Error: --tif requires a value")
				return
			}
			i++
			tif, ok := parseTif(parts[i])
			if !ok {
				fmt.Printf("Error: bad time in force %q (day|gtc|ioc|fok)\n", parts[i])
				return
			}
			params.TimeInForce = tif
		default:
			fmt.Printf("Error: unknown flag %q\n", parts[i])
			return
		}
	}

	clOrdID, err := c.SubmitOrder(params)
	if err != nil {
		fmt.Printf("Error: failed to submit order: %v\n", err)
		return
	}
	fmt.Printf("Order submitted: ClOrdID=%s\n", clOrdID)
}

func parseTif(s string) (string, bool) {
	switch strings.ToLower(s) {
	case "day":
		return constants.TimeInForceDay, true
	case "gtc":
		return constants.TimeInForceGTC, true
	case "ioc":
		return constants.TimeInForceIOC, true
	case "fok":
		return constants.TimeInForceFOK, true
	default:
		return "", false
	}
}

func handleCancelCommand(c *Client, parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: cancel <clOrdId>")
		return
	}

	clOrdID, err := c.CancelOrder(parts[1])
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Printf("Cancel requested: ClOrdID=%s OrigClOrdID=%s\n", clOrdID, parts[1])
}

func handleStatusCommand(c *Client, parts []string) {
	if len(parts) < 2 {
		fmt.Println("Usage: status <clOrdId>")
		return
	}

	order := c.store.GetOrder(parts[1])
	if order == nil {
		fmt.Printf("No tracked order with ClOrdID %s\n", parts[1])
		return
	}
	displayOrderDetail(order)
}
