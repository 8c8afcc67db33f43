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

// Command client is the interactive FIX order entry client. It connects
// to the broker, completes the Logon handshake, and drops into a REPL
// for submitting and canceling orders.
package main

import (
	"flag"
	"log"

	"sim-broker-go/fixclient"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5001", "broker FIX address")
	sender := flag.String("sender", "CLIENT1", "SenderCompID for this session")
	target := flag.String("target", "BROKER", "broker's CompID")
	heartBt := flag.Int("heartbt", 30, "heartbeat interval in seconds")
	flag.Parse()

	client, err := fixclient.Dial(*addr, *sender, *target, *heartBt)
	if err != nil {
		log.Fatalf("failed to connect: %v", err)
	}
	defer client.Close()

	log.Printf("connected to %s as %s", *addr, *sender)
	fixclient.Repl(client)
}
