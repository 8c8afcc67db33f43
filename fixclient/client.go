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
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"

	"sim-broker-go/constants"
	"sim-broker-go/fixmsg"
	"sim-broker-go/fixwire"
)

// logonTimeout bounds the wait for the broker's Logon reply.
const logonTimeout = 5 * time.Second

// Client is a FIX order entry session to the broker.
type Client struct {
	conn         net.Conn
	store        *OrderStore
	senderCompID string
	targetCompID string

	// writeMu serializes stamping and writing, matching the broker's
	// guarantee of monotonic outbound sequence numbers.
	writeMu     sync.Mutex
	outboundSeq int

	logonCh  chan struct{}
	done     chan struct{}
	doneOnce sync.Once
	wg       sync.WaitGroup
}

// Dial connects to the broker, completes the Logon handshake, and starts
// the reader goroutine.
func Dial(addr, senderCompID, targetCompID string, heartBtInt int) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", addr, err)
	}

	c := &Client{
		conn:         conn,
		store:        NewOrderStore(),
		senderCompID: senderCompID,
		targetCompID: targetCompID,
		outboundSeq:  constants.MsgSeqNumInit,
		logonCh:      make(chan struct{}),
		done:         make(chan struct{}),
	}

	c.wg.Add(1)
	go c.readLoop()

	if err := c.send(fixmsg.BuildLogon(senderCompID, targetCompID, heartBtInt)); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to send Logon: %v", err)
	}

	select {
	case <-c.logonCh:
	case <-time.After(logonTimeout):
		c.Close()
		return nil, errors.New("timed out waiting for Logon reply")
	case <-c.done:
		return nil, errors.New("connection closed during Logon")
	}

	return c, nil
}

// Store returns the client's order store.
func (c *Client) Store() *OrderStore {
	return c.store
}

func (c *Client) signalDone() {
	c.doneOnce.Do(func() { close(c.done) })
}

// Close tears down the connection and waits for the reader to exit.
func (c *Client) Close() {
	c.signalDone()
	_ = c.conn.Close()
	c.wg.Wait()
}

// send stamps the message with the next outbound sequence number and
// writes the frame.
func (c *Client) send(m *fixwire.Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	fixwire.Stamp(m, c.outboundSeq, time.Now())
	if _, err := c.conn.Write(fixwire.Encode(m)); err != nil {
		return err
	}
	c.outboundSeq++
	return nil
}

// newClOrdID mints a client order id.
func newClOrdID() string {
	return uuid.NewString()[:8]
}

// SubmitOrder sends a NewOrderSingle and records the pending order
// locally. Returns the assigned ClOrdID.
func (c *Client) SubmitOrder(params fixmsg.NewOrderParams) (string, error) {
	if params.ClOrdID == "" {
		params.ClOrdID = newClOrdID()
	}

	msg := fixmsg.BuildNewOrderSingle(params, c.senderCompID, c.targetCompID)
	if err := c.send(msg); err != nil {
		return "", err
	}

	c.store.AddOrder(&Order{
		ClOrdID:     params.ClOrdID,
		Symbol:      params.Symbol,
		Side:        params.Side,
		OrdType:     params.OrdType,
		TimeInForce: params.TimeInForce,
		OrderQty:    params.OrderQty,
		Price:       params.Price,
		LeavesQty:   params.OrderQty,
	})
	return params.ClOrdID, nil
}

// CancelOrder sends an OrderCancelRequest for the given original order.
func (c *Client) CancelOrder(origClOrdID string) (string, error) {
	order := c.store.GetOrder(origClOrdID)
	if order == nil {
		return "", fmt.Errorf("no local order with ClOrdID %s", origClOrdID)
	}

	params := fixmsg.CancelOrderParams{
		ClOrdID:     newClOrdID(),
		OrigClOrdID: origClOrdID,
		Symbol:      order.Symbol,
		Side:        order.Side,
	}
	if err := c.send(fixmsg.BuildOrderCancelRequest(params, c.senderCompID, c.targetCompID)); err != nil {
		return "", err
	}
	return params.ClOrdID, nil
}

// readLoop frames and dispatches inbound messages until the connection
// drops.
func (c *Client) readLoop() {
	defer c.wg.Done()

	parser := fixwire.NewParser()
	buf := make([]byte, 4096)

	for {
		n, err := c.conn.Read(buf)
		if err != nil {
			select {
			case <-c.done:
			default:
				if !errors.Is(err, io.EOF) {
					log.Printf("connection lost: %v", err)
				}
			}
			c.signalDone()
			return
		}
		parser.Append(buf[:n])

		for {
			msg, err := parser.Next()
			if err != nil {
				log.Printf("framing error from broker: %v; disconnecting", err)
				_ = c.conn.Close()
				return
			}
			if msg == nil {
				break
			}
			c.handleMessage(msg)
		}
	}
}

func (c *Client) handleMessage(msg *fixwire.Message) {
	switch msg.MsgType() {
	case constants.MsgTypeLogon:
		select {
		case <-c.logonCh:
		default:
			close(c.logonCh)
		}

	case constants.MsgTypeHeartbeat:
		// Liveness only.

	case constants.MsgTypeTestRequest:
		testReqID := msg.GetOrEmpty(constants.TagTestReqID)
		if err := c.send(fixmsg.BuildHeartbeat(c.senderCompID, c.targetCompID, testReqID)); err != nil {
			log.Printf("failed to answer TestRequest: %v", err)
		}

	case constants.MsgTypeExecutionReport:
		er, err := fixmsg.DecodeExecutionReport(msg)
		if err != nil {
			log.Printf("malformed ExecutionReport ignored: %v", err)
			return
		}
		c.store.UpdateOrderFromReport(er)
		printExecutionReport(er)

	case constants.MsgTypeOrderCancelReject:
		rej, err := fixmsg.DecodeOrderCancelReject(msg)
		if err != nil {
			log.Printf("malformed OrderCancelReject ignored: %v", err)
			return
		}
		printCancelReject(rej)

	default:
		log.Printf("unhandled message type %q from broker ignored", msg.MsgType())
	}
}
