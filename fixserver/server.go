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

// Package fixserver is the FIX 4.2 session acceptor: it owns the TCP
// listener, the per-connection reader goroutines, the session registry,
// and the execution report router that correlates lifecycle events with
// live client sessions.
//
// Message Processing Flow
//
//	accept loop ──► handleConn (one goroutine per connection)
//	                  │  framing: fixwire.Parser over raw reads
//	                  ▼
//	                dispatch by MsgType
//	                  ├─ A  Logon      → register peer, Logon reply
//	                  ├─ 0  Heartbeat  → echo when TestReqID present
//	                  ├─ 1  TestRequest→ Heartbeat echo
//	                  ├─ D  NewOrderSingle     → lifecycle.Submit → report
//	                  ├─ F  OrderCancelRequest → lifecycle.Cancel → report
//	                  └─ *  known-but-unhandled → log and ignore
//
// Framing errors close the session; schema errors answer on the wire and
// leave the session up.
package fixserver

import (
	"errors"
	"io"
	"log"
	"net"
	"sync"

	"sim-broker-go/constants"
	"sim-broker-go/database"
	"sim-broker-go/fixwire"
	"sim-broker-go/lifecycle"
	"sim-broker-go/metrics"
)

// Config holds the acceptor's knobs.
type Config struct {
	ListenAddr   string // e.g. ":5001"
	BrokerCompID string // served as SenderCompID to every peer
	HeartBtInt   int    // heartbeat interval offered at Logon, seconds
}

// Server is the FIX acceptor.
type Server struct {
	cfg    Config
	engine *lifecycle.Engine
	db     *database.BrokerDb
	reg    *sessionRegistry
	router *Router

	ln   net.Listener
	done chan struct{}
	wg   sync.WaitGroup
}

// NewServer creates an acceptor over the given lifecycle engine and
// store. Call Start to begin listening.
func NewServer(cfg Config, engine *lifecycle.Engine, db *database.BrokerDb) *Server {
	reg := newSessionRegistry()
	return &Server{
		cfg:    cfg,
		engine: engine,
		db:     db,
		reg:    reg,
		router: newRouter(reg, cfg.BrokerCompID),
		done:   make(chan struct{}),
	}
}

// Router returns the execution report router bound to this server's
// session registry. Admin workers hand lifecycle events to it.
func (s *Server) Router() *Router {
	return s.router
}

// Start binds the listener and runs the accept loop in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	s.ln = ln
	log.Printf("FIX server listening on %s", ln.Addr())

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Addr returns the bound listener address (useful with ":0").
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				log.Printf("accept error: %v", err)
				continue
			}
		}
		log.Printf("client connected from %s", conn.RemoteAddr())
		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

// handleConn runs the reader for one connection: frame, decode, dispatch.
// The first message must be a Logon; framing errors are fatal to the
// session.
func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()

	sess := newSession(conn)
	metrics.IncSessionsActive()
	defer func() {
		s.reg.remove(sess)
		sess.close()
		metrics.DecSessionsActive()
		log.Printf("client %s disconnected", conn.RemoteAddr())
	}()

	parser := fixwire.NewParser()
	buf := make([]byte, 4096)
	loggedOn := false

	for {
		n, err := conn.Read(buf)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				log.Printf("read error from %s: %v", conn.RemoteAddr(), err)
			}
			return
		}
		parser.Append(buf[:n])

		for {
			msg, err := parser.Next()
			if err != nil {
				log.Printf("framing error from %s: %v; closing session", conn.RemoteAddr(), err)
				return
			}
			if msg == nil {
				break
			}

			metrics.IncMessagesReceived(msg.MsgType())

			if !loggedOn {
				if ok := s.handleLogon(sess, msg); !ok {
					return
				}
				loggedOn = true
				continue
			}

			if ok := s.dispatch(sess, msg); !ok {
				return
			}
		}
	}
}

// dispatch routes a post-logon message. A false return closes the session.
func (s *Server) dispatch(sess *Session, msg *fixwire.Message) bool {
	switch msg.MsgType() {
	case constants.MsgTypeHeartbeat:
		s.handleHeartbeat(sess, msg)
	case constants.MsgTypeTestRequest:
		s.handleTestRequest(sess, msg)
	case constants.MsgTypeNewOrderSingle:
		s.handleNewOrderSingle(sess, msg)
	case constants.MsgTypeOrderCancelRequest:
		s.handleCancelRequest(sess, msg)
	case constants.MsgTypeLogon:
		log.Printf("duplicate Logon from %s ignored", sess.PeerID())
	default:
		log.Printf("unhandled message type %q from %s ignored", msg.MsgType(), sess.PeerID())
	}
	return true
}

// Stop closes the listener and every live connection, then waits for the
// reader goroutines to drain. In-flight database transactions complete
// on their own workers.
func (s *Server) Stop() {
	close(s.done)
	if s.ln != nil {
		_ = s.ln.Close()
	}
	for _, sess := range s.reg.all() {
		sess.close()
	}
	s.wg.Wait()
	log.Printf("FIX server stopped")
}
