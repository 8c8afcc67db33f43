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
	"net"
	"sync"
	"time"

	"sim-broker-go/fixwire"
	"sim-broker-go/metrics"
)

// Session is the transient per-connection state: the peer identity
// established by Logon and the outbound sequence counter. It lives only
// for the duration of the TCP connection; sequence numbers reset to 1 on
// every connect.
type Session struct {
	conn net.Conn

	// writeMu serializes the write path: the sequence number is assigned
	// and the frame hits the socket under the same lock, so two reports
	// to the same client can neither interleave at byte level nor invert
	// their sequence numbers.
	writeMu     sync.Mutex
	outboundSeq int

	mu            sync.Mutex
	peerID        string
	lastHeartbeat time.Time
}

func newSession(conn net.Conn) *Session {
	return &Session{conn: conn, outboundSeq: 1}
}

// PeerID returns the SenderCompID recorded at Logon, or "" before the
// handshake completes.
func (s *Session) PeerID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.peerID
}

func (s *Session) setPeerID(id string) {
	s.mu.Lock()
	s.peerID = id
	s.mu.Unlock()
}

func (s *Session) noteHeartbeat(t time.Time) {
	s.mu.Lock()
	s.lastHeartbeat = t
	s.mu.Unlock()
}

// Send stamps m with the session's next outbound sequence number and the
// current UTC SendingTime, encodes it, and writes the frame.
func (s *Session) Send(m *fixwire.Message) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	fixwire.Stamp(m, s.outboundSeq, time.Now())
	if _, err := s.conn.Write(fixwire.Encode(m)); err != nil {
		return err
	}
	s.outboundSeq++
	metrics.IncMessagesSent(m.MsgType())
	return nil
}

// close tears down the connection. Safe to call more than once.
func (s *Session) close() {
	_ = s.conn.Close()
}

// sessionRegistry maps peer ids to their live sessions. One peer may
// connect multiple times; lookup returns the earliest-registered live
// session (tie-break: first match wins).
type sessionRegistry struct {
	mu     sync.RWMutex
	byPeer map[string][]*Session
}

func newSessionRegistry() *sessionRegistry {
	return &sessionRegistry{byPeer: make(map[string][]*Session)}
}

func (r *sessionRegistry) add(s *Session) {
	peer := s.PeerID()
	r.mu.Lock()
	r.byPeer[peer] = append(r.byPeer[peer], s)
	r.mu.Unlock()
}

func (r *sessionRegistry) remove(s *Session) {
	peer := s.PeerID()
	if peer == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := r.byPeer[peer]
	for i, candidate := range sessions {
		if candidate == s {
			r.byPeer[peer] = append(sessions[:i], sessions[i+1:]...)
			break
		}
	}
	if len(r.byPeer[peer]) == 0 {
		delete(r.byPeer, peer)
	}
}

// lookup returns any one live session for peer, or nil.
func (r *sessionRegistry) lookup(peer string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if sessions := r.byPeer[peer]; len(sessions) > 0 {
		return sessions[0]
	}
	return nil
}

// all returns a snapshot of every live session.
func (r *sessionRegistry) all() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Session
	for _, sessions := range r.byPeer {
		out = append(out, sessions...)
	}
	return out
}
