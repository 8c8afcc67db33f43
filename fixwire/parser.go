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

package fixwire

import (
	"bytes"
	"errors"
	"strconv"

	"sim-broker-go/constants"
)

// Framing errors. All of them are fatal to the session that produced the
// bytes; the caller is expected to close the connection.
var (
	ErrBadBeginString = errors.New("fixwire: BeginString is not FIX.4.2")
	ErrBadBodyLength  = errors.New("fixwire: invalid BodyLength")
	ErrBadChecksum    = errors.New("fixwire: checksum mismatch")
	ErrMalformedField = errors.New("fixwire: malformed tag=value field")
)

// maxBodyLength bounds tag 9 so a corrupt length cannot make the parser
// buffer an unbounded amount of data waiting for a frame that never ends.
const maxBodyLength = 1 << 16

const soh = byte(0x01)

// beginStringField is the exact first field of every well-formed frame.
var beginStringField = []byte("8=FIX.4.2\x01")

// Parser is a stream parser over an append-only byte buffer. Feed it raw
// socket reads with Append and drain complete messages with Next; bytes
// belonging to a partial frame are retained until the rest arrives.
//
// Parsing is a single pass per frame: validate the envelope, then split
// the body into tag=value fields, the same raw scan the field extraction
// uses everywhere else in this codebase.
type Parser struct {
	buf []byte
}

// NewParser returns an empty stream parser.
func NewParser() *Parser {
	return &Parser{}
}

// Append adds raw bytes received from the peer.
func (p *Parser) Append(data []byte) {
	p.buf = append(p.buf, data...)
}

// Pending returns the number of buffered, not-yet-consumed bytes.
func (p *Parser) Pending() int {
	return len(p.buf)
}

// Next extracts the next complete message from the buffer. It returns
// (nil, nil) when the buffer does not yet hold a complete frame. Any
// non-nil error is a framing error and the session must be closed; the
// parser's state is undefined afterwards.
func (p *Parser) Next() (*Message, error) {
	if len(p.buf) == 0 {
		return nil, nil
	}

	// BeginString: the frame must open with the exact bytes 8=FIX.4.2<SOH>.
	// A shorter buffer that is still a prefix of it is just incomplete.
	if len(p.buf) < len(beginStringField) {
		if bytes.HasPrefix(beginStringField, p.buf) {
			return nil, nil
		}
		return nil, ErrBadBeginString
	}
	if !bytes.HasPrefix(p.buf, beginStringField) {
		return nil, ErrBadBeginString
	}

	// BodyLength: 9=<n><SOH> immediately follows.
	rest := p.buf[len(beginStringField):]
	lenEnd := bytes.IndexByte(rest, soh)
	if lenEnd == -1 {
		if len(rest) > 2 && !bytes.HasPrefix(rest, []byte("9=")) {
			return nil, ErrBadBodyLength
		}
		return nil, nil
	}
	lenField := rest[:lenEnd]
	if !bytes.HasPrefix(lenField, []byte("9=")) {
		return nil, ErrBadBodyLength
	}
	bodyLen, err := strconv.Atoi(string(lenField[2:]))
	if err != nil || bodyLen < 0 || bodyLen > maxBodyLength {
		return nil, ErrBadBodyLength
	}

	// The body spans bodyLen bytes after the SOH terminating tag 9, and a
	// checksum field 10=NNN<SOH> (7 bytes) follows it.
	bodyStart := len(beginStringField) + lenEnd + 1
	frameEnd := bodyStart + bodyLen
	const checksumFieldLen = 7
	if len(p.buf) < frameEnd+checksumFieldLen {
		return nil, nil
	}

	csField := p.buf[frameEnd : frameEnd+checksumFieldLen]
	if !bytes.HasPrefix(csField, []byte("10=")) || csField[6] != soh {
		return nil, ErrBadChecksum
	}
	wantSum, err := strconv.Atoi(string(csField[3:6]))
	if err != nil {
		return nil, ErrBadChecksum
	}
	if checksum(p.buf[:frameEnd]) != wantSum {
		return nil, ErrBadChecksum
	}

	msg, err := parseBody(p.buf[bodyStart:frameEnd])
	if err != nil {
		return nil, err
	}

	// Consume the frame, retaining the unparsed remainder.
	p.buf = p.buf[frameEnd+checksumFieldLen:]
	return msg, nil
}

// parseBody splits SOH-delimited tag=value pairs into a Message.
func parseBody(body []byte) (*Message, error) {
	msg := NewMessage()
	pos := 0
	for pos < len(body) {
		eq := bytes.IndexByte(body[pos:], '=')
		if eq == -1 {
			return nil, ErrMalformedField
		}
		eq += pos

		tag, err := strconv.Atoi(string(body[pos:eq]))
		if err != nil || tag <= 0 {
			return nil, ErrMalformedField
		}

		valStart := eq + 1
		end := bytes.IndexByte(body[valStart:], soh)
		if end == -1 {
			return nil, ErrMalformedField
		}
		value := string(body[valStart : valStart+end])

		// First occurrence wins on lookup; later duplicates are dropped
		// rather than overwriting (no repeating groups in this dialect).
		if !msg.Has(constants.Tag(tag)) {
			msg.Set(constants.Tag(tag), value)
		}

		pos = valStart + end + 1
	}
	return msg, nil
}

// checksum is the modulo-256 sum of all bytes up to and including the SOH
// preceding the checksum field.
func checksum(frame []byte) int {
	sum := 0
	for _, b := range frame {
		sum += int(b)
	}
	return sum % 256
}
