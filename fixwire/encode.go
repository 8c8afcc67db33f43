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
	"strconv"
	"strings"
	"time"

	"sim-broker-go/constants"
)

// Encode serializes m into a complete FIX 4.2 frame: BeginString and
// BodyLength are prepended, CheckSum is appended, both computed over the
// message's fields in their current order.
func Encode(m *Message) []byte {
	var body strings.Builder
	for _, f := range m.Fields() {
		body.WriteString(strconv.Itoa(int(f.Tag)))
		body.WriteByte('=')
		body.WriteString(f.Value)
		body.WriteByte(soh)
	}

	var frame strings.Builder
	frame.Grow(len(beginStringField) + 16 + body.Len() + 8)
	frame.Write(beginStringField)
	frame.WriteString("9=")
	frame.WriteString(strconv.Itoa(body.Len()))
	frame.WriteByte(soh)
	frame.WriteString(body.String())

	sum := checksum([]byte(frame.String()))
	frame.WriteString("10=")
	frame.WriteString(formatChecksum(sum))
	frame.WriteByte(soh)

	return []byte(frame.String())
}

// Stamp sets the outbound sequence number and SendingTime (UTC) on m.
// Sessions call this under their write lock immediately before Encode so
// that sequence numbers hit the wire in the order they were assigned.
func Stamp(m *Message, seqNum int, now time.Time) {
	m.SetInt(constants.TagMsgSeqNum, seqNum)
	m.Set(constants.TagSendingTime, now.UTC().Format(constants.FixTimeFormat))
}

// formatChecksum renders a checksum as the three-digit decimal FIX wants.
func formatChecksum(sum int) string {
	s := strconv.Itoa(sum)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}
