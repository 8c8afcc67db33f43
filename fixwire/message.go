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

// Package fixwire frames, parses, and serializes FIX 4.2 messages.
//
// A message on the wire is a sequence of tag=value pairs delimited by the
// SOH byte (0x01), wrapped in the standard envelope: BeginString (8),
// BodyLength (9), body, CheckSum (10). This package owns the envelope;
// typed views of the body live in package fixmsg.
package fixwire

import (
	"strconv"

	"sim-broker-go/constants"
)

// Field is a single tag=value pair.
type Field struct {
	Tag   constants.Tag
	Value string
}

// Message is a decoded FIX message: the fields between BodyLength and
// CheckSum, in wire order. The envelope tags (8, 9, 10) are validated and
// stripped by the parser and recomputed by Encode; they never appear here.
//
// Repeated tags keep first-occurrence semantics on lookup (this system
// uses no repeating groups), but every field is retained in order so that
// encode-then-decode round-trips.
type Message struct {
	fields []Field
	index  map[constants.Tag]int
}

// NewMessage returns an empty message.
func NewMessage() *Message {
	return &Message{index: make(map[constants.Tag]int)}
}

// Set appends tag=value, or replaces the value of the first occurrence if
// the tag is already present.
func (m *Message) Set(tag constants.Tag, value string) *Message {
	if i, ok := m.index[tag]; ok {
		m.fields[i].Value = value
		return m
	}
	m.index[tag] = len(m.fields)
	m.fields = append(m.fields, Field{Tag: tag, Value: value})
	return m
}

// SetInt appends or replaces tag with a decimal integer value.
func (m *Message) SetInt(tag constants.Tag, value int) *Message {
	return m.Set(tag, strconv.Itoa(value))
}

// SetFloat appends or replaces tag with a decimal value. Trailing zeros
// are trimmed the way strconv's shortest representation does it, which is
// also what the reference prices in the symbol universe carry.
func (m *Message) SetFloat(tag constants.Tag, value float64) *Message {
	return m.Set(tag, strconv.FormatFloat(value, 'f', -1, 64))
}

// Get returns the first occurrence of tag.
func (m *Message) Get(tag constants.Tag) (string, bool) {
	i, ok := m.index[tag]
	if !ok {
		return "", false
	}
	return m.fields[i].Value, true
}

// GetOrEmpty returns the first occurrence of tag, or "" when absent.
func (m *Message) GetOrEmpty(tag constants.Tag) string {
	v, _ := m.Get(tag)
	return v
}

// GetInt returns tag parsed as an integer.
func (m *Message) GetInt(tag constants.Tag) (int, bool) {
	v, ok := m.Get(tag)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// GetFloat returns tag parsed as a decimal.
func (m *Message) GetFloat(tag constants.Tag) (float64, bool) {
	v, ok := m.Get(tag)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Has reports whether tag is present.
func (m *Message) Has(tag constants.Tag) bool {
	_, ok := m.index[tag]
	return ok
}

// MsgType returns tag 35, or "" when absent.
func (m *Message) MsgType() string {
	return m.GetOrEmpty(constants.TagMsgType)
}

// Fields returns the fields in wire order. The returned slice is the
// message's backing storage; callers must not mutate it.
func (m *Message) Fields() []Field {
	return m.fields
}

// Len returns the number of fields.
func (m *Message) Len() int {
	return len(m.fields)
}
