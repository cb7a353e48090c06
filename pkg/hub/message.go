// Package hub provides a websocket broadcast hub using channel-based
// fan-out: one run loop owns the client set and every client has a
// buffered send queue drained by its own write pump.
package hub

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gofiber/websocket/v2"
)

// ErrUnknownFormat is returned by ParseFormat.
var ErrUnknownFormat = errors.New("hub: unknown wire format")

// Format is the wire format a client receives.
type Format int

const (
	// FormatJSON sends JSON text frames.
	FormatJSON Format = iota
	// FormatBinary sends binary frames, falling back to JSON for
	// messages without a binary encoding.
	FormatBinary
)

// ParseFormat parses "json" (or empty) and "binary".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "binary":
		return FormatBinary, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

func (f Format) String() string {
	if f == FormatBinary {
		return "binary"
	}
	return "json"
}

// Message is one broadcast payload, possibly in both encodings.
type Message struct {
	Text   []byte
	Binary []byte
}

// NewJSONMessage creates a message from pre-encoded JSON.
func NewJSONMessage(data []byte) Message {
	return Message{Text: data}
}

// NewMessage encodes v as JSON and, if it implements
// encoding.BinaryMarshaler, in binary as well.
func NewMessage(v any) (Message, error) {
	var m Message
	var err error
	if m.Text, err = json.Marshal(v); err != nil {
		return Message{}, err
	}
	if bm, ok := v.(encoding.BinaryMarshaler); ok {
		if m.Binary, err = bm.MarshalBinary(); err != nil {
			return Message{}, err
		}
	}
	return m, nil
}

// payload picks the websocket frame for a client format. ok is false if
// the message has nothing to send.
func (m Message) payload(f Format) (wsType int, data []byte, ok bool) {
	if f == FormatBinary && m.Binary != nil {
		return websocket.BinaryMessage, m.Binary, true
	}
	if m.Text != nil {
		return websocket.TextMessage, m.Text, true
	}
	return 0, nil, false
}
