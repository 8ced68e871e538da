package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/dkeye/Rooms/internal/core"
)

var ErrNoEvent = errors.New("envelope without event")

// RawMessage keeps a payload undecoded, the way it arrived.
type RawMessage = json.RawMessage

// Envelope is the frame shape in both directions.
type Envelope struct {
	Event string     `json:"event"`
	Data  RawMessage `json:"data,omitempty"`
}

// Encode marshals payload into an envelope frame.
func Encode(event string, payload any) (core.Frame, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", event, err)
	}
	b, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return nil, fmt.Errorf("encoding %s envelope: %w", event, err)
	}
	return core.Frame(b), nil
}

// Decode reads the envelope of an inbound frame; Data stays raw.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decoding envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, ErrNoEvent
	}
	return env, nil
}

// DecodeData unmarshals the envelope payload into v. A missing payload
// leaves v untouched.
func DecodeData(data RawMessage, v any) error {
	if IsEmpty(data) {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding payload: %w", err)
	}
	return nil
}

// IsEmpty reports whether raw carries no value (absent or null).
func IsEmpty(raw RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Timestamp is the wire time format, Unix milliseconds.
func Timestamp(t time.Time) int64 { return t.UnixMilli() }
