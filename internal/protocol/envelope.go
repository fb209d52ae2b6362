// Package protocol defines the tagged-payload wire format spoken with the
// Puppet browse service: a discriminant tag plus a tag-dependent data field.
package protocol

import "encoding/json"

// Tag discriminates the payload shape of a tagged message.
type Tag string

const (
	TagTracker    Tag = "tracker"
	TagScreenshot Tag = "screenshot"
	TagError      Tag = "error"
	TagClose      Tag = "close"
)

// Known reports whether the tag is part of the closed protocol set.
// Messages with unknown tags are dropped, never rejected.
func (t Tag) Known() bool {
	switch t {
	case TagTracker, TagScreenshot, TagError, TagClose:
		return true
	}
	return false
}

// Envelope is an outbound tagged payload. Data is marshaled as-is; the tag
// fully determines its shape on the receiving side.
type Envelope struct {
	Type Tag `json:"type"`
	Data any `json:"data"`
}

// Wrap pairs a value with its tag. Pure and total; the sender is trusted to
// match data shape to tag.
func Wrap(data any, tag Tag) Envelope {
	return Envelope{Type: tag, Data: data}
}

// Message is an inbound tagged payload. Data stays raw until the tag is
// inspected; no validation happens at this layer.
type Message struct {
	Type Tag             `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Unwrap returns the tag and raw data. A direct field read, kept as a method
// so callers never depend on the envelope's JSON layout.
func (m Message) Unwrap() (Tag, json.RawMessage) {
	return m.Type, m.Data
}
