package puppet

import (
	"encoding/json"
	"log/slog"

	"github.com/swisscows/browsebridge/internal/protocol"
)

// Handlers names a callback per tag. All fields are optional; a message whose
// tag has no handler is dropped without error, so callers only register the
// tags they care about.
//
// Tracker and Screenshot receive the decoded domain value. Error and Close
// payloads are implementation-defined on the service side and are passed
// through raw, untouched. Every handler also gets the raw message.
type Handlers struct {
	Tracker    func(protocol.Tracker, protocol.Message)
	Screenshot func(*protocol.Screenshot, protocol.Message)
	Error      func(json.RawMessage, protocol.Message)
	Close      func(json.RawMessage, protocol.Message)
}

// Dispatch routes one inbound message to its handler. The switch is
// exhaustive over the closed tag set; anything else is dropped silently
// (debug-logged only). Dispatch never returns an error and never panics on
// malformed data.
func Dispatch(msg protocol.Message, h Handlers) {
	switch msg.Type {
	case protocol.TagTracker:
		if h.Tracker == nil {
			dropped(msg.Type, "no handler")
			return
		}
		var t protocol.Tracker
		if err := json.Unmarshal(msg.Data, &t); err != nil {
			slog.Debug("puppet: tracker payload undecodable", "error", err)
			return
		}
		h.Tracker(t, msg)

	case protocol.TagScreenshot:
		if h.Screenshot == nil {
			dropped(msg.Type, "no handler")
			return
		}
		var data string
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			slog.Debug("puppet: screenshot payload undecodable", "error", err)
			return
		}
		h.Screenshot(protocol.NewScreenshot(data), msg)

	case protocol.TagError:
		if h.Error == nil {
			dropped(msg.Type, "no handler")
			return
		}
		h.Error(msg.Data, msg)

	case protocol.TagClose:
		if h.Close == nil {
			dropped(msg.Type, "no handler")
			return
		}
		h.Close(msg.Data, msg)

	default:
		dropped(msg.Type, "unknown tag")
	}
}

func dropped(tag protocol.Tag, reason string) {
	slog.Debug("puppet: message dropped", "tag", string(tag), "reason", reason)
}
