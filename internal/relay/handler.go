package relay

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/swisscows/browsebridge/internal/protocol"
)

// SSEHandler streams broker events as Server-Sent Events, one SSE event per
// tagged message with the tag as the event name. Clients may narrow the
// stream with ?tags=tracker,screenshot.
func SSEHandler(broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming not supported", http.StatusInternalServerError)
			return
		}

		var tagFilter map[protocol.Tag]bool
		if q := r.URL.Query().Get("tags"); q != "" {
			tagFilter = make(map[protocol.Tag]bool)
			for _, t := range strings.Split(q, ",") {
				if t = strings.TrimSpace(t); t != "" {
					tagFilter[protocol.Tag(t)] = true
				}
			}
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		id, ch := broker.Subscribe()
		defer broker.Unsubscribe(id)

		for {
			select {
			case <-r.Context().Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				if tagFilter != nil && !tagFilter[evt.Tag] {
					continue
				}
				fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Tag, evt.Payload)
				flusher.Flush()
			}
		}
	}
}
