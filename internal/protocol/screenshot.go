package protocol

import (
	"context"
	"sync"
	"time"

	"github.com/swisscows/browsebridge/internal/imgprobe"
)

// probeTimeout caps the background validity check so a dead image URL cannot
// pin a goroutine past the session's useful life.
const probeTimeout = 15 * time.Second

// probeFn is swapped out by tests; production always points at imgprobe.
var probeFn = imgprobe.Test

// Screenshot is a captured page image received from the browse service.
// Data is the wire value (usually a data: URI). The loaded flag starts false
// and transitions at most once, set only by the validity probe started at
// construction; it is local state and never transmitted.
type Screenshot struct {
	Data string

	mu     sync.Mutex
	loaded bool
	done   chan struct{}
}

// NewScreenshot wraps raw image data and kicks off the asynchronous validity
// probe. The probe is fire-and-forget: it never blocks protocol flow and its
// failure only leaves the flag false.
func NewScreenshot(data string) *Screenshot {
	s := &Screenshot{Data: data, done: make(chan struct{})}
	go s.probe(probeFn)
	return s
}

func (s *Screenshot) probe(fn func(context.Context, string) bool) {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	ok := fn(ctx, s.Data)

	s.mu.Lock()
	s.loaded = ok
	s.mu.Unlock()
	close(s.done)
}

// Loaded reports the probe result so far. False until the probe finishes,
// and stays false when the data was not a decodable image.
func (s *Screenshot) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// WaitLoaded blocks until the probe settles or ctx expires, then reports the
// flag. Callers that only want the eventual value use this instead of polling.
func (s *Screenshot) WaitLoaded(ctx context.Context) bool {
	select {
	case <-s.done:
		return s.Loaded()
	case <-ctx.Done():
		return s.Loaded()
	}
}
