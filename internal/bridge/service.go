// Package bridge ties the client pieces together: one Puppet session per
// browse call, summary passthrough, capture persistence, and relay fan-out.
package bridge

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/swisscows/browsebridge/internal/config"
	"github.com/swisscows/browsebridge/internal/protocol"
	"github.com/swisscows/browsebridge/internal/puppet"
	"github.com/swisscows/browsebridge/internal/relay"
	"github.com/swisscows/browsebridge/internal/snapshot"
	"github.com/swisscows/browsebridge/internal/summarize"
)

// Service is the seam the bridge API and the CLIs sit on. Store and broker
// are optional; a nil store skips persistence and a nil broker skips fan-out.
type Service struct {
	cfg        *config.Config
	summarizer *summarize.Client
	store      *snapshot.Store
	broker     *relay.Broker
	streams    *relay.Config
}

// NewService wires a Service from loaded config and optional collaborators.
func NewService(cfg *config.Config, store *snapshot.Store, broker *relay.Broker, streams *relay.Config) *Service {
	httpClient := &http.Client{Timeout: time.Duration(cfg.SummarizeTimeoutMS) * time.Millisecond}
	if streams == nil {
		streams = relay.DefaultConfig()
	}
	return &Service{
		cfg:        cfg,
		summarizer: summarize.NewClient(cfg.SummarizerURL, httpClient),
		store:      store,
		broker:     broker,
		streams:    streams,
	}
}

// BrowseResult aggregates everything one Puppet session streamed back.
type BrowseResult struct {
	Trackers   []protocol.Tracker
	Screenshot *protocol.Screenshot
	Capture    *snapshot.CaptureMeta
	// ServiceError is the raw payload of an "error" message, untouched.
	// The session still ran to completion; interpreting it is the caller's
	// business.
	ServiceError json.RawMessage
}

// Browse runs one render session: connect, send the request, collect tagged
// results until the service says close (or ctx expires), then shut the
// connection down. Messages are handled strictly in delivery order.
func (s *Service) Browse(ctx context.Context, req protocol.Request) (*BrowseResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var (
		mu       sync.Mutex
		result   BrowseResult
		done     = make(chan struct{})
		doneOnce sync.Once
	)

	handlers := puppet.Handlers{
		Tracker: func(t protocol.Tracker, msg protocol.Message) {
			mu.Lock()
			result.Trackers = append(result.Trackers, t)
			mu.Unlock()
			s.forward(msg)
		},
		Screenshot: func(shot *protocol.Screenshot, msg protocol.Message) {
			mu.Lock()
			result.Screenshot = shot
			mu.Unlock()
			s.forward(msg)
		},
		Error: func(data json.RawMessage, msg protocol.Message) {
			mu.Lock()
			result.ServiceError = data
			mu.Unlock()
			s.forward(msg)
		},
		Close: func(_ json.RawMessage, msg protocol.Message) {
			s.forward(msg)
			doneOnce.Do(func() { close(done) })
		},
	}

	conn := puppet.NewConn(s.cfg.PuppetURL, handlers)
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := conn.Close(); err != nil {
			slog.Debug("browse: close failed", "error", err)
		}
	}()

	conn.Send(req)

	select {
	case <-done:
	case <-ctx.Done():
		return nil, fmt.Errorf("browse %s: %w", req.URL, ctx.Err())
	}

	mu.Lock()
	defer mu.Unlock()

	if result.Screenshot != nil && s.store != nil {
		meta := snapshot.CaptureMeta{
			ID:        newCaptureID(),
			PageURL:   req.URL,
			Format:    req.ImageType,
			Width:     req.Width,
			Height:    req.Height,
			WaitEvent: req.WaitForEvent,
			CreatedAt: time.Now().UTC(),
		}
		if err := s.store.SaveDataURI(meta, result.Screenshot.Data); err != nil {
			slog.Warn("browse: capture not persisted", "url", req.URL, "error", err)
		} else {
			result.Capture = &meta
		}
	}

	out := result
	return &out, nil
}

// Summarize fetches a page summary. Failures degrade to an empty summary;
// the miss is logged, never propagated.
func (s *Service) Summarize(ctx context.Context, website, language string) string {
	summary, err := s.summarizer.Summarize(ctx, website, language)
	if err != nil {
		slog.Debug("summary unavailable", "url", website, "error", err)
		return ""
	}
	return summary
}

// ErrNoStore is returned by capture accessors when the service was built
// without a capture store.
var ErrNoStore = errors.New("capture store disabled")

// ListCaptures returns stored capture metadata, newest first.
func (s *Service) ListCaptures(ctx context.Context) ([]snapshot.CaptureMeta, error) {
	_ = ctx
	if s.store == nil {
		return nil, ErrNoStore
	}
	return s.store.List()
}

// GetCapture returns one capture's metadata.
func (s *Service) GetCapture(ctx context.Context, id string) (snapshot.CaptureMeta, error) {
	_ = ctx
	if s.store == nil {
		return snapshot.CaptureMeta{}, ErrNoStore
	}
	return s.store.Get(id)
}

// ReadCaptureImage returns the stored image bytes and their format.
func (s *Service) ReadCaptureImage(ctx context.Context, id string) ([]byte, string, error) {
	_ = ctx
	if s.store == nil {
		return nil, "", ErrNoStore
	}
	return s.store.ReadImage(id)
}

// DeleteCapture removes a capture and its sidecar.
func (s *Service) DeleteCapture(ctx context.Context, id string) error {
	_ = ctx
	if s.store == nil {
		return ErrNoStore
	}
	return s.store.Delete(id)
}

// forward publishes a tagged message to local subscribers when its tag is
// enabled in the streams config.
func (s *Service) forward(msg protocol.Message) {
	if s.broker == nil || !s.streams.Forwards(msg.Type) {
		return
	}
	s.broker.PublishMessage(msg)
}

// newCaptureID returns a random v4 UUID.
func newCaptureID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
