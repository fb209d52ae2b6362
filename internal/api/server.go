// Package api is the local bridge surface for host applications that cannot
// link the library directly: browse sessions, summaries, stored captures, and
// a live SSE event stream.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/swisscows/browsebridge/internal/bridge"
	"github.com/swisscows/browsebridge/internal/protocol"
	"github.com/swisscows/browsebridge/internal/relay"
	"github.com/swisscows/browsebridge/internal/snapshot"
)

// Service is the bridge surface the handlers depend on.
type Service interface {
	Browse(ctx context.Context, req protocol.Request) (*bridge.BrowseResult, error)
	Summarize(ctx context.Context, website, language string) string
	ListCaptures(ctx context.Context) ([]snapshot.CaptureMeta, error)
	GetCapture(ctx context.Context, id string) (snapshot.CaptureMeta, error)
	ReadCaptureImage(ctx context.Context, id string) ([]byte, string, error)
	DeleteCapture(ctx context.Context, id string) error
}

// NewServer builds the bridge HTTP handler. broker may be nil, in which case
// the /events stream is not mounted.
func NewServer(svc Service, broker *relay.Broker) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("BrowseBridge API", "1.0.0")
	api := humachi.New(router, cfg)

	registerBrowseHandlers(api, svc)
	registerCaptureHandlers(api, svc)
	registerHealthHandlers(api)

	if broker != nil {
		router.Get("/events", relay.SSEHandler(broker))
	}

	return router
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, snapshot.ErrNotFound):
		return huma.Error404NotFound(err.Error())
	case errors.Is(err, bridge.ErrNoStore):
		return huma.Error409Conflict(err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return huma.Error504GatewayTimeout(err.Error())
	default:
		return huma.Error500InternalServerError(err.Error())
	}
}
