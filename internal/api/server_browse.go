package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/swisscows/browsebridge/internal/protocol"
	"github.com/swisscows/browsebridge/internal/snapshot"
)

const defaultBrowseTimeoutMS = 60000

func registerBrowseHandlers(api huma.API, svc Service) {
	type browseInput struct {
		TimeoutMS int `query:"timeout_ms" doc:"Session timeout in milliseconds" default:"60000"`
		Body      struct {
			URL          string `json:"url" doc:"Page to render"`
			ImageType    string `json:"imageType" doc:"Screenshot format, e.g. jpeg"`
			ImageQuality int    `json:"imageQuality" minimum:"0" maximum:"100"`
			Width        int    `json:"width"`
			Height       int    `json:"height"`
			WaitForEvent string `json:"waitForEvent" doc:"Renderer wait condition, e.g. networkidle0"`
		}
	}
	type browseOutput struct {
		Body struct {
			Trackers     []protocol.Tracker    `json:"trackers"`
			Capture      *snapshot.CaptureMeta `json:"capture,omitempty"`
			ServiceError json.RawMessage       `json:"service_error,omitempty"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "browse", Method: http.MethodPost, Path: "/api/v1/browse", Summary: "Render a page off-device and collect tagged results", Tags: []string{"Browse"}},
		func(ctx context.Context, input *browseInput) (*browseOutput, error) {
			req := protocol.Request{
				URL:          input.Body.URL,
				ImageType:    input.Body.ImageType,
				ImageQuality: input.Body.ImageQuality,
				Width:        input.Body.Width,
				Height:       input.Body.Height,
				WaitForEvent: input.Body.WaitForEvent,
			}
			if err := req.Validate(); err != nil {
				return nil, huma.Error400BadRequest(err.Error())
			}

			timeout := time.Duration(input.TimeoutMS) * time.Millisecond
			if timeout <= 0 {
				timeout = defaultBrowseTimeoutMS * time.Millisecond
			}
			browseCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			result, err := svc.Browse(browseCtx, req)
			if err != nil {
				return nil, mapErr(err)
			}

			out := &browseOutput{}
			out.Body.Trackers = result.Trackers
			if out.Body.Trackers == nil {
				out.Body.Trackers = []protocol.Tracker{}
			}
			out.Body.Capture = result.Capture
			out.Body.ServiceError = result.ServiceError
			return out, nil
		})

	type summaryInput struct {
		URL      string `query:"url" required:"true" doc:"Page to summarize"`
		Language string `query:"language" default:"en"`
	}
	type summaryOutput struct {
		Body struct {
			Summary string `json:"summary"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "summarize", Method: http.MethodGet, Path: "/api/v1/summary", Summary: "Fetch a page summary", Tags: []string{"Summary"}},
		func(ctx context.Context, input *summaryInput) (*summaryOutput, error) {
			out := &summaryOutput{}
			// Missing summaries degrade to an empty string, never an error.
			out.Body.Summary = svc.Summarize(ctx, input.URL, input.Language)
			return out, nil
		})
}
