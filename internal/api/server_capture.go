package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/swisscows/browsebridge/internal/snapshot"
)

func registerCaptureHandlers(api huma.API, svc Service) {
	type captureIDInput struct {
		ID string `path:"id" doc:"Capture UUID"`
	}

	type listOutput struct {
		Body struct {
			Captures []snapshot.CaptureMeta `json:"captures"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-captures", Method: http.MethodGet, Path: "/api/v1/captures", Summary: "List stored page captures", Tags: []string{"Captures"}},
		func(ctx context.Context, input *struct{}) (*listOutput, error) {
			metas, err := svc.ListCaptures(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &listOutput{}
			out.Body.Captures = metas
			return out, nil
		})

	type metaOutput struct {
		Body snapshot.CaptureMeta
	}
	huma.Register(api, huma.Operation{OperationID: "get-capture", Method: http.MethodGet, Path: "/api/v1/captures/{id}", Summary: "Get capture metadata", Tags: []string{"Captures"}},
		func(ctx context.Context, input *captureIDInput) (*metaOutput, error) {
			meta, err := svc.GetCapture(ctx, input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &metaOutput{Body: meta}, nil
		})

	type imageOutput struct {
		ContentType string `header:"Content-Type"`
		Body        []byte
	}
	huma.Register(api, huma.Operation{OperationID: "get-capture-image", Method: http.MethodGet, Path: "/api/v1/captures/{id}/image", Summary: "Download the capture image", Tags: []string{"Captures"}},
		func(ctx context.Context, input *captureIDInput) (*imageOutput, error) {
			data, format, err := svc.ReadCaptureImage(ctx, input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			return &imageOutput{ContentType: "image/" + format, Body: data}, nil
		})

	huma.Register(api, huma.Operation{OperationID: "delete-capture", Method: http.MethodDelete, Path: "/api/v1/captures/{id}", Summary: "Delete a capture", Tags: []string{"Captures"}},
		func(ctx context.Context, input *captureIDInput) (*struct{}, error) {
			if err := svc.DeleteCapture(ctx, input.ID); err != nil {
				return nil, mapErr(err)
			}
			return &struct{}{}, nil
		})
}

func registerHealthHandlers(api huma.API) {
	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})
}
