package protocol

import (
	"errors"
	"fmt"
)

// Request is the outbound render instruction for the browse service: which
// page to load, how to capture it, and which lifecycle event to wait for
// before capturing. Immutable once constructed; every field is required and
// nothing is defaulted.
type Request struct {
	URL          string `json:"url"`
	ImageType    string `json:"imageType"`
	ImageQuality int    `json:"imageQuality"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	WaitForEvent string `json:"waitForEvent"`
}

// Validate checks the required-fields contract. The wire layer does not call
// this; it exists for edges (API, CLI) that accept requests from outside.
func (r Request) Validate() error {
	if r.URL == "" {
		return errors.New("request: url is required")
	}
	if r.ImageType == "" {
		return errors.New("request: imageType is required")
	}
	if r.ImageQuality < 0 || r.ImageQuality > 100 {
		return fmt.Errorf("request: imageQuality %d outside 0-100", r.ImageQuality)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("request: viewport %dx%d is not positive", r.Width, r.Height)
	}
	if r.WaitForEvent == "" {
		return errors.New("request: waitForEvent is required")
	}
	return nil
}
