// Package imgprobe answers one question best-effort: does a URI point at a
// decodable image? It never returns an error; every failure mode resolves to
// false.
package imgprobe

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// maxFetchBytes bounds how much of a remote image is pulled before decoding
// the header. Image headers sit in the first few KB; the rest is never needed.
const maxFetchBytes = 4 * 1024 * 1024

// Test probes uri for a decodable image. It understands data: URIs with
// base64 payloads and http(s) URLs. Transient resources (response bodies,
// decode buffers) are released on every exit path.
func Test(ctx context.Context, uri string) bool {
	switch {
	case strings.HasPrefix(uri, "data:"):
		return testDataURI(uri)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"):
		return testRemote(ctx, uri)
	default:
		slog.Debug("imgprobe: unsupported uri scheme", "uri", truncate(uri))
		return false
	}
}

func testDataURI(uri string) bool {
	// data:<mediatype>;base64,<payload>
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return false
	}
	meta, payload := uri[len("data:"):comma], uri[comma+1:]

	var raw []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			slog.Debug("imgprobe: base64 decode failed", "error", err)
			return false
		}
		raw = decoded
	} else {
		raw = []byte(payload)
	}

	return decodes(bytes.NewReader(raw))
}

func testRemote(ctx context.Context, uri string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		slog.Debug("imgprobe: fetch failed", "uri", truncate(uri), "error", err)
		return false
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxFetchBytes))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	return decodes(io.LimitReader(resp.Body, maxFetchBytes))
}

// decodes reads just the image header. A parseable header from a registered
// format counts as a successful decode for probe purposes.
func decodes(r io.Reader) bool {
	if _, _, err := image.DecodeConfig(r); err != nil {
		slog.Debug("imgprobe: not a decodable image", "error", err)
		return false
	}
	return true
}

func truncate(s string) string {
	if len(s) > 120 {
		return s[:120] + "..."
	}
	return s
}
