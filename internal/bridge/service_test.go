package bridge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/swisscows/browsebridge/internal/config"
	"github.com/swisscows/browsebridge/internal/protocol"
	"github.com/swisscows/browsebridge/internal/relay"
	"github.com/swisscows/browsebridge/internal/snapshot"
)

func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))); err != nil {
		t.Fatalf("png.Encode() failed: %v", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

// newPuppetServer upgrades each connection and runs script against it.
func newPuppetServer(t *testing.T, script func(conn net.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			t.Errorf("ws.UpgradeHTTP() failed: %v", err)
			return
		}
		go script(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws://" + strings.TrimPrefix(srv.URL, "http://")
}

func testConfig(puppetURL string) *config.Config {
	return &config.Config{
		SummarizerURL:      "http://127.0.0.1:1/summarize",
		PuppetURL:          puppetURL,
		SummarizeTimeoutMS: 2000,
	}
}

func browseRequest() protocol.Request {
	return protocol.Request{
		URL:          "https://example.com",
		ImageType:    "png",
		ImageQuality: 80,
		Width:        1280,
		Height:       800,
		WaitForEvent: "networkidle0",
	}
}

func TestBrowseCollectsPersistsAndForwards(t *testing.T) {
	imageURI := pngDataURI(t)

	endpoint := newPuppetServer(t, func(conn net.Conn) {
		defer conn.Close()
		if _, err := wsutil.ReadClientText(conn); err != nil {
			t.Errorf("server read failed: %v", err)
			return
		}
		for _, env := range []protocol.Envelope{
			protocol.TrackerPayload("Google Analytics", "https://google-analytics.com", protocol.CategoryAdvertising),
			protocol.ScreenshotPayload(imageURI),
			protocol.Wrap(nil, protocol.TagClose),
		} {
			data, _ := json.Marshal(env)
			if err := wsutil.WriteServerText(conn, data); err != nil {
				return
			}
		}
	})

	store, err := snapshot.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("snapshot.NewStore() failed: %v", err)
	}
	broker := relay.NewBroker(0)
	subID, events := broker.Subscribe()
	defer broker.Unsubscribe(subID)

	svc := NewService(testConfig(endpoint), store, broker, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := svc.Browse(ctx, browseRequest())
	if err != nil {
		t.Fatalf("Browse() failed: %v", err)
	}

	if len(result.Trackers) != 1 || result.Trackers[0].Name != "Google Analytics" {
		t.Errorf("trackers = %+v; want the one detected tracker", result.Trackers)
	}
	if result.Screenshot == nil {
		t.Fatal("Screenshot = nil; want the received capture")
	}
	if result.Screenshot.Data != imageURI {
		t.Errorf("screenshot data differs from wire payload")
	}
	if !result.Screenshot.WaitLoaded(ctx) {
		t.Error("WaitLoaded() = false for a decodable png; want true")
	}

	if result.Capture == nil {
		t.Fatal("Capture = nil; screenshot was not persisted")
	}
	meta, err := store.Get(result.Capture.ID)
	if err != nil {
		t.Fatalf("store.Get(%s) failed: %v", result.Capture.ID, err)
	}
	if meta.PageURL != "https://example.com" || meta.Format != "png" {
		t.Errorf("persisted meta = %+v; request fields lost", meta)
	}
	if meta.SizeBytes == 0 {
		t.Error("persisted SizeBytes = 0; want decoded image size")
	}

	var tags []protocol.Tag
	timeout := time.After(5 * time.Second)
	for len(tags) < 3 {
		select {
		case evt := <-events:
			tags = append(tags, evt.Tag)
		case <-timeout:
			t.Fatalf("relay events = %v; want tracker, screenshot, close", tags)
		}
	}
	want := []protocol.Tag{protocol.TagTracker, protocol.TagScreenshot, protocol.TagClose}
	for i := range want {
		if tags[i] != want[i] {
			t.Fatalf("relay events = %v; want %v", tags, want)
		}
	}
}

func TestBrowseRecordsServiceErrors(t *testing.T) {
	endpoint := newPuppetServer(t, func(conn net.Conn) {
		defer conn.Close()
		if _, err := wsutil.ReadClientText(conn); err != nil {
			return
		}
		for _, raw := range []string{
			`{"type":"error","data":{"reason":"render crashed"}}`,
			`{"type":"close","data":null}`,
		} {
			if err := wsutil.WriteServerText(conn, []byte(raw)); err != nil {
				return
			}
		}
	})

	svc := NewService(testConfig(endpoint), nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	result, err := svc.Browse(ctx, browseRequest())
	if err != nil {
		t.Fatalf("Browse() failed: %v", err)
	}

	if string(result.ServiceError) != `{"reason":"render crashed"}` {
		t.Errorf("ServiceError = %s; want verbatim payload", result.ServiceError)
	}
}

func TestBrowseRejectsInvalidRequests(t *testing.T) {
	svc := NewService(testConfig("ws://127.0.0.1:1/ws/"), nil, nil, nil)

	req := browseRequest()
	req.URL = ""
	if _, err := svc.Browse(context.Background(), req); err == nil {
		t.Error("Browse() = nil; want validation error")
	}
}

func TestBrowseTimesOutWithoutClose(t *testing.T) {
	endpoint := newPuppetServer(t, func(conn net.Conn) {
		// Accept the request and go silent.
		_, _ = wsutil.ReadClientText(conn)
		time.Sleep(2 * time.Second)
		_ = conn.Close()
	})

	svc := NewService(testConfig(endpoint), nil, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, err := svc.Browse(ctx, browseRequest()); err == nil {
		t.Error("Browse() = nil; want timeout error")
	}
}

func TestSummarizeDegradesToEmpty(t *testing.T) {
	svc := NewService(testConfig("ws://127.0.0.1:1/ws/"), nil, nil, nil)

	if got := svc.Summarize(context.Background(), "https://example.com", "en"); got != "" {
		t.Errorf("Summarize() = %q against a dead endpoint; want empty", got)
	}
}

func TestCaptureAccessorsWithoutStore(t *testing.T) {
	svc := NewService(testConfig("ws://127.0.0.1:1/ws/"), nil, nil, nil)

	if _, err := svc.ListCaptures(context.Background()); err != ErrNoStore {
		t.Errorf("ListCaptures() = %v; want ErrNoStore", err)
	}
	if err := svc.DeleteCapture(context.Background(), "id"); err != ErrNoStore {
		t.Errorf("DeleteCapture() = %v; want ErrNoStore", err)
	}
}
