package protocol

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestTrackerPayloadRoundTrip(t *testing.T) {
	cases := []struct {
		name     string
		baseURL  string
		category Category
	}{
		{"Google Analytics", "https://google-analytics.com", CategoryAdvertising},
		{"FingerprintJS", "https://fpjs.io", CategoryFingerprintingGeneral},
		{"YouTube Embed", "https://youtube.com", CategoryContent},
	}

	for _, tc := range cases {
		env := TrackerPayload(tc.name, tc.baseURL, tc.category)
		if env.Type != TagTracker {
			t.Fatalf("type = %q; want %q", env.Type, TagTracker)
		}

		data, err := json.Marshal(env)
		if err != nil {
			t.Fatalf("json.Marshal() failed: %v", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}

		var tracker Tracker
		if err := json.Unmarshal(msg.Data, &tracker); err != nil {
			t.Fatalf("tracker unmarshal failed: %v", err)
		}
		want := Tracker{Name: tc.name, BaseURL: tc.baseURL, Category: tc.category}
		if tracker != want {
			t.Errorf("tracker = %+v; want %+v", tracker, want)
		}
	}
}

func TestScreenshotPayloadCarriesOnlyRawData(t *testing.T) {
	const raw = "data:image/jpeg;base64,/9j/4AAQ"

	env := ScreenshotPayload(raw)
	if env.Type != TagScreenshot {
		t.Fatalf("type = %q; want %q", env.Type, TagScreenshot)
	}

	data, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}
	if strings.Contains(string(data), "loaded") {
		t.Errorf("wire payload leaks the loaded flag: %s", data)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	var got string
	if err := json.Unmarshal(msg.Data, &got); err != nil {
		t.Fatalf("data unmarshal failed: %v", err)
	}
	if got != raw {
		t.Errorf("data = %q; want %q", got, raw)
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range []Category{CategoryFingerprintingGeneral, CategoryAdvertising, CategoryContent} {
		if !c.Valid() {
			t.Errorf("Valid(%q) = false; want true", c)
		}
	}
	if Category("analytics").Valid() {
		t.Error("Valid(analytics) = true; want false")
	}
}
