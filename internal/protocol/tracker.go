package protocol

// Category is the privacy classification of a detected tracker. The set is
// closed; the service never emits values outside it.
type Category string

const (
	CategoryFingerprintingGeneral Category = "fingerprintingGeneral"
	CategoryAdvertising           Category = "advertising"
	CategoryContent               Category = "content"
)

// Valid reports whether the category is one of the known constants.
func (c Category) Valid() bool {
	switch c {
	case CategoryFingerprintingGeneral, CategoryAdvertising, CategoryContent:
		return true
	}
	return false
}

// Tracker is a third-party script or resource detected on the rendered page.
// Immutable value; all fields come straight off the wire.
type Tracker struct {
	Name     string   `json:"name"`
	BaseURL  string   `json:"baseUrl"`
	Category Category `json:"category"`
}

// TrackerPayload builds a tagged tracker envelope from raw fields.
func TrackerPayload(name, baseURL string, category Category) Envelope {
	t := Tracker{Name: name, BaseURL: baseURL, Category: category}
	return Wrap(t, TagTracker)
}

// ScreenshotPayload builds a tagged screenshot envelope carrying only the raw
// image data. The local loaded flag is client-side state and never transmitted.
func ScreenshotPayload(data string) Envelope {
	return Wrap(data, TagScreenshot)
}
