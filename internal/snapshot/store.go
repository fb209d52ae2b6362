// Package snapshot persists page captures received from the browse service:
// the decoded image next to a JSON metadata sidecar, keyed by UUID.
package snapshot

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"
)

var uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// ErrNotFound marks lookups for captures that do not exist.
var ErrNotFound = errors.New("capture not found")

// CaptureMeta describes one stored page capture.
type CaptureMeta struct {
	ID        string    `json:"id"`
	PageURL   string    `json:"page_url"`
	Format    string    `json:"format"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	WaitEvent string    `json:"wait_event,omitempty"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	Notes     string    `json:"notes,omitempty"`
}

// Store manages capture files on disk.
type Store struct {
	dir string
	mu  sync.RWMutex
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("capture store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) validateID(id string) error {
	if !uuidRe.MatchString(id) {
		return fmt.Errorf("invalid capture id: %q", id)
	}
	return nil
}

// SaveDataURI decodes a data: image URI (the format screenshots arrive in on
// the wire) and stores it under meta. SizeBytes is filled from the decoded
// image.
func (s *Store) SaveDataURI(meta CaptureMeta, dataURI string) error {
	raw, err := decodeDataURI(dataURI)
	if err != nil {
		return fmt.Errorf("capture store: %w", err)
	}
	meta.SizeBytes = len(raw)
	return s.Save(meta, raw)
}

// Save writes both the image file and the metadata sidecar. A metadata write
// failure rolls the image back so the store never holds an orphan image.
func (s *Store) Save(meta CaptureMeta, imageData []byte) error {
	if err := s.validateID(meta.ID); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	imgPath := filepath.Join(s.dir, meta.ID+"."+meta.Format)
	jsonPath := filepath.Join(s.dir, meta.ID+".json")

	if err := os.WriteFile(imgPath, imageData, 0o644); err != nil {
		return fmt.Errorf("capture store: write image: %w", err)
	}

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		_ = os.Remove(imgPath)
		return fmt.Errorf("capture store: marshal meta: %w", err)
	}

	if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
		_ = os.Remove(imgPath)
		return fmt.Errorf("capture store: write meta: %w", err)
	}

	return nil
}

// Get reads capture metadata by ID.
func (s *Store) Get(id string) (CaptureMeta, error) {
	if err := s.validateID(id); err != nil {
		return CaptureMeta{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return CaptureMeta{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return CaptureMeta{}, fmt.Errorf("capture store: read meta: %w", err)
	}

	var meta CaptureMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return CaptureMeta{}, fmt.Errorf("capture store: unmarshal meta: %w", err)
	}
	return meta, nil
}

// List returns all captures, newest first. Unreadable sidecars are skipped.
func (s *Store) List() ([]CaptureMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("capture store: glob: %w", err)
	}

	metas := make([]CaptureMeta, 0, len(matches))
	for _, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Debug("capture sidecar unreadable, skipping", "path", path, "error", err)
			continue
		}
		var meta CaptureMeta
		if err := json.Unmarshal(data, &meta); err != nil {
			slog.Debug("capture sidecar undecodable, skipping", "path", path, "error", err)
			continue
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt.After(metas[j].CreatedAt)
	})

	return metas, nil
}

// ReadImage reads the raw image bytes and returns the format.
func (s *Store) ReadImage(id string) ([]byte, string, error) {
	meta, err := s.Get(id)
	if err != nil {
		return nil, "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(s.dir, id+"."+meta.Format))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", fmt.Errorf("%w: %s (image)", ErrNotFound, id)
		}
		return nil, "", fmt.Errorf("capture store: read image: %w", err)
	}
	return data, meta.Format, nil
}

// Delete removes both the image and metadata files.
func (s *Store) Delete(id string) error {
	meta, err := s.Get(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, id+"."+meta.Format)); err != nil {
		slog.Debug("capture image cleanup failed", "id", id, "error", err)
	}
	if err := os.Remove(filepath.Join(s.dir, id+".json")); err != nil {
		slog.Debug("capture sidecar cleanup failed", "id", id, "error", err)
	}
	return nil
}

// decodeDataURI extracts the raw bytes of a base64 data: URI.
func decodeDataURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, "data:") {
		return nil, fmt.Errorf("not a data uri")
	}
	comma := strings.IndexByte(uri, ',')
	if comma < 0 {
		return nil, fmt.Errorf("malformed data uri")
	}
	if !strings.HasSuffix(uri[:comma], ";base64") {
		return nil, fmt.Errorf("data uri is not base64")
	}
	raw, err := base64.StdEncoding.DecodeString(uri[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("data uri payload: %w", err)
	}
	return raw, nil
}
