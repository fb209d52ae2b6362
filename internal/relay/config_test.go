package relay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/swisscows/browsebridge/internal/protocol"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "streams.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("os.WriteFile() failed: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, "forward_tags:\n  - tracker\n  - screenshot\nbuffer_size: 64\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() failed: %v", err)
	}
	if len(cfg.ForwardTags) != 2 {
		t.Fatalf("forward_tags = %v; want 2 entries", cfg.ForwardTags)
	}
	if cfg.BufferSize != 64 {
		t.Errorf("buffer_size = %d; want 64", cfg.BufferSize)
	}
	if !cfg.Forwards(protocol.TagTracker) || !cfg.Forwards(protocol.TagScreenshot) {
		t.Error("configured tags not forwarded")
	}
	if cfg.Forwards(protocol.TagError) {
		t.Error("error tag forwarded despite not being configured")
	}
}

func TestLoadConfigRejectsUnknownTag(t *testing.T) {
	path := writeConfig(t, "forward_tags:\n  - tracker\n  - telemetry\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() = nil; want error for unknown tag")
	}
}

func TestLoadConfigRejectsEmptyTagList(t *testing.T) {
	path := writeConfig(t, "buffer_size: 10\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() = nil; want error for empty forward_tags")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() = nil; want error for missing file")
	}
}

func TestDefaultConfigForwardsEverything(t *testing.T) {
	cfg := DefaultConfig()
	for _, tag := range []protocol.Tag{protocol.TagTracker, protocol.TagScreenshot, protocol.TagError, protocol.TagClose} {
		if !cfg.Forwards(tag) {
			t.Errorf("default config does not forward %q", tag)
		}
	}
}
