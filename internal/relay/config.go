package relay

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/swisscows/browsebridge/internal/protocol"
)

// Config selects which tags the broker forwards to subscribers.
type Config struct {
	ForwardTags []protocol.Tag `yaml:"forward_tags"`
	BufferSize  int            `yaml:"buffer_size,omitempty"`
}

// DefaultConfig forwards every tag in the protocol set.
func DefaultConfig() *Config {
	return &Config{
		ForwardTags: []protocol.Tag{
			protocol.TagTracker,
			protocol.TagScreenshot,
			protocol.TagError,
			protocol.TagClose,
		},
	}
}

// LoadConfig reads and validates a streams YAML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("relay config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("relay config: %w", err)
	}
	if len(cfg.ForwardTags) == 0 {
		return nil, fmt.Errorf("relay config: forward_tags is empty")
	}
	for i, tag := range cfg.ForwardTags {
		if !tag.Known() {
			return nil, fmt.Errorf("relay config: forward_tags[%d]: unknown tag %q", i, tag)
		}
	}
	return &cfg, nil
}

// Forwards reports whether the config forwards the given tag.
func (c *Config) Forwards(tag protocol.Tag) bool {
	for _, t := range c.ForwardTags {
		if t == tag {
			return true
		}
	}
	return false
}
