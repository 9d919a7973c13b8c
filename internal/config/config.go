// Package config provides the configuration structure for the
// exam-render-service.
package config

import (
	"fmt"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// NATSConfig holds the configuration for NATS.
type NATSConfig struct {
	URL                     string `toml:"url"`
	RenderRequestSubject    string `toml:"render_request_subject"`
	QuestionRenderedSubject string `toml:"question_rendered_subject"`
	RenderObjectStoreBucket string `toml:"render_object_store_bucket"`
}

// MediaConfig holds the media resolution settings. TTLSeconds is the
// validity window requested for signed URLs; BufferSeconds is the
// freshness margin under which a cached URL is re-fetched.
type MediaConfig struct {
	TTLSeconds    int `toml:"ttl_seconds"`
	BufferSeconds int `toml:"buffer_seconds"`
}

// SpeechConfig holds the synthetic speech settings.
type SpeechConfig struct {
	Rate               float64 `toml:"rate"`
	Pitch              float64 `toml:"pitch"`
	Volume             float64 `toml:"volume"`
	PollIntervalMillis int     `toml:"poll_interval_millis"`
	IncludeTranscript  bool    `toml:"include_transcript"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS   NATSConfig   `toml:"nats"`
	Media  MediaConfig  `toml:"media"`
	Speech SpeechConfig `toml:"speech"`
	Paths  PathsConfig  `toml:"paths"`
}

// Load loads the configuration for the exam-render-service.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}
