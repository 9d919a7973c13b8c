// Package core defines the collaborator interfaces for the exam render
// service.
package core

import (
	"context"
	"time"
)

// ObjectStore defines the interface for interacting with a key-value blob
// store. Documents are downloaded from it and rendered artifacts uploaded
// back.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// SignedURL is a fetchable URL valid for a limited duration from the
// moment it was issued.
type SignedURL struct {
	URL      string
	ValidFor time.Duration
}

// URLSigner issues time-limited URLs for objects addressed by bucket and
// path. Implementations talk to an external object-storage service; a
// signing failure is an ordinary error, never a panic.
type URLSigner interface {
	Sign(ctx context.Context, bucket, path string, ttl time.Duration) (SignedURL, error)
}

// SpeakOptions carries per-utterance tuning and completion callbacks.
// Rate and Pitch are multipliers around 1.0; Volume is 0.0 to 1.0.
type SpeakOptions struct {
	Rate    float64
	Pitch   float64
	Volume  float64
	OnEnd   func()
	OnError func(error)
}

// SpeechEngine is the synthetic speech collaborator. The engine is a
// process-wide resource: at most one utterance speaks at a time, and
// Speak implicitly cancels any utterance already in progress. The engine
// exposes no pause-state change event, so callers that need to observe
// pause transitions must poll IsSpeaking and IsPaused.
type SpeechEngine interface {
	Speak(text string, opts SpeakOptions) bool
	Stop()
	Pause()
	Resume()
	IsSpeaking() bool
	IsPaused() bool
	IsSupported() bool
}

// AudioPlayer is a playable media handle for one pre-recorded audio URL.
// Load binds the URL and the ended/error notifications; Rewind seeks to
// position zero.
type AudioPlayer interface {
	Load(url string, onEnded func(), onError func(error)) error
	Play() error
	Pause() error
	Rewind() error
	Close() error
}
