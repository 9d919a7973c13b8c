// Package playback orchestrates reading a question aloud, either through
// pre-recorded audio or through the synthetic speech engine.
package playback

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/exam-render-service/internal/content"
	"github.com/book-expert/exam-render-service/internal/core"
	"github.com/book-expert/exam-render-service/internal/media"
	"github.com/book-expert/exam-render-service/internal/speech"
)

// Playback failures surfaced through OnError. Nothing in this package is
// ever raised past the controller boundary.
var (
	// ErrNoText indicates the document linearized to an empty transcript.
	ErrNoText = errors.New("no text to read")
	// ErrEngineUnsupported indicates no usable speech engine is present.
	ErrEngineUnsupported = errors.New("speech engine not supported")
)

// DefaultPollInterval is how often the engine's speaking/paused flags are
// mirrored while in synthetic mode. The engine has no pause-state change
// event, so polling is the only way to observe external transitions.
const DefaultPollInterval = 250 * time.Millisecond

// State is the observable playback state.
type State string

// The controller states. Stop and natural end both return to idle, from
// which a fresh play is always available.
const (
	StateIdle    State = "idle"
	StatePlaying State = "playing"
	StatePaused  State = "paused"
)

type mode int

const (
	modeNone mode = iota
	modeSpeech
	modeAudio
)

// Callbacks notify the caller of playback side effects. Any callback may
// be nil.
type Callbacks struct {
	OnStart func()
	OnEnd   func()
	OnError func(error)
}

// Tuning is the speech shaping applied on the synthetic path. Zero
// values fall back to the engine defaults.
type Tuning struct {
	Rate   float64
	Pitch  float64
	Volume float64
}

// Source is what a play request reads: an optional pre-recorded audio
// reference, and the block list (plus options) to speak when no audio is
// available.
type Source struct {
	Audio   media.Ref
	Blocks  content.Document
	Options []content.Option
	Tuning  Tuning
}

// Controller is the playback state machine. Mode selection: if the source
// carries an audio reference that resolves, the audio player is driven;
// otherwise the linearized transcript is fed to the speech engine.
//
// Audio resolution is asynchronous; each play request is tagged with a
// monotonically increasing sequence number and a response whose sequence
// is no longer the latest is discarded, so a stale resolution can never
// overwrite the state of a newer request.
type Controller struct {
	resolver     *media.Resolver
	engine       core.SpeechEngine
	player       core.AudioPlayer
	linearizer   *speech.Linearizer
	pollInterval time.Duration
	log          *logger.Logger

	// startMu serializes start bodies. The engine and player are
	// process-wide singletons, so a stale request's cleanup must never
	// interleave with a newer request's utterance: without the
	// serialization a stale Stop could kill the utterance the newer
	// request just started.
	startMu sync.Mutex

	mu        sync.Mutex
	state     State
	mode      mode
	seq       uint64
	pollStop  chan struct{}
	callbacks Callbacks
}

// NewController wires a controller. The player may be nil, forcing the
// synthetic path. A non-positive pollInterval selects the default.
func NewController(
	resolver *media.Resolver,
	engine core.SpeechEngine,
	player core.AudioPlayer,
	linearizer *speech.Linearizer,
	pollInterval time.Duration,
	log *logger.Logger,
) *Controller {
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}

	return &Controller{
		resolver:     resolver,
		engine:       engine,
		player:       player,
		linearizer:   linearizer,
		pollInterval: pollInterval,
		log:          log,
		startMu:      sync.Mutex{},
		mu:           sync.Mutex{},
		state:        StateIdle,
		mode:         modeNone,
		seq:          0,
		pollStop:     nil,
		callbacks:    Callbacks{OnStart: nil, OnEnd: nil, OnError: nil},
	}
}

// State returns the current observable state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Play starts playback of the source, stopping whatever was playing
// before. The call returns once the request is issued; mode selection
// finishes asynchronously after audio resolution.
func (c *Controller) Play(ctx context.Context, src Source, callbacks Callbacks) {
	c.mu.Lock()
	c.stopLocked()
	c.seq++
	seq := c.seq
	c.callbacks = callbacks
	c.mu.Unlock()

	go c.start(ctx, src, seq)
}

func (c *Controller) start(ctx context.Context, src Source, seq uint64) {
	c.startMu.Lock()
	defer c.startMu.Unlock()

	if !src.Audio.IsZero() && c.player != nil {
		url, ok := c.resolver.Resolve(ctx, src.Audio)

		if c.stale(seq) {
			return
		}

		if ok && c.startAudio(url, seq) {
			return
		}
	}

	c.startSpeech(src, seq)
}

func (c *Controller) stale(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.seq != seq
}

func (c *Controller) startAudio(url string, seq uint64) bool {
	err := c.player.Load(url, func() { c.handleEnd(seq) }, func(playErr error) { c.handleError(seq, playErr) })
	if err != nil {
		c.log.Warn("Failed to load audio, falling back to speech: %v", err)

		return false
	}

	err = c.player.Play()
	if err != nil {
		c.log.Warn("Failed to start audio, falling back to speech: %v", err)

		return false
	}

	c.mu.Lock()

	if c.seq != seq {
		c.mu.Unlock()
		_ = c.player.Pause()
		_ = c.player.Rewind()

		return true
	}

	c.mode = modeAudio
	c.state = StatePlaying
	onStart := c.callbacks.OnStart
	c.mu.Unlock()

	if onStart != nil {
		onStart()
	}

	return true
}

func (c *Controller) startSpeech(src Source, seq uint64) {
	if !c.engine.IsSupported() {
		c.handleError(seq, ErrEngineUnsupported)

		return
	}

	text := c.linearizer.Linearize(src.Blocks, src.Options)
	if text == "" {
		c.handleError(seq, ErrNoText)

		return
	}

	opts := core.SpeakOptions{
		Rate:    src.Tuning.Rate,
		Pitch:   src.Tuning.Pitch,
		Volume:  src.Tuning.Volume,
		OnEnd:   func() { c.handleEnd(seq) },
		OnError: func(speakErr error) { c.handleError(seq, speakErr) },
	}

	// Speak stops any in-progress utterance first: the engine is a
	// process-wide singleton and at most one utterance speaks at a time.
	if !c.engine.Speak(text, opts) {
		c.handleError(seq, ErrEngineUnsupported)

		return
	}

	c.mu.Lock()

	if c.seq != seq {
		c.mu.Unlock()
		c.engine.Stop()

		return
	}

	c.mode = modeSpeech
	c.state = StatePlaying
	c.startPollLocked(seq)
	onStart := c.callbacks.OnStart
	c.mu.Unlock()

	if onStart != nil {
		onStart()
	}
}

// Pause suspends playback. A no-op outside the playing state.
func (c *Controller) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying {
		return
	}

	switch c.mode {
	case modeSpeech:
		c.engine.Pause()
	case modeAudio:
		_ = c.player.Pause()
	case modeNone:
		return
	}

	c.state = StatePaused
}

// Resume continues paused playback.
func (c *Controller) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePaused {
		return
	}

	switch c.mode {
	case modeSpeech:
		c.engine.Resume()
	case modeAudio:
		_ = c.player.Play()
	case modeNone:
		return
	}

	c.state = StatePlaying
}

// Stop ends playback and returns to idle. It is idempotent and always
// safe to call regardless of the current state; in-flight resolutions are
// invalidated by the sequence bump.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stopLocked()
}

func (c *Controller) stopLocked() {
	c.seq++
	c.stopPollLocked()

	switch c.mode {
	case modeSpeech:
		c.engine.Stop()
	case modeAudio:
		// Stop always pauses and rewinds to position zero.
		_ = c.player.Pause()
		_ = c.player.Rewind()
	case modeNone:
	}

	c.mode = modeNone
	c.state = StateIdle
}

// Close tears the controller down: playback stops and the poll is
// released.
func (c *Controller) Close() {
	c.Stop()
}

// handleEnd moves to idle on natural end and notifies the caller. Stale
// sequences are ignored.
func (c *Controller) handleEnd(seq uint64) {
	c.mu.Lock()

	if c.seq != seq {
		c.mu.Unlock()

		return
	}

	c.stopPollLocked()
	c.mode = modeNone
	c.state = StateIdle
	onEnd := c.callbacks.OnEnd
	c.mu.Unlock()

	if onEnd != nil {
		onEnd()
	}
}

// handleError reports a playback failure through OnError, never as a
// panic or a returned error.
func (c *Controller) handleError(seq uint64, err error) {
	c.mu.Lock()

	if c.seq != seq {
		c.mu.Unlock()

		return
	}

	c.stopPollLocked()
	c.mode = modeNone
	c.state = StateIdle
	onError := c.callbacks.OnError
	c.mu.Unlock()

	c.log.Warn("Playback error: %v", err)

	if onError != nil {
		onError(err)
	}
}

// startPollLocked begins mirroring the engine's speaking/paused flags
// into the observable state. The poll stops when the mode changes or the
// controller is torn down.
func (c *Controller) startPollLocked(seq uint64) {
	stop := make(chan struct{})
	c.pollStop = stop

	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				c.mirrorEngineState(seq)
			}
		}
	}()
}

func (c *Controller) stopPollLocked() {
	if c.pollStop != nil {
		close(c.pollStop)
		c.pollStop = nil
	}
}

func (c *Controller) mirrorEngineState(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seq != seq || c.mode != modeSpeech {
		return
	}

	if !c.engine.IsSpeaking() {
		return
	}

	if c.engine.IsPaused() {
		c.state = StatePaused
	} else {
		c.state = StatePlaying
	}
}
