// Package playback_test tests the playback state machine against fake
// speech and audio collaborators.
package playback_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/book-expert/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/exam-render-service/internal/content"
	"github.com/book-expert/exam-render-service/internal/core"
	"github.com/book-expert/exam-render-service/internal/media"
	"github.com/book-expert/exam-render-service/internal/playback"
	"github.com/book-expert/exam-render-service/internal/speech"
)

var errMockLoad = errors.New("mock load error")

const waitTimeout = 2 * time.Second

// fakeEngine is an in-memory speech engine.
type fakeEngine struct {
	mu        sync.Mutex
	supported bool
	speaking  bool
	paused    bool
	lastText  string
	lastOpts  core.SpeakOptions
}

func (e *fakeEngine) Speak(text string, opts core.SpeakOptions) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.supported {
		return false
	}

	e.speaking = true
	e.paused = false
	e.lastText = text
	e.lastOpts = opts

	return true
}

func (e *fakeEngine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.speaking = false
	e.paused = false
}

func (e *fakeEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = true
}

func (e *fakeEngine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = false
}

func (e *fakeEngine) IsSpeaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.speaking
}

func (e *fakeEngine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.paused
}

func (e *fakeEngine) IsSupported() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.supported
}

// finish simulates the utterance reaching its natural end.
func (e *fakeEngine) finish() {
	e.mu.Lock()
	e.speaking = false
	onEnd := e.lastOpts.OnEnd
	e.mu.Unlock()

	if onEnd != nil {
		onEnd()
	}
}

func (e *fakeEngine) spokenText() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lastText
}

func (e *fakeEngine) speakOptions() core.SpeakOptions {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.lastOpts
}

func (e *fakeEngine) setPaused(paused bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.paused = paused
}

// fakePlayer is an in-memory audio player.
type fakePlayer struct {
	mu             sync.Mutex
	loadShouldFail bool
	loadedURL      string
	playing        bool
	rewound        bool
}

func (p *fakePlayer) Load(url string, _ func(), _ func(error)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.loadShouldFail {
		return errMockLoad
	}

	p.loadedURL = url

	return nil
}

func (p *fakePlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = true
	p.rewound = false

	return nil
}

func (p *fakePlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.playing = false

	return nil
}

func (p *fakePlayer) Rewind() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.rewound = true

	return nil
}

func (p *fakePlayer) Close() error {
	return nil
}

func (p *fakePlayer) urlLoaded() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.loadedURL
}

func (p *fakePlayer) isPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

func (p *fakePlayer) wasRewound() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.rewound
}

func newTestController(t *testing.T, engine core.SpeechEngine, player core.AudioPlayer) *playback.Controller {
	t.Helper()

	testLogger, err := logger.New(t.TempDir(), "playback-test.log")
	require.NoError(t, err)

	resolver := media.NewResolver(media.NoopSigner{}, media.ResolverOptions{TTL: 0, Buffer: 0, Now: nil}, testLogger)

	controller := playback.NewController(
		resolver, engine, player, speech.NewLinearizer(), 10*time.Millisecond, testLogger)
	t.Cleanup(controller.Close)

	return controller
}

// gatedEngine blocks its first Speak until released, holding open the
// window between a request's Speak returning and its staleness check.
type gatedEngine struct {
	*fakeEngine
	entered chan struct{}
	release chan struct{}
	gateOne sync.Once
}

func (e *gatedEngine) Speak(text string, opts core.SpeakOptions) bool {
	blocked := false
	e.gateOne.Do(func() { blocked = true })

	if blocked {
		e.entered <- struct{}{}
		<-e.release
	}

	return e.fakeEngine.Speak(text, opts)
}

func speechSource() playback.Source {
	return playback.Source{
		Audio: media.Ref{URL: "", Bucket: "", Path: ""},
		Blocks: content.Document{
			content.Text{BlockID: "b1", Content: "Read this aloud."},
		},
		Options: nil,
		Tuning:  playback.Tuning{Rate: 0, Pitch: 0, Volume: 0},
	}
}

func awaitSignal(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()

	select {
	case <-ch:
	case <-time.After(waitTimeout):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestController_SpeechLifecycle(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		mu: sync.Mutex{}, supported: true, speaking: false, paused: false,
		lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
	}
	controller := newTestController(t, engine, nil)

	require.Equal(t, playback.StateIdle, controller.State())

	started := make(chan struct{})
	controller.Play(context.Background(), speechSource(), playback.Callbacks{
		OnStart: func() { close(started) },
		OnEnd:   nil,
		OnError: nil,
	})

	awaitSignal(t, started, "OnStart")

	assert.Equal(t, playback.StatePlaying, controller.State())
	assert.Equal(t, "Read this aloud.", engine.spokenText())

	controller.Pause()
	assert.Equal(t, playback.StatePaused, controller.State())
	assert.True(t, engine.IsPaused())

	controller.Resume()
	assert.Equal(t, playback.StatePlaying, controller.State())
	assert.False(t, engine.IsPaused())

	controller.Stop()
	assert.Equal(t, playback.StateIdle, controller.State())
	assert.False(t, engine.IsSpeaking())

	// Stop is idempotent.
	controller.Stop()
	assert.Equal(t, playback.StateIdle, controller.State())
}

func TestController_NaturalEndReturnsToIdle(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		mu: sync.Mutex{}, supported: true, speaking: false, paused: false,
		lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
	}
	controller := newTestController(t, engine, nil)

	started := make(chan struct{})
	ended := make(chan struct{})
	controller.Play(context.Background(), speechSource(), playback.Callbacks{
		OnStart: func() { close(started) },
		OnEnd:   func() { close(ended) },
		OnError: nil,
	})

	awaitSignal(t, started, "OnStart")
	engine.finish()
	awaitSignal(t, ended, "OnEnd")

	assert.Equal(t, playback.StateIdle, controller.State())
}

func TestController_PollMirrorsExternalPause(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		mu: sync.Mutex{}, supported: true, speaking: false, paused: false,
		lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
	}
	controller := newTestController(t, engine, nil)

	started := make(chan struct{})
	controller.Play(context.Background(), speechSource(), playback.Callbacks{
		OnStart: func() { close(started) },
		OnEnd:   nil,
		OnError: nil,
	})

	awaitSignal(t, started, "OnStart")

	// The engine pauses outside the controller; the poll must notice.
	engine.setPaused(true)
	require.Eventually(t, func() bool {
		return controller.State() == playback.StatePaused
	}, waitTimeout, 5*time.Millisecond)

	engine.setPaused(false)
	require.Eventually(t, func() bool {
		return controller.State() == playback.StatePlaying
	}, waitTimeout, 5*time.Millisecond)
}

func TestController_AudioModeSelected(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		mu: sync.Mutex{}, supported: true, speaking: false, paused: false,
		lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
	}
	player := &fakePlayer{mu: sync.Mutex{}, loadShouldFail: false, loadedURL: "", playing: false, rewound: false}
	controller := newTestController(t, engine, player)

	source := playback.Source{
		Audio:   media.Ref{URL: "https://cdn.example/q7.mp3", Bucket: "", Path: ""},
		Blocks:  content.Document{content.Text{BlockID: "b1", Content: "Spoken fallback."}},
		Options: nil,
		Tuning:  playback.Tuning{Rate: 0, Pitch: 0, Volume: 0},
	}

	started := make(chan struct{})
	controller.Play(context.Background(), source, playback.Callbacks{
		OnStart: func() { close(started) },
		OnEnd:   nil,
		OnError: nil,
	})

	awaitSignal(t, started, "OnStart")

	assert.Equal(t, playback.StatePlaying, controller.State())
	assert.Equal(t, "https://cdn.example/q7.mp3", player.urlLoaded())
	assert.True(t, player.isPlaying())
	assert.Empty(t, engine.spokenText(), "audio mode must not drive the speech engine")

	controller.Pause()
	assert.Equal(t, playback.StatePaused, controller.State())
	assert.False(t, player.isPlaying())

	controller.Stop()
	assert.Equal(t, playback.StateIdle, controller.State())
	assert.True(t, player.wasRewound())
}

func TestController_AudioLoadFailureFallsBackToSpeech(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		mu: sync.Mutex{}, supported: true, speaking: false, paused: false,
		lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
	}
	player := &fakePlayer{mu: sync.Mutex{}, loadShouldFail: true, loadedURL: "", playing: false, rewound: false}
	controller := newTestController(t, engine, player)

	source := playback.Source{
		Audio:   media.Ref{URL: "https://cdn.example/q7.mp3", Bucket: "", Path: ""},
		Blocks:  content.Document{content.Text{BlockID: "b1", Content: "Spoken fallback."}},
		Options: nil,
		Tuning:  playback.Tuning{Rate: 0, Pitch: 0, Volume: 0},
	}

	started := make(chan struct{})
	controller.Play(context.Background(), source, playback.Callbacks{
		OnStart: func() { close(started) },
		OnEnd:   nil,
		OnError: nil,
	})

	awaitSignal(t, started, "OnStart")

	assert.Equal(t, playback.StatePlaying, controller.State())
	assert.Equal(t, "Spoken fallback.", engine.spokenText())
}

func TestController_EmptyTranscriptReportsError(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		mu: sync.Mutex{}, supported: true, speaking: false, paused: false,
		lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
	}
	controller := newTestController(t, engine, nil)

	errChan := make(chan error, 1)
	controller.Play(context.Background(), playback.Source{
		Audio:   media.Ref{URL: "", Bucket: "", Path: ""},
		Blocks:  content.Document{content.Spacer{BlockID: "b1", Height: 10}},
		Options: nil,
		Tuning:  playback.Tuning{Rate: 0, Pitch: 0, Volume: 0},
	}, playback.Callbacks{
		OnStart: nil,
		OnEnd:   nil,
		OnError: func(err error) { errChan <- err },
	})

	select {
	case err := <-errChan:
		require.ErrorIs(t, err, playback.ErrNoText)
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for OnError")
	}

	assert.Equal(t, playback.StateIdle, controller.State())
}

func TestController_UnsupportedEngineReportsError(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		mu: sync.Mutex{}, supported: false, speaking: false, paused: false,
		lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
	}
	controller := newTestController(t, engine, nil)

	errChan := make(chan error, 1)
	controller.Play(context.Background(), speechSource(), playback.Callbacks{
		OnStart: nil,
		OnEnd:   nil,
		OnError: func(err error) { errChan <- err },
	})

	select {
	case err := <-errChan:
		require.ErrorIs(t, err, playback.ErrEngineUnsupported)
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for OnError")
	}
}

func TestController_RestartReplacesCurrentPlayback(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		mu: sync.Mutex{}, supported: true, speaking: false, paused: false,
		lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
	}
	controller := newTestController(t, engine, nil)

	firstStarted := make(chan struct{})
	controller.Play(context.Background(), speechSource(), playback.Callbacks{
		OnStart: func() { close(firstStarted) },
		OnEnd:   nil,
		OnError: nil,
	})
	awaitSignal(t, firstStarted, "first OnStart")

	secondStarted := make(chan struct{})
	second := playback.Source{
		Audio:   media.Ref{URL: "", Bucket: "", Path: ""},
		Blocks:  content.Document{content.Text{BlockID: "b2", Content: "Second question."}},
		Options: nil,
		Tuning:  playback.Tuning{Rate: 0, Pitch: 0, Volume: 0},
	}
	controller.Play(context.Background(), second, playback.Callbacks{
		OnStart: func() { close(secondStarted) },
		OnEnd:   nil,
		OnError: nil,
	})
	awaitSignal(t, secondStarted, "second OnStart")

	assert.Equal(t, playback.StatePlaying, controller.State())
	assert.Equal(t, "Second question.", engine.spokenText())
}

func TestController_StaleRequestKeepsNewerUtterance(t *testing.T) {
	t.Parallel()

	engine := &gatedEngine{
		fakeEngine: &fakeEngine{
			mu: sync.Mutex{}, supported: true, speaking: false, paused: false,
			lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
		},
		entered: make(chan struct{}),
		release: make(chan struct{}),
		gateOne: sync.Once{},
	}
	controller := newTestController(t, engine, nil)

	// The first request is held inside Speak while a second request
	// replaces it.
	controller.Play(context.Background(), speechSource(), playback.Callbacks{
		OnStart: nil,
		OnEnd:   nil,
		OnError: nil,
	})
	awaitSignal(t, engine.entered, "first Speak")

	secondStarted := make(chan struct{})
	secondEnded := make(chan struct{})
	second := playback.Source{
		Audio:   media.Ref{URL: "", Bucket: "", Path: ""},
		Blocks:  content.Document{content.Text{BlockID: "b2", Content: "Second question."}},
		Options: nil,
		Tuning:  playback.Tuning{Rate: 0, Pitch: 0, Volume: 0},
	}
	controller.Play(context.Background(), second, playback.Callbacks{
		OnStart: func() { close(secondStarted) },
		OnEnd:   func() { close(secondEnded) },
		OnError: nil,
	})

	// Releasing the first request lets its stale branch clean up; that
	// cleanup must not touch the second request's utterance.
	close(engine.release)
	awaitSignal(t, secondStarted, "second OnStart")

	assert.Equal(t, playback.StatePlaying, controller.State())
	assert.True(t, engine.IsSpeaking(),
		"the newer utterance must keep speaking after the stale request is discarded")
	assert.Equal(t, "Second question.", engine.spokenText())

	engine.finish()
	awaitSignal(t, secondEnded, "second OnEnd")
	assert.Equal(t, playback.StateIdle, controller.State())
}

func TestController_TuningReachesEngine(t *testing.T) {
	t.Parallel()

	engine := &fakeEngine{
		mu: sync.Mutex{}, supported: true, speaking: false, paused: false,
		lastText: "", lastOpts: core.SpeakOptions{Rate: 0, Pitch: 0, Volume: 0, OnEnd: nil, OnError: nil},
	}
	controller := newTestController(t, engine, nil)

	source := speechSource()
	source.Tuning = playback.Tuning{Rate: 1.2, Pitch: 0.8, Volume: 0.5}

	started := make(chan struct{})
	controller.Play(context.Background(), source, playback.Callbacks{
		OnStart: func() { close(started) },
		OnEnd:   nil,
		OnError: nil,
	})

	awaitSignal(t, started, "OnStart")

	opts := engine.speakOptions()
	assert.InEpsilon(t, 1.2, opts.Rate, 0.001)
	assert.InEpsilon(t, 0.8, opts.Pitch, 0.001)
	assert.InEpsilon(t, 0.5, opts.Volume, 0.001)
}
