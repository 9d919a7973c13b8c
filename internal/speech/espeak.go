package speech

import (
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/book-expert/logger"

	"github.com/book-expert/exam-render-service/internal/core"
)

// espeak-ng parameter scales. The engine options are multipliers around
// 1.0 (rate, pitch) and a 0.0–1.0 volume; espeak-ng wants words per
// minute, a 0–99 pitch and a 0–200 amplitude.
const (
	espeakBinary        = "espeak-ng"
	espeakBaseRateWPM   = 175
	espeakBasePitch     = 50
	espeakBaseAmplitude = 100
)

// EspeakEngine implements core.SpeechEngine by driving the espeak-ng
// binary, one process per utterance. The engine is process-wide: Speak
// kills whatever is currently speaking before starting, so at most one
// utterance is ever audible.
type EspeakEngine struct {
	binary string
	log    *logger.Logger

	mu         sync.Mutex
	cmd        *exec.Cmd
	paused     bool
	generation uint64
}

// NewEspeakEngine creates an engine over the espeak-ng binary found on
// PATH.
func NewEspeakEngine(log *logger.Logger) *EspeakEngine {
	return &EspeakEngine{
		binary:     espeakBinary,
		log:        log,
		mu:         sync.Mutex{},
		cmd:        nil,
		paused:     false,
		generation: 0,
	}
}

// IsSupported reports whether the binary is available.
func (e *EspeakEngine) IsSupported() bool {
	_, err := exec.LookPath(e.binary)

	return err == nil
}

// Speak starts reading text aloud, cancelling any in-progress utterance
// first. It returns false when the engine is unsupported or the text is
// empty; failures after a successful start arrive via opts.OnError.
func (e *EspeakEngine) Speak(text string, opts core.SpeakOptions) bool {
	if strings.TrimSpace(text) == "" || !e.IsSupported() {
		return false
	}

	e.Stop()

	cmd := exec.Command(e.binary, speakArgs(text, opts)...)

	err := cmd.Start()
	if err != nil {
		e.log.Warn("Failed to start %s: %v", e.binary, err)

		if opts.OnError != nil {
			opts.OnError(err)
		}

		return false
	}

	e.mu.Lock()
	e.cmd = cmd
	e.paused = false
	generation := e.generation
	e.mu.Unlock()

	go e.await(cmd, generation, opts)

	return true
}

// await mirrors process exit into the engine state and fires the
// utterance callbacks. A Stop bumps the generation, so the wait for a
// killed process returns without reporting anything.
func (e *EspeakEngine) await(cmd *exec.Cmd, generation uint64, opts core.SpeakOptions) {
	waitErr := cmd.Wait()

	e.mu.Lock()

	if e.generation != generation {
		e.mu.Unlock()

		return
	}

	e.cmd = nil
	e.paused = false
	e.mu.Unlock()

	if waitErr != nil {
		if opts.OnError != nil {
			opts.OnError(waitErr)
		}

		return
	}

	if opts.OnEnd != nil {
		opts.OnEnd()
	}
}

// Stop cancels the current utterance, if any. Safe to call in any state.
func (e *EspeakEngine) Stop() {
	e.mu.Lock()
	cmd := e.cmd
	e.cmd = nil
	e.paused = false
	e.generation++
	e.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

// Pause suspends the current utterance.
func (e *EspeakEngine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil || e.paused {
		return
	}

	err := e.cmd.Process.Signal(syscall.SIGSTOP)
	if err == nil {
		e.paused = true
	}
}

// Resume continues a paused utterance.
func (e *EspeakEngine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cmd == nil || !e.paused {
		return
	}

	err := e.cmd.Process.Signal(syscall.SIGCONT)
	if err == nil {
		e.paused = false
	}
}

// IsSpeaking reports whether an utterance is in progress, paused or not.
func (e *EspeakEngine) IsSpeaking() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.cmd != nil
}

// IsPaused reports whether the current utterance is suspended.
func (e *EspeakEngine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.paused
}

func speakArgs(text string, opts core.SpeakOptions) []string {
	rate := opts.Rate
	if rate <= 0 {
		rate = 1.0
	}

	pitch := opts.Pitch
	if pitch <= 0 {
		pitch = 1.0
	}

	volume := opts.Volume
	if volume <= 0 {
		volume = 1.0
	}

	return []string{
		"-s", strconv.Itoa(int(rate * espeakBaseRateWPM)),
		"-p", strconv.Itoa(int(pitch * espeakBasePitch)),
		"-a", strconv.Itoa(int(volume * espeakBaseAmplitude)),
		text,
	}
}
