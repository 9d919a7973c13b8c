package playback

import (
	"errors"
	"fmt"
	"os/exec"
	"sync"
	"syscall"

	"github.com/book-expert/logger"
)

const ffplayBinary = "ffplay"

// ErrNoURLLoaded indicates Play was called before Load.
var ErrNoURLLoaded = errors.New("no audio URL loaded")

// FFPlayPlayer implements core.AudioPlayer by driving the ffplay binary,
// one process per playback. Rewinding to position zero stops the process;
// the next Play starts it again from the beginning.
type FFPlayPlayer struct {
	binary string
	log    *logger.Logger

	mu         sync.Mutex
	url        string
	onEnded    func()
	onError    func(error)
	cmd        *exec.Cmd
	paused     bool
	generation uint64
}

// NewFFPlayPlayer creates a player over the ffplay binary found on PATH.
func NewFFPlayPlayer(log *logger.Logger) *FFPlayPlayer {
	return &FFPlayPlayer{
		binary:     ffplayBinary,
		log:        log,
		mu:         sync.Mutex{},
		url:        "",
		onEnded:    nil,
		onError:    nil,
		cmd:        nil,
		paused:     false,
		generation: 0,
	}
}

// Load binds a URL and its ended/error notifications to the player.
func (p *FFPlayPlayer) Load(url string, onEnded func(), onError func(error)) error {
	_, err := exec.LookPath(p.binary)
	if err != nil {
		return fmt.Errorf("audio playback unavailable: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.url = url
	p.onEnded = onEnded
	p.onError = onError

	return nil
}

// Play starts playback, or resumes it when paused.
func (p *FFPlayPlayer) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd != nil {
		if p.paused {
			err := p.cmd.Process.Signal(syscall.SIGCONT)
			if err != nil {
				return fmt.Errorf("failed to resume audio: %w", err)
			}

			p.paused = false
		}

		return nil
	}

	if p.url == "" {
		return ErrNoURLLoaded
	}

	cmd := exec.Command(p.binary, "-nodisp", "-autoexit", "-loglevel", "quiet", p.url)

	err := cmd.Start()
	if err != nil {
		return fmt.Errorf("failed to start audio playback: %w", err)
	}

	p.cmd = cmd
	p.paused = false
	generation := p.generation

	go p.await(cmd, generation)

	return nil
}

func (p *FFPlayPlayer) await(cmd *exec.Cmd, generation uint64) {
	waitErr := cmd.Wait()

	p.mu.Lock()

	if p.generation != generation {
		p.mu.Unlock()

		return
	}

	p.cmd = nil
	p.paused = false
	onEnded := p.onEnded
	onError := p.onError
	p.mu.Unlock()

	if waitErr != nil {
		if onError != nil {
			onError(waitErr)
		}

		return
	}

	if onEnded != nil {
		onEnded()
	}
}

// Pause suspends playback.
func (p *FFPlayPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cmd == nil || p.paused {
		return nil
	}

	err := p.cmd.Process.Signal(syscall.SIGSTOP)
	if err != nil {
		return fmt.Errorf("failed to pause audio: %w", err)
	}

	p.paused = true

	return nil
}

// Rewind seeks to position zero by dropping the process; the URL stays
// loaded, so the next Play starts from the beginning.
func (p *FFPlayPlayer) Rewind() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	return nil
}

// Close releases the player.
func (p *FFPlayPlayer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.url = ""
	p.onEnded = nil
	p.onError = nil

	return nil
}

// stopLocked kills the playback process without firing callbacks. The
// generation bump makes the pending await return silently.
func (p *FFPlayPlayer) stopLocked() {
	if p.cmd == nil {
		return
	}

	p.generation++

	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}

	p.cmd = nil
	p.paused = false
}
