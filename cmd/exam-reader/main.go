// exam-reader is a command-line client that reads a question document
// aloud: it loads the block list from a file or from the object store,
// linearizes it, and drives the playback controller until the reading
// ends or the user interrupts.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/exam-render-service/internal/config"
	"github.com/book-expert/exam-render-service/internal/content"
	"github.com/book-expert/exam-render-service/internal/core"
	"github.com/book-expert/exam-render-service/internal/media"
	"github.com/book-expert/exam-render-service/internal/objectstore"
	"github.com/book-expert/exam-render-service/internal/playback"
	"github.com/book-expert/exam-render-service/internal/speech"
)

// Flag names.
const (
	flagFile       = "file"
	flagKey        = "key"
	flagNATS       = "nats"
	flagBucket     = "bucket"
	flagAudio      = "audio"
	flagRate       = "rate"
	flagPitch      = "pitch"
	flagVolume     = "volume"
	flagTranscript = "transcript"
)

// Flag descriptions.
const (
	flagFileDesc       = "Path to a question document JSON file"
	flagKeyDesc        = "Object store key of the question document"
	flagNATSDesc       = "NATS server URL (used with -key)"
	flagBucketDesc     = "Object store bucket (used with -key)"
	flagAudioDesc      = "Pre-recorded audio URL to play instead of synthetic speech"
	flagRateDesc       = "Speech rate multiplier (0 uses the configured default)"
	flagPitchDesc      = "Speech pitch multiplier (0 uses the configured default)"
	flagVolumeDesc     = "Speech volume, 0.0 to 1.0 (0 uses the configured default)"
	flagTranscriptDesc = "Print the transcript and exit without speaking"
)

var (
	errNoDocumentSource = errors.New("either -file or -key must be provided")
	errBothSources      = errors.New("cannot specify both -file and -key")
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	file       string
	key        string
	natsURL    string
	bucket     string
	audio      string
	rate       float64
	pitch      float64
	volume     float64
	transcript bool
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	err := validateFlags(flags)
	if err != nil {
		return err
	}

	readerLog, err := logger.New(os.TempDir(), "exam-reader.log")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer func() {
		closeErr := readerLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	doc, err := loadDocument(ctx, flags)
	if err != nil {
		return err
	}

	linearizer := speech.NewLinearizer()

	if flags.transcript {
		fmt.Println(linearizer.Linearize(doc, nil))

		return nil
	}

	return read(ctx, doc, linearizer, flags, loadSpeechConfig(readerLog), readerLog)
}

// loadSpeechConfig loads the service configuration for its [speech]
// defaults. The reader works without one; flags and engine defaults
// cover everything.
func loadSpeechConfig(readerLog *logger.Logger) *config.Config {
	cfg, err := config.Load(readerLog)
	if err != nil {
		readerLog.Warn("No configuration found, using flag defaults: %v", err)

		return nil
	}

	return cfg
}

// speechSettings resolves the effective tuning and poll interval:
// explicit flags win, then the [speech] config section, then the engine
// defaults.
func speechSettings(flags appFlags, cfg *config.Config) (playback.Tuning, time.Duration) {
	tuning := playback.Tuning{Rate: flags.rate, Pitch: flags.pitch, Volume: flags.volume}

	var pollInterval time.Duration

	if cfg != nil {
		if tuning.Rate <= 0 {
			tuning.Rate = cfg.Speech.Rate
		}

		if tuning.Pitch <= 0 {
			tuning.Pitch = cfg.Speech.Pitch
		}

		if tuning.Volume <= 0 {
			tuning.Volume = cfg.Speech.Volume
		}

		pollInterval = time.Duration(cfg.Speech.PollIntervalMillis) * time.Millisecond
	}

	return tuning, pollInterval
}

func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.file, flagFile, "", flagFileDesc)
	flag.StringVar(&flags.key, flagKey, "", flagKeyDesc)
	flag.StringVar(&flags.natsURL, flagNATS, nats.DefaultURL, flagNATSDesc)
	flag.StringVar(&flags.bucket, flagBucket, "QUESTION_DOCUMENTS", flagBucketDesc)
	flag.StringVar(&flags.audio, flagAudio, "", flagAudioDesc)
	flag.Float64Var(&flags.rate, flagRate, 0, flagRateDesc)
	flag.Float64Var(&flags.pitch, flagPitch, 0, flagPitchDesc)
	flag.Float64Var(&flags.volume, flagVolume, 0, flagVolumeDesc)
	flag.BoolVar(&flags.transcript, flagTranscript, false, flagTranscriptDesc)
	flag.Parse()

	return flags
}

func validateFlags(flags appFlags) error {
	if flags.file == "" && flags.key == "" {
		return errNoDocumentSource
	}

	if flags.file != "" && flags.key != "" {
		return errBothSources
	}

	return nil
}

// loadDocument reads the question JSON from the local file system or from
// the object store and decodes it.
func loadDocument(ctx context.Context, flags appFlags) (content.Document, error) {
	var (
		data []byte
		err  error
	)

	if flags.file != "" {
		data, err = os.ReadFile(flags.file)
		if err != nil {
			return nil, fmt.Errorf("failed to read document file: %w", err)
		}
	} else {
		data, err = downloadDocument(ctx, flags)
		if err != nil {
			return nil, err
		}
	}

	doc, err := content.DecodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	return doc, nil
}

func downloadDocument(ctx context.Context, flags appFlags) ([]byte, error) {
	natsConnection, err := nats.Connect(flags.natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", flags.natsURL, err)
	}

	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, flags.bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to open object store: %w", err)
	}

	data, err := store.Download(ctx, flags.key)
	if err != nil {
		return nil, fmt.Errorf("failed to download document '%s': %w", flags.key, err)
	}

	return data, nil
}

// read plays the document through the controller and blocks until the
// reading ends, fails, or the user interrupts.
func read(
	ctx context.Context,
	doc content.Document,
	linearizer *speech.Linearizer,
	flags appFlags,
	cfg *config.Config,
	readerLog *logger.Logger,
) error {
	signer := setupSigner(ctx, readerLog)

	resolver := media.NewResolver(signer, media.ResolverOptions{TTL: 0, Buffer: 0, Now: nil}, readerLog)
	defer resolver.Clear()

	engine := speech.NewEspeakEngine(readerLog)
	player := playback.NewFFPlayPlayer(readerLog)

	tuning, pollInterval := speechSettings(flags, cfg)

	controller := playback.NewController(resolver, engine, player, linearizer, pollInterval, readerLog)
	defer controller.Close()

	done := make(chan error, 1)

	controller.Play(ctx, playback.Source{
		Audio:   media.Ref{URL: flags.audio, Bucket: "", Path: ""},
		Blocks:  doc,
		Options: nil,
		Tuning:  tuning,
	}, playback.Callbacks{
		OnStart: func() { readerLog.Info("Reading started") },
		OnEnd:   func() { done <- nil },
		OnError: func(err error) { done <- err },
	})

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("reading failed: %w", err)
		}

		return nil
	case <-ctx.Done():
		controller.Stop()

		return nil
	}
}

// setupSigner prefers GCS signing; without a usable storage credential
// only direct URLs resolve.
func setupSigner(ctx context.Context, readerLog *logger.Logger) core.URLSigner {
	signer, err := media.NewGCSSigner(ctx)
	if err != nil {
		readerLog.Warn("GCS signer unavailable, direct URLs only: %v", err)

		return media.NoopSigner{}
	}

	return signer
}
