// main package for the exam-render-service
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/book-expert/logger"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/exam-render-service/internal/config"
	"github.com/book-expert/exam-render-service/internal/core"
	"github.com/book-expert/exam-render-service/internal/media"
	"github.com/book-expert/exam-render-service/internal/objectstore"
	"github.com/book-expert/exam-render-service/internal/render"
	"github.com/book-expert/exam-render-service/internal/speech"
	"github.com/book-expert/exam-render-service/internal/worker"
)

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "exam-render-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// setupSigner prefers GCS signing; without a usable storage credential
// the service still runs, resolving direct URLs only.
func setupSigner(ctx context.Context, log *logger.Logger) core.URLSigner {
	signer, err := media.NewGCSSigner(ctx)
	if err != nil {
		log.Warn("GCS signer unavailable, direct URLs only: %v", err)

		return media.NoopSigner{}
	}

	return signer
}

func run() error {
	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, finalLog)
}

func serve(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}

	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.NATS.RenderObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to create object store: %w", err)
	}

	resolver := media.NewResolver(setupSigner(ctx, log), media.ResolverOptions{
		TTL:    time.Duration(cfg.Media.TTLSeconds) * time.Second,
		Buffer: time.Duration(cfg.Media.BufferSeconds) * time.Second,
		Now:    nil,
	}, log)

	// The cache is scoped to the service session: drop it on the way out.
	defer resolver.Clear()

	renderWorker := worker.NewRenderWorker(
		natsConnection,
		cfg.NATS.RenderRequestSubject,
		store,
		resolver,
		render.New(resolver, log),
		speech.NewLinearizer(),
		cfg.Speech.IncludeTranscript,
		log,
	)

	log.System("Exam-Render-Service initialized. Listening for render requests on subject: %s",
		cfg.NATS.RenderRequestSubject)

	err = renderWorker.Run(ctx)
	if err != nil {
		return fmt.Errorf("worker exited: %w", err)
	}

	return nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
