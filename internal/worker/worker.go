// Package worker provides a NATS worker that renders question documents.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/book-expert/exam-render-service/internal/content"
	"github.com/book-expert/exam-render-service/internal/core"
	"github.com/book-expert/exam-render-service/internal/media"
	"github.com/book-expert/exam-render-service/internal/render"
	"github.com/book-expert/exam-render-service/internal/speech"
)

const handleMessageTimeout = 30 * time.Second

var (
	// ErrRequestIDEmpty indicates that the request identifier is empty.
	ErrRequestIDEmpty = errors.New("request id cannot be empty")
	// ErrDocumentKeyEmpty indicates that the document key is empty.
	ErrDocumentKeyEmpty = errors.New("document key cannot be empty")
)

// QuestionRenderRequest asks for one question document, stored in the
// object store as a JSON block list, to be rendered.
type QuestionRenderRequest struct {
	RequestID         string           `json:"request_id"`
	DocumentKey       string           `json:"document_key"`
	IncludeTranscript bool             `json:"include_transcript"`
	Options           []content.Option `json:"options,omitempty"`
}

// QuestionRenderedEvent is the reply to a render request: the key of the
// uploaded SVG, and the speakable transcript when one was requested.
type QuestionRenderedEvent struct {
	RequestID  string `json:"request_id"`
	SVGKey     string `json:"svg_key"`
	Transcript string `json:"transcript,omitempty"`
	BlockCount int    `json:"block_count"`
}

// RenderWorker listens for render requests on a NATS subject and
// processes them. Rendered artifacts are session-scoped: the worker
// tracks every key it uploads and deletes them all on shutdown.
type RenderWorker struct {
	natsConnection    *nats.Conn
	subject           string
	store             core.ObjectStore
	resolver          *media.Resolver
	renderer          *render.Renderer
	linearizer        *speech.Linearizer
	includeTranscript bool
	log               *logger.Logger

	mu           sync.Mutex
	artifactKeys []string
}

// NewRenderWorker creates a new instance of a render worker.
// includeTranscript makes the worker produce a transcript for every
// request, not only those that ask for one.
func NewRenderWorker(
	natsConnection *nats.Conn,
	subject string,
	store core.ObjectStore,
	resolver *media.Resolver,
	renderer *render.Renderer,
	linearizer *speech.Linearizer,
	includeTranscript bool,
	log *logger.Logger,
) *RenderWorker {
	return &RenderWorker{
		natsConnection:    natsConnection,
		subject:           subject,
		store:             store,
		resolver:          resolver,
		renderer:          renderer,
		linearizer:        linearizer,
		includeTranscript: includeTranscript,
		log:               log,
		mu:                sync.Mutex{},
		artifactKeys:      nil,
	}
}

// Run starts the worker and begins listening for messages.
func (w *RenderWorker) Run(ctx context.Context) error {
	sub, err := w.natsConnection.Subscribe(w.subject, w.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.subject, err)
	}

	<-ctx.Done()

	drainErr := sub.Drain()

	w.cleanupArtifacts()

	if drainErr != nil {
		return fmt.Errorf("failed to drain subscription: %w", drainErr)
	}

	return nil
}

// cleanupArtifacts deletes the rendered artifacts uploaded during this
// session. Consumers fetch rendered output while the worker runs; it is
// not kept past shutdown.
func (w *RenderWorker) cleanupArtifacts() {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	w.mu.Lock()
	keys := w.artifactKeys
	w.artifactKeys = nil
	w.mu.Unlock()

	for _, key := range keys {
		err := w.store.Delete(ctx, key)
		if err != nil {
			w.log.Warn("Failed to delete artifact '%s': %v", key, err)
		}
	}
}

func (w *RenderWorker) handleMessage(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	request, err := parseAndValidateRequest(msg)
	if err != nil {
		w.log.Error("Failed to parse and validate render request: %v", err)

		return
	}

	reply, processErr := w.processRenderJob(ctx, request)
	if processErr != nil {
		w.log.Error("Failed to process render job %s: %v", request.RequestID, processErr)

		return
	}

	err = w.publishReply(msg, reply)
	if err != nil {
		w.log.Error("Failed to publish reply for request %s: %v", request.RequestID, err)
	}
}

// processRenderJob downloads and decodes the document, prewarms the
// media cache so image resolution hits warm entries, renders the SVG and
// uploads it, then linearizes the transcript when requested.
func (w *RenderWorker) processRenderJob(
	ctx context.Context,
	request *QuestionRenderRequest,
) (*QuestionRenderedEvent, error) {
	docData, err := w.store.Download(ctx, request.DocumentKey)
	if err != nil {
		return nil, fmt.Errorf("failed to download document '%s': %w", request.DocumentKey, err)
	}

	doc, err := content.DecodeDocument(docData)
	if err != nil {
		return nil, fmt.Errorf("failed to decode document '%s': %w", request.DocumentKey, err)
	}

	w.resolver.Prewarm(ctx, imageRefs(doc))

	var buf bytes.Buffer

	err = w.renderer.RenderDocument(ctx, &buf, doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render document '%s': %w", request.DocumentKey, err)
	}

	svgKey := uuid.NewString() + ".svg"

	err = w.store.Upload(ctx, svgKey, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to upload rendered SVG '%s': %w", svgKey, err)
	}

	w.mu.Lock()
	w.artifactKeys = append(w.artifactKeys, svgKey)
	w.mu.Unlock()

	reply := &QuestionRenderedEvent{
		RequestID:  request.RequestID,
		SVGKey:     svgKey,
		Transcript: "",
		BlockCount: len(doc),
	}

	if request.IncludeTranscript || w.includeTranscript {
		reply.Transcript = w.linearizer.Linearize(doc, request.Options)
	}

	return reply, nil
}

// imageRefs collects the media references of every image block.
func imageRefs(doc content.Document) []media.Ref {
	var refs []media.Ref

	for _, block := range doc {
		img, ok := block.(content.Image)
		if ok {
			refs = append(refs, media.Ref{URL: img.URL, Bucket: img.Bucket, Path: img.Path})
		}
	}

	return refs
}

func (w *RenderWorker) publishReply(msg *nats.Msg, reply *QuestionRenderedEvent) error {
	replyData, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}

func parseAndValidateRequest(msg *nats.Msg) (*QuestionRenderRequest, error) {
	var request QuestionRenderRequest

	err := json.Unmarshal(msg.Data, &request)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal render request: %w", err)
	}

	if request.RequestID == "" {
		return nil, ErrRequestIDEmpty
	}

	if request.DocumentKey == "" {
		return nil, ErrDocumentKeyEmpty
	}

	return &request, nil
}
