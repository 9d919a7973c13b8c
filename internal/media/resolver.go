// Package media resolves block media references to fetchable URLs.
//
// A reference is either a direct URL, passed through untouched, or a
// {bucket, path} pair that must be exchanged for a signed, time-limited
// URL. Signed URLs are cached per bucket:path and reused only while they
// are comfortably inside their validity window, so a URL is never handed
// out if it could expire mid-use.
package media

import (
	"context"
	"sync"
	"time"

	"github.com/book-expert/logger"

	"github.com/book-expert/exam-render-service/internal/core"
)

const (
	// DefaultTTL is the validity window requested from the signer when
	// the caller does not configure one.
	DefaultTTL = 3600 * time.Second

	// FreshnessBuffer is the safety margin subtracted from a cached
	// URL's expiry: an entry is reused only if it stays valid for at
	// least this much longer.
	FreshnessBuffer = 300 * time.Second
)

// Ref identifies one media asset. URL set means pass-through; otherwise
// Bucket and Path address an object that needs signing.
type Ref struct {
	URL    string
	Bucket string
	Path   string
}

// IsZero reports whether the reference points at nothing.
func (r Ref) IsZero() bool {
	return r.URL == "" && r.Bucket == "" && r.Path == ""
}

func (r Ref) cacheKey() string {
	return r.Bucket + ":" + r.Path
}

type cacheEntry struct {
	url       string
	expiresAt time.Time
}

// ResolverOptions tunes a Resolver. Zero values select the defaults; Now
// exists so tests can control freshness arithmetic.
type ResolverOptions struct {
	TTL    time.Duration
	Buffer time.Duration
	Now    func() time.Time
}

// Resolver exchanges media references for fetchable URLs, caching signed
// URLs until they approach expiry.
type Resolver struct {
	signer core.URLSigner
	ttl    time.Duration
	buffer time.Duration
	now    func() time.Time
	log    *logger.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewResolver creates a resolver over the given signer.
func NewResolver(signer core.URLSigner, opts ResolverOptions, log *logger.Logger) *Resolver {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}

	if opts.Buffer <= 0 {
		opts.Buffer = FreshnessBuffer
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Resolver{
		signer: signer,
		ttl:    opts.TTL,
		buffer: opts.Buffer,
		now:    opts.Now,
		log:    log,
		mu:     sync.Mutex{},
		cache:  make(map[string]cacheEntry),
	}
}

// Resolve returns a fetchable URL for the reference. Direct URLs pass
// through without signing or caching. Signing and network failures are
// reported as ("", false), never as an error: the renderer degrades to a
// placeholder instead.
func (r *Resolver) Resolve(ctx context.Context, ref Ref) (string, bool) {
	if ref.URL != "" {
		return ref.URL, true
	}

	if ref.IsZero() {
		return "", false
	}

	if url, ok := r.cached(ref); ok {
		return url, true
	}

	return r.fetch(ctx, ref)
}

// cached returns the cache entry for ref if it will remain valid beyond
// the freshness buffer.
func (r *Resolver) cached(ref Ref) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.cache[ref.cacheKey()]
	if !ok {
		return "", false
	}

	if !entry.expiresAt.After(r.now().Add(r.buffer)) {
		return "", false
	}

	return entry.url, true
}

func (r *Resolver) fetch(ctx context.Context, ref Ref) (string, bool) {
	signed, err := r.signer.Sign(ctx, ref.Bucket, ref.Path, r.ttl)
	if err != nil {
		r.log.Warn("Failed to sign URL for %s/%s: %v", ref.Bucket, ref.Path, err)

		return "", false
	}

	r.mu.Lock()
	r.cache[ref.cacheKey()] = cacheEntry{
		url:       signed.URL,
		expiresAt: r.now().Add(signed.ValidFor),
	}
	r.mu.Unlock()

	return signed.URL, true
}

// ResolveAll resolves N references, fetching the stale or missing ones
// concurrently behind an all-complete barrier. A failed reference yields
// an empty entry at its index without failing the batch.
func (r *Resolver) ResolveAll(ctx context.Context, refs []Ref) []string {
	results := make([]string, len(refs))

	var wg sync.WaitGroup

	for i, ref := range refs {
		if ref.URL != "" {
			results[i] = ref.URL

			continue
		}

		if ref.IsZero() {
			continue
		}

		if url, ok := r.cached(ref); ok {
			results[i] = url

			continue
		}

		wg.Add(1)

		go func(i int, ref Ref) {
			defer wg.Done()

			url, ok := r.fetch(ctx, ref)
			if ok {
				results[i] = url
			}
		}(i, ref)
	}

	wg.Wait()

	return results
}

// Prewarm performs a batch resolution and discards the result. It is used
// to populate the cache before a document is rendered so that per-image
// first-paint latency is hidden.
func (r *Resolver) Prewarm(ctx context.Context, refs []Ref) {
	_ = r.ResolveAll(ctx, refs)
}

// Clear drops every cached entry. Called on session end.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.cache = make(map[string]cacheEntry)
}
