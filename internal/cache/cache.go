// Package cache implements the resolver's read/write memoization plane
// (spec.md §4.5): a lookup keyed by a caller-supplied request key (the
// resolver derives it from both the input and the sub-input), with a
// three-source cache-control precedence governing whether a result gets
// written back.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
	"github.com/convergenode/resolver/internal/store"
)

// Metrics receives cache plane observations. internal/telemetry
// implements this against Prometheus; tests can use a no-op.
type Metrics interface {
	CacheHit()
	CacheMiss()
	CacheWrite()
	CacheWriteError()
}

type noopMetrics struct{}

func (noopMetrics) CacheHit()         {}
func (noopMetrics) CacheMiss()        {}
func (noopMetrics) CacheWrite()       {}
func (noopMetrics) CacheWriteError()  {}

// Plane is the cache plane. Reads and writes key on a caller-supplied
// string, computed by the resolver from hashpath.RequestKey — a
// commitment over the whole (input, sub-input) pair — the plane
// itself is agnostic to how that key was constructed.
type Plane struct {
	backing store.Store
	front   *lru.Cache[string, []byte] // optional bounded front cache
	metrics Metrics
	wg      sync.WaitGroup // tracks in-flight async writes
}

// New builds a Plane over backing. frontSize <= 0 disables the
// in-memory LRU front cache (every read/write goes straight to
// backing). A nil metrics uses a no-op implementation.
func New(backing store.Store, frontSize int, metrics Metrics) *Plane {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	p := &Plane{backing: backing, metrics: metrics}
	if frontSize > 0 {
		c, err := lru.New[string, []byte](frontSize)
		if err == nil {
			p.front = c
		}
	}
	return p
}

// Read looks up key. A hit short-circuits stages 3-8 of the resolver;
// a miss (ok == false) proceeds to dispatch. The stored value may be a
// sub-message or a bare scalar, since a resolution's output can be
// either (spec.md §8).
func (p *Plane) Read(key string) (message.Value, bool) {
	if p.front != nil {
		if data, ok := p.front.Get(key); ok {
			v, err := message.UnmarshalValue(data)
			if err == nil {
				p.metrics.CacheHit()
				return v, true
			}
		}
	}

	blob, err := p.backing.Read(key)
	if err != nil {
		p.metrics.CacheMiss()
		return message.Value{}, false
	}
	v, err := message.UnmarshalValue(blob.Data)
	if err != nil {
		p.metrics.CacheMiss()
		return message.Value{}, false
	}
	if p.front != nil {
		p.front.Add(key, blob.Data)
	}
	p.metrics.CacheHit()
	return v, true
}

// ShouldWrite applies spec.md §4.5's three-source precedence: the
// global option, the input's Cache-Control, and the sub-input's
// Cache-Control. Caching is permitted only if the global option
// doesn't disable it and neither header lists a disabling token.
func ShouldWrite(opts options.Options, input, sub *message.Message) bool {
	if opts.Cache.Disables() {
		return false
	}
	if controlDisables(input) || controlDisables(sub) {
		return false
	}
	return true
}

func controlDisables(m *message.Message) bool {
	v, ok := m.Get(message.KeyCacheControl)
	if !ok {
		return false
	}
	switch v.AsString() {
	case "no_cache", "no_store", "no_transform":
		return true
	default:
		return false
	}
}

// Write stores output under key if ShouldWrite permits it, respecting
// async_cache: a synchronous write blocks the caller and returns its
// error; an async write is forked onto a goroutine tracked by Wait,
// and its error (if any) only reaches Metrics.CacheWriteError.
func (p *Plane) Write(key string, output message.Value, opts options.Options, input, sub *message.Message) error {
	if !ShouldWrite(opts, input, sub) {
		return nil
	}

	data, err := message.MarshalValue(output)
	if err != nil {
		return err
	}
	blob := store.Blob{Data: data, ContentType: "application/vnd.converge.value+json"}

	if opts.AsyncCache {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			if err := p.write(key, blob); err != nil {
				p.metrics.CacheWriteError()
			}
		}()
		return nil
	}
	return p.write(key, blob)
}

func (p *Plane) write(key string, blob store.Blob) error {
	if err := p.backing.Write(key, blob); err != nil {
		return err
	}
	if p.front != nil {
		p.front.Add(key, blob.Data)
	}
	p.metrics.CacheWrite()
	return nil
}

// Wait blocks until every async write started by Write has completed.
// Tests use this to assert on cache state deterministically; a long
// running server never needs to call it.
func (p *Plane) Wait() { p.wg.Wait() }
