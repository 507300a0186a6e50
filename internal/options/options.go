// Package options defines the resolver's Options value, split out from
// internal/resolver so that internal/dispatch, internal/cache, and
// internal/group — all of which need it — don't have to import the
// resolver package that in turn imports them.
package options

import (
	"time"

	"github.com/convergenode/resolver/internal/message"
)

// HashpathPolicy controls whether a resolution step extends the
// hashpath chain.
type HashpathPolicy string

const (
	HashpathUpdate HashpathPolicy = "update"
	HashpathIgnore HashpathPolicy = "ignore"
)

// CacheControl is a global caching directive (spec.md §4.5).
type CacheControl string

const (
	CacheAlways  CacheControl = "always"
	CacheNoCache CacheControl = "no_cache"
	CacheNoStore CacheControl = "no_store"
	CacheNone    CacheControl = "none"
)

// ErrorStrategy selects whether a failed resolution re-raises or
// returns a structured failure value.
type ErrorStrategy string

const (
	ErrorThrow  ErrorStrategy = "throw"
	ErrorReturn ErrorStrategy = "return"
)

// Prefer controls whether option lookups favor the options value
// carried alongside a call (local) or a process-wide default (global).
type Prefer string

const (
	PreferLocal  Prefer = "local"
	PreferGlobal Prefer = "global"
)

// Infinite represents "no timeout" for WorkerTimeout.
const Infinite time.Duration = -1

// Options carries the resolver's per-call configuration. Values are
// conceptually immutable: every stage transition that needs to change
// one returns a modified copy via one of the With* methods rather than
// mutating the receiver, per spec.md §5's "shared-resource policy".
type Options struct {
	Hashpath             HashpathPolicy
	Cache                CacheControl
	AsyncCache           bool
	SpawnWorker          bool
	WorkerTimeout        time.Duration
	ErrorStrategy        ErrorStrategy
	LoadRemoteDevices    bool
	TrustedDeviceSigners []string
	PreloadedDevices     map[string]any
	Groups               []string
	AddKey               bool
	Prefer               Prefer

	// Extra carries caller-supplied fields beyond the recognized
	// protocol keys — the options value is itself message-shaped, so a
	// handler can read arbitrary business data passed alongside the
	// protocol directives.
	Extra map[string]message.Value
}

// WithExtra returns a copy with key set to v in Extra.
func (o Options) WithExtra(key string, v message.Value) Options {
	next := make(map[string]message.Value, len(o.Extra)+1)
	for k, existing := range o.Extra {
		next[k] = existing
	}
	next[key] = v
	o.Extra = next
	return o
}

// Get looks up a caller-supplied field from Extra.
func (o Options) Get(key string) (message.Value, bool) {
	v, ok := o.Extra[key]
	return v, ok
}

// Default returns the baseline Options a fresh top-level call starts
// from.
func Default() Options {
	return Options{
		Hashpath:      HashpathUpdate,
		Cache:         CacheAlways,
		AsyncCache:    false,
		SpawnWorker:   false,
		WorkerTimeout: Infinite,
		ErrorStrategy: ErrorReturn,
		Prefer:        PreferLocal,
	}
}

// WithAddKey returns a copy with AddKey set, used by the dispatch
// planner to record whether the chosen call path needs the key
// prepended to the handler's arguments.
func (o Options) WithAddKey(v bool) Options {
	o.AddKey = v
	return o
}

// PushGroup returns a copy with group appended to the Groups stack,
// recording that the caller has joined it as leader.
func (o Options) PushGroup(group string) Options {
	next := make([]string, len(o.Groups)+1)
	copy(next, o.Groups)
	next[len(o.Groups)] = group
	o.Groups = next
	return o
}

// InGroup reports whether group is already an ancestor in the Groups
// stack, letting a reentrant handler avoid joining its own parent's
// group (spec.md §5 "Reentrancy").
func (o Options) InGroup(group string) bool {
	for _, g := range o.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// Disables reports whether the global Cache option alone forbids
// caching, independent of any Cache-Control header on the input or
// sub-input.
func (c CacheControl) Disables() bool {
	switch c {
	case CacheNoCache, CacheNoStore, CacheNone:
		return true
	default:
		return false
	}
}
