// Package device defines the pluggable executable-logic abstraction
// Converge devices implement, and the variant kinds a device reference
// can take (spec.md §4.3, §6 "Device contract", §9 "Dynamic dispatch").
package device

import (
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

// Handler is the canonical, full-arity form every device callable is
// adapted to. The dispatch planner truncates arguments for handlers
// that declared a smaller arity; it never needs a separate Handler
// type per arity because Go handlers simply ignore the parameters they
// don't declare — reflection does the arity matching (see Lookup).
type Handler func(input, sub *message.Message, opts options.Options) (message.Value, error)

// GroupFunc computes a device's custom dedup-group key for a call,
// overriding the resolver's default (input, sub-input) derivation
// (spec.md §4.6, §5's custom group-key hook). ok reports whether the
// device wants to customize the key for this call; a false return
// leaves the resolver's own derivation in place.
type GroupFunc func(input, sub *message.Message, opts options.Options) (key string, ok bool)

// Info is a device's published metadata, probed once per dispatch
// (spec.md §4.4 rule 2). Device-declared worker spawning from spec.md
// §3's contract is intentionally not modeled here: internal/resolver
// already spawns workers from the caller's SpawnWorker option rather
// than a per-device hook.
type Info struct {
	// Handler, if non-nil, intercepts every key that isn't in Exclude.
	Handler Handler
	// Exclude lists keys that revert to the default device even when
	// Handler is set.
	Exclude []string
	// Exports, when non-nil, restricts rule 3's exported-handler search
	// to the keys on this list (spec.md §3's "exports", §4.4 rule 3). A
	// nil Exports leaves every method on the target lookup-able.
	Exports []string
	// Default is the device's fallback callable (rule 4); it receives
	// the key as a prepended argument, distinguishing it from
	// DefaultMod.
	Default func(key string, input, sub *message.Message, opts options.Options) (message.Value, error)
	// DefaultMod is a fallback device reference (rule 4); unlike
	// Default, the key is not prepended when dispatching there — an
	// asymmetry carried over unchanged because its rationale is
	// unrecorded.
	DefaultMod *Ref
	// Group, if set, computes this device's custom dedup-group key.
	Group GroupFunc
}

// Device resolves keys of a message to executable handlers.
type Device interface {
	// Name identifies the device for logging and metrics; it is not
	// part of the dispatch contract.
	Name() string
	// DeviceInfo returns the device's published Info.
	DeviceInfo(input *message.Message, opts options.Options) (Info, error)
	// Lookup searches for an exported handler named key, trying
	// arities 3, then 2, then 1 as spec.md §4.4 rule 3 describes. ok
	// reports whether such a handler exists. Lookup only ever finds
	// key-named handlers, never the default fallback, so a handler it
	// returns never needs the key prepended to its arguments.
	Lookup(key string) (h Handler, ok bool)
}

// RefKind discriminates the three device-reference shapes spec.md §4.3
// enumerates.
type RefKind int

const (
	RefInline RefKind = iota
	RefSymbol
	RefContentID
)

// Ref is a device reference prior to loading.
type Ref struct {
	Kind      RefKind
	Symbol    string // RefSymbol: a builtin or preloaded-table alias
	ContentID string // RefContentID: a 43-byte content id
	Inline    *Inline
}

// RefFromValue interprets a message.Value carried under the reserved
// "device" key as a Ref. A symbol value or bytes value that has the
// shape of a 43-byte content id becomes RefContentID; any other
// symbol/bytes value becomes RefSymbol.
func RefFromValue(v message.Value, isContentID func(string) bool) Ref {
	s := v.AsString()
	if isContentID(s) {
		return Ref{Kind: RefContentID, ContentID: s}
	}
	return Ref{Kind: RefSymbol, Symbol: s}
}
