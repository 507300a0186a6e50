// Package message defines the Converge value model: an immutable,
// case-insensitive mapping from keys to values that every resolution
// step reads from and produces.
package message

import (
	"sort"
	"strings"
)

// Reserved keys with special resolver semantics (spec.md §3).
const (
	KeyDevice       = "device"
	KeyPath         = "path"
	KeyHashpath     = "hashpath"
	KeyCacheControl = "Cache-Control"
	KeySignature    = "signature"
	KeySigner       = "signer"
)

// Kind discriminates the variants a Value can hold.
type Kind int

const (
	KindBytes Kind = iota
	KindInt
	KindFloat
	KindBool
	KindSymbol
	KindMessage
	KindList
)

// Value is a closed sum type over the scalar, sub-message, and list
// shapes a message field may hold. Zero value is an empty byte string.
type Value struct {
	Msg    *Message
	Symbol string
	Bytes  []byte
	List   []Value
	Int    int64
	Float  float64
	Kind   Kind
	Bool   bool
}

func Bytes(b []byte) Value { return Value{Kind: KindBytes, Bytes: b} }
func Str(s string) Value   { return Value{Kind: KindBytes, Bytes: []byte(s)} }
func Int(i int64) Value    { return Value{Kind: KindInt, Int: i} }
func Float(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func Bool(b bool) Value     { return Value{Kind: KindBool, Bool: b} }
func Symbol(s string) Value { return Value{Kind: KindSymbol, Symbol: s} }
func Sub(m *Message) Value  { return Value{Kind: KindMessage, Msg: m} }
func List(vs []Value) Value { return Value{Kind: KindList, List: vs} }

// AsString renders a scalar value as text for keys/paths/logging. It
// does not attempt to render sub-messages or lists.
func (v Value) AsString() string {
	switch v.Kind {
	case KindBytes:
		return string(v.Bytes)
	case KindSymbol:
		return v.Symbol
	default:
		return ""
	}
}

// Message is an immutable, case-insensitive key/value mapping. "Mutating"
// operations (With, Without) return a new Message; the receiver is
// never modified, per spec.md §3's "messages are treated as immutable
// values" invariant.
type Message struct {
	fields map[string]Value
	order  []string // canonical (lowercased) keys, insertion order
}

// New returns an empty message.
func New() *Message {
	return &Message{fields: make(map[string]Value)}
}

// FromMap builds a message from a plain Go map, useful for tests and
// for adapting ingress payloads. Key order is not guaranteed.
func FromMap(m map[string]Value) *Message {
	msg := New()
	for k, v := range m {
		msg = msg.With(k, v)
	}
	return msg
}

func canon(key string) string { return strings.ToLower(key) }

// Get returns the value for key (case-insensitive) and whether it was
// present.
func (m *Message) Get(key string) (Value, bool) {
	if m == nil {
		return Value{}, false
	}
	v, ok := m.fields[canon(key)]
	return v, ok
}

// With returns a new message with key set to value, preserving every
// other field. Re-setting an existing key keeps its position in Keys().
func (m *Message) With(key string, v Value) *Message {
	out := m.clone()
	ck := canon(key)
	if _, exists := out.fields[ck]; !exists {
		out.order = append(out.order, ck)
	}
	out.fields[ck] = v
	return out
}

// Without returns a new message with key removed, a no-op if the key
// was absent.
func (m *Message) Without(key string) *Message {
	out := m.clone()
	ck := canon(key)
	if _, exists := out.fields[ck]; !exists {
		return out
	}
	delete(out.fields, ck)
	for i, k := range out.order {
		if k == ck {
			out.order = append(out.order[:i], out.order[i+1:]...)
			break
		}
	}
	return out
}

func (m *Message) clone() *Message {
	if m == nil {
		return New()
	}
	out := &Message{
		fields: make(map[string]Value, len(m.fields)),
		order:  append([]string(nil), m.order...),
	}
	for k, v := range m.fields {
		out.fields[k] = v
	}
	return out
}

// Keys returns the message's keys in insertion order. KeysAll (the zero
// value) lists every key; KeysExcludeReserved leaves out the
// boundary-reserved keys (device, path, hashpath, Cache-Control), per
// spec.md §4.9's "remove mode filters a well-known list of reserved
// keys."
func (m *Message) Keys(mode KeysMode) []string {
	if m == nil {
		return nil
	}
	out := make([]string, 0, len(m.order))
	for _, k := range m.order {
		switch mode {
		case KeysAll:
			out = append(out, k)
		case KeysExcludeReserved:
			if !isReserved(k) {
				out = append(out, k)
			}
		}
	}
	return out
}

// KeysMode selects which keys Keys() returns.
type KeysMode int

const (
	KeysAll KeysMode = iota
	KeysExcludeReserved
)

func isReserved(key string) bool {
	switch canon(key) {
	case KeyDevice, KeyPath, KeyHashpath, canon(KeyCacheControl):
		return true
	default:
		return false
	}
}

// Device returns the message's device-selector key, if set.
func (m *Message) Device() (Value, bool) { return m.Get(KeyDevice) }

// Hashpath returns the message's witness value, if set.
func (m *Message) Hashpath() (Value, bool) { return m.Get(KeyHashpath) }

// Equal reports structural equality, used by tests asserting
// deterministic resolution (spec.md §8's determinism property). Key
// order is not part of equality; field contents are.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	if len(m.fields) != len(other.fields) {
		return false
	}
	for k, v := range m.fields {
		ov, ok := other.fields[k]
		if !ok || !valuesEqual(v, ov) {
			return false
		}
	}
	return true
}

func valuesEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindBytes:
		return string(a.Bytes) == string(b.Bytes)
	case KindInt:
		return a.Int == b.Int
	case KindFloat:
		return a.Float == b.Float
	case KindBool:
		return a.Bool == b.Bool
	case KindSymbol:
		return a.Symbol == b.Symbol
	case KindMessage:
		return a.Msg.Equal(b.Msg)
	case KindList:
		if len(a.List) != len(b.List) {
			return false
		}
		for i := range a.List {
			if !valuesEqual(a.List[i], b.List[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// SortedKeys returns the message's keys sorted lexically, used by
// internal/hashpath's canonical Commit encoding where key order must be
// deterministic regardless of insertion order.
func (m *Message) SortedKeys() []string {
	keys := m.Keys(KeysAll)
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return sorted
}
