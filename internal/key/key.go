// Package key canonicalizes the heterogeneous key representations a
// message or device may use — textual, symbolic, integral, or
// id-shaped — into the device's key space (spec.md §4.2).
package key

import (
	"strconv"
	"strings"
	"sync"

	"github.com/convergenode/resolver/internal/hashpath"
)

// Undefined is returned by ToKey when no canonical form can be derived.
// Callers decide whether that is fatal; the normalizer itself never
// raises.
const Undefined = ""

// symbols maps a lowercased textual key to its registered symbol form.
// It is populated only through explicit RegisterSymbol calls; the
// builtin devices in internal/devices register none, so it starts
// empty.
var (
	symbolsMu sync.RWMutex
	symbols   = make(map[string]string)
)

// RegisterSymbol declares that name (case-insensitively) should render
// as the given symbol form wherever it's seen as a key.
func RegisterSymbol(name, symbol string) {
	symbolsMu.Lock()
	defer symbolsMu.Unlock()
	symbols[strings.ToLower(name)] = symbol
}

func lookupSymbol(name string) (string, bool) {
	symbolsMu.RLock()
	defer symbolsMu.RUnlock()
	s, ok := symbols[strings.ToLower(name)]
	return s, ok
}

// ToKey canonicalizes k: a 43-byte content id is returned unchanged; a
// key with a registered symbol form is returned as that symbol; anything
// else is returned as its canonical (lowercased) byte-string form.
// Integral keys (e.g. list indices) are rendered as decimal strings.
func ToKey(k any) string {
	switch v := k.(type) {
	case string:
		if hashpath.IsContentID(v) {
			return v
		}
		if sym, ok := lookupSymbol(v); ok {
			return sym
		}
		return strings.ToLower(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case nil:
		return Undefined
	default:
		return Undefined
	}
}

// KeyToBinary always returns the byte-string form of k, bypassing the
// symbol table — used wherever a key must be hashed or written as raw
// bytes rather than matched for dispatch.
func KeyToBinary(k any) []byte {
	switch v := k.(type) {
	case string:
		if hashpath.IsContentID(v) {
			return []byte(v)
		}
		return []byte(strings.ToLower(v))
	case int:
		return []byte(strconv.Itoa(v))
	case int64:
		return []byte(strconv.FormatInt(v, 10))
	default:
		return nil
	}
}
