// Package hashpath implements the cryptographic accumulator that
// chains every resolution step into the next (spec.md §3's "Hashpath").
// Each push commits the new hashpath to both the prior hashpath and the
// sub-input that produced it, so a hashpath witnesses the entire
// resolution chain that led to it.
package hashpath

import (
	"encoding/base64"
	"encoding/binary"
	"math"

	"lukechampine.com/blake3"

	"github.com/convergenode/resolver/internal/message"
)

// Size is the digest length in bytes. Rendered as an unpadded base64url
// string this is exactly 43 characters, matching the content-id length
// spec.md §3 and §4.3 use to recognize references and remote device
// ids.
const Size = 32

// RenderedLen is the length of a Hashpath rendered by Render.
const RenderedLen = 43

// Hashpath is the BLAKE3-256 accumulator value.
type Hashpath [Size]byte

// Zero is the hashpath of a message with no history — the starting
// point for a freshly ingressed message that carries no prior chain.
var Zero Hashpath

// Push computes the next hashpath in the chain: H(prior || Commit(sub)).
// Per spec.md §3's invariant, this must be called only when extending a
// non-scalar output; scalar outputs bypass linking entirely (enforced
// by the resolver's stage 6, not here).
func Push(prior Hashpath, sub *message.Message) Hashpath {
	h := blake3.New(Size, nil)
	h.Write(prior[:])
	h.Write(Commit(sub))
	var out Hashpath
	copy(out[:], h.Sum(nil))
	return out
}

// Commit produces a deterministic encoding of a message suitable for
// hashing: keys are sorted, each entry is length-prefixed, and
// sub-messages are committed recursively. This is not a wire format —
// only Push and content-id derivation consume it.
func Commit(m *message.Message) []byte {
	if m == nil {
		return []byte{0}
	}
	keys := m.SortedKeys()
	var out []byte
	for _, k := range keys {
		v, _ := m.Get(k)
		out = append(out, lengthPrefixed([]byte(k))...)
		out = append(out, commitValue(v)...)
	}
	return out
}

func commitValue(v message.Value) []byte {
	switch v.Kind {
	case message.KindBytes:
		return lengthPrefixed(v.Bytes)
	case message.KindSymbol:
		return lengthPrefixed([]byte("sym:" + v.Symbol))
	case message.KindInt:
		return lengthPrefixed([]byte{byte(v.Int), byte(v.Int >> 8), byte(v.Int >> 16), byte(v.Int >> 24)})
	case message.KindFloat:
		bits := math.Float64bits(v.Float)
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint64(buf, bits)
		return lengthPrefixed(buf)
	case message.KindBool:
		if v.Bool {
			return []byte{1}
		}
		return []byte{0}
	case message.KindMessage:
		return lengthPrefixed(Commit(v.Msg))
	case message.KindList:
		var out []byte
		for _, el := range v.List {
			out = append(out, commitValue(el)...)
		}
		return lengthPrefixed(out)
	default:
		return nil
	}
}

func lengthPrefixed(b []byte) []byte {
	n := len(b)
	prefix := []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
	return append(prefix, b...)
}

// Render encodes a Hashpath as its 43-character unpadded base64url
// content id.
func Render(h Hashpath) string {
	return base64.RawURLEncoding.EncodeToString(h[:])
}

// RequestKey derives the resolver's default memoization identity for a
// call: a commitment over both input and sub-input, rendered the same
// way a Hashpath is. Cache and dedup-group lookups key on this rather
// than the literal path string, so two calls that walk the same path
// against different inputs — e.g. successive parent rebuilds in a
// deep-set — never collide on the same entry.
func RequestKey(input, sub *message.Message) string {
	h := blake3.New(Size, nil)
	h.Write(Commit(input))
	h.Write(Commit(sub))
	var out Hashpath
	copy(out[:], h.Sum(nil))
	return Render(out)
}

// Parse decodes a 43-character content id back into a Hashpath. It
// returns false for any input that isn't exactly RenderedLen characters
// of valid base64url — the same test the key normalizer and path
// algebra use to recognize reference-call heads and remote device ids.
func Parse(s string) (Hashpath, bool) {
	if len(s) != RenderedLen {
		return Hashpath{}, false
	}
	decoded, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil || len(decoded) != Size {
		return Hashpath{}, false
	}
	var h Hashpath
	copy(h[:], decoded)
	return h, true
}

// IsContentID reports whether s has the shape of a 43-character
// content-addressed id, without fully decoding it.
func IsContentID(s string) bool {
	_, ok := Parse(s)
	return ok
}
