// Package path implements the pure path algebra Converge uses to walk
// the hierarchical selector carried by a message's "path" key
// (spec.md §4.1). None of these functions perform I/O or hold locks;
// the resolver state machine is the only caller that gives them
// meaning.
package path

import (
	"strings"

	"github.com/convergenode/resolver/internal/message"
)

// Terminal is the sentinel Tail returns once a path has been fully
// consumed.
const Terminal = ""

// Path is an ordered sequence of path elements. A nil or empty Path is
// the single-element terminal case spec.md §3 calls out.
type Path []string

// TermToPath coerces an arbitrary scalar term into a Path: a bytes/
// symbol value is split on "/" into one element per segment, a list of
// scalars becomes one element per entry.
func TermToPath(v message.Value) Path {
	switch v.Kind {
	case message.KindList:
		out := make(Path, 0, len(v.List))
		for _, el := range v.List {
			out = append(out, el.AsString())
		}
		return out
	case message.KindBytes, message.KindSymbol:
		s := v.AsString()
		if s == "" {
			return nil
		}
		return Path(strings.Split(strings.Trim(s, "/"), "/"))
	default:
		return nil
	}
}

// Of extracts the Path carried by a message's "path" key, if any.
func Of(m *message.Message) (Path, bool) {
	v, ok := m.Get(message.KeyPath)
	if !ok {
		return nil, false
	}
	return TermToPath(v), true
}

// Head returns the next key to resolve: the path's first element, or
// the whole value rendered as a string when the path is a bare atomic
// term rather than a multi-element sequence.
func (p Path) Head() string {
	if len(p) == 0 {
		return Terminal
	}
	return p[0]
}

// Tail returns the remaining path after Head, or nil when a single
// element (or no elements) remain — signaling resolution completion
// per spec.md §3.
func (p Path) Tail() Path {
	if len(p) <= 1 {
		return nil
	}
	return p[1:]
}

// IsTerminal reports whether the path has no further elements to
// resolve.
func (p Path) IsTerminal() bool { return len(p) <= 1 }

// RenderKey renders a Path back into a single composite key string
// (slash-joined), the inverse of the bytes/symbol branch of TermToPath.
func RenderKey(p Path) string { return strings.Join(p, "/") }

// AsValue renders a Path as a message.Value suitable for storing back
// under the "path" key.
func AsValue(p Path) message.Value {
	vals := make([]message.Value, len(p))
	for i, el := range p {
		vals[i] = message.Str(el)
	}
	return message.List(vals)
}
