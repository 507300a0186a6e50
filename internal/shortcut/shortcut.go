// Package shortcut implements the ergonomic get/set/remove/keys surface
// spec.md §4.9 describes, built entirely on top of internal/resolver's
// two-argument Resolve call — none of these operations bypass the nine
// stage machine, they just assemble the sub-input a raw Resolve call
// would otherwise require the caller to construct by hand.
package shortcut

import (
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
	"github.com/convergenode/resolver/internal/path"
)

// Resolver is the subset of internal/resolver.Resolver this package
// needs. Defined locally (rather than imported) so tests can supply a
// fake without constructing a full resolver stack.
type Resolver interface {
	Resolve(input, sub *message.Message, opts options.Options) (message.Value, error)
}

func pathSub(keys ...string) *message.Message {
	return message.New().With(message.KeyPath, path.AsValue(path.Path(keys)))
}

// Get resolves key against msg and returns def if resolution fails.
func Get(r Resolver, msg *message.Message, key string, def message.Value, opts options.Options) message.Value {
	out, err := r.Resolve(msg, pathSub(key), opts)
	if err != nil {
		return def
	}
	return out
}

// GetAs resolves key against msg as though msg declared deviceName,
// without mutating msg's own device field in the result: the override
// is applied only to the synthetic input built for this call, and
// msg's hashpath (if any) is carried through unchanged since the
// override clone inherits every other field via With.
func GetAs(r Resolver, deviceName string, msg *message.Message, key string, def message.Value, opts options.Options) message.Value {
	overridden := msg.With(message.KeyDevice, message.Str(deviceName))
	out, err := r.Resolve(overridden, pathSub(key), opts)
	if err != nil {
		return def
	}
	return out
}

// Set applies patch's keys onto msg by invoking the resolved device's
// "set" handler once, per spec.md §4.9's patch form.
func Set(r Resolver, msg *message.Message, patch *message.Message, opts options.Options) (*message.Message, error) {
	sub := pathSub("set").With("patch", message.Sub(patch))
	out, err := r.Resolve(msg, sub, opts)
	if err != nil {
		return nil, err
	}
	return out.Msg, nil
}

// SetDeep performs a deep set along keys: it descends one resolve per
// path segment to find each ancestor's current state, mutates the
// leaf via the leaf device's "set", then rebuilds every parent in
// reverse by calling each parent device's "set" with the child's new
// state — spec.md §4.9's deep-set form.
func SetDeep(r Resolver, msg *message.Message, keys []string, value message.Value, opts options.Options) (*message.Message, error) {
	if len(keys) == 0 {
		return msg, nil
	}

	ancestors := make([]*message.Message, len(keys))
	ancestors[0] = msg
	for i := 0; i < len(keys)-1; i++ {
		child, err := r.Resolve(ancestors[i], pathSub(keys[i]), opts)
		if err != nil {
			return nil, err
		}
		if child.Kind != message.KindMessage || child.Msg == nil {
			child = message.Sub(message.New())
		}
		ancestors[i+1] = child.Msg
	}

	leafKey := keys[len(keys)-1]
	leafParent := ancestors[len(ancestors)-1]
	newLeafParent, err := setSingle(r, leafParent, leafKey, value, opts)
	if err != nil {
		return nil, err
	}

	current := newLeafParent
	for i := len(keys) - 2; i >= 0; i-- {
		next, err := setSingle(r, ancestors[i], keys[i], message.Sub(current), opts)
		if err != nil {
			return nil, err
		}
		current = next
	}
	return current, nil
}

func setSingle(r Resolver, parent *message.Message, key string, value message.Value, opts options.Options) (*message.Message, error) {
	sub := pathSub("set").With("key", message.Str(key)).With("value", value)
	out, err := r.Resolve(parent, sub, opts)
	if err != nil {
		return nil, err
	}
	return out.Msg, nil
}

// Remove delegates to the resolved device's "remove" handler.
func Remove(r Resolver, msg *message.Message, key string, opts options.Options) (*message.Message, error) {
	sub := pathSub("remove").With("key", message.Str(key))
	out, err := r.Resolve(msg, sub, opts)
	if err != nil {
		return nil, err
	}
	return out.Msg, nil
}

// KeysMode selects the enumeration mode Keys requests.
type KeysMode string

const (
	KeysAll             KeysMode = "all"
	KeysExcludeReserved KeysMode = "exclude_reserved"
)

// Keys returns the resolved device's key enumeration.
func Keys(r Resolver, msg *message.Message, mode KeysMode, opts options.Options) ([]string, error) {
	sub := pathSub("keys").With("mode", message.Str(string(mode)))
	out, err := r.Resolve(msg, sub, opts)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(out.List))
	for i, v := range out.List {
		names[i] = v.AsString()
	}
	return names, nil
}
