// Package devices supplies the small set of devices the resolver needs
// to be exercised end to end: the identity/default device every
// dispatch eventually falls back to, and a tiny introspection device
// used by tooling. Both are built as device.Inline values registered
// at init() into the device package's builtin registry, the same flat,
// explicit-registration style cmd/*/main.go uses to wire HTTP routes
// rather than any form of auto-discovery.
package devices

import (
	"github.com/convergenode/resolver/internal/device"
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

// MessageDeviceName is the builtin symbol devices.Message registers
// under, and the name a fresh input with no declared device resolves
// against (spec.md §4.4 rule 1).
const MessageDeviceName = "message@1.0"

func init() {
	device.RegisterBuiltin(MessageDeviceName, NewMessage())
}

// NewMessage builds the identity/default device: unknown keys return
// the matching field as-is (spec.md §4.4 rule 1's "returns keys as
// they appear in the message mapping"), and set/remove/keys are
// exported handlers per spec.md §4.9.
func NewMessage() device.Device {
	return &device.Inline{
		DeviceName: MessageDeviceName,
		Handlers: map[string]device.Handler{
			"set":    setHandler,
			"remove": removeHandler,
			"keys":   keysHandler,
		},
		Published: device.Info{
			Default: func(key string, input, sub *message.Message, opts options.Options) (message.Value, error) {
				v, _ := input.Get(key)
				return v, nil
			},
		},
	}
}

// setHandler supports two calling conventions, matching spec.md §4.9:
// a patch form ("patch" carries a sub-message whose keys are applied
// one at a time) and a single-field form ("key"/"value"). The patch's
// own hashpath is stripped before use, since a patch describes new
// field values, not a chain witness to carry forward.
func setHandler(input, sub *message.Message, opts options.Options) (message.Value, error) {
	if patchVal, ok := sub.Get("patch"); ok && patchVal.Kind == message.KindMessage {
		patch := patchVal.Msg.Without(message.KeyHashpath)
		out := input
		for _, k := range patch.Keys(message.KeysAll) {
			v, _ := patch.Get(k)
			out = out.With(k, v)
		}
		return message.Sub(out), nil
	}

	keyVal, _ := sub.Get("key")
	valueVal, _ := sub.Get("value")
	return message.Sub(input.With(keyVal.AsString(), valueVal)), nil
}

func removeHandler(input, sub *message.Message, opts options.Options) (message.Value, error) {
	keyVal, _ := sub.Get("key")
	return message.Sub(input.Without(keyVal.AsString())), nil
}

func keysHandler(input, sub *message.Message, opts options.Options) (message.Value, error) {
	mode := message.KeysExcludeReserved
	if mv, ok := sub.Get("mode"); ok && mv.AsString() == "all" {
		mode = message.KeysAll
	}
	names := input.Keys(mode)
	vals := make([]message.Value, len(names))
	for i, k := range names {
		vals[i] = message.Str(k)
	}
	return message.List(vals), nil
}
