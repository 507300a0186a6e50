// Package devicetest supplies a demo device used only by tests and by
// convergectl's --device-test flag, exercising the arity-truncation
// and handler/exclude behaviors spec.md §8 scenarios 4-6 describe. It
// is kept out of internal/devices proper (and out of the builtin
// registry) because it has no business purpose beyond demonstrating
// dispatch rules.
package devicetest

import (
	"github.com/convergenode/resolver/internal/device"
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

// Arity exercises reflection-based arity truncation (scenario 4): K1
// takes only input, K2 takes input and sub, K3 takes input, sub, and
// options, each concatenating one more digit onto the state key's
// value.
type Arity struct {
	StateKey string
}

// K1 returns the input's state key value unchanged.
func (a *Arity) K1(input *message.Message) (message.Value, error) {
	v, _ := input.Get(a.StateKey)
	return v, nil
}

// K2 appends the sub-input's msg_key field.
func (a *Arity) K2(input, sub *message.Message) (message.Value, error) {
	v, _ := input.Get(a.StateKey)
	sv, _ := sub.Get("msg_key")
	return message.Str(v.AsString() + sv.AsString()), nil
}

// K3 further appends a caller-supplied options field named opts_key.
func (a *Arity) K3(input, sub *message.Message, opts options.Options) (message.Value, error) {
	v, _ := input.Get(a.StateKey)
	sv, _ := sub.Get("msg_key")
	ov, _ := opts.Get("opts_key")
	return message.Str(v.AsString() + sv.AsString() + ov.AsString()), nil
}

// NewArity wraps Arity in a device.Reflective, the adapter that
// searches a − this struct's exported methods at arities 3, 2, then 1.
func NewArity(stateKey string) device.Device {
	return &device.Reflective{
		DeviceName: "devicetest.arity",
		Target:     &Arity{StateKey: stateKey},
	}
}

// DefaultOnly exercises scenario 5: every key not explicitly exported
// falls through to Default.
func DefaultOnly() device.Device {
	return &device.Inline{
		DeviceName: "devicetest.default_only",
		Published: device.Info{
			Default: func(key string, input, sub *message.Message, opts options.Options) (message.Value, error) {
				return message.Str("default:" + key), nil
			},
		},
	}
}

// HandlerWithExclude exercises scenario 6: a device-wide handler
// answers every key except "set", which reverts to the default device.
func HandlerWithExclude() device.Device {
	return &device.Inline{
		DeviceName: "devicetest.handler_exclude",
		Published: device.Info{
			Handler: func(input, sub *message.Message, opts options.Options) (message.Value, error) {
				return message.Str("handled"), nil
			},
			Exclude: []string{"set"},
		},
	}
}
