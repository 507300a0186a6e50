// Package dispatch implements the handler-selection algorithm spec.md
// §4.4 describes: an ordered rule set that walks from a message's
// declared device down to a terminal fatal case.
package dispatch

import (
	"golang.org/x/exp/slices"

	"github.com/convergenode/resolver/internal/convergeerr"
	"github.com/convergenode/resolver/internal/device"
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

// Loader resolves a device.Ref into a loaded Device, used for the
// default_mod fallback (rule 4) without dispatch needing to know about
// stores, trust policies, or the preloaded-devices table directly.
type Loader func(ref device.Ref) (device.Device, error)

// Plan is the outcome of rule selection: the device and handler to
// invoke, and whether the call must prepend key to its arguments.
type Plan struct {
	Device  device.Device
	Handler device.Handler
	Key     string
	AddKey  bool
	// Group is the dispatched-to message's own device's custom
	// dedup-group-key callable, if it published one — not the callable
	// of whatever device ultimately served the handler, since rules 4
	// and 5 may fall through to the default device.
	Group device.GroupFunc
}

// Resolve selects a handler for key against loaded, per spec.md §4.4.
// defaultDevice is the identity/message device rule 1 and rule 5 fall
// back to.
func Resolve(loaded device.Device, input *message.Message, key string, opts options.Options, defaultDevice device.Device, load Loader) (Plan, error) {
	topInfo, err := loaded.DeviceInfo(input, opts)
	if err != nil {
		return Plan{}, convergeerr.Wrap(convergeerr.DeviceCall, "dispatch.Resolve", err)
	}
	plan, err := resolveOn(loaded, input, key, opts, defaultDevice, load)
	if err != nil {
		return Plan{}, err
	}
	plan.Group = topInfo.Group
	return plan, nil
}

func resolveOn(d device.Device, input *message.Message, key string, opts options.Options, defaultDevice device.Device, load Loader) (Plan, error) {
	info, err := d.DeviceInfo(input, opts)
	if err != nil {
		return Plan{}, convergeerr.Wrap(convergeerr.DeviceCall, "dispatch.Resolve", err)
	}

	// Rule 2: a device-wide handler, subject to its exclude list.
	if info.Handler != nil && !slices.Contains(info.Exclude, key) {
		return Plan{Device: d, Handler: info.Handler, Key: key}, nil
	}
	if info.Handler != nil {
		// Excluded: the input's device is stripped for this call by
		// dispatching through the default device instead.
		if sameDevice(d, defaultDevice) {
			return Plan{}, convergeerr.New(convergeerr.DefaultDeviceCouldNotResolveKey, "dispatch.Resolve")
		}
		return resolveOn(defaultDevice, input, key, opts, defaultDevice, load)
	}

	// Rule 3: an exported handler named key, arity 3 -> 2 -> 1 — gated
	// by Exports when the device publishes a restricted list.
	if info.Exports == nil || slices.Contains(info.Exports, key) {
		if h, ok := d.Lookup(key); ok {
			return Plan{Device: d, Handler: h, Key: key}, nil
		}
	}

	// Rule 4: default/default_mod fallback.
	if info.Default != nil {
		fn := info.Default
		wrapped := func(input, sub *message.Message, opts options.Options) (message.Value, error) {
			return fn(key, input, sub, opts)
		}
		return Plan{Device: d, Handler: wrapped, Key: key, AddKey: true}, nil
	}
	if info.DefaultMod != nil {
		next, err := load(*info.DefaultMod)
		if err != nil {
			return Plan{}, err
		}
		return resolveOn(next, input, key, opts, defaultDevice, load)
	}

	// Rule 5: fall back to the default device; fatal if already there.
	if sameDevice(d, defaultDevice) {
		return Plan{}, convergeerr.New(convergeerr.DefaultDeviceCouldNotResolveKey, "dispatch.Resolve")
	}
	return resolveOn(defaultDevice, input, key, opts, defaultDevice, load)
}

func sameDevice(a, b device.Device) bool {
	return a.Name() == b.Name()
}
