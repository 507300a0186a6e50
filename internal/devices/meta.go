package devices

import (
	"github.com/convergenode/resolver/internal/device"
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

// MetaDeviceName is the builtin symbol devices.Meta registers under.
const MetaDeviceName = "meta@1.0"

func init() {
	device.RegisterBuiltin(MetaDeviceName, NewMeta())
}

// NewMeta builds a tiny introspection device: "info" echoes the
// input's declared device name (or MessageDeviceName if none), and
// "exports" lists the input's non-reserved keys — the same
// enumeration devices.Message's "keys" handler performs, exposed under
// a name that reads naturally from convergectl's "device list" output.
func NewMeta() device.Device {
	return &device.Inline{
		DeviceName: MetaDeviceName,
		Handlers: map[string]device.Handler{
			"info":    infoHandler,
			"exports": exportsHandler,
		},
	}
}

func infoHandler(input, sub *message.Message, opts options.Options) (message.Value, error) {
	name := MessageDeviceName
	if v, ok := input.Device(); ok {
		name = v.AsString()
	}
	return message.Sub(message.New().With("device", message.Str(name))), nil
}

func exportsHandler(input, sub *message.Message, opts options.Options) (message.Value, error) {
	names := input.Keys(message.KeysExcludeReserved)
	vals := make([]message.Value, len(names))
	for i, k := range names {
		vals[i] = message.Str(k)
	}
	return message.List(vals), nil
}
