package device

import (
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

// Inline is a device expressed directly as a key→Handler mapping,
// spec.md §4.3's "inline map" reference kind. It loads as-is: no
// trust check, no store round-trip.
type Inline struct {
	DeviceName string
	Handlers   map[string]Handler
	Published  Info
}

func (d *Inline) Name() string {
	if d.DeviceName == "" {
		return "inline"
	}
	return d.DeviceName
}

func (d *Inline) DeviceInfo(input *message.Message, opts options.Options) (Info, error) {
	return d.Published, nil
}

func (d *Inline) Lookup(key string) (Handler, bool) {
	h, ok := d.Handlers[key]
	return h, ok
}
