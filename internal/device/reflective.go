package device

import (
	"reflect"
	"strings"

	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

// Reflective adapts the exported methods of an arbitrary Go value into
// device handlers, searching for a method named key at arities 3, 2,
// then 1 (spec.md §4.4 rule 3: "Attempt arities 3, then 2, then 1; the
// first existing and exported arity wins"). This is the Go analogue of
// the source's "seek an exported function" search — Go has no runtime
// symbol table to probe, so reflection over a struct's method set
// plays the same role net/rpc's method dispatch does for a registered
// service.
type Reflective struct {
	DeviceName string
	Target     any
	Published  Info
}

func (d *Reflective) Name() string {
	if d.DeviceName == "" {
		return "reflective"
	}
	return d.DeviceName
}

func (d *Reflective) DeviceInfo(input *message.Message, opts options.Options) (Info, error) {
	return d.Published, nil
}

// Lookup finds the exported method matching key, trying 3 args
// (input, sub, opts), then 2 (input, sub), then 1 (input).
func (d *Reflective) Lookup(key string) (Handler, bool) {
	v := reflect.ValueOf(d.Target)
	m := v.MethodByName(exportedName(key))
	if !m.IsValid() {
		return nil, false
	}

	switch m.Type().NumIn() {
	case 3:
		return func(input, sub *message.Message, opts options.Options) (message.Value, error) {
			return callReflective(m, reflect.ValueOf(input), reflect.ValueOf(sub), reflect.ValueOf(opts))
		}, true
	case 2:
		return func(input, sub *message.Message, opts options.Options) (message.Value, error) {
			return callReflective(m, reflect.ValueOf(input), reflect.ValueOf(sub))
		}, true
	case 1:
		return func(input, sub *message.Message, opts options.Options) (message.Value, error) {
			return callReflective(m, reflect.ValueOf(input))
		}, true
	default:
		return nil, false
	}
}

func callReflective(m reflect.Value, args ...reflect.Value) (message.Value, error) {
	out := m.Call(args)
	val, _ := out[0].Interface().(message.Value)
	err, _ := out[1].Interface().(error)
	return val, err
}

// exportedName capitalizes key's first rune so it matches Go's
// exported-method naming convention, e.g. "k1" -> "K1".
func exportedName(key string) string {
	if key == "" {
		return key
	}
	return strings.ToUpper(key[:1]) + key[1:]
}
