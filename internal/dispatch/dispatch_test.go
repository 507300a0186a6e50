package dispatch

import (
	"testing"

	"github.com/convergenode/resolver/internal/convergeerr"
	"github.com/convergenode/resolver/internal/device"
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

func defaultDevice() device.Device {
	return &device.Inline{
		DeviceName: "message@1.0",
		Handlers: map[string]device.Handler{
			"a": func(input, sub *message.Message, opts options.Options) (message.Value, error) {
				v, _ := input.Get("a")
				return v, nil
			},
		},
	}
}

func noopLoader(ref device.Ref) (device.Device, error) {
	return nil, convergeerr.New(convergeerr.ModuleNotAdmissable, "test")
}

func TestResolveDirectKeyOnDefaultDevice(t *testing.T) {
	d := defaultDevice()
	input := message.New().With("a", message.Int(1))

	plan, err := Resolve(d, input, "a", options.Default(), d, noopLoader)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	out, err := plan.Handler(input, message.New(), options.Default())
	if err != nil {
		t.Fatal(err)
	}
	if out.Int != 1 {
		t.Fatalf("got %v, want 1", out.Int)
	}
}

func TestResolveDefaultCallablePrependsKey(t *testing.T) {
	def := defaultDevice()
	dev := &device.Inline{
		DeviceName: "catch-all@1.0",
		Published: device.Info{
			Default: func(key string, input, sub *message.Message, opts options.Options) (message.Value, error) {
				return message.Str("DEFAULT"), nil
			},
		},
	}

	plan, err := Resolve(dev, message.New(), "unknown-key", options.Default(), def, noopLoader)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !plan.AddKey {
		t.Fatal("expected AddKey to be true for a default callable")
	}
	out, err := plan.Handler(message.New(), message.New(), options.Default())
	if err != nil {
		t.Fatal(err)
	}
	if out.AsString() != "DEFAULT" {
		t.Fatalf("got %q, want DEFAULT", out.AsString())
	}
}

func TestResolveHandlerWithExcludeRevertsToDefault(t *testing.T) {
	def := defaultDevice()
	dev := &device.Inline{
		DeviceName: "custom@1.0",
		Published: device.Info{
			Handler: func(input, sub *message.Message, opts options.Options) (message.Value, error) {
				return message.Str("CUSTOM"), nil
			},
			Exclude: []string{"a"},
		},
	}

	plan, err := Resolve(dev, message.New().With("a", message.Int(5)), "a", options.Default(), def, noopLoader)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Device.Name() != def.Name() {
		t.Fatalf("expected excluded key to revert to default device, got %s", plan.Device.Name())
	}
}

func TestResolveExportsRestrictsRuleThreeLookup(t *testing.T) {
	def := defaultDevice()
	dev := &device.Inline{
		DeviceName: "restricted@1.0",
		Handlers: map[string]device.Handler{
			"a": func(input, sub *message.Message, opts options.Options) (message.Value, error) {
				return message.Str("A"), nil
			},
			"b": func(input, sub *message.Message, opts options.Options) (message.Value, error) {
				return message.Str("B"), nil
			},
		},
		Published: device.Info{
			Exports: []string{"a"},
		},
	}

	plan, err := Resolve(dev, message.New(), "a", options.Default(), def, noopLoader)
	if err != nil {
		t.Fatalf("Resolve(a): %v", err)
	}
	if plan.Device.Name() != dev.Name() {
		t.Fatalf("expected exported key \"a\" to resolve on the device itself, got %s", plan.Device.Name())
	}

	_, err = Resolve(dev, message.New(), "b", options.Default(), def, noopLoader)
	if !convergeerr.Is(err, convergeerr.DefaultDeviceCouldNotResolveKey) {
		t.Fatalf("expected \"b\" to fall through past the unexported handler to the fatal default case, got %v", err)
	}
}

func TestResolvePlanCarriesTopLevelDeviceGroupHook(t *testing.T) {
	def := defaultDevice()
	custom := func(input, sub *message.Message, opts options.Options) (string, bool) {
		return "custom-group", true
	}
	dev := &device.Inline{
		DeviceName: "grouped@1.0",
		Handlers: map[string]device.Handler{
			"a": func(input, sub *message.Message, opts options.Options) (message.Value, error) {
				return message.Str("A"), nil
			},
		},
		Published: device.Info{Group: custom},
	}

	plan, err := Resolve(dev, message.New(), "a", options.Default(), def, noopLoader)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if plan.Group == nil {
		t.Fatal("expected the plan to carry the device's Group hook")
	}
	key, ok := plan.Group(message.New(), message.New(), options.Default())
	if !ok || key != "custom-group" {
		t.Fatalf("got (%q, %v), want (\"custom-group\", true)", key, ok)
	}
}

func TestResolveFatalWhenDefaultDeviceCannotResolve(t *testing.T) {
	def := defaultDevice()
	_, err := Resolve(def, message.New(), "missing", options.Default(), def, noopLoader)
	if !convergeerr.Is(err, convergeerr.DefaultDeviceCouldNotResolveKey) {
		t.Fatalf("got %v, want default_device_could_not_resolve_key", err)
	}
}
