package devices

import (
	"testing"

	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

func TestDefaultReturnsFieldAsIs(t *testing.T) {
	d := NewMessage()
	info, err := d.DeviceInfo(nil, options.Default())
	if err != nil {
		t.Fatalf("DeviceInfo: %v", err)
	}
	input := message.New().With("a", message.Int(5))
	out, err := info.Default("a", input, message.New(), options.Default())
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if out.Int != 5 {
		t.Fatalf("got %+v, want Int=5", out)
	}
}

func TestSetPatchFormMergesTopLevelKeys(t *testing.T) {
	d := NewMessage()
	h, ok := d.Lookup("set")
	if !ok {
		t.Fatal("expected a set handler")
	}
	input := message.New().With("a", message.Int(1)).With("b", message.Int(2))
	patch := message.New().With("b", message.Int(9)).With(message.KeyHashpath, message.Str("ignored"))
	sub := message.New().With("patch", message.Sub(patch))

	out, err := h(input, sub, options.Default())
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	av, _ := out.Msg.Get("a")
	bv, _ := out.Msg.Get("b")
	if av.Int != 1 || bv.Int != 9 {
		t.Fatalf("got a=%+v b=%+v", av, bv)
	}
	if _, ok := out.Msg.Get(message.KeyHashpath); ok {
		t.Fatal("expected the patch's hashpath to be stripped, not merged in")
	}
}

func TestSetSingleFieldForm(t *testing.T) {
	d := NewMessage()
	h, _ := d.Lookup("set")
	input := message.New()
	sub := message.New().With("key", message.Str("x")).With("value", message.Int(3))

	out, err := h(input, sub, options.Default())
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	v, _ := out.Msg.Get("x")
	if v.Int != 3 {
		t.Fatalf("got %+v, want Int=3", v)
	}
}

func TestRemoveDeletesField(t *testing.T) {
	d := NewMessage()
	h, _ := d.Lookup("remove")
	input := message.New().With("a", message.Int(1))
	sub := message.New().With("key", message.Str("a"))

	out, err := h(input, sub, options.Default())
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := out.Msg.Get("a"); ok {
		t.Fatal("expected a to be removed")
	}
}

func TestKeysExcludesReservedByDefault(t *testing.T) {
	d := NewMessage()
	h, _ := d.Lookup("keys")
	input := message.New().With("a", message.Int(1)).With(message.KeyDevice, message.Str("x"))
	sub := message.New()

	out, err := h(input, sub, options.Default())
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(out.List) != 1 || out.List[0].AsString() != "a" {
		t.Fatalf("got %+v, want [\"a\"]", out.List)
	}
}
