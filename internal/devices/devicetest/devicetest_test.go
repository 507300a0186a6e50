package devicetest

import (
	"testing"

	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

func TestArityOneReturnsStateKeyOnly(t *testing.T) {
	d := NewArity("state_key")
	h, ok := d.Lookup("k1")
	if !ok {
		t.Fatal("expected k1 to resolve")
	}
	input := message.New().With("state_key", message.Str("1"))
	out, err := h(input, message.New(), options.Default())
	if err != nil {
		t.Fatalf("k1: %v", err)
	}
	if out.AsString() != "1" {
		t.Fatalf("got %q, want %q", out.AsString(), "1")
	}
}

func TestArityTwoConcatenatesSubMsgKey(t *testing.T) {
	d := NewArity("state_key")
	h, _ := d.Lookup("k2")
	input := message.New().With("state_key", message.Str("1"))
	sub := message.New().With("msg_key", message.Str("3"))

	out, err := h(input, sub, options.Default())
	if err != nil {
		t.Fatalf("k2: %v", err)
	}
	if out.AsString() != "13" {
		t.Fatalf("got %q, want %q", out.AsString(), "13")
	}
}

func TestArityThreeConcatenatesOptsKey(t *testing.T) {
	d := NewArity("state_key")
	h, _ := d.Lookup("k3")
	input := message.New().With("state_key", message.Str("1"))
	sub := message.New().With("msg_key", message.Str("3"))
	opts := options.Default().WithExtra("opts_key", message.Str("37"))

	out, err := h(input, sub, opts)
	if err != nil {
		t.Fatalf("k3: %v", err)
	}
	if out.AsString() != "1337" {
		t.Fatalf("got %q, want %q", out.AsString(), "1337")
	}
}

func TestDefaultOnlyAnswersAnyKey(t *testing.T) {
	d := DefaultOnly()
	info, _ := d.DeviceInfo(nil, options.Default())
	out, err := info.Default("whatever", message.New(), message.New(), options.Default())
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if out.AsString() != "default:whatever" {
		t.Fatalf("got %q", out.AsString())
	}
}

func TestHandlerWithExcludeRevertsSetKeyOnly(t *testing.T) {
	d := HandlerWithExclude()
	info, _ := d.DeviceInfo(nil, options.Default())
	if info.Handler == nil {
		t.Fatal("expected a device-wide handler")
	}
	found := false
	for _, k := range info.Exclude {
		if k == "set" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected \"set\" in the exclude list")
	}
}
