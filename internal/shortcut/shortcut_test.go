package shortcut

import (
	"errors"
	"testing"

	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
	"github.com/convergenode/resolver/internal/path"
)

// fakeResolver implements just enough of the identity/message device's
// contract (get-by-key, set, remove, keys) to exercise shortcut's
// sub-input assembly without a full resolver stack.
type fakeResolver struct{}

func (fakeResolver) Resolve(input, sub *message.Message, opts options.Options) (message.Value, error) {
	p, _ := path.Of(sub)
	switch p.Head() {
	case "set":
		if patchVal, ok := sub.Get("patch"); ok {
			out := input
			for _, k := range patchVal.Msg.Keys(message.KeysAll) {
				v, _ := patchVal.Msg.Get(k)
				out = out.With(k, v)
			}
			return message.Sub(out), nil
		}
		keyVal, _ := sub.Get("key")
		valueVal, _ := sub.Get("value")
		return message.Sub(input.With(keyVal.AsString(), valueVal)), nil
	case "remove":
		keyVal, _ := sub.Get("key")
		return message.Sub(input.Without(keyVal.AsString())), nil
	case "keys":
		names := input.Keys(message.KeysExcludeReserved)
		vals := make([]message.Value, len(names))
		for i, k := range names {
			vals[i] = message.Str(k)
		}
		return message.List(vals), nil
	default:
		v, ok := input.Get(p.Head())
		if !ok {
			return message.Value{}, errors.New("not found")
		}
		return v, nil
	}
}

func TestGetReturnsDefaultOnMissingKey(t *testing.T) {
	r := fakeResolver{}
	msg := message.New()
	got := Get(r, msg, "missing", message.Str("fallback"), options.Default())
	if got.AsString() != "fallback" {
		t.Fatalf("got %q, want %q", got.AsString(), "fallback")
	}
}

func TestGetReturnsResolvedValue(t *testing.T) {
	r := fakeResolver{}
	msg := message.New().With("a", message.Int(7))
	got := Get(r, msg, "a", message.Int(0), options.Default())
	if got.Int != 7 {
		t.Fatalf("got %+v, want Int=7", got)
	}
}

func TestSetMergesPatch(t *testing.T) {
	r := fakeResolver{}
	msg := message.New().With("a", message.Int(1))
	patch := message.New().With("b", message.Int(2))

	out, err := Set(r, msg, patch, options.Default())
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	av, _ := out.Get("a")
	bv, _ := out.Get("b")
	if av.Int != 1 || bv.Int != 2 {
		t.Fatalf("got a=%+v b=%+v", av, bv)
	}
}

func TestSetDeepDescendsAndRebuildsParents(t *testing.T) {
	r := fakeResolver{}
	inner := message.New().With("b", message.Sub(message.New().With("c", message.Int(1))))
	msg := message.New().With("a", message.Sub(inner))

	out, err := SetDeep(r, msg, []string{"a", "b", "c"}, message.Int(2), options.Default())
	if err != nil {
		t.Fatalf("SetDeep: %v", err)
	}
	av, _ := out.Get("a")
	bv, _ := av.Msg.Get("b")
	cv, _ := bv.Msg.Get("c")
	if cv.Int != 2 {
		t.Fatalf("got c=%+v, want Int=2", cv)
	}
}

func TestRemoveDeletesField(t *testing.T) {
	r := fakeResolver{}
	msg := message.New().With("a", message.Int(1))

	out, err := Remove(r, msg, "a", options.Default())
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, ok := out.Get("a"); ok {
		t.Fatal("expected a to be removed")
	}
}

func TestKeysListsNonReservedFields(t *testing.T) {
	r := fakeResolver{}
	msg := message.New().With("a", message.Int(1)).With(message.KeyDevice, message.Str("x"))

	names, err := Keys(r, msg, KeysExcludeReserved, options.Default())
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(names) != 1 || names[0] != "a" {
		t.Fatalf("got %v, want [a]", names)
	}
}
