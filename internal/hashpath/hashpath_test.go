package hashpath

import (
	"testing"

	"github.com/convergenode/resolver/internal/message"
)

func TestPushIsDeterministic(t *testing.T) {
	sub := message.New().With("a", message.Int(1))

	h1 := Push(Zero, sub)
	h2 := Push(Zero, sub)

	if h1 != h2 {
		t.Fatalf("Push is not deterministic for identical inputs: %v != %v", h1, h2)
	}
}

func TestPushExtendsChain(t *testing.T) {
	step1 := Push(Zero, message.New().With("a", message.Int(1)))
	step2 := Push(step1, message.New().With("b", message.Int(2)))

	if step1 == step2 {
		t.Fatal("chained hashpath must differ from its prior step")
	}
	if step2 == Push(Zero, message.New().With("b", message.Int(2))) {
		t.Fatal("hashpath must depend on the prior hashpath, not just the sub-input")
	}
}

func TestRenderParseRoundTrip(t *testing.T) {
	h := Push(Zero, message.New().With("a", message.Int(1)))

	rendered := Render(h)
	if len(rendered) != RenderedLen {
		t.Fatalf("rendered hashpath length = %d, want %d", len(rendered), RenderedLen)
	}

	parsed, ok := Parse(rendered)
	if !ok {
		t.Fatal("expected Parse to succeed on a Render()-ed id")
	}
	if parsed != h {
		t.Fatalf("round trip mismatch: got %v, want %v", parsed, h)
	}
}

func TestIsContentID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "valid id", in: Render(Push(Zero, message.New())), want: true},
		{name: "too short", in: "abc", want: false},
		{name: "wrong length", in: "this-is-not-a-forty-three-character-string", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsContentID(tt.in); got != tt.want {
				t.Errorf("IsContentID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
