package path

import (
	"testing"

	"github.com/convergenode/resolver/internal/message"
)

func TestHeadTail(t *testing.T) {
	tests := []struct {
		name       string
		path       Path
		wantHead   string
		wantTail   Path
		wantTermin bool
	}{
		{name: "empty", path: nil, wantHead: Terminal, wantTail: nil, wantTermin: true},
		{name: "single element", path: Path{"a"}, wantHead: "a", wantTail: nil, wantTermin: true},
		{name: "multi element", path: Path{"a", "b", "c"}, wantHead: "a", wantTail: Path{"b", "c"}, wantTermin: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.path.Head(); got != tt.wantHead {
				t.Errorf("Head() = %q, want %q", got, tt.wantHead)
			}
			if got := tt.path.Tail(); !equalPaths(got, tt.wantTail) {
				t.Errorf("Tail() = %v, want %v", got, tt.wantTail)
			}
			if got := tt.path.IsTerminal(); got != tt.wantTermin {
				t.Errorf("IsTerminal() = %v, want %v", got, tt.wantTermin)
			}
		})
	}
}

func TestTermToPath(t *testing.T) {
	got := TermToPath(message.Str("a/b/c"))
	want := Path{"a", "b", "c"}
	if !equalPaths(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func equalPaths(a, b Path) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
