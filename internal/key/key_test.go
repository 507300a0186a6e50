package key

import "testing"

func TestToKeyLowercasesText(t *testing.T) {
	if got := ToKey("Device"); got != "device" {
		t.Fatalf("ToKey(Device) = %q, want %q", got, "device")
	}
}

func TestToKeyPreservesContentID(t *testing.T) {
	id := "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	if len(id) != 43 {
		t.Fatalf("test fixture id is %d chars, want 43", len(id))
	}
	if got := ToKey(id); got != id {
		t.Fatalf("ToKey(id) = %q, want unchanged %q", got, id)
	}
}

func TestToKeyUsesRegisteredSymbol(t *testing.T) {
	RegisterSymbol("commitment-device", "commitment@1.0")
	if got := ToKey("Commitment-Device"); got != "commitment@1.0" {
		t.Fatalf("ToKey with registered symbol = %q, want %q", got, "commitment@1.0")
	}
}

func TestToKeyInteger(t *testing.T) {
	if got := ToKey(3); got != "3" {
		t.Fatalf("ToKey(3) = %q, want %q", got, "3")
	}
}

func TestToKeyUndefinedForUnsupportedType(t *testing.T) {
	if got := ToKey(3.14); got != Undefined {
		t.Fatalf("ToKey(float) = %q, want Undefined", got)
	}
}

func TestKeyToBinaryBypassesSymbolTable(t *testing.T) {
	RegisterSymbol("raw-key", "raw@1.0")
	got := string(KeyToBinary("Raw-Key"))
	if got != "raw-key" {
		t.Fatalf("KeyToBinary = %q, want %q", got, "raw-key")
	}
}
