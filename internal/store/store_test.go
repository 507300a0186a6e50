package store

import "testing"

func TestMemoryReadNotFound(t *testing.T) {
	m := NewMemory()
	if _, err := m.Read("missing"); err != ErrNotFound {
		t.Fatalf("Read(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryWriteThenRead(t *testing.T) {
	m := NewMemory()
	want := Blob{Data: []byte("hello"), ContentType: "application/octet-stream", Signers: []string{"sig1"}}

	if err := m.Write("id1", want); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := m.Read("id1")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got.Data) != string(want.Data) || got.ContentType != want.ContentType {
		t.Fatalf("Read = %+v, want %+v", got, want)
	}
}

func TestMemoryReadReturnsIndependentCopy(t *testing.T) {
	m := NewMemory()
	_ = m.Write("id1", Blob{Data: []byte("hello")})

	got, _ := m.Read("id1")
	got.Data[0] = 'H'

	again, _ := m.Read("id1")
	if again.Data[0] != 'h' {
		t.Fatal("mutating a returned blob affected stored state")
	}
}
