package convergeerr

import (
	"errors"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	e := New(ModuleNotAdmissable, "stage4_dispatch")
	want := "module_not_admissable at stage4_dispatch"
	if e.Error() != want {
		t.Fatalf("Error() = %q, want %q", e.Error(), want)
	}
}

func TestWrapUnwrap(t *testing.T) {
	cause := errors.New("boom")
	e := Wrap(DeviceCall, "stage5_execute", cause)
	if !errors.Is(e, cause) {
		t.Fatal("expected errors.Is to find the wrapped cause")
	}
}

func TestIsMatchesKindThroughWrapChain(t *testing.T) {
	inner := New(RemoteDevicesDisabled, "device.Load")
	outer := Wrap(DeviceNotLoadable, "stage4_dispatch", inner)
	if !Is(outer, RemoteDevicesDisabled) {
		t.Fatal("expected Is to find the inner kind")
	}
	if Is(outer, CacheMiss) {
		t.Fatal("did not expect Is to match an unrelated kind")
	}
}

func TestFatalOnlyForDefaultDeviceFailure(t *testing.T) {
	if !Fatal(DefaultDeviceCouldNotResolveKey) {
		t.Fatal("expected DefaultDeviceCouldNotResolveKey to be fatal")
	}
	if Fatal(DeviceCall) {
		t.Fatal("did not expect DeviceCall to be fatal")
	}
}
