// Package convergeerr defines the structured error taxonomy the
// resolver and its components raise, per spec.md §7. Every error
// carries a Kind so callers can branch on failure category without
// string matching, plus the stage (Whence) that raised it and, where
// applicable, the underlying Cause.
package convergeerr

import "fmt"

// Kind classifies a resolution failure.
type Kind string

const (
	// DeviceNotLoadable means a device reference was valid in form but
	// could not be turned into an executable device: missing, unsigned,
	// untrusted, or of an incompatible content-type.
	DeviceNotLoadable Kind = "device_not_loadable"

	// DeviceCall means a device handler raised during execution.
	DeviceCall Kind = "device_call"

	// DefaultDeviceCouldNotResolveKey is the terminal dispatch failure:
	// the planner fell all the way back to the default device and still
	// found no handler. This signals a misconfiguration, not a user
	// error, and is always fatal.
	DefaultDeviceCouldNotResolveKey Kind = "default_device_could_not_resolve_key"

	// RemoteDevicesDisabled is a policy rejection: a remote device
	// reference was seen but load_remote_devices is off.
	RemoteDevicesDisabled Kind = "remote_devices_disabled"

	// DeviceSignerNotTrusted is a policy rejection: a remote device's
	// signers did not satisfy the trusted_device_signers policy.
	DeviceSignerNotTrusted Kind = "device_signer_not_trusted"

	// ModuleNotAdmissable is a policy rejection: an unknown symbolic
	// device alias has no entry in preloaded_devices.
	ModuleNotAdmissable Kind = "module_not_admissable"

	// CacheMiss is internal bookkeeping, never surfaced past the cache
	// plane.
	CacheMiss Kind = "cache_miss"
)

// Error is the concrete error type raised throughout the resolution
// pipeline.
type Error struct {
	Kind   Kind
	Whence string // the stage or component that raised it, e.g. "dispatch.Resolve"
	Cause  error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s at %s: %v", e.Kind, e.Whence, e.Cause)
	}
	return fmt.Sprintf("%s at %s", e.Kind, e.Whence)
}

func (e *Error) Unwrap() error { return e.Cause }

// New constructs an Error with no wrapped cause.
func New(kind Kind, whence string) *Error {
	return &Error{Kind: kind, Whence: whence}
}

// Wrap constructs an Error that wraps cause.
func Wrap(kind Kind, whence string, cause error) *Error {
	return &Error{Kind: kind, Whence: whence, Cause: cause}
}

// Is reports whether err is a *Error of the given kind, unwrapping
// through any wrapper chain.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ce, ok := err.(*Error); ok {
			if ce.Kind == kind {
				return true
			}
			err = ce.Cause
			continue
		}
		break
	}
	return false
}

// Fatal reports whether a Kind represents a terminal, non-recoverable
// failure that should abort the whole resolution rather than be caught
// by an error_strategy handler.
func Fatal(k Kind) bool {
	return k == DefaultDeviceCouldNotResolveKey
}
