// Package trust implements the device-signer trust policy that gates
// remote device loading (spec.md §4.3): a remote device blob is only
// installable if at least one of its declared signers is trusted.
package trust

// Policy decides whether a set of signer ids is acceptable for
// installing a remote device.
type Policy interface {
	Trusted(signers []string) bool
}

// Static implements Policy against a fixed allowlist, the form
// spec.md's options.trusted_device_signers takes: a flat set of ids.
type Static struct {
	allowed map[string]struct{}
}

// NewStatic builds a Static policy from the given trusted signer ids.
// An empty allowlist trusts nothing.
func NewStatic(ids []string) *Static {
	s := &Static{allowed: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.allowed[id] = struct{}{}
	}
	return s
}

// Trusted reports whether any of signers is on the allowlist.
func (s *Static) Trusted(signers []string) bool {
	for _, id := range signers {
		if _, ok := s.allowed[id]; ok {
			return true
		}
	}
	return false
}
