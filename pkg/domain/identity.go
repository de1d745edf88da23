package domain

import "strings"

// Identity names a participant: a parcel owner, a verifier, the controller, or
// an approved delegate. The zero value means "nobody" and is what the ledger
// reports as the source of a mint.
type Identity string

// Zero is the absent identity.
const Zero Identity = ""

func (i Identity) IsZero() bool { return i == Zero }

func (i Identity) String() string { return string(i) }

// ParseIdentity normalizes raw caller input. Identities are opaque strings;
// the only rule is that they are non-blank.
func ParseIdentity(raw string) (Identity, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Zero, false
	}
	return Identity(trimmed), true
}
