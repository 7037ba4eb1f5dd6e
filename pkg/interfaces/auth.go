package interfaces

import "strings"

// WriteAuthorization is the explicit capability every mutating call must
// carry. It replaces ambient "is this request authenticated" state: the host
// (admin surface, CLI) performs its own gate and mints one of these, and the
// core only checks that the capability is well formed. The committer inside
// it becomes the author on the resulting store revision.
type WriteAuthorization struct {
	Capability string
	Committer  Committer
}

// Valid reports whether the authorization carries a capability token and a
// complete committer identity.
func (a WriteAuthorization) Valid() bool {
	return strings.TrimSpace(a.Capability) != "" &&
		strings.TrimSpace(a.Committer.Name) != "" &&
		strings.TrimSpace(a.Committer.Email) != ""
}
