package provenance

import "strings"

// oidPrefix is the syntactic marker that distinguishes a PLUSObject OID from
// an NPID (§6): an OID is a UUID string prefixed with "plus:".
const oidPrefix = "plus:"

// IsPLUSOID reports whether s has the shape of a PLUSObject OID rather than
// an NPID. This fixes the spec's Open Question on OID format: there is no
// UUID-syntax validation beyond the prefix, since NPIDs and malformed OIDs
// are both handled identically downstream (resolved as "not found").
func IsPLUSOID(s string) bool {
	return strings.HasPrefix(s, oidPrefix)
}
