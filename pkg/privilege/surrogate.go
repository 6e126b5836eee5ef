package privilege

import "github.com/orneryd/provgraph/pkg/provenance"

// SurrogatePolicy is the pluggable, per-(type, subtype) surrogate-derivation
// rule referenced by §4.5 and the Open Questions of §9: each object variant
// contributes its own redaction rule rather than one hardcoded at the call
// site.
type SurrogatePolicy interface {
	// Surrogate returns a redacted stand-in for o, suitable for a viewer who
	// is partially but not fully authorized.
	Surrogate(o *provenance.PLUSObject) *provenance.PLUSObject
}

// defaultPolicy redacts Properties/metadata but preserves identity fields,
// per §9's resolution of the surrogate-derivation Open Question.
type defaultPolicy struct{}

func (defaultPolicy) Surrogate(o *provenance.PLUSObject) *provenance.PLUSObject {
	return &provenance.PLUSObject{
		OID:     o.OID,
		Type:    o.Type,
		Subtype: o.Subtype,
		Name:    "[REDACTED]",
		Created: o.Created,
	}
}

// taintPolicy preserves the taint marker's existence (so downstream taint
// tracing still works, §4.7 step 2) while redacting its description.
type taintPolicy struct{}

func (taintPolicy) Surrogate(o *provenance.PLUSObject) *provenance.PLUSObject {
	return &provenance.PLUSObject{
		OID:      o.OID,
		Type:     o.Type,
		Subtype:  o.Subtype,
		Name:     "[REDACTED TAINT]",
		Created:  o.Created,
		Metadata: map[string]string{"taint": "true"},
	}
}

// policyKey identifies a (type, subtype) pair for registry lookup.
type policyKey struct {
	Type    provenance.ObjectType
	Subtype provenance.ObjectSubtype
}

// PolicyRegistry maps (type, subtype) to a SurrogatePolicy, falling back to
// a redact-everything-but-identity default when no specific policy is
// registered.
type PolicyRegistry struct {
	policies map[policyKey]SurrogatePolicy
	fallback SurrogatePolicy
}

// NewPolicyRegistry returns a registry seeded with the built-in default and
// taint policies.
func NewPolicyRegistry() *PolicyRegistry {
	r := &PolicyRegistry{policies: make(map[policyKey]SurrogatePolicy), fallback: defaultPolicy{}}
	r.Register(provenance.TypeData, provenance.SubtypeTaint, taintPolicy{})
	return r
}

// Register installs policy for the given (type, subtype), overriding any
// previous registration.
func (r *PolicyRegistry) Register(t provenance.ObjectType, s provenance.ObjectSubtype, policy SurrogatePolicy) {
	r.policies[policyKey{t, s}] = policy
}

// For returns the policy registered for (t, s), or the default.
func (r *PolicyRegistry) For(t provenance.ObjectType, s provenance.ObjectSubtype) SurrogatePolicy {
	if p, ok := r.policies[policyKey{t, s}]; ok {
		return p
	}
	return r.fallback
}
