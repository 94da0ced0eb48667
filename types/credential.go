package types

// AnyClass is the wildcard class key: a policy entry under it applies to
// every resource class.
const AnyClass = "*"

// Allowances maps resource class keys to the operations holders of a
// credential are affirmatively granted on that class.
// A nil map is maximally permissive: the credential does not restrict
// allowances at all. An empty, non-nil map grants nothing.
type Allowances map[string]Operations

// Clone returns a deep copy of the allowance map, keeping nil nil
func (a Allowances) Clone() Allowances {
	if a == nil {
		return nil
	}
	out := make(Allowances, len(a))
	for key, ops := range a {
		out[key] = ops.Clone()
	}
	return out
}

// Set overrides the entries of the allowance map with the given ones,
// materializing a nil map first
func (a Allowances) Set(key string, ops Operations) Allowances {
	if a == nil {
		a = make(Allowances, 1)
	}
	a[key] = ops
	return a
}

// Restrictions maps resource class keys to the operations explicitly
// revoked for holders of a credential, regardless of allowances or
// instance permissions. A nil or empty map restricts nothing.
// An entry under AnyClass applies to every class.
type Restrictions map[string]Operations

// Clone returns a deep copy of the restriction map, keeping nil nil
func (r Restrictions) Clone() Restrictions {
	if r == nil {
		return nil
	}
	out := make(Restrictions, len(r))
	for key, ops := range r {
		out[key] = ops.Clone()
	}
	return out
}

// Set overrides the entries of the restriction map with the given ones,
// materializing a nil map first
func (r Restrictions) Set(key string, ops Operations) Restrictions {
	if r == nil {
		r = make(Restrictions, 1)
	}
	r[key] = ops
	return r
}

// Of returns the operations restricted for the given class key,
// wildcard entries included
func (r Restrictions) Of(key string) Operations {
	any, wild := r[AnyClass]
	ops, ok := r[key]
	switch {
	case wild && ok:
		return any.Union(ops)
	case wild:
		return any
	default:
		return ops
	}
}

// Credential is a Role or a Group attached to an Actor, carrying
// allowance or restriction policy. Actors reference credentials, they do
// not own their lifecycle.
type Credential interface {
	CredentialName() string
}

// Role is a named credential carrying class-level allowances
type Role struct {
	Name       string
	Allowances Allowances
}

// CredentialName implements Credential
func (r Role) CredentialName() string { return r.Name }

// Group is a named credential carrying class-level restrictions.
// A resource instance may also name a group as its owning group for
// discretionary permission checks.
type Group struct {
	Name         string
	Restrictions Restrictions
}

// CredentialName implements Credential
func (g Group) CredentialName() string { return g.Name }
