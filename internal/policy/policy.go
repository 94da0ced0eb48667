// Package policy evaluates class-level allowance and restriction maps
// attached to an actor's credentials.
package policy

import (
	"github.com/go-logr/logr"
	"github.com/supremind/authorize/internal/resolver"
	"github.com/supremind/authorize/types"
)

// Evaluator decides whether a requested operation set is allowed or
// restricted for an actor on a resource class
type Evaluator struct {
	resolver *resolver.Resolver
	// fallback allowance set for class keys absent from a non-empty,
	// non-nil allowance map
	defaults types.Operations
	log      logr.Logger
}

// New creates a policy evaluator
func New(r *resolver.Resolver, defaults types.Operations, log logr.Logger) *Evaluator {
	return &Evaluator{resolver: r, defaults: defaults, log: log}
}

// Allowed tells if the requested operations on the class are covered by
// the union of allowances accumulated over the actor's credentials.
//
// An actor without credentials is allowed: nothing can restrict an
// unaffiliated actor at this layer. A credential with a nil allowance
// map is fully permissive and short-circuits the decision. An empty map
// grants nothing; a class key absent from a non-empty map falls back to
// the configured default allowance set.
func (e *Evaluator) Allowed(actor types.Actor, ops types.Operations, classKey string) bool {
	creds := e.resolver.CredentialsOf(actor)
	if len(creds) == 0 {
		return true
	}

	accumulated := types.NewOperations()
	for _, cred := range creds {
		// a credential carrying no allowance policy at all, like a
		// group, is fully permissive
		role, ok := cred.(types.Role)
		if !ok || role.Allowances == nil {
			e.log.V(6).Info("wildcard allowance", "credential", cred.CredentialName(), "class", classKey)
			return true
		}

		allowed, ok := role.Allowances[classKey]
		if !ok && len(role.Allowances) > 0 {
			allowed = e.defaults
		}
		accumulated = accumulated.Union(allowed)
	}

	ok := accumulated.Includes(ops)
	e.log.V(6).Info("allowance check", "class", classKey, "requested", ops, "accumulated", accumulated, "allowed", ok)
	return ok
}

// Restricted tells if any credential of the actor explicitly revokes one
// of the requested operations on the class. No credentials means no
// restriction.
func (e *Evaluator) Restricted(actor types.Actor, ops types.Operations, classKey string) bool {
	for _, cred := range e.resolver.CredentialsOf(actor) {
		group, ok := cred.(types.Group)
		if !ok {
			continue
		}
		if restricted := group.Restrictions.Of(classKey); restricted.Intersects(ops) {
			e.log.V(6).Info("restricted", "group", group.Name, "class", classKey, "requested", ops, "restricted", restricted)
			return true
		}
	}
	return false
}
