// Package instance evaluates discretionary owner/group/other permission
// sets attached to concrete resource instances.
package instance

import (
	"github.com/go-logr/logr"
	"github.com/supremind/authorize/internal/resolver"
	"github.com/supremind/authorize/types"
)

// Evaluator decides whether a requested operation set is satisfied by at
// least one relation of a resource instance's permission set
type Evaluator struct {
	resolver *resolver.Resolver
	log      logr.Logger
}

// New creates an instance permission evaluator
func New(r *resolver.Resolver, log logr.Logger) *Evaluator {
	return &Evaluator{resolver: r, log: log}
}

// Permitted tells if the requested operations on the target are granted
// by its other relation, by its owner relation when the actor is the
// owner, by its group relation when the target's group is among the
// actor's groups, or by a special permission entry naming the actor or
// one of its groups. The disjuncts are tried in that order and the first
// satisfied one wins.
//
// A target without a permission set does not apply to this check and is
// permitted. A target opting out of access checking is permitted without
// inspection.
func (e *Evaluator) Permitted(actor types.Actor, ops types.Operations, target interface{}) bool {
	if checked, ok := target.(types.AccessChecked); ok && !checked.CheckAccess() {
		e.log.V(6).Info("access checking disabled on target", "target", target)
		return true
	}

	carrier, ok := target.(types.Permissioned)
	if !ok {
		return true
	}
	perms := carrier.Permissions()

	if perms.Other.Includes(ops) {
		return true
	}

	if owned, ok := target.(types.Owned); ok && actor != nil {
		if owner := owned.OwnerIdent(); owner != "" && owner == actor.Ident() {
			if perms.Owner.Includes(ops) {
				return true
			}
		}
	}

	var groups []types.Group
	if grouped, ok := target.(types.Grouped); ok {
		groups = e.resolver.GroupsOf(actor)
		if name := grouped.GroupName(); name != "" {
			for _, g := range groups {
				if g.Name == name {
					if perms.Group.Includes(ops) {
						return true
					}
					break
				}
			}
		}
	}

	if special, ok := target.(types.SpecialPermissioned); ok && actor != nil {
		if groups == nil {
			groups = e.resolver.GroupsOf(actor)
		}
		if e.speciallyPermitted(actor, groups, ops, special.SpecialPermissions()) {
			return true
		}
	}

	e.log.V(6).Info("instance permission denied", "target", target, "requested", ops, "permissions", perms)
	return false
}

func (e *Evaluator) speciallyPermitted(actor types.Actor, groups []types.Group, ops types.Operations, entries []types.SpecialPermission) bool {
	for _, entry := range entries {
		if !entry.Operations.Includes(ops) {
			continue
		}
		if entry.ActorID != "" && entry.ActorID == actor.Ident() {
			return true
		}
		if entry.Group != "" {
			for _, g := range groups {
				if g.Name == entry.Group {
					return true
				}
			}
		}
	}
	return false
}
