package authorize

import (
	"sort"

	"github.com/supremind/authorize/types"
)

// Guard is one composable authorization check bound to a requested
// operation set, role requirement, group requirement, and creation
// targets, each independently possibly empty. Guards are immutable
// values: Merge returns a new Guard and never mutates its receiver.
type Guard struct {
	a          *Authorize
	operations types.Operations
	roles      stringSet
	groups     stringSet
	creates    stringSet
}

// Merge combines two guards into one by unioning their requirement sets.
//
// This deliberately reproduces the accumulation semantics of stacked
// guard declarations on one action: the result is a single widened
// check, not an AND of the original two. In particular a satisfied role
// or group requirement from one guard can short-circuit checks the
// other guard would have applied on its own. Merging is associative and
// commutative, so the order of concurrent registrations does not matter.
func (g Guard) Merge(o Guard) Guard {
	out := Guard{a: g.a}
	if out.a == nil {
		out.a = o.a
	}
	out.operations = g.operations.Union(o.operations)
	out.roles = g.roles.union(o.roles)
	out.groups = g.groups.union(o.groups)
	out.creates = g.creates.union(o.creates)
	return out
}

// Evaluate runs the guard for the current actor against the given
// targets and reports the decision. It never returns an error: checks
// that do not apply to a target pass it by.
func (g Guard) Evaluate(targets ...interface{}) bool {
	return g.EvaluateAs(g.a.currentActor(), targets...)
}

// EvaluateAs runs the guard for an explicit actor.
//
// The decision layers are, in order: the anonymous-actor policy; role
// and group membership shortcuts (sufficient by themselves only when
// the guard carries no operation or creation requirement); creation
// rights per required class; and per-target restriction, allowance, and
// instance permission checks, all of which every target must pass.
func (g Guard) EvaluateAs(actor types.Actor, targets ...interface{}) bool {
	a := g.a
	if actor == nil && !a.anonymous {
		a.log.V(6).Info("anonymous actor denied")
		return false
	}

	// membership shortcuts: role and group requirements form an OR with
	// the remaining checks when those are present
	combined := len(g.operations) > 0 || len(g.creates) > 0
	if len(g.roles) > 0 {
		if a.resolver.HasRole(actor, g.roles.slice()) {
			if !combined {
				return true
			}
		} else if !combined {
			return false
		}
	}
	if len(g.groups) > 0 {
		if a.resolver.InGroup(actor, g.groups.slice()) {
			if !combined {
				return true
			}
		} else if !combined {
			return false
		}
	}

	createOp := types.NewOperations(types.Create)
	for key := range g.creates {
		if a.policy.Restricted(actor, createOp, key) {
			a.log.V(6).Info("creation restricted", "class", key)
			return false
		}
		if !a.policy.Allowed(actor, createOp, key) {
			a.log.V(6).Info("creation not allowed", "class", key)
			return false
		}
	}

	if len(g.operations) == 0 {
		return true
	}

	// every target must pass every applicable layer on its own
	for _, target := range targets {
		if target == nil {
			continue
		}
		key := a.keyOf(target)

		if a.policy.Restricted(actor, g.operations, key) {
			a.log.V(6).Info("restricted", "class", key, "operations", g.operations)
			return false
		}
		if !a.policy.Allowed(actor, g.operations, key) {
			a.log.V(6).Info("not allowed", "class", key, "operations", g.operations)
			return false
		}
		if !a.instance.Permitted(actor, g.operations, target) {
			a.log.V(6).Info("instance permission denied", "target", target, "operations", g.operations)
			return false
		}
	}

	return true
}

// Action is a protected callable. When invoked through the wrapper
// returned by Protect, its arguments are gathered as check targets.
type Action func(args ...interface{}) (interface{}, error)

// Protect registers the guard for the named action, merging it with any
// guard already registered under that name, and wraps the action: on
// invocation the accumulated guard evaluates the arguments as targets
// and the configured denial error is returned before the action runs if
// evaluation fails.
func (a *Authorize) Protect(name string, g Guard, action Action) Action {
	a.guards.merge(name, g)

	return func(args ...interface{}) (interface{}, error) {
		guard, ok := a.guards.lookup(name)
		if !ok {
			guard = g
		}
		if !guard.Evaluate(args...) {
			return nil, a.denial
		}
		return action(args...)
	}
}

// stringSet backs the role/group/creation requirement sets
type stringSet map[string]struct{}

func newStringSet(keys ...string) stringSet {
	s := make(stringSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s stringSet) add(key string) {
	s[key] = struct{}{}
}

func (s stringSet) union(o stringSet) stringSet {
	if len(s) == 0 && len(o) == 0 {
		return nil
	}
	out := make(stringSet, len(s)+len(o))
	for k := range s {
		out[k] = struct{}{}
	}
	for k := range o {
		out[k] = struct{}{}
	}
	return out
}

func (s stringSet) slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
