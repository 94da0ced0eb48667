package resolver

import (
	"github.com/go-logr/logr"
	"github.com/supremind/authorize/types"
)

// Directory looks up credential policies referenced by name
type Directory interface {
	RoleNamed(name string) (types.Role, bool)
	GroupNamed(name string) (types.Group, bool)
}

// Resolver produces the credentials of an actor and answers role and
// group membership questions. Actors either carry full credentials
// (RoleHolder/GroupHolder) or reference them by name
// (RoleRefs/GroupRefs) to be resolved through a directory.
type Resolver struct {
	dir Directory
	log logr.Logger
}

// New creates a credential resolver; dir may be nil if no actor
// references credentials by name
func New(dir Directory, log logr.Logger) *Resolver {
	return &Resolver{dir: dir, log: log}
}

// RolesOf returns all roles of the actor
func (r *Resolver) RolesOf(actor types.Actor) []types.Role {
	if actor == nil {
		return nil
	}

	if h, ok := actor.(types.RoleHolder); ok {
		return h.Roles()
	}

	if refs, ok := actor.(types.RoleRefs); ok && r.dir != nil {
		names := refs.RoleNames()
		roles := make([]types.Role, 0, len(names))
		for _, name := range names {
			role, ok := r.dir.RoleNamed(name)
			if !ok {
				r.log.V(4).Info("referenced role not in directory", "role", name)
				continue
			}
			roles = append(roles, role)
		}
		return roles
	}

	return nil
}

// GroupsOf returns all groups of the actor
func (r *Resolver) GroupsOf(actor types.Actor) []types.Group {
	if actor == nil {
		return nil
	}

	if h, ok := actor.(types.GroupHolder); ok {
		return h.Groups()
	}

	if refs, ok := actor.(types.GroupRefs); ok && r.dir != nil {
		names := refs.GroupNames()
		groups := make([]types.Group, 0, len(names))
		for _, name := range names {
			group, ok := r.dir.GroupNamed(name)
			if !ok {
				r.log.V(4).Info("referenced group not in directory", "group", name)
				continue
			}
			groups = append(groups, group)
		}
		return groups
	}

	return nil
}

// CredentialsOf returns the actor's roles and groups, the unit of
// iteration for allowance and restriction checks. Empty if the actor
// exposes neither.
func (r *Resolver) CredentialsOf(actor types.Actor) []types.Credential {
	roles := r.RolesOf(actor)
	groups := r.GroupsOf(actor)

	creds := make([]types.Credential, 0, len(roles)+len(groups))
	for _, role := range roles {
		creds = append(creds, role)
	}
	for _, group := range groups {
		creds = append(creds, group)
	}
	return creds
}

// HasRole tells if the actor holds a role whose name is one of names
func (r *Resolver) HasRole(actor types.Actor, names []string) bool {
	for _, role := range r.RolesOf(actor) {
		for _, name := range names {
			if role.Name == name {
				return true
			}
		}
	}
	return false
}

// InGroup tells if the actor belongs to a group whose name is one of names
func (r *Resolver) InGroup(actor types.Actor, names []string) bool {
	for _, group := range r.GroupsOf(actor) {
		for _, name := range names {
			if group.Name == name {
				return true
			}
		}
	}
	return false
}
