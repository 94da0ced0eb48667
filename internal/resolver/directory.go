package resolver

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-logr/logr"
	"github.com/supremind/authorize/types"
)

var _ Directory = (*PolicyDirectory)(nil)

// PolicyDirectory mirrors the credential policies of a PolicyStore in
// memory and keeps them coordinated with changes in the store.
// It is safe for concurrent use.
type PolicyDirectory struct {
	mu     sync.RWMutex
	roles  map[string]types.Role
	groups map[string]types.Group

	store types.PolicyStore
	log   logr.Logger
}

// NewPolicyDirectory loads all policies from the store and starts
// watching it for changes until ctx is done
func NewPolicyDirectory(ctx context.Context, store types.PolicyStore, log logr.Logger) (*PolicyDirectory, error) {
	d := &PolicyDirectory{
		roles:  make(map[string]types.Role),
		groups: make(map[string]types.Group),
		store:  store,
		log:    log,
	}

	if e := d.loadPersisted(); e != nil {
		return nil, e
	}
	if e := d.startWatching(ctx); e != nil {
		return nil, e
	}

	return d, nil
}

func (d *PolicyDirectory) loadPersisted() error {
	d.log.V(4).Info("load persisted credential policies")

	roles, e := d.store.ListRoles()
	if e != nil {
		return e
	}
	groups, e := d.store.ListGroups()
	if e != nil {
		return e
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, role := range roles {
		d.roles[role.Name] = role
	}
	for _, group := range groups {
		d.groups[group.Name] = group
	}
	return nil
}

func (d *PolicyDirectory) startWatching(ctx context.Context) error {
	changes, e := d.store.Watch(ctx)
	if e != nil {
		return e
	}

	go func() {
		for {
			select {
			case change, ok := <-changes:
				if !ok {
					return
				}
				if e := d.coordinateChange(change); e != nil {
					d.log.Error(e, "coordinate policy change")
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (d *PolicyDirectory) coordinateChange(change types.PolicyChange) error {
	d.log.V(4).Info("coordinate policy change", "change", change)

	d.mu.Lock()
	defer d.mu.Unlock()

	switch change.Method {
	case types.PersistInsert, types.PersistUpdate:
		switch {
		case change.Role != nil:
			d.roles[change.Role.Name] = *change.Role
		case change.Group != nil:
			d.groups[change.Group.Name] = *change.Group
		}
		return nil

	case types.PersistDelete:
		switch {
		case change.Role != nil:
			delete(d.roles, change.Role.Name)
		case change.Group != nil:
			delete(d.groups, change.Group.Name)
		}
		return nil
	}

	return fmt.Errorf("%w: %s", types.ErrUnsupportedChange, change.Method)
}

// RoleNamed implements Directory
func (d *PolicyDirectory) RoleNamed(name string) (types.Role, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	role, ok := d.roles[name]
	return role, ok
}

// GroupNamed implements Directory
func (d *PolicyDirectory) GroupNamed(name string) (types.Group, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	group, ok := d.groups[name]
	return group, ok
}
