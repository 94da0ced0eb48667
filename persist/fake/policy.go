package fake

import (
	"context"
	"fmt"
	"sync"

	"github.com/supremind/authorize/types"
)

var _ types.PolicyStore = (*PolicyStore)(nil)

// PolicyStore keeps credential policies in memory. Once a watcher is
// attached, every mutation is published as a change event; an unwatched
// store mutates silently.
type PolicyStore struct {
	mu      sync.RWMutex
	roles   map[string]types.Role
	groups  map[string]types.Group
	changes chan types.PolicyChange
}

// NewPolicyStore creates an in-memory policy store preloaded with the
// given credentials
func NewPolicyStore(creds ...types.Credential) *PolicyStore {
	s := &PolicyStore{
		roles:  make(map[string]types.Role),
		groups: make(map[string]types.Group),
	}

	for _, c := range creds {
		switch cred := c.(type) {
		case types.Role:
			s.roles[cred.Name] = cred
		case types.Group:
			s.groups[cred.Name] = cred
		}
	}

	return s
}

// publish is called with the write lock held; it is a no-op until Watch
// has attached the change channel
func (s *PolicyStore) publish(c types.PolicyChange) {
	if s.changes != nil {
		s.changes <- c
	}
}

// UpsertRole inserts or updates a role policy
func (s *PolicyStore) UpsertRole(role types.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.roles[role.Name]
	s.roles[role.Name] = role

	method := types.PersistInsert
	if exists {
		method = types.PersistUpdate
	}
	s.publish(types.PolicyChange{Role: &role, Method: method})
	return nil
}

// UpsertGroup inserts or updates a group policy
func (s *PolicyStore) UpsertGroup(group types.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.groups[group.Name]
	s.groups[group.Name] = group

	method := types.PersistInsert
	if exists {
		method = types.PersistUpdate
	}
	s.publish(types.PolicyChange{Group: &group, Method: method})
	return nil
}

// RemoveRole deletes a role policy
func (s *PolicyStore) RemoveRole(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	role, ok := s.roles[name]
	if !ok {
		return fmt.Errorf("%w: role %s", types.ErrNotFound, name)
	}
	delete(s.roles, name)

	s.publish(types.PolicyChange{Role: &role, Method: types.PersistDelete})
	return nil
}

// RemoveGroup deletes a group policy
func (s *PolicyStore) RemoveGroup(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	group, ok := s.groups[name]
	if !ok {
		return fmt.Errorf("%w: group %s", types.ErrNotFound, name)
	}
	delete(s.groups, name)

	s.publish(types.PolicyChange{Group: &group, Method: types.PersistDelete})
	return nil
}

// ListRoles returns all role policies
func (s *PolicyStore) ListRoles() ([]types.Role, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Role, 0, len(s.roles))
	for _, role := range s.roles {
		out = append(out, role)
	}
	return out, nil
}

// ListGroups returns all group policies
func (s *PolicyStore) ListGroups() ([]types.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.Group, 0, len(s.groups))
	for _, group := range s.groups {
		out = append(out, group)
	}
	return out, nil
}

// Watch attaches the change channel all later mutations publish to
func (s *PolicyStore) Watch(ctx context.Context) (<-chan types.PolicyChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.changes == nil {
		s.changes = make(chan types.PolicyChange)
	}
	return s.changes, nil
}
