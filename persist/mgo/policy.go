package mgo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/globalsign/mgo"
	"github.com/globalsign/mgo/bson"
	"github.com/go-logr/logr"

	"github.com/supremind/authorize/types"
)

var _ types.PolicyStore = (*PolicyStore)(nil)

// PolicyStore is a types.PolicyStore backed by mongodb
type PolicyStore struct {
	*collection
}

// NewPolicyStore uses the given mongodb collection as backend to persist
// role and group policies
func NewPolicyStore(coll *mgo.Collection, opts ...collectionOption) (*PolicyStore, error) {
	s := &PolicyStore{&collection{
		Collection:   coll,
		log:          logr.Discard(),
		retryTimeout: time.Second,
	}}
	for _, opt := range opts {
		opt(s.collection)
	}

	ss := s.copySession()
	defer ss.closeSession()

	if e := ss.EnsureIndex(mgo.Index{Key: []string{"kind"}}); e != nil {
		return nil, e
	}

	return s, nil
}

const (
	kindRole  = "role"
	kindGroup = "group"
)

type credentialDO struct {
	ID   string `bson:"_id"`
	Kind string `bson:"kind"`
	Name string `bson:"name"`
	// Wildcard marks a role without an allowance policy, which is
	// permitted everything
	Wildcard bool                 `bson:"wildcard,omitempty"`
	Policies map[string]pipedList `bson:"policies,omitempty"`
}

func credentialID(kind, name string) string {
	return kind + ":" + name
}

func parseCredentialID(id string) (kind, name string, e error) {
	kind, name, ok := strings.Cut(id, ":")
	if !ok {
		return "", "", fmt.Errorf("malformed credential id: %s", id)
	}
	return kind, name, nil
}

func fromRole(r types.Role) *credentialDO {
	do := &credentialDO{
		ID:   credentialID(kindRole, r.Name),
		Kind: kindRole,
		Name: r.Name,
	}
	if r.Allowances == nil {
		do.Wildcard = true
		return do
	}

	do.Policies = make(map[string]pipedList, len(r.Allowances))
	for class, ops := range r.Allowances {
		do.Policies[class] = pipedList(ops)
	}
	return do
}

func fromGroup(g types.Group) *credentialDO {
	do := &credentialDO{
		ID:   credentialID(kindGroup, g.Name),
		Kind: kindGroup,
		Name: g.Name,
	}
	do.Policies = make(map[string]pipedList, len(g.Restrictions))
	for class, ops := range g.Restrictions {
		do.Policies[class] = pipedList(ops)
	}
	return do
}

func (do *credentialDO) asRole() types.Role {
	r := types.Role{Name: do.Name}
	if do.Wildcard {
		return r
	}

	r.Allowances = make(types.Allowances, len(do.Policies))
	for class, ops := range do.Policies {
		r.Allowances[class] = types.Operations(ops)
	}
	return r
}

func (do *credentialDO) asGroup() types.Group {
	g := types.Group{Name: do.Name}
	if len(do.Policies) == 0 {
		return g
	}

	g.Restrictions = make(types.Restrictions, len(do.Policies))
	for class, ops := range do.Policies {
		g.Restrictions[class] = types.Operations(ops)
	}
	return g
}

// UpsertRole inserts or updates a role policy
func (s *PolicyStore) UpsertRole(r types.Role) error {
	return s.upsert(fromRole(r))
}

// UpsertGroup inserts or updates a group policy
func (s *PolicyStore) UpsertGroup(g types.Group) error {
	return s.upsert(fromGroup(g))
}

func (s *PolicyStore) upsert(do *credentialDO) error {
	ss := s.copySession()
	defer ss.closeSession()

	s.log.V(4).Info("upsert credential policy", "credential", do.ID)

	_, e := ss.UpsertId(do.ID, do)
	return parseMgoError(e)
}

// RemoveRole deletes a role policy
func (s *PolicyStore) RemoveRole(name string) error {
	return s.remove(kindRole, name)
}

// RemoveGroup deletes a group policy
func (s *PolicyStore) RemoveGroup(name string) error {
	return s.remove(kindGroup, name)
}

func (s *PolicyStore) remove(kind, name string) error {
	ss := s.copySession()
	defer ss.closeSession()

	s.log.V(4).Info("remove credential policy", "kind", kind, "name", name)

	if e := ss.RemoveId(credentialID(kind, name)); e != nil {
		return fmt.Errorf("%w: %s %s", parseMgoError(e), kind, name)
	}
	return nil
}

// ListRoles returns all persisted role policies
func (s *PolicyStore) ListRoles() ([]types.Role, error) {
	dos, e := s.list(kindRole)
	if e != nil {
		return nil, e
	}

	roles := make([]types.Role, 0, len(dos))
	for _, do := range dos {
		roles = append(roles, do.asRole())
	}
	return roles, nil
}

// ListGroups returns all persisted group policies
func (s *PolicyStore) ListGroups() ([]types.Group, error) {
	dos, e := s.list(kindGroup)
	if e != nil {
		return nil, e
	}

	groups := make([]types.Group, 0, len(dos))
	for _, do := range dos {
		groups = append(groups, do.asGroup())
	}
	return groups, nil
}

func (s *PolicyStore) list(kind string) ([]credentialDO, error) {
	ss := s.copySession()
	defer ss.closeSession()

	iter := ss.Find(bson.M{"kind": kind}).Iter()
	defer iter.Close()

	dos := make([]credentialDO, 0)
	var do credentialDO
	for iter.Next(&do) {
		dos = append(dos, do)
		do = credentialDO{}
	}
	if e := iter.Err(); e != nil {
		return nil, e
	}
	return dos, nil
}

type policyChangeEvent struct {
	OperationType changeStreamOperationType `bson:"operationType,omitempty"`
	FullDocument  credentialDO              `bson:"fullDocument,omitempty"`
	DocumentKey   struct {
		ID string `bson:"_id,omitempty"`
	} `bson:"documentKey,omitempty"`
}

// Watch any changes occurred about the policies in the store
func (s *PolicyStore) Watch(ctx context.Context) (<-chan types.PolicyChange, error) {
	// test connection
	cs, closer, e := s.connectToWatch(nil)
	if e != nil {
		return nil, e
	}
	firstConnection := true

	changes := make(chan types.PolicyChange)

	go func() {
		defer close(changes)

		// carried across reconnects so the stream resumes where it left off
		var token *bson.Raw

		for {
			select {
			case <-ctx.Done():
				return

			default:
				if !firstConnection {
					cs, closer, e = s.connectToWatch(token)
					if e != nil {
						s.log.Error(e, "failed to connect")
						time.Sleep(s.retryTimeout)
						continue
					}
				}
				firstConnection = false

				e := s.watch(ctx, cs, changes)
				if e != nil {
					s.log.Error(e, "fetch change event failed, reconnect later")
				}
				token = cs.ResumeToken()
				closer()
				s.log.V(4).Info("change stream closed", "token", token)
				time.Sleep(s.retryTimeout)
			}
		}
	}()

	return changes, nil
}

func (s *PolicyStore) watch(ctx context.Context, cs *mgo.ChangeStream, changes chan<- types.PolicyChange) error {
	for {
		var event policyChangeEvent
		if cs.Next(&event) {
			s.log.V(6).Info("change event", "id", event.DocumentKey.ID, "event", event)

			var change types.PolicyChange
			switch event.OperationType {
			case insert:
				change.Method = types.PersistInsert
			case update, replace:
				change.Method = types.PersistUpdate
			case delete:
				change.Method = types.PersistDelete
			default:
				s.log.Info("unknown event", "operation type", event.OperationType)
				continue
			}

			do := event.FullDocument
			if change.Method == types.PersistDelete {
				// deletions carry no full document, only the key
				kind, name, e := parseCredentialID(event.DocumentKey.ID)
				if e != nil {
					s.log.Error(e, "parse credential in change event")
					continue
				}
				do = credentialDO{Kind: kind, Name: name, Wildcard: true}
			}

			switch do.Kind {
			case kindRole:
				role := do.asRole()
				change.Role = &role
			case kindGroup:
				group := do.asGroup()
				change.Group = &group
			default:
				s.log.Info("unknown credential kind", "kind", do.Kind)
				continue
			}

			s.log.V(4).Info("got policy change event", "change", change)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case changes <- change:
			}
		}

		if e := cs.Err(); e != nil {
			if errors.Is(e, mgo.ErrNotFound) {
				s.log.V(2).Info("watch found nothing, retry later")
				time.Sleep(s.retryTimeout)
				continue
			}

			return e
		}
	}
}
