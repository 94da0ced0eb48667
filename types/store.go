package types

import "context"

// RecordStore supplies resource instances and their permission fields
// from an external storage. Implementations persist permission lists
// through the scalar codec, and must evaluate predicates with the same
// semantics as Match.
type RecordStore interface {
	// Save inserts or updates a record, identified by (Class, ID)
	Save(Record) error

	// Remove deletes a record from the store
	Remove(class, id string) error

	// Get returns one record, or ErrNotFound
	Get(class, id string) (Record, error)

	// Query returns all records of the class matching the predicate.
	// A nil predicate matches every record of the class.
	Query(class string, p Predicate) ([]Record, error)
}

// PolicyStore persists credential policies, the role allowances and
// group restrictions referenced by actors, to an external storage
type PolicyStore interface {
	// UpsertRole inserts or updates a role policy by name
	UpsertRole(Role) error

	// UpsertGroup inserts or updates a group policy by name
	UpsertGroup(Group) error

	// RemoveRole deletes a role policy from the store
	RemoveRole(name string) error

	// RemoveGroup deletes a group policy from the store
	RemoveGroup(name string) error

	// ListRoles returns all role policies in the store
	ListRoles() ([]Role, error)

	// ListGroups returns all group policies in the store
	ListGroups() ([]Group, error)

	// Watch any changes occurred about the policies in the store
	Watch(context.Context) (<-chan PolicyChange, error)
}

// PolicyChange denotes a changing event about a credential policy.
// Exactly one of Role and Group is set.
type PolicyChange struct {
	Role   *Role
	Group  *Group
	Method PersistMethod
}

// PersistMethod defines what happened about a policy
type PersistMethod string

// possible changes could happen about policies
const (
	PersistInsert PersistMethod = "insert"
	PersistDelete PersistMethod = "delete"
	PersistUpdate PersistMethod = "update"
)
