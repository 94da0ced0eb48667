package types

// Actor is the entity on whose behalf authorization checks run.
// Actors are compared by their stable identifier.
type Actor interface {
	Ident() string
}

// RoleHolder is an actor carrying its roles with their allowance policies
type RoleHolder interface {
	Roles() []Role
}

// GroupHolder is an actor carrying its groups with their restriction policies
type GroupHolder interface {
	Groups() []Group
}

// RoleRefs is an actor referencing its roles by name only,
// to be resolved through a credential directory
type RoleRefs interface {
	RoleNames() []string
}

// GroupRefs is an actor referencing its groups by name only,
// to be resolved through a credential directory
type GroupRefs interface {
	GroupNames() []string
}

// ActorProvider resolves the current actor for an evaluation.
// It returns nil for an anonymous request. It is called synchronously on
// every evaluation and must be safe to call from any goroutine.
type ActorProvider func() Actor

// User is a ready-made Actor implementation carrying explicit credentials
type User struct {
	id     string
	roles  []Role
	groups []Group
}

// NewUser creates a user with the given credentials attached
func NewUser(id string, creds ...Credential) *User {
	u := &User{id: id}
	for _, c := range creds {
		u.Join(c)
	}
	return u
}

// Ident implements Actor
func (u *User) Ident() string { return u.id }

// Roles implements RoleHolder
func (u *User) Roles() []Role { return u.roles }

// Groups implements GroupHolder
func (u *User) Groups() []Group { return u.groups }

// Join attaches a Role or Group credential to the user
func (u *User) Join(c Credential) *User {
	switch cred := c.(type) {
	case Role:
		u.roles = append(u.roles, cred)
	case Group:
		u.groups = append(u.groups, cred)
	}
	return u
}

func (u *User) String() string { return "user:" + u.id }
