package types

// Predicate is a declarative filter over resource records, composable
// inside larger conjunctions and disjunctions built by the caller.
// Record stores translate predicates to their native query form; Match
// defines the reference semantics they must agree with.
type Predicate interface {
	predicate()
}

// And matches records satisfying every member predicate.
// An empty And matches everything.
type And []Predicate

// Or matches records satisfying at least one member predicate.
// An empty Or matches nothing.
type Or []Predicate

// HasOperation matches records whose permission list for the given
// relation contains the operation
type HasOperation struct {
	Relation  Relation
	Operation Operation
}

// OwnerIs matches records owned by the actor with the given ident
type OwnerIs struct {
	Ident string
}

// GroupIn matches records whose owning group is one of the given groups
type GroupIn struct {
	Groups []string
}

func (And) predicate()          {}
func (Or) predicate()           {}
func (HasOperation) predicate() {}
func (OwnerIs) predicate()      {}
func (GroupIn) predicate()      {}

// Match is the reference evaluation of a predicate against a record
func Match(r Record, p Predicate) bool {
	switch pred := p.(type) {
	case And:
		for _, sub := range pred {
			if !Match(r, sub) {
				return false
			}
		}
		return true

	case Or:
		for _, sub := range pred {
			if Match(r, sub) {
				return true
			}
		}
		return false

	case HasOperation:
		return r.Permission.Of(pred.Relation).Contains(pred.Operation)

	case OwnerIs:
		return pred.Ident != "" && r.Owner == pred.Ident

	case GroupIn:
		if r.Group == "" {
			return false
		}
		for _, g := range pred.Groups {
			if r.Group == g {
				return true
			}
		}
		return false
	}

	return false
}
