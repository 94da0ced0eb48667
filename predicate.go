package authorize

import (
	"errors"

	"github.com/supremind/authorize/types"
)

// Authorized builds the filter predicate selecting the records the
// current actor may perform op on: records whose other relation grants
// op, records the actor owns with the owner relation granting op, and
// records whose group is among the actor's groups with the group
// relation granting op. Applying the predicate in a bulk query is
// equivalent to running the instance permission check on every record.
// The result composes safely inside larger And/Or predicates.
func (a *Authorize) Authorized(op types.Operation) types.Predicate {
	clauses := types.Or{
		types.HasOperation{Relation: types.RelationOther, Operation: op},
	}

	actor := a.currentActor()
	if actor == nil {
		return clauses
	}

	clauses = append(clauses, types.And{
		types.OwnerIs{Ident: actor.Ident()},
		types.HasOperation{Relation: types.RelationOwner, Operation: op},
	})

	groups := a.resolver.GroupsOf(actor)
	if len(groups) > 0 {
		names := make([]string, 0, len(groups))
		for _, g := range groups {
			names = append(names, g.Name)
		}
		clauses = append(clauses, types.And{
			types.GroupIn{Groups: names},
			types.HasOperation{Relation: types.RelationGroup, Operation: op},
		})
	}

	return clauses
}

// AuthorizedRecords queries the configured record store for all records
// of the class the current actor may perform op on; class may be a type
// prototype or a class key string
func (a *Authorize) AuthorizedRecords(class interface{}, op types.Operation) ([]types.Record, error) {
	if a.store == nil {
		return nil, errors.New("record store is not configured")
	}
	return a.store.Query(a.keyOf(class), a.Authorized(op))
}
