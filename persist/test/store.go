// Package test provides shared test cases for record and policy store
// implementations.
package test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/supremind/authorize/types"
)

var rs types.RecordStore

// TestRecordStore registers the store implementation the shared record
// store cases run against
func TestRecordStore(s types.RecordStore) {
	rs = s
}

// RecordStoreCases are shared cases for RecordStore implementations
var RecordStoreCases = Describe("record store", func() {
	records := []types.Record{
		{
			ID: "1", Class: "articles", Owner: "alan", Group: "editors",
			Permission: types.PermissionSet{
				Owner: types.NewOperations(types.Read, types.Update, types.Delete),
				Group: types.NewOperations(types.Read, types.Update),
				Other: types.NewOperations(types.Read),
			},
		},
		{
			ID: "2", Class: "articles", Owner: "karman", Group: "writers",
			Permission: types.PermissionSet{
				Owner: types.NewOperations(types.Read, types.Update, types.Delete),
				Group: types.NewOperations(types.Read),
			},
		},
		{
			ID: "3", Class: "articles", Owner: "karman",
			Permission: types.PermissionSet{
				Owner: types.NewOperations(types.Read),
				Other: types.NewOperations(types.Read),
			},
		},
		{
			ID: "1", Class: "items", Owner: "alan",
			Permission: types.PermissionSet{
				Owner: types.NewOperations(types.Read, types.Update),
			},
		},
	}

	BeforeEach(func() {
		for _, r := range records {
			Expect(rs.Save(r)).To(Succeed())
		}
	})

	It("gets saved records back", func() {
		r, e := rs.Get("articles", "1")
		Expect(e).To(Succeed())
		Expect(r.Owner).To(Equal("alan"))
		Expect(r.Group).To(Equal("editors"))
		Expect(r.Permission.Owner).To(Equal(types.NewOperations(types.Read, types.Update, types.Delete)))
		Expect(r.Permission.Other).To(Equal(types.NewOperations(types.Read)))
	})

	It("round-trips empty permission relations", func() {
		r, e := rs.Get("articles", "2")
		Expect(e).To(Succeed())
		Expect(r.Permission.Other).To(BeEmpty())
	})

	It("updates records in place", func() {
		r, e := rs.Get("items", "1")
		Expect(e).To(Succeed())
		r.Permission.Other = types.NewOperations(types.Read)
		Expect(rs.Save(r)).To(Succeed())

		got, e := rs.Get("items", "1")
		Expect(e).To(Succeed())
		Expect(got.Permission.Other).To(Equal(types.NewOperations(types.Read)))
	})

	It("reports missing records", func() {
		_, e := rs.Get("articles", "404")
		Expect(errors.Is(e, types.ErrNotFound)).To(BeTrue())
	})

	It("removes records", func() {
		Expect(rs.Save(types.Record{ID: "doomed", Class: "articles"})).To(Succeed())
		Expect(rs.Remove("articles", "doomed")).To(Succeed())
		_, e := rs.Get("articles", "doomed")
		Expect(errors.Is(e, types.ErrNotFound)).To(BeTrue())
	})

	It("queries all records of a class with a nil predicate", func() {
		out, e := rs.Query("items", nil)
		Expect(e).To(Succeed())
		Expect(out).To(HaveLen(1))
	})

	It("queries by relation operation", func() {
		out, e := rs.Query("articles", types.HasOperation{Relation: types.RelationOther, Operation: types.Read})
		Expect(e).To(Succeed())
		Expect(ids(out)).To(ConsistOf("1", "3"))
	})

	It("queries by owner conjunction", func() {
		out, e := rs.Query("articles", types.And{
			types.OwnerIs{Ident: "karman"},
			types.HasOperation{Relation: types.RelationOwner, Operation: types.Update},
		})
		Expect(e).To(Succeed())
		Expect(ids(out)).To(ConsistOf("2"))
	})

	It("queries by group membership", func() {
		out, e := rs.Query("articles", types.And{
			types.GroupIn{Groups: []string{"editors", "writers"}},
			types.HasOperation{Relation: types.RelationGroup, Operation: types.Update},
		})
		Expect(e).To(Succeed())
		Expect(ids(out)).To(ConsistOf("1"))
	})

	It("queries the full authorization disjunction", func() {
		pred := types.Or{
			types.HasOperation{Relation: types.RelationOther, Operation: types.Update},
			types.And{
				types.OwnerIs{Ident: "karman"},
				types.HasOperation{Relation: types.RelationOwner, Operation: types.Update},
			},
			types.And{
				types.GroupIn{Groups: []string{"editors"}},
				types.HasOperation{Relation: types.RelationGroup, Operation: types.Update},
			},
		}
		out, e := rs.Query("articles", pred)
		Expect(e).To(Succeed())
		Expect(ids(out)).To(ConsistOf("1", "2"))
	})
})

func ids(records []types.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
