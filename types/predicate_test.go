package types_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	g "github.com/onsi/gomega"

	. "github.com/supremind/authorize/types"
)

var _ = Describe("predicate matching", func() {
	record := Record{
		ID:    "1",
		Class: "articles",
		Owner: "alice",
		Group: "staff",
		Permission: PermissionSet{
			Owner: NewOperations(Delete, Read, Update),
			Group: NewOperations(Read, Update),
			Other: NewOperations(Read),
		},
	}

	DescribeTable("matches",
		func(p Predicate) {
			g.Expect(Match(record, p)).To(g.BeTrue())
		},
		Entry("empty conjunction", And{}),
		Entry("owner has delete", HasOperation{RelationOwner, Delete}),
		Entry("other has read", HasOperation{RelationOther, Read}),
		Entry("owned by alice", OwnerIs{"alice"}),
		Entry("group among", GroupIn{[]string{"admins", "staff"}}),
		Entry("conjunction", And{OwnerIs{"alice"}, HasOperation{RelationOwner, Update}}),
		Entry("disjunction with one match", Or{OwnerIs{"bob"}, HasOperation{RelationOther, Read}}),
	)

	DescribeTable("does not match",
		func(p Predicate) {
			g.Expect(Match(record, p)).To(g.BeFalse())
		},
		Entry("empty disjunction", Or{}),
		Entry("other has no update", HasOperation{RelationOther, Update}),
		Entry("owned by someone else", OwnerIs{"bob"}),
		Entry("anonymous owner never matches", OwnerIs{""}),
		Entry("group not among", GroupIn{[]string{"admins"}}),
		Entry("empty group list", GroupIn{nil}),
		Entry("conjunction with one miss", And{OwnerIs{"alice"}, HasOperation{RelationGroup, Delete}}),
	)

	It("never matches ungrouped records by group", func() {
		ungrouped := Record{ID: "2", Class: "articles"}
		g.Expect(Match(ungrouped, GroupIn{[]string{""}})).To(g.BeFalse())
	})
})

var _ = Describe("restrictions", func() {
	restrictions := Restrictions{
		AnyClass:   NewOperations(Delete),
		"articles": NewOperations(Update),
	}

	It("unions wildcard entries into class lookups", func() {
		g.Expect(restrictions.Of("articles")).To(g.Equal(NewOperations(Delete, Update)))
		g.Expect(restrictions.Of("items")).To(g.Equal(NewOperations(Delete)))
	})

	It("restricts nothing when nil", func() {
		var none Restrictions
		g.Expect(none.Of("articles").Intersects(DefaultOperations())).To(g.BeFalse())
	})

	It("clones deeply", func() {
		clone := restrictions.Clone()
		clone["articles"].Add(Read)
		g.Expect(restrictions["articles"].Contains(Read)).To(g.BeFalse())
	})
})

var _ = Describe("allowances", func() {
	It("keeps nil maps nil through clone", func() {
		var wildcard Allowances
		g.Expect(wildcard.Clone()).To(g.BeNil())
	})

	It("materializes nil maps on set", func() {
		var a Allowances
		a = a.Set("articles", NewOperations(Read))
		g.Expect(a["articles"]).To(g.Equal(NewOperations(Read)))
	})
})
