package types_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	g "github.com/onsi/gomega"

	. "github.com/supremind/authorize/types"
)

var _ = Describe("permission parsing", func() {
	DescribeTable("single digits",
		func(digit int, ops Operations) {
			g.Expect(ParseDigit(digit)).To(g.Equal(ops))
		},
		Entry("0 grants nothing", 0, NewOperations()),
		Entry("1 is delete", 1, NewOperations(Delete)),
		Entry("2 is read", 2, NewOperations(Read)),
		Entry("3 is delete read", 3, NewOperations(Delete, Read)),
		Entry("4 is update", 4, NewOperations(Update)),
		Entry("5 is delete update", 5, NewOperations(Delete, Update)),
		Entry("6 is read update", 6, NewOperations(Read, Update)),
		Entry("7 is everything but create", 7, NewOperations(Delete, Read, Update)),
	)

	DescribeTable("numeric sets",
		func(raw string, want PermissionSet) {
			set, e := ParsePermissions(raw)
			g.Expect(e).To(g.Succeed())
			g.Expect(set).To(g.Equal(want))
		},
		Entry("770", "770", PermissionSet{
			Owner: NewOperations(Delete, Read, Update),
			Group: NewOperations(Delete, Read, Update),
			Other: NewOperations(),
		}),
		Entry("664", "664", PermissionSet{
			Owner: NewOperations(Read, Update),
			Group: NewOperations(Read, Update),
			Other: NewOperations(Update),
		}),
		Entry("one digit rules the other relation", "6", PermissionSet{
			Owner: NewOperations(),
			Group: NewOperations(),
			Other: NewOperations(Read, Update),
		}),
		Entry("two digits rule group and other", "64", PermissionSet{
			Owner: NewOperations(),
			Group: NewOperations(Read, Update),
			Other: NewOperations(Update),
		}),
		Entry("000", "000", PermissionSet{
			Owner: NewOperations(),
			Group: NewOperations(),
			Other: NewOperations(),
		}),
	)

	DescribeTable("rejects malformed encodings",
		func(raw string) {
			_, e := ParsePermissions(raw)
			g.Expect(e).To(g.MatchError(ErrInvalidPermissionEncoding))
		},
		Entry("too many digits", "7770"),
		Entry("not a number", "rw-"),
		Entry("empty", ""),
		Entry("negative", "-60"),
	)

	It("parses numbers directly", func() {
		set, e := ParsePermissionNumber(604)
		g.Expect(e).To(g.Succeed())
		g.Expect(set.Of(RelationOwner)).To(g.Equal(NewOperations(Read, Update)))
		g.Expect(set.Of(RelationGroup)).To(g.BeEmpty())
		g.Expect(set.Of(RelationOther)).To(g.Equal(NewOperations(Update)))

		_, e = ParsePermissionNumber(1000)
		g.Expect(e).To(g.MatchError(ErrInvalidPermissionEncoding))
	})
})

var _ = Describe("permission set", func() {
	It("merges non-nil relations only", func() {
		base := PermissionSet{
			Owner: NewOperations(Delete, Read, Update),
			Group: NewOperations(Read),
			Other: NewOperations(Read),
		}
		merged := base.Merge(PermissionSet{Group: NewOperations(Read, Update)})

		g.Expect(merged.Owner).To(g.Equal(base.Owner))
		g.Expect(merged.Group).To(g.Equal(NewOperations(Read, Update)))
		g.Expect(merged.Other).To(g.Equal(base.Other))
	})

	It("re-validates on apply", func() {
		base := PermissionSet{Owner: NewOperations(Read)}

		set, e := base.Apply("770")
		g.Expect(e).To(g.Succeed())
		g.Expect(set.Owner).To(g.Equal(NewOperations(Delete, Read, Update)))

		_, e = base.Apply("9999")
		g.Expect(e).To(g.MatchError(ErrInvalidPermissionEncoding))
	})

	It("keeps nil relations unmatched", func() {
		var set PermissionSet
		g.Expect(set.Of(RelationOwner).Includes(NewOperations(Read))).To(g.BeFalse())
	})
})

var _ = Describe("operation list codec", func() {
	DescribeTable("round trips",
		func(ops Operations) {
			g.Expect(DecodeOperations(EncodeOperations(ops))).To(g.Equal(ops))
		},
		Entry("empty", NewOperations()),
		Entry("single", NewOperations(Read)),
		Entry("defaults", DefaultOperations()),
		Entry("custom operations", NewOperations("publish", "archive")),
	)

	It("encodes the empty set as the null sentinel", func() {
		g.Expect(EncodeOperations(nil)).To(g.Equal(""))
		g.Expect(EncodeOperations(NewOperations())).To(g.Equal(""))
	})

	It("joins members in lexical order", func() {
		g.Expect(EncodeOperations(NewOperations(Update, Read, Delete))).To(g.Equal("delete|read|update"))
	})
})
