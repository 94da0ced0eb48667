package types_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	g "github.com/onsi/gomega"

	. "github.com/supremind/authorize/types"
)

type blogPost struct {
	OwnerRef
	GroupRef
	PermissionSet
}

type auditEntry struct{}

func (auditEntry) TableName() string { return "audit_log" }

var _ = Describe("class keys", func() {
	DescribeTable("derivation strategies",
		func(strategy KeyStrategy, v interface{}, want string) {
			g.Expect(ClassKeyFunc(strategy)(v)).To(g.Equal(want))
		},
		Entry("raw keeps the type name", KeyRaw, blogPost{}, "blogPost"),
		Entry("lower folds case", KeyLower, blogPost{}, "blogpost"),
		Entry("snake splits words", KeySnake, BlogPost{}, "blog_post"),
		Entry("snake falls back on single words", KeySnake, auditEntry{}, "auditentry"),
		Entry("table asks the type", KeyTable, auditEntry{}, "audit_log"),
		Entry("table folds case without a table name", KeyTable, blogPost{}, "blogpost"),
		Entry("pointers are dereferenced", KeyLower, &blogPost{}, "blogpost"),
		Entry("strings pass through", KeyTable, "articles", "articles"),
	)
})

type BlogPost struct{}

var _ = Describe("resource capabilities", func() {
	It("exposes embedded capability values", func() {
		post := blogPost{
			OwnerRef: OwnerRef{Owner: "alice"},
			GroupRef: GroupRef{Group: "staff"},
			PermissionSet: PermissionSet{
				Other: NewOperations(Read),
			},
		}

		var owned Owned = post
		var grouped Grouped = post
		var permissioned Permissioned = post

		g.Expect(owned.OwnerIdent()).To(g.Equal("alice"))
		g.Expect(grouped.GroupName()).To(g.Equal("staff"))
		g.Expect(permissioned.Permissions().Other).To(g.Equal(NewOperations(Read)))
	})

	It("implements every capability on records", func() {
		r := Record{
			Owner:      "alice",
			Group:      "staff",
			Permission: PermissionSet{Owner: NewOperations(Read)},
			Special:    []SpecialPermission{{ActorID: "bob", Operations: NewOperations(Read)}},
		}

		var _ Owned = r
		var _ Grouped = r
		var _ Permissioned = r
		var _ SpecialPermissioned = r

		g.Expect(r.OwnerIdent()).To(g.Equal("alice"))
		g.Expect(r.GroupName()).To(g.Equal("staff"))
		g.Expect(r.Permissions().Owner).To(g.Equal(NewOperations(Read)))
		g.Expect(r.SpecialPermissions()).To(g.HaveLen(1))
	})
})
