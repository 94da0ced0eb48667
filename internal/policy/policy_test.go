package policy_test

import (
	"testing"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/supremind/authorize/internal/policy"
	"github.com/supremind/authorize/internal/resolver"
	"github.com/supremind/authorize/types"
)

func TestPolicy(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "policy test suit")
}

var _ = Describe("allowances", func() {
	defaults := types.NewOperations(types.Read)
	e := policy.New(resolver.New(nil, logr.Discard()), defaults, logr.Discard())

	admin := types.Role{Name: "admin"}
	editor := types.Role{Name: "editor", Allowances: types.Allowances{
		"articles": types.NewOperations(types.Create, types.Read, types.Update),
	}}
	intern := types.Role{Name: "intern", Allowances: types.Allowances{}}

	It("allows actors without credentials", func() {
		Expect(e.Allowed(types.NewUser("alice"), types.DefaultOperations(), "articles")).To(BeTrue())
		Expect(e.Allowed(nil, types.DefaultOperations(), "articles")).To(BeTrue())
	})

	It("allows everything for roles without an allowance policy", func() {
		user := types.NewUser("alice", admin)
		Expect(e.Allowed(user, types.DefaultOperations(), "articles")).To(BeTrue())
		Expect(e.Allowed(user, types.NewOperations("publish"), "anything")).To(BeTrue())
	})

	It("allows everything for actors holding only groups", func() {
		user := types.NewUser("alice", types.Group{Name: "staff"})
		Expect(e.Allowed(user, types.DefaultOperations(), "articles")).To(BeTrue())
	})

	It("grants nothing for an explicitly empty allowance map", func() {
		user := types.NewUser("alice", intern)
		Expect(e.Allowed(user, types.NewOperations(types.Read), "articles")).To(BeFalse())
	})

	It("checks the class entry", func() {
		user := types.NewUser("alice", editor)
		Expect(e.Allowed(user, types.NewOperations(types.Create, types.Update), "articles")).To(BeTrue())
		Expect(e.Allowed(user, types.NewOperations(types.Delete), "articles")).To(BeFalse())
	})

	It("falls back to defaults for classes absent from a non-empty map", func() {
		user := types.NewUser("alice", editor)
		Expect(e.Allowed(user, types.NewOperations(types.Read), "items")).To(BeTrue())
		Expect(e.Allowed(user, types.NewOperations(types.Update), "items")).To(BeFalse())
	})

	It("accumulates allowances over all roles", func() {
		remover := types.Role{Name: "remover", Allowances: types.Allowances{
			"articles": types.NewOperations(types.Delete),
		}}
		user := types.NewUser("alice", editor, remover)

		Expect(e.Allowed(user, types.DefaultOperations(), "articles")).To(BeTrue())
	})

	It("short-circuits on any wildcard role", func() {
		user := types.NewUser("alice", intern, admin)
		Expect(e.Allowed(user, types.DefaultOperations(), "articles")).To(BeTrue())
	})
})

var _ = Describe("restrictions", func() {
	e := policy.New(resolver.New(nil, logr.Discard()), types.DefaultOperations(), logr.Discard())

	banned := types.Group{Name: "banned", Restrictions: types.Restrictions{
		types.AnyClass: types.NewOperations(types.Create, types.Delete),
	}}
	moderated := types.Group{Name: "moderated", Restrictions: types.Restrictions{
		"comments": types.NewOperations(types.Create),
	}}

	It("restricts nothing without credentials", func() {
		Expect(e.Restricted(types.NewUser("alice"), types.DefaultOperations(), "articles")).To(BeFalse())
		Expect(e.Restricted(nil, types.DefaultOperations(), "articles")).To(BeFalse())
	})

	It("applies wildcard restrictions to every class", func() {
		user := types.NewUser("alice", banned)
		Expect(e.Restricted(user, types.NewOperations(types.Create), "articles")).To(BeTrue())
		Expect(e.Restricted(user, types.NewOperations(types.Read), "articles")).To(BeFalse())
	})

	It("applies class restrictions to that class only", func() {
		user := types.NewUser("alice", moderated)
		Expect(e.Restricted(user, types.NewOperations(types.Create), "comments")).To(BeTrue())
		Expect(e.Restricted(user, types.NewOperations(types.Create), "articles")).To(BeFalse())
	})

	It("triggers on any overlap with the request", func() {
		user := types.NewUser("alice", moderated)
		Expect(e.Restricted(user, types.NewOperations(types.Create, types.Read), "comments")).To(BeTrue())
	})

	It("ignores roles", func() {
		user := types.NewUser("alice", types.Role{Name: "admin"})
		Expect(e.Restricted(user, types.DefaultOperations(), "articles")).To(BeFalse())
	})
})
