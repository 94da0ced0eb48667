package test

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/supremind/authorize/types"
)

var ps types.PolicyStore

// TestPolicyStore registers the store implementation the shared policy
// store cases run against
func TestPolicyStore(s types.PolicyStore) {
	ps = s
}

// PolicyStoreCases are shared cases for PolicyStore implementations
var PolicyStoreCases = Describe("policy store", func() {
	roles := []types.Role{
		{Name: "admin"},
		{Name: "editor", Allowances: types.Allowances{
			"articles": types.NewOperations(types.Create, types.Read, types.Update),
		}},
		{Name: "reader", Allowances: types.Allowances{
			"articles": types.NewOperations(types.Read),
		}},
	}
	groups := []types.Group{
		{Name: "staff"},
		{Name: "banned", Restrictions: types.Restrictions{
			types.AnyClass: types.DefaultOperations(),
		}},
	}

	It("persists, watches, and removes credential policies", func() {
		changes, e := ps.Watch(context.Background())
		Expect(e).To(Succeed())

		var mu sync.Mutex
		var seen []types.PolicyChange
		go func() {
			for c := range changes {
				mu.Lock()
				seen = append(seen, c)
				mu.Unlock()
			}
		}()

		for _, r := range roles {
			Expect(ps.UpsertRole(r)).To(Succeed())
		}
		for _, g := range groups {
			Expect(ps.UpsertGroup(g)).To(Succeed())
		}

		listedRoles, e := ps.ListRoles()
		Expect(e).To(Succeed())
		Expect(roleNames(listedRoles)).To(ConsistOf("admin", "editor", "reader"))

		listedGroups, e := ps.ListGroups()
		Expect(e).To(Succeed())
		Expect(groupNames(listedGroups)).To(ConsistOf("staff", "banned"))

		// wildcard allowances and restrictions survive the round trip
		for _, r := range listedRoles {
			if r.Name == "admin" {
				Expect(r.Allowances).To(BeNil())
			}
			if r.Name == "reader" {
				Expect(r.Allowances["articles"]).To(Equal(types.NewOperations(types.Read)))
			}
		}
		for _, g := range listedGroups {
			if g.Name == "banned" {
				Expect(g.Restrictions.Of("anything")).To(Equal(types.DefaultOperations()))
			}
		}

		Expect(ps.UpsertRole(types.Role{Name: "reader", Allowances: types.Allowances{
			"articles": types.NewOperations(types.Read, types.Update),
		}})).To(Succeed())

		listedRoles, e = ps.ListRoles()
		Expect(e).To(Succeed())
		for _, r := range listedRoles {
			if r.Name == "reader" {
				Expect(r.Allowances["articles"]).To(Equal(types.NewOperations(types.Read, types.Update)))
			}
		}

		Expect(ps.RemoveGroup("staff")).To(Succeed())
		listedGroups, e = ps.ListGroups()
		Expect(e).To(Succeed())
		Expect(groupNames(listedGroups)).To(ConsistOf("banned"))

		total := len(roles) + len(groups) + 2
		Eventually(func() int {
			mu.Lock()
			defer mu.Unlock()
			return len(seen)
		}).Should(BeNumerically(">=", total))
	})
})

func roleNames(roles []types.Role) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	return out
}

func groupNames(groups []types.Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Name)
	}
	return out
}
