package authorize_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/supremind/authorize"
	"github.com/supremind/authorize/persist/fake"
	"github.com/supremind/authorize/types"
)

var _ = Describe("authorized record queries", func() {
	records := []types.Record{
		{ID: "1", Class: "articles", Owner: "alice", Permission: mustParse("600")},
		{ID: "2", Class: "articles", Group: "staff", Permission: mustParse("060")},
		{ID: "3", Class: "articles", Owner: "bob", Permission: mustParse("602")},
		{ID: "4", Class: "articles", Owner: "bob", Permission: mustParse("700")},
	}

	store := fake.NewRecordStore()
	for _, r := range records {
		if e := store.Save(r); e != nil {
			panic(e)
		}
	}

	var current types.Actor
	a := mustNew(
		authorize.WithActorProvider(func() types.Actor { return current }),
		authorize.WithRecordStore(store),
		authorize.WithAnonymousActions(true),
	)

	BeforeEach(func() {
		current = nil
	})

	It("selects exactly the records the actor may act on", func() {
		current = types.NewUser("alice", staff)

		got, e := a.AuthorizedRecords("articles", types.Read)
		Expect(e).To(Succeed())
		Expect(recordIDs(got)).To(ConsistOf("1", "2", "3"))

		got, e = a.AuthorizedRecords("articles", types.Delete)
		Expect(e).To(Succeed())
		Expect(got).To(BeEmpty())
	})

	It("agrees with per-instance evaluation", func() {
		current = types.NewUser("alice", staff)

		for _, op := range []types.Operation{types.Read, types.Update, types.Delete} {
			got, e := a.AuthorizedRecords("articles", op)
			Expect(e).To(Succeed())

			selected := recordIDs(got)
			for _, r := range records {
				Expect(a.Can(op).Evaluate(r)).To(Equal(contains(selected, r.ID)),
					"record %s, operation %s", r.ID, op)
			}
		}
	})

	It("keeps only the other clause for anonymous actors", func() {
		p := a.Authorized(types.Read)

		for _, r := range records {
			Expect(types.Match(r, p)).To(Equal(r.ID == "3"))
		}
	})

	It("composes inside larger filters", func() {
		current = types.NewUser("alice", staff)

		p := types.And{a.Authorized(types.Read), types.OwnerIs{Ident: "bob"}}
		got, e := store.Query("articles", p)
		Expect(e).To(Succeed())
		Expect(recordIDs(got)).To(ConsistOf("3"))
	})

	It("requires a configured store", func() {
		bare := mustNew()
		_, e := bare.AuthorizedRecords("articles", types.Read)
		Expect(e).To(HaveOccurred())
	})
})

func recordIDs(records []types.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
