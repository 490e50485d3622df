package service

import (
	"context"
	"testing"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/repository/memory"
	"github.com/stretchr/testify/require"
)

const (
	testGroup = "developers"
	testOwner = "owner"
)

type changeSeed struct {
	name    string
	topic   string
	private bool
}

// fixture - набор цепочек изменений в памяти, изменения адресуются по имени
type fixture struct {
	t       *testing.T
	store   *memory.Store
	changes map[string]*domain.Change
	user    *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.NewStore()
	user := &domain.User{ID: "u1", Username: "alice"}
	store.AddUser(user)
	store.AddUser(&domain.User{ID: testOwner, Username: "owner"})
	store.AddUser(&domain.User{ID: "root", Username: "root", IsAdmin: true})
	store.AddMember(testGroup, user.ID)

	return &fixture{
		t:       t,
		store:   store,
		changes: make(map[string]*domain.Change),
		user:    user,
	}
}

// chain создает в проекте цепочку, где каждое изменение основано на предыдущем
func (f *fixture) chain(project string, seeds ...changeSeed) {
	f.t.Helper()
	f.store.GrantRead(project, testGroup)

	parent := ""
	for _, seed := range seeds {
		ps := domain.PatchSet{CommitID: "commit-" + seed.name}
		if parent != "" {
			ps.ParentIDs = []string{parent}
		}
		created := f.store.CreateChange(&domain.Change{
			Project:         project,
			Branch:          "master",
			OwnerID:         testOwner,
			Topic:           seed.topic,
			IsPrivate:       seed.private,
			CurrentPatchSet: ps,
		})
		f.changes[seed.name] = created
		parent = ps.CommitID
	}
}

func (f *fixture) change(name string) *domain.Change {
	f.t.Helper()
	c, ok := f.changes[name]
	require.True(f.t, ok, "unknown change %s", name)
	return c
}

func (f *fixture) ids(names ...string) []domain.ChangeID {
	f.t.Helper()
	ids := make([]domain.ChangeID, 0, len(names))
	for _, n := range names {
		ids = append(ids, f.change(n).ID)
	}
	return ids
}

func (f *fixture) names(ids []domain.ChangeID) []string {
	byID := make(map[domain.ChangeID]string, len(f.changes))
	for name, c := range f.changes {
		byID[c.ID] = name
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, byID[id])
	}
	return names
}

func (f *fixture) resolver() *Resolver {
	return NewResolver(NewChangeGraph(f.store, nil), f.store)
}

// newTopicScenario: R1: A->B(t2)->C, R2: D(t1)->E(t2)->F(t3), R3: G->H(t3)->J, R4: K->L(t1)->M
func newTopicScenario(t *testing.T) *fixture {
	f := newFixture(t)
	f.chain("R1", changeSeed{name: "A"}, changeSeed{name: "B", topic: "t2"}, changeSeed{name: "C"})
	f.chain("R2", changeSeed{name: "D", topic: "t1"}, changeSeed{name: "E", topic: "t2"}, changeSeed{name: "F", topic: "t3"})
	f.chain("R3", changeSeed{name: "G"}, changeSeed{name: "H", topic: "t3"}, changeSeed{name: "J"})
	f.chain("R4", changeSeed{name: "K"}, changeSeed{name: "L", topic: "t1"}, changeSeed{name: "M"})
	return f
}

// seed перечитывает изменение из хранилища, чтобы учесть смену статуса
func (f *fixture) seed(name string) *domain.Change {
	f.t.Helper()
	c, err := f.store.GetByID(context.Background(), f.change(name).ID)
	require.NoError(f.t, err)
	return c
}
