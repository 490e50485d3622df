package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChange(project, commit string, parents ...string) *domain.Change {
	return &domain.Change{
		Project: project,
		Branch:  "master",
		OwnerID: "owner",
		CurrentPatchSet: domain.PatchSet{
			CommitID:  commit,
			ParentIDs: parents,
		},
	}
}

func TestStore_Graph(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := s.CreateChange(newChange("R1", "a"))
	b := s.CreateChange(newChange("R1", "b", "a"))
	c := s.CreateChange(newChange("R1", "c", "b"))
	other := s.CreateChange(newChange("R2", "b2", "a"))

	t.Run("идентификаторы выдаются по порядку", func(t *testing.T) {
		assert.Equal(t, []domain.ChangeID{1, 2, 3, 4}, []domain.ChangeID{a.ID, b.ID, c.ID, other.ID})
		assert.Equal(t, domain.StatusNew, a.Status)
		assert.Equal(t, 1, a.CurrentPatchSet.Number)
	})

	t.Run("родители ищутся только в своем проекте", func(t *testing.T) {
		parents, err := s.ParentChanges(ctx, b)
		require.NoError(t, err)
		require.Len(t, parents, 1)
		assert.Equal(t, a.ID, parents[0].ID)

		parents, err = s.ParentChanges(ctx, other)
		require.NoError(t, err)
		assert.Empty(t, parents)
	})

	t.Run("потомки", func(t *testing.T) {
		children, err := s.ChildChanges(ctx, a)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, b.ID, children[0].ID)
	})

	t.Run("возвращаются копии", func(t *testing.T) {
		got, err := s.GetByID(ctx, b.ID)
		require.NoError(t, err)
		got.CurrentPatchSet.ParentIDs[0] = "zzz"
		got.Topic = "mutated"

		again, err := s.GetByID(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, again.CurrentPatchSet.ParentIDs)
		assert.Empty(t, again.Topic)
	})

	t.Run("GetByIDs пропускает неизвестные", func(t *testing.T) {
		got, err := s.GetByIDs(ctx, []domain.ChangeID{c.ID, 100, a.ID})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, a.ID, got[0].ID)
		assert.Equal(t, c.ID, got[1].ID)
	})
}

func TestStore_BranchScope(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := s.CreateChange(newChange("R1", "a"))
	cherry := newChange("R1", "a")
	cherry.Branch = "stable"
	cherry = s.CreateChange(cherry)
	b := s.CreateChange(newChange("R1", "b", "a"))
	onStable := newChange("R1", "s", "a")
	onStable.Branch = "stable"
	onStable = s.CreateChange(onStable)

	t.Run("родитель с тем же коммитом в другой ветке не подтягивается", func(t *testing.T) {
		parents, err := s.ParentChanges(ctx, b)
		require.NoError(t, err)
		require.Len(t, parents, 1)
		assert.Equal(t, a.ID, parents[0].ID)

		parents, err = s.ParentChanges(ctx, onStable)
		require.NoError(t, err)
		require.Len(t, parents, 1)
		assert.Equal(t, cherry.ID, parents[0].ID)
	})

	t.Run("потомки только своей ветки", func(t *testing.T) {
		children, err := s.ChildChanges(ctx, a)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, b.ID, children[0].ID)

		children, err = s.ChildChanges(ctx, cherry)
		require.NoError(t, err)
		require.Len(t, children, 1)
		assert.Equal(t, onStable.ID, children[0].ID)
	})
}

func TestStore_PatchSets(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := s.CreateChange(newChange("R1", "a1"))
	b := s.CreateChange(newChange("R1", "b1", "a1"))

	ps, err := s.AddPatchSet(a.ID, "a2")
	require.NoError(t, err)
	assert.Equal(t, 2, ps.Number)

	t.Run("коммит старого патчсета по-прежнему указывает на изменение", func(t *testing.T) {
		parents, err := s.ParentChanges(ctx, b)
		require.NoError(t, err)
		require.Len(t, parents, 1)
		assert.Equal(t, a.ID, parents[0].ID)
		assert.Equal(t, "a2", parents[0].CurrentPatchSet.CommitID)
	})

	t.Run("неизвестное изменение", func(t *testing.T) {
		_, err := s.AddPatchSet(100, "x")
		assert.ErrorIs(t, err, repository.ErrChangeNotFound)
	})
}

func TestStore_TopicAndStatus(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := s.CreateChange(newChange("R1", "a"))
	b := s.CreateChange(newChange("R2", "b"))
	c := s.CreateChange(newChange("R3", "c"))

	require.NoError(t, s.SetTopic(ctx, a.ID, " t1 "))
	require.NoError(t, s.SetTopic(ctx, b.ID, "t1"))
	require.NoError(t, s.SetTopic(ctx, c.ID, "t1"))
	require.NoError(t, s.SetStatus(c.ID, domain.StatusAbandoned))

	t.Run("только открытые изменения топика", func(t *testing.T) {
		got, err := s.OpenByTopic(ctx, "t1")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, a.ID, got[0].ID)
		assert.Equal(t, b.ID, got[1].ID)
	})

	t.Run("закрытый статус не меняется", func(t *testing.T) {
		require.NoError(t, s.SetStatus(c.ID, domain.StatusNew))
		got, err := s.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusAbandoned, got.Status)
	})

	t.Run("MarkMerged атомарен по неизвестному ID", func(t *testing.T) {
		err := s.MarkMerged(ctx, []domain.ChangeID{a.ID, 100}, time.Now())
		assert.ErrorIs(t, err, repository.ErrChangeNotFound)

		got, err := s.GetByID(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusNew, got.Status)
	})

	t.Run("MarkMerged", func(t *testing.T) {
		at := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.MarkMerged(ctx, []domain.ChangeID{a.ID, b.ID, c.ID}, at))

		got, err := s.GetByIDs(ctx, []domain.ChangeID{a.ID, b.ID, c.ID})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusMerged, got[0].Status)
		assert.Equal(t, domain.StatusMerged, got[1].Status)
		assert.Equal(t, domain.StatusAbandoned, got[2].Status)
		assert.Equal(t, at, *got[0].UpdatedAt)
	})
}

func TestStore_Visibility(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	s.AddUser(&domain.User{ID: "u1"})
	s.AddUser(&domain.User{ID: "root", IsAdmin: true})
	s.AddMember("devs", "u1")
	s.GrantRead("R1", "devs")
	s.GrantRead("public", domain.AnonymousGroup)

	u1, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	root, err := s.GetUser(ctx, "root")
	require.NoError(t, err)

	private := newChange("R1", "p")
	private.IsPrivate = true

	tests := []struct {
		name   string
		user   *domain.User
		change *domain.Change
		want   bool
	}{
		{name: "участник группы", user: u1, change: newChange("R1", "x"), want: true},
		{name: "проект без доступа", user: u1, change: newChange("R2", "x"), want: false},
		{name: "анонимный доступ", user: u1, change: newChange("public", "x"), want: true},
		{name: "приватное изменение", user: u1, change: private, want: false},
		{name: "владелец видит приватное", user: &domain.User{ID: "owner"}, change: private, want: true},
		{name: "администратор", user: root, change: newChange("R2", "x"), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.CanSee(ctx, tt.user, tt.change)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("неизвестный пользователь", func(t *testing.T) {
		_, err := s.GetUser(ctx, "nobody")
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}

func TestStore_Unavailable(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	a := s.CreateChange(newChange("R1", "a"))
	readErr := errors.New("disk failure")

	s.SetUnavailable("R1", readErr)
	_, err := s.ParentChanges(ctx, a)
	assert.ErrorIs(t, err, readErr)
	_, err = s.GetByID(ctx, a.ID)
	assert.ErrorIs(t, err, readErr)

	s.SetUnavailable("R1", nil)
	_, err = s.ParentChanges(ctx, a)
	assert.NoError(t, err)
}
