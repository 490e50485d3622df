package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupMockDB создает мок базы данных для тестов
// Автоматически закрывает соединение при завершении теста
func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err, "не удалось создать мок БД")
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func setupChangeRepo(t *testing.T) (*changeRepository, sqlmock.Sqlmock) {
	db, mock := setupMockDB(t)
	return NewChangeRepository(db), mock
}

var changeColumns = []string{
	"id", "project", "branch", "owner_id", "status", "topic", "is_private",
	"number", "commit_id", "parents", "created_at", "updated_at",
}

func TestChangeRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("изменение с родительскими коммитами", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		now := time.Now()
		rows := sqlmock.NewRows(changeColumns).
			AddRow(int64(2), "r1", "master", "u1", "NEW", "t2", false, 3, "c2", "c1,c0", now, nil)
		mock.ExpectQuery("WHERE c.id = \\$1").
			WithArgs(int64(2)).
			WillReturnRows(rows)

		change, err := repo.GetByID(ctx, 2)

		require.NoError(t, err)
		assert.Equal(t, domain.ChangeID(2), change.ID)
		assert.Equal(t, "r1", change.Project)
		assert.Equal(t, domain.StatusNew, change.Status)
		assert.Equal(t, "t2", change.Topic)
		assert.Equal(t, 3, change.CurrentPatchSet.Number)
		assert.Equal(t, "c2", change.CurrentPatchSet.CommitID)
		assert.Equal(t, []string{"c1", "c0"}, change.CurrentPatchSet.ParentIDs)
		assert.Nil(t, change.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("изменение не найдено", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		mock.ExpectQuery("WHERE c.id = \\$1").
			WithArgs(int64(404)).
			WillReturnError(sql.ErrNoRows)

		change, err := repo.GetByID(ctx, 404)

		assert.Nil(t, change)
		assert.True(t, errors.Is(err, repository.ErrChangeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChangeRepository_GetByIDs(t *testing.T) {
	ctx := context.Background()

	t.Run("несколько идентификаторов", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		now := time.Now()
		rows := sqlmock.NewRows(changeColumns).
			AddRow(int64(1), "r1", "master", "u1", "NEW", "", false, 1, "c1", "", now, nil).
			AddRow(int64(4), "r2", "master", "u2", "MERGED", "t1", false, 1, "c4", "", now, now)
		mock.ExpectQuery("WHERE c.id IN \\(\\$1, \\$2\\)").
			WithArgs(int64(1), int64(4)).
			WillReturnRows(rows)

		changes, err := repo.GetByIDs(ctx, []domain.ChangeID{1, 4})

		require.NoError(t, err)
		require.Len(t, changes, 2)
		assert.Empty(t, changes[0].CurrentPatchSet.ParentIDs)
		assert.Equal(t, domain.StatusMerged, changes[1].Status)
		assert.NotNil(t, changes[1].UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("пустой список без запроса", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		changes, err := repo.GetByIDs(ctx, nil)

		require.NoError(t, err)
		assert.Empty(t, changes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChangeRepository_ParentChanges(t *testing.T) {
	ctx := context.Background()
	child := &domain.Change{ID: 2, Project: "r1", Branch: "master", CurrentPatchSet: domain.PatchSet{Number: 1, CommitID: "c2"}}

	t.Run("родитель в том же проекте", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		rows := sqlmock.NewRows(changeColumns).
			AddRow(int64(1), "r1", "master", "u1", "NEW", "", false, 2, "c1", "", time.Now(), nil)
		mock.ExpectQuery("FROM commit_parents cp").
			WithArgs("r1", "c2", "master").
			WillReturnRows(rows)

		parents, err := repo.ParentChanges(ctx, child)

		require.NoError(t, err)
		require.Len(t, parents, 1)
		assert.Equal(t, domain.ChangeID(1), parents[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ошибка хранилища", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		mock.ExpectQuery("FROM commit_parents cp").
			WithArgs("r1", "c2", "master").
			WillReturnError(errors.New("connection reset"))

		parents, err := repo.ParentChanges(ctx, child)

		assert.Error(t, err)
		assert.Nil(t, parents)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChangeRepository_ChildChanges(t *testing.T) {
	repo, mock := setupChangeRepo(t)

	parent := &domain.Change{ID: 1, Project: "r1", Branch: "master", CurrentPatchSet: domain.PatchSet{Number: 1, CommitID: "c1"}}
	rows := sqlmock.NewRows(changeColumns).
		AddRow(int64(2), "r1", "master", "u1", "NEW", "", false, 1, "c2", "c1", time.Now(), nil)
	mock.ExpectQuery("c.branch = \\$3 AND EXISTS").
		WithArgs("r1", "c1", "master").
		WillReturnRows(rows)

	children, err := repo.ChildChanges(context.Background(), parent)

	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, []string{"c1"}, children[0].CurrentPatchSet.ParentIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRepository_OpenByTopic(t *testing.T) {
	ctx := context.Background()

	t.Run("открытые изменения топика", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		rows := sqlmock.NewRows(changeColumns).
			AddRow(int64(5), "r2", "master", "u2", "NEW", "t1", false, 1, "c5", "", time.Now(), nil)
		mock.ExpectQuery("WHERE c.topic = \\$1 AND c.status = \\$2").
			WithArgs("t1", "NEW").
			WillReturnRows(rows)

		changes, err := repo.OpenByTopic(ctx, " t1 ")

		require.NoError(t, err)
		require.Len(t, changes, 1)
		assert.Equal(t, "t1", changes[0].Topic)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("пустой топик без запроса", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		changes, err := repo.OpenByTopic(ctx, "   ")

		require.NoError(t, err)
		assert.Empty(t, changes)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChangeRepository_OpenWithTopic(t *testing.T) {
	repo, mock := setupChangeRepo(t)

	rows := sqlmock.NewRows(changeColumns).
		AddRow(int64(2), "r1", "master", "u1", "NEW", "t1", false, 1, "c2", "c1", time.Now(), nil).
		AddRow(int64(7), "r3", "master", "u1", "NEW", "t2", true, 3, "c7", "", time.Now(), nil)
	mock.ExpectQuery("WHERE c.topic IS NOT NULL AND c.status = \\$1").
		WithArgs("NEW").
		WillReturnRows(rows)

	changes, err := repo.OpenWithTopic(context.Background())

	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, domain.ChangeID(7), changes[1].ID)
	assert.True(t, changes[1].IsPrivate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChangeRepository_SetTopic(t *testing.T) {
	ctx := context.Background()

	t.Run("успешная установка топика", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		mock.ExpectExec("UPDATE changes SET topic").
			WithArgs(int64(3), "t3", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.SetTopic(ctx, 3, "t3 ")

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("изменение не найдено", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		mock.ExpectExec("UPDATE changes SET topic").
			WithArgs(int64(9), "", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetTopic(ctx, 9, "")

		assert.True(t, errors.Is(err, repository.ErrChangeNotFound))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestChangeRepository_MarkMerged(t *testing.T) {
	ctx := context.Background()
	mergedAt := time.Now()

	t.Run("все изменения в одной транзакции", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE changes SET status").
			WithArgs(int64(1), "MERGED", mergedAt, "NEW").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE changes SET status").
			WithArgs(int64(2), "MERGED", mergedAt, "NEW").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectCommit()

		err := repo.MarkMerged(ctx, []domain.ChangeID{1, 2}, mergedAt)

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("откат при ошибке", func(t *testing.T) {
		repo, mock := setupChangeRepo(t)

		mock.ExpectBegin()
		mock.ExpectExec("UPDATE changes SET status").
			WithArgs(int64(1), "MERGED", mergedAt, "NEW").
			WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		err := repo.MarkMerged(ctx, []domain.ChangeID{1}, mergedAt)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
