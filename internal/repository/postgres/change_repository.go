package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/repository"
)

type changeRepository struct {
	db       *sql.DB
	executor DBExecutor
}

func NewChangeRepository(db *sql.DB) *changeRepository {
	return &changeRepository{db: db, executor: db}
}

// changeSelect выбирает изменение вместе с текущим патчсетом и его родительскими коммитами
const changeSelect = `
	SELECT c.id, c.project, c.branch, c.owner_id, c.status, COALESCE(c.topic, ''), c.is_private,
		ps.number, ps.commit_id,
		(SELECT COALESCE(string_agg(cp.parent_commit_id, ',' ORDER BY cp.position), '')
			FROM commit_parents cp
			WHERE cp.project = c.project AND cp.commit_id = ps.commit_id),
		c.created_at, c.updated_at
	FROM changes c
	JOIN patch_sets ps ON ps.change_id = c.id AND ps.number = c.current_patch_set
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChange(row rowScanner) (*domain.Change, error) {
	c := &domain.Change{}
	var status, parents string
	var updatedAt sql.NullTime
	err := row.Scan(
		&c.ID,
		&c.Project,
		&c.Branch,
		&c.OwnerID,
		&status,
		&c.Topic,
		&c.IsPrivate,
		&c.CurrentPatchSet.Number,
		&c.CurrentPatchSet.CommitID,
		&parents,
		&c.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = domain.Status(status)
	if parents != "" {
		c.CurrentPatchSet.ParentIDs = strings.Split(parents, ",")
	}
	if updatedAt.Valid {
		c.UpdatedAt = &updatedAt.Time
	}
	return c, nil
}

func (r *changeRepository) queryChanges(ctx context.Context, query string, args ...any) ([]*domain.Change, error) {
	rows, err := r.executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []*domain.Change
	for rows.Next() {
		c, err := scanChange(rows)
		if err != nil {
			return nil, err
		}
		changes = append(changes, c)
	}

	return changes, rows.Err()
}

func (r *changeRepository) GetByID(ctx context.Context, id domain.ChangeID) (*domain.Change, error) {
	c, err := scanChange(r.executor.QueryRowContext(ctx, changeSelect+" WHERE c.id = $1", int64(id)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrChangeNotFound
		}
		return nil, err
	}
	return c, nil
}

func (r *changeRepository) GetByIDs(ctx context.Context, ids []domain.ChangeID) ([]*domain.Change, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, 0, len(ids))
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+1))
		args = append(args, int64(id))
	}

	query := changeSelect + " WHERE c.id IN (" + strings.Join(placeholders, ", ") + ") ORDER BY c.id"
	return r.queryChanges(ctx, query, args...)
}

// ParentChanges возвращает изменения той же ветки проекта, патчсет которых является прямым родителем текущего коммита
func (r *changeRepository) ParentChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error) {
	query := changeSelect + `
		WHERE c.id IN (
			SELECT anyps.change_id
			FROM commit_parents cp
			JOIN patch_sets anyps ON anyps.commit_id = cp.parent_commit_id
			JOIN changes pc ON pc.id = anyps.change_id AND pc.project = cp.project AND pc.branch = $3
			WHERE cp.project = $1 AND cp.commit_id = $2
		)
		ORDER BY c.id
	`
	return r.queryChanges(ctx, query, change.Project, change.CurrentPatchSet.CommitID, change.Branch)
}

// ChildChanges возвращает изменения той же ветки проекта, текущий коммит которых основан на текущем коммите change
func (r *changeRepository) ChildChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error) {
	query := changeSelect + `
		WHERE c.project = $1 AND c.branch = $3 AND EXISTS (
			SELECT 1 FROM commit_parents cp
			WHERE cp.project = c.project AND cp.commit_id = ps.commit_id AND cp.parent_commit_id = $2
		)
		ORDER BY c.id
	`
	return r.queryChanges(ctx, query, change.Project, change.CurrentPatchSet.CommitID, change.Branch)
}

func (r *changeRepository) OpenByTopic(ctx context.Context, topic string) ([]*domain.Change, error) {
	topic = domain.NormalizeTopic(topic)
	if topic == "" {
		return nil, nil
	}

	query := changeSelect + " WHERE c.topic = $1 AND c.status = $2 ORDER BY c.id"
	return r.queryChanges(ctx, query, topic, string(domain.StatusNew))
}

// OpenWithTopic возвращает все открытые изменения, у которых задан топик
func (r *changeRepository) OpenWithTopic(ctx context.Context) ([]*domain.Change, error) {
	query := changeSelect + " WHERE c.topic IS NOT NULL AND c.status = $1 ORDER BY c.id"
	return r.queryChanges(ctx, query, string(domain.StatusNew))
}

func (r *changeRepository) SetTopic(ctx context.Context, id domain.ChangeID, topic string) error {
	result, err := r.executor.ExecContext(
		ctx,
		"UPDATE changes SET topic = NULLIF($2, ''), updated_at = $3 WHERE id = $1",
		int64(id),
		domain.NormalizeTopic(topic),
		time.Now(),
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrChangeNotFound
	}

	return nil
}

// MarkMerged переводит все изменения в MERGED одной транзакцией; уже закрытые не трогает
func (r *changeRepository) MarkMerged(ctx context.Context, ids []domain.ChangeID, mergedAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txRepo := &changeRepository{db: r.db, executor: tx}
	for _, id := range ids {
		if err := txRepo.markMerged(ctx, id, mergedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *changeRepository) markMerged(ctx context.Context, id domain.ChangeID, mergedAt time.Time) error {
	_, err := r.executor.ExecContext(
		ctx,
		"UPDATE changes SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4",
		int64(id),
		string(domain.StatusMerged),
		mergedAt,
		string(domain.StatusNew),
	)
	return err
}
