package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/repository"
)

type visibilityRepository struct {
	executor DBExecutor
}

func NewVisibilityRepository(db *sql.DB) *visibilityRepository {
	return &visibilityRepository{executor: db}
}

func (r *visibilityRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user := &domain.User{}
	err := r.executor.QueryRowContext(ctx, "SELECT id, name, is_admin FROM users WHERE id = $1", id).
		Scan(&user.ID, &user.Username, &user.IsAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CanSee: админ видит все, владелец - свои изменения, приватные изменения видны только им.
// Остальным нужен доступ на чтение проекта через группу.
func (r *visibilityRepository) CanSee(ctx context.Context, user *domain.User, change *domain.Change) (bool, error) {
	if user.IsAdmin || change.OwnerID == user.ID {
		return true, nil
	}
	if change.IsPrivate {
		return false, nil
	}

	query := `
		SELECT EXISTS (
			SELECT 1 FROM project_access pa
			WHERE pa.project = $1
				AND (pa.group_name = $2
					OR pa.group_name IN (SELECT gm.group_name FROM group_members gm WHERE gm.user_id = $3))
		)
	`

	var allowed bool
	err := r.executor.QueryRowContext(ctx, query, change.Project, domain.AnonymousGroup, user.ID).Scan(&allowed)
	if err != nil {
		return false, err
	}
	return allowed, nil
}
