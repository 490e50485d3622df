package service

import (
	"context"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/repository"
)

// visibilityOracle кэширует ответы на время одного разрешения набора
type visibilityOracle struct {
	repo  repository.VisibilityRepository
	user  *domain.User
	cache map[domain.ChangeID]bool
}

func newVisibilityOracle(repo repository.VisibilityRepository, user *domain.User) *visibilityOracle {
	return &visibilityOracle{
		repo:  repo,
		user:  user,
		cache: make(map[domain.ChangeID]bool),
	}
}

func (o *visibilityOracle) canSee(ctx context.Context, change *domain.Change) (bool, error) {
	if visible, ok := o.cache[change.ID]; ok {
		return visible, nil
	}

	visible, err := o.repo.CanSee(ctx, o.user, change)
	if err != nil {
		return false, domain.NewRepositoryUnavailableError(change.ID, change.Project, err)
	}
	o.cache[change.ID] = visible
	return visible, nil
}
