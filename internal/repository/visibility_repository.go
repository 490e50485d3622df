package repository

import (
	"context"

	"github.com/bagdasarian/review-submit/internal/domain"
)

type VisibilityRepository interface {
	GetUser(ctx context.Context, id string) (*domain.User, error)
	CanSee(ctx context.Context, user *domain.User, change *domain.Change) (bool, error)
}
