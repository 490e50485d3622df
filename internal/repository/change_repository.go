package repository

import (
	"context"
	"time"

	"github.com/bagdasarian/review-submit/internal/domain"
)

type ChangeRepository interface {
	GetByID(ctx context.Context, id domain.ChangeID) (*domain.Change, error)
	GetByIDs(ctx context.Context, ids []domain.ChangeID) ([]*domain.Change, error)
	ParentChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error)
	ChildChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error)
	OpenByTopic(ctx context.Context, topic string) ([]*domain.Change, error)
	OpenWithTopic(ctx context.Context) ([]*domain.Change, error)
	SetTopic(ctx context.Context, id domain.ChangeID, topic string) error
	MarkMerged(ctx context.Context, ids []domain.ChangeID, mergedAt time.Time) error
}
