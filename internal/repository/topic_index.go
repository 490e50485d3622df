package repository

import (
	"context"

	"github.com/bagdasarian/review-submit/internal/domain"
)

// TopicIndex - индекс топик -> изменения, может содержать уже закрытые изменения
type TopicIndex interface {
	ChangesByTopic(ctx context.Context, topic string) ([]domain.ChangeID, error)
	Put(ctx context.Context, id domain.ChangeID, topic string) error
	Remove(ctx context.Context, id domain.ChangeID) error
}
