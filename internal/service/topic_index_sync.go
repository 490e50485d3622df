package service

import (
	"context"

	"github.com/bagdasarian/review-submit/internal/logger"
	"github.com/bagdasarian/review-submit/internal/repository"
)

// SyncTopicIndex заносит в индекс все открытые изменения с топиком.
// Вызывается при старте, записи о закрытых изменениях отфильтровывает ChangeGraph.
func SyncTopicIndex(ctx context.Context, changeRepo repository.ChangeRepository, index repository.TopicIndex) (int, error) {
	changes, err := changeRepo.OpenWithTopic(ctx)
	if err != nil {
		return 0, err
	}

	for _, c := range changes {
		if err := index.Put(ctx, c.ID, c.Topic); err != nil {
			return 0, err
		}
	}

	logger.Info("topic index synced", "changes", len(changes))
	return len(changes), nil
}
