package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/logger"
	"github.com/bagdasarian/review-submit/internal/repository"
)

type changeService struct {
	changeRepo     repository.ChangeRepository
	visibilityRepo repository.VisibilityRepository
	topicIndex     repository.TopicIndex
}

// NewChangeService создает новый экземпляр ChangeService; topicIndex может быть nil
func NewChangeService(
	changeRepo repository.ChangeRepository,
	visibilityRepo repository.VisibilityRepository,
	topicIndex repository.TopicIndex,
) ChangeService {
	return &changeService{
		changeRepo:     changeRepo,
		visibilityRepo: visibilityRepo,
		topicIndex:     topicIndex,
	}
}

// SetTopic меняет топик открытого изменения; пустая строка снимает топик.
// Менять топик может владелец или администратор.
func (s *changeService) SetTopic(ctx context.Context, userID string, changeID domain.ChangeID, topic string) (*domain.Change, error) {
	user, err := s.visibilityRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domain.NewNotFoundError("user with id " + userID)
		}
		return nil, err
	}

	change, err := s.changeRepo.GetByID(ctx, changeID)
	if err != nil {
		if errors.Is(err, repository.ErrChangeNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("change %d", changeID))
		}
		return nil, err
	}

	if !user.IsAdmin && change.OwnerID != user.ID {
		visible, err := s.visibilityRepo.CanSee(ctx, user, change)
		if err != nil {
			return nil, err
		}
		if !visible {
			return nil, domain.NewNotFoundError(fmt.Sprintf("change %d", changeID))
		}
		return nil, domain.ErrForbidden
	}

	if change.Status.IsClosed() {
		return nil, domain.NewChangeClosedError(change.ID, change.Status)
	}

	topic = domain.NormalizeTopic(topic)
	previous := domain.NormalizeTopic(change.Topic)

	// индекс пишется до репозитория и откатывается, если запись в репозиторий не удалась
	if err := s.indexTopic(ctx, changeID, topic); err != nil {
		return nil, err
	}

	if err := s.changeRepo.SetTopic(ctx, changeID, topic); err != nil {
		if restoreErr := s.indexTopic(ctx, changeID, previous); restoreErr != nil {
			logger.Warn("failed to restore topic index", "change", changeID, "topic", previous, "error", restoreErr)
		}
		if errors.Is(err, repository.ErrChangeNotFound) {
			return nil, domain.NewNotFoundError(fmt.Sprintf("change %d", changeID))
		}
		return nil, err
	}

	logger.Info("topic updated", "change", changeID, "user", user.ID, "topic", topic)

	return s.changeRepo.GetByID(ctx, changeID)
}

func (s *changeService) indexTopic(ctx context.Context, changeID domain.ChangeID, topic string) error {
	if s.topicIndex == nil {
		return nil
	}
	if topic == "" {
		return s.topicIndex.Remove(ctx, changeID)
	}
	return s.topicIndex.Put(ctx, changeID, topic)
}
