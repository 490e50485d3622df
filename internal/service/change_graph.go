package service

import (
	"context"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/logger"
	"github.com/bagdasarian/review-submit/internal/repository"
)

// ChangeGraph отдает непосредственные зависимости изменения: родителей по коммитам,
// потомков в том же проекте и партнеров по топику во всех проектах.
type ChangeGraph interface {
	ParentChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error)
	ChildChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error)
	TopicPartners(ctx context.Context, topic string) ([]*domain.Change, error)
}

type changeGraph struct {
	changeRepo repository.ChangeRepository
	topicIndex repository.TopicIndex
}

// NewChangeGraph создает граф изменений; topicIndex может быть nil
func NewChangeGraph(changeRepo repository.ChangeRepository, topicIndex repository.TopicIndex) ChangeGraph {
	return &changeGraph{
		changeRepo: changeRepo,
		topicIndex: topicIndex,
	}
}

func (g *changeGraph) ParentChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error) {
	return g.changeRepo.ParentChanges(ctx, change)
}

func (g *changeGraph) ChildChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error) {
	return g.changeRepo.ChildChanges(ctx, change)
}

// TopicPartners возвращает открытые изменения топика. Состав топика берется из репозитория,
// индекс только сверяется с ним: пропущенные записи дописываются, устаревшие убираются.
func (g *changeGraph) TopicPartners(ctx context.Context, topic string) ([]*domain.Change, error) {
	topic = domain.NormalizeTopic(topic)
	if topic == "" {
		return nil, nil
	}

	partners, err := g.changeRepo.OpenByTopic(ctx, topic)
	if err != nil {
		return nil, err
	}

	if g.topicIndex != nil {
		g.reconcileIndex(ctx, topic, partners)
	}
	return partners, nil
}

// reconcileIndex приводит запись топика в индексе к составу partners.
// Ошибки индекса не влияют на результат поиска и только логируются.
func (g *changeGraph) reconcileIndex(ctx context.Context, topic string, partners []*domain.Change) {
	indexed, err := g.topicIndex.ChangesByTopic(ctx, topic)
	if err != nil {
		logger.Warn("topic index unavailable", "topic", topic, "error", err)
		return
	}

	open := make(map[domain.ChangeID]bool, len(partners))
	for _, c := range partners {
		open[c.ID] = true
	}

	var stale []domain.ChangeID
	known := make(map[domain.ChangeID]bool, len(indexed))
	for _, id := range indexed {
		known[id] = true
		if !open[id] {
			stale = append(stale, id)
		}
	}

	for _, c := range partners {
		if known[c.ID] {
			continue
		}
		logger.Warn("topic index is missing change", "topic", topic, "change", c.ID)
		if err := g.topicIndex.Put(ctx, c.ID, topic); err != nil {
			logger.Warn("failed to update topic index", "topic", topic, "change", c.ID, "error", err)
			return
		}
	}

	if len(stale) == 0 {
		return
	}
	changes, err := g.changeRepo.GetByIDs(ctx, stale)
	if err != nil {
		logger.Warn("failed to load stale topic index entries", "topic", topic, "error", err)
		return
	}
	current := make(map[domain.ChangeID]string, len(changes))
	for _, c := range changes {
		if c.IsNew() {
			current[c.ID] = domain.NormalizeTopic(c.Topic)
		}
	}
	for _, id := range stale {
		if next := current[id]; next != "" {
			err = g.topicIndex.Put(ctx, id, next)
		} else {
			err = g.topicIndex.Remove(ctx, id)
		}
		if err != nil {
			logger.Warn("failed to update topic index", "topic", topic, "change", id, "error", err)
			return
		}
	}
}
