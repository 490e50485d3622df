package redisindex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/redis/go-redis/v9"
)

// TopicIndex хранит принадлежность изменений топикам в Redis:
// <prefix>:topic:<topic> - множество ID, <prefix>:change_topic:<id> - текущий топик изменения.
type TopicIndex struct {
	rdb       redis.UniversalClient
	keyPrefix string
}

func NewTopicIndex(rdb redis.UniversalClient, keyPrefix string) *TopicIndex {
	return &TopicIndex{rdb: rdb, keyPrefix: keyPrefix}
}

func (i *TopicIndex) key(parts ...string) string {
	if i.keyPrefix == "" {
		return fmt.Sprintf("review:%s", strings.Join(parts, ":"))
	}
	return fmt.Sprintf("%s:%s", i.keyPrefix, strings.Join(parts, ":"))
}

func changeKey(id domain.ChangeID) string {
	return strconv.FormatInt(int64(id), 10)
}

func (i *TopicIndex) ChangesByTopic(ctx context.Context, topic string) ([]domain.ChangeID, error) {
	topic = domain.NormalizeTopic(topic)
	if topic == "" {
		return nil, nil
	}

	members, err := i.rdb.SMembers(ctx, i.key("topic", topic)).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]domain.ChangeID, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("topic %q: malformed change id %q: %w", topic, m, err)
		}
		ids = append(ids, domain.ChangeID(id))
	}
	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	return ids, nil
}

// maxTxAttempts - число попыток оптимистичной транзакции при конкурентной смене топика
const maxTxAttempts = 5

// Put переносит изменение в новый топик; пустой топик удаляет его из индекса.
// Текущий топик читается под WATCH, конкурентный перенос приводит к повтору.
func (i *TopicIndex) Put(ctx context.Context, id domain.ChangeID, topic string) error {
	topic = domain.NormalizeTopic(topic)
	member := changeKey(id)
	currentKey := i.key("change_topic", member)

	for attempt := 1; ; attempt++ {
		err := i.rdb.Watch(ctx, func(tx *redis.Tx) error {
			old, err := tx.Get(ctx, currentKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				if old != "" && old != topic {
					pipe.SRem(ctx, i.key("topic", old), member)
				}
				if topic == "" {
					pipe.Del(ctx, currentKey)
				} else {
					pipe.SAdd(ctx, i.key("topic", topic), member)
					pipe.Set(ctx, currentKey, topic, 0)
				}
				return nil
			})
			return err
		}, currentKey)

		if errors.Is(err, redis.TxFailedErr) && attempt < maxTxAttempts {
			continue
		}
		return err
	}
}

func (i *TopicIndex) Remove(ctx context.Context, id domain.ChangeID) error {
	return i.Put(ctx, id, "")
}
