package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/logger"
	"github.com/bagdasarian/review-submit/internal/metrics"
	"github.com/bagdasarian/review-submit/internal/repository"
	"golang.org/x/sync/errgroup"
)

// TopicPolicy определяет, обязательны ли для submit партнеры по топику
type TopicPolicy int

const (
	// TopicWhole - весь топик (вместе с предками и их топиками) сабмитится вместе
	TopicWhole TopicPolicy = iota
	// TopicAncestryOnly - партнер по топику обязателен, только если он нужен по цепочке коммитов
	TopicAncestryOnly
)

// EdgeKind - тип ребра, по которому изменение попало во фронт обхода
type EdgeKind int

const (
	EdgeSeed EdgeKind = iota
	EdgeParent
	EdgeTopic
)

// mandatory: невидимое изменение на таком ребре делает submit невозможным
func (k EdgeKind) mandatory() bool {
	return k == EdgeSeed || k == EdgeParent
}

type ResolveOptions struct {
	TopicPolicy TopicPolicy
	// MaxParallel ограничивает число одновременных запросов к хранилищу, 0 - без ограничений
	MaxParallel int
}

// Resolver вычисляет набор изменений, которые должны быть засабмичены вместе
type Resolver struct {
	graph      ChangeGraph
	visibility repository.VisibilityRepository
}

func NewResolver(graph ChangeGraph, visibility repository.VisibilityRepository) *Resolver {
	return &Resolver{
		graph:      graph,
		visibility: visibility,
	}
}

type edge struct {
	kind   EdgeKind
	change *domain.Change
}

type frontier map[domain.ChangeID]edge

// resolution - состояние одного вызова Resolve, между вызовами не переиспользуется
type resolution struct {
	graph  ChangeGraph
	opts   ResolveOptions
	oracle *visibilityOracle

	required map[domain.ChangeID]*domain.Change
	visited  map[domain.ChangeID]bool
	// невидимые изменения, найденные по ребрам топика
	hidden map[domain.ChangeID]bool

	topicsSeen   map[string]bool
	topicRelated map[domain.ChangeID]*domain.Change
}

// Resolve строит замыкание от seeds по предкам и топикам.
// При ошибке набор не возвращается.
func (r *Resolver) Resolve(ctx context.Context, user *domain.User, seeds []*domain.Change, opts ResolveOptions) (*domain.SubmissionSet, error) {
	if user == nil || len(seeds) == 0 {
		return nil, domain.ErrInvalidInput
	}

	start := time.Now()
	set, err := r.resolve(ctx, user, seeds, opts)
	metrics.ResolveDuration.Observe(time.Since(start).Seconds())
	metrics.ResolveTotal.WithLabelValues(outcomeOf(err)).Inc()
	if err != nil {
		return nil, err
	}
	metrics.SubmissionSetSize.Observe(float64(set.Size()))
	return set, nil
}

func (r *Resolver) resolve(ctx context.Context, user *domain.User, seeds []*domain.Change, opts ResolveOptions) (*domain.SubmissionSet, error) {
	res := &resolution{
		graph:        r.graph,
		opts:         opts,
		oracle:       newVisibilityOracle(r.visibility, user),
		required:     make(map[domain.ChangeID]*domain.Change),
		visited:      make(map[domain.ChangeID]bool),
		hidden:       make(map[domain.ChangeID]bool),
		topicsSeen:   make(map[string]bool),
		topicRelated: make(map[domain.ChangeID]*domain.Change),
	}

	current := make(frontier)
	for _, s := range seeds {
		res.push(current, edge{kind: EdgeSeed, change: s})
	}

	iterations := 0
	for len(current) > 0 {
		iterations++
		admitted, err := res.admit(ctx, current)
		if err != nil {
			return nil, err
		}
		current, err = res.expand(ctx, admitted)
		if err != nil {
			return nil, err
		}
	}

	metrics.ResolveIterations.Observe(float64(iterations))

	related, err := res.collectRelated(ctx)
	if err != nil {
		return nil, err
	}

	required := make([]*domain.Change, 0, len(res.required))
	for _, c := range res.required {
		required = append(required, c)
	}
	set := domain.NewSubmissionSet(required, related, len(res.hidden))

	logger.Debug("submission set resolved",
		"user", user.ID,
		"seeds", changeIDs(seeds),
		"required", set.IDs(),
		"related", set.RelatedIDs(),
		"non_visible", set.NonVisibleCount(),
		"iterations", iterations,
	)
	return set, nil
}

// push добавляет ребро во фронт; обязательное ребро вытесняет необязательное
func (res *resolution) push(f frontier, e edge) {
	id := e.change.ID
	if res.visited[id] && !(res.hidden[id] && e.kind.mandatory()) {
		return
	}
	if existing, ok := f[id]; ok && (existing.kind.mandatory() || !e.kind.mandatory()) {
		return
	}
	f[id] = e
}

// admit пропускает изменения фронта через фильтры статуса и видимости
func (res *resolution) admit(ctx context.Context, f frontier) ([]*domain.Change, error) {
	ids := make([]domain.ChangeID, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	admitted := make([]*domain.Change, 0, len(ids))
	for _, id := range ids {
		e := f[id]
		if res.hidden[id] {
			if e.kind.mandatory() {
				return nil, domain.NewRequiredChangeInvisibleError(id)
			}
			continue
		}
		if res.visited[id] {
			continue
		}
		res.visited[id] = true

		if e.change.Status.IsClosed() {
			continue
		}

		visible, err := res.oracle.canSee(ctx, e.change)
		if err != nil {
			return nil, err
		}
		if !visible {
			if e.kind.mandatory() {
				return nil, domain.NewRequiredChangeInvisibleError(id)
			}
			res.hidden[id] = true
			continue
		}

		res.required[id] = e.change
		admitted = append(admitted, e.change)
	}
	return admitted, nil
}

// expand запрашивает соседей только что добавленных изменений и формирует следующий фронт
func (res *resolution) expand(ctx context.Context, admitted []*domain.Change) (frontier, error) {
	next := make(frontier)
	if len(admitted) == 0 {
		return next, nil
	}

	parents, partners, err := res.lookup(ctx, admitted, res.graph.ParentChanges, res.newTopics(admitted))
	if err != nil {
		return nil, err
	}

	for _, p := range parents {
		res.push(next, edge{kind: EdgeParent, change: p})
	}
	for _, p := range partners {
		if res.opts.TopicPolicy == TopicWhole {
			res.push(next, edge{kind: EdgeTopic, change: p})
			continue
		}
		if _, ok := res.topicRelated[p.ID]; !ok {
			res.topicRelated[p.ID] = p
		}
	}
	return next, nil
}

// newTopics возвращает еще не запрошенные топики с изменением, через которое топик найден
func (res *resolution) newTopics(changes []*domain.Change) map[string]*domain.Change {
	topics := make(map[string]*domain.Change)
	for _, c := range changes {
		topic := domain.NormalizeTopic(c.Topic)
		if topic == "" || res.topicsSeen[topic] {
			continue
		}
		res.topicsSeen[topic] = true
		topics[topic] = c
	}
	return topics
}

type lookupFunc func(ctx context.Context, change *domain.Change) ([]*domain.Change, error)

// lookup выполняет запросы по проектам параллельно, запросы топиков - отдельной горутиной.
// Результаты доступны только после завершения всех веток.
func (res *resolution) lookup(
	ctx context.Context,
	changes []*domain.Change,
	byProject lookupFunc,
	topics map[string]*domain.Change,
) ([]*domain.Change, []*domain.Change, error) {
	groups := partitionByProject(changes)
	projects := sortedProjects(groups)
	found := make([][]*domain.Change, len(projects))
	var partners []*domain.Change

	g, gctx := errgroup.WithContext(ctx)
	if res.opts.MaxParallel > 0 {
		g.SetLimit(res.opts.MaxParallel)
	}

	for i, project := range projects {
		i, bucket := i, groups[project]
		g.Go(func() error {
			var out []*domain.Change
			for _, c := range bucket {
				neighbours, err := byProject(gctx, c)
				if err != nil {
					return domain.NewRepositoryUnavailableError(c.ID, c.Project, err)
				}
				out = append(out, neighbours...)
			}
			found[i] = out
			return nil
		})
	}

	if len(topics) > 0 {
		names := make([]string, 0, len(topics))
		for t := range topics {
			names = append(names, t)
		}
		sort.Strings(names)

		g.Go(func() error {
			for _, t := range names {
				changes, err := res.graph.TopicPartners(gctx, t)
				if err != nil {
					return domain.NewTopicUnavailableError(topics[t].ID, t, err)
				}
				partners = append(partners, changes...)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var all []*domain.Change
	for _, out := range found {
		all = append(all, out...)
	}
	return all, partners, nil
}

// collectRelated собирает необязательные изменения: партнеров по топику (в режиме TopicAncestryOnly)
// и открытых видимых потомков обязательных изменений
func (res *resolution) collectRelated(ctx context.Context) ([]*domain.Change, error) {
	seen := make(map[domain.ChangeID]bool, len(res.required))
	level := make([]*domain.Change, 0, len(res.required))
	for id, c := range res.required {
		seen[id] = true
		level = append(level, c)
	}

	var related []*domain.Change
	admit := func(c *domain.Change) (bool, error) {
		if seen[c.ID] {
			return false, nil
		}
		seen[c.ID] = true
		if c.Status.IsClosed() {
			return false, nil
		}
		visible, err := res.oracle.canSee(ctx, c)
		if err != nil || !visible {
			return false, err
		}
		related = append(related, c)
		return true, nil
	}

	candidates := make([]*domain.Change, 0, len(res.topicRelated))
	for _, c := range res.topicRelated {
		candidates = append(candidates, c)
	}
	sortByID(candidates)
	for _, c := range candidates {
		ok, err := admit(c)
		if err != nil {
			return nil, err
		}
		if ok {
			level = append(level, c)
		}
	}

	for len(level) > 0 {
		sortByID(level)
		children, _, err := res.lookup(ctx, level, res.graph.ChildChanges, nil)
		if err != nil {
			return nil, err
		}

		var next []*domain.Change
		for _, c := range children {
			ok, err := admit(c)
			if err != nil {
				return nil, err
			}
			if ok {
				next = append(next, c)
			}
		}
		level = next
	}

	return related, nil
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, domain.ErrRequiredChangeInvisible):
		return metrics.OutcomeInvisible
	case errors.Is(err, domain.ErrRepositoryUnavailable):
		return metrics.OutcomeUnavailable
	case errors.Is(err, domain.ErrChangeClosed):
		return metrics.OutcomeClosed
	default:
		return metrics.OutcomeError
	}
}

func sortByID(changes []*domain.Change) {
	sort.Slice(changes, func(i, j int) bool { return changes[i].ID < changes[j].ID })
}

func changeIDs(changes []*domain.Change) []domain.ChangeID {
	ids := make([]domain.ChangeID, 0, len(changes))
	for _, c := range changes {
		ids = append(ids, c.ID)
	}
	return ids
}
