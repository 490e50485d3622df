package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/logger"
	"github.com/bagdasarian/review-submit/internal/metrics"
	"github.com/bagdasarian/review-submit/internal/repository"
)

const (
	labelSubmit            = "Submit"
	labelSubmitWithParents = "Submit including parents"
	labelSubmitWholeTopic  = "Submit whole topic"
	titleSubmitPatchSet    = "Submit patch set %d into %s"
	titleSubmitWithParents = "Submit all %d changes including ancestors"
	titleSubmitWholeTopic  = "Submit all %d changes of the same topic (%d changes including ancestors and other changes related by topic)"
)

type submitService struct {
	changeRepo     repository.ChangeRepository
	visibilityRepo repository.VisibilityRepository
	graph          ChangeGraph
	resolver       *Resolver
	opts           SubmitOptions
	now            func() time.Time
}

// NewSubmitService создает новый экземпляр SubmitService
func NewSubmitService(
	changeRepo repository.ChangeRepository,
	visibilityRepo repository.VisibilityRepository,
	graph ChangeGraph,
	opts SubmitOptions,
) SubmitService {
	return &submitService{
		changeRepo:     changeRepo,
		visibilityRepo: visibilityRepo,
		graph:          graph,
		resolver:       NewResolver(graph, visibilityRepo),
		opts:           opts,
		now:            time.Now,
	}
}

func (s *submitService) resolveOptions(topicClosure bool) ResolveOptions {
	policy := TopicAncestryOnly
	if s.opts.WholeTopic || topicClosure {
		policy = TopicWhole
	}
	return ResolveOptions{TopicPolicy: policy, MaxParallel: s.opts.MaxParallel}
}

// load получает пользователя и изменение; невидимое изменение считается ненайденным
func (s *submitService) load(ctx context.Context, userID string, changeID domain.ChangeID) (*domain.User, *domain.Change, error) {
	user, err := s.visibilityRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, nil, domain.NewNotFoundError("user with id " + userID)
		}
		return nil, nil, err
	}

	change, err := s.changeRepo.GetByID(ctx, changeID)
	if err != nil {
		if errors.Is(err, repository.ErrChangeNotFound) {
			return nil, nil, domain.NewNotFoundError(fmt.Sprintf("change %d", changeID))
		}
		return nil, nil, err
	}

	visible, err := s.visibilityRepo.CanSee(ctx, user, change)
	if err != nil {
		return nil, nil, err
	}
	if !visible {
		return nil, nil, domain.NewNotFoundError(fmt.Sprintf("change %d", changeID))
	}

	return user, change, nil
}

// SubmittedTogether возвращает изменения, которые будут засабмичены вместе с changeID.
// Без NON_VISIBLE_CHANGES наличие скрытых изменений - ошибка.
func (s *submitService) SubmittedTogether(
	ctx context.Context,
	userID string,
	changeID domain.ChangeID,
	options ...domain.SubmittedTogetherOption,
) (*domain.SubmittedTogether, error) {
	var topicClosure, nonVisible bool
	for _, o := range options {
		switch o {
		case domain.OptionTopicClosure:
			topicClosure = true
		case domain.OptionNonVisibleChanges:
			nonVisible = true
		default:
			return nil, domain.NewInvalidInputError(fmt.Sprintf("unknown option %q", o))
		}
	}

	user, change, err := s.load(ctx, userID, changeID)
	if err != nil {
		return nil, err
	}

	if change.Status.IsClosed() {
		return &domain.SubmittedTogether{Changes: []*domain.Change{}}, nil
	}

	set, err := s.resolver.Resolve(ctx, user, []*domain.Change{change}, s.resolveOptions(topicClosure))
	if err != nil {
		return nil, err
	}

	if set.FurtherHiddenChanges() && !nonVisible {
		return nil, domain.NewHiddenChangesError(changeID)
	}

	result := &domain.SubmittedTogether{
		Changes:           set.Changes(),
		NonVisibleChanges: set.NonVisibleCount(),
	}
	if set.Size() <= 1 && set.NonVisibleCount() == 0 {
		result.Changes = []*domain.Change{}
	}
	return result, nil
}

// Submit вычисляет набор и передает все обязательные изменения на merge одной операцией
func (s *submitService) Submit(ctx context.Context, userID string, changeID domain.ChangeID) (*domain.SubmissionSet, error) {
	set, err := s.submit(ctx, userID, changeID)
	metrics.SubmitTotal.WithLabelValues(outcomeOf(err)).Inc()
	return set, err
}

func (s *submitService) submit(ctx context.Context, userID string, changeID domain.ChangeID) (*domain.SubmissionSet, error) {
	user, change, err := s.load(ctx, userID, changeID)
	if err != nil {
		return nil, err
	}

	if change.Status.IsClosed() {
		return nil, domain.NewChangeClosedError(change.ID, change.Status)
	}

	set, err := s.resolver.Resolve(ctx, user, []*domain.Change{change}, s.resolveOptions(false))
	if err != nil {
		return nil, err
	}

	if set.FurtherHiddenChanges() {
		return nil, domain.NewHiddenChangesError(change.ID)
	}

	if projects := set.Projects(); len(projects) > 1 {
		metrics.CrossProjectSubmissions.Inc()
		logger.Info("cross-project submission",
			"change", change.ID,
			"projects", projects,
			"changes", set.IDs(),
		)
	}

	if err := s.changeRepo.MarkMerged(ctx, set.IDs(), s.now()); err != nil {
		return nil, err
	}

	logger.Info("changes submitted", "change", change.ID, "user", user.ID, "changes", set.IDs())
	return set, nil
}

// DescribeSubmit возвращает описание кнопки submit; для закрытого изменения - nil
func (s *submitService) DescribeSubmit(ctx context.Context, userID string, changeID domain.ChangeID) (*domain.SubmitAction, error) {
	user, change, err := s.load(ctx, userID, changeID)
	if err != nil {
		return nil, err
	}

	if change.Status.IsClosed() {
		return nil, nil
	}

	set, err := s.resolver.Resolve(ctx, user, []*domain.Change{change}, s.resolveOptions(false))
	if err != nil {
		return nil, err
	}

	topicSize := 0
	if change.HasTopic() {
		partners, err := s.graph.TopicPartners(ctx, change.Topic)
		if err != nil {
			return nil, domain.NewTopicUnavailableError(change.ID, change.Topic, err)
		}
		topicSize = len(partners)
	}

	action := &domain.SubmitAction{
		Label:   labelSubmit,
		Title:   fmt.Sprintf(titleSubmitPatchSet, change.CurrentPatchSet.Number, change.Branch),
		Enabled: !set.FurtherHiddenChanges(),
	}

	switch {
	case s.opts.WholeTopic && topicSize > 1:
		action.Label = labelSubmitWholeTopic
		action.Title = fmt.Sprintf(titleSubmitWholeTopic, topicSize, set.Size())
	case set.Size() > 1:
		action.Label = labelSubmitWithParents
		action.Title = fmt.Sprintf(titleSubmitWithParents, set.Size())
	}

	return action, nil
}
