package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/bagdasarian/review-submit/internal/repository"
)

type commitKey struct {
	project  string
	branch   string
	commitID string
}

// Store хранит изменения, патчсеты и права доступа в памяти процесса.
// Безопасен для конкурентного использования.
type Store struct {
	mu sync.RWMutex

	nextID    domain.ChangeID
	changes   map[domain.ChangeID]*domain.Change
	patchSets map[domain.ChangeID][]domain.PatchSet
	// (проект, ветка, commitID любого патчсета) -> изменение
	commits map[commitKey]domain.ChangeID

	users          map[string]*domain.User
	groupMembers   map[string]map[string]bool // group -> {userID: true}
	projectReaders map[string]map[string]bool // project -> {group: true}

	unavailable map[string]error // project -> ошибка чтения
}

func NewStore() *Store {
	return &Store{
		nextID:         1,
		changes:        make(map[domain.ChangeID]*domain.Change),
		patchSets:      make(map[domain.ChangeID][]domain.PatchSet),
		commits:        make(map[commitKey]domain.ChangeID),
		users:          make(map[string]*domain.User),
		groupMembers:   make(map[string]map[string]bool),
		projectReaders: make(map[string]map[string]bool),
		unavailable:    make(map[string]error),
	}
}

func cloneChange(c *domain.Change) *domain.Change {
	out := *c
	out.CurrentPatchSet.ParentIDs = append([]string(nil), c.CurrentPatchSet.ParentIDs...)
	return &out
}

// CreateChange сохраняет изменение; если ID не задан, выдается следующий по порядку.
// CurrentPatchSet становится первым патчсетом изменения.
func (s *Store) CreateChange(change *domain.Change) *domain.Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	if change.ID == 0 {
		change.ID = s.nextID
	}
	if change.ID >= s.nextID {
		s.nextID = change.ID + 1
	}
	if change.Status == "" {
		change.Status = domain.StatusNew
	}
	if change.CurrentPatchSet.Number == 0 {
		change.CurrentPatchSet.Number = 1
	}
	if change.CreatedAt.IsZero() {
		change.CreatedAt = time.Now()
	}

	stored := cloneChange(change)
	s.changes[stored.ID] = stored
	s.patchSets[stored.ID] = append(s.patchSets[stored.ID], stored.CurrentPatchSet)
	s.commits[commitKey{stored.Project, stored.Branch, stored.CurrentPatchSet.CommitID}] = stored.ID

	return cloneChange(stored)
}

// AddPatchSet добавляет новую ревизию и продвигает текущий патчсет
func (s *Store) AddPatchSet(id domain.ChangeID, commitID string, parentIDs ...string) (domain.PatchSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.changes[id]
	if !ok {
		return domain.PatchSet{}, repository.ErrChangeNotFound
	}

	ps := domain.PatchSet{
		Number:    c.CurrentPatchSet.Number + 1,
		CommitID:  commitID,
		ParentIDs: append([]string(nil), parentIDs...),
	}
	s.patchSets[id] = append(s.patchSets[id], ps)
	s.commits[commitKey{c.Project, c.Branch, commitID}] = id
	c.CurrentPatchSet = ps

	return ps, nil
}

func (s *Store) SetStatus(id domain.ChangeID, status domain.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.changes[id]
	if !ok {
		return repository.ErrChangeNotFound
	}
	if c.Status.IsClosed() {
		return nil
	}
	c.Status = status
	return nil
}

func (s *Store) SetPrivate(id domain.ChangeID, private bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.changes[id]
	if !ok {
		return repository.ErrChangeNotFound
	}
	c.IsPrivate = private
	return nil
}

func (s *Store) AddUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	s.users[u.ID] = &u
}

func (s *Store) AddMember(group, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.groupMembers[group] == nil {
		s.groupMembers[group] = make(map[string]bool)
	}
	s.groupMembers[group][userID] = true
}

// GrantRead выдает группе право чтения проекта
func (s *Store) GrantRead(project, group string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.projectReaders[project] == nil {
		s.projectReaders[project] = make(map[string]bool)
	}
	s.projectReaders[project][group] = true
}

// SetUnavailable делает чтение проекта невозможным; nil снимает ошибку
func (s *Store) SetUnavailable(project string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err == nil {
		delete(s.unavailable, project)
		return
	}
	s.unavailable[project] = err
}

func (s *Store) GetByID(ctx context.Context, id domain.ChangeID) (*domain.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.changes[id]
	if !ok {
		return nil, repository.ErrChangeNotFound
	}
	if err := s.unavailable[c.Project]; err != nil {
		return nil, err
	}
	return cloneChange(c), nil
}

func (s *Store) GetByIDs(ctx context.Context, ids []domain.ChangeID) ([]*domain.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Change
	for _, id := range ids {
		c, ok := s.changes[id]
		if !ok {
			continue
		}
		if err := s.unavailable[c.Project]; err != nil {
			return nil, err
		}
		out = append(out, cloneChange(c))
	}
	sortChanges(out)
	return out, nil
}

func (s *Store) ParentChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.unavailable[change.Project]; err != nil {
		return nil, err
	}

	var out []*domain.Change
	seen := make(map[domain.ChangeID]bool)
	for _, parent := range change.CurrentPatchSet.ParentIDs {
		id, ok := s.commits[commitKey{change.Project, change.Branch, parent}]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, cloneChange(s.changes[id]))
	}
	sortChanges(out)
	return out, nil
}

func (s *Store) ChildChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.unavailable[change.Project]; err != nil {
		return nil, err
	}

	var out []*domain.Change
	for _, c := range s.changes {
		if c.Project != change.Project || c.Branch != change.Branch {
			continue
		}
		for _, parent := range c.CurrentPatchSet.ParentIDs {
			if parent == change.CurrentPatchSet.CommitID {
				out = append(out, cloneChange(c))
				break
			}
		}
	}
	sortChanges(out)
	return out, nil
}

func (s *Store) OpenByTopic(ctx context.Context, topic string) ([]*domain.Change, error) {
	topic = domain.NormalizeTopic(topic)
	if topic == "" {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Change
	for _, c := range s.changes {
		if !c.IsNew() || domain.NormalizeTopic(c.Topic) != topic {
			continue
		}
		if err := s.unavailable[c.Project]; err != nil {
			return nil, err
		}
		out = append(out, cloneChange(c))
	}
	sortChanges(out)
	return out, nil
}

func (s *Store) OpenWithTopic(ctx context.Context) ([]*domain.Change, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.Change
	for _, c := range s.changes {
		if c.IsNew() && c.HasTopic() {
			out = append(out, cloneChange(c))
		}
	}
	sortChanges(out)
	return out, nil
}

func (s *Store) SetTopic(ctx context.Context, id domain.ChangeID, topic string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.changes[id]
	if !ok {
		return repository.ErrChangeNotFound
	}
	now := time.Now()
	c.Topic = domain.NormalizeTopic(topic)
	c.UpdatedAt = &now
	return nil
}

func (s *Store) MarkMerged(ctx context.Context, ids []domain.ChangeID, mergedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range ids {
		if _, ok := s.changes[id]; !ok {
			return repository.ErrChangeNotFound
		}
	}
	for _, id := range ids {
		c := s.changes[id]
		if !c.IsNew() {
			continue
		}
		at := mergedAt
		c.Status = domain.StatusMerged
		c.UpdatedAt = &at
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (s *Store) CanSee(ctx context.Context, user *domain.User, change *domain.Change) (bool, error) {
	if user.IsAdmin || change.OwnerID == user.ID {
		return true, nil
	}
	if change.IsPrivate {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for group := range s.projectReaders[change.Project] {
		if group == domain.AnonymousGroup || s.groupMembers[group][user.ID] {
			return true, nil
		}
	}
	return false, nil
}

func sortChanges(changes []*domain.Change) {
	sort.Slice(changes, func(i, j int) bool { return changes[i].ID < changes[j].ID })
}
