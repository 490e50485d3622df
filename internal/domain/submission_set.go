package domain

import "sort"

// SubmissionSet - результат разрешения набора изменений для submit.
// После создания не изменяется.
type SubmissionSet struct {
	required   []*Change
	related    []*Change
	byID       map[ChangeID]*Change
	nonVisible int
}

// NewSubmissionSet создает набор; изменения из required исключаются из related
func NewSubmissionSet(required, related []*Change, nonVisible int) *SubmissionSet {
	s := &SubmissionSet{
		byID:       make(map[ChangeID]*Change, len(required)),
		nonVisible: nonVisible,
	}
	for _, c := range required {
		if _, ok := s.byID[c.ID]; ok {
			continue
		}
		s.byID[c.ID] = c
		s.required = append(s.required, c)
	}

	seen := make(map[ChangeID]struct{}, len(related))
	for _, c := range related {
		if _, ok := s.byID[c.ID]; ok {
			continue
		}
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		s.related = append(s.related, c)
	}

	sortByID(s.required)
	sortByID(s.related)
	return s
}

func sortByID(changes []*Change) {
	sort.Slice(changes, func(i, j int) bool { return changes[i].ID < changes[j].ID })
}

// Changes возвращает изменения, обязательные для submit
func (s *SubmissionSet) Changes() []*Change {
	out := make([]*Change, len(s.required))
	copy(out, s.required)
	return out
}

// RelatedChangesNotRequiredForSubmission возвращает связанные, но необязательные изменения
func (s *SubmissionSet) RelatedChangesNotRequiredForSubmission() []*Change {
	out := make([]*Change, len(s.related))
	copy(out, s.related)
	return out
}

func (s *SubmissionSet) IDs() []ChangeID {
	ids := make([]ChangeID, 0, len(s.required))
	for _, c := range s.required {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s *SubmissionSet) RelatedIDs() []ChangeID {
	ids := make([]ChangeID, 0, len(s.related))
	for _, c := range s.related {
		ids = append(ids, c.ID)
	}
	return ids
}

func (s *SubmissionSet) Contains(id ChangeID) bool {
	_, ok := s.byID[id]
	return ok
}

func (s *SubmissionSet) Get(id ChangeID) (*Change, bool) {
	c, ok := s.byID[id]
	return c, ok
}

func (s *SubmissionSet) Size() int {
	return len(s.required)
}

// Projects возвращает отсортированный список проектов обязательных изменений
func (s *SubmissionSet) Projects() []string {
	seen := make(map[string]struct{})
	projects := make([]string, 0)
	for _, c := range s.required {
		if _, ok := seen[c.Project]; ok {
			continue
		}
		seen[c.Project] = struct{}{}
		projects = append(projects, c.Project)
	}
	sort.Strings(projects)
	return projects
}

// NonVisibleCount - число изменений топика, скрытых от пользователя
func (s *SubmissionSet) NonVisibleCount() int {
	return s.nonVisible
}

func (s *SubmissionSet) FurtherHiddenChanges() bool {
	return s.nonVisible > 0
}
