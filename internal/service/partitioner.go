package service

import (
	"sort"

	"github.com/bagdasarian/review-submit/internal/domain"
)

// partitionByProject группирует изменения по проекту, порядок внутри группы сохраняется
func partitionByProject(changes []*domain.Change) map[string][]*domain.Change {
	groups := make(map[string][]*domain.Change)
	for _, c := range changes {
		groups[c.Project] = append(groups[c.Project], c)
	}
	return groups
}

func sortedProjects(groups map[string][]*domain.Change) []string {
	projects := make([]string, 0, len(groups))
	for p := range groups {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects
}
