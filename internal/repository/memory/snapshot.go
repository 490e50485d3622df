package memory

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/bagdasarian/review-submit/internal/domain"
)

// Snapshot - начальное состояние хранилища для локального запуска
type Snapshot struct {
	Users []struct {
		ID       string   `json:"id"`
		Username string   `json:"username"`
		IsAdmin  bool     `json:"is_admin"`
		Groups   []string `json:"groups"`
	} `json:"users"`
	// project -> группы с правом чтения
	Access  map[string][]string `json:"access"`
	Changes []struct {
		ID      int64    `json:"id"`
		Project string   `json:"project"`
		Branch  string   `json:"branch"`
		Owner   string   `json:"owner"`
		Status  string   `json:"status"`
		Topic   string   `json:"topic"`
		Private bool     `json:"private"`
		Commit  string   `json:"commit"`
		Parents []string `json:"parents"`
	} `json:"changes"`
}

// LoadSnapshot читает JSON-снимок и заполняет им хранилище
func (s *Store) LoadSnapshot(r io.Reader) error {
	var snap Snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return fmt.Errorf("failed to decode snapshot: %w", err)
	}

	for _, u := range snap.Users {
		s.AddUser(&domain.User{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin})
		for _, g := range u.Groups {
			s.AddMember(g, u.ID)
		}
	}
	for project, groups := range snap.Access {
		for _, g := range groups {
			s.GrantRead(project, g)
		}
	}
	for _, c := range snap.Changes {
		if c.Project == "" || c.Commit == "" {
			return fmt.Errorf("change %d: project and commit are required", c.ID)
		}
		s.CreateChange(&domain.Change{
			ID:        domain.ChangeID(c.ID),
			Project:   c.Project,
			Branch:    c.Branch,
			OwnerID:   c.Owner,
			Status:    domain.Status(c.Status),
			Topic:     domain.NormalizeTopic(c.Topic),
			IsPrivate: c.Private,
			CurrentPatchSet: domain.PatchSet{
				CommitID:  c.Commit,
				ParentIDs: c.Parents,
			},
		})
	}

	return nil
}
