package handler

import (
	"time"

	"github.com/bagdasarian/review-submit/internal/domain"
)

func domainChangeToHTTP(change *domain.Change) ChangeResponse {
	var createdAt, updatedAt *string
	if !change.CreatedAt.IsZero() {
		createdAtStr := change.CreatedAt.Format(time.RFC3339)
		createdAt = &createdAtStr
	}
	if change.UpdatedAt != nil {
		updatedAtStr := change.UpdatedAt.Format(time.RFC3339)
		updatedAt = &updatedAtStr
	}

	return ChangeResponse{
		ChangeID:  int64(change.ID),
		Project:   change.Project,
		Branch:    change.Branch,
		OwnerID:   change.OwnerID,
		Status:    string(change.Status),
		Topic:     change.Topic,
		PatchSet:  change.CurrentPatchSet.Number,
		Revision:  change.CurrentPatchSet.CommitID,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

func domainChangesToHTTP(changes []*domain.Change) []ChangeResponse {
	result := make([]ChangeResponse, 0, len(changes))
	for _, c := range changes {
		result = append(result, domainChangeToHTTP(c))
	}
	return result
}

func domainSubmitActionToHTTP(action *domain.SubmitAction) SubmitActionResponse {
	return SubmitActionResponse{
		Label:   action.Label,
		Title:   action.Title,
		Enabled: action.Enabled,
	}
}
