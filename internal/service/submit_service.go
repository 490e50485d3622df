package service

import (
	"context"

	"github.com/bagdasarian/review-submit/internal/domain"
)

type SubmitService interface {
	SubmittedTogether(ctx context.Context, userID string, changeID domain.ChangeID, options ...domain.SubmittedTogetherOption) (*domain.SubmittedTogether, error)
	Submit(ctx context.Context, userID string, changeID domain.ChangeID) (*domain.SubmissionSet, error)
	DescribeSubmit(ctx context.Context, userID string, changeID domain.ChangeID) (*domain.SubmitAction, error)
}

type ChangeService interface {
	SetTopic(ctx context.Context, userID string, changeID domain.ChangeID, topic string) (*domain.Change, error)
}

// SubmitOptions - серверные настройки submit
type SubmitOptions struct {
	WholeTopic  bool
	MaxParallel int
}
