package service

import (
	"context"
	"time"

	"github.com/bagdasarian/review-submit/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockChangeRepository struct {
	mock.Mock
}

func (m *MockChangeRepository) GetByID(ctx context.Context, id domain.ChangeID) (*domain.Change, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Change), args.Error(1)
}

func (m *MockChangeRepository) GetByIDs(ctx context.Context, ids []domain.ChangeID) ([]*domain.Change, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Change), args.Error(1)
}

func (m *MockChangeRepository) ParentChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Change), args.Error(1)
}

func (m *MockChangeRepository) ChildChanges(ctx context.Context, change *domain.Change) ([]*domain.Change, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Change), args.Error(1)
}

func (m *MockChangeRepository) OpenByTopic(ctx context.Context, topic string) ([]*domain.Change, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Change), args.Error(1)
}

func (m *MockChangeRepository) OpenWithTopic(ctx context.Context) ([]*domain.Change, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Change), args.Error(1)
}

func (m *MockChangeRepository) SetTopic(ctx context.Context, id domain.ChangeID, topic string) error {
	args := m.Called(ctx, id, topic)
	return args.Error(0)
}

func (m *MockChangeRepository) MarkMerged(ctx context.Context, ids []domain.ChangeID, mergedAt time.Time) error {
	args := m.Called(ctx, ids, mergedAt)
	return args.Error(0)
}

type MockVisibilityRepository struct {
	mock.Mock
}

func (m *MockVisibilityRepository) GetUser(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockVisibilityRepository) CanSee(ctx context.Context, user *domain.User, change *domain.Change) (bool, error) {
	args := m.Called(ctx, user, change)
	return args.Bool(0), args.Error(1)
}

type MockTopicIndex struct {
	mock.Mock
}

func (m *MockTopicIndex) ChangesByTopic(ctx context.Context, topic string) ([]domain.ChangeID, error) {
	args := m.Called(ctx, topic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ChangeID), args.Error(1)
}

func (m *MockTopicIndex) Put(ctx context.Context, id domain.ChangeID, topic string) error {
	args := m.Called(ctx, id, topic)
	return args.Error(0)
}

func (m *MockTopicIndex) Remove(ctx context.Context, id domain.ChangeID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
