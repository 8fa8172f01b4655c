package mocks

import (
	"context"

	"filesmanager/internal/model"
	"filesmanager/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockFileRepository struct {
	mock.Mock
}

func (m *MockFileRepository) Create(ctx context.Context, node *model.FileNode) (*model.FileNode, error) {
	args := m.Called(ctx, node)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileNode), args.Error(1)
}

func (m *MockFileRepository) FindOwned(ctx context.Context, id, ownerID int64) (*model.FileNode, error) {
	args := m.Called(ctx, id, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileNode), args.Error(1)
}

func (m *MockFileRepository) ListChildren(ctx context.Context, ownerID int64, parent model.ParentRef, pq repository.PageQuery) ([]model.FileNode, error) {
	args := m.Called(ctx, ownerID, parent, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FileNode), args.Error(1)
}

func (m *MockFileRepository) SetVisibility(ctx context.Context, id, ownerID int64, isPublic bool) (*model.FileNode, error) {
	args := m.Called(ctx, id, ownerID, isPublic)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.FileNode), args.Error(1)
}
