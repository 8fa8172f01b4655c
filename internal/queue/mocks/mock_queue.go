package mocks

import (
	"context"

	"filesmanager/internal/queue"

	"github.com/stretchr/testify/mock"
)

type MockEnqueuer struct {
	mock.Mock
}

func (m *MockEnqueuer) Enqueue(ctx context.Context, job queue.Job) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type MockConsumer struct {
	mock.Mock
}

func (m *MockConsumer) Dequeue(ctx context.Context) (*queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.Delivery), args.Error(1)
}

func (m *MockConsumer) Ack(ctx context.Context, d *queue.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockConsumer) Fail(ctx context.Context, d *queue.Delivery, cause error) error {
	args := m.Called(ctx, d, cause)
	return args.Error(0)
}

func (m *MockConsumer) Recover(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
