package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockPlacer struct {
	mock.Mock
}

func (m *MockPlacer) Place(ctx context.Context, contentBase64, dir string) (string, error) {
	args := m.Called(ctx, contentBase64, dir)
	return args.String(0), args.Error(1)
}

func (m *MockPlacer) Discard(ctx context.Context, locator string) error {
	args := m.Called(ctx, locator)
	return args.Error(0)
}
