package smsgateway

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockGateway is a testify mock of Gateway for use in application tests.
type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) Lines(ctx context.Context) ([]Line, error) {
	args := m.Called(ctx)
	lines, _ := args.Get(0).([]Line)
	return lines, args.Error(1)
}

func (m *MockGateway) SendAuthorized(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *MockGateway) SendPart(ctx context.Context, req SendPartRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockGateway) RunUSSD(ctx context.Context, lineID, code string) (string, error) {
	args := m.Called(ctx, lineID, code)
	return args.String(0), args.Error(1)
}
