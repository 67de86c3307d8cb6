package app

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/boostgo/customercare/internal/core_domain"
)

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Insert(ctx context.Context, msg *core_domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockMessageRepo) Update(ctx context.Context, msg *core_domain.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *mockMessageRepo) UpdateSimInfo(ctx context.Context, id string, selectedSimID, originSimNumber *string) error {
	args := m.Called(ctx, id, selectedSimID, originSimNumber)
	return args.Error(0)
}

func (m *mockMessageRepo) GetByID(ctx context.Context, id string) (*core_domain.Message, error) {
	args := m.Called(ctx, id)
	msg, _ := args.Get(0).(*core_domain.Message)
	return msg, args.Error(1)
}

func (m *mockMessageRepo) GetMostRecentByDestination(ctx context.Context, candidates []string) (*core_domain.Message, error) {
	args := m.Called(ctx, candidates)
	msg, _ := args.Get(0).(*core_domain.Message)
	return msg, args.Error(1)
}

func (m *mockMessageRepo) List(ctx context.Context, status *core_domain.MessageStatus, limit int) ([]core_domain.Message, error) {
	args := m.Called(ctx, status, limit)
	msgs, _ := args.Get(0).([]core_domain.Message)
	return msgs, args.Error(1)
}

func (m *mockMessageRepo) DeleteAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockSettingsRepo struct {
	mock.Mock
}

func (m *mockSettingsRepo) Get(ctx context.Context) (core_domain.Settings, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).(core_domain.Settings)
	return s, args.Error(1)
}

func (m *mockSettingsRepo) Put(ctx context.Context, s core_domain.Settings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

type mockOrderClient struct {
	mock.Mock
}

func (m *mockOrderClient) FetchNewOrder(ctx context.Context) (*core_domain.Order, error) {
	args := m.Called(ctx)
	order, _ := args.Get(0).(*core_domain.Order)
	return order, args.Error(1)
}

func (m *mockOrderClient) MarkOrderStatus(ctx context.Context, orderID, status string) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, text string) {
	m.Called(ctx, text)
}

type mockAlerter struct {
	mock.Mock
}

func (m *mockAlerter) FailureAlert(ctx context.Context) {
	m.Called(ctx)
}
