package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/boostgo/customercare/internal/care_service/app"
	"github.com/boostgo/customercare/internal/core_domain"
)

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) Insert(ctx context.Context, msg *core_domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessageRepo) Update(ctx context.Context, msg *core_domain.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *mockMessageRepo) UpdateSimInfo(ctx context.Context, id string, selectedSimID, originSimNumber *string) error {
	return m.Called(ctx, id, selectedSimID, originSimNumber).Error(0)
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
	return m.Called(ctx).Error(0)
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
	return m.Called(ctx, s).Error(0)
}

type stubOrderClient struct{}

func (stubOrderClient) FetchNewOrder(ctx context.Context) (*core_domain.Order, error) {
	return nil, nil
}

func (stubOrderClient) MarkOrderStatus(ctx context.Context, orderID, status string) error {
	return nil
}

func testPoller() *app.Poller {
	cfg := app.PollerConfig{
		CycleTimeout: time.Second,
		CallTimeout:  time.Second,
		BackoffMin:   time.Minute,
		BackoffMax:   time.Minute,
	}
	return app.NewPoller(stubOrderClient{}, nil, cfg, testLogger())
}

func setupAdminRouter(messages *mockMessageRepo, settings *mockSettingsRepo, poller *app.Poller) *chi.Mux {
	h := NewAdminHandler(messages, settings, poller, testLogger(), validator.New())
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func TestAdminHandler_ListMessages(t *testing.T) {
	messages := new(mockMessageRepo)
	stored := []core_domain.Message{
		{ID: "msg-1", Status: core_domain.MessageStatusDelivered},
		{ID: "msg-2", Status: core_domain.MessageStatusFailed},
	}
	messages.On("List", mock.Anything, (*core_domain.MessageStatus)(nil), 100).Return(stored, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/admin/messages", nil)
	rec := httptest.NewRecorder()
	setupAdminRouter(messages, new(mockSettingsRepo), testPoller()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListMessagesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "msg-1", resp.Messages[0].ID)
	messages.AssertExpectations(t)
}

func TestAdminHandler_ListMessages_StatusFilter(t *testing.T) {
	messages := new(mockMessageRepo)
	delivered := core_domain.MessageStatusDelivered
	messages.On("List", mock.Anything, &delivered, 10).Return([]core_domain.Message{}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/admin/messages?status=Delivered&limit=10", nil)
	rec := httptest.NewRecorder()
	setupAdminRouter(messages, new(mockSettingsRepo), testPoller()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messages.AssertExpectations(t)
}

func TestAdminHandler_ListMessages_BadStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/messages?status=Bogus", nil)
	rec := httptest.NewRecorder()
	setupAdminRouter(new(mockMessageRepo), new(mockSettingsRepo), testPoller()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_ClearMessages(t *testing.T) {
	messages := new(mockMessageRepo)
	messages.On("DeleteAll", mock.Anything).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/admin/messages", nil)
	rec := httptest.NewRecorder()
	setupAdminRouter(messages, new(mockSettingsRepo), testPoller()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	messages.AssertExpectations(t)
}

func TestAdminHandler_GetSettings(t *testing.T) {
	settings := new(mockSettingsRepo)
	settings.On("Get", mock.Anything).Return(core_domain.DefaultSettings(), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/admin/settings", nil)
	rec := httptest.NewRecorder()
	setupAdminRouter(new(mockMessageRepo), settings, testPoller()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SettingsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, core_domain.DefaultMessageTemplate, resp.MessageTemplate)
	assert.False(t, resp.TestModeEnabled)
}

func TestAdminHandler_UpdateSettings(t *testing.T) {
	settings := new(mockSettingsRepo)
	var stored core_domain.Settings
	settings.On("Put", mock.Anything, mock.AnythingOfType("core_domain.Settings")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(core_domain.Settings) }).
		Return(nil).Once()

	body, _ := json.Marshal(UpdateSettingsRequest{
		TestModeEnabled: true,
		TestDestination: "0900000000",
		MessageTemplate: "hi {name}",
	})
	req := httptest.NewRequest(http.MethodPut, "/admin/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	setupAdminRouter(new(mockMessageRepo), settings, testPoller()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stored.TestModeEnabled)
	assert.Equal(t, "0900000000", stored.TestDestination)
	assert.Equal(t, "hi {name}", stored.MessageTemplate)
}

func TestAdminHandler_UpdateSettings_TestModeNeedsDestination(t *testing.T) {
	body := []byte(`{"test_mode_enabled": true, "test_destination": ""}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	setupAdminRouter(new(mockMessageRepo), new(mockSettingsRepo), testPoller()).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminHandler_UpdateSettings_EmptyTemplateFallsBackToDefault(t *testing.T) {
	settings := new(mockSettingsRepo)
	var stored core_domain.Settings
	settings.On("Put", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(core_domain.Settings) }).
		Return(nil).Once()

	body := []byte(`{"message_template": ""}`)
	req := httptest.NewRequest(http.MethodPut, "/admin/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	setupAdminRouter(new(mockMessageRepo), settings, testPoller()).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, core_domain.DefaultMessageTemplate, stored.MessageTemplate)
}

func TestAdminHandler_PollingLifecycle(t *testing.T) {
	poller := testPoller()
	router := setupAdminRouter(new(mockMessageRepo), new(mockSettingsRepo), poller)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/polling", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var status PollingStatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.False(t, status.Running)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/polling/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, poller.IsRunning())

	// Starting twice is a no-op, not an error.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/polling/start", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/admin/polling/stop", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, poller.IsRunning())
}
