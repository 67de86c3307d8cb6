package app

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/boostgo/customercare/internal/care_service/adapters/smsgateway"
	"github.com/boostgo/customercare/internal/core_domain"
)

func testPollerConfig() PollerConfig {
	return PollerConfig{
		CycleTimeout: time.Second,
		CallTimeout:  time.Second,
		BackoffMin:   10 * time.Millisecond,
		BackoffMax:   20 * time.Millisecond,
	}
}

func TestPoller_StartIsIdempotent(t *testing.T) {
	orders := new(mockOrderClient)
	orders.On("FetchNewOrder", mock.Anything).Return(nil, nil)
	p := NewPoller(orders, nil, testPollerConfig(), testLogger())

	assert.True(t, p.Start())
	defer p.Stop()
	assert.False(t, p.Start())
	assert.True(t, p.IsRunning())
}

func TestPoller_StopWithoutStart(t *testing.T) {
	p := NewPoller(new(mockOrderClient), nil, testPollerConfig(), testLogger())
	assert.False(t, p.Stop())
	assert.False(t, p.IsRunning())
}

func TestPoller_StopEndsLoop(t *testing.T) {
	var calls atomic.Int64
	orders := new(mockOrderClient)
	orders.On("FetchNewOrder", mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).Return(nil, nil)
	p := NewPoller(orders, nil, testPollerConfig(), testLogger())

	require.True(t, p.Start())
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, time.Second, 5*time.Millisecond)

	assert.True(t, p.Stop())
	assert.False(t, p.IsRunning())

	settled := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, settled, calls.Load())

	// A stopped poller can be started again.
	assert.True(t, p.Start())
	assert.True(t, p.Stop())
}

func TestPoller_SurvivesFetchErrors(t *testing.T) {
	var calls atomic.Int64
	orders := new(mockOrderClient)
	orders.On("FetchNewOrder", mock.Anything).
		Run(func(mock.Arguments) { calls.Add(1) }).Return(nil, assert.AnError)
	p := NewPoller(orders, nil, testPollerConfig(), testLogger())

	require.True(t, p.Start())
	defer p.Stop()

	// Multiple cycles run despite every fetch failing.
	require.Eventually(t, func() bool { return calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestPoller_DispatchesFetchedOrders(t *testing.T) {
	orders := new(mockOrderClient)
	order := &core_domain.Order{ID: "ord-1", Number: "0911234567", Description: "hang"}
	orders.On("FetchNewOrder", mock.Anything).Return(order, nil).Once()
	orders.On("FetchNewOrder", mock.Anything).Return(nil, nil)

	messages := new(mockMessageRepo)
	settings := new(mockSettingsRepo)
	gateway := new(smsgateway.MockGateway)
	dispatcher := NewDispatcher(messages, settings, gateway, testLogger())
	settings.On("Get", mock.Anything).Return(core_domain.DefaultSettings(), nil)

	var dispatched atomic.Int64
	gateway.On("SendAuthorized", mock.Anything).
		Run(func(mock.Arguments) { dispatched.Add(1) }).
		Return(false, assert.AnError)

	p := NewPoller(orders, dispatcher, testPollerConfig(), testLogger())
	require.True(t, p.Start())
	defer p.Stop()

	// The poller reaches the dispatcher; the failed authorization check ends
	// the dispatch, and the loop keeps running.
	require.Eventually(t, func() bool {
		return dispatched.Load() > 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPoller_OneFetchAndDispatchPerCycle(t *testing.T) {
	// The upstream keeps an order pending until its delivery report is
	// reconciled, so a fetch right after a dispatch hands back the same
	// order. One fetch and one dispatch per cycle, then backoff.
	var fetches atomic.Int64
	orders := new(mockOrderClient)
	order := &core_domain.Order{ID: "ord-7", Number: "0911234567", Description: "hang"}
	orders.On("FetchNewOrder", mock.Anything).
		Run(func(mock.Arguments) { fetches.Add(1) }).Return(order, nil)

	messages := new(mockMessageRepo)
	settings := new(mockSettingsRepo)
	gateway := new(smsgateway.MockGateway)
	settings.On("Get", mock.Anything).Return(core_domain.DefaultSettings(), nil)

	var dispatched atomic.Int64
	gateway.On("SendAuthorized", mock.Anything).
		Run(func(mock.Arguments) { dispatched.Add(1) }).
		Return(false, assert.AnError)

	cfg := testPollerConfig()
	cfg.BackoffMin = time.Minute
	cfg.BackoffMax = time.Minute
	p := NewPoller(orders, NewDispatcher(messages, settings, gateway, testLogger()), cfg, testLogger())
	require.True(t, p.Start())
	defer p.Stop()

	require.Eventually(t, func() bool { return dispatched.Load() == 1 }, time.Second, 5*time.Millisecond)

	// The loop is now in its backoff sleep; the still-pending order must not
	// be fetched or dispatched again within the cycle.
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int64(1), fetches.Load())
	assert.Equal(t, int64(1), dispatched.Load())
}

func TestPoller_BackoffWithinBounds(t *testing.T) {
	p := NewPoller(nil, nil, PollerConfig{BackoffMin: time.Minute, BackoffMax: 2 * time.Minute}, testLogger())
	for i := 0; i < 100; i++ {
		b := p.backoff()
		assert.GreaterOrEqual(t, b, time.Minute)
		assert.LessOrEqual(t, b, 2*time.Minute)
	}

	fixed := NewPoller(nil, nil, PollerConfig{BackoffMin: time.Minute, BackoffMax: time.Minute}, testLogger())
	assert.Equal(t, time.Minute, fixed.backoff())
}
