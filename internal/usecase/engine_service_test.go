package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulsetrade/internal/domain"
	"pulsetrade/internal/metrics"
	"pulsetrade/internal/service"
	"pulsetrade/internal/strategy"
)

type memSink struct {
	mu     sync.Mutex
	events []domain.Event
}

func (s *memSink) Append(_ context.Context, e domain.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *memSink) byType(eventType string) []domain.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Event
	for _, e := range s.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

type fakeMarket struct {
	queue []domain.Observation
	err   error
}

func (m *fakeMarket) Fetch(_ context.Context, _ string) (domain.Observation, error) {
	if m.err != nil {
		return domain.Observation{}, m.err
	}
	obs := m.queue[0]
	if len(m.queue) > 1 {
		m.queue = m.queue[1:]
	}
	return obs, nil
}

type engineParams struct {
	riskPct     float64
	lossPct     float64
	leverage    float64
	maxTrades   int
	stopLossPct float64
	equity      float64
	market      MarketData
	now         func() time.Time
}

func newTestEngine(sink domain.EventSink, p engineParams) *EngineService {
	return NewEngineService(EngineOpts{
		Symbol:        "BTCUSDT",
		Mode:          "paper",
		StopLossPct:   p.stopLossPct,
		Market:        p.market,
		Strategy:      strategy.NewEmaCross(2, 4),
		Risk:          service.NewRiskService(p.riskPct, p.lossPct, p.leverage, p.maxTrades),
		Broker:        service.NewBrokerService(service.NewCostModel(0, 0), 0, 0),
		Sink:          sink,
		Metrics:       metrics.New(prometheus.NewRegistry()),
		InitialEquity: p.equity,
		TradeEnabled:  true,
		Now:           p.now,
	})
}

func feed(t *testing.T, e *EngineService, prices ...float64) {
	t.Helper()
	for _, p := range prices {
		require.NoError(t, e.ProcessObservation(context.Background(), domain.Observation{Price: p}))
	}
}

func TestMarketDataErrorSkipsCycle(t *testing.T) {
	sink := &memSink{}
	e := newTestEngine(sink, engineParams{
		riskPct: 1, lossPct: 5, leverage: 3, maxTrades: 10,
		stopLossPct: 1, equity: 1000,
		market: &fakeMarket{err: errors.New("timeout")},
	})

	require.NoError(t, e.ProcessCycle(context.Background()))

	assert.Len(t, sink.byType(domain.EventMarketDataError), 1)
	assert.Empty(t, sink.byType(domain.EventTick))
	assert.Equal(t, int64(0), e.Snapshot().Cycles)
	assert.Equal(t, 1000.0, e.Snapshot().Portfolio.Equity)
}

func TestDuplicateCandleProcessedOnce(t *testing.T) {
	sink := &memSink{}
	e := newTestEngine(sink, engineParams{
		riskPct: 1, lossPct: 5, leverage: 3, maxTrades: 10,
		stopLossPct: 1, equity: 1000,
	})

	closeTime := time.Date(2026, 9, 1, 12, 1, 0, 0, time.UTC)
	obs := domain.Observation{
		Price:  100,
		Candle: &domain.Candle{Open: 100, High: 101, Low: 99, Close: 100, CloseTime: closeTime},
	}

	require.NoError(t, e.ProcessObservation(context.Background(), obs))
	require.NoError(t, e.ProcessObservation(context.Background(), obs))

	assert.Len(t, sink.byType(domain.EventTick), 1)
	assert.Equal(t, int64(1), e.Snapshot().Cycles)
}

func TestTradeLifecycleAndDailyCap(t *testing.T) {
	sink := &memSink{}
	e := newTestEngine(sink, engineParams{
		riskPct: 1, lossPct: 50, leverage: 3, maxTrades: 1,
		stopLossPct: 1, equity: 1000,
	})

	// flat, flat, cross up: the fast EMA overtakes the slow one at 105
	feed(t, e, 100, 100, 105)

	opened := sink.byType(domain.EventPositionOpened)
	require.Len(t, opened, 1)
	assert.Equal(t, domain.SideLong, opened[0].Fields["side"])
	assert.Equal(t, "ema_cross_long", opened[0].Fields["reason"])
	assert.InDelta(t, 103.95, opened[0].Fields["stop_price"].(float64), 1e-9)
	assert.InDelta(t, 1000.0, opened[0].Fields["notional"].(float64), 1e-9)

	// 103 trades through the 103.95 stop
	feed(t, e, 103)

	closed := sink.byType(domain.EventPositionClosed)
	require.Len(t, closed, 1)
	assert.Equal(t, domain.ReasonStopLoss, closed[0].Fields["reason"])
	assert.InDelta(t, 103.95, closed[0].Fields["exit_price"].(float64), 1e-9)

	// the drop to 95 crosses the EMAs back down, but the daily cap of one
	// trade suppresses the short entry
	feed(t, e, 95)

	states := sink.byType(domain.EventStrategyState)
	require.NotEmpty(t, states)
	assert.Equal(t, "short", states[len(states)-1].Fields["signal"])
	assert.Len(t, sink.byType(domain.EventPositionOpened), 1)

	snap := e.Snapshot()
	assert.True(t, snap.Portfolio.Flat())
	assert.Equal(t, 1, snap.Portfolio.TradesToday)
}

func TestDailyLossKillSwitchSuppressesEntries(t *testing.T) {
	sink := &memSink{}
	e := newTestEngine(sink, engineParams{
		riskPct: 10, lossPct: 5, leverage: 10, maxTrades: 10,
		stopLossPct: 1, equity: 1000,
	})

	// the long opened at 105 risks 100; the stop-out loses 10% of equity,
	// twice the 5% daily limit
	feed(t, e, 100, 100, 105, 103)

	require.Len(t, sink.byType(domain.EventPositionClosed), 1)
	snap := e.Snapshot()
	assert.InDelta(t, 900.0, snap.Portfolio.Equity, 1e-6)

	feed(t, e, 95)

	assert.NotEmpty(t, sink.byType(domain.EventDailyLossLimitHit))
	assert.Len(t, sink.byType(domain.EventPositionOpened), 1, "no entries after the limit is hit")
	assert.True(t, e.Snapshot().KillSwitch)
}

func TestDayRolloverResetsCounters(t *testing.T) {
	sink := &memSink{}
	current := time.Date(2026, 8, 31, 23, 50, 0, 0, time.UTC)
	e := newTestEngine(sink, engineParams{
		riskPct: 1, lossPct: 50, leverage: 3, maxTrades: 10,
		stopLossPct: 1, equity: 1000,
		now: func() time.Time { return current },
	})

	feed(t, e, 100, 100, 105, 103) // one full round trip before midnight
	require.Equal(t, 1, e.Snapshot().Portfolio.TradesToday)

	current = time.Date(2026, 9, 1, 0, 0, 30, 0, time.UTC)
	feed(t, e, 103)

	rollovers := sink.byType(domain.EventDayRollover)
	require.Len(t, rollovers, 1)
	assert.Equal(t, "2026-08-31", rollovers[0].Fields["from"])
	assert.Equal(t, "2026-09-01", rollovers[0].Fields["to"])

	snap := e.Snapshot()
	assert.Equal(t, "2026-09-01", snap.Portfolio.DayUTC)
	assert.Equal(t, 0, snap.Portfolio.TradesToday)
	assert.Equal(t, 0.0, snap.Portfolio.DailyPnl)
	assert.Equal(t, snap.Portfolio.Equity, snap.Portfolio.DayStartEquity)
}

func TestTradeDisabledStillManagesExits(t *testing.T) {
	sink := &memSink{}
	e := newTestEngine(sink, engineParams{
		riskPct: 1, lossPct: 50, leverage: 3, maxTrades: 10,
		stopLossPct: 1, equity: 1000,
	})

	feed(t, e, 100, 100, 105)
	require.Len(t, sink.byType(domain.EventPositionOpened), 1)

	e.SetTradeEnabled(false)
	feed(t, e, 103)

	assert.Len(t, sink.byType(domain.EventPositionClosed), 1)
	snap := e.Snapshot()
	assert.True(t, snap.Portfolio.Flat())

	// re-crossing while disabled produces neither signals nor entries
	feed(t, e, 95, 120)
	assert.Len(t, sink.byType(domain.EventPositionOpened), 1)
}
