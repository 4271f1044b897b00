package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"pulsetrade/internal/domain"
	"pulsetrade/internal/metrics"
	"pulsetrade/internal/service"
	"pulsetrade/internal/strategy"
	"pulsetrade/internal/utils"
)

// MarketData supplies one observation per cycle
type MarketData interface {
	Fetch(ctx context.Context, symbol string) (domain.Observation, error)
}

// EngineOpts holds the dependencies and parameters for the engine
type EngineOpts struct {
	Symbol      string
	Mode        string
	StopLossPct float64 // percent fallback stop when the strategy gives no swing level

	Market   MarketData
	Strategy strategy.Strategy
	Risk     *service.RiskService
	Broker   *service.BrokerService
	Sink     domain.EventSink
	Metrics  *metrics.Metrics

	InitialEquity float64
	TradeEnabled  bool
	Now           func() time.Time // nil defaults to time.Now
}

// EngineService processes one observation at a time: rollover check, loss
// gate, fetch, dedupe, strategy, entry, exit. All engine state is owned here
// and guarded by one mutex, so a cycle is never interleaved with another
// cycle or a status read.
type EngineService struct {
	symbol      string
	mode        string
	stopLossPct float64 // fraction

	market   MarketData
	strat    strategy.Strategy
	risk     *service.RiskService
	broker   *service.BrokerService
	sink     domain.EventSink
	metrics  *metrics.Metrics
	now      func() time.Time

	tradeEnabled atomic.Bool

	mu            sync.Mutex
	pf            *domain.Portfolio
	lastCloseTime time.Time
	cycleCount    int64
}

func NewEngineService(opts EngineOpts) *EngineService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	e := &EngineService{
		symbol:      opts.Symbol,
		mode:        opts.Mode,
		stopLossPct: opts.StopLossPct / 100.0,
		market:      opts.Market,
		strat:       opts.Strategy,
		risk:        opts.Risk,
		broker:      opts.Broker,
		sink:        opts.Sink,
		metrics:     opts.Metrics,
		now:         now,
	}
	e.pf = domain.NewPortfolio(opts.InitialEquity, utils.UTCDay(now()))
	e.tradeEnabled.Store(opts.TradeEnabled)
	return e
}

// ProcessCycle fetches one observation and processes it. A failed fetch is
// not an error for the caller: the cycle is skipped and existing state kept.
func (e *EngineService) ProcessCycle(ctx context.Context) error {
	obs, err := e.market.Fetch(ctx, e.symbol)
	if err != nil {
		e.emit(ctx, domain.EventMarketDataError, map[string]any{
			"symbol": e.symbol,
			"error":  err.Error(),
		})
		e.metrics.MarketDataErrors.Inc()
		log.Printf("[engine] marketdata error: %v", err)
		return nil
	}
	return e.ProcessObservation(ctx, obs)
}

// ProcessObservation runs the full decision cycle for one observation. It is
// also the entry point for the websocket feed, which delivers closed candles
// directly.
func (e *EngineService) ProcessObservation(ctx context.Context, obs domain.Observation) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now().UTC()

	// day rollover first, so the gates below see fresh counters
	if from := e.pf.DayUTC; e.risk.RolloverIfNeeded(e.pf, now) {
		e.emit(ctx, domain.EventDayRollover, map[string]any{
			"from": from,
			"to":   e.pf.DayUTC,
		})
		log.Printf("[engine] day rollover %s -> %s, equity=%.2f", from, e.pf.DayUTC, e.pf.Equity)
	}

	// daily loss kill-switch suppresses entries only; an open position is
	// still managed below so a bad day cannot get worse unattended
	killSwitch := e.risk.DailyLossBreached(e.pf)
	if killSwitch {
		e.emit(ctx, domain.EventDailyLossLimitHit, map[string]any{
			"day_start_equity": e.pf.DayStartEquity,
			"daily_pnl":        e.pf.DailyPnl,
			"limit":            e.risk.DailyLossLimit(e.pf),
		})
	}

	// a candle may only be processed once; equal close times mean the
	// provider re-delivered the same candle
	if obs.Candle != nil {
		if obs.Candle.CloseTime.Equal(e.lastCloseTime) {
			return nil
		}
		e.lastCloseTime = obs.Candle.CloseTime
	}

	e.cycleCount++
	price := obs.DecisionPrice()
	e.emit(ctx, domain.EventTick, map[string]any{
		"counter":      e.cycleCount,
		"symbol":       e.symbol,
		"mode":         e.mode,
		"price":        price,
		"trades_today": e.pf.TradesToday,
		"has_position": !e.pf.Flat(),
		"equity":       e.pf.Equity,
		"daily_pnl":    e.pf.DailyPnl,
	})
	e.metrics.CyclesTotal.Inc()
	e.metrics.Equity.Set(e.pf.Equity)
	e.metrics.DailyPnl.Set(e.pf.DailyPnl)

	tradeEnabled := e.tradeEnabled.Load()
	entryAllowed := tradeEnabled && !killSwitch && e.pf.Flat() && !e.risk.TradeCapReached(e.pf)

	if tradeEnabled {
		sig, info := e.strat.Update(obs)
		fields := map[string]any{
			"ema_fast": info.EmaFast,
			"ema_slow": info.EmaSlow,
			"signal":   sig.String(),
		}
		if info.HasSwing {
			fields["ema_trend"] = info.EmaTrend
			fields["swing_low"] = info.SwingLow
			fields["swing_high"] = info.SwingHigh
		}
		e.emit(ctx, domain.EventStrategyState, fields)

		if entryAllowed && sig != strategy.SignalNone {
			e.tryOpen(ctx, sig, info, price, now)
		}
	}

	// exit evaluation runs once per cycle whenever a position is open, even
	// when it was opened this same cycle and even under the kill-switch
	if res := e.broker.EvaluateExit(e.pf, obs, now); res != nil {
		e.emit(ctx, domain.EventPositionClosed, map[string]any{
			"symbol":        res.Position.Symbol,
			"side":          res.Position.Side,
			"entry_price":   res.Position.EntryPrice,
			"exit_price":    res.Fill.FillPrice,
			"size":          res.Position.Size,
			"notional":      res.Position.Notional,
			"stop_price":    res.Position.StopPrice,
			"entry_fee":     res.Position.EntryFee,
			"exit_fee":      res.Fill.Fee,
			"exit_slippage": res.Fill.Slippage,
			"gross_pnl":     res.Fill.GrossPnl,
			"net_pnl":       res.NetPnl,
			"equity_after":  e.pf.Equity,
			"daily_pnl":     e.pf.DailyPnl,
			"reason":        res.Reason,
		})
		e.metrics.PositionsClosed.WithLabelValues(res.Reason).Inc()
		e.metrics.Equity.Set(e.pf.Equity)
		e.metrics.DailyPnl.Set(e.pf.DailyPnl)
		log.Printf("[engine] position closed: %s %s entry=%.4f exit=%.4f net=%.4f reason=%s",
			res.Position.Symbol, res.Position.Side, res.Position.EntryPrice, res.Fill.FillPrice, res.NetPnl, res.Reason)
	}

	return nil
}

// tryOpen sizes and opens a position for the signal. Sizing failures skip
// the entry and leave all state untouched.
func (e *EngineService) tryOpen(ctx context.Context, sig strategy.Signal, info strategy.Info, price float64, now time.Time) {
	side := domain.SideLong
	if sig == strategy.SignalShort {
		side = domain.SideShort
	}

	stopPrice := e.stopFor(side, price, info)
	notional, err := e.risk.SizeNotional(e.pf.Equity, price, stopPrice)
	if err != nil {
		reason := "bad_stop_distance"
		if errors.Is(err, domain.ErrDegenerateNotional) {
			reason = "degenerate_notional"
		}
		e.emit(ctx, domain.EventEntrySkipped, map[string]any{
			"reason":     reason,
			"side":       side,
			"price":      price,
			"stop_price": stopPrice,
		})
		e.metrics.EntriesSkipped.Inc()
		return
	}

	pos := e.broker.Open(e.pf, e.symbol, side, price, stopPrice, notional, now)
	fields := map[string]any{
		"symbol":         pos.Symbol,
		"side":           pos.Side,
		"entry_price":    pos.EntryPrice,
		"size":           pos.Size,
		"notional":       pos.Notional,
		"stop_price":     pos.StopPrice,
		"entry_fee":      pos.EntryFee,
		"entry_slippage": pos.EntrySlippage,
		"equity_after":   e.pf.Equity,
		"reason":         fmt.Sprintf("%s_%s", e.strat.Name(), strings.ToLower(side)),
	}
	if pos.TakeProfitPrice != nil {
		fields["take_profit_price"] = *pos.TakeProfitPrice
	}
	e.emit(ctx, domain.EventPositionOpened, fields)
	e.metrics.PositionsOpened.Inc()
	log.Printf("[engine] position opened: %s %s entry=%.4f stop=%.4f notional=%.2f",
		pos.Symbol, pos.Side, pos.EntryPrice, pos.StopPrice, pos.Notional)
}

// stopFor picks the stop reference: the strategy's swing level when it
// provides one, otherwise the configured percent stop off the signal price.
func (e *EngineService) stopFor(side string, price float64, info strategy.Info) float64 {
	if info.HasSwing {
		if side == domain.SideLong {
			return info.SwingLow
		}
		return info.SwingHigh
	}
	if side == domain.SideLong {
		return price * (1 - e.stopLossPct)
	}
	return price * (1 + e.stopLossPct)
}

// Status is a point-in-time view of the engine for the HTTP API
type Status struct {
	Symbol       string           `json:"symbol"`
	Mode         string           `json:"mode"`
	TradeEnabled bool             `json:"trade_enabled"`
	KillSwitch   bool             `json:"kill_switch"`
	Cycles       int64            `json:"cycles"`
	Portfolio    domain.Portfolio `json:"portfolio"`
}

// Snapshot returns a consistent copy of the engine state
func (e *EngineService) Snapshot() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		Symbol:       e.symbol,
		Mode:         e.mode,
		TradeEnabled: e.tradeEnabled.Load(),
		KillSwitch:   e.risk.DailyLossBreached(e.pf),
		Cycles:       e.cycleCount,
		Portfolio:    e.pf.Snapshot(),
	}
}

// SetTradeEnabled toggles new-entry processing at runtime. Exit management
// is unaffected.
func (e *EngineService) SetTradeEnabled(enabled bool) {
	e.tradeEnabled.Store(enabled)
	log.Printf("[engine] trade_enabled set to %v", enabled)
}

// TradeEnabled reports the current trading flag
func (e *EngineService) TradeEnabled() bool {
	return e.tradeEnabled.Load()
}

func (e *EngineService) emit(ctx context.Context, eventType string, fields map[string]any) {
	if err := e.sink.Append(ctx, domain.NewEvent(eventType, fields)); err != nil {
		log.Printf("[engine] WARNING: failed to append %s event: %v", eventType, err)
	}
}
