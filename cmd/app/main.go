package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"pulsetrade/configs"
	"pulsetrade/internal/adapter"
	"pulsetrade/internal/database"
	deliveryhttp "pulsetrade/internal/delivery/http"
	"pulsetrade/internal/domain"
	"pulsetrade/internal/infra"
	"pulsetrade/internal/metrics"
	"pulsetrade/internal/repository"
	"pulsetrade/internal/service"
	"pulsetrade/internal/strategy"
	"pulsetrade/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := configs.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// event sink: database when configured, JSONL file otherwise
	var events domain.EventStore
	if cfg.Database.URL != "" {
		db, err := infra.NewDatabase(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		events = repository.NewEventRepository(db)
	} else {
		sink, err := repository.NewFileEventSink(cfg.Database.EventFilePath)
		if err != nil {
			log.Fatalf("Failed to open event log: %v", err)
		}
		defer sink.Close()
		events = sink
		log.Printf("No DATABASE_URL set, appending events to %s", cfg.Database.EventFilePath)
	}

	strat, err := strategy.New(cfg.Strategy)
	if err != nil {
		log.Fatalf("Failed to build strategy: %v", err)
	}

	registry := prometheus.NewRegistry()
	engineMetrics := metrics.New(registry)

	riskService := service.NewRiskService(
		cfg.Trading.RiskPerTradePct,
		cfg.Trading.MaxDailyLossPct,
		cfg.Trading.MaxLeverage,
		cfg.Trading.MaxTradesPerDay,
	)
	costModel := service.NewCostModel(cfg.Cost.FeeBps, cfg.Cost.SlippageBps)
	brokerService := service.NewBrokerService(costModel, cfg.Strategy.RRTakeProfit, cfg.Strategy.MaxHoldCandles)
	market := adapter.NewBinanceClient("", cfg.Strategy.UseCandles, cfg.Strategy.CandleInterval)

	engine := usecase.NewEngineService(usecase.EngineOpts{
		Symbol:        cfg.Trading.Symbol,
		Mode:          cfg.Trading.Mode,
		StopLossPct:   cfg.Strategy.StopLossPct,
		Market:        market,
		Strategy:      strat,
		Risk:          riskService,
		Broker:        brokerService,
		Sink:          events,
		Metrics:       engineMetrics,
		InitialEquity: cfg.Trading.InitialEquity,
		TradeEnabled:  cfg.Trading.TradeEnabled,
	})

	emitStartup(ctx, events, cfg)
	if cfg.Trading.RiskDefaulted {
		emit(ctx, events, domain.EventConfigWarning, map[string]any{
			"warning": "no risk configuration found, using defaults",
		})
		log.Println("WARNING: no risk configuration found, using defaults")
	}

	// market data: websocket candle feed or REST polling via the scheduler
	var scheduler *infra.Scheduler
	if cfg.Trading.Stream {
		stream := adapter.NewKlineStream("", cfg.Trading.Symbol, cfg.Strategy.CandleInterval)
		go stream.Run(ctx)
		go func() {
			for candle := range stream.Candles() {
				c := candle
				obs := domain.Observation{Price: c.Close, Candle: &c}
				if err := engine.ProcessObservation(ctx, obs); err != nil {
					log.Printf("ERROR: engine cycle failed: %v", err)
				}
			}
		}()
		log.Printf("[OK] Streaming %s klines (%s)", cfg.Trading.Symbol, cfg.Strategy.CandleInterval)
	} else {
		scheduler = infra.NewScheduler(engine, cfg.Trading.IntervalSec)
		if err := scheduler.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
		defer scheduler.Stop()
	}

	// status API
	e := echo.New()
	e.HideBanner = true
	statusHandler := deliveryhttp.NewStatusHandler(engine, events, cfg.Auth.JWTSecret, cfg.Auth.OperatorPasswordHash)
	deliveryhttp.SetupRoutes(e, &deliveryhttp.RouterConfig{
		StatusHandler: statusHandler,
		JWTSecret:     cfg.Auth.JWTSecret,
		Registry:      registry,
	})

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		log.Printf("Status API listening on %s [%s mode, symbol=%s, strategy=%s]",
			addr, cfg.Trading.Mode, cfg.Trading.Symbol, cfg.Strategy.Name)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	log.Println("[OK] Engine exited gracefully")
}

func emitStartup(ctx context.Context, sink domain.EventSink, cfg *configs.Config) {
	emit(ctx, sink, domain.EventStartup, map[string]any{
		"symbol":             cfg.Trading.Symbol,
		"interval_sec":       cfg.Trading.IntervalSec,
		"initial_equity":     cfg.Trading.InitialEquity,
		"mode":               cfg.Trading.Mode,
		"trade_enabled":      cfg.Trading.TradeEnabled,
		"max_trades_per_day": cfg.Trading.MaxTradesPerDay,
		"max_daily_loss_pct": cfg.Trading.MaxDailyLossPct,
		"risk_per_trade_pct": cfg.Trading.RiskPerTradePct,
		"max_leverage":       cfg.Trading.MaxLeverage,
		"strategy":           cfg.Strategy.Name,
		"use_candles":        cfg.Strategy.UseCandles,
		"candle_interval":    cfg.Strategy.CandleInterval,
		"fee_bps":            cfg.Cost.FeeBps,
		"slippage_bps":       cfg.Cost.SlippageBps,
	})
}

func emit(ctx context.Context, sink domain.EventSink, eventType string, fields map[string]any) {
	if err := sink.Append(ctx, domain.NewEvent(eventType, fields)); err != nil {
		log.Printf("WARNING: failed to append %s event: %v", eventType, err)
	}
}
