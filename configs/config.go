package configs

import (
	"os"
	"strconv"
)

// Config holds all configuration for the engine
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Trading  TradingConfig
	Strategy StrategyConfig
	Cost     CostConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration. An empty URL switches the
// event sink to the JSONL file fallback.
type DatabaseConfig struct {
	URL           string
	EventFilePath string
}

// TradingConfig holds the risk and session parameters
type TradingConfig struct {
	Symbol          string
	IntervalSec     int
	InitialEquity   float64
	Mode            string // "paper" or "live"
	TradeEnabled    bool
	MaxTradesPerDay int
	MaxDailyLossPct float64 // percent, e.g. 5.0
	RiskPerTradePct float64 // percent, e.g. 1.0
	MaxLeverage     float64
	Stream          bool // use the websocket kline feed instead of REST polling

	// RiskDefaulted is true when none of the risk variables were present in
	// the environment and the built-in defaults are in effect.
	RiskDefaulted bool
}

// StrategyConfig holds the parameters for both strategy variants
type StrategyConfig struct {
	Name            string // "ema_cross" or "trend_pullback"
	EmaFast         int
	EmaSlow         int
	StopLossPct     float64 // percent stop distance for ema_cross
	RRTakeProfit    float64 // reward:risk multiple, 0 disables the target
	EmaTrend        int
	EmaPullbackFast int
	EmaPullbackSlow int
	PullbackBandPct float64 // fraction, e.g. 0.0015
	SwingLookback   int
	MaxHoldCandles  int
	UseCandles      bool
	CandleInterval  string
	WindowSize      int // rolling high/low capacity, independent of SwingLookback
}

// CostConfig holds fee and slippage rates in basis points
type CostConfig struct {
	FeeBps      float64
	SlippageBps float64
}

// AuthConfig holds operator authentication settings
type AuthConfig struct {
	JWTSecret            string
	OperatorPasswordHash string // bcrypt hash; empty disables the control API
}

// Load loads configuration from environment variables
func Load() *Config {
	_, hasRisk := os.LookupEnv("RISK_PER_TRADE_PCT")
	_, hasLoss := os.LookupEnv("MAX_DAILY_LOSS_PCT")
	_, hasCap := os.LookupEnv("MAX_TRADES_PER_DAY")
	_, hasLev := os.LookupEnv("MAX_LEVERAGE")

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		Database: DatabaseConfig{
			URL:           getEnv("DATABASE_URL", ""),
			EventFilePath: getEnv("EVENT_FILE_PATH", "logs/engine.log"),
		},
		Trading: TradingConfig{
			Symbol:          getEnv("SYMBOL", "BTCUSDT"),
			IntervalSec:     getEnvInt("INTERVAL_SEC", 60),
			InitialEquity:   getEnvFloat("INITIAL_EQUITY", 100.0),
			Mode:            getEnv("MODE", "paper"),
			TradeEnabled:    getEnvBool("TRADE_ENABLED", false),
			MaxTradesPerDay: getEnvInt("MAX_TRADES_PER_DAY", 10),
			MaxDailyLossPct: getEnvFloat("MAX_DAILY_LOSS_PCT", 5.0),
			RiskPerTradePct: getEnvFloat("RISK_PER_TRADE_PCT", 1.0),
			MaxLeverage:     getEnvFloat("MAX_LEVERAGE", 1.0),
			Stream:          getEnvBool("MARKETDATA_STREAM", false),
			RiskDefaulted:   !hasRisk && !hasLoss && !hasCap && !hasLev,
		},
		Strategy: StrategyConfig{
			Name:            getEnv("STRATEGY_NAME", "ema_cross"),
			EmaFast:         getEnvInt("EMA_FAST", 12),
			EmaSlow:         getEnvInt("EMA_SLOW", 26),
			StopLossPct:     getEnvFloat("STOP_LOSS_PCT", 1.0),
			RRTakeProfit:    getEnvFloat("RR_TAKEPROFIT", 0),
			EmaTrend:        getEnvInt("EMA_TREND", 200),
			EmaPullbackFast: getEnvInt("EMA_PULLBACK_FAST", 20),
			EmaPullbackSlow: getEnvInt("EMA_PULLBACK_SLOW", 50),
			PullbackBandPct: getEnvFloat("PULLBACK_BAND_PCT", 0.0015),
			SwingLookback:   getEnvInt("SWING_LOOKBACK", 5),
			MaxHoldCandles:  getEnvInt("MAX_HOLD_CANDLES", 60),
			UseCandles:      getEnvBool("USE_CANDLES", false),
			CandleInterval:  getEnv("CANDLE_INTERVAL", "1m"),
			WindowSize:      getEnvInt("SWING_WINDOW_SIZE", 50),
		},
		Cost: CostConfig{
			FeeBps:      getEnvFloat("FEE_BPS", 8.0),
			SlippageBps: getEnvFloat("SLIPPAGE_BPS", 2.0),
		},
		Auth: AuthConfig{
			JWTSecret:            getEnv("JWT_SECRET", ""),
			OperatorPasswordHash: getEnv("OPERATOR_PASSWORD_HASH", ""),
		},
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
