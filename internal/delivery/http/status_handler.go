package http

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"pulsetrade/internal/domain"
	"pulsetrade/internal/middleware"
	"pulsetrade/internal/usecase"
)

// StatusHandler serves the read-only status API and the operator controls
type StatusHandler struct {
	engine       *usecase.EngineService
	events       domain.EventStore
	jwtSecret    string
	passwordHash string
}

func NewStatusHandler(engine *usecase.EngineService, events domain.EventStore, jwtSecret, passwordHash string) *StatusHandler {
	return &StatusHandler{
		engine:       engine,
		events:       events,
		jwtSecret:    jwtSecret,
		passwordHash: passwordHash,
	}
}

// GET /health
func (h *StatusHandler) Health(c echo.Context) error {
	return SuccessResponse(c, map[string]interface{}{
		"status":    "healthy",
		"service":   "pulsetrade-engine",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /api/status
func (h *StatusHandler) Status(c echo.Context) error {
	return SuccessResponse(c, h.engine.Snapshot())
}

// GET /api/events/recent?limit=N
func (h *StatusHandler) RecentEvents(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			return BadRequestResponse(c, "limit must be an integer between 1 and 500")
		}
		limit = n
	}

	events, err := h.events.GetRecent(c.Request().Context(), limit)
	if err != nil {
		return InternalErrorResponse(c, "failed to load events")
	}
	if events == nil {
		events = []domain.Event{}
	}
	return SuccessResponse(c, map[string]interface{}{"events": events})
}

// LoginRequest is the operator login payload
type LoginRequest struct {
	Password string `json:"password"`
}

// POST /api/auth/login
func (h *StatusHandler) Login(c echo.Context) error {
	if h.passwordHash == "" {
		return UnauthorizedResponse(c, "operator login is not configured")
	}

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "invalid request body")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.passwordHash), []byte(req.Password)); err != nil {
		return UnauthorizedResponse(c, "invalid password")
	}

	token, err := middleware.GenerateJWT(h.jwtSecret)
	if err != nil {
		return InternalErrorResponse(c, "failed to issue token")
	}
	return SuccessResponse(c, map[string]interface{}{"token": token})
}

// TradingControlRequest toggles new-entry processing
type TradingControlRequest struct {
	Enabled bool `json:"enabled"`
}

// POST /api/control/trading
func (h *StatusHandler) ControlTrading(c echo.Context) error {
	var req TradingControlRequest
	if err := c.Bind(&req); err != nil {
		return BadRequestResponse(c, "invalid request body")
	}
	h.engine.SetTradeEnabled(req.Enabled)
	return SuccessResponse(c, map[string]interface{}{"trade_enabled": h.engine.TradeEnabled()})
}
