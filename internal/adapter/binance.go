package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"pulsetrade/internal/domain"
)

const defaultBaseURL = "https://api.binance.com"

// BinanceClient fetches market data from the Binance REST API. Depending on
// configuration it delivers either last-trade prices or the most recent
// closed candle.
type BinanceClient struct {
	httpClient *http.Client
	baseURL    string
	useCandles bool
	interval   string
}

func NewBinanceClient(baseURL string, useCandles bool, candleInterval string) *BinanceClient {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &BinanceClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		useCandles: useCandles,
		interval:   candleInterval,
	}
}

// Fetch returns one observation for the symbol. Errors wrap
// domain.ErrDataUnavailable so the engine can skip the cycle.
func (c *BinanceClient) Fetch(ctx context.Context, symbol string) (domain.Observation, error) {
	if c.useCandles {
		candle, err := c.fetchLastClosedCandle(ctx, symbol)
		if err != nil {
			return domain.Observation{}, err
		}
		return domain.Observation{Price: candle.Close, Candle: candle}, nil
	}
	price, err := c.fetchPrice(ctx, symbol)
	if err != nil {
		return domain.Observation{}, err
	}
	return domain.Observation{Price: price}, nil
}

func (c *BinanceClient) fetchPrice(ctx context.Context, symbol string) (float64, error) {
	body, err := c.get(ctx, "/api/v3/ticker/price", url.Values{"symbol": {symbol}})
	if err != nil {
		return 0, err
	}

	var ticker struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("%w: decode ticker: %v", domain.ErrDataUnavailable, err)
	}
	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse price %q: %v", domain.ErrDataUnavailable, ticker.Price, err)
	}
	return price, nil
}

// fetchLastClosedCandle asks for the two most recent klines and returns the
// first one: with limit=2 the last entry is the still-open candle.
func (c *BinanceClient) fetchLastClosedCandle(ctx context.Context, symbol string) (*domain.Candle, error) {
	body, err := c.get(ctx, "/api/v3/klines", url.Values{
		"symbol":   {symbol},
		"interval": {c.interval},
		"limit":    {"2"},
	})
	if err != nil {
		return nil, err
	}

	// kline rows are positional arrays of mixed numbers and strings
	var rows [][]any
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: decode klines: %v", domain.ErrDataUnavailable, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: insufficient kline history (%d rows)", domain.ErrDataUnavailable, len(rows))
	}

	candle, err := parseKlineRow(rows[len(rows)-2])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	return candle, nil
}

func (c *BinanceClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", domain.ErrDataUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", domain.ErrDataUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status=%d body=%s", domain.ErrDataUnavailable, resp.StatusCode, string(body))
	}
	return body, nil
}

func parseKlineRow(row []any) (*domain.Candle, error) {
	if len(row) < 7 {
		return nil, fmt.Errorf("short kline row (%d fields)", len(row))
	}
	openTime, ok := row[0].(float64)
	if !ok {
		return nil, fmt.Errorf("unexpected open time %T", row[0])
	}
	closeTime, ok := row[6].(float64)
	if !ok {
		return nil, fmt.Errorf("unexpected close time %T", row[6])
	}

	vals := make([]float64, 5)
	for i, idx := range []int{1, 2, 3, 4, 5} { // open, high, low, close, volume
		s, ok := row[idx].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected kline field %T at %d", row[idx], idx)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("parse kline field %q: %v", s, err)
		}
		vals[i] = f
	}

	return &domain.Candle{
		OpenTime:  time.UnixMilli(int64(openTime)).UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
		CloseTime: time.UnixMilli(int64(closeTime)).UTC(),
	}, nil
}
