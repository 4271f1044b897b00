package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"pulsetrade/internal/domain"
)

const defaultStreamURL = "wss://stream.binance.com:9443/ws"

// KlineStream subscribes to the Binance kline stream and delivers only
// closed candles on its channel. It reconnects with backoff until the
// context is cancelled.
type KlineStream struct {
	url      string
	symbol   string
	interval string
	out      chan domain.Candle
}

func NewKlineStream(streamURL, symbol, interval string) *KlineStream {
	if streamURL == "" {
		streamURL = defaultStreamURL
	}
	return &KlineStream{
		url:      streamURL,
		symbol:   symbol,
		interval: interval,
		out:      make(chan domain.Candle, 16),
	}
}

// Candles returns the closed-candle channel. It is closed when Run returns.
func (s *KlineStream) Candles() <-chan domain.Candle {
	return s.out
}

// Run connects and pumps candles until ctx is cancelled
func (s *KlineStream) Run(ctx context.Context) {
	defer close(s.out)

	backoff := time.Second
	for {
		if err := s.pump(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[kline-stream] connection lost: %v (retrying in %s)", err, backoff)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (s *KlineStream) pump(ctx context.Context) error {
	streamName := fmt.Sprintf("%s@kline_%s", strings.ToLower(s.symbol), s.interval)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, fmt.Sprintf("%s/%s", s.url, streamName), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()
	log.Printf("[kline-stream] connected to %s", streamName)

	// unblock ReadMessage when the context is cancelled
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		candle, closed, err := parseKlineEvent(raw)
		if err != nil {
			log.Printf("[kline-stream] parse error: %v", err)
			continue
		}
		if !closed {
			continue
		}
		select {
		case s.out <- candle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// binanceKlineEvent is the payload of a kline stream message
type binanceKlineEvent struct {
	Event string `json:"e"`
	Kline struct {
		OpenTime  int64  `json:"t"`
		CloseTime int64  `json:"T"`
		Open      string `json:"o"`
		High      string `json:"h"`
		Low       string `json:"l"`
		Close     string `json:"c"`
		Volume    string `json:"v"`
		Closed    bool   `json:"x"`
	} `json:"k"`
}

func parseKlineEvent(raw []byte) (domain.Candle, bool, error) {
	var ev binanceKlineEvent
	if err := json.Unmarshal(raw, &ev); err != nil {
		return domain.Candle{}, false, err
	}
	if ev.Event != "kline" {
		return domain.Candle{}, false, nil
	}

	vals := make([]float64, 5)
	for i, s := range []string{ev.Kline.Open, ev.Kline.High, ev.Kline.Low, ev.Kline.Close, ev.Kline.Volume} {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return domain.Candle{}, false, fmt.Errorf("parse kline field %q: %w", s, err)
		}
		vals[i] = f
	}

	return domain.Candle{
		OpenTime:  time.UnixMilli(ev.Kline.OpenTime).UTC(),
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
		CloseTime: time.UnixMilli(ev.Kline.CloseTime).UTC(),
	}, ev.Kline.Closed, nil
}
