package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/domain/repository"
	"TradeFlow/pkg/cache"
)

// Service keeps the rolling candle window per pair and timeframe in the
// layered cache, so a single-bar trigger can be promoted to the full
// series the indicators need.
type Service struct {
	cache   cache.Service
	maxBars int
	ttl     time.Duration

	mu sync.Mutex
}

// New creates a candle history store. maxBars bounds the window kept
// per pair/timeframe.
func New(c cache.Service, maxBars int, ttl time.Duration) *Service {
	if maxBars <= 0 {
		maxBars = 500
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{cache: c, maxBars: maxBars, ttl: ttl}
}

// Append adds a closed bar to the window. A bar with a timestamp the
// window already holds replaces it, so replayed webhooks stay
// idempotent.
func (s *Service) Append(ctx context.Context, pair string, tf repository.Timeframe, c models.Candle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.key(pair, tf)
	window, err := s.load(ctx, key)
	if err != nil {
		return err
	}

	replaced := false
	for i := range window {
		if window[i].Timestamp == c.Timestamp {
			window[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		window = append(window, c)
	}
	if len(window) > s.maxBars {
		window = window[len(window)-s.maxBars:]
	}

	if err := s.cache.Set(ctx, key, window, s.ttl); err != nil {
		return fmt.Errorf("store candle window %s: %w", key, err)
	}
	return nil
}

// Latest returns up to limit most recent bars, oldest first.
func (s *Service) Latest(ctx context.Context, pair string, tf repository.Timeframe, limit int) ([]models.Candle, error) {
	window, err := s.load(ctx, s.key(pair, tf))
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(window) > limit {
		window = window[len(window)-limit:]
	}
	return window, nil
}

func (s *Service) load(ctx context.Context, key string) ([]models.Candle, error) {
	var window []models.Candle
	if err := s.cache.Get(ctx, key, &window); err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return nil, nil
		}
		return nil, fmt.Errorf("load candle window %s: %w", key, err)
	}
	return window, nil
}

func (s *Service) key(pair string, tf repository.Timeframe) string {
	return cache.Key("candles", pair, string(tf))
}
