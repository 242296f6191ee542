package history

import (
	"context"
	"testing"
	"time"

	"TradeFlow/internal/domain/models"
	"TradeFlow/internal/domain/repository"
	"TradeFlow/pkg/cache"
)

func bar(ts int64, close float64) models.Candle {
	return models.Candle{
		Timestamp: ts,
		Open:      close,
		High:      close + 1,
		Low:       close - 1,
		Close:     close,
		Volume:    10,
	}
}

func newTestService(maxBars int) *Service {
	return New(cache.NewMemoryCache(), maxBars, time.Hour)
}

func TestAppendAndLatestRoundTrip(t *testing.T) {
	s := newTestService(100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, "BTC/USDT", repository.TF1h, bar(int64(1700000000+i*3600), 100+float64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	window, err := s.Latest(ctx, "BTC/USDT", repository.TF1h, 0)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(window) != 5 {
		t.Fatalf("window = %d bars, want 5", len(window))
	}
	if window[0].Close != 100 || window[4].Close != 104 {
		t.Fatalf("window order wrong: first %v last %v", window[0].Close, window[4].Close)
	}
}

func TestAppendReplacesSameTimestamp(t *testing.T) {
	s := newTestService(100)
	ctx := context.Background()

	if err := s.Append(ctx, "BTC/USDT", repository.TF1h, bar(1700000000, 100)); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.Append(ctx, "BTC/USDT", repository.TF1h, bar(1700000000, 105)); err != nil {
		t.Fatalf("replay append: %v", err)
	}

	window, err := s.Latest(ctx, "BTC/USDT", repository.TF1h, 0)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(window) != 1 {
		t.Fatalf("replayed bar duplicated, window = %d", len(window))
	}
	if window[0].Close != 105 {
		t.Fatalf("close = %v, want the replayed 105", window[0].Close)
	}
}

func TestAppendTrimsToMaxBars(t *testing.T) {
	s := newTestService(3)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, "BTC/USDT", repository.TF1h, bar(int64(1700000000+i*3600), 100+float64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	window, err := s.Latest(ctx, "BTC/USDT", repository.TF1h, 0)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(window) != 3 {
		t.Fatalf("window = %d bars, want the 3 newest", len(window))
	}
	if window[0].Close != 102 {
		t.Fatalf("oldest surviving close = %v, want 102", window[0].Close)
	}
}

func TestLatestLimit(t *testing.T) {
	s := newTestService(100)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := s.Append(ctx, "BTC/USDT", repository.TF1h, bar(int64(1700000000+i*3600), 100+float64(i))); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	window, err := s.Latest(ctx, "BTC/USDT", repository.TF1h, 2)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(window) != 2 || window[0].Close != 103 || window[1].Close != 104 {
		t.Fatalf("window = %+v, want closes 103,104", window)
	}
}

func TestLatestUnknownPair(t *testing.T) {
	s := newTestService(100)

	window, err := s.Latest(context.Background(), "ETH/USDT", repository.TF1h, 10)
	if err != nil {
		t.Fatalf("a cache miss is not an error, got %v", err)
	}
	if window != nil {
		t.Fatalf("window = %+v, want nil", window)
	}
}

func TestTimeframesAreIsolated(t *testing.T) {
	s := newTestService(100)
	ctx := context.Background()

	if err := s.Append(ctx, "BTC/USDT", repository.TF1h, bar(1700000000, 100)); err != nil {
		t.Fatalf("append 1h: %v", err)
	}
	if err := s.Append(ctx, "BTC/USDT", repository.TF5m, bar(1700000000, 200)); err != nil {
		t.Fatalf("append 5m: %v", err)
	}

	hourly, err := s.Latest(ctx, "BTC/USDT", repository.TF1h, 0)
	if err != nil {
		t.Fatalf("latest 1h: %v", err)
	}
	if len(hourly) != 1 || hourly[0].Close != 100 {
		t.Fatalf("1h window = %+v", hourly)
	}
}
