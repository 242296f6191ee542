package position

import (
	"errors"
	"testing"

	"TradeFlow/internal/domain/models"
)

func ladder() []models.TPTarget {
	return []models.TPTarget{
		{Level: 1, Price: 105, AllocationPct: 60},
		{Level: 2, Price: 110, AllocationPct: 40},
	}
}

func TestSetupEmptyTargetsDisabled(t *testing.T) {
	m := NewTakeProfitManager()
	setup, err := m.Setup("BTC/USDT", models.ActionBuy, 1, nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if setup.Enabled {
		t.Fatalf("empty ladder should be disabled")
	}
}

func TestSetupAllocationOverflow(t *testing.T) {
	m := NewTakeProfitManager()
	_, err := m.Setup("BTC/USDT", models.ActionBuy, 1, []models.TPTarget{
		{Level: 1, Price: 105, AllocationPct: 60},
		{Level: 2, Price: 110, AllocationPct: 50},
	})
	if !errors.Is(err, ErrAllocationOverflow) {
		t.Fatalf("expected ErrAllocationOverflow, got %v", err)
	}
}

func TestSetupAmounts(t *testing.T) {
	m := NewTakeProfitManager()
	setup, err := m.Setup("BTC/USDT", models.ActionBuy, 0.5, ladder())
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if setup.Targets[0].Amount != 0.3 || setup.Targets[1].Amount != 0.2 {
		t.Fatalf("unexpected amounts %v/%v", setup.Targets[0].Amount, setup.Targets[1].Amount)
	}
}

func TestCheckHitsOneWay(t *testing.T) {
	m := NewTakeProfitManager()
	if _, err := m.Setup("BTC/USDT", models.ActionBuy, 1, ladder()); err != nil {
		t.Fatalf("setup: %v", err)
	}

	if hits := m.CheckHits("BTC/USDT", 104); hits != nil {
		t.Fatalf("no target should be hit below the first level, got %v", hits)
	}
	hits := m.CheckHits("BTC/USDT", 106)
	if len(hits) != 1 || hits[0].Level != 1 {
		t.Fatalf("expected the first target, got %v", hits)
	}
	// a hit flag never resets
	if again := m.CheckHits("BTC/USDT", 106); again != nil {
		t.Fatalf("already-hit target reported again: %v", again)
	}
	hits = m.CheckHits("BTC/USDT", 111)
	if len(hits) != 1 || hits[0].Level != 2 {
		t.Fatalf("expected the second target, got %v", hits)
	}
}

func TestCheckHitsShortDirection(t *testing.T) {
	m := NewTakeProfitManager()
	targets := []models.TPTarget{{Level: 1, Price: 95, AllocationPct: 100}}
	if _, err := m.Setup("BTC/USDT", models.ActionSell, 1, targets); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if hits := m.CheckHits("BTC/USDT", 96); hits != nil {
		t.Fatalf("short target should not trigger above its price")
	}
	if hits := m.CheckHits("BTC/USDT", 94); len(hits) != 1 {
		t.Fatalf("expected a hit at 94, got %v", hits)
	}
}

func TestMarkExecutedAndRemaining(t *testing.T) {
	m := NewTakeProfitManager()
	if _, err := m.Setup("BTC/USDT", models.ActionBuy, 1, ladder()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	m.CheckHits("BTC/USDT", 106)

	if !m.MarkExecuted("BTC/USDT", 105, "ord-9") {
		t.Fatalf("expected the hit target to accept the order id")
	}
	// an unhit target never accepts an execution
	if m.MarkExecuted("BTC/USDT", 110, "ord-10") {
		t.Fatalf("unhit target must not be marked executed")
	}

	rem := m.Remaining("BTC/USDT")
	if rem.ClosedPct != 60 || rem.RemainingPct != 40 {
		t.Fatalf("remaining = %+v", rem)
	}
	if rem.TargetsHit != 1 || rem.AllHit {
		t.Fatalf("remaining = %+v", rem)
	}
}

func TestNextTarget(t *testing.T) {
	m := NewTakeProfitManager()
	if _, err := m.Setup("BTC/USDT", models.ActionBuy, 1, ladder()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	m.CheckHits("BTC/USDT", 106)

	next := m.NextTarget("BTC/USDT")
	if next == nil || next.Level != 2 {
		t.Fatalf("next = %+v, want level 2", next)
	}

	m.CheckHits("BTC/USDT", 111)
	if next := m.NextTarget("BTC/USDT"); next != nil {
		t.Fatalf("all targets hit, next = %+v", next)
	}
}

func TestStatusAndClear(t *testing.T) {
	m := NewTakeProfitManager()
	if status := m.Status("ETH/USDT"); status.Enabled {
		t.Fatalf("untracked pair should report a disabled setup")
	}
	if _, err := m.Setup("ETH/USDT", models.ActionBuy, 1, ladder()); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if status := m.Status("ETH/USDT"); !status.Enabled || len(status.Targets) != 2 {
		t.Fatalf("status = %+v", status)
	}
	m.Clear("ETH/USDT")
	if status := m.Status("ETH/USDT"); status.Enabled {
		t.Fatalf("cleared pair should be untracked")
	}
	if rem := m.Remaining("ETH/USDT"); rem.RemainingPct != 100 {
		t.Fatalf("cleared pair remaining = %+v", rem)
	}
}
