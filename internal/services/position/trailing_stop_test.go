package position

import (
	"testing"

	"TradeFlow/internal/domain/models"
)

func TestTrailingNotActivatedBelowThreshold(t *testing.T) {
	m := NewTrailingStopManager(0.02, 0.01)
	m.Setup("BTC/USDT", 100, models.ActionBuy, 98)

	if upd := m.Update("BTC/USDT", 100.5); upd != nil {
		t.Fatalf("stop moved before activation: %+v", upd)
	}
	if stop, ok := m.CurrentStop("BTC/USDT"); !ok || stop != 98 {
		t.Fatalf("stop = %v, want the initial 98", stop)
	}
}

func TestTrailingActivatesAndRatchets(t *testing.T) {
	m := NewTrailingStopManager(0.02, 0.01)
	m.Setup("BTC/USDT", 100, models.ActionBuy, 98)

	upd := m.Update("BTC/USDT", 101)
	if upd == nil {
		t.Fatalf("expected the stop to move at the activation price")
	}
	if upd.OldStop != 98 || !almost(upd.NewStop, 98.98) {
		t.Fatalf("update = %+v, want 98 -> 98.98", upd)
	}

	// a pullback never loosens the stop
	if upd := m.Update("BTC/USDT", 100); upd != nil {
		t.Fatalf("stop loosened on a pullback: %+v", upd)
	}
	if stop, _ := m.CurrentStop("BTC/USDT"); !almost(stop, 98.98) {
		t.Fatalf("stop = %v, want 98.98", stop)
	}

	upd = m.Update("BTC/USDT", 102)
	if upd == nil || !almost(upd.NewStop, 99.96) {
		t.Fatalf("update = %+v, want stop 99.96", upd)
	}
	if upd.Updates != 2 {
		t.Fatalf("updates = %d, want 2", upd.Updates)
	}
}

func TestTrailingShortSide(t *testing.T) {
	m := NewTrailingStopManager(0.02, 0.01)
	m.Setup("BTC/USDT", 100, models.ActionSell, 102)

	if upd := m.Update("BTC/USDT", 99.5); upd != nil {
		t.Fatalf("stop moved before activation: %+v", upd)
	}
	upd := m.Update("BTC/USDT", 98)
	if upd == nil || !almost(upd.NewStop, 99.96) {
		t.Fatalf("update = %+v, want stop 99.96", upd)
	}
}

func TestTrailingStopHit(t *testing.T) {
	m := NewTrailingStopManager(0.02, 0.01)
	m.Setup("BTC/USDT", 100, models.ActionBuy, 98)

	if m.StopHit("BTC/USDT", 99) {
		t.Fatalf("price above the stop should not hit")
	}
	if !m.StopHit("BTC/USDT", 97.5) {
		t.Fatalf("price through the stop should hit")
	}
}

func TestTrailingUntracked(t *testing.T) {
	m := NewTrailingStopManager(0, 0)
	if m.Tracked("BTC/USDT") {
		t.Fatalf("nothing set up yet")
	}
	if upd := m.Update("BTC/USDT", 100); upd != nil {
		t.Fatalf("untracked update = %+v", upd)
	}
	if m.StopHit("BTC/USDT", 1) {
		t.Fatalf("untracked pair cannot hit a stop")
	}
	if state := m.Status("BTC/USDT"); state != nil {
		t.Fatalf("status = %+v, want nil", state)
	}
}

func TestTrailingClear(t *testing.T) {
	m := NewTrailingStopManager(0.02, 0.01)
	m.Setup("BTC/USDT", 100, models.ActionBuy, 98)
	m.Clear("BTC/USDT")
	if m.Tracked("BTC/USDT") {
		t.Fatalf("cleared pair still tracked")
	}
}

func almost(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-9
}
