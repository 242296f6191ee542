package position

import (
	"errors"
	"math"
	"sync"
	"time"

	"TradeFlow/internal/domain/models"
)

// ErrAllocationOverflow is returned when a target ladder allocates more
// than the whole position.
var ErrAllocationOverflow = errors.New("take-profit allocations exceed 100%")

// TakeProfitManager tracks partial-exit ladders per pair. Hit flags are
// one-way: once a target is hit it stays hit.
type TakeProfitManager struct {
	mu      sync.Mutex
	ladders map[string]*models.TakeProfitSetup
}

// NewTakeProfitManager creates an empty manager.
func NewTakeProfitManager() *TakeProfitManager {
	return &TakeProfitManager{ladders: make(map[string]*models.TakeProfitSetup)}
}

// Setup registers a target ladder for a position. An empty target list
// disables take-profit tracking for the pair.
func (m *TakeProfitManager) Setup(pair string, action models.Action, positionSize float64, targets []models.TPTarget) (*models.TakeProfitSetup, error) {
	if len(targets) == 0 {
		return &models.TakeProfitSetup{
			Pair:    pair,
			Enabled: false,
			Reason:  "no take-profit levels provided",
		}, nil
	}

	totalAlloc := 0.0
	for _, t := range targets {
		totalAlloc += t.AllocationPct
	}
	if totalAlloc > 100+1e-9 {
		return nil, ErrAllocationOverflow
	}

	setup := &models.TakeProfitSetup{
		Pair:      pair,
		Enabled:   true,
		Action:    action,
		CreatedAt: time.Now().UTC(),
		Targets:   make([]models.TakeProfitTarget, len(targets)),
	}
	for i, t := range targets {
		setup.Targets[i] = models.TakeProfitTarget{
			Level:         t.Level,
			Price:         t.Price,
			AllocationPct: t.AllocationPct,
			Amount:        round6(positionSize * t.AllocationPct / 100),
		}
	}

	m.mu.Lock()
	m.ladders[pair] = setup
	m.mu.Unlock()

	return setup, nil
}

// CheckHits marks newly reached targets and returns them. Long targets
// trigger at or above their price, short targets at or below.
func (m *TakeProfitManager) CheckHits(pair string, currentPrice float64) []models.TakeProfitTarget {
	m.mu.Lock()
	defer m.mu.Unlock()

	setup, ok := m.ladders[pair]
	if !ok || !setup.Enabled {
		return nil
	}

	var hits []models.TakeProfitTarget
	now := time.Now().UTC()
	for i := range setup.Targets {
		t := &setup.Targets[i]
		if t.Hit {
			continue
		}
		reached := false
		switch setup.Action {
		case models.ActionBuy:
			reached = currentPrice >= t.Price
		case models.ActionSell:
			reached = currentPrice <= t.Price
		}
		if reached {
			t.Hit = true
			t.HitAt = &now
			hits = append(hits, *t)
		}
	}
	return hits
}

// MarkExecuted attaches the exit order ID to a hit target.
func (m *TakeProfitManager) MarkExecuted(pair string, price float64, orderID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	setup, ok := m.ladders[pair]
	if !ok {
		return false
	}
	for i := range setup.Targets {
		t := &setup.Targets[i]
		if t.Hit && t.Price == price && t.OrderID == "" {
			t.OrderID = orderID
			return true
		}
	}
	return false
}

// Remaining reports how much of the position is left after executed
// partial exits.
func (m *TakeProfitManager) Remaining(pair string) models.RemainingPosition {
	m.mu.Lock()
	defer m.mu.Unlock()

	setup, ok := m.ladders[pair]
	if !ok {
		return models.RemainingPosition{Pair: pair, RemainingPct: 100}
	}

	closed := 0.0
	executed := 0
	for _, t := range setup.Targets {
		if t.OrderID != "" {
			closed += t.AllocationPct
			executed++
		}
	}
	return models.RemainingPosition{
		Pair:         pair,
		RemainingPct: 100 - closed,
		ClosedPct:    closed,
		TargetsHit:   executed,
		TotalTargets: len(setup.Targets),
		AllHit:       executed == len(setup.Targets),
	}
}

// NextTarget returns the first unhit target, or nil when none remain.
func (m *TakeProfitManager) NextTarget(pair string) *models.TakeProfitTarget {
	m.mu.Lock()
	defer m.mu.Unlock()

	setup, ok := m.ladders[pair]
	if !ok {
		return nil
	}
	for _, t := range setup.Targets {
		if !t.Hit {
			out := t
			return &out
		}
	}
	return nil
}

// Status returns a snapshot of the ladder, or a disabled setup when the
// pair is untracked.
func (m *TakeProfitManager) Status(pair string) *models.TakeProfitSetup {
	m.mu.Lock()
	defer m.mu.Unlock()

	setup, ok := m.ladders[pair]
	if !ok {
		return &models.TakeProfitSetup{Pair: pair, Enabled: false}
	}
	out := *setup
	out.Targets = append([]models.TakeProfitTarget(nil), setup.Targets...)
	return &out
}

// Clear drops the ladder for a pair.
func (m *TakeProfitManager) Clear(pair string) {
	m.mu.Lock()
	delete(m.ladders, pair)
	m.mu.Unlock()
}

func round6(v float64) float64 { return math.Round(v*1e6) / 1e6 }
