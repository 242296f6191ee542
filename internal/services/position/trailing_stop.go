package position

import (
	"sync"
	"time"

	"TradeFlow/internal/domain/models"
)

// TrailingStopManager maintains tightening-only trailing stops per
// pair. Stops activate once price moves a profit threshold in the
// trade's favor and from then on ratchet with the extreme price.
type TrailingStopManager struct {
	mu            sync.Mutex
	distancePct   float64
	activationPct float64
	stops         map[string]*models.TrailingStopState
}

// NewTrailingStopManager trails 2% behind price and activates after 1%
// profit by default. Both arguments are fractions.
func NewTrailingStopManager(distancePct, activationPct float64) *TrailingStopManager {
	if distancePct == 0 {
		distancePct = 0.02
	}
	if activationPct == 0 {
		activationPct = 0.01
	}
	return &TrailingStopManager{
		distancePct:   distancePct,
		activationPct: activationPct,
		stops:         make(map[string]*models.TrailingStopState),
	}
}

// Setup registers a trailing stop for a freshly opened position.
func (m *TrailingStopManager) Setup(pair string, entryPrice float64, action models.Action, initialStop float64) *models.TrailingStopState {
	activation := entryPrice * (1 - m.activationPct)
	if action == models.ActionBuy {
		activation = entryPrice * (1 + m.activationPct)
	}

	now := time.Now().UTC()
	state := &models.TrailingStopState{
		Pair:            pair,
		Action:          action,
		EntryPrice:      entryPrice,
		CurrentStop:     initialStop,
		ExtremePrice:    entryPrice,
		DistancePct:     m.distancePct,
		ActivationPrice: activation,
		CreatedAt:       now,
		LastUpdate:      now,
	}

	m.mu.Lock()
	m.stops[pair] = state
	m.mu.Unlock()

	out := *state
	return &out
}

// Update feeds a price tick to the stop. Returns the adjustment when
// the stop tightened, nil otherwise. The stop never loosens.
func (m *TrailingStopManager) Update(pair string, currentPrice float64) *models.TrailingStopUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.stops[pair]
	if !ok {
		return nil
	}

	if !state.Activated {
		switch state.Action {
		case models.ActionBuy:
			state.Activated = currentPrice >= state.ActivationPrice
		case models.ActionSell:
			state.Activated = currentPrice <= state.ActivationPrice
		}
		if !state.Activated {
			return nil
		}
	}

	var newStop float64
	switch state.Action {
	case models.ActionBuy:
		if currentPrice <= state.ExtremePrice {
			return nil
		}
		state.ExtremePrice = currentPrice
		newStop = currentPrice * (1 - state.DistancePct)
		if newStop <= state.CurrentStop {
			return nil
		}
	case models.ActionSell:
		if currentPrice >= state.ExtremePrice {
			return nil
		}
		state.ExtremePrice = currentPrice
		newStop = currentPrice * (1 + state.DistancePct)
		if newStop >= state.CurrentStop {
			return nil
		}
	default:
		return nil
	}

	old := state.CurrentStop
	state.CurrentStop = newStop
	state.Updates++
	state.LastUpdate = time.Now().UTC()

	return &models.TrailingStopUpdate{
		Pair:         pair,
		OldStop:      old,
		NewStop:      newStop,
		CurrentPrice: currentPrice,
		ExtremePrice: state.ExtremePrice,
		Updates:      state.Updates,
	}
}

// StopHit reports whether the current price has crossed the stop.
func (m *TrailingStopManager) StopHit(pair string, currentPrice float64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.stops[pair]
	if !ok {
		return false
	}
	if state.Action == models.ActionBuy {
		return currentPrice <= state.CurrentStop
	}
	return currentPrice >= state.CurrentStop
}

// CurrentStop returns the active stop price for a pair.
func (m *TrailingStopManager) CurrentStop(pair string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.stops[pair]
	if !ok {
		return 0, false
	}
	return state.CurrentStop, true
}

// Status returns a snapshot of the trailing state, nil if untracked.
func (m *TrailingStopManager) Status(pair string) *models.TrailingStopState {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, ok := m.stops[pair]
	if !ok {
		return nil
	}
	out := *state
	return &out
}

// Tracked reports whether a trailing stop exists for the pair.
func (m *TrailingStopManager) Tracked(pair string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.stops[pair]
	return ok
}

// Clear drops the trailing stop for a pair.
func (m *TrailingStopManager) Clear(pair string) {
	m.mu.Lock()
	delete(m.stops, pair)
	m.mu.Unlock()
}
