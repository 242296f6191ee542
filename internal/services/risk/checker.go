package risk

import (
	"fmt"
	"math"

	"TradeFlow/internal/domain/models"
)

// Checker validates a proposed trade against account-level limits.
type Checker struct {
	MaxPositionSize     float64
	MaxPositionValuePct float64
	MaxOpenTrades       int
	DailyLossLimitPct   float64
	MaxExposurePct      float64
}

// NewChecker applies the standard limits: 20% per position, 5 open
// trades, 5% daily loss, 50% total exposure.
func NewChecker() *Checker {
	return &Checker{
		MaxPositionSize:     1.0,
		MaxPositionValuePct: 0.2,
		MaxOpenTrades:       5,
		DailyLossLimitPct:   0.05,
		MaxExposurePct:      0.5,
	}
}

// CheckPositionSize limits both absolute size and position value as a
// share of the account.
func (c *Checker) CheckPositionSize(size, value, balance float64) models.CheckResult {
	res := models.CheckResult{Name: "position_size", Approved: true}

	if size > c.MaxPositionSize {
		res.Approved = false
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("position size (%.4f) exceeds maximum (%v)", size, c.MaxPositionSize))
	}

	pct := value / balance
	res.Utilization = pct / c.MaxPositionValuePct
	if pct > c.MaxPositionValuePct {
		res.Approved = false
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("position value (%.1f%%) exceeds maximum (%.1f%%)", pct*100, c.MaxPositionValuePct*100))
	}
	return res
}

// CheckOpenTrades rejects when the open-trade slots are exhausted.
func (c *Checker) CheckOpenTrades(open int) models.CheckResult {
	res := models.CheckResult{
		Name:        "open_trades",
		Approved:    true,
		Utilization: float64(open) / float64(c.MaxOpenTrades),
	}
	if open >= c.MaxOpenTrades {
		res.Approved = false
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("maximum open trades reached (%d/%d)", open, c.MaxOpenTrades))
	}
	return res
}

// CheckDailyLoss rejects at the daily loss limit and warns at 80% of it.
// Positive daily P&L counts as zero loss.
func (c *Checker) CheckDailyLoss(dailyPnL, balance float64) models.CheckResult {
	lossPct := 0.0
	if dailyPnL < 0 {
		lossPct = math.Abs(dailyPnL / balance)
	}

	res := models.CheckResult{
		Name:        "daily_loss",
		Approved:    true,
		Utilization: lossPct / c.DailyLossLimitPct,
	}
	switch {
	case lossPct >= c.DailyLossLimitPct:
		res.Approved = false
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("daily loss limit breached (%.2f%% >= %.2f%%)", lossPct*100, c.DailyLossLimitPct*100))
	case lossPct >= c.DailyLossLimitPct*0.8:
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("approaching daily loss limit (%.2f%% / %.2f%%)", lossPct*100, c.DailyLossLimitPct*100))
	}
	return res
}

// CheckTotalExposure rejects when the new position would push total
// exposure over the cap and warns at 90% of it.
func (c *Checker) CheckTotalExposure(currentExposure, newValue, balance float64) models.CheckResult {
	pct := (currentExposure + newValue) / balance

	res := models.CheckResult{
		Name:        "total_exposure",
		Approved:    true,
		Utilization: pct / c.MaxExposurePct,
	}
	switch {
	case pct > c.MaxExposurePct:
		res.Approved = false
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("total exposure (%.2f%%) exceeds maximum (%.2f%%)", pct*100, c.MaxExposurePct*100))
	case pct > c.MaxExposurePct*0.9:
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("approaching exposure limit (%.2f%% / %.2f%%)", pct*100, c.MaxExposurePct*100))
	}
	return res
}

// ValidateTrade runs all four checks. Approval requires every check to
// pass; the risk score is the unweighted mean of the utilization ratios
// and is informational only.
func (c *Checker) ValidateTrade(size, value float64, account *models.AccountState) *models.RiskValidation {
	checks := []models.CheckResult{
		c.CheckPositionSize(size, value, account.Balance),
		c.CheckOpenTrades(account.OpenTrades),
		c.CheckDailyLoss(account.DailyPnL, account.Balance),
		c.CheckTotalExposure(account.CurrentExposure, value, account.Balance),
	}

	approved := true
	score := 0.0
	var warnings []string
	for _, check := range checks {
		approved = approved && check.Approved
		score += check.Utilization
		warnings = append(warnings, check.Warnings...)
	}

	return &models.RiskValidation{
		Approved:  approved,
		RiskScore: round3(score / float64(len(checks))),
		Checks:    checks,
		Warnings:  warnings,
	}
}
