package risk

import (
	"testing"

	"TradeFlow/internal/domain/models"
)

func TestCheckPositionSizeApproved(t *testing.T) {
	c := NewChecker()
	res := c.CheckPositionSize(0.5, 1000, 10000)
	if !res.Approved {
		t.Fatalf("expected approval, warnings %v", res.Warnings)
	}
	// 10% of the account against the 20% cap
	if !almostEqual(res.Utilization, 0.5) {
		t.Fatalf("utilization = %v, want 0.5", res.Utilization)
	}
}

func TestCheckPositionSizeTooLarge(t *testing.T) {
	c := NewChecker()
	res := c.CheckPositionSize(1.5, 1000, 10000)
	if res.Approved {
		t.Fatalf("oversized position should be rejected")
	}
	if len(res.Warnings) == 0 {
		t.Fatalf("expected a warning")
	}
}

func TestCheckPositionValueTooLarge(t *testing.T) {
	c := NewChecker()
	res := c.CheckPositionSize(0.5, 3000, 10000)
	if res.Approved {
		t.Fatalf("30%% position value should be rejected")
	}
}

func TestCheckOpenTrades(t *testing.T) {
	c := NewChecker()
	if res := c.CheckOpenTrades(2); !res.Approved || !almostEqual(res.Utilization, 0.4) {
		t.Fatalf("got approved=%v utilization=%v", res.Approved, res.Utilization)
	}
	if res := c.CheckOpenTrades(5); res.Approved {
		t.Fatalf("full slots should be rejected")
	}
}

func TestCheckDailyLossBreached(t *testing.T) {
	c := NewChecker()
	res := c.CheckDailyLoss(-600, 10000)
	if res.Approved {
		t.Fatalf("6%% daily loss should be rejected")
	}
}

func TestCheckDailyLossWarning(t *testing.T) {
	c := NewChecker()
	// 4.5% loss is inside the limit but past the 80% warning line
	res := c.CheckDailyLoss(-450, 10000)
	if !res.Approved {
		t.Fatalf("expected approval")
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestCheckDailyLossProfitIsZeroLoss(t *testing.T) {
	c := NewChecker()
	res := c.CheckDailyLoss(500, 10000)
	if !res.Approved || res.Utilization != 0 {
		t.Fatalf("got approved=%v utilization=%v", res.Approved, res.Utilization)
	}
}

func TestCheckTotalExposureBreached(t *testing.T) {
	c := NewChecker()
	res := c.CheckTotalExposure(4000, 1500, 10000)
	if res.Approved {
		t.Fatalf("55%% exposure should be rejected")
	}
}

func TestCheckTotalExposureWarning(t *testing.T) {
	c := NewChecker()
	res := c.CheckTotalExposure(3200, 1400, 10000)
	if !res.Approved {
		t.Fatalf("expected approval")
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", res.Warnings)
	}
}

func TestValidateTradeApproved(t *testing.T) {
	c := NewChecker()
	account := &models.AccountState{
		Balance:         10000,
		OpenTrades:      1,
		DailyPnL:        -100,
		CurrentExposure: 2000,
	}
	v := c.ValidateTrade(0.5, 1000, account)
	if !v.Approved {
		t.Fatalf("expected approval, warnings %v", v.Warnings)
	}
	if len(v.Checks) != 4 {
		t.Fatalf("expected 4 checks, got %d", len(v.Checks))
	}
	// mean of 0.5, 0.2, 0.2 and 0.6
	if !almostEqual(v.RiskScore, 0.375) {
		t.Fatalf("risk score = %v, want 0.375", v.RiskScore)
	}
}

func TestValidateTradeRejected(t *testing.T) {
	c := NewChecker()
	account := &models.AccountState{
		Balance:         10000,
		OpenTrades:      5,
		DailyPnL:        -600,
		CurrentExposure: 5000,
	}
	v := c.ValidateTrade(0.5, 1000, account)
	if v.Approved {
		t.Fatalf("expected rejection")
	}
	if len(v.Warnings) == 0 {
		t.Fatalf("expected warnings")
	}
}
