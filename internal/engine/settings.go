package engine

import "fmt"

// Settings carries the tunable parameters of the engine. MaxPositionSize is
// recorded for sizing advice only; the engine never enforces it (sizing
// belongs to the order-execution layer).
type Settings struct {
	RiskFreeRate      float64 `json:"risk_free_rate"`
	MaxPositionSize   float64 `json:"max_position_size"`
	StopLossPercent   float64 `json:"stop_loss_percent"`
	TakeProfitPercent float64 `json:"take_profit_percent"`
	LookbackPeriod    int     `json:"lookback_period"`
	MonteCarloSims    int     `json:"monte_carlo_simulations"`
	SimWorkers        int     `json:"sim_workers"` // 0 = one worker per CPU
}

func DefaultSettings() Settings {
	return Settings{
		RiskFreeRate:      0.02,
		MaxPositionSize:   0.10,
		StopLossPercent:   0.05,
		TakeProfitPercent: 0.15,
		LookbackPeriod:    252,
		MonteCarloSims:    1000,
	}
}

func (s Settings) Validate() error {
	if s.LookbackPeriod <= 0 {
		return fmt.Errorf("lookback_period must be > 0, got %d", s.LookbackPeriod)
	}
	if s.MonteCarloSims <= 0 {
		return fmt.Errorf("monte_carlo_simulations must be > 0, got %d", s.MonteCarloSims)
	}
	if s.StopLossPercent <= 0 {
		return fmt.Errorf("stop_loss_percent must be > 0, got %v", s.StopLossPercent)
	}
	if s.TakeProfitPercent <= 0 {
		return fmt.Errorf("take_profit_percent must be > 0, got %v", s.TakeProfitPercent)
	}
	if s.MaxPositionSize <= 0 || s.MaxPositionSize > 1 {
		return fmt.Errorf("max_position_size must be in (0,1], got %v", s.MaxPositionSize)
	}
	if s.SimWorkers < 0 {
		return fmt.Errorf("sim_workers must be >= 0, got %d", s.SimWorkers)
	}
	return nil
}
