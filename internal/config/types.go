package config

import "volcast/internal/engine"

// Config is the top-level configuration carrier.
type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Engine EngineConfig `mapstructure:"engine"`
	Data   DataConfig   `mapstructure:"data"`
	Replay ReplayConfig `mapstructure:"replay"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
	LogPath  string `mapstructure:"log_path"`
	HTTPAddr string `mapstructure:"http_addr"`
}

// EngineConfig mirrors engine.Settings plus the optional fixed seed.
type EngineConfig struct {
	RiskFreeRate          float64 `mapstructure:"risk_free_rate"`
	MaxPositionSize       float64 `mapstructure:"max_position_size"`
	StopLossPercent       float64 `mapstructure:"stop_loss_percent"`
	TakeProfitPercent     float64 `mapstructure:"take_profit_percent"`
	LookbackPeriod        int     `mapstructure:"lookback_period"`
	MonteCarloSimulations int     `mapstructure:"monte_carlo_simulations"`
	SimWorkers            int     `mapstructure:"sim_workers"`
	Seed                  uint64  `mapstructure:"seed"` // 0 draws a fresh seed
}

// Settings converts to the engine's parameter set.
func (e EngineConfig) Settings() engine.Settings {
	return engine.Settings{
		RiskFreeRate:      e.RiskFreeRate,
		MaxPositionSize:   e.MaxPositionSize,
		StopLossPercent:   e.StopLossPercent,
		TakeProfitPercent: e.TakeProfitPercent,
		LookbackPeriod:    e.LookbackPeriod,
		MonteCarloSims:    e.MonteCarloSimulations,
		SimWorkers:        e.SimWorkers,
	}
}

type DataConfig struct {
	Root string `mapstructure:"root"`
}

type ReplayConfig struct {
	ResultsRoot   string  `mapstructure:"results_root"`
	ChartDir      string  `mapstructure:"chart_dir"`
	MaxConcurrent int     `mapstructure:"max_concurrent"`
	InitialEquity float64 `mapstructure:"initial_equity"`
	LotStep       float64 `mapstructure:"lot_step"`
}
