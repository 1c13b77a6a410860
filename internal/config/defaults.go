package config

const (
	defaultAppLogLevel      = "info"
	defaultAppHTTPAddr      = ":9980"
	defaultDataRoot         = "data/candles"
	defaultReplayResults    = "data/replay"
	defaultReplayChartDir   = "data/charts"
	defaultReplayConcurrent = 2
	defaultReplayEquity     = 100_000.0
	defaultRiskFreeRate     = 0.02
	defaultMaxPositionSize  = 0.10
	defaultStopLossPct      = 0.05
	defaultTakeProfitPct    = 0.15
	defaultLookbackPeriod   = 252
	defaultMonteCarloSims   = 1000
)

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = defaultAppLogLevel
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultAppHTTPAddr
	}
	if c.Data.Root == "" {
		c.Data.Root = defaultDataRoot
	}
	if c.Replay.ResultsRoot == "" {
		c.Replay.ResultsRoot = defaultReplayResults
	}
	if c.Replay.ChartDir == "" {
		c.Replay.ChartDir = defaultReplayChartDir
	}
	if c.Replay.MaxConcurrent <= 0 {
		c.Replay.MaxConcurrent = defaultReplayConcurrent
	}
	if c.Replay.InitialEquity <= 0 {
		c.Replay.InitialEquity = defaultReplayEquity
	}
	if c.Engine.RiskFreeRate == 0 {
		c.Engine.RiskFreeRate = defaultRiskFreeRate
	}
	if c.Engine.MaxPositionSize == 0 {
		c.Engine.MaxPositionSize = defaultMaxPositionSize
	}
	if c.Engine.StopLossPercent == 0 {
		c.Engine.StopLossPercent = defaultStopLossPct
	}
	if c.Engine.TakeProfitPercent == 0 {
		c.Engine.TakeProfitPercent = defaultTakeProfitPct
	}
	if c.Engine.LookbackPeriod == 0 {
		c.Engine.LookbackPeriod = defaultLookbackPeriod
	}
	if c.Engine.MonteCarloSimulations == 0 {
		c.Engine.MonteCarloSimulations = defaultMonteCarloSims
	}
}
