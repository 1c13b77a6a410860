// Package replay drives stored candles through a fresh engine instance and
// books the resulting paper trades, producing an auditable run record.
package replay

import "time"

const (
	RunStatusPending = "pending"
	RunStatusRunning = "running"
	RunStatusDone    = "done"
	RunStatusFailed  = "failed"
)

// RunRequest describes one replay job.
type RunRequest struct {
	Symbol      string  `json:"symbol"`
	Timeframe   string  `json:"timeframe"`
	StartTS     int64   `json:"start_ts"`
	EndTS       int64   `json:"end_ts"`
	Seed        uint64  `json:"seed,omitempty"`         // 0 draws a fresh seed
	MinStrength float64 `json:"min_strength,omitempty"` // entry filter on buy strength
	Notes       string  `json:"notes,omitempty"`
}

// RunStats summarizes the outcome of a finished run.
type RunStats struct {
	FinalEquity    float64   `json:"final_equity"`
	Profit         float64   `json:"profit"`
	ReturnPct      float64   `json:"return_pct"`
	WinRate        float64   `json:"win_rate"`
	MaxDrawdownPct float64   `json:"max_drawdown_pct"`
	Trades         int       `json:"trades"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
	Bars           int       `json:"bars"`
	EquityPeak     float64   `json:"equity_peak"`
	EquityValley   float64   `json:"equity_valley"`
	FinishedAt     time.Time `json:"finished_at"`
}

// Run is one replay job with its lifecycle state.
type Run struct {
	ID            string     `json:"id"`
	Symbol        string     `json:"symbol"`
	Timeframe     string     `json:"timeframe"`
	Status        string     `json:"status"`
	StartTS       int64      `json:"start_ts"`
	EndTS         int64      `json:"end_ts"`
	Seed          uint64     `json:"seed"`
	InitialEquity float64    `json:"initial_equity"`
	Message       string     `json:"message,omitempty"`
	ChartPath     string     `json:"chart_path,omitempty"`
	Request       RunRequest `json:"request"`
	Stats         RunStats   `json:"stats"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Trade is one round trip booked during a run.
type Trade struct {
	RunID      string  `json:"run_id"`
	EntryTS    int64   `json:"entry_ts"`
	ExitTS     int64   `json:"exit_ts"`
	EntryPrice float64 `json:"entry_price"`
	ExitPrice  float64 `json:"exit_price"`
	Quantity   float64 `json:"quantity"`
	Profit     float64 `json:"profit"`
	Reason     string  `json:"reason"` // "signal", "risk", or "end"
}
