// Package trader guards the single live engine instance behind a lock so
// HTTP callers and the config watcher can share it safely. The engine itself
// stays strictly sequential: one bar at a time.
package trader

import (
	"sync"
	"time"

	"volcast/internal/engine"
)

// Snapshot is the externally visible state of the live engine.
type Snapshot struct {
	Settings    engine.Settings      `json:"settings"`
	Volatility  float64              `json:"volatility"`
	Position    engine.PositionState `json:"position"`
	ShouldClose bool                 `json:"should_close"`
	LastResult  *engine.Result       `json:"last_result,omitempty"`
	LastBarAt   time.Time            `json:"last_bar_at,omitempty"`
	Bars        int                  `json:"bars"`
}

// Service serializes access to one engine.
type Service struct {
	mu         sync.Mutex
	eng        *engine.Engine
	lastResult *engine.Result
	lastBarAt  time.Time
	bars       int
}

func NewService(eng *engine.Engine) *Service {
	return &Service{eng: eng}
}

// AnalyzeBar submits one bar and returns the decision.
func (s *Service) AnalyzeBar(open, high, low, close, volume float64, barIndex int) engine.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := s.eng.AnalyzeBar(open, high, low, close, volume, barIndex)
	s.lastResult = &res
	s.lastBarAt = time.Now()
	s.bars++
	return res
}

func (s *Service) OpenPosition(entryPrice, quantity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.OpenPosition(entryPrice, quantity)
}

func (s *Service) ResetPosition() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.ResetPosition()
}

func (s *Service) UnrealizedPnL() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.UnrealizedPnL()
}

func (s *Service) ShouldClosePosition() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.ShouldClosePosition()
}

// ApplySettings swaps parameters between bars; invalid settings are rejected
// and the engine keeps its previous ones.
func (s *Service) ApplySettings(settings engine.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.ApplySettings(settings)
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Settings:    s.eng.Settings(),
		Volatility:  s.eng.Volatility(),
		Position:    s.eng.Position(),
		ShouldClose: s.eng.ShouldClosePosition(),
		LastResult:  s.lastResult,
		LastBarAt:   s.lastBarAt,
		Bars:        s.bars,
	}
}
