package config

import "fmt"

// validate runs basic configuration checks. Engine parameters reuse the
// engine's own validation so the rules stay in one place.
func validate(c *Config) error {
	if err := c.Engine.Settings().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Data.Root == "" {
		return fmt.Errorf("data.root cannot be empty")
	}
	if c.Replay.MaxConcurrent <= 0 {
		return fmt.Errorf("replay.max_concurrent must be > 0")
	}
	if c.Replay.InitialEquity <= 0 {
		return fmt.Errorf("replay.initial_equity must be > 0")
	}
	if c.Replay.LotStep < 0 {
		return fmt.Errorf("replay.lot_step must be >= 0")
	}
	return nil
}
