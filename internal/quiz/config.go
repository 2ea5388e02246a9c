package quiz

import "github.com/example/vocabquiz/internal/grading"

// Config holds the tunables of a quiz session
type Config struct {
	// Maximum number of missed items waiting for re-insertion
	WeakCapacity int
	// How many times one term may be appended back into the same session
	ReinsertCap int
	// Fraction of the item list after which a weak item is re-inserted
	ReinsertAt float64
	// Lowest similarity (0-100) still graded as "close"
	CloseThreshold float64
}

// DefaultConfig returns the default quiz configuration
func DefaultConfig() Config {
	return Config{
		WeakCapacity:   20,
		ReinsertCap:    2,
		ReinsertAt:     0.75,
		CloseThreshold: grading.DefaultCloseThreshold,
	}
}

// withDefaults fills unset or out-of-range fields from DefaultConfig
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.WeakCapacity <= 0 {
		c.WeakCapacity = def.WeakCapacity
	}
	if c.ReinsertCap < 0 {
		c.ReinsertCap = def.ReinsertCap
	}
	if c.ReinsertAt <= 0 || c.ReinsertAt > 1 {
		c.ReinsertAt = def.ReinsertAt
	}
	if c.CloseThreshold <= 0 || c.CloseThreshold > 100 {
		c.CloseThreshold = def.CloseThreshold
	}
	return c
}
