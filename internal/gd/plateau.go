package gd

import (
	"log/slog"
	"math"
)

// PlateauStop stops training when the objective value stops improving.
//
// An iteration counts as progress when the relative improvement over the last
// significant value is at least Threshold:
//
//	(lastSignificant - value) / |lastSignificant|
//
// After Patience consecutive iterations without progress the callback
// requests a stop. A zero lastSignificant falls back to absolute improvement.
type PlateauStop struct {
	// Patience is the number of stale iterations tolerated before stopping
	Patience int

	// Threshold is the minimum relative improvement (0.001 = 0.1%)
	Threshold float64

	history         []float64
	bestValue       float64
	lastSignificant float64
	staleCount      int
}

// NewPlateauStop creates a plateau detector.
func NewPlateauStop(patience int, threshold float64) *PlateauStop {
	p := &PlateauStop{Patience: patience, Threshold: threshold}
	p.Reset()
	return p
}

// OnIteration records state.Value and stops the run once patience is exhausted.
func (p *PlateauStop) OnIteration(state *TrainerState) error {
	if p.Update(state.Value) {
		state.Stop()
	}
	return nil
}

// Update records a new value and reports whether a plateau was detected.
func (p *PlateauStop) Update(value float64) bool {
	if p.Patience <= 0 {
		return false
	}

	p.history = append(p.history, value)
	if len(p.history) == 1 || value < p.bestValue {
		p.bestValue = value
	}

	if len(p.history) == 1 {
		p.lastSignificant = value
		return false
	}

	improvement := p.lastSignificant - value
	if p.lastSignificant != 0 {
		improvement /= math.Abs(p.lastSignificant)
	}

	if improvement >= p.Threshold {
		p.lastSignificant = value
		p.staleCount = 0
		return false
	}

	p.staleCount++
	slog.Debug("No significant objective improvement",
		"value", value,
		"last_significant", p.lastSignificant,
		"relative_improvement", improvement,
		"stale_count", p.staleCount,
		"patience", p.Patience,
	)

	if p.staleCount >= p.Patience {
		slog.Info("Plateau detected - stopping early",
			"stale_count", p.staleCount,
			"best_value", p.bestValue,
		)
		return true
	}
	return false
}

// BestValue returns the lowest value seen so far.
func (p *PlateauStop) BestValue() float64 {
	return p.bestValue
}

// History returns a copy of all recorded values.
func (p *PlateauStop) History() []float64 {
	return append([]float64{}, p.history...)
}

// StaleCount returns the current number of iterations without progress.
func (p *PlateauStop) StaleCount() int {
	return p.staleCount
}

// Reset clears the recorded history.
func (p *PlateauStop) Reset() {
	p.history = nil
	p.bestValue = math.Inf(1)
	p.lastSignificant = math.Inf(1)
	p.staleCount = 0
}
