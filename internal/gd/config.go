package gd

// Default optimizer settings applied by ApplyDefaults.
const (
	DefaultLearningRate  = 0.1
	DefaultTolerance     = 1e-2
	DefaultMaxIterations = 100
)

// OptimConfig holds the gradient-descent settings.
// Callbacks receive a pointer to it and may change LearningRate between iterations.
type OptimConfig struct {
	// LearningRate scales each gradient step
	LearningRate float64 `json:"learningRate" mapstructure:"lr"`

	// Tolerance stops training once the gradient inf-norm drops below it
	Tolerance float64 `json:"tolerance" mapstructure:"eps"`

	// MaxIterations caps the number of objective evaluations
	MaxIterations int `json:"maxIterations" mapstructure:"max-iters"`

	// NumericGradientStep is synced into objectives that use finite differences
	NumericGradientStep float64 `json:"numericGradientStep" mapstructure:"h"`
}

// DefaultOptimConfig returns a config with every field at its default.
func DefaultOptimConfig() OptimConfig {
	return OptimConfig{
		LearningRate:        DefaultLearningRate,
		Tolerance:           DefaultTolerance,
		MaxIterations:       DefaultMaxIterations,
		NumericGradientStep: DefaultStep,
	}
}

// ApplyDefaults replaces every non-positive field with its default.
// Calling it more than once has no further effect.
func (c *OptimConfig) ApplyDefaults() {
	if !(c.LearningRate > 0) {
		c.LearningRate = DefaultLearningRate
	}
	if !(c.Tolerance > 0) {
		c.Tolerance = DefaultTolerance
	}
	if c.MaxIterations <= 0 {
		c.MaxIterations = DefaultMaxIterations
	}
	if !(c.NumericGradientStep > 0) {
		c.NumericGradientStep = DefaultStep
	}
}
