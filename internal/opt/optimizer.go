package opt

// Optimizer is a derivative-free global optimizer over a box.
type Optimizer interface {
	// Run minimizes eval over [lower, upper] in dim dimensions and returns
	// the best point found and its cost.
	Run(eval func([]float64) float64, lower, upper []float64, dim int) ([]float64, float64)
}
