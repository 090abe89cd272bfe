package gd

// Optimizer applies one parameter update from a gradient.
type Optimizer interface {
	Step(cfg *OptimConfig, x, grad []float64)
}

// GradientDescent is the vanilla update x <- x - lr*grad.
// It keeps no state between steps.
type GradientDescent struct{}

// Step updates x in place.
func (GradientDescent) Step(cfg *OptimConfig, x, grad []float64) {
	axpy(x, -cfg.LearningRate, grad)
}
