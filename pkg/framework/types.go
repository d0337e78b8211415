package framework

import "context"

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable is a background worker that runs until ctx is done or it fails.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Stepper does one bounded unit of work per call and never waits for input.
// busy reports whether anything was done, so the caller can step again
// right away instead of idling.
type Stepper interface {
	Step(ctx context.Context) (busy bool, err error)
}

// StepFunc is the func form of Stepper.
type StepFunc func(context.Context) (bool, error)

// Step implements Stepper.
func (f StepFunc) Step(ctx context.Context) (bool, error) {
	return f(ctx)
}

// LoopAdder knows how to add itself to a Loop.
type LoopAdder interface {
	AddToLoop(*Loop)
}
