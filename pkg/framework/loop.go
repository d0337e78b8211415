package framework

import (
	"context"
	"time"
)

// DefaultInterval is the idle time between two polls.
const DefaultInterval = 10 * time.Millisecond

// Loop is the cooperative polling loop: it steps every Stepper in the
// order they were added, and sleeps for Interval when none of them was busy.
// Runnables added to the loop run in the background for the loop's lifetime.
type Loop struct {
	Interval time.Duration

	steppers []Stepper
	runners  []Runnable
	wakeUpCh chan struct{}
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{Interval: DefaultInterval, wakeUpCh: make(chan struct{}, 1)}
}

// Add adds LoopAdders.
func (l *Loop) Add(adders ...LoopAdder) *Loop {
	for _, adder := range adders {
		adder.AddToLoop(l)
	}
	return l
}

// AddStepper adds steppers, polled in order.
func (l *Loop) AddStepper(steppers ...Stepper) *Loop {
	l.steppers = append(l.steppers, steppers...)
	return l
}

// AddRunnable adds background runnables.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// TriggerNext makes an idle loop poll immediately.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// Run implements Runnable. It returns when ctx is done, a stepper fails
// or a background runnable stops.
func (l *Loop) Run(ctx context.Context) error {
	if l.wakeUpCh == nil {
		l.wakeUpCh = make(chan struct{}, 1)
	}
	ctx, cancel := context.WithCancel(ctx)
	runner := NewRunnerWith(ctx)
	defer runner.Wait()
	defer cancel()
	runner.Go(l.runners...)

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		busy, err := l.step(ctx)
		if err != nil {
			return err
		}
		if busy {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-runner.Stopped():
			if err == nil {
				err = context.Canceled
			}
			return err
		case <-ticker.C:
		case <-l.wakeUpCh:
		}
	}
}

func (l *Loop) step(ctx context.Context) (busy bool, err error) {
	for _, s := range l.steppers {
		b, err := s.Step(ctx)
		if err != nil {
			return busy, err
		}
		busy = busy || b
	}
	return
}
