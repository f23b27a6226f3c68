package intent

import (
	"context"
	"time"
)

// DelayedClassifier waits before delegating, standing in for the latency of
// a remote model call. The wait ends early when ctx is done.
type DelayedClassifier struct {
	next  Classifier
	delay time.Duration
}

// NewDelayedClassifier wraps next with a fixed delay.
func NewDelayedClassifier(next Classifier, delay time.Duration) *DelayedClassifier {
	return &DelayedClassifier{next: next, delay: delay}
}

// Classify implements Classifier.
func (d *DelayedClassifier) Classify(ctx context.Context, text string) (Result, error) {
	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-timer.C:
		}
	}
	return d.next.Classify(ctx, text)
}
