package schema

import (
	"context"

	"lingua/cmsinit/internal/cma"
)

// Outcome is what Initialize decided to do.
type Outcome string

const (
	// OutcomeExisting means the content type was already defined and nothing
	// was changed.
	OutcomeExisting Outcome = "existing"
	// OutcomeCreated means a create was dispatched and publish chained on it.
	OutcomeCreated Outcome = "created"
)

// Run tracks one Initialize call until its asynchronous part settles.
type Run struct {
	outcome Outcome
	done    chan struct{}
	ct      cma.ContentType
	err     error
}

func newRun(outcome Outcome) *Run {
	return &Run{outcome: outcome, done: make(chan struct{})}
}

func completedRun(outcome Outcome, ct cma.ContentType) *Run {
	r := newRun(outcome)
	r.finish(ct, nil)
	return r
}

// finish must be called exactly once.
func (r *Run) finish(ct cma.ContentType, err error) {
	r.ct, r.err = ct, err
	close(r.done)
}

// Outcome reports whether the content type already existed or was created.
func (r *Run) Outcome() Outcome {
	return r.outcome
}

// Done is closed once the run has settled. For OutcomeExisting it is closed
// from the start.
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run settles or ctx is done. It returns the content
// type as last seen by the run (the published revision for OutcomeCreated)
// or a KindInitialization *Error.
func (r *Run) Wait(ctx context.Context) (cma.ContentType, error) {
	select {
	case <-r.done:
		return r.ct, r.err
	case <-ctx.Done():
		return cma.ContentType{}, initializationError("wait", ctx.Err())
	}
}
