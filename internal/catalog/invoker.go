package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/budu/mu-action/internal/perf"
	"github.com/budu/mu-action/pkg/action"
	"github.com/budu/mu-action/pkg/logger"
)

// Invocation is the record of one action run through the invoker.
type Invocation struct {
	// ID is a unique invocation identifier.
	ID string
	// Action is the invoked action name.
	Action string
	// Outcome is the type-erased result.
	Outcome action.Erased
	// Duration is the wall-clock time of the run, schema validation
	// included.
	Duration time.Duration
}

// NotFoundError reports an invocation of an unregistered action.
type NotFoundError struct {
	Action string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("action '%s' not found", e.Action)
}

// Invoker runs catalog actions, stamping each invocation with a unique ID
// and recording its latency.
type Invoker struct {
	catalog  *Catalog
	recorder *perf.Recorder
}

// NewInvoker creates an invoker over the given catalog. recorder may be
// nil, in which case a fresh one is created.
func NewInvoker(c *Catalog, recorder *perf.Recorder) *Invoker {
	if recorder == nil {
		recorder = perf.NewRecorder()
	}
	return &Invoker{catalog: c, recorder: recorder}
}

// Catalog returns the underlying catalog.
func (iv *Invoker) Catalog() *Catalog {
	return iv.catalog
}

// Recorder returns the latency recorder.
func (iv *Invoker) Recorder() *perf.Recorder {
	return iv.recorder
}

// Invoke runs the named action with the given arguments. Domain failures
// come back inside the Invocation outcome; validation errors and
// programming defects are returned as the error alongside a nil
// Invocation.
func (iv *Invoker) Invoke(name string, args map[string]any) (*Invocation, error) {
	a, err := iv.catalog.Get(name)
	if err != nil {
		return nil, &NotFoundError{Action: name}
	}

	id := uuid.New().String()
	logger.Debug("invoking action %s (invocation %s)", name, id)

	start := time.Now()
	outcome, err := a.ExecAny(args)
	elapsed := time.Since(start)
	iv.recorder.Record(name, elapsed)

	if err != nil {
		logger.Error("action %s (invocation %s) errored: %v", name, id, err)
		return nil, err
	}
	if !outcome.OK {
		logger.Info("action %s (invocation %s) failed in %s: %v", name, id, elapsed, outcome.Err)
	} else {
		logger.Debug("action %s (invocation %s) succeeded in %s", name, id, elapsed)
	}

	return &Invocation{
		ID:       id,
		Action:   name,
		Outcome:  outcome,
		Duration: elapsed,
	}, nil
}
