package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// eventRecorder records the order of hook and core executions.
type eventRecorder struct {
	events []string
}

func (r *eventRecorder) record(event string) {
	r.events = append(r.events, event)
}

func succeedWith[T any](v T) Core[T] {
	return func(*Instance) (Result[T], error) {
		return NewSuccess(v), nil
	}
}

func TestRunGreeting(t *testing.T) {
	greet := Define("greet", func(in *Instance) (Result[string], error) {
		name, _ := PropAs[string](in, "name")
		return NewSuccess("Hello " + name), nil
	})
	greet.Declare("name", KindString)

	res, err := greet.Exec(map[string]any{"name": "Alice"})
	require.NoError(t, err)

	assert.True(t, res.OK())
	assert.Equal(t, "Hello Alice", res.Value())
	assert.Equal(t, "greet", res.Meta()[MetaAction])

	props, ok := res.Meta()[MetaProps].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Alice", props["name"])
}

func TestRunHookOrdering(t *testing.T) {
	rec := &eventRecorder{}

	d := Define("ordered", func(*Instance) (Result[string], error) {
		rec.record("core")
		return NewSuccess("done"), nil
	})
	require.NoError(t, d.Before(func(*Instance) error { rec.record("b1"); return nil }))
	require.NoError(t, d.Before(func(*Instance) error { rec.record("b2"); return nil }))
	require.NoError(t, d.Around(func(_ *Instance, next Next) error {
		rec.record("a1-pre")
		err := next()
		rec.record("a1-post")
		return err
	}))
	require.NoError(t, d.Around(func(_ *Instance, next Next) error {
		rec.record("a2-pre")
		err := next()
		rec.record("a2-post")
		return err
	}))
	require.NoError(t, d.After(func(*Instance) error { rec.record("f1"); return nil }))
	require.NoError(t, d.After(func(*Instance) error { rec.record("f2"); return nil }))

	res, err := d.Exec(nil)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t,
		[]string{"b1", "b2", "a1-pre", "a2-pre", "core", "a2-post", "a1-post", "f1", "f2"},
		rec.events)
}

func TestRunMetadataAccumulation(t *testing.T) {
	d := Define("annotated", succeedWith("v"))
	require.NoError(t, d.Before(func(in *Instance) error {
		in.SetMeta("started", true)
		return nil
	}))
	require.NoError(t, d.After(func(in *Instance) error {
		in.SetMeta("done", true)
		return nil
	}))

	res, err := d.Exec(nil)
	require.NoError(t, err)
	assert.Equal(t, true, res.Meta()["started"])
	assert.Equal(t, true, res.Meta()["done"])
}

func TestRunFailureSignal(t *testing.T) {
	sig := Fail(errors.New("bad"), Meta{"reason": "x"})

	d := Define("failing", func(*Instance) (Result[string], error) {
		return Result[string]{}, sig
	})

	t.Run("run converts the signal into a Failure", func(t *testing.T) {
		res, err := d.Exec(nil)
		require.NoError(t, err)
		assert.False(t, res.OK())
		assert.EqualError(t, res.Err(), "bad")
		assert.Equal(t, "x", res.Meta()["reason"])
		assert.Equal(t, "failing", res.Meta()[MetaAction])
	})

	t.Run("must-run re-raises the exact original signal", func(t *testing.T) {
		in, err := d.New(nil)
		require.NoError(t, err)
		_, err = d.MustRun(in)
		require.Error(t, err)
		got, ok := AsSignal(err)
		require.True(t, ok)
		assert.Same(t, sig, got)
		assert.EqualError(t, got.Payload, "bad")
	})
}

func TestRunSignalFromBeforeHookSkipsCore(t *testing.T) {
	rec := &eventRecorder{}

	d := Define("aborted", func(*Instance) (Result[string], error) {
		rec.record("core")
		return NewSuccess("never"), nil
	})
	require.NoError(t, d.Before(func(*Instance) error {
		rec.record("b1")
		return Failf("stop early")
	}))
	require.NoError(t, d.Around(func(_ *Instance, next Next) error {
		rec.record("around")
		return next()
	}))
	require.NoError(t, d.After(func(*Instance) error {
		rec.record("after")
		return nil
	}))

	res, err := d.Exec(nil)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Equal(t, []string{"b1"}, rec.events, "core, around and after hooks must not run")
}

func TestRunAfterHooksSkippedOnRaise(t *testing.T) {
	rec := &eventRecorder{}

	d := Define("raising", func(*Instance) (Result[string], error) {
		return Result[string]{}, Failf("boom")
	})
	require.NoError(t, d.After(func(*Instance) error {
		rec.record("after")
		return nil
	}))

	res, err := d.Exec(nil)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.Empty(t, rec.events)
}

func TestRunAroundShortCircuit(t *testing.T) {
	coreRan := false
	afterRan := false

	d := Define("shorted", func(*Instance) (Result[string], error) {
		coreRan = true
		return NewSuccess("core"), nil
	})
	require.NoError(t, d.Around(func(in *Instance, _ Next) error {
		in.Resolve("short-circuited")
		return nil
	}))
	require.NoError(t, d.After(func(*Instance) error {
		afterRan = true
		return nil
	}))

	in, err := d.New(nil)
	require.NoError(t, err)
	v, err := d.MustRun(in)
	require.NoError(t, err)

	assert.Equal(t, "short-circuited", v)
	assert.False(t, coreRan, "core side effects must not occur")
	assert.True(t, afterRan, "after hooks still run on a normal chain return")
}

func TestRunShortCircuitWithoutResolve(t *testing.T) {
	d := Define("silent", succeedWith("never"))
	require.NoError(t, d.Around(func(*Instance, Next) error { return nil }))

	_, err := d.Exec(nil)
	assert.ErrorIs(t, err, ErrNoOutcome)
}

func TestRunResolveTypeMismatch(t *testing.T) {
	d := Define("mismatched", succeedWith("never"))
	require.NoError(t, d.Around(func(in *Instance, _ Next) error {
		in.Resolve(42)
		return nil
	}))

	_, err := d.Exec(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not satisfy the result type")
}

func TestRunDefectPropagatesUnmodified(t *testing.T) {
	defect := errors.New("nil dereference waiting to happen")

	t.Run("from the core operation", func(t *testing.T) {
		d := Define("broken", func(*Instance) (Result[string], error) {
			return Result[string]{}, defect
		})
		_, err := d.Exec(nil)
		assert.Same(t, defect, err)
	})

	t.Run("from a hook", func(t *testing.T) {
		d := Define("broken-hook", succeedWith("v"))
		require.NoError(t, d.Before(func(*Instance) error { return defect }))
		_, err := d.Exec(nil)
		assert.Same(t, defect, err)
	})

	t.Run("must-run returns it as-is", func(t *testing.T) {
		d := Define("broken-must", func(*Instance) (Result[string], error) {
			return Result[string]{}, defect
		})
		in, err := d.New(nil)
		require.NoError(t, err)
		_, err = d.MustRun(in)
		assert.Same(t, defect, err)
	})
}

func TestMustRunDirectFailure(t *testing.T) {
	// A Failure constructed directly, without the signal mechanism,
	// carries no retained signal: MustRun hands back the Failure value
	// itself instead of a signal.
	d := Define("direct", func(*Instance) (Result[string], error) {
		return NewFailure[string](errors.New("direct")), nil
	})

	res, err := d.Exec(nil)
	require.NoError(t, err)
	require.False(t, res.OK())
	_, hasSignal := res.Meta()[MetaSignal]
	assert.False(t, hasSignal)

	in, err := d.New(nil)
	require.NoError(t, err)
	_, err = d.MustRun(in)
	require.Error(t, err)
	assert.False(t, IsSignal(err))
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.EqualError(t, f.Err, "direct")
}

func TestRunForeignInstance(t *testing.T) {
	a := Define("a", succeedWith("a"))
	b := Define("b", succeedWith("b"))

	in, err := a.New(nil)
	require.NoError(t, err)
	_, err = b.Run(in)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "instance of \"a\"")
}

func TestDeriveIndependentHooks(t *testing.T) {
	rec := &eventRecorder{}

	parent := Define("parent", succeedWith("v"))
	require.NoError(t, parent.Before(func(*Instance) error { rec.record("shared"); return nil }))

	left := parent.Derive("left")
	right := parent.Derive("right")
	require.NoError(t, left.Before(func(*Instance) error { rec.record("left"); return nil }))
	require.NoError(t, right.Before(func(*Instance) error { rec.record("right"); return nil }))

	t.Run("subtype hooks never leak to siblings", func(t *testing.T) {
		rec.events = nil
		_, err := left.Exec(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"shared", "left"}, rec.events)
	})

	t.Run("subtype hooks never leak to the parent", func(t *testing.T) {
		rec.events = nil
		_, err := parent.Exec(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"shared"}, rec.events)
	})

	t.Run("parent hooks added after derivation stay on the parent", func(t *testing.T) {
		require.NoError(t, parent.Before(func(*Instance) error { rec.record("late"); return nil }))
		rec.events = nil
		_, err := right.Exec(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"shared", "right"}, rec.events)
	})
}

func TestDeriveAsNarrowsResultType(t *testing.T) {
	rec := &eventRecorder{}

	parent := Define("wide", func(*Instance) (Result[any], error) {
		return NewSuccess[any]("anything"), nil
	})
	require.NoError(t, parent.Before(func(*Instance) error { rec.record("before"); return nil }))

	narrow := DeriveAs(parent, "narrow", func(*Instance) (Result[int], error) {
		return NewSuccess(42), nil
	})

	res, err := narrow.Exec(nil)
	require.NoError(t, err)
	assert.Equal(t, 42, res.Value())
	assert.Equal(t, []string{"before"}, rec.events, "parent hooks carry over to the narrowed child")
}

func TestValidationFailsBeforeHooks(t *testing.T) {
	rec := &eventRecorder{}

	d := Define("strict", succeedWith("v"))
	d.Declare("count", KindInt)
	require.NoError(t, d.Before(func(*Instance) error { rec.record("before"); return nil }))

	_, err := d.New(map[string]any{"count": "not a number"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, rec.events)

	_, err = d.Exec(map[string]any{"count": "not a number"})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
	assert.Empty(t, rec.events)
}

func TestNamedOperations(t *testing.T) {
	t.Run("before and after ops resolve at call time", func(t *testing.T) {
		rec := &eventRecorder{}
		d := Define("named", func(*Instance) (Result[string], error) {
			rec.record("core")
			return NewSuccess("v"), nil
		})
		require.NoError(t, d.RegisterOp("mark_start", func(*Instance) error { rec.record("start"); return nil }))
		require.NoError(t, d.RegisterOp("mark_end", func(*Instance) error { rec.record("end"); return nil }))
		require.NoError(t, d.Before(nil, "mark_start"))
		require.NoError(t, d.After(nil, "mark_end"))

		_, err := d.Exec(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"start", "core", "end"}, rec.events)
	})

	t.Run("unknown op is a defect at invocation time", func(t *testing.T) {
		d := Define("missing-op", succeedWith("v"))
		require.NoError(t, d.Before(nil, "nowhere"))

		_, err := d.Exec(nil)
		require.Error(t, err)
		var opErr *UnknownOpError
		require.ErrorAs(t, err, &opErr)
		assert.Equal(t, "nowhere", opErr.Op)
		assert.Equal(t, "before", opErr.Kind)
	})

	t.Run("around ops accept all three declared shapes", func(t *testing.T) {
		rec := &eventRecorder{}
		d := Define("arities", func(*Instance) (Result[string], error) {
			rec.record("core")
			return NewSuccess("v"), nil
		})
		require.NoError(t, d.RegisterAroundOp("two", func(in *Instance, next Next) error {
			rec.record("two-pre")
			err := next()
			rec.record("two-post")
			return err
		}))
		require.NoError(t, d.RegisterAroundOp("one", func(next Next) error {
			rec.record("one-pre")
			err := next()
			rec.record("one-post")
			return err
		}))
		require.NoError(t, d.Around(nil, "two", "one"))

		_, err := d.Exec(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"two-pre", "one-pre", "core", "one-post", "two-post"}, rec.events)
	})

	t.Run("zero-argument around op always short-circuits", func(t *testing.T) {
		d := Define("zero", succeedWith("never"))
		require.NoError(t, d.RegisterAroundOp("skip", func() error { return nil }))
		require.NoError(t, d.Around(nil, "skip"))

		_, err := d.Exec(nil)
		assert.ErrorIs(t, err, ErrNoOutcome)
	})

	t.Run("unsupported around op signature is rejected", func(t *testing.T) {
		d := Define("bad-shape", succeedWith("v"))
		err := d.RegisterAroundOp("odd", func(string) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported signature")
	})
}

func TestHookRegistrationErrors(t *testing.T) {
	d := Define("regs", succeedWith("v"))
	require.NoError(t, d.RegisterOp("noop", func(*Instance) error { return nil }))

	t.Run("inline hook plus named ops", func(t *testing.T) {
		err := d.Before(func(*Instance) error { return nil }, "noop")
		assert.ErrorIs(t, err, ErrHookConflict)
		err = d.Around(func(*Instance, Next) error { return nil }, "noop")
		assert.ErrorIs(t, err, ErrHookConflict)
	})

	t.Run("neither inline hook nor named op", func(t *testing.T) {
		assert.ErrorIs(t, d.Before(nil), ErrHookEmpty)
		assert.ErrorIs(t, d.After(nil), ErrHookEmpty)
		assert.ErrorIs(t, d.Around(nil), ErrHookEmpty)
	})

	t.Run("failed registration leaves the lists untouched", func(t *testing.T) {
		rec := &eventRecorder{}
		clean := Define("clean", func(*Instance) (Result[string], error) {
			rec.record("core")
			return NewSuccess("v"), nil
		})
		_ = clean.Before(nil)
		_, err := clean.Exec(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"core"}, rec.events)
	})
}

func TestSignalFromAfterHookOverridesSuccess(t *testing.T) {
	d := Define("late-fail", succeedWith("fine"))
	require.NoError(t, d.After(func(*Instance) error {
		return Fail(errors.New("post-check failed"), Meta{"stage": "after"})
	}))

	res, err := d.Exec(nil)
	require.NoError(t, err)
	assert.False(t, res.OK())
	assert.EqualError(t, res.Err(), "post-check failed")
	assert.Equal(t, "after", res.Meta()["stage"])
}
