package action

// Reserved metadata keys written by the engine.
const (
	// MetaAction holds the action name (type identity) on every instance.
	MetaAction = "action"
	// MetaProps holds a snapshot of the validated property values taken at
	// construction time.
	MetaProps = "props"
	// MetaSignal holds the retained failure signal on a Failure result that
	// was produced by catching a *Signal, so MustRun can re-raise the exact
	// original signal.
	MetaSignal = "signal"
)

// Meta is the mutable metadata mapping carried by an instance and by every
// result. Keys are only ever added or overwritten, never removed.
type Meta map[string]any

// Clone returns a shallow copy of the mapping.
func (m Meta) Clone() Meta {
	out := make(Meta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge writes every entry of other into m, overwriting existing keys.
func (m Meta) Merge(other Meta) {
	for k, v := range other {
		m[k] = v
	}
}
