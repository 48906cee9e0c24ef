package indexes

// CellState is the fetch state of a lazily loaded value.
type CellState string

// Cell states.
const (
	StatePending CellState = "pending"
	StateReady   CellState = "ready"
	StateFailed  CellState = "failed"
)

// Cell is an independently fetched value: pending, ready or failed.
// Each cell fails on its own; siblings are unaffected.
type Cell[T any] struct {
	State CellState
	Value T
	Err   error
}

// Pending returns a cell waiting for its fetch.
func Pending[T any]() Cell[T] {
	return Cell[T]{State: StatePending}
}

// Resolve builds a ready or failed cell from a fetch result.
func Resolve[T any](v T, err error) Cell[T] {
	if err != nil {
		return Cell[T]{State: StateFailed, Err: err}
	}
	return Cell[T]{State: StateReady, Value: v}
}

// Render formats a ready value with f and the other states as placeholders.
func (c Cell[T]) Render(f func(T) string) string {
	switch c.State {
	case StateReady:
		return f(c.Value)
	case StateFailed:
		return "Error: " + c.Err.Error()
	default:
		return "Loading..."
	}
}

// ErrorString returns the failure message, or "" if the cell did not fail.
func (c Cell[T]) ErrorString() string {
	if c.State != StateFailed || c.Err == nil {
		return ""
	}
	return c.Err.Error()
}
