// Package history implements a bounded undo/redo container over immutable
// snapshot values.
package history

// DefaultLimit is the number of undo and redo steps kept by New when a
// non-positive limit is given.
const DefaultLimit = 50

// Store keeps the current snapshot plus the past and future stacks. Values
// are stored as given, so T should be treated as immutable by callers.
//
// Store is not safe for concurrent use; callers serialise access.
type Store[T any] struct {
	past    []T
	current T
	future  []T
	limit   int
}

// New returns a Store whose current value is initial.
func New[T any](initial T, limit int) *Store[T] {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Store[T]{current: initial, limit: limit}
}

// Current returns the latest snapshot.
func (s *Store[T]) Current() T { return s.current }

// Set makes value current. The previous current value is pushed onto the past
// stack, dropping the oldest entry past the limit, and the future is cleared.
func (s *Store[T]) Set(value T) {
	s.past = push(s.past, s.current, s.limit)
	s.current = value
	clear(s.future)
	s.future = s.future[:0]
}

// Amend replaces the current value in place, folding it into the step that
// produced the current value. The past is untouched and the future is
// cleared.
func (s *Store[T]) Amend(value T) {
	s.current = value
	clear(s.future)
	s.future = s.future[:0]
}

// Undo restores the most recent past snapshot. It reports whether anything
// changed.
func (s *Store[T]) Undo() bool {
	if len(s.past) == 0 {
		return false
	}
	prev := s.past[len(s.past)-1]
	s.past = pop(s.past)
	s.future = push(s.future, s.current, s.limit)
	s.current = prev
	return true
}

// Redo re-applies the most recently undone snapshot. It reports whether
// anything changed.
func (s *Store[T]) Redo() bool {
	if len(s.future) == 0 {
		return false
	}
	next := s.future[len(s.future)-1]
	s.future = pop(s.future)
	s.past = push(s.past, s.current, s.limit)
	s.current = next
	return true
}

// Reset discards both stacks and makes value current.
func (s *Store[T]) Reset(value T) {
	clear(s.past)
	clear(s.future)
	s.past = s.past[:0]
	s.future = s.future[:0]
	s.current = value
}

// CanUndo reports whether Undo would change the current value.
func (s *Store[T]) CanUndo() bool { return len(s.past) > 0 }

// CanRedo reports whether Redo would change the current value.
func (s *Store[T]) CanRedo() bool { return len(s.future) > 0 }

// Len returns the sizes of the past and future stacks.
func (s *Store[T]) Len() (past, future int) { return len(s.past), len(s.future) }

// Limit returns the per-stack capacity.
func (s *Store[T]) Limit() int { return s.limit }

func push[T any](stack []T, v T, limit int) []T {
	stack = append(stack, v)
	if over := len(stack) - limit; over > 0 {
		// shift instead of reslicing so the backing array does not grow forever
		n := copy(stack, stack[over:])
		var zero T
		for i := n; i < len(stack); i++ {
			stack[i] = zero
		}
		stack = stack[:n]
	}
	return stack
}

func pop[T any](stack []T) []T {
	var zero T
	stack[len(stack)-1] = zero
	return stack[:len(stack)-1]
}
