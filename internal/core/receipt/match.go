package receipt

// Result is the outcome of a single extraction attempt: either Matched with a
// value or NotMatched. Absence is never an error.
type Result[T any] struct {
	value T
	ok    bool
}

// Matched wraps a found value.
func Matched[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// NotMatched is the empty Result.
func NotMatched[T any]() Result[T] {
	return Result[T]{}
}

// Get returns the value and whether it was found.
func (r Result[T]) Get() (T, bool) {
	return r.value, r.ok
}

// Found reports whether the extraction matched.
func (r Result[T]) Found() bool {
	return r.ok
}

// OrElse returns the value, or def when nothing matched.
func (r Result[T]) OrElse(def T) T {
	if r.ok {
		return r.value
	}
	return def
}

// Ptr returns a pointer to a copy of the value, or nil when nothing matched.
func (r Result[T]) Ptr() *T {
	if !r.ok {
		return nil
	}
	v := r.value
	return &v
}

// Matcher is one pattern attempt of an extractor.
type Matcher[T any] func(text string) Result[T]

// FirstMatch folds matchers left to right and returns the first hit.
func FirstMatch[T any](text string, matchers ...Matcher[T]) Result[T] {
	for _, m := range matchers {
		if r := m(text); r.ok {
			return r
		}
	}
	return NotMatched[T]()
}
