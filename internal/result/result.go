// Package result implements the three-outcome value every archive and restore
// converter returns.
//
// A Result is either a Success carrying a value, a Partial carrying a value
// together with one or more recoverable errors, or a Failure carrying only
// errors. Converters accumulate recoverable errors and keep going, and
// short-circuit on structural errors; which is which is decided at each call
// site, never inferred here.
//
// Typical use inside a converter:
//
//	var errs []*ArchiveFrameError
//	quote, ok := result.BubbleUp(archiveQuote(...), &errs)
//	if !ok {
//	    return result.Failure[*wire.StandardMessage](errs)
//	}
//	...
//	return result.Fold(msg, errs)
package result

// Outcome discriminates the three shapes of a Result.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomePartial
	OutcomeFailure
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomePartial:
		return "partial"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Void is the payload of results that only signal completion.
type Void = struct{}

// Result is a tagged union of Success(T), Partial(T, errs) and Failure(errs).
// The zero value is a Success holding the zero T.
type Result[T any, E any] struct {
	outcome Outcome
	value   T
	errs    []E
}

// Success wraps a fully converted value.
func Success[T any, E any](v T) Result[T, E] {
	return Result[T, E]{outcome: OutcomeSuccess, value: v}
}

// Partial wraps a usable value that was produced despite errs. An empty errs
// degrades to Success so a Partial always carries at least one error.
func Partial[T any, E any](v T, errs []E) Result[T, E] {
	if len(errs) == 0 {
		return Success[T, E](v)
	}
	return Result[T, E]{outcome: OutcomePartial, value: v, errs: errs}
}

// Failure reports that no usable value exists; the entity must be dropped.
func Failure[T any, E any](errs []E) Result[T, E] {
	return Result[T, E]{outcome: OutcomeFailure, errs: errs}
}

// Fold returns Success(v) when acc is empty and Partial(v, acc) otherwise.
// It is the usual last line of a converter that accumulated errors.
func Fold[T any, E any](v T, acc []E) Result[T, E] {
	return Partial[T, E](v, acc)
}

func (r Result[T, E]) Outcome() Outcome { return r.outcome }

func (r Result[T, E]) IsFailure() bool { return r.outcome == OutcomeFailure }

// Value returns the payload and whether one exists (false only for Failure).
func (r Result[T, E]) Value() (T, bool) {
	if r.outcome == OutcomeFailure {
		var zero T
		return zero, false
	}
	return r.value, true
}

// Errors returns the accumulated errors; nil for Success.
func (r Result[T, E]) Errors() []E {
	return r.errs
}

// BubbleUp is the archive-side step used when a sub-conversion returns a
// Result but the caller needs a plain value to keep building. The
// sub-result's errors are appended to acc in every case. ok is false on
// Failure: the caller must then return Failure(*acc) right away.
func BubbleUp[T any, E any](r Result[T, E], acc *[]E) (v T, ok bool) {
	*acc = append(*acc, r.errs...)
	return r.Value()
}

// Unwrap is the restore-side counterpart of BubbleUp with the same
// semantics, written as a method to read naturally in guard clauses:
//
//	contents, ok := res.Unwrap(&errs)
//	if !ok { return result.Failure[...](errs) }
func (r Result[T, E]) Unwrap(acc *[]E) (T, bool) {
	return BubbleUp(r, acc)
}

// Combine sequences two independent completion results. Errors are
// concatenated; Failure dominates, otherwise any error makes it Partial.
func Combine[E any](a, b Result[Void, E]) Result[Void, E] {
	errs := make([]E, 0, len(a.errs)+len(b.errs))
	errs = append(errs, a.errs...)
	errs = append(errs, b.errs...)

	if a.IsFailure() || b.IsFailure() {
		return Failure[Void, E](errs)
	}
	return Partial[Void, E](Void{}, errs)
}

// CombineAll folds Combine over rs starting from Success.
func CombineAll[E any](rs ...Result[Void, E]) Result[Void, E] {
	acc := Success[Void, E](Void{})
	for _, r := range rs {
		acc = Combine(acc, r)
	}
	return acc
}

// Degrade turns a Failure into Partial(v, errs) and returns any other result
// with its payload replaced by v. Call sites use it when a sub-failure is
// recoverable in their context, e.g. downstream objects of a message that is
// already inserted.
func Degrade[T any, U any, E any](r Result[T, E], v U) Result[U, E] {
	return Partial[U, E](v, r.errs)
}

// Map transforms the payload of a non-failure result, keeping its errors.
func Map[T any, U any, E any](r Result[T, E], f func(T) U) Result[U, E] {
	if r.IsFailure() {
		return Failure[U, E](r.errs)
	}
	return Result[U, E]{outcome: r.outcome, value: f(r.value), errs: r.errs}
}
