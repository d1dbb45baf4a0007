package result

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testErr string

func TestPartial_EmptyErrorsIsSuccess(t *testing.T) {
	r := Partial[int, testErr](7, nil)
	require.Equal(t, OutcomeSuccess, r.Outcome())
	v, ok := r.Value()
	require.True(t, ok)
	require.Equal(t, 7, v)
	require.Empty(t, r.Errors())
}

func TestFailure_HasNoValue(t *testing.T) {
	r := Failure[string, testErr]([]testErr{"boom"})
	_, ok := r.Value()
	require.False(t, ok)
	require.True(t, r.IsFailure())
	require.Equal(t, []testErr{"boom"}, r.Errors())
}

// buildPair mimics a converter building one value from two sub-results.
func buildPair(a, b Result[int, testErr]) Result[int, testErr] {
	var errs []testErr
	x, ok := BubbleUp(a, &errs)
	if !ok {
		return Failure[int, testErr](errs)
	}
	y, ok := b.Unwrap(&errs)
	if !ok {
		return Failure[int, testErr](errs)
	}
	return Fold(x+y, errs)
}

func TestBubbleUp(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Result[int, testErr]
		outcome  Outcome
		value    int
		wantErrs []testErr
	}{
		{
			name:    "both succeed",
			a:       Success[int, testErr](1),
			b:       Success[int, testErr](2),
			outcome: OutcomeSuccess,
			value:   3,
		},
		{
			name:     "partial propagates value and errors",
			a:        Partial(1, []testErr{"range"}),
			b:        Partial(2, []testErr{"reaction"}),
			outcome:  OutcomePartial,
			value:    3,
			wantErrs: []testErr{"range", "reaction"},
		},
		{
			name:     "failure short-circuits with accumulated errors",
			a:        Partial(1, []testErr{"range"}),
			b:        Failure[int, testErr]([]testErr{"quote author"}),
			outcome:  OutcomeFailure,
			wantErrs: []testErr{"range", "quote author"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := buildPair(tt.a, tt.b)
			assert.Equal(t, tt.outcome, r.Outcome())
			assert.Equal(t, tt.wantErrs, r.Errors())
			if tt.outcome != OutcomeFailure {
				v, _ := r.Value()
				assert.Equal(t, tt.value, v)
			}
		})
	}
}

func TestCombine(t *testing.T) {
	ok := Success[Void, testErr](Void{})
	partial := Partial(Void{}, []testErr{"p"})
	failed := Failure[Void, testErr]([]testErr{"f"})

	assert.Equal(t, OutcomeSuccess, Combine(ok, ok).Outcome())

	r := Combine(ok, partial)
	assert.Equal(t, OutcomePartial, r.Outcome())
	assert.Equal(t, []testErr{"p"}, r.Errors())

	r = Combine(partial, failed)
	assert.Equal(t, OutcomeFailure, r.Outcome())
	assert.Equal(t, []testErr{"p", "f"}, r.Errors())

	r = CombineAll(ok, partial, ok, partial)
	assert.Equal(t, OutcomePartial, r.Outcome())
	assert.Len(t, r.Errors(), 2)
}

func TestDegradeAndMap(t *testing.T) {
	failed := Failure[Void, testErr]([]testErr{"attachment"})
	d := Degrade(failed, "message")
	assert.Equal(t, OutcomePartial, d.Outcome())
	v, ok := d.Value()
	assert.True(t, ok)
	assert.Equal(t, "message", v)

	m := Map(Partial(2, []testErr{"x"}), func(i int) string { return string(rune('a' + i)) })
	mv, _ := m.Value()
	assert.Equal(t, "c", mv)
	assert.Equal(t, OutcomePartial, m.Outcome())

	assert.True(t, Map(failed, func(Void) int { return 1 }).IsFailure())
}
