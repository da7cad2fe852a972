package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func annotationWithHandle(x1, y1, x2, y2 float64) *Annotation {
	return &Annotation{
		Handle: Handle{
			Start: Coord{X: x1, Y: y1},
			End:   Coord{X: x2, Y: y2},
		},
	}
}

func record(x1, y1, x2, y2 float64) map[string]any {
	return map[string]any{
		KeyHandles: map[string]any{
			KeyStart: map[string]any{KeyX: x1, KeyY: y1},
			KeyEnd:   map[string]any{KeyX: x2, KeyY: y2},
		},
	}
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"floors not rounds", 1.00005, 1.0000},
		{"already short", 1.0001, 1.0001},
		{"long tail", 2.718281828, 2.7182},
		{"integer", 3.0, 3.0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Truncate(tt.in, 4), 1e-12)
		})
	}
}

func TestIsDuplicateTruncatedMatch(t *testing.T) {
	t.Parallel()

	// Both 1.00005 and 1.0001 truncate to 1.0000 at 4 decimals
	existing := []map[string]any{record(1.00005, 2, 3, 4)}
	candidate := annotationWithHandle(1.0001, 2, 3, 4)

	assert.True(t, IsDuplicate(candidate, existing))
}

func TestIsDuplicateExactMatch(t *testing.T) {
	t.Parallel()

	existing := []map[string]any{record(10, 20, 30, 40)}
	assert.True(t, IsDuplicate(annotationWithHandle(10, 20, 30, 40), existing))
}

func TestIsDuplicateNoMatch(t *testing.T) {
	t.Parallel()

	existing := []map[string]any{record(10, 20, 30, 40)}
	assert.False(t, IsDuplicate(annotationWithHandle(10, 20, 30, 41), existing))
}

func TestIsDuplicateUnorderedMembership(t *testing.T) {
	t.Parallel()

	// Swapped start and end still match: the comparison is set-membership,
	// not paired. Intentionally permissive.
	existing := []map[string]any{record(30, 40, 10, 20)}
	assert.True(t, IsDuplicate(annotationWithHandle(10, 20, 30, 40), existing))
}

func TestIsDuplicateEmptyScope(t *testing.T) {
	t.Parallel()

	assert.False(t, IsDuplicate(annotationWithHandle(1, 2, 3, 4), nil))
}

func TestIsDuplicateMalformedRecord(t *testing.T) {
	t.Parallel()

	// A record without handles reads as all zeros
	existing := []map[string]any{{"toolType": "RectangleRoi"}}
	require.False(t, IsDuplicate(annotationWithHandle(1, 2, 3, 4), existing))
	assert.True(t, IsDuplicate(annotationWithHandle(0, 0, 0, 0), existing))
}
