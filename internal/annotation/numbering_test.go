package annotation

import (
	"testing"

	"github.com/flywheel-apps/roi-import/internal/metadata"
	"github.com/stretchr/testify/assert"
)

func docWithNumbers(perCategory map[string][]int) metadata.Document {
	measurements := map[string]any{}
	for toolType, numbers := range perCategory {
		var records []any
		for _, n := range numbers {
			records = append(records, map[string]any{
				KeyMeasurementNumber:  n,
				KeyLesionNamingNumber: n,
			})
		}
		measurements[toolType] = records
	}
	return metadata.Document{
		metadata.NamespaceKey: map[string]any{
			metadata.MeasurementsKey: measurements,
		},
	}
}

func TestNextNumbersEmptyScope(t *testing.T) {
	t.Parallel()

	got := NextNumbers(metadata.Document{})
	assert.Equal(t, Numbers{LesionNamingNumber: 1, MeasurementNumber: 1}, got)
}

func TestNextNumbersSpansAllCategories(t *testing.T) {
	t.Parallel()

	doc := docWithNumbers(map[string][]int{
		ToolTypeRectangle:  {1, 2},
		ToolTypeElliptical: {3, 7},
	})

	got := NextNumbers(doc)
	assert.Equal(t, 8, got.MeasurementNumber)
	assert.Equal(t, 8, got.LesionNamingNumber)
}

func TestNextNumbersMonotonicSequence(t *testing.T) {
	t.Parallel()

	// N successive appends to an empty scope assign exactly 1..N regardless
	// of toolType distribution
	doc := metadata.Document{}
	toolTypes := []string{ToolTypeRectangle, ToolTypeElliptical, ToolTypeRectangle, ToolTypeElliptical, ToolTypeElliptical}

	for i, toolType := range toolTypes {
		n := NextNumbers(doc)
		assert.Equal(t, i+1, n.MeasurementNumber)
		doc, _ = metadata.AppendMeasurement(doc, toolType, map[string]any{
			KeyMeasurementNumber:  n.MeasurementNumber,
			KeyLesionNamingNumber: n.LesionNamingNumber,
		})
	}
}

func TestNextNumbersToleratesMalformedRecords(t *testing.T) {
	t.Parallel()

	doc := metadata.Document{
		metadata.NamespaceKey: map[string]any{
			metadata.MeasurementsKey: map[string]any{
				ToolTypeRectangle: []any{
					map[string]any{KeyMeasurementNumber: "not a number"},
					map[string]any{"unnumbered": true},
					nil,
					map[string]any{KeyMeasurementNumber: int64(4), KeyLesionNamingNumber: 2.0},
				},
			},
		},
	}

	got := NextNumbers(doc)
	assert.Equal(t, 5, got.MeasurementNumber)
	assert.Equal(t, 3, got.LesionNamingNumber)
}
