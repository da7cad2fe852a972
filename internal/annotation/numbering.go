package annotation

import (
	"github.com/flywheel-apps/roi-import/internal/metadata"
)

// Numbers holds the sequence numbers assigned to a new annotation.
type Numbers struct {
	LesionNamingNumber int
	MeasurementNumber  int
}

// NextNumbers computes the sequence numbers for the next annotation added to
// the scope's metadata document. Both counters span every category under the
// measurements namespace, not just the one being inserted into: the viewer
// numbers measurements across the whole document.
func NextNumbers(doc metadata.Document) Numbers {
	var lesionNumbers, measurementNumbers []int

	for _, records := range metadata.MeasurementsIn(doc) {
		for _, record := range records {
			if n, ok := recordNumber(record, KeyMeasurementNumber); ok {
				measurementNumbers = append(measurementNumbers, n)
			}
			if n, ok := recordNumber(record, KeyLesionNamingNumber); ok {
				lesionNumbers = append(lesionNumbers, n)
			}
		}
	}

	return Numbers{
		LesionNamingNumber: maxOf(lesionNumbers) + 1,
		MeasurementNumber:  maxOf(measurementNumbers) + 1,
	}
}

func recordNumber(record map[string]any, key string) (int, bool) {
	v, ok := record[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

// maxOf returns the largest value, or 0 for an empty slice so that the first
// assigned number is 1.
func maxOf(numbers []int) int {
	most := 0
	for _, n := range numbers {
		if n > most {
			most = n
		}
	}
	return most
}
