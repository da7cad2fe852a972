// Package metadata manipulates the nested info documents stored on session
// containers. Annotation records live under ohifViewer.measurements.<toolType>.
package metadata

import (
	"log/slog"

	"github.com/flywheel-apps/roi-import/internal/logging"
)

// Keys of the nested namespace annotation records are stored under.
const (
	NamespaceKey    = "ohifViewer"
	MeasurementsKey = "measurements"
)

// Document is a nested metadata document as returned by the container store.
type Document = map[string]any

var logger *slog.Logger

func getLogger() *slog.Logger {
	if logger == nil {
		logger = logging.ForService("metadata")
		if logger == nil {
			logger = slog.Default().With("service", "metadata")
		}
	}
	return logger
}

// AppendMeasurement inserts record into doc under
// ohifViewer.measurements.<toolType>, creating missing containers as needed.
// If the existing category value is not a list it is reset to a fresh list
// holding only the new record; the returned bool reports whether such a
// repair happened. The record is normalized before insertion.
func AppendMeasurement(doc Document, toolType string, record map[string]any) (Document, bool) {
	if doc == nil {
		doc = Document{}
	}

	clean, _ := Normalize(record).(map[string]any)

	namespace := ensureMap(doc, NamespaceKey)
	measurements := ensureMap(namespace, MeasurementsKey)

	existing, ok := measurements[toolType].([]any)
	if !ok {
		if _, present := measurements[toolType]; present {
			getLogger().Warn("category value is not a list, resetting",
				"toolType", toolType)
			measurements[toolType] = []any{clean}
			return doc, true
		}
		measurements[toolType] = []any{clean}
		return doc, false
	}

	measurements[toolType] = append(existing, clean)
	return doc, false
}

// MeasurementsIn returns every annotation record in doc grouped by category.
// Records that are not mappings are dropped. The result is a read-only view;
// mutating it does not touch the document.
func MeasurementsIn(doc Document) map[string][]map[string]any {
	out := map[string][]map[string]any{}

	namespace, ok := doc[NamespaceKey].(map[string]any)
	if !ok {
		return out
	}
	measurements, ok := namespace[MeasurementsKey].(map[string]any)
	if !ok {
		return out
	}

	for toolType, v := range measurements {
		list, ok := v.([]any)
		if !ok {
			continue
		}
		records := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if record, ok := item.(map[string]any); ok {
				records = append(records, record)
			}
		}
		out[toolType] = records
	}

	return out
}

func ensureMap(parent map[string]any, key string) map[string]any {
	if m, ok := parent[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	parent[key] = m
	return m
}
