package annotation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ValidationKind identifies the class of a builder validation failure.
type ValidationKind string

const (
	MissingMandatoryField ValidationKind = "missing-mandatory-field"
	ForbiddenFieldPresent ValidationKind = "forbidden-field-present"
)

// ValidationError reports every violating key of a single kind.
type ValidationError struct {
	Kind   ValidationKind
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, strings.Join(e.Fields, ", "))
}

// Build converts a flat field mapping into a validated Annotation. Recognized
// keys are consumed; whatever remains is stored verbatim in Extra. An unknown
// tool type does not fail the build, it marks the annotation invalid so the
// caller can decide how to report it.
func Build(fields map[string]any) (*Annotation, error) {
	fields = copyFields(fields)

	if violations := presentKeys(fields, forbiddenKeys); len(violations) > 0 {
		return nil, &ValidationError{Kind: ForbiddenFieldPresent, Fields: violations}
	}

	if missing := missingKeys(fields, mandatoryKeys); len(missing) > 0 {
		return nil, &ValidationError{Kind: MissingMandatoryField, Fields: missing}
	}

	a := &Annotation{Valid: true}

	handleFields, _ := pop(fields, KeyHandles).(map[string]any)
	a.Handle = buildHandle(handleFields)

	a.SeriesInstanceUID = asString(pop(fields, KeySeriesInstanceUID))
	a.SOPInstanceUID = asString(pop(fields, KeySOPInstanceUID))
	a.StudyInstanceUID = asString(pop(fields, KeyStudyInstanceUID))
	a.PatientID = asString(pop(fields, KeyPatientID))

	a.ToolType = asString(pop(fields, KeyToolType))
	if !ValidToolType(a.ToolType) {
		a.Valid = false
	}

	a.ImagePath = ImagePath(a.StudyInstanceUID, a.SeriesInstanceUID, a.SOPInstanceUID)

	a.Visible = asBoolDefault(pop(fields, KeyVisible), true)
	a.Active = asBoolDefault(pop(fields, KeyActive), false)
	a.Description = asOptionalString(pop(fields, KeyDescription))
	a.Location = asOptionalString(pop(fields, KeyLocation))

	if origin, ok := fields[KeyUserOrigin]; ok {
		delete(fields, KeyUserOrigin)
		a.Origin = Origin{Type: OriginTypeUser, ID: asString(origin)}
	} else {
		a.Origin = Origin{Type: OriginTypeGear, ID: GearOriginID}
	}

	a.LesionNamingNumber = asIntDefault(pop(fields, KeyLesionNamingNumber), 0)
	a.MeasurementNumber = asIntDefault(pop(fields, KeyMeasurementNumber), 0)
	a.TimepointID = asOptionalString(pop(fields, KeyTimepointID))

	statFields, _ := pop(fields, KeyCachedStats).(map[string]any)
	a.CachedStats = buildCachedStats(a.Handle, statFields)

	a.UserID = asString(pop(fields, KeyUserID))

	a.Extra = fields

	return a, nil
}

// ImagePath derives the viewer's file link from the instance identifiers.
func ImagePath(study, series, sop string) string {
	const pathDelimiter = "$$$"
	const pathSuffix = "0"
	return study + pathDelimiter + series + pathDelimiter + sop + pathDelimiter + pathSuffix
}

// SetNumbers assigns the sequence numbers computed for the target scope.
func (a *Annotation) SetNumbers(n Numbers) {
	a.LesionNamingNumber = n.LesionNamingNumber
	a.MeasurementNumber = n.MeasurementNumber
}

func buildHandle(fields map[string]any) Handle {
	start := buildCoord(subMap(fields, KeyStart))
	end := buildCoord(subMap(fields, KeyEnd))

	textFields := subMap(fields, KeyTextBox)
	text := TextBox{
		Coord: Coord{
			X:      asFloatDefault(textFields[KeyX], start.X),
			Y:      asFloatDefault(textFields[KeyY], start.Y-(start.Y-end.Y)/2.0),
			Active: asBoolDefault(textFields[KeyActive], false),
		},
		AllowedOutsideImage: asBoolDefault(textFields[KeyAllowedOutsideImage], true),
		DrawnIndependently:  asBoolDefault(textFields[KeyDrawnIndependently], true),
		HasBoundingBox:      asBoolDefault(textFields[KeyHasBoundingBox], true),
		HasMoved:            asBoolDefault(textFields[KeyHasMoved], false),
		MovesIndependently:  asBoolDefault(textFields[KeyMovesIndependently], false),
		Active:              asBoolDefault(textFields[KeyActive], false),
		BoundingBox:         buildBoundingBox(subMap(textFields, KeyBoundingBox)),
	}

	return Handle{
		Start:           start,
		End:             end,
		TextBox:         text,
		InitialRotation: asFloatDefault(fields[KeyInitialRotation], 0),
	}
}

func buildCoord(fields map[string]any) Coord {
	highlight := asBoolDefault(fields[KeyHighlight], true)
	return Coord{
		X:         asFloatDefault(fields[KeyX], 0),
		Y:         asFloatDefault(fields[KeyY], 0),
		Active:    asBoolDefault(fields[KeyActive], false),
		Highlight: &highlight,
	}
}

func buildBoundingBox(fields map[string]any) BoundingBox {
	box := defaultBoundingBox()
	box.Height = asFloatDefault(fields[KeyHeight], box.Height)
	box.Left = asFloatDefault(fields[KeyLeft], box.Left)
	box.Top = asFloatDefault(fields[KeyTop], box.Top)
	box.Width = asFloatDefault(fields[KeyWidth], box.Width)
	return box
}

func buildCachedStats(h Handle, fields map[string]any) CachedStats {
	stats := statsFromHandle(h)
	stats.Area = asFloatDefault(fields[KeyArea], stats.Area)
	stats.Count = asFloatDefault(fields[KeyCount], stats.Count)
	stats.Max = asFloatDefault(fields[KeyMax], 0)
	stats.Min = asFloatDefault(fields[KeyMin], 0)
	stats.Mean = asFloatDefault(fields[KeyMean], 0)
	stats.StdDev = asFloatDefault(fields[KeyStdDev], 0)
	stats.Variance = asFloatDefault(fields[KeyVariance], 0)
	return stats
}

func copyFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func presentKeys(fields map[string]any, keys []string) []string {
	var present []string
	for _, k := range keys {
		if _, ok := fields[k]; ok {
			present = append(present, k)
		}
	}
	sort.Strings(present)
	return present
}

func missingKeys(fields map[string]any, keys []string) []string {
	var missing []string
	for _, k := range keys {
		if v, ok := fields[k]; !ok || v == nil {
			missing = append(missing, k)
		}
	}
	sort.Strings(missing)
	return missing
}

func pop(fields map[string]any, key string) any {
	v, ok := fields[key]
	if !ok {
		return nil
	}
	delete(fields, key)
	return v
}

func subMap(fields map[string]any, key string) map[string]any {
	if fields == nil {
		return nil
	}
	m, _ := fields[key].(map[string]any)
	return m
}

// --- scalar coercion ---

func asString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func asOptionalString(v any) *string {
	if v == nil {
		return nil
	}
	s := asString(v)
	return &s
}

func asFloatDefault(v any, def float64) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case float32:
		return float64(val)
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return def
}

func asIntDefault(v any, def int) int {
	switch val := v.(type) {
	case int:
		return val
	case int64:
		return int(val)
	case float64:
		return int(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return int(i)
		}
		if f, err := val.Float64(); err == nil {
			return int(f)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(val)); err == nil {
			return i
		}
	}
	return def
}

func asBoolDefault(v any, def bool) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(strings.ToLower(val))); err == nil {
			return b
		}
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i != 0
		}
	}
	return def
}
