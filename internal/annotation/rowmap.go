package annotation

// Input column headers for the handle geometry. These only exist in the
// tabular input, never in the persisted record.
const (
	HeaderXMin      = "X_min"
	HeaderYMin      = "Y_min"
	HeaderXMax      = "X_max"
	HeaderYMax      = "Y_max"
	HeaderActive    = "active"
	HeaderHighlight = "highlight"

	HeaderToolTypeAlias = "roi type"

	// HeaderHandle is reserved; a column by this name is dropped.
	HeaderHandle = "Handle"
)

// statHeaders are optional per-row cachedStats overrides.
var statHeaders = []string{KeyArea, KeyCount, KeyMax, KeyMean, KeyMin, KeyStdDev, KeyVariance}

// textBoxHeaders feed the handle textbox and bounding box.
var textBoxHeaders = []string{
	KeyAllowedOutsideImage,
	KeyDrawnIndependently,
	KeyHasBoundingBox,
	KeyHasMoved,
	KeyMovesIndependently,
}

var boundingBoxHeaders = []string{KeyHeight, KeyLeft, KeyTop, KeyWidth}

// FileIDs are the identifiers read from the matched file's own metadata.
type FileIDs struct {
	SeriesInstanceUID string
	SOPInstanceUID    string
	StudyInstanceUID  string
	PatientID         string
}

// sourceIDHeaders are the DICOM-style keys the identifiers live under in the
// file's metadata. Same-named row columns are dropped so the file's values
// always win.
var sourceIDHeaders = []string{
	"SeriesInstanceUID",
	"SOPInstanceUID",
	"StudyInstanceUID",
	"PatientID",
}

// FieldsFromRow assembles the builder input mapping from a flat row and the
// matched file's identifiers. Geometry columns are folded into the nested
// handles structure, stats columns into cachedStats; every other column
// passes through untouched.
func FieldsFromRow(row map[string]any, ids FileIDs) map[string]any {
	fields := copyFields(row)

	start := map[string]any{
		KeyX:         pop(fields, HeaderXMin),
		KeyY:         pop(fields, HeaderYMin),
		KeyActive:    fields[HeaderActive],
		KeyHighlight: fields[HeaderHighlight],
	}
	end := map[string]any{
		KeyX:         pop(fields, HeaderXMax),
		KeyY:         pop(fields, HeaderYMax),
		KeyActive:    pop(fields, HeaderActive),
		KeyHighlight: pop(fields, HeaderHighlight),
	}

	boundingBox := map[string]any{}
	for _, h := range boundingBoxHeaders {
		if v := pop(fields, h); v != nil {
			boundingBox[h] = v
		}
	}

	textBox := map[string]any{KeyBoundingBox: boundingBox}
	for _, h := range textBoxHeaders {
		if v := pop(fields, h); v != nil {
			textBox[h] = v
		}
	}

	fields[KeyHandles] = map[string]any{
		KeyStart:           start,
		KeyEnd:             end,
		KeyTextBox:         textBox,
		KeyInitialRotation: pop(fields, KeyInitialRotation),
	}

	stats := map[string]any{}
	for _, h := range statHeaders {
		if v := pop(fields, h); v != nil {
			stats[h] = v
		}
	}
	if len(stats) > 0 {
		fields[KeyCachedStats] = stats
	}

	if v := pop(fields, HeaderToolTypeAlias); v != nil {
		if _, ok := fields[KeyToolType]; !ok {
			fields[KeyToolType] = v
		}
	}

	// The reserved column and any row-supplied identifier columns are dropped
	delete(fields, HeaderHandle)
	for _, h := range sourceIDHeaders {
		delete(fields, h)
	}

	// Only non-empty identifiers are set; an absent UID must trip the
	// mandatory-field validation downstream.
	setIfPresent(fields, KeySeriesInstanceUID, ids.SeriesInstanceUID)
	setIfPresent(fields, KeySOPInstanceUID, ids.SOPInstanceUID)
	setIfPresent(fields, KeyStudyInstanceUID, ids.StudyInstanceUID)
	setIfPresent(fields, KeyPatientID, ids.PatientID)

	return fields
}

func setIfPresent(fields map[string]any, key, value string) {
	if value != "" {
		fields[key] = value
	}
}
