package annotation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIDs() FileIDs {
	return FileIDs{
		SeriesInstanceUID: "1.2.3",
		SOPInstanceUID:    "4.5.6",
		StudyInstanceUID:  "7.8.9",
		PatientID:         "patient-01",
	}
}

func TestFieldsFromRowGeometry(t *testing.T) {
	t.Parallel()

	row := map[string]any{
		HeaderXMin:  json.Number("10"),
		HeaderYMin:  json.Number("20"),
		HeaderXMax:  json.Number("30"),
		HeaderYMax:  json.Number("40"),
		KeyToolType: "RectangleRoi",
	}

	fields := FieldsFromRow(row, sampleIDs())

	handles := fields[KeyHandles].(map[string]any)
	start := handles[KeyStart].(map[string]any)
	end := handles[KeyEnd].(map[string]any)
	assert.Equal(t, json.Number("10"), start[KeyX])
	assert.Equal(t, json.Number("40"), end[KeyY])

	// geometry columns are consumed
	assert.NotContains(t, fields, HeaderXMin)
	assert.NotContains(t, fields, HeaderYMax)
}

func TestFieldsFromRowBuildsValidAnnotation(t *testing.T) {
	t.Parallel()

	row := map[string]any{
		HeaderXMin:    json.Number("1"),
		HeaderYMin:    json.Number("2"),
		HeaderXMax:    json.Number("3"),
		HeaderYMax:    json.Number("4"),
		KeyToolType:   "EllipticalRoi",
		KeyLocation:   "left lung",
		"reader note": "check margins",
	}

	a, err := Build(FieldsFromRow(row, sampleIDs()))
	require.NoError(t, err)
	assert.True(t, a.Valid)
	require.NotNil(t, a.Location)
	assert.Equal(t, "left lung", *a.Location)
	assert.Equal(t, "check margins", a.Extra["reader note"])
}

func TestFieldsFromRowStatsColumns(t *testing.T) {
	t.Parallel()

	row := map[string]any{
		KeyToolType: "RectangleRoi",
		KeyMean:     json.Number("7.5"),
		KeyArea:     json.Number("100"),
	}

	fields := FieldsFromRow(row, sampleIDs())
	stats := fields[KeyCachedStats].(map[string]any)
	assert.Equal(t, json.Number("7.5"), stats[KeyMean])
	assert.Equal(t, json.Number("100"), stats[KeyArea])
	assert.NotContains(t, fields, KeyMean)
}

func TestFieldsFromRowToolTypeAlias(t *testing.T) {
	t.Parallel()

	fields := FieldsFromRow(map[string]any{HeaderToolTypeAlias: "RectangleRoi"}, sampleIDs())
	assert.Equal(t, "RectangleRoi", fields[KeyToolType])
}

func TestFieldsFromRowDropsReservedAndIDColumns(t *testing.T) {
	t.Parallel()

	row := map[string]any{
		HeaderHandle:        "reserved",
		"SeriesInstanceUID": "row-supplied",
		KeyToolType:         "RectangleRoi",
	}

	fields := FieldsFromRow(row, sampleIDs())
	assert.NotContains(t, fields, HeaderHandle)
	// the file's identifier wins over the row's column
	assert.Equal(t, "1.2.3", fields[KeySeriesInstanceUID])
}

func TestFieldsFromRowMissingIDsStayAbsent(t *testing.T) {
	t.Parallel()

	fields := FieldsFromRow(map[string]any{KeyToolType: "RectangleRoi"}, FileIDs{})

	_, err := Build(fields)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, MissingMandatoryField, ve.Kind)
	assert.Contains(t, ve.Fields, KeySeriesInstanceUID)
	assert.Contains(t, ve.Fields, KeyPatientID)
}

func TestFieldsFromRowSharedActiveHighlight(t *testing.T) {
	t.Parallel()

	row := map[string]any{
		HeaderActive:    true,
		HeaderHighlight: false,
		KeyToolType:     "RectangleRoi",
	}

	fields := FieldsFromRow(row, sampleIDs())
	handles := fields[KeyHandles].(map[string]any)
	start := handles[KeyStart].(map[string]any)
	end := handles[KeyEnd].(map[string]any)

	assert.Equal(t, true, start[KeyActive])
	assert.Equal(t, true, end[KeyActive])
	assert.Equal(t, false, start[KeyHighlight])
	assert.Equal(t, false, end[KeyHighlight])

	// consumed by the handle, not left for the annotation's active flag
	assert.NotContains(t, fields, HeaderActive)
}
