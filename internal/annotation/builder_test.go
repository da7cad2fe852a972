package annotation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validFields() map[string]any {
	return map[string]any{
		KeyHandles: map[string]any{
			KeyStart: map[string]any{KeyX: json.Number("10"), KeyY: json.Number("20")},
			KeyEnd:   map[string]any{KeyX: json.Number("30"), KeyY: json.Number("50")},
		},
		KeySeriesInstanceUID: "1.2.3",
		KeySOPInstanceUID:    "4.5.6",
		KeyStudyInstanceUID:  "7.8.9",
		KeyPatientID:         "patient-01",
		KeyToolType:          "RectangleRoi",
	}
}

func TestBuildValid(t *testing.T) {
	t.Parallel()

	a, err := Build(validFields())
	require.NoError(t, err)

	assert.True(t, a.Valid)
	assert.Equal(t, "RectangleRoi", a.ToolType)
	assert.Equal(t, "1.2.3", a.SeriesInstanceUID)
	assert.Equal(t, "patient-01", a.PatientID)
	assert.InDelta(t, 10.0, a.Handle.Start.X, 1e-9)
	assert.InDelta(t, 50.0, a.Handle.End.Y, 1e-9)
}

func TestBuildImagePath(t *testing.T) {
	t.Parallel()

	a, err := Build(validFields())
	require.NoError(t, err)
	assert.Equal(t, "7.8.9$$$1.2.3$$$4.5.6$$$0", a.ImagePath)

	// Round-trip stable: rebuilding from the same identifiers gives the same path
	assert.Equal(t, a.ImagePath, ImagePath(a.StudyInstanceUID, a.SeriesInstanceUID, a.SOPInstanceUID))
}

func TestBuildForbiddenField(t *testing.T) {
	t.Parallel()

	for _, key := range []string{KeyImagePath, KeyUUID, KeyID} {
		key := key
		t.Run(key, func(t *testing.T) {
			t.Parallel()

			fields := validFields()
			fields[key] = "supplied"

			_, err := Build(fields)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, ForbiddenFieldPresent, ve.Kind)
			assert.Contains(t, ve.Fields, key)
		})
	}
}

func TestBuildForbiddenWinsOverOtherValidity(t *testing.T) {
	t.Parallel()

	// _id supplied by the caller always fails, even when everything else is broken too
	fields := map[string]any{KeyID: "x"}
	_, err := Build(fields)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, ForbiddenFieldPresent, ve.Kind)
}

func TestBuildMissingMandatory(t *testing.T) {
	t.Parallel()

	fields := validFields()
	delete(fields, KeySOPInstanceUID)
	delete(fields, KeyPatientID)

	_, err := Build(fields)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, MissingMandatoryField, ve.Kind)
	assert.ElementsMatch(t, []string{KeySOPInstanceUID, KeyPatientID}, ve.Fields)
}

func TestBuildInvalidToolTypeIsNotAnError(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields[KeyToolType] = "FreehandRoi"

	a, err := Build(fields)
	require.NoError(t, err)
	assert.False(t, a.Valid)
	assert.Equal(t, "FreehandRoi", a.ToolType)
}

func TestBuildToolTypeCaseInsensitive(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields[KeyToolType] = "rectangleroi"

	a, err := Build(fields)
	require.NoError(t, err)
	assert.True(t, a.Valid)
	// The user's spelling is kept
	assert.Equal(t, "rectangleroi", a.ToolType)
}

func TestBuildDefaults(t *testing.T) {
	t.Parallel()

	a, err := Build(validFields())
	require.NoError(t, err)

	assert.True(t, a.Visible)
	assert.False(t, a.Active)
	assert.Nil(t, a.Description)
	assert.Nil(t, a.Location)
	assert.Equal(t, "", a.UserID)
	assert.Equal(t, Origin{Type: OriginTypeGear, ID: GearOriginID}, a.Origin)
	assert.InDelta(t, 0.0, a.Handle.InitialRotation, 1e-9)
}

func TestBuildUserOrigin(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields[KeyUserOrigin] = "reader@example.com"

	a, err := Build(fields)
	require.NoError(t, err)
	assert.Equal(t, Origin{Type: OriginTypeUser, ID: "reader@example.com"}, a.Origin)
}

func TestBuildCachedStatsComputed(t *testing.T) {
	t.Parallel()

	a, err := Build(validFields())
	require.NoError(t, err)

	// dx=20, dy=30
	assert.InDelta(t, 600.0, a.CachedStats.Area, 1e-9)
	assert.InDelta(t, 600.0, a.CachedStats.Count, 1e-9)
	assert.Zero(t, a.CachedStats.Mean)
}

func TestBuildCachedStatsSupplied(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields[KeyCachedStats] = map[string]any{
		KeyArea: json.Number("123.5"),
		KeyMean: json.Number("7"),
	}

	a, err := Build(fields)
	require.NoError(t, err)
	assert.InDelta(t, 123.5, a.CachedStats.Area, 1e-9)
	assert.InDelta(t, 7.0, a.CachedStats.Mean, 1e-9)
	// count still computed from the handle bounds
	assert.InDelta(t, 600.0, a.CachedStats.Count, 1e-9)
}

func TestBuildTextBoxDefaults(t *testing.T) {
	t.Parallel()

	a, err := Build(validFields())
	require.NoError(t, err)

	text := a.Handle.TextBox
	assert.InDelta(t, 10.0, text.Coord.X, 1e-9) // start.x
	assert.InDelta(t, 35.0, text.Coord.Y, 1e-9) // midpoint of start.y and end.y
	assert.True(t, text.AllowedOutsideImage)
	assert.True(t, text.DrawnIndependently)
	assert.True(t, text.HasBoundingBox)
	assert.False(t, text.HasMoved)
	assert.False(t, text.MovesIndependently)
	assert.Equal(t, defaultBoundingBox(), text.BoundingBox)
}

func TestBuildExtraFieldsPassThrough(t *testing.T) {
	t.Parallel()

	fields := validFields()
	fields["site note"] = "left lung"
	fields["reader score"] = json.Number("4")

	a, err := Build(fields)
	require.NoError(t, err)
	assert.Equal(t, "left lung", a.Extra["site note"])

	out := a.ToMap()
	assert.Equal(t, "left lung", out["site note"])
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	fields := validFields()
	_, err := Build(fields)
	require.NoError(t, err)
	assert.Contains(t, fields, KeyHandles)
	assert.Contains(t, fields, KeyToolType)
}

func TestToMapKeys(t *testing.T) {
	t.Parallel()

	a, err := Build(validFields())
	require.NoError(t, err)
	a.SetNumbers(Numbers{LesionNamingNumber: 3, MeasurementNumber: 3})

	out := a.ToMap()

	wantKeys := []string{
		KeyHandles, KeyCachedStats, KeyFlywheelOrigin, KeySeriesInstanceUID,
		KeySOPInstanceUID, KeyStudyInstanceUID, KeyImagePath, KeyVisible,
		KeyDescription, KeyLocation, KeyToolType, KeyLesionNamingNumber,
		KeyMeasurementNumber, KeyTimepointID, KeyPatientID, KeyActive,
		KeyUserID, KeyUUID, KeyID, KeyImportMethod,
	}
	for _, k := range wantKeys {
		assert.Contains(t, out, k)
	}

	assert.Equal(t, ImportMethodValue, out[KeyImportMethod])
	assert.Equal(t, 3, out[KeyMeasurementNumber])
	assert.Equal(t, "", out[KeyUUID])
	assert.Equal(t, "", out[KeyID])
	assert.Nil(t, out[KeyDescription])

	handles := out[KeyHandles].(map[string]any)
	start := handles[KeyStart].(map[string]any)
	assert.Equal(t, true, start[KeyHighlight])
}
