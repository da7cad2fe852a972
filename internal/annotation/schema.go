// Package annotation builds validated ROI annotation records from flat row
// data and implements numbering and duplicate detection against a session's
// existing measurements.
package annotation

import "strings"

// Metadata keys of a serialized annotation record. The same constants drive
// the builder, the serializer, numbering, and duplicate detection so the
// producer and consumer of field names cannot drift.
const (
	KeyHandles            = "handles"
	KeyCachedStats        = "cachedStats"
	KeyFlywheelOrigin     = "flywheelOrigin"
	KeySeriesInstanceUID  = "seriesInstanceUid"
	KeySOPInstanceUID     = "sopInstanceUid"
	KeyStudyInstanceUID   = "studyInstanceUid"
	KeyImagePath          = "imagePath"
	KeyVisible            = "visible"
	KeyDescription        = "description"
	KeyLocation           = "location"
	KeyToolType           = "toolType"
	KeyLesionNamingNumber = "lesionNamingNumber"
	KeyMeasurementNumber  = "measurementNumber"
	KeyTimepointID        = "timepointId"
	KeyPatientID          = "patientId"
	KeyActive             = "active"
	KeyUserID             = "userId"
	KeyUUID               = "uuid"
	KeyID                 = "_id"
	KeyImportMethod       = "ImportMethod"
)

// Keys of the nested handle structure.
const (
	KeyStart           = "start"
	KeyEnd             = "end"
	KeyTextBox         = "textBox"
	KeyInitialRotation = "initialRotation"

	KeyX         = "x"
	KeyY         = "y"
	KeyHighlight = "highlight"

	KeyAllowedOutsideImage = "allowedOutsideImage"
	KeyDrawnIndependently  = "drawnIndependently"
	KeyHasBoundingBox      = "hasBoundingBox"
	KeyHasMoved            = "hasMoved"
	KeyMovesIndependently  = "movesIndependently"
	KeyBoundingBox         = "boundingBox"

	KeyHeight = "height"
	KeyLeft   = "left"
	KeyTop    = "top"
	KeyWidth  = "width"
)

// Keys of the cachedStats structure.
const (
	KeyArea     = "area"
	KeyCount    = "count"
	KeyMax      = "max"
	KeyMean     = "mean"
	KeyMin      = "min"
	KeyStdDev   = "stdDev"
	KeyVariance = "variance"
)

// KeyUserOrigin is the input-only field naming the user an annotation is
// attributed to. When absent the record is attributed to the gear itself.
const KeyUserOrigin = "user origin"

// Origin types and the fixed id used for gear-attributed annotations.
const (
	OriginTypeUser = "user"
	OriginTypeGear = "gear"
	GearOriginID   = "ROI Import Gear"
)

// ImportMethodValue marks records written by this tool.
const ImportMethodValue = "import-rois"

// The closed set of tool types the viewer understands.
const (
	ToolTypeRectangle = "RectangleRoi"
	ToolTypeElliptical = "EllipticalRoi"
)

var validToolTypes = []string{ToolTypeRectangle, ToolTypeElliptical}

// ValidToolType reports whether toolType names a known tool, ignoring case.
func ValidToolType(toolType string) bool {
	for _, valid := range validToolTypes {
		if strings.EqualFold(toolType, valid) {
			return true
		}
	}
	return false
}

// forbiddenKeys must never appear as user input; they are generated by the
// viewer or the store.
var forbiddenKeys = []string{KeyImagePath, KeyUUID, KeyID}

// mandatoryKeys must be present in the builder input. The instance UIDs and
// patient id come from the matched file's own metadata.
var mandatoryKeys = []string{
	KeyHandles,
	KeySeriesInstanceUID,
	KeySOPInstanceUID,
	KeyStudyInstanceUID,
	KeyPatientID,
	KeyToolType,
}
