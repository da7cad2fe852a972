package annotation

import "math"

// Coord is a single handle endpoint.
type Coord struct {
	X         float64
	Y         float64
	Active    bool
	Highlight *bool // omitted from the serialized form when nil
}

func (c Coord) toMap() map[string]any {
	out := map[string]any{
		KeyX:      c.X,
		KeyY:      c.Y,
		KeyActive: c.Active,
	}
	if c.Highlight != nil {
		out[KeyHighlight] = *c.Highlight
	}
	return out
}

// BoundingBox is the label textbox extent. The defaults are a kind of
// "catch all" value determined empirically.
type BoundingBox struct {
	Height float64
	Left   float64
	Top    float64
	Width  float64
}

func defaultBoundingBox() BoundingBox {
	return BoundingBox{Height: 45, Left: 400, Top: 150, Width: 250}
}

func (b BoundingBox) toMap() map[string]any {
	return map[string]any{
		KeyHeight: b.Height,
		KeyLeft:   b.Left,
		KeyTop:    b.Top,
		KeyWidth:  b.Width,
	}
}

// TextBox is the annotation label box, positioned next to the handle.
type TextBox struct {
	Coord               Coord
	AllowedOutsideImage bool
	DrawnIndependently  bool
	HasBoundingBox      bool
	HasMoved            bool
	MovesIndependently  bool
	Active              bool
	BoundingBox         BoundingBox
}

func (t TextBox) toMap() map[string]any {
	out := map[string]any{
		KeyAllowedOutsideImage: t.AllowedOutsideImage,
		KeyDrawnIndependently:  t.DrawnIndependently,
		KeyHasBoundingBox:      t.HasBoundingBox,
		KeyHasMoved:            t.HasMoved,
		KeyMovesIndependently:  t.MovesIndependently,
		KeyBoundingBox:         t.BoundingBox.toMap(),
		KeyActive:              t.Active,
	}
	for k, v := range t.Coord.toMap() {
		out[k] = v
	}
	return out
}

// Handle is the start/end coordinate pair defining an annotation's geometry
// plus its label textbox.
type Handle struct {
	Start           Coord
	End             Coord
	TextBox         TextBox
	InitialRotation float64
}

func (h Handle) toMap() map[string]any {
	return map[string]any{
		KeyStart:           h.Start.toMap(),
		KeyEnd:             h.End.toMap(),
		KeyTextBox:         h.TextBox.toMap(),
		KeyInitialRotation: h.InitialRotation,
	}
}

// CachedStats is the geometric summary of an annotation.
type CachedStats struct {
	Area     float64
	Count    float64
	Max      float64
	Min      float64
	Mean     float64
	StdDev   float64
	Variance float64
}

// statsFromHandle computes area and count from the handle bounds.
func statsFromHandle(h Handle) CachedStats {
	xmax := math.Max(h.Start.X, h.End.X)
	xmin := math.Min(h.Start.X, h.End.X)
	ymax := math.Max(h.Start.Y, h.End.Y)
	ymin := math.Min(h.Start.Y, h.End.Y)

	return CachedStats{
		Area:  (xmax - xmin) * (ymax - ymin),
		Count: (math.Round(xmax) - math.Round(xmin)) * (math.Round(ymax) - math.Round(ymin)),
	}
}

func (s CachedStats) toMap() map[string]any {
	return map[string]any{
		KeyArea:     s.Area,
		KeyCount:    s.Count,
		KeyMax:      s.Max,
		KeyMean:     s.Mean,
		KeyMin:      s.Min,
		KeyStdDev:   s.StdDev,
		KeyVariance: s.Variance,
	}
}

// Origin records who created an annotation.
type Origin struct {
	Type string
	ID   string
}

func (o Origin) toMap() map[string]any {
	return map[string]any{"type": o.Type, "id": o.ID}
}

// Annotation is a single region-of-interest record ready to be merged into a
// session's metadata document.
type Annotation struct {
	Handle            Handle
	CachedStats       CachedStats
	Origin            Origin
	SeriesInstanceUID string
	SOPInstanceUID    string
	StudyInstanceUID  string
	ImagePath         string
	Visible           bool
	Description       *string
	Location          *string
	ToolType          string
	LesionNamingNumber int
	MeasurementNumber  int
	TimepointID       *string
	PatientID         string
	Active            bool
	UserID            string

	// Valid is false when the tool type is not in the closed set; invalid
	// records are reported but never persisted.
	Valid bool

	// Extra holds unrecognized input fields, stored verbatim for
	// forward-compatibility and never interpreted.
	Extra map[string]any
}

// ToMap serializes the annotation to the mapping shape the viewer reads.
// Extra fields are carried alongside the schema keys.
func (a *Annotation) ToMap() map[string]any {
	out := map[string]any{
		KeyHandles:            a.Handle.toMap(),
		KeyCachedStats:        a.CachedStats.toMap(),
		KeyFlywheelOrigin:     a.Origin.toMap(),
		KeySeriesInstanceUID:  a.SeriesInstanceUID,
		KeySOPInstanceUID:     a.SOPInstanceUID,
		KeyStudyInstanceUID:   a.StudyInstanceUID,
		KeyImagePath:          a.ImagePath,
		KeyVisible:            a.Visible,
		KeyDescription:        optional(a.Description),
		KeyLocation:           optional(a.Location),
		KeyToolType:           a.ToolType,
		KeyLesionNamingNumber: a.LesionNamingNumber,
		KeyMeasurementNumber:  a.MeasurementNumber,
		KeyTimepointID:        optional(a.TimepointID),
		KeyPatientID:          a.PatientID,
		KeyActive:             a.Active,
		KeyUserID:             a.UserID,
		KeyUUID:               "",
		KeyID:                 "",
		KeyImportMethod:       ImportMethodValue,
	}

	for k, v := range a.Extra {
		if _, taken := out[k]; !taken {
			out[k] = v
		}
	}

	return out
}

func optional(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
