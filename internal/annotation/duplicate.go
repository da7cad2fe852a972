package annotation

import "math"

// truncateDecimals is how many decimal places coordinates keep for the
// duplicate comparison. Spreadsheet round-trips truncate long floating point
// coordinates, so comparing at 4 decimals still catches re-imported rows.
const truncateDecimals = 4

// IsDuplicate reports whether the candidate's geometry already exists among
// the scope's annotations of the same category. An existing record matches
// when every one of the candidate's four truncated handle coordinates appears
// somewhere in the record's truncated coordinate set. The comparison is
// deliberately unordered set-membership, which can false-positive on
// symmetric or repeated values; the behavior is kept as-is.
func IsDuplicate(candidate *Annotation, existing []map[string]any) bool {
	mine := [4]float64{
		Truncate(candidate.Handle.Start.X, truncateDecimals),
		Truncate(candidate.Handle.Start.Y, truncateDecimals),
		Truncate(candidate.Handle.End.X, truncateDecimals),
		Truncate(candidate.Handle.End.Y, truncateDecimals),
	}

	for _, record := range existing {
		theirs := recordCoords(record)

		matched := true
		for _, c := range mine {
			if !contains(theirs, c) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}

	return false
}

// recordCoords extracts the four truncated handle coordinates of a serialized
// annotation record; missing values read as 0.
func recordCoords(record map[string]any) [4]float64 {
	handles, _ := record[KeyHandles].(map[string]any)
	start, _ := handles[KeyStart].(map[string]any)
	end, _ := handles[KeyEnd].(map[string]any)

	return [4]float64{
		Truncate(asFloatDefault(start[KeyX], 0), truncateDecimals),
		Truncate(asFloatDefault(start[KeyY], 0), truncateDecimals),
		Truncate(asFloatDefault(end[KeyX], 0), truncateDecimals),
		Truncate(asFloatDefault(end[KeyY], 0), truncateDecimals),
	}
}

func contains(coords [4]float64, c float64) bool {
	for _, v := range coords {
		if v == c {
			return true
		}
	}
	return false
}

// Truncate floors f at n decimal places, without rounding.
func Truncate(f float64, n int) float64 {
	shift := math.Pow(10, float64(n))
	return math.Floor(f*shift) / shift
}
