// Package importer drives an import run: resolve each row to a file, build
// the annotation, and merge it into the owning session's metadata.
package importer

// Outcome is the terminal state of one row, written to the report's status
// column.
type Outcome int

const (
	// Pending is the initial state before the row is processed.
	Pending Outcome = iota
	// Unresolved means the container path or object name matched nothing.
	Unresolved
	// Resolved means a single file matched; later stages decide the rest.
	Resolved
	// Invalid means the built annotation has an unknown tool type and is
	// excluded from persistence.
	Invalid
	// Built means the annotation passed validation, numbering and the
	// duplicate check.
	Built
	// DryRunSuccess means the row would have been appended.
	DryRunSuccess
	// Appended means the annotation was persisted to the session.
	Appended
	// DuplicateSkipped means identical geometry already exists in the scope.
	DuplicateSkipped
	// Failed means a stage errored; the row is reported and skipped.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Pending:
		return "Pending"
	case Unresolved:
		return "Unresolved"
	case Resolved:
		return "Resolved"
	case Invalid:
		return "Invalid"
	case Built:
		return "Built"
	case DryRunSuccess:
		return "Dry-Run Success"
	case Appended:
		return "Appended"
	case DuplicateSkipped:
		return "Duplicate Skipped"
	case Failed:
		return "Failed"
	default:
		return "Unknown"
	}
}
