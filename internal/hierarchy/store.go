// Package hierarchy locates annotation targets inside the container store.
// Containers nest as group, project, subject, session and acquisition, with
// files attached to acquisitions.
package hierarchy

import (
	"context"
	"fmt"

	"github.com/flywheel-apps/roi-import/internal/metadata"
)

// Object is a file inside an acquisition, the thing a row's object name
// resolves to.
type Object struct {
	Name             string
	Type             string
	AcquisitionID    string
	AcquisitionLabel string
	SessionID        string
	Info             map[string]any
}

// Match is the result of resolving a ContainerPath: the matched file, the
// session scope its annotations are written to, and the human-readable
// address recorded in the report.
type Match struct {
	Object    Object
	SessionID string
	Address   string
}

// Store is the contract the resolver and the orchestrator need from the
// container store. Implemented by the flywheel package; faked in tests.
type Store interface {
	// LookupSession resolves a group/project/subject/session path to a
	// session container id.
	LookupSession(ctx context.Context, group, project, subject, session string) (string, error)

	// ListSessionObjects returns every acquisition file in the session.
	ListSessionObjects(ctx context.Context, sessionID string) ([]Object, error)

	// SessionInfo returns the session's current metadata document.
	SessionInfo(ctx context.Context, sessionID string) (metadata.Document, error)

	// UpdateSessionInfo replaces the session's metadata document.
	UpdateSessionInfo(ctx context.Context, sessionID string, doc metadata.Document) error

	// CurrentUserID identifies the user the API key belongs to.
	CurrentUserID(ctx context.Context) (string, error)
}

// NoMatchError means no file in the session carries the object name.
type NoMatchError struct {
	ObjectName string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match for object name %q", e.ObjectName)
}

// AmbiguousMatchError means more than one file carries the object name; the
// resolver never guesses between them.
type AmbiguousMatchError struct {
	ObjectName string
	Count      int
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%d matches for object name %q", e.Count, e.ObjectName)
}

// LookupError means the session path itself could not be resolved.
type LookupError struct {
	Path string
	Err  error
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("no session found for %s: %v", e.Path, e.Err)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}
