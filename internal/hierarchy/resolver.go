package hierarchy

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/flywheel-apps/roi-import/internal/annotation"
	"github.com/flywheel-apps/roi-import/internal/logging"
	"github.com/patrickmn/go-cache"
)

const (
	cacheExpiration = 5 * time.Minute
	cacheCleanup    = 10 * time.Minute

	sessionKeyPrefix = "session:"
	objectsKeyPrefix = "objects:"
)

// Resolver maps container paths to unique target files. Session lookups and
// object listings are cached so rows grouped on the same session skip
// repeat store calls.
type Resolver struct {
	store  Store
	cache  *cache.Cache
	logger *slog.Logger
}

// NewResolver creates a resolver backed by the given store.
func NewResolver(store Store) *Resolver {
	logger := logging.ForService("hierarchy")
	if logger == nil {
		logger = slog.Default().With("service", "hierarchy")
	}
	return &Resolver{
		store:  store,
		cache:  cache.New(cacheExpiration, cacheCleanup),
		logger: logger,
	}
}

// Resolve finds the single file the path names. Zero matches yield a
// NoMatchError, multiple matches an AmbiguousMatchError, a failed session
// lookup a LookupError.
func (r *Resolver) Resolve(ctx context.Context, path ContainerPath) (*Match, error) {
	sessionID, err := r.lookupSession(ctx, path)
	if err != nil {
		return nil, &LookupError{Path: path.SessionPath(), Err: err}
	}

	objects, err := r.sessionObjects(ctx, sessionID)
	if err != nil {
		return nil, &LookupError{Path: path.SessionPath(), Err: err}
	}

	matches := filterMatches(objects, path.ObjectName)
	if len(matches) == 0 && path.FileType != "" {
		// The bare name had no match, retry with the file-type suffix
		matches = filterMatches(objects, path.NameWithType())
	}

	switch len(matches) {
	case 0:
		return nil, &NoMatchError{ObjectName: path.ObjectName}
	case 1:
		// fall through
	default:
		return nil, &AmbiguousMatchError{ObjectName: path.ObjectName, Count: len(matches)}
	}

	object := matches[0]
	return &Match{
		Object:    object,
		SessionID: sessionID,
		Address:   address(path, object),
	}, nil
}

// Invalidate drops the cached object listing for a session. Called after a
// persist so later rows observe the written document.
func (r *Resolver) Invalidate(sessionID string) {
	r.cache.Delete(objectsKeyPrefix + sessionID)
}

func (r *Resolver) lookupSession(ctx context.Context, path ContainerPath) (string, error) {
	key := sessionKeyPrefix + path.SessionPath()
	if cached, found := r.cache.Get(key); found {
		return cached.(string), nil
	}

	r.logger.Info("checking for location", "path", path.SessionPath())
	sessionID, err := r.store.LookupSession(ctx, path.Group, path.Project, path.Subject, path.Session)
	if err != nil {
		return "", err
	}

	r.cache.SetDefault(key, sessionID)
	return sessionID, nil
}

func (r *Resolver) sessionObjects(ctx context.Context, sessionID string) ([]Object, error) {
	key := objectsKeyPrefix + sessionID
	if cached, found := r.cache.Get(key); found {
		return cached.([]Object), nil
	}

	objects, err := r.store.ListSessionObjects(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	r.cache.SetDefault(key, objects)
	return objects, nil
}

func filterMatches(objects []Object, name string) []Object {
	var matches []Object
	for _, obj := range objects {
		if obj.Name == name {
			matches = append(matches, obj)
		}
	}
	return matches
}

// address renders the human-readable path recorded in the status report.
func address(path ContainerPath, object Object) string {
	parts := []string{path.Group, path.Project, path.Subject, path.Session}
	if object.AcquisitionLabel != "" {
		parts = append(parts, object.AcquisitionLabel)
	}
	parts = append(parts, object.Name)
	return strings.Join(parts, "/")
}

// IDsFromObject reads the annotation link identifiers from the matched
// file's own metadata. This is how the viewer ties annotations to files.
func IDsFromObject(object Object) annotation.FileIDs {
	return annotation.FileIDs{
		SeriesInstanceUID: infoString(object.Info, "SeriesInstanceUID"),
		SOPInstanceUID:    infoString(object.Info, "SOPInstanceUID"),
		StudyInstanceUID:  infoString(object.Info, "StudyInstanceUID"),
		PatientID:         infoString(object.Info, "PatientID"),
	}
}

func infoString(info map[string]any, key string) string {
	if s, ok := info[key].(string); ok {
		return s
	}
	return ""
}
