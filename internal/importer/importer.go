package importer

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/flywheel-apps/roi-import/internal/annotation"
	"github.com/flywheel-apps/roi-import/internal/errors"
	"github.com/flywheel-apps/roi-import/internal/hierarchy"
	"github.com/flywheel-apps/roi-import/internal/logging"
	"github.com/flywheel-apps/roi-import/internal/metadata"
	"github.com/flywheel-apps/roi-import/internal/tabular"
)

// Options control one import run.
type Options struct {
	DryRun        bool
	Workers       int    // row parallelism, 1 reproduces sequential order
	MappingColumn string // object-name column, first column when empty
}

// Result summarizes a finished run. Row failures land in the report, not
// here.
type Result struct {
	Total     int
	Succeeded int
}

// Orchestrator processes a loaded table row by row against the container
// store.
type Orchestrator struct {
	store    hierarchy.Store
	resolver *hierarchy.Resolver
	opts     Options
	logger   *slog.Logger

	// defaultUser fills the user origin when the input has no such column.
	defaultUser string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an orchestrator over the given store.
func New(store hierarchy.Store, opts Options) *Orchestrator {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	logger := logging.ForService("importer")
	if logger == nil {
		logger = slog.Default().With("service", "importer")
	}
	return &Orchestrator{
		store:    store,
		resolver: hierarchy.NewResolver(store),
		opts:     opts,
		logger:   logger,
		locks:    map[string]*sync.Mutex{},
	}
}

// Run processes every row of the table and records per-row outcomes in the
// table's status columns. Only setup failures return an error; row failures
// are logged and reported.
func (o *Orchestrator) Run(ctx context.Context, table *tabular.Table) (*Result, error) {
	if _, err := table.ValidateMappingColumn(o.opts.MappingColumn); err != nil {
		return nil, err
	}

	if !table.HasHeader(annotation.KeyUserOrigin) {
		userID, err := o.store.CurrentUserID(ctx)
		if err != nil {
			// Setup failures abort the whole run, unlike row failures
			return nil, errors.New(err).
				Component("importer").
				Category(errors.CategoryStore).
				Priority(errors.PriorityCritical).
				Context("operation", "current-user").
				Build()
		}
		o.defaultUser = userID
	}

	result := &Result{Total: len(table.Rows)}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.Workers)

	var resultMu sync.Mutex
	for i := range table.Rows {
		row := table.Rows[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			outcome, address := o.processRow(ctx, row)

			resultMu.Lock()
			table.SetStatus(row.Index, outcome.String(), address)
			if outcome == Appended || outcome == DryRunSuccess {
				result.Succeeded++
			}
			resultMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return result, err
	}

	if result.Total > 0 {
		percent := float64(result.Succeeded) / float64(result.Total) * 100
		o.logger.Info("import run finished",
			"total", result.Total,
			"succeeded", result.Succeeded,
			"percent", percent)
	}

	return result, nil
}

// processRow runs the per-row state machine. It never returns an error; any
// failure is logged with row context and reflected in the outcome.
func (o *Orchestrator) processRow(ctx context.Context, row tabular.Row) (Outcome, string) {
	cells := cloneCells(row.Cells)

	path, err := hierarchy.PathFromRow(cells)
	if err != nil {
		o.logger.Error("row is not addressable", "row", row.Index, "error", err)
		return Failed, ""
	}

	match, err := o.resolver.Resolve(ctx, path)
	if err != nil {
		o.logger.Error("could not resolve row target",
			"row", row.Index,
			"path", path.SessionPath(),
			"object", path.ObjectName,
			"error", err)
		return Unresolved, ""
	}
	address := match.Address

	fields := annotation.FieldsFromRow(cells, hierarchy.IDsFromObject(match.Object))
	if _, ok := fields[annotation.KeyUserOrigin]; !ok && o.defaultUser != "" {
		fields[annotation.KeyUserOrigin] = o.defaultUser
	}

	ann, err := annotation.Build(fields)
	if err != nil {
		o.logger.Error("row failed validation", "row", row.Index, "address", address, "error", err)
		return Failed, address
	}
	if !ann.Valid {
		o.logger.Warn("unknown tool type, row excluded",
			"row", row.Index,
			"address", address,
			"toolType", ann.ToolType)
		return Invalid, address
	}

	outcome, err := o.persist(ctx, match.SessionID, ann)
	if err != nil {
		o.logger.Error("could not persist annotation",
			"row", row.Index,
			"address", address,
			"error", err)
		return Failed, address
	}

	o.logger.Info("row processed", "row", row.Index, "address", address, "outcome", outcome.String())
	return outcome, address
}

// persist runs the read-number-check-merge-write sequence. Rows sharing a
// session are serialized so numbering and duplicate checks observe each
// other's writes.
func (o *Orchestrator) persist(ctx context.Context, sessionID string, ann *annotation.Annotation) (Outcome, error) {
	lock := o.sessionLock(sessionID)
	lock.Lock()
	defer lock.Unlock()

	doc, err := o.store.SessionInfo(ctx, sessionID)
	if err != nil {
		return Failed, err
	}

	ann.SetNumbers(annotation.NextNumbers(doc))

	existing := metadata.MeasurementsIn(doc)[ann.ToolType]
	if annotation.IsDuplicate(ann, existing) {
		return DuplicateSkipped, nil
	}

	if o.opts.DryRun {
		return DryRunSuccess, nil
	}

	doc, reset := metadata.AppendMeasurement(doc, ann.ToolType, ann.ToMap())
	if reset {
		o.logger.Warn("category held a non-list value and was reset",
			"session", sessionID,
			"toolType", ann.ToolType)
	}

	if err := o.store.UpdateSessionInfo(ctx, sessionID, doc); err != nil {
		return Failed, err
	}
	o.resolver.Invalidate(sessionID)

	return Appended, nil
}

func (o *Orchestrator) sessionLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[sessionID] = lock
	}
	return lock
}

func cloneCells(cells map[string]any) map[string]any {
	out := make(map[string]any, len(cells))
	for k, v := range cells {
		out[k] = v
	}
	return out
}
