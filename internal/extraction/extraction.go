// Package extraction turns uploaded files into keyed collections of
// structured records by running each file through an ordered list of sources.
package extraction

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/invoice-matcher/internal/document"
	"github.com/spigell/invoice-matcher/internal/logger"
)

// ErrNoSource is returned when no enabled source accepted an upload.
var ErrNoSource = errors.New("no extraction source accepted the upload")

// Source produces a record for an upload.
type Source interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Accepts(upload *document.Upload) bool
	Extract(ctx context.Context, upload *document.Upload) (*document.ExtractedData, error)
}

// Step describes what happened to one kind of upload during a run.
type Step struct {
	Kind     document.Kind
	Received int
	Dropped  int
	BySource map[string]int
}

// Status represents runtime information about a source.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Pipeline runs uploads through its sources. The first enabled source that
// accepts an upload and succeeds wins; failures fall through to the next one.
type Pipeline struct {
	sources  []Source
	maxFiles int
	logger   *zap.Logger
}

// New creates a pipeline. maxFiles limits uploads per kind; zero means no limit.
func New(sources []Source, maxFiles int, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxFiles < 0 {
		maxFiles = 0
	}
	return &Pipeline{sources: sources, maxFiles: maxFiles, logger: logger}
}

// DisableByName marks a source with the provided name as disabled while keeping it in the list.
func (p *Pipeline) DisableByName(name, reason string) {
	for _, source := range p.sources {
		if source.Name() == name {
			source.Disable(reason)
		}
	}
}

// Run extracts every file of the given kind and returns them keyed by file
// name, in the order the paths were given.
func (p *Pipeline) Run(ctx context.Context, kind document.Kind, paths []string) (*document.Collection, Step, error) {
	step := Step{Kind: kind, Received: len(paths), BySource: make(map[string]int)}

	if p.maxFiles > 0 && len(paths) > p.maxFiles {
		p.logger.Warn("too many files, extra files are ignored",
			zap.String("document_kind", kind.String()),
			zap.Int("received", len(paths)),
			zap.Int("max_files", p.maxFiles),
			zap.Strings("ignored", paths[p.maxFiles:]),
		)
		step.Dropped = len(paths) - p.maxFiles
		paths = paths[:p.maxFiles]
	}

	collection := document.NewCollection()
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, step, err
		}

		upload, err := document.NewUpload(kind, path)
		if err != nil {
			return nil, step, fmt.Errorf("open %s: %w", kind.Title(), err)
		}

		record, source, err := p.extract(ctx, upload)
		if err != nil {
			return nil, step, fmt.Errorf("%s: %w", upload.Name(), err)
		}
		step.BySource[source]++

		key := uniqueKey(collection, upload)
		collection.Set(key, record)

		p.logger.Info("document extracted", append(logger.DocumentFields(kind, key),
			zap.String("upload_id", upload.ID),
			zap.String("source", source),
			zap.String("document_number", record.DocumentNumber),
			zap.String("vendor", record.Vendor),
			zap.Float64("total", record.Total),
			zap.Int("items", len(record.Items)),
		)...)
	}

	return collection, step, nil
}

// uniqueKey prefers the base name, then the path, then the base name with a
// #n suffix. Every upload gets its own entry even when a path repeats.
func uniqueKey(collection *document.Collection, upload *document.Upload) string {
	for _, key := range []string{upload.Name(), upload.Path} {
		if _, exists := collection.Get(key); !exists {
			return key
		}
	}

	for n := 2; ; n++ {
		key := fmt.Sprintf("%s#%d", upload.Name(), n)
		if _, exists := collection.Get(key); !exists {
			return key
		}
	}
}

func (p *Pipeline) extract(ctx context.Context, upload *document.Upload) (*document.ExtractedData, string, error) {
	var errs []error
	for _, source := range p.sources {
		if !source.IsEnabled() || !source.Accepts(upload) {
			continue
		}

		record, err := source.Extract(ctx, upload)
		if err == nil && record != nil {
			return record, source.Name(), nil
		}
		if err == nil {
			err = errors.New("empty record")
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, "", ctxErr
		}

		p.logger.Warn("extraction source failed",
			zap.String("source", source.Name()),
			zap.String("upload_id", upload.ID),
			zap.String("file", upload.Name()),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", source.Name(), err))
	}

	return nil, "", errors.Join(append([]error{ErrNoSource}, errs...)...)
}

// Describe returns status entries for the pipeline sources.
func (p *Pipeline) Describe() []Status {
	statuses := make([]Status, 0, len(p.sources))
	for _, source := range p.sources {
		if reporter, ok := source.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}
		statuses = append(statuses, Status{Name: source.Name(), Enabled: source.IsEnabled()})
	}
	return statuses
}
