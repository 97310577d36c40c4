// Package extract applies a DDL script to a throwaway database and reads
// back the resulting schema model.
package extract

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sadopc/ddlschema/internal/adapter"
	_ "github.com/sadopc/ddlschema/internal/adapter/sqlite"
	"github.com/sadopc/ddlschema/internal/schema"
)

// DefaultEngine is the registry name used when no engine is given.
const DefaultEngine = "sqlite"

// Option configures an Extractor.
type Option func(*Extractor)

// WithEngine sets the engine that provides database instances.
func WithEngine(e adapter.Engine) Option {
	return func(x *Extractor) { x.engine = e }
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.logger = l
		}
	}
}

// WithFilter limits the returned tables and views.
func WithFilter(f Filter) Option {
	return func(x *Extractor) { x.filter = f }
}

// Extractor runs extractions with a fixed configuration. It holds no
// per-call state and may be used from several goroutines.
type Extractor struct {
	engine adapter.Engine
	logger *zap.Logger
	filter Filter
}

// New returns an Extractor configured by opts.
func New(opts ...Option) *Extractor {
	x := &Extractor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

// Extract is shorthand for New(opts...).Extract(ctx, ddl).
func Extract(ctx context.Context, ddl string, opts ...Option) ([]schema.Schema, error) {
	return New(opts...).Extract(ctx, ddl)
}

// Extract applies ddl to a fresh instance and returns one Schema per
// attached, non-temporary schema. The instance is closed on every path.
func (x *Extractor) Extract(ctx context.Context, ddl string) (schemas []schema.Schema, err error) {
	if err := x.filter.Validate(); err != nil {
		return nil, err
	}

	engine := x.engine
	if engine == nil {
		e, ok := adapter.Lookup(DefaultEngine)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEngine, DefaultEngine)
		}
		engine = e
	}

	inst, err := engine.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open %s instance: %w", engine.Name(), err)
	}
	x.logger.Debug("instance opened", zap.String("engine", engine.Name()))

	defer func() {
		closeErr := inst.Close()
		x.logger.Debug("instance closed", zap.String("engine", engine.Name()), zap.Error(closeErr))
		if err == nil && closeErr != nil {
			schemas = nil
			err = fmt.Errorf("close %s instance: %w", engine.Name(), closeErr)
		}
	}()

	if err := inst.Exec(ctx, ddl); err != nil {
		return nil, &EngineError{Err: err}
	}

	schemas, err = x.enumerate(ctx, inst)
	if err != nil {
		return nil, err
	}

	if !x.filter.IsZero() {
		for i := range schemas {
			schemas[i] = x.filter.Apply(schemas[i])
		}
	}
	return schemas, nil
}

// IsEngineError reports whether err came from the engine rejecting DDL.
func IsEngineError(err error) bool {
	var target *EngineError
	return errors.As(err, &target)
}
