// Package generator implements the pre-build hook: it advances the build
// counter and rewrites the metadata header with fresh environment facts.
package generator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/fwbuild/internal/buildinfo"
	"github.com/muurk/fwbuild/internal/probe"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// FactSource gathers environment facts. *probe.Prober implements it.
type FactSource interface {
	Gather(ctx context.Context) (probe.Facts, error)
}

// Generator produces the next build metadata record.
type Generator struct {
	store  *buildinfo.Store
	facts  FactSource
	now    func() time.Time
	logger *zap.Logger
}

// New creates a generator writing to store.
func New(store *buildinfo.Store, facts FactSource, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		store:  store,
		facts:  facts,
		now:    time.Now,
		logger: logger,
	}
}

// WithClock overrides the wall clock used for the build date and time.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Result describes one generator run.
type Result struct {
	// Previous is the record read from disk, nil when the file was missing or empty
	Previous *buildinfo.Record
	// Record is the record that was (or, for a dry run, would be) written
	Record buildinfo.Record
	// FactsErr is the reason environment facts fell back to UNKNOWN, if any
	FactsErr error
	// Written is false for dry runs
	Written bool
}

// Run advances the metadata file by one build.
//
// Steps:
//  1. Create the metadata file if it does not exist
//  2. Read the previous record (missing or empty starts at v0.0.001)
//  3. Increment the minor counter
//  4. Stamp the current date and time
//  5. Gather build type, git hash, branch and machine name
//  6. Replace the metadata file
//
// Failure to gather facts is not an error: the facts become UNKNOWN.
// Any I/O error on the metadata file is returned.
func (g *Generator) Run(ctx context.Context) (*Result, error) {
	return g.run(ctx, true)
}

// Plan computes the next record without touching the metadata file.
func (g *Generator) Plan(ctx context.Context) (*Result, error) {
	return g.run(ctx, false)
}

func (g *Generator) run(ctx context.Context, write bool) (*Result, error) {
	result := &Result{}

	if write {
		if err := g.store.Ensure(); err != nil {
			return nil, err
		}
	}

	prev, err := g.previous(write)
	if err != nil {
		return nil, err
	}

	var rec buildinfo.Record
	if prev == nil {
		rec = buildinfo.Initial()
	} else {
		result.Previous = prev
		rec = prev.Next()
	}

	now := g.now()
	rec.Date = now.Format(dateLayout)
	rec.Time = now.Format(timeLayout)

	facts, err := g.facts.Gather(ctx)
	if err != nil {
		g.logger.Warn("environment probe failed, recording UNKNOWN",
			zap.Error(err),
		)
		facts = probe.UnknownFacts()
		result.FactsErr = err
	}
	facts.Apply(&rec)
	result.Record = rec

	if !write {
		return result, nil
	}

	if err := g.store.Save(rec); err != nil {
		return nil, err
	}
	result.Written = true

	g.logger.Info("build metadata written",
		zap.String("file", g.store.Path),
		zap.String("version", rec.Version()),
		zap.String("build_type", string(rec.Type)),
		zap.String("branch", rec.GitBranch),
	)

	return result, nil
}

// previous returns the stored record, or nil when there is none yet.
func (g *Generator) previous(mustExist bool) (*buildinfo.Record, error) {
	rec, empty, err := g.store.Load()
	if err != nil {
		if !mustExist && errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read previous build metadata: %w", err)
	}
	if empty {
		return nil, nil
	}
	return &rec, nil
}
