// Package exporter runs jobs: it resolves a job, opens its connection,
// executes the query and projects the result into the output file.
package exporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dagu-org/sqljson/internal/cmn/logger"
	"github.com/dagu-org/sqljson/internal/cmn/logger/tag"
	"github.com/dagu-org/sqljson/internal/database"
	"github.com/dagu-org/sqljson/internal/job"
	"github.com/dagu-org/sqljson/internal/jsonsink"
	"github.com/dagu-org/sqljson/internal/projector"
)

// JobError is the failure of one job.
type JobError struct {
	Job string
	Err error
}

func (e *JobError) Error() string {
	return fmt.Sprintf("Error while running job %s: %v", e.Job, e.Err)
}

func (e *JobError) Unwrap() error {
	return e.Err
}

// Result describes one job run.
type Result struct {
	Job      string
	Driver   string
	Output   string
	Rows     int
	Duration time.Duration
	// Warnings lists unsupported columns when warnings are collected.
	Warnings []string
	// Err is a *JobError when the job failed.
	Err error
}

// Exporter runs the jobs of one job file.
type Exporter struct {
	file            *job.File
	formatter       projector.Formatter
	indent          int
	flushBytes      int
	collectWarnings bool
	continueOnError bool
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithFormatter sets the formatter for date and time columns.
func WithFormatter(f projector.Formatter) Option {
	return func(e *Exporter) {
		e.formatter = f
	}
}

// WithIndent indents the output by n spaces per level.
func WithIndent(n int) Option {
	return func(e *Exporter) {
		e.indent = n
	}
}

// WithFlushBytes sets the buffered size after which output is flushed.
func WithFlushBytes(n int) Option {
	return func(e *Exporter) {
		e.flushBytes = n
	}
}

// WithWarnings collects unsupported column warnings into each Result.
func WithWarnings() Option {
	return func(e *Exporter) {
		e.collectWarnings = true
	}
}

// WithContinueOnError makes RunAll attempt every job instead of stopping at
// the first failure.
func WithContinueOnError() Option {
	return func(e *Exporter) {
		e.continueOnError = true
	}
}

// New creates an Exporter for the jobs of file.
func New(file *job.File, opts ...Option) *Exporter {
	e := &Exporter{file: file}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RunAll runs the named jobs in order. The returned error joins the errors
// of all failed jobs.
func (e *Exporter) RunAll(ctx context.Context, names []string) ([]*Result, error) {
	var (
		results []*Result
		errs    []error
	)
	for _, name := range names {
		result := e.Run(ctx, name)
		results = append(results, result)
		if result.Err == nil {
			continue
		}
		errs = append(errs, result.Err)
		if !e.continueOnError {
			break
		}
	}
	return results, errors.Join(errs...)
}

// Run runs one job. The output file is created, or truncated, only after
// the query has executed. The cursor, connection and output file are
// closed on every path and their close errors are ignored.
func (e *Exporter) Run(ctx context.Context, name string) *Result {
	start := time.Now()
	result := &Result{Job: name}
	ctx = logger.WithValues(ctx, tag.Job(name))
	fail := func(err error) *Result {
		result.Duration = time.Since(start)
		result.Err = &JobError{Job: name, Err: err}
		logger.Debug(ctx, "Job failed", tag.Error(err))
		return result
	}

	j, err := e.file.Resolve(name)
	if err != nil {
		return fail(err)
	}
	result.Output = j.Out

	conn, err := database.Connect(ctx, j.Driver, j.URL)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = conn.Close() }()
	result.Driver = conn.Driver.Name()
	logger.Debug(ctx, "Connected", tag.Driver(result.Driver))

	logger.Debug(ctx, "Executing query", tag.SQL(j.SQL))
	rows, err := conn.Query(ctx, j.SQL)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = rows.Close() }()

	out, err := createOutput(j.Out)
	if err != nil {
		return fail(err)
	}
	defer func() { _ = out.Close() }()

	var sinkOpts []jsonsink.Option
	if e.indent > 0 {
		sinkOpts = append(sinkOpts, jsonsink.WithIndent(e.indent))
	}
	if e.flushBytes > 0 {
		sinkOpts = append(sinkOpts, jsonsink.WithFlushBytes(e.flushBytes))
	}
	sink := jsonsink.New(out, sinkOpts...)

	var warnings *projector.Warnings
	if e.collectWarnings {
		warnings = projector.NewWarnings()
	}
	projOpts := []projector.Option{projector.WithWarnings(warnings)}
	if e.formatter != nil {
		projOpts = append(projOpts, projector.WithFormatter(e.formatter))
	}

	n, err := projector.New(projOpts...).Project(rows, sink)
	result.Rows = n
	result.Warnings = warnings.List()
	if err != nil {
		return fail(err)
	}
	if err := sink.Close(); err != nil {
		return fail(fmt.Errorf("failed to write %s: %w", j.Out, err))
	}

	result.Duration = time.Since(start)
	logger.Info(ctx, "Job finished",
		tag.Driver(result.Driver),
		tag.Rows(n),
		tag.Output(j.Out),
		tag.Duration(result.Duration),
	)
	return result
}

func createOutput(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
