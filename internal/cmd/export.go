package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dagu-org/sqljson/internal/cmn/config"
	"github.com/dagu-org/sqljson/internal/cmn/logger"
	"github.com/dagu-org/sqljson/internal/cmn/logger/tag"
	"github.com/dagu-org/sqljson/internal/exporter"
	"github.com/dagu-org/sqljson/internal/job"
)

var exportFlags = []commandLineFlag{
	localeFlag,
	dateFormatFlag,
	prettyFlag,
	continueOnErrorFlag,
	dotenvFlag,
	jobFlag,
}

// Export returns the root command, which runs the jobs of a job file.
func Export() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   config.AppSlug + " [flags] <jobs-file>",
			Short: "Export SQL query results as JSON files",
			Long: `Run every job of a properties job file: execute its SQL query and write
the result rows as a JSON array of objects to its output file.

Job file keys have the form <job>.<attribute>=<value> with the attributes
url, sql, out and driver. The keys .url and .driver set defaults for every
job. A job without sql exports "SELECT * FROM <job>" and a job without out
writes to <job>.json.

Example:
  sqljson --pretty 2 jobs.properties
  sqljson -j orders --date-format iso jobs.properties
`,
			Version: config.Version,
			Args:    cobra.ExactArgs(1),
		}, exportFlags, runExport,
	)
}

func runExport(ctx *Context, args []string) error {
	file, err := loadJobFile(ctx, args[0])
	if err != nil {
		return err
	}

	names, err := ctx.StringArrayParam(jobFlag.name)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		names = file.Names()
	}
	if len(names) == 0 {
		logger.Warn(ctx, "No jobs found", tag.File(args[0]))
		return nil
	}

	opts := []exporter.Option{
		exporter.WithFormatter(ctx.Formatter()),
		exporter.WithIndent(ctx.Config.Pretty),
		exporter.WithFlushBytes(ctx.Config.FlushBytes),
	}
	if ctx.Config.Debug {
		opts = append(opts, exporter.WithWarnings())
	}
	if ctx.Config.ContinueOnError {
		opts = append(opts, exporter.WithContinueOnError())
	}

	logger.Debug(ctx, "Running jobs", tag.File(args[0]), tag.Jobs(len(names)))
	results, runErr := exporter.New(file, opts...).RunAll(ctx, names)

	failed := 0
	for _, result := range results {
		for _, w := range result.Warnings {
			logger.Write(ctx, "Warning: "+w)
		}
		if result.Err == nil {
			continue
		}
		failed++
		ctx.PrintErrln(result.Err)
		if ctx.Config.Debug {
			for i, cause := range errorChain(result.Err) {
				logger.Debug(ctx, "Caused by", tag.Count(i), tag.Reason(cause))
			}
		}
	}

	logger.Infof(ctx, "Exported %d of %d job(s)", len(results)-failed, len(names))
	if runErr != nil {
		logger.Debug(ctx, "Run finished with failures", tag.Jobs(len(results)), tag.Failed(failed))
		return fmt.Errorf("%d job(s) failed: %w", failed, errReported)
	}
	return nil
}

// loadJobFile reads the job file, expanding ${VAR} in urls from the
// environment and the configured dotenv files.
func loadJobFile(ctx *Context, path string) (*job.File, error) {
	env, err := job.LoadEnv(filepath.Dir(path), ctx.Config.DotEnv...)
	if err != nil {
		return nil, err
	}

	file, err := job.Load(path, job.WithExpander(env.Expand))
	if err != nil {
		return nil, err
	}
	for _, w := range file.Warnings() {
		logger.Warn(ctx, w, tag.File(path))
	}
	return file, nil
}

// errorChain returns the message of err and of each error it wraps.
func errorChain(err error) []string {
	var chain []string
	for err != nil {
		chain = append(chain, err.Error())
		err = errors.Unwrap(err)
	}
	return chain
}
