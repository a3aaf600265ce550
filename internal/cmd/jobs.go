package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dagu-org/sqljson/internal/database"
	"github.com/dagu-org/sqljson/internal/job"
)

// Jobs returns the command that lists the jobs of a job file without
// connecting to any database.
func Jobs() *cobra.Command {
	return NewCommand(
		&cobra.Command{
			Use:   "jobs [flags] <jobs-file>",
			Short: "List the jobs of a job file",
			Long: `Print every job of a job file with its resolved url, driver, sql and out,
followed by the available drivers.

Example:
  sqljson jobs jobs.properties
`,
			Args: cobra.ExactArgs(1),
		}, []commandLineFlag{dotenvFlag}, runJobs,
	)
}

func runJobs(ctx *Context, args []string) error {
	file, err := loadJobFile(ctx, args[0])
	if err != nil {
		return err
	}
	return printJobs(ctx.Command.OutOrStdout(), file)
}

func printJobs(w io.Writer, file *job.File) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "JOB\tDRIVER\tURL\tOUT\tSQL")

	var errs []error
	for _, name := range file.Names() {
		j, err := file.Resolve(name)
		if err != nil {
			_, _ = fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\n", name, err)
			errs = append(errs, err)
			continue
		}
		driver := "-"
		if d, err := database.ResolveDriver(j.Driver, j.URL); err == nil {
			driver = d.Name()
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.Name, driver, database.RedactURL(j.URL), j.Out, j.SQL)
	}

	if err := tw.Flush(); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "\nDrivers: %s\n", strings.Join(database.DriverNames(), ", "))
	return errors.Join(errs...)
}
