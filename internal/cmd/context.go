package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dagu-org/sqljson/internal/cmn/config"
	"github.com/dagu-org/sqljson/internal/cmn/logger"
	"github.com/dagu-org/sqljson/internal/cmn/logger/tag"
	"github.com/dagu-org/sqljson/internal/locale"
)

// errReported marks a failure whose message has already been printed.
var errReported = errors.New("failed")

// Context holds the configuration for a command.
type Context struct {
	context.Context

	Command *cobra.Command
	Flags   []commandLineFlag
	Config  *config.Config
	Quiet   bool

	logFile *os.File
}

// NewContext loads the configuration, merging the bound flags, and sets up
// the logger.
func NewContext(cmd *cobra.Command, flags []commandLineFlag) (*Context, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	v := viper.New()
	if err := bindFlags(v, cmd, flags...); err != nil {
		return nil, err
	}

	quiet, err := cmd.Flags().GetBool(quietFlag.name)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiet flag: %w", err)
	}

	var loaderOpts []config.ConfigLoaderOption
	if cfgPath, _ := cmd.Flags().GetString(configFlag.name); cfgPath != "" {
		loaderOpts = append(loaderOpts, config.WithConfigFile(cfgPath))
	}

	cfg, err := config.NewConfigLoader(v, loaderOpts...).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	c := &Context{
		Command: cmd,
		Flags:   flags,
		Config:  cfg,
		Quiet:   quiet,
	}

	opts := []logger.Option{
		logger.WithFormat(cfg.LogFormat),
		logger.WithConsole(cmd.ErrOrStderr()),
	}
	if cfg.Debug {
		opts = append(opts, logger.WithDebug())
	}
	if quiet {
		opts = append(opts, logger.WithQuiet())
	}
	if logPath, _ := cmd.Flags().GetString(logFileFlag.name); logPath != "" {
		f, err := openLogFile(logPath)
		if err != nil {
			return nil, err
		}
		c.logFile = f
		opts = append(opts, logger.WithWriter(f))
	}
	c.Context = logger.WithLogger(ctx, logger.NewLogger(opts...))

	if cfg.ConfigFileUsed != "" {
		logger.Debug(c, "Loaded config", tag.Config(cfg.ConfigFileUsed))
	}
	for _, w := range cfg.Warnings {
		logger.Warn(c, w)
	}

	return c, nil
}

// Formatter returns the date and time formatter for the configured locale
// and date format.
func (c *Context) Formatter() *locale.Formatter {
	style := locale.StyleLocale
	if c.Config.DateFormat == config.DateFormatISO {
		style = locale.StyleISO
	}
	f := locale.New(c.Config.Locale, style)
	logger.Debug(c, "Date format", tag.Locale(f.Tag().String()), tag.String("style", string(style)))
	return f
}

// StringArrayParam returns the values of a repeatable string flag.
func (c *Context) StringArrayParam(name string) ([]string, error) {
	val, err := c.Command.Flags().GetStringArray(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get flag %s: %w", name, err)
	}
	return val, nil
}

// Println prints a line to the command's standard output.
func (c *Context) Println(a ...any) {
	_, _ = fmt.Fprintln(c.Command.OutOrStdout(), a...)
}

// PrintErrln prints a line to the command's standard error.
func (c *Context) PrintErrln(a ...any) {
	_, _ = fmt.Fprintln(c.Command.ErrOrStderr(), a...)
}

func (c *Context) close() {
	if c.logFile != nil {
		_ = c.logFile.Close()
	}
}

// NewCommand registers flags on cmd and runs runFunc with a Context built
// from them. A failure exits with a non-zero status through the returned
// error.
func NewCommand(cmd *cobra.Command, flags []commandLineFlag, runFunc func(ctx *Context, args []string) error) *cobra.Command {
	initFlags(cmd, flags...)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		ctx, err := NewContext(cmd, flags)
		if err != nil {
			return fmt.Errorf("initialization error: %w", err)
		}
		defer ctx.close()

		if err := runFunc(ctx, args); err != nil {
			cmd.SilenceErrors = true
			if !errors.Is(err, errReported) {
				ctx.PrintErrln(err)
				logger.Debug(ctx, "Command failed", tag.Error(err))
			}
			return err
		}
		return nil
	}

	return cmd
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return f, nil
}
