package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type flagKind int

const (
	stringFlag flagKind = iota
	boolFlag
	intFlag
	stringSliceFlag
	stringArrayFlag
)

type commandLineFlag struct {
	name, shorthand, defaultValue, usage string
	kind                                 flagKind
	// viperKey binds the flag to a configuration key.
	viperKey string
}

var (
	configFlag = commandLineFlag{
		name:      "config",
		shorthand: "c",
		usage:     "config file (default is $XDG_CONFIG_HOME/sqljson/config.yaml)",
	}
	debugFlag = commandLineFlag{
		name:      "debug",
		shorthand: "d",
		usage:     "diagnostic mode: debug logs, column warnings and full error chains",
		kind:      boolFlag,
		viperKey:  "debug",
	}
	quietFlag = commandLineFlag{
		name:      "quiet",
		shorthand: "q",
		usage:     "suppress log output",
		kind:      boolFlag,
	}
	logFormatFlag = commandLineFlag{
		name:     "log-format",
		usage:    "log format (text or json)",
		viperKey: "log_format",
	}
	logFileFlag = commandLineFlag{
		name:  "log-file",
		usage: "also append logs to this file",
	}
	localeFlag = commandLineFlag{
		name:     "locale",
		usage:    "locale for date and time columns (default is $LC_ALL, $LC_TIME or $LANG)",
		viperKey: "locale",
	}
	dateFormatFlag = commandLineFlag{
		name:     "date-format",
		usage:    "date and time rendering (locale or iso)",
		viperKey: "date_format",
	}
	prettyFlag = commandLineFlag{
		name:         "pretty",
		defaultValue: "0",
		usage:        "indent the JSON output by this many spaces",
		kind:         intFlag,
		viperKey:     "pretty",
	}
	continueOnErrorFlag = commandLineFlag{
		name:     "continue-on-error",
		usage:    "run the remaining jobs after a job fails",
		kind:     boolFlag,
		viperKey: "continue_on_error",
	}
	dotenvFlag = commandLineFlag{
		name:     "dotenv",
		usage:    "dotenv file used to expand ${VAR} in urls (repeatable)",
		kind:     stringSliceFlag,
		viperKey: "dotenv",
	}
	jobFlag = commandLineFlag{
		name:      "job",
		shorthand: "j",
		usage:     "run only the named job (repeatable)",
		kind:      stringArrayFlag,
	}
)

// globalFlags are registered on every command.
var globalFlags = []commandLineFlag{
	configFlag,
	debugFlag,
	quietFlag,
	logFormatFlag,
	logFileFlag,
}

func initFlags(cmd *cobra.Command, additionalFlags ...commandLineFlag) {
	flags := append(append([]commandLineFlag{}, globalFlags...), additionalFlags...)
	for _, flag := range flags {
		switch flag.kind {
		case boolFlag:
			cmd.Flags().BoolP(flag.name, flag.shorthand, flag.defaultValue == "true", flag.usage)
		case intFlag:
			var def int
			_, _ = fmt.Sscan(flag.defaultValue, &def)
			cmd.Flags().IntP(flag.name, flag.shorthand, def, flag.usage)
		case stringSliceFlag:
			cmd.Flags().StringSliceP(flag.name, flag.shorthand, nil, flag.usage)
		case stringArrayFlag:
			cmd.Flags().StringArrayP(flag.name, flag.shorthand, nil, flag.usage)
		default:
			cmd.Flags().StringP(flag.name, flag.shorthand, flag.defaultValue, flag.usage)
		}
	}
}

func bindFlags(v *viper.Viper, cmd *cobra.Command, additionalFlags ...commandLineFlag) error {
	flags := append(append([]commandLineFlag{}, globalFlags...), additionalFlags...)
	for _, flag := range flags {
		if flag.viperKey == "" {
			continue
		}
		if err := v.BindPFlag(flag.viperKey, cmd.Flags().Lookup(flag.name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag.name, err)
		}
	}
	return nil
}
