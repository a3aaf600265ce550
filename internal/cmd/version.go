package cmd

import (
	"github.com/spf13/cobra"

	"github.com/dagu-org/sqljson/internal/cmn/config"
)

func Version() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display the binary version",
		Long:  `Print the current version of the sqljson executable.`,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Println(config.Version)
		},
	}
}
