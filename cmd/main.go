package main

import (
	"os"

	"github.com/dagu-org/sqljson/internal/cmd"
	"github.com/dagu-org/sqljson/internal/cmn/config"

	_ "github.com/dagu-org/sqljson/internal/database/drivers/duckdb"   // Register the duckdb driver
	_ "github.com/dagu-org/sqljson/internal/database/drivers/mysql"    // Register the mysql driver
	_ "github.com/dagu-org/sqljson/internal/database/drivers/postgres" // Register the postgres drivers
	_ "github.com/dagu-org/sqljson/internal/database/drivers/sqlite"   // Register the sqlite driver
)

var rootCmd = cmd.Export()

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(cmd.Jobs())
	rootCmd.AddCommand(cmd.Version())

	config.Version = version
	rootCmd.Version = version
}

var version = "0.0.0"
