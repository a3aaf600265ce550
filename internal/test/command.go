package test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// CmdTest is a helper struct to test commands.
type CmdTest struct {
	Name        string   // Name of the test.
	Args        []string // Arguments to pass to the command.
	ExpectedOut []string // Expected output to be present in the standard output / error.
}

// Command is a helper struct to test commands.
type Command struct {
	Helper
}

// SetupCommand creates a new Command helper.
func SetupCommand(t *testing.T) Command {
	t.Helper()
	return Command{Helper: Setup(t)}
}

// RunCommand runs cmd and requires it to succeed. It returns the combined
// standard output and error.
func (th Command) RunCommand(t *testing.T, cmd *cobra.Command, testCase CmdTest) string {
	t.Helper()

	output, err := th.RunCommandWithError(t, cmd, testCase)
	require.NoError(t, err, output)

	for _, expectedOutput := range testCase.ExpectedOut {
		require.Contains(t, output, expectedOutput)
	}
	return output
}

// RunCommandWithError runs cmd and returns its combined output and error
// without failing the test.
func (th Command) RunCommandWithError(t *testing.T, cmd *cobra.Command, testCase CmdTest) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmdRoot := &cobra.Command{Use: "root"}
	cmdRoot.AddCommand(cmd)
	cmdRoot.SetOut(&out)
	cmdRoot.SetErr(&out)

	cmdRoot.SetArgs(withConfigFlag(testCase.Args, th.ConfigFile))

	err := cmdRoot.ExecuteContext(th.Context)
	return out.String(), err
}

// withConfigFlag appends --config <file> unless already present.
func withConfigFlag(args []string, configFile string) []string {
	if configFile == "" {
		return args
	}
	for _, arg := range args {
		if arg == "--config" || arg == "-c" || hasConfigInline(arg) {
			return args
		}
	}
	return append(args, "--config", configFile)
}

func hasConfigInline(arg string) bool {
	return strings.HasPrefix(arg, "--config=") || strings.HasPrefix(arg, "-c=")
}
