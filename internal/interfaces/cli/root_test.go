package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the root command with the given args and returns the
// combined output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand()
	buf := &bytes.Buffer{}
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func TestNewRootCommandStructure(t *testing.T) {
	cmd := NewRootCommand()

	assert.Equal(t, "mpulse", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Version)

	want := []string{"chat", "suggest", "topics", "corpus", "migrate"}
	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, name := range want {
		assert.True(t, names[name], "subcommand %q not registered", name)
	}
}

func TestRootCommandGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()
	pf := cmd.PersistentFlags()

	for _, name := range []string{"config", "log-level", "output", "verbose", "timeout", "server", "token"} {
		require.NotNil(t, pf.Lookup(name), "flag %q not registered", name)
	}

	assert.Equal(t, "http://localhost:8080", pf.Lookup("server").DefValue)
	assert.Equal(t, "text", pf.Lookup("output").DefValue)
	assert.Equal(t, "v", pf.Lookup("verbose").Shorthand)
}

func TestRootCommandHelp(t *testing.T) {
	out, err := executeCommand(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "mpulse")
	assert.Contains(t, out, "chat")
}

func TestRootCommandUnknownSubcommand(t *testing.T) {
	_, err := executeCommand(t, "definitely-not-a-command")
	require.Error(t, err)
}

func TestGetCLIContextUninitialized(t *testing.T) {
	cmd := &cobra.Command{Use: "bare"}
	_, err := GetCLIContext(cmd)
	require.Error(t, err)
}

func TestFormatTable(t *testing.T) {
	out := FormatTable(
		[]string{"TOPIC", "ASKS"},
		[][]string{
			{"opening_hours", "12"},
			{"pricing", "3"},
		},
	)

	assert.Contains(t, out, "TOPIC")
	assert.Contains(t, out, "opening_hours  12")
	assert.Contains(t, out, "-----")
}

func TestFormatTableEmptyHeaders(t *testing.T) {
	assert.Empty(t, FormatTable(nil, [][]string{{"a"}}))
}

func TestBuildVariables(t *testing.T) {
	assert.NotEmpty(t, Version)
	assert.NotEmpty(t, GitCommit)
	assert.NotEmpty(t, BuildDate)
}
