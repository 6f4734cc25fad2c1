package cli

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// executeCommand runs the CLI with args and captures stdout and stderr.
func executeCommand(args ...string) (stdout, stderr string, err error) {
	return executeCommandWithInput(strings.NewReader(""), args...)
}

// executeCommandWithInput is executeCommand with stdin set to in.
func executeCommandWithInput(in io.Reader, args ...string) (stdout, stderr string, err error) {
	cmd := NewRootCommand(args)
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)
	cmd.SetIn(in)
	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()

	return outBuf.String(), errBuf.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()

	require.Error(t, err)

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, code, exitErr.Code)
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCommand("--help")
	require.NoError(t, err)

	for _, sub := range []string{"run", "watch", "transformers", "version", "completion"} {
		assert.Contains(t, stdout, sub)
	}

	for _, flag := range []string{"--config", "--log-level", "--log-format", "--quiet"} {
		assert.Contains(t, stdout, flag)
	}
}

func TestRootCommand_UsageErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "unknown flag", args: []string{"--nonexistent"}, wantMsg: "unknown flag"},
		{name: "missing config file", args: []string{"--config", "/nonexistent/path.yaml", "transformers"}, wantMsg: "reading config file"},
		{name: "bad log level", args: []string{"--log-level", "verbose", "transformers"}, wantMsg: "invalid log level"},
		{name: "bad log format", args: []string{"--log-format", "xml", "transformers"}, wantMsg: "invalid log format"},
		{name: "bad filter type", args: []string{"run", "--filter-type", "entropy"}, wantMsg: "invalid filter type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := executeCommand(tt.args...)
			requireExitCode(t, err, 2)
			assert.Contains(t, err.Error(), tt.wantMsg)
			assert.Empty(t, stderr, "errors are printed by Execute, not by cobra")
		})
	}
}

func TestExitError(t *testing.T) {
	assert.Equal(t, "exit code 3", (&ExitError{Code: 3}).Error())

	inner := assert.AnError
	err := usageError(inner)
	assert.Equal(t, inner.Error(), err.Error())
	assert.ErrorIs(t, err, inner)
}
