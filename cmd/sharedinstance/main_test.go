package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sghaida/shared/internal/config"
	"github.com/sghaida/shared/sample"
)

//
// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// runCLI invokes run and returns exit code, stdout and stderr.
// The logrus standard logger is restored afterwards because run reconfigures it.
func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()

	std := log.StandardLogger()
	out, level, f := std.Out, std.GetLevel(), std.Formatter
	t.Cleanup(func() {
		std.SetOutput(out)
		std.SetLevel(level)
		std.SetFormatter(f)
	})

	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

//
// -----------------------------------------------------------------------------
// Probe
// -----------------------------------------------------------------------------

// TestRun_YAMLReport verifies the default output reports one distinct instance.
func TestRun_YAMLReport(t *testing.T) {
	code, stdout, stderr := runCLI(t, "--callers", "16")
	require.Equal(t, 0, code, "stderr: %s", stderr)

	var rep report
	require.NoError(t, yaml.Unmarshal([]byte(stdout), &rep))

	shared := sample.SharedInstance()
	assert.Equal(t, 16, rep.Callers)
	assert.Equal(t, 1, rep.Distinct)
	assert.Equal(t, shared.ID, rep.ID)
	assert.Equal(t, "*sample.Sample", rep.Type)
	assert.True(t, shared.CreatedAt.Equal(rep.CreatedAt))
	assert.Contains(t, stderr, "probe finished")
}

// TestRun_TextReport verifies --output text prints a single key=value line.
func TestRun_TextReport(t *testing.T) {
	code, stdout, _ := runCLI(t, "--output", "text", "--callers", "2", "--log-level", "error")
	require.Equal(t, 0, code)

	assert.True(t, strings.HasPrefix(stdout, "id="+sample.SharedInstance().ID+" "))
	assert.Contains(t, stdout, "callers=2 distinct=1")
}

// TestRun_ConfigFile verifies values are read from --config and flags still win.
func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("callers: 5\noutput: text\nlogLevel: error\n"), 0o600))

	code, stdout, _ := runCLI(t, "--config", path)
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "callers=5 distinct=1")

	code, stdout, _ = runCLI(t, "--config", path, "--callers", "7")
	require.Equal(t, 0, code)
	assert.Contains(t, stdout, "callers=7 distinct=1")
}

// TestRun_FlagsReplaceInvalidValues verifies a valid flag wins over an invalid
// value from the config file or the environment.
func TestRun_FlagsReplaceInvalidValues(t *testing.T) {
	t.Run("file callers", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("callers: 0\noutput: text\nlogLevel: error\n"), 0o600))

		code, stdout, stderr := runCLI(t, "--config", path, "--callers", "4")
		require.Equal(t, 0, code, "stderr: %s", stderr)
		assert.Contains(t, stdout, "callers=4 distinct=1")
	})

	t.Run("env output", func(t *testing.T) {
		t.Setenv(config.EnvOutput, "csv")

		code, stdout, stderr := runCLI(t, "--output", "yaml", "--callers", "2")
		require.Equal(t, 0, code, "stderr: %s", stderr)

		var rep report
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &rep))
		assert.Equal(t, 1, rep.Distinct)
	})

	t.Run("invalid without flag", func(t *testing.T) {
		t.Setenv(config.EnvOutput, "csv")

		code, _, stderr := runCLI(t)
		assert.Equal(t, 2, code)
		assert.Contains(t, stderr, "output must be yaml or text")
	})
}

// TestProbe verifies probe directly.
func TestProbe(t *testing.T) {
	rep := probe(3)
	assert.Equal(t, 3, rep.Callers)
	assert.Equal(t, 1, rep.Distinct)
	assert.Equal(t, sample.SharedInstance().ID, rep.ID)
}

//
// -----------------------------------------------------------------------------
// Exit codes
// -----------------------------------------------------------------------------

// TestRun_ExitCodes verifies usage errors exit 2 and runtime errors exit 1.
func TestRun_ExitCodes(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want int
	}{
		{name: "unknown flag", args: []string{"--nope"}, want: 2},
		{name: "non-integer callers", args: []string{"--callers", "many"}, want: 2},
		{name: "zero callers", args: []string{"--callers", "0"}, want: 2},
		{name: "bad output", args: []string{"--output", "csv"}, want: 2},
		{name: "stray argument", args: []string{"extra"}, want: 2},
		{name: "missing config file", args: []string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}, want: 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, stdout, stderr := runCLI(t, tc.args...)
			assert.Equal(t, tc.want, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, "Error:")
		})
	}
}

//
// -----------------------------------------------------------------------------
// Version
// -----------------------------------------------------------------------------

// TestRun_Version verifies both the subcommand and the flag print the version.
func TestRun_Version(t *testing.T) {
	code, stdout, _ := runCLI(t, "version")
	require.Equal(t, 0, code)
	assert.Equal(t, "sharedinstance version dev\n", stdout)

	code, stdout, _ = runCLI(t, "--version")
	require.Equal(t, 0, code)
	assert.Equal(t, "sharedinstance version dev\n", stdout)
}
