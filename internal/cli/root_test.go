package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reddit-engine/internal/simulation"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestSimulate_JSONReport(t *testing.T) {
	stdout, _, err := execute(t, "simulate", "--users", "4", "--seed", "3", "--json", "--log-level", "error")
	require.NoError(t, err)

	var report simulation.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, 5, report.Engine.Users)
	assert.Equal(t, report.Submitted()+1, report.Engine.CommandsProcessed)
}

func TestSimulate_TextReport(t *testing.T) {
	stdout, _, err := execute(t, "simulate", "--users", "2", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Final Statistics:")
	assert.Contains(t, stdout, "Total Users: 3")
	assert.Contains(t, stdout, "register_user")
}

func TestSimulate_ProfileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: 3\nsubreddits: 2\n"), 0o600))

	stdout, _, err := execute(t, "simulate", "--profile", path, "--json", "--log-level", "error")
	require.NoError(t, err)

	var report simulation.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 4, report.Engine.Users)
	assert.Equal(t, 2, report.Engine.Subreddits)
}

func TestSimulate_UsersFlagOverridesProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users: 8\n"), 0o600))

	stdout, _, err := execute(t, "simulate", "--profile", path, "--users", "2", "--json", "--log-level", "error")
	require.NoError(t, err)

	var report simulation.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 3, report.Engine.Users)
}

func TestSimulate_InvalidUsers(t *testing.T) {
	_, _, err := execute(t, "simulate", "--users", "0", "--log-level", "error")
	require.Error(t, err)
}

func TestRoot_InvalidLogLevel(t *testing.T) {
	_, _, err := execute(t, "simulate", "--log-level", "loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log level")
}

func TestRoot_InvalidEnv(t *testing.T) {
	t.Setenv("REDDIT_ENGINE_REQUEST_TIMEOUT", "0s")
	_, _, err := execute(t, "simulate")
	require.Error(t, err)
}

func TestRoot_LogFormatFromEnv(t *testing.T) {
	t.Setenv("REDDIT_ENGINE_LOG_FORMAT", "xml")
	_, _, err := execute(t, "simulate", "--users", "1")
	require.Error(t, err)

	_, _, err = execute(t, "simulate", "--users", "1", "--log-format", "json", "--log-level", "error")
	require.NoError(t, err)
}
