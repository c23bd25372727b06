package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the CLI against dbPath and returns stdout and the exit status.
func execute(t *testing.T, dbPath string, args ...string) (string, int) {
	t.Helper()

	stdout, _, code := executeWithStderr(t, dbPath, args...)

	return stdout, code
}

// executeWithStderr is execute that also returns what was written to stderr.
func executeWithStderr(t *testing.T, dbPath string, args ...string) (string, string, int) {
	t.Helper()

	var stdout, stderr bytes.Buffer

	code := run(append([]string{"--db", dbPath, "--timeout", "500ms"}, args...), &stdout, &stderr)

	return stdout.String(), stderr.String(), code
}

func TestCLI_BasicOperations(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "kv.db")

	_, code := execute(t, dbPath, "set", "b", "2")
	require.Equal(t, exitCodeOK, code)

	_, code = execute(t, dbPath, "set", "a", "1")
	require.Equal(t, exitCodeOK, code)

	out, code := execute(t, dbPath, "get", "a")
	require.Equal(t, exitCodeOK, code)
	assert.Equal(t, "1\n", out)

	out, _ = execute(t, dbPath, "len")
	assert.Equal(t, "2\n", out)

	out, _ = execute(t, dbPath, "keys")
	assert.Equal(t, "a\nb\n", out)

	out, _ = execute(t, dbPath, "contains", "b")
	assert.Equal(t, "true\n", out)

	out, _ = execute(t, dbPath, "delete", "b")
	assert.Equal(t, "true\n", out)

	out, _ = execute(t, dbPath, "delete", "b")
	assert.Equal(t, "false\n", out, "deleting an absent key reports false")

	_, code = execute(t, dbPath, "clear")
	require.Equal(t, exitCodeOK, code)

	out, _ = execute(t, dbPath, "len")
	assert.Equal(t, "0\n", out)
}

func TestCLI_GetMissingExitsNotFound(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "kv.db")

	out, stderr, code := executeWithStderr(t, dbPath, "get", "missing")
	assert.Equal(t, exitCodeNotFound, code)
	assert.Empty(t, out)
	assert.Equal(t, "kvstore: key \"missing\" not found\n", stderr)
}

func TestCLI_ExportImport(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	source := filepath.Join(dir, "source.db")
	target := filepath.Join(dir, "target.db")
	snapshot := filepath.Join(dir, "snapshot.db")

	for _, key := range []string{"x", "y", "z"} {
		_, code := execute(t, source, "set", key, "value-"+key)
		require.Equal(t, exitCodeOK, code)
	}

	out, code := execute(t, source, "export", snapshot)
	require.Equal(t, exitCodeOK, code)
	assert.True(t, strings.HasPrefix(out, "exported 3 entries"), out)

	_, code = execute(t, target, "import", "--max-entries", "2", snapshot)
	assert.Equal(t, exitCodeError, code, "budget violations fail the import")

	_, code = execute(t, target, "import", "--max-bytes", "not-a-size", snapshot)
	assert.Equal(t, exitCodeError, code)

	_, stderr, code := executeWithStderr(t, target, "import", "--max-entries", "-1", snapshot)
	assert.Equal(t, exitCodeError, code, "a negative entry cap is rejected, not treated as unlimited")
	assert.Contains(t, stderr, "--max-entries must be non-negative")

	empty, _ := execute(t, target, "len")
	assert.Equal(t, "0\n", empty, "rejected imports leave the database untouched")

	out, code = execute(t, target, "import", "--max-bytes", "1KiB", snapshot)
	require.Equal(t, exitCodeOK, code)
	assert.Equal(t, "imported 3 entries from "+snapshot+"\n", out)

	out, _ = execute(t, target, "get", "y")
	assert.Equal(t, "value-y\n", out)
}

func TestCLI_ConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "from-config.db")
	configPath := filepath.Join(dir, "kvstore.yaml")

	require.NoError(t, os.WriteFile(configPath, []byte("db: "+dbPath+"\nno_sync: true\n"), 0o600))

	var stdout bytes.Buffer

	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"--config", configPath, "set", "k", "v"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(dbPath)
	require.NoError(t, err, "database must be created at the configured path")

	out, code := execute(t, dbPath, "get", "k")
	require.Equal(t, exitCodeOK, code)
	assert.Equal(t, "v\n", out)
}

func TestCLI_EnvironmentOverridesDefault(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "from-env.db")
	t.Setenv("KVSTORE_DB", dbPath)

	root := newRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs([]string{"set", "k", "v"})
	require.NoError(t, root.Execute())

	_, err := os.Stat(dbPath)
	require.NoError(t, err, "KVSTORE_DB must select the database file")
}

func TestCLI_RejectsBadArguments(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "kv.db")

	_, stderr, code := executeWithStderr(t, dbPath, "set", "only-key")
	assert.Equal(t, exitCodeError, code)
	assert.True(t, strings.HasPrefix(stderr, "kvstore: "), stderr)

	_, code = execute(t, t.TempDir(), "len")
	assert.Equal(t, exitCodeError, code, "a directory is not a database file")
}
