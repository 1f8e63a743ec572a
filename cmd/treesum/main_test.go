package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treesum/internal/config"
	"treesum/internal/policy"
	"treesum/internal/summary"
)

func runCmd(t *testing.T, args ...string) string {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute(), "treesum %v", args)
	return out.String()
}

func TestSummaryCommand(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "a.py"), []byte("x = 1\n"), 0o644))

	out := runCmd(t, "summary", "--root", root)

	assert.FileExists(t, filepath.Join(root, policy.ArtifactName))
	assert.FileExists(t, filepath.Join(root, "pkg", policy.ArtifactName))
	assert.Contains(t, out, "summaries under")
}

func TestPythonCommandWithOutputOverride(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "app.py"),
		[]byte("def main():\n    pass\n"), 0o644))
	out := filepath.Join(t.TempDir(), "structure.md")

	runCmd(t, "python", "--root", root, "-o", out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "def main():")
	assert.True(t, strings.HasSuffix(string(data), "\n"), "output files end with a newline")
	assert.NoFileExists(t, filepath.Join(root, summary.PythonSummaryName))
}

func TestReadmeCommandDefaultOutput(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "README.md"),
		[]byte("# Hello\n"), 0o644))

	runCmd(t, "readme", "--root", root)

	data, err := os.ReadFile(filepath.Join(root, summary.ReadmeSummaryName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "File: README.md")
	assert.True(t, strings.HasSuffix(string(data), "\n"), "output files end with a newline")
}

func TestInitCommandIsIdempotent(t *testing.T) {
	root := t.TempDir()

	first := runCmd(t, "init", "--root", root)
	assert.Contains(t, first, config.FileName)
	assert.FileExists(t, filepath.Join(root, config.FileName))
	assert.FileExists(t, filepath.Join(root, config.IgnoreFileName))

	second := runCmd(t, "init", "--root", root)
	assert.Contains(t, second, "already exist")
}

func TestUnknownCommandFails(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"bogus"})
	assert.Error(t, cmd.Execute())
}
