package cli

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodDefs = `[[linkifiers]]
pattern = '#(?P<id>[0-9]+)'
url_template = 'https://example.com/issues/{id}'
`

const brokenDefs = `[[linkifiers]]
pattern = '#(?P<id>[0-9]+)'
url_template = 'https://example.com/issues/{id}'

[[linkifiers]]
pattern = 'broken('
url_template = 'https://example.com/'
`

// runCommand executes the CLI with args, keeping log output inside the
// test's temp dirs.
func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	return rootCmd.Execute()
}

func writeDefs(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linkifiers.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCmd(t *testing.T) {
	err := runCommand(t, "version")
	assert.NoError(t, err)
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkify", "linkifiers.toml")

	err := runCommand(t, "init", "--config", path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	// A second run must refuse to clobber the file.
	err = runCommand(t, "init", "--config", path)
	assert.Error(t, err)

	err = runCommand(t, "init", "--config", path, "--force")
	assert.NoError(t, err)
}

func TestInitCmdOutputLoads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "linkifiers.toml")
	require.NoError(t, runCommand(t, "init", "--config", path))

	// The file init writes must pass its own check.
	assert.NoError(t, runCommand(t, "check", "--config", path))
}

func TestCheckCmd(t *testing.T) {
	path := writeDefs(t, goodDefs)
	assert.NoError(t, runCommand(t, "check", "--config", path))
}

func TestCheckCmdReportsFailures(t *testing.T) {
	path := writeDefs(t, brokenDefs)
	assert.Error(t, runCommand(t, "check", "--config", path))
}

func TestCheckCmdMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")
	assert.Error(t, runCommand(t, "check", "--config", missing))
}

func TestListCmd(t *testing.T) {
	path := writeDefs(t, goodDefs)
	assert.NoError(t, runCommand(t, "list", "--config", path))
}

func TestListCmdEmptyFile(t *testing.T) {
	path := writeDefs(t, "")
	assert.NoError(t, runCommand(t, "list", "--config", path))
}

func TestScanCmd(t *testing.T) {
	path := writeDefs(t, goodDefs)
	assert.NoError(t, runCommand(t, "scan", "fixes #42", "--config", path))
}

func TestScanCmdAllFlag(t *testing.T) {
	path := writeDefs(t, goodDefs)
	assert.NoError(t, runCommand(t, "scan", "--all", "fixes #42", "--config", path))
}

func TestRenderCmd(t *testing.T) {
	path := writeDefs(t, goodDefs)
	input := filepath.Join(t.TempDir(), "notes.md")
	require.NoError(t, os.WriteFile(input, []byte("see #42 and `#7`\n"), 0o644))

	assert.NoError(t, runCommand(t, "render", input, "--config", path))
}

func TestRenderCmdPlain(t *testing.T) {
	path := writeDefs(t, goodDefs)
	input := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(input, []byte("see #42\n"), 0o644))

	assert.NoError(t, runCommand(t, "render", "--plain", input, "--config", path))
}

func TestRenderCmdMissingInput(t *testing.T) {
	path := writeDefs(t, goodDefs)
	missing := filepath.Join(t.TempDir(), "nope.md")
	assert.Error(t, runCommand(t, "render", missing, "--config", path))
}
