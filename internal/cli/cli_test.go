package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())
	t.Setenv("DATABASE_URL", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeHeader(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestRoot_ConvertsSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quest.wotwrh")
	writeHeader(t, path, "!!name Hero\n")

	_, err := runCmd(t, path)
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "converted", "quest.wotwrh"))
	require.NoError(t, err)
	assert.Equal(t, "!!name \"Hero\"\n", string(out))
}

func TestConvert_Directory(t *testing.T) {
	dir := t.TempDir()
	writeHeader(t, filepath.Join(dir, "a.wotwrh"), "Flags: x, y\n")
	writeHeader(t, filepath.Join(dir, "nested", "b.wotwrh"), "3|0|6|Hi\n")

	_, err := runCmd(t, "convert", "--recursive", "--out-dir", "out", "--workers", "2", dir)
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(dir, "out", "a.wotwrh"))
	require.NoError(t, err)
	assert.Equal(t, "Flags: \"x\", \"y\"\n", string(a))

	b, err := os.ReadFile(filepath.Join(dir, "nested", "out", "b.wotwrh"))
	require.NoError(t, err)
	assert.Equal(t, "3|0|6|\"Hi\"\n", string(b))
}

func TestConvert_Stdout(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quest.wotwrh")
	writeHeader(t, path, "!!icon file:icons/sword.png\n")

	out, err := runCmd(t, "convert", "--stdout", path)
	require.NoError(t, err)
	assert.Equal(t, "!!icon \"icons/sword.png\"\n", out)

	_, err = os.Stat(filepath.Join(dir, "converted"))
	assert.True(t, os.IsNotExist(err))
}

func TestConvert_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := runCmd(t, "convert", filepath.Join(dir, "missing.wotwrh"))
	assert.Error(t, err)

	_, err = runCmd(t, "convert", "--stdout", "a", "b")
	assert.ErrorContains(t, err, "exactly one file")

	_, err = runCmd(t, "convert", "--out-dir", "../escape", dir)
	assert.ErrorContains(t, err, "plain name")

	_, err = runCmd(t, "convert")
	assert.Error(t, err)
}
