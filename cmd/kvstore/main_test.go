package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eigerco/kvstore/pkg/store"
)

func writeConfig(t *testing.T) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "kvstore.yaml")
	content := "engine: bbolt\npath: " + filepath.Join(dir, "data") + "\nsync_writes: false\nlogger:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCmd(t *testing.T, cfg string, args ...string) (string, error) {
	var out bytes.Buffer
	err := run(append([]string{"-config", cfg}, args...), &out, io.Discard)
	return out.String(), err
}

func TestCommands(t *testing.T) {
	cfg := writeConfig(t)

	for i, v := range []string{`{"name":"a"}`, `2`, `"three"`, `[4]`} {
		_, err := runCmd(t, cfg, "put", "k_0"+string(rune('1'+i)), v)
		require.NoError(t, err)
	}

	out, err := runCmd(t, cfg, "get", "k_02")
	require.NoError(t, err)
	var e entry
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	assert.Equal(t, "k_02", e.Key)
	assert.EqualValues(t, 2, e.Value)

	out, err = runCmd(t, cfg, "list", "k_04", "k_01", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"k_04"`)
	assert.Contains(t, lines[1], `"k_03"`)

	out, err = runCmd(t, cfg, "paginate", "k_01", "k_04", "3")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"next":"k_04","end":"k_04"}`, lines[3])

	_, err = runCmd(t, cfg, "delete-range", "k_01", "k_02")
	require.NoError(t, err)
	_, err = runCmd(t, cfg, "delete", "k_03")
	require.NoError(t, err)

	out, err = runCmd(t, cfg, "list", "k", "k_\x7f")
	require.NoError(t, err)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"k_04"`)

	_, err = runCmd(t, cfg, "get", "k_01")
	assert.Error(t, err)
}

func TestUsageErrors(t *testing.T) {
	cfg := writeConfig(t)

	for _, args := range [][]string{
		{},
		{"get"},
		{"put", "k"},
		{"list", "a", "b", "many"},
		{"compact"},
	} {
		_, err := runCmd(t, cfg, args...)
		assert.ErrorIs(t, err, errUsage, "args %v", args)
	}
}

func TestMissingConfigIsLogged(t *testing.T) {
	dir := t.TempDir()
	var out, logs bytes.Buffer

	err := run([]string{
		"-config", filepath.Join(dir, "absent.yaml"),
		"-path", filepath.Join(dir, "data"),
		"put", "k", "1",
	}, &out, &logs)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "config file not found, using default config")
	assert.Contains(t, logs.String(), "absent.yaml")

	logs.Reset()
	err = run([]string{"-config", writeConfig(t), "get", "missing"}, &out, &logs)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.NotContains(t, logs.String(), "config file not found")
}
