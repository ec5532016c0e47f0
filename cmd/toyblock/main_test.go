package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"toyblock"}, args...))
	return out.String(), err
}

func TestSPNCommand(t *testing.T) {
	out, err := run(t, "spn", "--plaintext", "1010010100010111", "--key", "01101100011101010100111100100001")
	require.NoError(t, err)
	assert.Equal(t, "1100001111011000\n", out)

	out, err = run(t, "spn", "-p", "1010010100010111", "-k", "01101100011101010100111100100001", "-r", "1")
	require.NoError(t, err)
	assert.Equal(t, "1001110111101001\n", out)

	_, err = run(t, "spn", "-p", "1010010100010111", "-k", "01101100011101010100111100100001", "-r", "5")
	assert.Error(t, err)
}

func TestSDESCommand(t *testing.T) {
	out, err := run(t, "sdes", "--plaintext", "11101010", "--key", "0111111101", "--schedule")
	require.NoError(t, err)
	assert.Equal(t, "K1 01011111\nK2 11111100\n10100010\n", out)

	_, err = run(t, "sdes", "--plaintext", "111010101", "--key", "0111111101")
	assert.Error(t, err)
}

func TestFileCommandRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "plain.bin")
	enc := filepath.Join(dir, "plain.enc")
	dec := filepath.Join(dir, "plain.dec")
	payload := []byte("BM header, then some pixels: 0123456789abcdef0123456789abcdef!")
	require.NoError(t, os.WriteFile(in, payload, 0o644))

	_, err := run(t, "file", "--cipher", "spn", "--key", "01101100011101010100111100100001",
		"--in", in, "--out", enc, "--mode", "ctr", "--iv", "0011000000111001", "--keep-prefix", "2", "--compress")
	require.NoError(t, err)

	_, err = run(t, "file", "--cipher", "spn", "--key", "01101100011101010100111100100001",
		"--in", enc, "--out", dec, "--mode", "ctr", "--iv", "0011000000111001", "--keep-prefix", "2", "--compress", "--decrypt")
	require.NoError(t, err)

	got, err := os.ReadFile(dec)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = run(t, "file", "--cipher", "sdes", "--key", "0111111101", "--in", in, "--out", dec, "--mode", "cbc", "--decrypt")
	assert.Error(t, err)
}

func TestSearchCommand(t *testing.T) {
	out, err := run(t, "search", "--cipher", "sdes",
		"--pair", "11101010:10100010", "--pair", "00110110:11011110", "--workers", "3")
	require.NoError(t, err)
	assert.Equal(t, "0111111101\n", out)

	out, err = run(t, "search", "--cipher", "sdes", "--known", "11111101", "--pair", "11101010:10100010")
	require.NoError(t, err)
	assert.Contains(t, out, "0111111101")

	_, err = run(t, "search", "--cipher", "sdes", "--pair", "11101010")
	assert.Error(t, err)
}

func TestVizCommand(t *testing.T) {
	out, err := run(t, "viz", "--cipher", "sdes")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `digraph "sdes"`))

	path := filepath.Join(t.TempDir(), "spn.dot")
	_, err = run(t, "viz", "--cipher", "spn", "--rounds", "2", "--out", path)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "r1_s0 -> r2_s0")
}

func TestLogsCommand(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "journal.db")
	in := filepath.Join(dir, "in.bin")
	require.NoError(t, os.WriteFile(in, []byte("abc"), 0o644))

	_, err := run(t, "--log-db", db, "file", "--cipher", "sdes", "--key", "0111111101",
		"--in", in, "--out", filepath.Join(dir, "out.bin"), "--mode", "ofb")
	require.NoError(t, err)

	out, err := run(t, "logs", "--dbfile", db, "-n", "5")
	require.NoError(t, err)
	assert.Contains(t, out, `"message":"file processed"`)

	out, err = run(t, "logs", "--dbfile", db, "--since", "1h", "--pretty")
	require.NoError(t, err)
	assert.Contains(t, out, "file processed")

	_, err = run(t, "logs")
	assert.Error(t, err)
}

func TestLogsMissingJournal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "typo.db")
	_, err := run(t, "logs", "--dbfile", missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "journal not found")
	assert.NoFileExists(t, missing)
}

func TestParseTimeSpec(t *testing.T) {
	now := time.Date(2024, 10, 27, 12, 0, 0, 0, time.UTC)

	got, err := parseTimeSpec("90m", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-90*time.Minute), got)

	got, err = parseTimeSpec("2024-10-27T10:00:00Z", now)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 10, 27, 10, 0, 0, 0, time.UTC)))

	_, err = parseTimeSpec("yesterday", now)
	assert.Error(t, err)
}
