package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"readable/internal/extract"
)

type stubDecoder []string

func (s stubDecoder) Pages([]byte) ([]string, error) { return s, nil }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestRun_Stdout(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.txt", "Hello\n\n  world.")
	b := writeFile(t, dir, "b.txt", "Second\tfile")

	var stdout, stderr bytes.Buffer
	failed := run(extract.New(), []string{a, b}, options{quiet: true}, &stdout, &stderr)

	assert.Equal(t, 0, failed)
	assert.Equal(t, "Hello world.\nSecond file\n", stdout.String())
	assert.Contains(t, stderr.String(), "2 extracted, 0 partial, 0 failed")
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.txt", "ok")
	bad := writeFile(t, dir, "bad.txt", string([]byte{0xff, 0xfe}))
	img := writeFile(t, dir, "photo.png", "png")
	missing := filepath.Join(dir, "missing.txt")

	var stdout, stderr bytes.Buffer
	failed := run(extract.New(), []string{good, bad, img, missing}, options{quiet: true}, &stdout, &stderr)

	assert.Equal(t, 3, failed)
	assert.Equal(t, "ok\n", stdout.String())
	assert.Contains(t, stderr.String(), "cannot decode")
	assert.Contains(t, stderr.String(), "unsupported file type")
	assert.Contains(t, stderr.String(), "1 extracted, 0 partial, 3 failed")
}

func TestRun_OutDirAndMetrics(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	doc := writeFile(t, dir, "report.pdf", "%PDF-stub")

	ex := extract.New(extract.WithPDFDecoder(stubDecoder{"The cat sat.", "  ", "The dog ran."}))

	var stdout, stderr bytes.Buffer
	failed := run(ex, []string{doc}, options{outDir: out, metrics: true, quiet: true}, &stdout, &stderr)
	require.Equal(t, 0, failed)

	written, err := os.ReadFile(filepath.Join(out, "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, "The cat sat. The dog ran.\n", string(written))

	sc := bufio.NewScanner(&stdout)
	require.True(t, sc.Scan())
	var line fileResult
	require.NoError(t, json.Unmarshal(sc.Bytes(), &line))
	assert.Equal(t, doc, line.File)
	assert.Equal(t, 3, line.Pages)
	assert.Equal(t, 1, line.EmptyPages)
	require.NotNil(t, line.Metrics)
	assert.Equal(t, 6, line.Metrics.SyllableCount)
	assert.Empty(t, line.Text)

	assert.Contains(t, stderr.String(), "1 of 3 pages had no text")
	assert.Contains(t, stderr.String(), "1 extracted, 1 partial, 0 failed")
}
