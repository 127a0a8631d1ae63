package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adammathes/fntverify/pkg/report"
)

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func writeDoc(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestCheckClean(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "ok.fnt", "<p>Fine &mdash; really.</p>\n")

	code, out, _ := runCLI("check", "--format", "text", path)
	assert.Equal(t, exitClean, code)
	assert.Contains(t, out, "No issues found.")
}

func TestCheckIssues(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "bad.fnt", "<p>caf&eacute;</p>\n")

	code, out, _ := runCLI("check", "-f", "text", path)
	assert.Equal(t, exitIssues, code)
	assert.Contains(t, out, "ENT-001")
	assert.Contains(t, out, "Entity: 1")
}

func TestCheckDirectoryJSON(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "a.fnt", "<p>one</p>")
	writeDoc(t, dir, "b.fnt", "<p>two</b>")
	writeDoc(t, dir, "skip.txt", "<<<")

	code, out, _ := runCLI("check", "--format", "json", dir)
	assert.Equal(t, exitIssues, code)

	var got report.JSONOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, 2, got.FilesScanned)
	assert.Equal(t, 1, got.TotalIssues)
	assert.True(t, got.Files[0].Clean)
	assert.False(t, got.Files[1].Clean)
}

func TestCheckOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "ok.fnt", "<p>x</p>")
	reportPath := filepath.Join(dir, "report.xml")

	code, out, _ := runCLI("check", "--format", "checkstyle", "--output", reportPath, path)
	assert.Equal(t, exitClean, code)
	assert.Empty(t, out)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<checkstyle")
}

func TestCheckMissingFileIsReported(t *testing.T) {
	code, out, _ := runCLI("check", "-f", "text", filepath.Join(t.TempDir(), "missing.fnt"))
	assert.Equal(t, exitIssues, code)
	assert.Contains(t, out, "DOC-001")
}

func TestCheckFatalErrors(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "ok.fnt", "<p>x</p>")

	code, _, errOut := runCLI("check", "--format", "yaml", path)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "unknown format")

	code, _, errOut = runCLI("check", "--config", filepath.Join(t.TempDir(), "none.yaml"), path)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "Fatal:")

	code, _, _ = runCLI("check")
	assert.Equal(t, exitFatal, code)
}

func TestCheckWithConfig(t *testing.T) {
	dir := t.TempDir()
	cfg := writeDoc(t, dir, "fntverify.yaml", "supported_tags: [p]\ncustom_entities: [eacute]\n")
	path := writeDoc(t, dir, "doc.fnt", "<p>caf&eacute;<b>x</b></p>")

	code, out, _ := runCLI("check", "-c", cfg, "-f", "text", path)
	assert.Equal(t, exitIssues, code)
	assert.NotContains(t, out, "ENT-001")
	assert.Contains(t, out, "Unknown tag <b>")
}

func TestFix(t *testing.T) {
	dir := t.TempDir()
	path := writeDoc(t, dir, "doc.fnt", "<p>A&B</p>\n")

	code, out, _ := runCLI("fix", path)
	assert.Equal(t, exitClean, code)
	assert.Contains(t, out, "Applied 1 fixes")
	assert.Contains(t, out, "1 before, 0 after")

	data, err := os.ReadFile(path + ".fixed")
	require.NoError(t, err)
	assert.Equal(t, "<p>A&amp;B</p>\n", string(data))
}

func TestFixLeavesIssues(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "doc.fnt", "<p><blink>x</blink></p>\n")

	code, out, _ := runCLI("fix", path)
	assert.Equal(t, exitIssues, code)
	assert.Contains(t, out, "No fixes applied")
	assert.Contains(t, out, "TAG-001")
}

func TestEntities(t *testing.T) {
	code, out, _ := runCLI("entities", "--allowed")
	assert.Equal(t, exitClean, code)
	assert.Contains(t, out, "&mdash;\t&#8212;\tU+2014\n")
	assert.NotContains(t, out, "&eacute;")

	code, out, _ = runCLI("entities")
	assert.Equal(t, exitClean, code)
	assert.Contains(t, out, "&eacute;\t&#233;\tU+00E9\n")
}

func TestConfigCommand(t *testing.T) {
	code, out, _ := runCLI("config", "--defaults")
	assert.Equal(t, exitClean, code)
	assert.Contains(t, out, "supported_tags:")
	assert.Contains(t, out, "non_closing_tags:")

	t.Setenv("FNTVERIFY_JOBS", "9")
	code, out, _ = runCLI("config")
	assert.Equal(t, exitClean, code)
	assert.Contains(t, out, "jobs: 9")
}

func TestVersion(t *testing.T) {
	code, out, _ := runCLI("--version")
	assert.Equal(t, exitClean, code)
	assert.Contains(t, out, version)
}

func TestBadLogLevel(t *testing.T) {
	path := writeDoc(t, t.TempDir(), "ok.fnt", "<p>x</p>")
	code, _, errOut := runCLI("--log-level", "loud", "check", path)
	assert.Equal(t, exitFatal, code)
	assert.Contains(t, errOut, "invalid log level")
}
