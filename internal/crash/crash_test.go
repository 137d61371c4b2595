package crash

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func useTempReportDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := reportDir
	reportDir = func() string { return dir }
	t.Cleanup(func() { reportDir = old })
	return dir
}

func TestWriteReportCreatesFileInReportDir(t *testing.T) {
	dir := useTempReportDir(t)
	path, err := writeReport("", "boom", []byte("stacktrace"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Fatalf("report written to %s, want dir %s", path, dir)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, "Fan Translator Crash Report") {
		t.Fatalf("report header missing")
	}
	if !strings.Contains(s, "Panic: boom") {
		t.Fatalf("panic content missing: %s", s)
	}
	if strings.Contains(s, "ProjectRoot:") {
		t.Fatalf("unexpected project line without a root: %s", s)
	}
}

func TestWriteReportRecordsProjectRoot(t *testing.T) {
	useTempReportDir(t)
	root := t.TempDir()
	path, err := writeReport(root, "kaboom", []byte("stack"))
	if err != nil {
		t.Fatalf("writeReport error: %v", err)
	}
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "ProjectRoot: "+root) {
		t.Fatalf("project root missing from report: %s", string(b))
	}
	// project root keeps only its fixed subfolders
	entries, _ := os.ReadDir(root)
	if len(entries) != 0 {
		t.Fatalf("report must not be written into the project root, found %d entries", len(entries))
	}
}
