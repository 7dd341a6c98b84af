package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// startLine is the first record of a session: LstdFlags|Lmicroseconds prefix, then the banner
var startLine = regexp.MustCompile(`^\d{4}/\d{2}/\d{2} \d{2}:\d{2}:\d{2}\.\d{6} barrace: logging started\n$`)

var rotatedName = regexp.MustCompile(`^barrace-\d{8}-\d{6}\.log$`)

// inTempDir runs the test from an empty directory and restores the standard logger
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	prevOut, prevFlags := log.Writer(), log.Flags()
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFlags(prevFlags)
	})
	return dir
}

func readLog(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(logDir, logFileName))
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	return string(data)
}

func TestSetupLoggingDiscardsWithoutDebug(t *testing.T) {
	inTempDir(t)

	if f := setupLogging(false); f != nil {
		f.Close()
		t.Error("Expected no log file without debug")
	}
	if log.Writer() != io.Discard {
		t.Errorf("Expected io.Discard, got %v", log.Writer())
	}
	if _, err := os.Stat(logDir); !os.IsNotExist(err) {
		t.Errorf("Expected no %s directory without debug, got %v", logDir, err)
	}
}

func TestSetupLoggingWritesStartLine(t *testing.T) {
	inTempDir(t)

	f := setupLogging(true)
	if f == nil {
		t.Fatal("Expected log file with debug")
	}
	defer f.Close()

	if want := log.LstdFlags | log.Lmicroseconds; log.Flags() != want {
		t.Errorf("Expected flags %d, got %d", want, log.Flags())
	}
	if got := readLog(t); !startLine.MatchString(got) {
		t.Errorf("Expected a single timestamped start line, got %q", got)
	}
}

func TestSetupLoggingAppendsToSmallLog(t *testing.T) {
	inTempDir(t)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := os.WriteFile(filepath.Join(logDir, logFileName), []byte("previous session\n"), 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	f := setupLogging(true)
	if f == nil {
		t.Fatal("Expected log file with debug")
	}
	defer f.Close()

	entries, _ := os.ReadDir(logDir)
	if len(entries) != 1 {
		t.Errorf("Expected no rotation below %d bytes, got %d files", maxLogSize, len(entries))
	}
	got := readLog(t)
	const prev = "previous session\n"
	if len(got) <= len(prev) || got[:len(prev)] != prev || !startLine.MatchString(got[len(prev):]) {
		t.Errorf("Expected start line appended after previous content, got %q", got)
	}
}

func TestSetupLoggingRotatesOversizedLog(t *testing.T) {
	inTempDir(t)
	if err := os.MkdirAll(logDir, 0755); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	big, err := os.Create(filepath.Join(logDir, logFileName))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := big.Truncate(maxLogSize + 1); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	big.Close()

	f := setupLogging(true)
	if f == nil {
		t.Fatal("Expected log file with debug")
	}
	defer f.Close()

	entries, err := os.ReadDir(logDir)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	var rotated []string
	for _, e := range entries {
		if e.Name() != logFileName {
			rotated = append(rotated, e.Name())
		}
	}
	if len(rotated) != 1 || !rotatedName.MatchString(rotated[0]) {
		t.Fatalf("Expected one barrace-YYYYMMDD-HHMMSS.log, got %v", rotated)
	}
	info, err := os.Stat(filepath.Join(logDir, rotated[0]))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if info.Size() != maxLogSize+1 {
		t.Errorf("Expected rotated file to keep %d bytes, got %d", maxLogSize+1, info.Size())
	}
	if got := readLog(t); !startLine.MatchString(got) {
		t.Errorf("Expected fresh log with only the start line, got %q", got)
	}
}

func TestSetupLoggingFallsBackWhenDirBlocked(t *testing.T) {
	inTempDir(t)
	// a regular file where the directory should be
	if err := os.WriteFile(logDir, nil, 0644); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if f := setupLogging(true); f != nil {
		f.Close()
		t.Error("Expected no log file when the log directory cannot be created")
	}
	if log.Writer() != io.Discard {
		t.Errorf("Expected io.Discard fallback, got %v", log.Writer())
	}
}
