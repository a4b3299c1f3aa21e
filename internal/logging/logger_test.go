package logging

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetWritesToCategoryFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CONS_LOG_DIR", dir)
	t.Setenv("CONS_LOG_LEVEL", "debug")

	loggersMu.Lock()
	delete(loggers, CategoryCapture)
	loggersMu.Unlock()

	l := Get(CategoryCapture)
	l.Info("capture started note=%d", 42)

	entries, err := os.ReadDir(logDir())
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	found := false
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".log" {
			found = true
		}
	}
	if !found {
		t.Error("expected a .log file to be created under CONS_LOG_DIR")
	}
}

func TestCurrentLevelGating(t *testing.T) {
	t.Setenv("CONS_LOG_LEVEL", "error")
	if currentLevel() != levelError {
		t.Errorf("currentLevel() = %d, want %d", currentLevel(), levelError)
	}
	t.Setenv("CONS_LOG_LEVEL", "")
	if currentLevel() != levelInfo {
		t.Errorf("currentLevel() with unset env = %d, want default %d", currentLevel(), levelInfo)
	}
}
