package v1

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExportDownloadStore_TakeOnce(t *testing.T) {
	t.Parallel()

	s := newExportDownloadStore()
	token := s.put("/tmp/a.xlsx", "a_hierarchy.xlsx", time.Minute)

	got, ok := s.take(token)
	if !ok || got.filename != "a_hierarchy.xlsx" || got.filePath != "/tmp/a.xlsx" {
		t.Fatalf("take=%+v ok=%v", got, ok)
	}
	if _, ok := s.take(token); ok {
		t.Fatalf("expected token to be consumed")
	}
}

func TestExportDownloadStore_ExpiredRemovesFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "old.xlsx")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	s := newExportDownloadStore()
	token := s.put(path, "old_hierarchy.xlsx", -time.Second)

	if _, ok := s.take(token); ok {
		t.Fatalf("expected expired token to be rejected")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected expired file removed, stat err=%v", err)
	}
}
