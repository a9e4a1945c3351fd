package backup

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileRepository_RoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "nested"), "")

	if _, err := repo.Load(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load on empty dir = %v, want ErrNotFound", err)
	}
	if ok, _ := repo.Exists(ctx); ok {
		t.Fatal("Exists on empty dir = true")
	}

	first := NewRecord(json.RawMessage(`{"v":1}`), time.Now(), "2024-04")
	second := NewRecord(json.RawMessage(`{"v":2}`), time.Now(), "2024-05")
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if string(got.Data) != `{"v":2}` || got.PeriodOr("") != "2024-05" {
		t.Fatalf("Load = %+v, want second record", got)
	}
	if filepath.Base(repo.Path()) != "pendingSave.json" {
		t.Errorf("Path = %s", repo.Path())
	}
	if _, err := os.Stat(repo.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if ok, _ := repo.Exists(ctx); ok {
		t.Fatal("Exists after Delete = true")
	}
}

func TestFileRepository_Corrupt(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	repo := NewFileRepository(dir, "custom")

	if err := os.WriteFile(filepath.Join(dir, "custom.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Load(ctx); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load = %v, want ErrCorrupt", err)
	}
	if ok, _ := repo.Exists(ctx); !ok {
		t.Fatal("corrupt record should still exist")
	}
}

func TestMemoryRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	repo.SetRaw([]byte("garbage"))
	if _, err := repo.Load(ctx); !errors.Is(err, ErrCorrupt) {
		t.Fatalf("Load = %v, want ErrCorrupt", err)
	}

	rec := NewRecord(json.RawMessage(`[1]`), time.Now(), "")
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatal(err)
	}
	got, err := repo.Load(ctx)
	if err != nil || string(got.Data) != "[1]" {
		t.Fatalf("Load = %+v, %v", got, err)
	}
}
