package ops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/hpungsan/degreeplan/internal/catalog"
	"github.com/hpungsan/degreeplan/internal/errors"
)

func TestExportCatalog_RoundTrip(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t)

	for _, name := range []string{"catalog.json", "catalog.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			out, err := ExportCatalog(ctx, database, ExportInput{Path: path})
			if err != nil {
				t.Fatalf("ExportCatalog failed: %v", err)
			}
			if out.Path != path || out.Count != 3 || out.ExportedAt == 0 {
				t.Errorf("output = %+v", out)
			}

			cat, err := catalog.LoadFile(path)
			if err != nil {
				t.Fatalf("exported file does not load: %v", err)
			}
			if len(cat.Majors) != 3 {
				t.Errorf("len(Majors) = %d, want 3", len(cat.Majors))
			}

			fresh := openTestDB(t)
			imported, err := ImportCatalog(ctx, fresh, ImportInput{Path: path})
			if err != nil {
				t.Fatalf("re-import failed: %v", err)
			}
			if imported.Imported != 3 {
				t.Errorf("Imported = %d, want 3", imported.Imported)
			}
		})
	}
}

func TestExportCatalog_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	if _, err := ExportCatalog(context.Background(), seededDB(t), ExportInput{Path: path}); err != nil {
		t.Fatalf("ExportCatalog failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "catalog.json" {
		t.Errorf("dir entries = %v, want only catalog.json", entries)
	}
}

func TestExportCatalog_RejectsSymlinkDestination(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "real.json")
	if err := os.WriteFile(target, []byte("[]"), 0600); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.json")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	_, err := ExportCatalog(context.Background(), seededDB(t), ExportInput{Path: link})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}
