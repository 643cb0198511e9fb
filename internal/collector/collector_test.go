package collector

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/kwscan/internal/shared"
	tu "github.com/desertthunder/kwscan/internal/testing"
)

func TestCollect(t *testing.T) {
	t.Run("keeps every file verbatim", func(t *testing.T) {
		root := tu.WriteTree(t, map[string]string{
			"notes.txt":           "alpha",
			"report.pdf":          "%PDF-1.4",
			".hidden":             "h",
			"image.png":           "\x89PNG",
			"nested/deeper/a.md":  "beta",
			"nested/b.txt":        "gamma",
			"node_modules/pkg.js": "module",
		})

		set, err := Collect(root)
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}

		want := []string{
			".hidden",
			"image.png",
			"nested/b.txt",
			"nested/deeper/a.md",
			"node_modules/pkg.js",
			"notes.txt",
			"report.pdf",
		}
		if set.Len() != len(want) {
			t.Fatalf("Collect() returned %d files, want %d", set.Len(), len(want))
		}
		for i, name := range want {
			if set.Files[i].Name != name {
				t.Errorf("file[%d] = %q, want %q", i, set.Files[i].Name, name)
			}
		}
	})

	t.Run("records sizes and absolute paths", func(t *testing.T) {
		root := tu.WriteTree(t, map[string]string{"a.txt": "12345"})

		set, err := Collect(root)
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}

		f := set.Files[0]
		if f.Size != 5 {
			t.Errorf("Size = %d, want 5", f.Size)
		}
		if !filepath.IsAbs(f.Path) {
			t.Errorf("Path %q should be absolute", f.Path)
		}
		if set.TotalSize() != 5 {
			t.Errorf("TotalSize() = %d, want 5", set.TotalSize())
		}
	})

	t.Run("empty folder yields empty set", func(t *testing.T) {
		set, err := Collect(t.TempDir())
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}
		if !set.Empty() {
			t.Errorf("expected empty set, got %d files", set.Len())
		}
	})

	t.Run("missing folder", func(t *testing.T) {
		_, err := Collect(filepath.Join(t.TempDir(), "missing"))
		if !errors.Is(err, shared.ErrDirectoryNotFound) {
			t.Errorf("expected ErrDirectoryNotFound, got %v", err)
		}
	})

	t.Run("file instead of folder", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		_, err := Collect(path)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("follows symlinked files", func(t *testing.T) {
		outside := filepath.Join(t.TempDir(), "target.log")
		if err := os.WriteFile(outside, []byte("linked"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}

		root := t.TempDir()
		if err := os.WriteFile(filepath.Join(root, "plain.txt"), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if err := os.Symlink(outside, filepath.Join(root, "link.log")); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}
		if err := os.Symlink(filepath.Join(root, "gone"), filepath.Join(root, "broken")); err != nil {
			t.Fatalf("failed to create symlink: %v", err)
		}
		if err := os.Symlink(t.TempDir(), filepath.Join(root, "dirlink")); err != nil {
			t.Fatalf("failed to create symlink: %v", err)
		}

		set, err := Collect(root)
		if err != nil {
			t.Fatalf("Collect() error = %v", err)
		}

		if set.Len() != 2 {
			t.Fatalf("expected 2 files, got %+v", set.Files)
		}
		link := set.Files[0]
		if link.Name != "link.log" || link.Size != 6 {
			t.Errorf("unexpected linked file %+v", link)
		}
		if set.Files[1].Name != "plain.txt" {
			t.Errorf("unexpected second file %+v", set.Files[1])
		}
	})
}
