// package collector flattens a selected folder into a [models.FileSet]
package collector

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/desertthunder/kwscan/internal/models"
	"github.com/desertthunder/kwscan/internal/shared"
)

// Collect walks root recursively and returns every regular file beneath it.
//
// Nothing is filtered or deduplicated: hidden files, binaries, symlinked files and files of any
// extension are kept, ordered by their slash-separated path relative to root. An empty folder yields an
// empty set.
func Collect(root string) (models.FileSet, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return models.FileSet{}, fmt.Errorf("failed to resolve %s: %w", root, err)
	}

	info, err := os.Stat(abs)
	if errors.Is(err, fs.ErrNotExist) {
		return models.FileSet{}, fmt.Errorf("%w: %s", shared.ErrDirectoryNotFound, root)
	}
	if err != nil {
		return models.FileSet{}, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return models.FileSet{}, fmt.Errorf("%w: %s is not a directory", shared.ErrInvalidArgument, root)
	}

	set := models.FileSet{Root: abs}
	err = filepath.WalkDir(abs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		fi, ok, err := fileInfo(path, d)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(abs, path)
		if err != nil {
			return err
		}

		set.Files = append(set.Files, models.SelectedFile{
			Name: filepath.ToSlash(rel),
			Path: path,
			Size: fi.Size(),
		})
		return nil
	})
	if err != nil {
		return models.FileSet{}, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.SliceStable(set.Files, func(i, j int) bool {
		return set.Files[i].Name < set.Files[j].Name
	})

	return set, nil
}

// fileInfo returns the info of a regular file, following symlinks to files.
//
// Directories, broken links, links to directories and special files report ok == false.
func fileInfo(path string, d fs.DirEntry) (fs.FileInfo, bool, error) {
	switch {
	case d.Type().IsRegular():
		fi, err := d.Info()
		return fi, err == nil, err
	case d.Type()&fs.ModeSymlink != 0:
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			return nil, false, nil
		}
		return fi, true, nil
	default:
		return nil, false, nil
	}
}
