// Package discovery finds compose templates and values files on disk.
package discovery

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// FilesWithExtension walks root and returns every regular file whose
// name ends with ext (e.g. ".yaml"). Unreadable subtrees are skipped
// rather than failing the whole walk. Results are sorted for stable
// ordering.
func FilesWithExtension(root, ext string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ext) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}

// FilesWithName walks root and returns every file named exactly name,
// such as "values.yaml". Results are sorted for stable ordering.
func FilesWithName(root, name string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && d.Name() == name {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	return matches, nil
}
