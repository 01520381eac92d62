package modules

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/funvibe/classcore/internal/config"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/utils"
)

// Source is the raw content of one unit file.
type Source struct {
	Path string
	Data []byte
}

// CollectUnits expands the given paths into unit files. Directories are
// walked recursively; files are taken as given. The result is sorted and
// free of duplicates.
func CollectUnits(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("collecting units: %w", err)
		}
		if !info.IsDir() {
			add(filepath.Clean(p))
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && config.HasUnitExt(path) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("collecting units in %s: %w", p, err)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ReadSources reads every unit file.
func ReadSources(paths []string) ([]Source, error) {
	out := make([]Source, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading unit: %w", err)
		}
		out = append(out, Source{Path: p, Data: data})
	}
	return out, nil
}

// Libraries holds the libraries opened for a run.
type Libraries struct {
	List    []symbols.Library
	closers []func() error
}

// LoadLibraries opens each library path: SQLite indexes lazily, declaration
// files eagerly.
func LoadLibraries(paths []string) (*Libraries, error) {
	libs := &Libraries{}
	for _, p := range paths {
		if utils.IsLibraryIndex(p) {
			l, err := OpenSQLiteLibrary(p)
			if err != nil {
				libs.Close()
				return nil, err
			}
			libs.List = append(libs.List, l)
			libs.closers = append(libs.closers, l.Close)
			continue
		}
		l, err := LoadYAMLLibrary(p)
		if err != nil {
			libs.Close()
			return nil, err
		}
		libs.List = append(libs.List, l)
	}
	return libs, nil
}

func (l *Libraries) Close() error {
	var errs []error
	for _, c := range l.closers {
		errs = append(errs, c())
	}
	l.closers = nil
	return errors.Join(errs...)
}
