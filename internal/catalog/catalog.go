package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// scriptExtension is the only file extension the catalog recognizes.
const scriptExtension = ".sql"

// Migration is a single schema-change script discovered on disk. The script
// body is deliberately not loaded here: ReadSQL reads it from disk at apply
// time, so a dry run never touches file contents.
type Migration struct {
	ID       string // filename without the .sql extension, e.g. "001_initial_schema"
	Filename string // filename including extension, the sort key
	Path     string // full path to the script
}

// ReadSQL reads the script body from disk. The body is never cached; every
// run re-reads it.
func (m Migration) ReadSQL() (string, error) {
	data, err := os.ReadFile(m.Path)
	if err != nil {
		return "", fmt.Errorf("reading migration script %s: %w", m.Path, err)
	}

	return string(data), nil
}

// List scans a directory for migration scripts and returns them ordered by
// filename, lexicographic ascending. The scan is non-recursive and files
// without the .sql extension are skipped. A missing directory is an error;
// an empty directory yields an empty slice.
//
// Filename order is the execution order. Authors must use a sortable naming
// scheme (zero-padded numeric prefixes) for order to match intent.
func List(dir string) ([]Migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory %s: %w", dir, err)
	}

	var migrations []Migration

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if filepath.Ext(name) != scriptExtension {
			continue
		}

		migrations = append(migrations, Migration{
			ID:       strings.TrimSuffix(name, scriptExtension),
			Filename: name,
			Path:     filepath.Join(dir, name),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Filename < migrations[j].Filename
	})

	return migrations, nil
}
