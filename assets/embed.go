// Package assets embeds the SQL migrations and the sample board shipped with
// the binary.
package assets

import (
	"embed"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed sql/sqlite/*.sql sql/postgres/*.sql sample/board.csv
var FS embed.FS

// Migration is one schema script, applied once per database.
type Migration struct {
	Name string
	SQL  string
}

// Migrations returns the scripts for dialect ("sqlite" or "postgres") in
// lexical order.
func Migrations(dialect string) ([]Migration, error) {
	dir := path.Join("sql", dialect)
	entries, err := fs.ReadDir(FS, dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]Migration, 0, len(names))
	for _, n := range names {
		b, err := FS.ReadFile(path.Join(dir, n))
		if err != nil {
			return nil, err
		}
		out = append(out, Migration{Name: n, SQL: string(b)})
	}
	return out, nil
}

// SampleBoard returns the embedded demo board in the x;y;e0..e5 format.
func SampleBoard() ([]byte, error) {
	return FS.ReadFile("sample/board.csv")
}
