package modules

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/funvibe/classcore/internal/ast"
	"github.com/funvibe/classcore/internal/symbols"
	"github.com/funvibe/classcore/internal/utils"
)

const indexSchema = `
CREATE TABLE IF NOT EXISTS classes (
	name    TEXT PRIMARY KEY,
	package TEXT NOT NULL,
	host    TEXT NOT NULL,
	decl    BLOB
);
CREATE INDEX IF NOT EXISTS classes_package ON classes(package);
`

// SQLiteLibrary is a persistent library index. Classes are decoded on first
// request, together with the rest of their nest.
type SQLiteLibrary struct {
	name string
	db   *sql.DB

	mu      sync.Mutex
	content []string
	loaded  map[string]*symbols.Symbol
}

// OpenSQLiteLibrary opens an index written by BuildIndex.
func OpenSQLiteLibrary(path string) (*SQLiteLibrary, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("opening library index: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening library index %s: %w", path, err)
	}
	l := &SQLiteLibrary{name: path, db: db, loaded: make(map[string]*symbols.Symbol)}

	rows, err := db.Query(`SELECT name FROM classes ORDER BY name`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading library index %s: %w", path, err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			db.Close()
			return nil, fmt.Errorf("reading library index %s: %w", path, err)
		}
		l.content = append(l.content, name)
	}
	if err := rows.Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("reading library index %s: %w", path, err)
	}
	return l, nil
}

func (l *SQLiteLibrary) Name() string { return l.name }

func (l *SQLiteLibrary) Content() []string { return l.content }

func (l *SQLiteLibrary) Close() error { return l.db.Close() }

// Get decodes the nest containing name. Index corruption is returned as an
// error, which the table reports as a provider fault.
func (l *SQLiteLibrary) Get(name string) (*symbols.Symbol, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if sym, ok := l.loaded[name]; ok {
		return sym, nil
	}

	var pkg, host string
	err := l.db.QueryRow(`SELECT package, host FROM classes WHERE name = ?`, name).Scan(&pkg, &host)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var blob []byte
	if err := l.db.QueryRow(`SELECT decl FROM classes WHERE name = ?`, host).Scan(&blob); err != nil {
		return nil, fmt.Errorf("nest host %s of %s: %w", host, name, err)
	}
	var decl ast.ClassDecl
	if err := yaml.Unmarshal(blob, &decl); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", host, err)
	}
	classes, errs := Declare(pkg, []*ast.ClassDecl{&decl}, l.name, true)
	if err := joinDiagnostics(errs); err != nil {
		return nil, fmt.Errorf("declaring %s: %w", host, err)
	}
	for _, c := range classes {
		l.loaded[c.Symbol.Name] = c.Symbol
	}
	return l.loaded[name], nil
}

// BuildIndex writes the classes of the given library declaration files into a
// SQLite index at out, replacing rows for classes already present. It returns
// the number of classes written.
func BuildIndex(ctx context.Context, out string, sources []string) (int, error) {
	db, err := sql.Open("sqlite", out)
	if err != nil {
		return 0, fmt.Errorf("creating index %s: %w", out, err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, indexSchema); err != nil {
		return 0, fmt.Errorf("creating index schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO classes(name, package, host, decl) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	count := 0
	for _, src := range sources {
		unit, err := ParseLibraryFile(src)
		if err != nil {
			return 0, err
		}
		if _, errs := Declare(unit.Package, unit.Classes, src, true); len(errs) > 0 {
			return 0, fmt.Errorf("library %s: %w", src, joinDiagnostics(errs))
		}
		for _, decl := range unit.Classes {
			host := strings.ReplaceAll(decl.Name, ".", "/")
			if !strings.Contains(host, "/") {
				host = utils.Qualify(unit.Package, host)
			}
			pkg := utils.PackageOf(host)
			stored := *decl
			stored.Name = utils.ShortName(host)
			blob, err := yaml.Marshal(&stored)
			if err != nil {
				return 0, fmt.Errorf("encoding %s: %w", host, err)
			}
			if _, err := stmt.ExecContext(ctx, host, pkg, host, blob); err != nil {
				return 0, fmt.Errorf("writing %s: %w", host, err)
			}
			count++

			var inner func(outer string, cs []*ast.ClassDecl) error
			inner = func(outer string, cs []*ast.ClassDecl) error {
				for _, c := range cs {
					name := outer + "$" + c.Name
					if _, err := stmt.ExecContext(ctx, name, pkg, host, nil); err != nil {
						return fmt.Errorf("writing %s: %w", name, err)
					}
					count++
					if err := inner(name, c.Inner); err != nil {
						return err
					}
				}
				return nil
			}
			if err := inner(host, decl.Inner); err != nil {
				return 0, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing index: %w", err)
	}
	return count, nil
}
