package modules

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/classcore/internal/ast"
	"github.com/funvibe/classcore/internal/diagnostics"
	"github.com/funvibe/classcore/internal/symbols"
)

// ParseLibraryFile decodes a library declaration file. Library files use the
// unit schema with fully qualified type names.
func ParseLibraryFile(path string) (*ast.Unit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading library %s: %w", path, err)
	}
	var decl ast.Unit
	if err := yaml.Unmarshal(data, &decl); err != nil {
		return nil, fmt.Errorf("parsing library %s: %w", path, err)
	}
	decl.SetFile(path)
	return &decl, nil
}

// LoadYAMLLibrary reads a library declaration file into memory.
func LoadYAMLLibrary(path string) (*symbols.MemoryLibrary, error) {
	decl, err := ParseLibraryFile(path)
	if err != nil {
		return nil, err
	}
	classes, errs := Declare(decl.Package, decl.Classes, path, true)
	if err := joinDiagnostics(errs); err != nil {
		return nil, fmt.Errorf("library %s: %w", path, err)
	}
	lib := symbols.NewMemoryLibrary(path)
	for _, c := range classes {
		lib.Add(c.Symbol)
	}
	return lib, nil
}

func joinDiagnostics(ds []*diagnostics.DiagnosticError) error {
	if len(ds) == 0 {
		return nil
	}
	errs := make([]error, len(ds))
	for i, d := range ds {
		errs[i] = d
	}
	return errors.Join(errs...)
}
