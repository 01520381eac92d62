// symbols/symbol_table.go - Main symbol table entry point
//
// The package is split into focused files:
// - symbol_table_core.go: Symbol, modifiers, type parameters, derived attributes
// - symbol_table_operations.go: Table (declare, lazy library lookup, packages)
// - symbol_table_library.go: Library port and the in-memory library
// - symbol_table_init.go: the prelude library of core java/lang classes
// - symbol_table_resolution.go: Linker (hierarchies, overload sets, supertype arguments)
// - symbol_table_imports.go: import rules and class name resolution

package symbols

// Provider is the symbol provider port consumed by the analysis core.
type Provider interface {
	ResolveQualifiedName(name string) *Symbol
	DeclaredMembers(class *Symbol, name string, kind SymbolKind) *OverloadSet
	Hierarchy(class *Symbol) (*Hierarchy, error)
}
