package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"slices"

	"github.com/funvibe/classcore/internal/diagnostics"
	"gopkg.in/yaml.v3"
)

// RawTypePolicy selects the severity of raw generic type usage.
type RawTypePolicy int

const (
	// RawWarn reports every raw usage as a warning.
	RawWarn RawTypePolicy = iota
	// RawError reports every raw usage as an error.
	RawError
	// RawPerClass errors for classes flagged NoRaw and warns otherwise.
	RawPerClass
)

func (p RawTypePolicy) String() string {
	switch p {
	case RawWarn:
		return "warn"
	case RawError:
		return "error"
	case RawPerClass:
		return "per-class"
	default:
		return fmt.Sprintf("RawTypePolicy(%d)", int(p))
	}
}

func (p *RawTypePolicy) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch s {
	case "", "warn":
		*p = RawWarn
	case "error":
		*p = RawError
	case "per-class":
		*p = RawPerClass
	default:
		return fmt.Errorf("line %d: unknown raw type policy %q (want warn, error or per-class)", node.Line, s)
	}
	return nil
}

func (p RawTypePolicy) MarshalYAML() (any, error) {
	return p.String(), nil
}

// Severity returns the diagnostic severity of a raw usage of a class.
func (p RawTypePolicy) Severity(noRaw bool) diagnostics.Severity {
	switch p {
	case RawError:
		return diagnostics.Error
	case RawPerClass:
		if noRaw {
			return diagnostics.Error
		}
	}
	return diagnostics.Warning
}

// ClassFlags assigns type flags to classes by qualified name. Flags declared
// on a class itself are merged with these.
type ClassFlags struct {
	// NoRaw classes may not be used without type arguments under RawPerClass.
	NoRaw []string `yaml:"no_raw,omitempty"`
	// AnyArity classes accept any number of type arguments.
	AnyArity []string `yaml:"any_arity,omitempty"`
	// NoArray classes may not be used as array element types when parameterized.
	NoArray []string `yaml:"no_array,omitempty"`
	// PrimitiveGeneric classes accept primitive type arguments.
	PrimitiveGeneric []string `yaml:"primitive_generic,omitempty"`
}

// Options is the top-level classcore.yaml configuration.
type Options struct {
	// Workers is the number of units analyzed concurrently. Zero means GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`
	// RawTypes selects raw type severity.
	RawTypes RawTypePolicy `yaml:"raw_types,omitempty"`
	// MaxNestDepth bounds class and lambda nesting.
	MaxNestDepth int `yaml:"max_nest_depth,omitempty"`
	// Color is auto, always or never.
	Color string `yaml:"color,omitempty"`
	// Libraries lists library declaration files and SQLite indexes, relative
	// to the options file.
	Libraries []string   `yaml:"libraries,omitempty"`
	Classes   ClassFlags `yaml:"classes,omitempty"`
	Debug     bool       `yaml:"debug,omitempty"`

	dir string
}

// DefaultOptions returns the options used when no classcore.yaml is found.
func DefaultOptions() *Options {
	o := &Options{}
	o.setDefaults()
	return o
}

// LoadOptions reads and parses a classcore.yaml file.
func LoadOptions(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading options %s: %w", path, err)
	}
	return ParseOptions(data, path)
}

// ParseOptions parses classcore.yaml content from bytes.
// The path argument is used for error messages and to resolve library paths.
func ParseOptions(data []byte, path string) (*Options, error) {
	var o Options
	if err := yaml.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := o.validate(path); err != nil {
		return nil, err
	}
	o.dir = filepath.Dir(path)
	o.setDefaults()
	return &o, nil
}

// FindOptions searches for classcore.yaml starting from dir and walking up
// to parent directories. It returns an empty path and nil error if none is found.
func FindOptions(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range []string{"classcore.yaml", "classcore.yml"} {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (o *Options) validate(path string) error {
	if o.Workers < 0 {
		return fmt.Errorf("%s: workers must not be negative, got %d", path, o.Workers)
	}
	if o.MaxNestDepth < 0 {
		return fmt.Errorf("%s: max_nest_depth must not be negative, got %d", path, o.MaxNestDepth)
	}
	switch o.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, o.Color)
	}
	seen := make(map[string]bool)
	for i, lib := range o.Libraries {
		if lib == "" {
			return fmt.Errorf("%s: libraries[%d]: empty path", path, i)
		}
		if seen[lib] {
			return fmt.Errorf("%s: libraries[%d]: %s listed twice", path, i, lib)
		}
		seen[lib] = true
	}
	return nil
}

func (o *Options) setDefaults() {
	if o.Workers == 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.MaxNestDepth == 0 {
		o.MaxNestDepth = DefaultMaxNestDepth
	}
	if o.Color == "" {
		o.Color = "auto"
	}
}

// LibraryPaths returns the library paths resolved against the options file
// directory.
func (o *Options) LibraryPaths() []string {
	out := make([]string, 0, len(o.Libraries))
	for _, lib := range o.Libraries {
		if o.dir != "" && !filepath.IsAbs(lib) {
			lib = filepath.Join(o.dir, lib)
		}
		out = append(out, lib)
	}
	return out
}

// ColorMode maps the Color setting onto the diagnostics sink mode.
func (o *Options) ColorMode() diagnostics.ColorMode {
	switch o.Color {
	case "always":
		return diagnostics.ColorAlways
	case "never":
		return diagnostics.ColorNever
	default:
		return diagnostics.ColorAuto
	}
}

// Flagged reports whether class appears in list.
func Flagged(list []string, class string) bool {
	return slices.Contains(list, class)
}
