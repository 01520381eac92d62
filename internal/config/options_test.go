package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/funvibe/classcore/internal/diagnostics"
)

func TestParseOptions_Full(t *testing.T) {
	src := `
workers: 3
raw_types: per-class
max_nest_depth: 4
color: never
libraries: [rt.yaml, libs/extra.db]
classes:
  no_raw: [java/util/List]
  any_arity: [roj/Tuple]
`
	o, err := ParseOptions([]byte(src), "/proj/classcore.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Workers != 3 {
		t.Errorf("workers = %d, want 3", o.Workers)
	}
	if o.RawTypes != RawPerClass {
		t.Errorf("raw_types = %v, want per-class", o.RawTypes)
	}
	if o.MaxNestDepth != 4 {
		t.Errorf("max_nest_depth = %d, want 4", o.MaxNestDepth)
	}
	if o.ColorMode() != diagnostics.ColorNever {
		t.Errorf("color mode = %v, want never", o.ColorMode())
	}
	want := []string{filepath.Join("/proj", "rt.yaml"), filepath.Join("/proj", "libs/extra.db")}
	got := o.LibraryPaths()
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("library paths = %v, want %v", got, want)
	}
	if !Flagged(o.Classes.NoRaw, "java/util/List") || Flagged(o.Classes.NoRaw, "java/util/Map") {
		t.Errorf("no_raw flags = %v", o.Classes.NoRaw)
	}
}

func TestParseOptions_Defaults(t *testing.T) {
	o, err := ParseOptions([]byte("{}"), "classcore.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Workers != runtime.GOMAXPROCS(0) {
		t.Errorf("workers = %d, want GOMAXPROCS", o.Workers)
	}
	if o.MaxNestDepth != DefaultMaxNestDepth {
		t.Errorf("max_nest_depth = %d, want %d", o.MaxNestDepth, DefaultMaxNestDepth)
	}
	if o.RawTypes != RawWarn || o.Color != "auto" {
		t.Errorf("raw_types = %v, color = %q", o.RawTypes, o.Color)
	}
}

func TestParseOptions_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad policy":  "raw_types: sometimes",
		"bad color":   "color: purple",
		"negative":    "workers: -1",
		"dup library": "libraries: [a.yaml, a.yaml]",
		"not yaml":    "workers: [",
	}
	for name, src := range cases {
		if _, err := ParseOptions([]byte(src), "x.yaml"); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestRawTypePolicySeverity(t *testing.T) {
	if RawWarn.Severity(true) != diagnostics.Warning {
		t.Error("warn policy must always warn")
	}
	if RawError.Severity(false) != diagnostics.Error {
		t.Error("error policy must always error")
	}
	if RawPerClass.Severity(false) != diagnostics.Warning || RawPerClass.Severity(true) != diagnostics.Error {
		t.Error("per-class policy must follow the class flag")
	}
}

func TestFindOptions(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "classcore.yml"), []byte("workers: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := FindOptions(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != filepath.Join(root, "classcore.yml") {
		t.Errorf("found %q", path)
	}

	o, err := LoadOptions(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if o.Workers != 1 {
		t.Errorf("workers = %d, want 1", o.Workers)
	}
}

func TestTrimUnitExt(t *testing.T) {
	if got := TrimUnitExt("Point.unit.yaml"); got != "Point" {
		t.Errorf("TrimUnitExt = %q", got)
	}
	if !HasUnitExt("a/b.unit.yml") || HasUnitExt("a/b.yaml") {
		t.Error("HasUnitExt mismatch")
	}
}
