package backend

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/classcore/internal/analyzer"
	"github.com/funvibe/classcore/internal/modules"
	"github.com/funvibe/classcore/internal/symbols"
)

// Artifact is the lowered form of one class.
type Artifact struct {
	Class   string           `yaml:"class"`
	Super   string           `yaml:"super,omitempty"`
	Fields  []string         `yaml:"fields,omitempty"`
	Methods []MethodArtifact `yaml:"methods,omitempty"`
}

type MethodArtifact struct {
	Name      string         `yaml:"name"`
	Signature string         `yaml:"signature"`
	Calls     []string       `yaml:"calls,omitempty"`
	Casts     []string       `yaml:"casts,omitempty"`
	New       []string       `yaml:"new,omitempty"`
	Constants map[string]any `yaml:"constants,omitempty"`
	Captures  []string       `yaml:"captures,omitempty"`
}

// Recorder is an emitter that keeps artifacts in memory. It is safe for
// concurrent use.
type Recorder struct {
	mu        sync.Mutex
	artifacts map[string]*Artifact
}

func NewRecorder() *Recorder {
	return &Recorder{artifacts: make(map[string]*Artifact)}
}

func (r *Recorder) Name() string { return "recorder" }

func (r *Recorder) Emit(cls *modules.Class, members []*Lowered) error {
	a := &Artifact{Class: cls.Symbol.Name}
	a.Super, _ = cls.Symbol.Supers()
	for _, f := range cls.Fields {
		a.Fields = append(a.Fields, f.Symbol.Name+" "+f.Symbol.Signature().Type.String())
	}
	for _, l := range members {
		a.Methods = append(a.Methods, lower(l))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.artifacts[a.Class]; dup {
		return fmt.Errorf("class %s emitted twice", a.Class)
	}
	r.artifacts[a.Class] = a
	return nil
}

func lower(l *Lowered) MethodArtifact {
	m := MethodArtifact{Name: l.Symbol.Name, Signature: descriptor(l.Symbol), Captures: l.Captures}
	for _, c := range l.Calls {
		m.Calls = append(m.Calls, callString(c))
	}
	for _, c := range l.Casts {
		m.Casts = append(m.Casts, c.String())
	}
	for _, t := range l.Instances {
		m.New = append(m.New, t.String())
	}
	if len(l.Constants) > 0 {
		m.Constants = l.Constants
	}
	return m
}

// descriptor renders a method signature as (params)return.
func descriptor(m *symbols.Symbol) string {
	sig := m.Signature()
	params := make([]string, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = p.String()
	}
	ret := "void"
	if sig.Return != nil {
		ret = sig.Return.String()
	}
	return "(" + strings.Join(params, ",") + ")" + ret
}

func callString(c *analyzer.CallResult) string {
	s := c.Method.Display() + descriptor(c.Method)
	if c.Varargs {
		s += " varargs"
	}
	return s
}

// Artifact returns the artifact of a class, or nil.
func (r *Recorder) Artifact(class string) *Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.artifacts[class]
}

// Artifacts returns every artifact sorted by class name.
func (r *Recorder) Artifacts() []*Artifact {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Artifact, 0, len(r.artifacts))
	for _, a := range r.artifacts {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b *Artifact) int { return strings.Compare(a.Class, b.Class) })
	return out
}

// WriteYAML writes the artifacts as one YAML document.
func (r *Recorder) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r.Artifacts()); err != nil {
		return fmt.Errorf("encode artifacts: %w", err)
	}
	return enc.Close()
}
