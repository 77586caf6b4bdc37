package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// Manifest summarizes the variable matrix of a source without expanding it.
type Manifest struct {
	Globals         []VariableInfo `json:"globals"          yaml:"globals"`
	Contexts        []ContextInfo  `json:"contexts"         yaml:"contexts"`
	GlobalSnapshots uint64         `json:"global_snapshots" yaml:"global_snapshots"`
	Blocks          uint64         `json:"blocks"           yaml:"blocks"`
}

// VariableInfo describes one declared variable.
type VariableInfo struct {
	Name   string   `json:"name"             yaml:"name"`
	Values []string `json:"values"           yaml:"values,flow"`
	Shadow bool     `json:"shadow,omitempty" yaml:"shadow,omitempty"`
}

// ContextInfo describes one completed context.
type ContextInfo struct {
	Name      string         `json:"name"       yaml:"name"`
	Line      int            `json:"line"       yaml:"line"`
	Locals    []VariableInfo `json:"locals"     yaml:"locals"`
	CodeLines int            `json:"code_lines" yaml:"code_lines"`
	Snapshots uint64         `json:"snapshots"  yaml:"snapshots"`
}

// Plan parses source and describes its registry.
func Plan(ctx context.Context, source string, opts ...Option) (*Manifest, error) {
	directives, err := ParseString(ctx, source, opts...)
	if err != nil {
		return nil, err
	}

	reg, err := Build(directives)
	if err != nil {
		return nil, err
	}

	return reg.Manifest(), nil
}

// PlanReader is like [Plan] but reads the source from r.
func PlanReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (*Manifest, error) {
	directives, err := ParseReader(ctx, r, opts...)
	if err != nil {
		return nil, err
	}

	reg, err := Build(directives)
	if err != nil {
		return nil, err
	}

	return reg.Manifest(), nil
}

// Manifest describes r. Locals that shadow a global are flagged.
func (r *Registry) Manifest() *Manifest {
	m := &Manifest{
		Globals:         make([]VariableInfo, 0, len(r.Variables)),
		Contexts:        make([]ContextInfo, 0, len(r.Contexts)),
		GlobalSnapshots: r.Count(),
		Blocks:          r.Blocks(),
	}

	for _, v := range r.Variables {
		m.Globals = append(m.Globals, VariableInfo{
			Name:   v.Name,
			Values: append([]string{}, v.Values...),
		})
	}

	for _, c := range r.Contexts {
		info := ContextInfo{
			Name:      c.Name,
			Line:      c.Line,
			Locals:    make([]VariableInfo, 0, len(c.Variables)),
			CodeLines: len(c.CodeLines),
			Snapshots: c.Count(),
		}

		for _, v := range c.Variables {
			_, global := findVariable(r.Variables, v.Name)

			info.Locals = append(info.Locals, VariableInfo{
				Name:   v.Name,
				Values: append([]string{}, v.Values...),
				Shadow: global,
			})
		}

		m.Contexts = append(m.Contexts, info)
	}

	return m
}

// FormatJSON writes the manifest as JSON to the writer.
func (m *Manifest) FormatJSON(_ context.Context, w io.Writer, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(m, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(m)
	}

	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

// FormatYAML writes the manifest as YAML to the writer.
func (m *Manifest) FormatYAML(_ context.Context, w io.Writer, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	data, err := yaml.MarshalWithOptions(m, opts...)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}
