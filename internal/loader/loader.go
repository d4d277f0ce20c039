// Package loader decodes program network files into network.Program values.
//
// Three on-disk formats are supported and describe the same document:
//
//   - JSON, read as JSONC (comments and trailing commas allowed)
//   - YAML, one program per document; a stream may hold several
//   - HCL, with "activity" and "dependency" blocks
//
// A JSON file may also bundle many programs under a top-level "programs"
// array; Options.Select picks one with a gjson path.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/jason-marshall/defense-pm-tool-sub006/internal/network"
)

// Format is a network file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatHCL  Format = "hcl"
)

// FormatFromPath picks a format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", fmt.Errorf("unsupported network file %s (use .json, .jsonc, .yaml, .yml or .hcl)", path)
}

// Options control how a document is decoded.
type Options struct {
	// Select is a gjson path applied to JSON input before decoding, e.g.
	// "programs.1" or `programs.#(program=="apollo")`.
	Select string
}

// document is the JSON/YAML shape of one program.
type document struct {
	Program      string          `json:"program" yaml:"program"`
	Deadline     *int            `json:"deadline,omitempty" yaml:"deadline,omitempty"`
	Activities   []activityDoc   `json:"activities" yaml:"activities"`
	Dependencies []dependencyDoc `json:"dependencies" yaml:"dependencies"`
}

type activityDoc struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Duration   int            `json:"duration" yaml:"duration"`
	Constraint *constraintDoc `json:"constraint,omitempty" yaml:"constraint,omitempty"`
}

type constraintDoc struct {
	Type string `json:"type" yaml:"type"`
	Date int    `json:"date,omitempty" yaml:"date,omitempty"`
}

type dependencyDoc struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
	Type string `json:"type,omitempty" yaml:"type,omitempty"`
	Lag  int    `json:"lag,omitempty" yaml:"lag,omitempty"`
}

func (d *document) program(fallbackName string) *network.Program {
	p := &network.Program{
		Name:         d.Program,
		Deadline:     d.Deadline,
		Activities:   make([]network.Activity, 0, len(d.Activities)),
		Dependencies: make([]network.Dependency, 0, len(d.Dependencies)),
	}
	if p.Name == "" {
		p.Name = fallbackName
	}

	// Kinds are passed through verbatim; network.Build normalizes them and
	// reports unknown ones as validation errors.
	for _, a := range d.Activities {
		act := network.Activity{ID: a.ID, Name: a.Name, Duration: a.Duration}
		if a.Constraint != nil {
			act.Constraint = network.Constraint{Kind: network.ConstraintKind(a.Constraint.Type), Date: a.Constraint.Date}
		}
		p.Activities = append(p.Activities, act)
	}

	for _, dep := range d.Dependencies {
		p.Dependencies = append(p.Dependencies, network.Dependency{
			Predecessor: dep.From,
			Successor:   dep.To,
			Relation:    network.Relation(dep.Type),
			Lag:         dep.Lag,
		})
	}

	return p
}

// Load reads one program from a network file.
func Load(path string, opts Options) (*network.Program, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network file: %w", err)
	}

	p, err := Parse(data, format, nameFromPath(path), opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// LoadAll reads every program in a network file: each element of a JSON
// "programs" array, each document of a YAML stream, or the single program of
// an HCL file.
func LoadAll(path string) ([]*network.Program, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read network file: %w", err)
	}

	name := nameFromPath(path)
	var programs []*network.Program
	switch format {
	case FormatJSON:
		programs, err = parseJSONAll(data, name)
	case FormatYAML:
		programs, err = parseYAMLAll(data, name)
	case FormatHCL:
		var p *network.Program
		p, err = parseHCL(data, path, name)
		programs = []*network.Program{p}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return programs, nil
}

// Parse decodes a single program. name is used when the document does not
// name its program.
func Parse(data []byte, format Format, name string, opts Options) (*network.Program, error) {
	if opts.Select != "" && format != FormatJSON {
		return nil, fmt.Errorf("program selection requires JSON input, got %s", format)
	}

	switch format {
	case FormatJSON:
		return parseJSON(data, name, opts.Select)
	case FormatYAML:
		programs, err := parseYAMLAll(data, name)
		if err != nil {
			return nil, err
		}
		if len(programs) != 1 {
			return nil, fmt.Errorf("expected one YAML document, found %d", len(programs))
		}
		return programs[0], nil
	case FormatHCL:
		return parseHCL(data, name+".hcl", name)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func parseJSON(data []byte, name, selectPath string) (*network.Program, error) {
	raw := jsonc.ToJSON(data)
	if selectPath != "" {
		r := gjson.GetBytes(raw, selectPath)
		if !r.Exists() {
			return nil, fmt.Errorf("program path %q matched nothing", selectPath)
		}
		if !r.IsObject() {
			return nil, fmt.Errorf("program path %q is not an object", selectPath)
		}
		raw = []byte(r.Raw)
	}
	return decodeJSONDocument(raw, name)
}

func parseJSONAll(data []byte, name string) ([]*network.Program, error) {
	raw := jsonc.ToJSON(data)
	bundle := gjson.GetBytes(raw, "programs")
	if !bundle.Exists() {
		p, err := decodeJSONDocument(raw, name)
		if err != nil {
			return nil, err
		}
		return []*network.Program{p}, nil
	}
	if !bundle.IsArray() {
		return nil, errors.New(`"programs" must be an array`)
	}

	var (
		programs []*network.Program
		firstErr error
	)
	bundle.ForEach(func(_, value gjson.Result) bool {
		i := len(programs)
		p, err := decodeJSONDocument([]byte(value.Raw), fmt.Sprintf("%s[%d]", name, i))
		if err != nil {
			firstErr = fmt.Errorf("programs[%d]: %w", i, err)
			return false
		}
		programs = append(programs, p)
		return true
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return programs, nil
}

func decodeJSONDocument(raw []byte, name string) (*network.Program, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse JSON: %w", err)
	}
	return doc.program(name), nil
}

func parseYAMLAll(data []byte, name string) ([]*network.Program, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var programs []*network.Program
	for i := 0; ; i++ {
		var doc document
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse YAML document %d: %w", i, err)
		}
		docName := name
		if i > 0 {
			docName = fmt.Sprintf("%s[%d]", name, i)
		}
		programs = append(programs, doc.program(docName))
	}
	if len(programs) == 0 {
		return nil, errors.New("no YAML documents found")
	}
	return programs, nil
}

// nameFromPath strips the directory and extension, so
// "plans/apollo.yaml" names program "apollo".
func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
