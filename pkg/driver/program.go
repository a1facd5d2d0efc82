package driver

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"sumcore/interpreter-go/pkg/ast"
)

// Program is a loadable set of modules plus the entry function to run.
type Program struct {
	Manifest *Manifest
	Modules  []*ast.Module
	Files    []string
	Entry    string
}

type programFile struct {
	Module   string       `yaml:"module"`
	Requires string       `yaml:"requires"`
	Entry    string       `yaml:"entry"`
	Types    []yaml.Node  `yaml:"types"`
	Values   []valueEntry `yaml:"values"`
}

type valueEntry struct {
	Name  string    `yaml:"name"`
	Type  yaml.Node `yaml:"type"`
	Value yaml.Node `yaml:"value"`
}

// Load resolves path to a program. A directory or a sumcore.yml file is read
// as a project manifest; anything else is a single program file.
func Load(path string) (*Program, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, ManifestFile)
	}
	if filepath.Base(path) == ManifestFile {
		manifest, err := LoadManifest(path)
		if err != nil {
			return nil, err
		}
		return LoadProject(manifest)
	}
	module, err := LoadProgramFile(path)
	if err != nil {
		return nil, err
	}
	return &Program{Modules: []*ast.Module{module}, Files: []string{path}, Entry: module.Entry}, nil
}

// LoadProject reads every program file the manifest names, in load order.
func LoadProject(manifest *Manifest) (*Program, error) {
	prog := &Program{Manifest: manifest, Entry: manifest.Entry}
	for _, file := range manifest.Files() {
		module, err := LoadProgramFile(file)
		if err != nil {
			return nil, err
		}
		prog.Modules = append(prog.Modules, module)
		prog.Files = append(prog.Files, file)
		if prog.Entry == "" && module.Entry != "" {
			prog.Entry = module.Entry
		}
	}
	tracer().Infof("project %s: %d program file(s)", manifest.Name, len(prog.Files))
	return prog, nil
}

// LoadProgramFile reads and decodes a single program file.
func LoadProgramFile(path string) (*ast.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("program: read %s: %w", path, err)
	}
	module, err := DecodeProgram(path, data)
	if err != nil {
		return nil, err
	}
	if module.Name == "" {
		module.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return module, nil
}

// DecodeProgram decodes a program file's contents. file only labels errors.
func DecodeProgram(file string, data []byte) (*ast.Module, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw programFile
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("program: %s is empty", file)
		}
		return nil, fmt.Errorf("program: parse %s: %w", file, err)
	}
	if err := CheckRequires(strings.TrimSpace(raw.Requires)); err != nil {
		return nil, fmt.Errorf("program: %s: %w", file, err)
	}

	d := &decoder{file: file}
	types := make([]*ast.TypeDeclaration, 0, len(raw.Types))
	for idx := range raw.Types {
		decl, err := d.typeDeclaration(&raw.Types[idx])
		if err != nil {
			return nil, err
		}
		types = append(types, decl)
	}
	values := make([]*ast.ValueDeclaration, 0, len(raw.Values))
	for idx := range raw.Values {
		entry := &raw.Values[idx]
		if entry.Name == "" {
			return nil, d.errorf(&entry.Value, "value %d has no name", idx)
		}
		expr, err := d.expression(&entry.Value)
		if err != nil {
			return nil, err
		}
		var typ ast.TypeExpression
		if entry.Type.Kind != 0 {
			if typ, err = d.typeExpression(&entry.Type); err != nil {
				return nil, err
			}
		}
		values = append(values, ast.NewValueDeclaration(ast.NewIdentifier(entry.Name), expr, typ))
	}
	module := ast.NewModule(strings.TrimSpace(raw.Module), types, values)
	module.Entry = strings.TrimSpace(raw.Entry)
	tracer().Debugf("decoded %s: %d type(s), %d value(s)", file, len(types), len(values))
	return module, nil
}

// ParseExpression decodes a single expression, typically one REPL line
// written in YAML flow style.
func ParseExpression(src string) (ast.Expression, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(src), &doc); err != nil {
		return nil, fmt.Errorf("parse expression: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("parse expression: input is empty")
	}
	d := &decoder{}
	return d.expression(doc.Content[0])
}
