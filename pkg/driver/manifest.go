package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/npillmayer/schuko/tracing"
	"gopkg.in/yaml.v3"
)

// ManifestFile is the project manifest looked up in program directories.
const ManifestFile = "sumcore.yml"

// Manifest represents the parsed contents of sumcore.yml.
type Manifest struct {
	Path     string
	Name     string
	Version  string
	Requires string
	Entry    string
	Main     string
	Sources  []string
	Trace    string
}

// ValidationError aggregates manifest validation failures.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// LoadManifest parses sumcore.yml from disk, returning a validated manifest.
func LoadManifest(path string) (*Manifest, error) {
	if path == "" {
		return nil, fmt.Errorf("manifest: empty path")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	manifest, err := DecodeManifest(file)
	if err != nil {
		return nil, fmt.Errorf("manifest: %s: %w", absPath, err)
	}
	manifest.Path = absPath
	return manifest, nil
}

// DecodeManifest reads and validates a manifest. Unknown keys are rejected.
func DecodeManifest(r io.Reader) (*Manifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest is empty")
		}
		return nil, fmt.Errorf("parse: %w", err)
	}
	manifest := raw.toManifest()
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	if m.Version != "" {
		if _, err := semver.NewVersion(m.Version); err != nil {
			errs.Issues = append(errs.Issues, fmt.Sprintf("invalid version %q", m.Version))
		}
	}
	if m.Requires != "" {
		if err := CheckRequires(m.Requires); err != nil {
			errs.Issues = append(errs.Issues, err.Error())
		}
	}
	if m.Main == "" {
		errs.Issues = append(errs.Issues, "main must name a program file")
	}
	for i, src := range m.Sources {
		if src == m.Main {
			errs.Issues = append(errs.Issues, fmt.Sprintf("sources[%d] repeats main %q", i, src))
		}
	}
	if m.Trace != "" {
		if _, ok := ParseTraceLevel(m.Trace); !ok {
			errs.Issues = append(errs.Issues, fmt.Sprintf("unsupported trace level %q", m.Trace))
		}
	}
	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// Files lists the program files to load, sources first and main last,
// resolved against the manifest's directory.
func (m *Manifest) Files() []string {
	dir := filepath.Dir(m.Path)
	out := make([]string, 0, len(m.Sources)+1)
	for _, src := range append(append([]string{}, m.Sources...), m.Main) {
		if filepath.IsAbs(src) {
			out = append(out, src)
			continue
		}
		out = append(out, filepath.Join(dir, src))
	}
	return out
}

// ParseTraceLevel maps a manifest or command line trace level name.
func ParseTraceLevel(name string) (tracing.TraceLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "error":
		return tracing.LevelError, true
	case "info":
		return tracing.LevelInfo, true
	case "debug":
		return tracing.LevelDebug, true
	default:
		return tracing.LevelError, false
	}
}

type manifestFile struct {
	Name     string     `yaml:"name"`
	Version  string     `yaml:"version"`
	Requires string     `yaml:"requires"`
	Entry    string     `yaml:"entry"`
	Main     string     `yaml:"main"`
	Sources  stringList `yaml:"sources"`
	Trace    string     `yaml:"trace"`
}

func (mf manifestFile) toManifest() *Manifest {
	return &Manifest{
		Name:     strings.TrimSpace(mf.Name),
		Version:  strings.TrimSpace(mf.Version),
		Requires: strings.TrimSpace(mf.Requires),
		Entry:    strings.TrimSpace(mf.Entry),
		Main:     strings.TrimSpace(mf.Main),
		Sources:  mf.Sources.Clone(),
		Trace:    strings.TrimSpace(mf.Trace),
	}
}

type stringList []string

func (l stringList) Clone() []string {
	if len(l) == 0 {
		return nil
	}
	out := make([]string, 0, len(l))
	for _, item := range l {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, str)
		}
		*l = stringList(items)
		return nil
	case yaml.AliasNode:
		return l.UnmarshalYAML(value.Alias)
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("expected string or sequence for list but found %s", value.ShortTag())
	}
}
