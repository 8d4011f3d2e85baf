// Package state saves and loads patches: the plain value of every
// registered parameter, keyed by parameter key, as YAML.
package state

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/justyntemme/polysynth/pkg/framework/debug"
	"github.com/justyntemme/polysynth/pkg/framework/param"
)

// Version is the patch format written by Save.
const Version = 1

var (
	ErrUnknownParameter   = errors.New("state: unknown parameter")
	ErrInvalidValue       = errors.New("state: invalid parameter value")
	ErrUnsupportedVersion = errors.New("state: unsupported patch version")
)

// Patch is the file layout. Values are numbers, except list parameters
// which are stored by option name and switches which are stored as
// booleans. Loading accepts any of the three forms for any parameter.
type Patch struct {
	Version    int            `yaml:"version"`
	Name       string         `yaml:"name,omitempty"`
	Parameters map[string]any `yaml:"parameters"`
}

// Result describes a completed load. Warnings wrap ErrUnknownParameter or
// ErrInvalidValue for entries that were skipped.
type Result struct {
	Name     string
	Applied  int
	Warnings []error
}

// Manager moves patches in and out of a parameter registry.
type Manager struct {
	registry *param.Registry
	logger   *debug.Logger
	strict   bool
}

func NewManager(registry *param.Registry, logger *debug.Logger) *Manager {
	if logger == nil {
		logger = debug.Default()
	}
	return &Manager{registry: registry, logger: logger.Named("state")}
}

// SetStrict makes unknown or invalid entries fail the load instead of
// being skipped.
func (m *Manager) SetStrict(strict bool) {
	m.strict = strict
}

// Snapshot captures the current parameter values.
func (m *Manager) Snapshot(name string) Patch {
	p := Patch{
		Version:    Version,
		Name:       name,
		Parameters: make(map[string]any, m.registry.Count()),
	}
	for _, prm := range m.registry.All() {
		p.Parameters[prm.Key] = encode(prm)
	}
	return p
}

func encode(p *param.Parameter) any {
	switch {
	case p.Flags&param.IsList != 0:
		return p.FormatValue(p.GetValue())
	case p.StepCount == 1 && p.Min == 0 && p.Max == 1:
		return p.GetValue() >= 0.5
	case p.StepCount > 0:
		return p.Index()
	}
	return p.GetPlainValue()
}

// Apply writes a patch into the registry. Entries are applied in key
// order so warnings come out stable.
func (m *Manager) Apply(p Patch) (Result, error) {
	res := Result{Name: p.Name}
	if p.Version > Version || p.Version < 0 {
		return res, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p.Version)
	}

	keys := make([]string, 0, len(p.Parameters))
	for k := range p.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		prm := m.registry.GetByKey(key)
		if prm == nil {
			if err := m.skip(&res, fmt.Errorf("%w: %s", ErrUnknownParameter, key)); err != nil {
				return res, err
			}
			continue
		}
		if err := decode(prm, p.Parameters[key]); err != nil {
			if err := m.skip(&res, err); err != nil {
				return res, err
			}
			continue
		}
		res.Applied++
	}
	return res, nil
}

func (m *Manager) skip(res *Result, err error) error {
	if m.strict {
		return err
	}
	m.logger.Warn("%v", err)
	res.Warnings = append(res.Warnings, err)
	return nil
}

func decode(p *param.Parameter, value any) error {
	switch v := value.(type) {
	case int:
		p.SetPlainValue(float64(v))
	case float64:
		if math.IsNaN(v) {
			return fmt.Errorf("%w: %s is NaN", ErrInvalidValue, p.Key)
		}
		p.SetPlainValue(v)
	case bool:
		if v {
			p.SetValue(1)
		} else {
			p.SetValue(0)
		}
	case string:
		normalized, err := p.ParseValue(v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidValue, err)
		}
		p.SetValue(normalized)
	default:
		return fmt.Errorf("%w: %s has type %T", ErrInvalidValue, p.Key, value)
	}
	return nil
}

// Save writes the current values as a YAML patch.
func (m *Manager) Save(w io.Writer, name string) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m.Snapshot(name)); err != nil {
		return fmt.Errorf("state: encode patch: %w", err)
	}
	return enc.Close()
}

// Load reads a YAML patch and applies it.
func (m *Manager) Load(r io.Reader) (Result, error) {
	var p Patch
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return Result{}, fmt.Errorf("state: decode patch: %w", err)
	}
	res, err := m.Apply(p)
	if err != nil {
		return res, err
	}
	m.logger.Info("loaded patch %q: %d parameters, %d skipped", res.Name, res.Applied, len(res.Warnings))
	return res, nil
}

func (m *Manager) SaveFile(path, name string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	if err := m.Save(f, name); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (m *Manager) LoadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("state: %w", err)
	}
	defer f.Close()
	return m.Load(f)
}
