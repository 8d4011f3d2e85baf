package state

import (
	"bytes"
	"errors"
	"io"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/justyntemme/polysynth/pkg/framework/debug"
	"github.com/justyntemme/polysynth/pkg/framework/param"
)

func newTestManager(t *testing.T) (*Manager, *param.Registry) {
	t.Helper()
	reg := param.NewRegistry()
	err := reg.Add(
		param.FrequencyParameter(1, "vcf_freq", 20, 20000, 5000).Build(),
		param.Choice(2, "vcf_type", param.ChoiceNames("Ladder", "SVF", "Driven Ladder")).Build(),
		param.SwitchParameter(3, "legato", false).Build(),
		param.New(4, "arp_oct").Range(1, 4).Steps(3).Default(1).Build(),
		param.TimeParameter(5, "vca_attack", 0, 10, 0.01).Build(),
	)
	if err != nil {
		t.Fatal(err)
	}
	return NewManager(reg, debug.New(io.Discard, "", 0)), reg
}

func TestSaveLoadRoundTrip(t *testing.T) {
	m, reg := newTestManager(t)
	reg.Get(1).SetPlainValue(1234)
	reg.Get(2).SetPlainValue(2)
	reg.Get(3).SetValue(1)
	reg.Get(4).SetPlainValue(3)
	reg.Get(5).SetPlainValue(0.5)

	var buf bytes.Buffer
	if err := m.Save(&buf, "Bright Pad"); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	text := buf.String()
	for _, want := range []string{"version: 1", "name: Bright Pad", "vcf_type: Driven Ladder", "legato: true", "arp_oct: 3"} {
		if !strings.Contains(text, want) {
			t.Errorf("patch missing %q:\n%s", want, text)
		}
	}

	reg.ResetToDefaults()
	res, err := m.Load(&buf)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Name != "Bright Pad" || res.Applied != 5 || len(res.Warnings) != 0 {
		t.Errorf("result = %+v", res)
	}
	if got := reg.Get(1).GetPlainValue(); math.Abs(got-1234) > 1e-6 {
		t.Errorf("vcf_freq = %v", got)
	}
	if got := reg.Get(2).Index(); got != 2 {
		t.Errorf("vcf_type = %d", got)
	}
	if reg.Get(3).GetValue() != 1 {
		t.Error("legato not restored")
	}
	if got := reg.Get(4).Index(); got != 3 {
		t.Errorf("arp_oct = %d", got)
	}
	if got := reg.Get(5).GetPlainValue(); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("vca_attack = %v", got)
	}
}

func TestLoadSkipsUnknownParameters(t *testing.T) {
	m, reg := newTestManager(t)
	patch := `version: 1
parameters:
  vcf_freq: 99999
  vcf_type: svf
  wobble: 3
`
	res, err := m.Load(strings.NewReader(patch))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrUnknownParameter) {
		t.Errorf("warnings = %v", res.Warnings)
	}
	if got := reg.Get(1).GetPlainValue(); got != 20000 {
		t.Errorf("out of range cutoff loaded as %v, want clamped to 20000", got)
	}
	if got := reg.Get(2).Index(); got != 1 {
		t.Errorf("vcf_type = %d, want 1", got)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name   string
		patch  string
		strict bool
		want   error
	}{
		{"NewerVersion", "version: 2\nparameters: {}\n", false, ErrUnsupportedVersion},
		{"StrictUnknown", "version: 1\nparameters:\n  wobble: 1\n", true, ErrUnknownParameter},
		{"StrictBadOption", "version: 1\nparameters:\n  vcf_type: comb\n", true, ErrInvalidValue},
		{"StrictBadType", "version: 1\nparameters:\n  vcf_freq: [1, 2]\n", true, ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestManager(t)
			m.SetStrict(tt.strict)
			if _, err := m.Load(strings.NewReader(tt.patch)); !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}

	m, _ := newTestManager(t)
	if _, err := m.Load(strings.NewReader("parameters: [")); err == nil {
		t.Error("malformed YAML loaded")
	}
}

func TestFileRoundTrip(t *testing.T) {
	m, reg := newTestManager(t)
	path := filepath.Join(t.TempDir(), "patch.yaml")
	reg.Get(5).SetPlainValue(2)
	if err := m.SaveFile(path, "file"); err != nil {
		t.Fatal(err)
	}
	reg.ResetToDefaults()
	res, err := m.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if res.Name != "file" || math.Abs(reg.Get(5).GetPlainValue()-2) > 1e-9 {
		t.Errorf("name %q attack %v", res.Name, reg.Get(5).GetPlainValue())
	}
	if _, err := m.LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}
