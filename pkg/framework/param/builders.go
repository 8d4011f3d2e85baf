package param

import (
	"fmt"
	"strings"
)

// ChoiceOption is one entry of a list parameter. Options are indexed by
// position; the plain value of a choice parameter is the option index.
type ChoiceOption struct {
	Name    string
	Aliases []string
}

// Choice creates a list parameter over the given options
func Choice(id uint32, key string, options []ChoiceOption) *Builder {
	formatter := func(value float64) string {
		index := int(value + 0.5)
		if index >= 0 && index < len(options) {
			return options[index].Name
		}
		return "Unknown"
	}

	parser := func(str string) (float64, error) {
		str = strings.TrimSpace(str)
		for i, opt := range options {
			if strings.EqualFold(str, opt.Name) {
				return float64(i), nil
			}
			for _, alias := range opt.Aliases {
				if strings.EqualFold(str, alias) {
					return float64(i), nil
				}
			}
		}
		return 0, fmt.Errorf("unknown option: %s", str)
	}

	steps := int32(len(options) - 1)
	if steps < 1 {
		steps = 1
	}

	b := New(id, key).
		Range(0, float64(steps)).
		Steps(steps).
		Default(0).
		Formatter(formatter, parser)
	b.param.Flags |= IsList
	return b
}

// ChoiceNames builds options from bare names
func ChoiceNames(names ...string) []ChoiceOption {
	options := make([]ChoiceOption, len(names))
	for i, n := range names {
		options[i] = ChoiceOption{Name: n}
	}
	return options
}

// FrequencyParameter creates a frequency parameter in Hz
func FrequencyParameter(id uint32, key string, min, max, defaultVal float64) *Builder {
	return New(id, key).
		Range(min, max).
		Default(defaultVal).
		Unit("Hz").
		Formatter(FrequencyFormatter, FrequencyParser)
}

// TimeParameter creates a time parameter in seconds
func TimeParameter(id uint32, key string, minSec, maxSec, defaultSec float64) *Builder {
	return New(id, key).
		Range(minSec, maxSec).
		Default(defaultSec).
		Unit("s").
		Formatter(SecondsFormatter, SecondsParser)
}

// AmountParameter creates a unipolar 0-1 amount shown as percent
func AmountParameter(id uint32, key string, defaultVal float64) *Builder {
	return New(id, key).
		Range(0, 1).
		Default(defaultVal).
		Unit("%").
		Formatter(PercentFormatter, PercentParser)
}

// BipolarParameter creates a -1..1 amount shown as signed percent
func BipolarParameter(id uint32, key string, defaultVal float64) *Builder {
	return New(id, key).
		Range(-1, 1).
		Default(defaultVal).
		Unit("%").
		Formatter(PercentFormatter, PercentParser)
}

// RateParameter creates an LFO or clock rate in Hz
func RateParameter(id uint32, key string, minHz, maxHz, defaultHz float64) *Builder {
	return New(id, key).
		Range(minHz, maxHz).
		Default(defaultHz).
		Unit("Hz").
		Formatter(func(v float64) string {
			if v < 1.0 {
				return fmt.Sprintf("%.3f Hz", v)
			}
			return fmt.Sprintf("%.2f Hz", v)
		}, FrequencyParser)
}

// SwitchParameter creates an on/off parameter
func SwitchParameter(id uint32, key string, on bool) *Builder {
	def := 0.0
	if on {
		def = 1
	}
	return New(id, key).Toggle().Default(def)
}
