package param

// Builder provides a fluent API for creating parameters
type Builder struct {
	param    *Parameter
	defPlain float64
	hasDef   bool
}

// New creates a parameter builder. The key doubles as the display name
// until Name is called.
func New(id uint32, key string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:        id,
			Key:       key,
			Name:      key,
			ShortName: key,
			Min:       0,
			Max:       1,
			Flags:     CanAutomate,
		},
	}
}

func (b *Builder) Name(name string) *Builder {
	b.param.Name = name
	return b
}

func (b *Builder) ShortName(name string) *Builder {
	b.param.ShortName = name
	return b
}

func (b *Builder) Range(min, max float64) *Builder {
	b.param.Min = min
	b.param.Max = max
	return b
}

// Default sets the default value in the plain range. It may be called
// before or after Range.
func (b *Builder) Default(value float64) *Builder {
	b.defPlain = value
	b.hasDef = true
	return b
}

func (b *Builder) Unit(unit string) *Builder {
	b.param.Unit = unit
	return b
}

func (b *Builder) Steps(count int32) *Builder {
	b.param.StepCount = count
	return b
}

func (b *Builder) Flags(flags uint32) *Builder {
	b.param.Flags = flags
	return b
}

// Toggle makes a two-state on/off parameter
func (b *Builder) Toggle() *Builder {
	b.param.Min = 0
	b.param.Max = 1
	b.param.StepCount = 1
	return b.Formatter(OnOffFormatter, OnOffParser)
}

func (b *Builder) Hidden() *Builder {
	b.param.Flags |= IsHidden
	return b
}

func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// Build returns the configured parameter set to its default
func (b *Builder) Build() *Parameter {
	if b.hasDef {
		b.param.DefaultValue = b.param.Normalize(b.defPlain)
	}
	b.param.SetValue(b.param.DefaultValue)
	b.param.DefaultValue = b.param.GetValue()
	return b.param
}
