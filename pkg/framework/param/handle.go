package param

// Handles are resolved once against a registry and then read lock-free from
// the audio goroutine. A handle whose id was not registered reports its
// fallback value instead of failing.

type FloatHandle struct {
	p        *Parameter
	fallback float64
}

func (r *Registry) Float(id uint32, fallback float64) FloatHandle {
	return FloatHandle{p: r.Get(id), fallback: fallback}
}

// Value returns the plain value
func (h FloatHandle) Value() float64 {
	if h.p == nil {
		return h.fallback
	}
	return h.p.GetPlainValue()
}

func (h FloatHandle) Resolved() bool {
	return h.p != nil
}

type ChoiceHandle struct {
	p        *Parameter
	fallback int
}

func (r *Registry) Choice(id uint32, fallback int) ChoiceHandle {
	return ChoiceHandle{p: r.Get(id), fallback: fallback}
}

// Value returns the selected option index
func (h ChoiceHandle) Value() int {
	if h.p == nil {
		return h.fallback
	}
	return h.p.Index()
}

func (h ChoiceHandle) Resolved() bool {
	return h.p != nil
}

type BoolHandle struct {
	p        *Parameter
	fallback bool
}

func (r *Registry) Bool(id uint32, fallback bool) BoolHandle {
	return BoolHandle{p: r.Get(id), fallback: fallback}
}

func (h BoolHandle) Value() bool {
	if h.p == nil {
		return h.fallback
	}
	return h.p.GetValue() > 0.5
}

func (h BoolHandle) Resolved() bool {
	return h.p != nil
}
