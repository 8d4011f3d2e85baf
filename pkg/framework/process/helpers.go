package process

// WriteStereo copies a stereo pair to the outputs. A single output gets the
// average of both sides; channels past the second alternate left and right.
func (c *Context) WriteStereo(left, right []float32) {
	switch len(c.Output) {
	case 0:
		return
	case 1:
		out := c.Output[0]
		n := min(len(out), len(left), len(right))
		for i := 0; i < n; i++ {
			out[i] = 0.5 * (left[i] + right[i])
		}
		return
	}
	for ch, out := range c.Output {
		if ch%2 == 0 {
			copy(out, left)
		} else {
			copy(out, right)
		}
	}
}

// ForEachChannel calls fn for every output channel.
func (c *Context) ForEachChannel(fn func(ch int, out []float32)) {
	for ch, out := range c.Output {
		fn(ch, out)
	}
}
