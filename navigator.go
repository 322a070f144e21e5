package slidedeck

// Navigator tracks the current slide of an ordered deck.
// It holds no reference to the slides themselves; identity is positional.
type Navigator struct {
	count   int
	current int
}

// NewNavigator creates a Navigator over count slides positioned on slide 0.
// A negative count is treated as an empty deck.
func NewNavigator(count int) *Navigator {
	if count < 0 {
		count = 0
	}
	return &Navigator{count: count}
}

// Clamp bounds index into [0, count-1]. Returns 0 for an empty deck.
func Clamp(index, count int) int {
	if count <= 0 || index < 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}

// Show makes index the current slide after clamping it into range and
// returns the resulting index. Out-of-range requests are never rejected.
func (n *Navigator) Show(index int) int {
	n.current = Clamp(index, n.count)
	return n.current
}

// Advance moves by delta slides (negative moves back).
func (n *Navigator) Advance(delta int) int {
	return n.Show(n.current + delta)
}

// Current returns the current slide index.
func (n *Navigator) Current() int { return n.current }

// Len returns the number of slides.
func (n *Navigator) Len() int { return n.count }

// PrevDisabled reports whether the previous control must be disabled.
func (n *Navigator) PrevDisabled() bool {
	return n.count == 0 || n.current == 0
}

// NextDisabled reports whether the next control must be disabled.
func (n *Navigator) NextDisabled() bool {
	return n.count == 0 || n.current == n.count-1
}

// Visibility returns one flag per slide; exactly one is true unless the
// deck is empty.
func (n *Navigator) Visibility() []bool {
	v := make([]bool, n.count)
	if n.count > 0 {
		v[n.current] = true
	}
	return v
}

// KeyDelta maps a key name to a navigation delta.
// ArrowLeft/ArrowRight are the browser names; left/right/h/l come from
// terminal key events.
func KeyDelta(key string) (int, bool) {
	switch key {
	case "ArrowLeft", "left", "h":
		return -1, true
	case "ArrowRight", "right", "l":
		return 1, true
	}
	return 0, false
}
