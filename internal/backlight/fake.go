package backlight

// Fake is a test double that records backlight changes.
type Fake struct {
	// Lit is the current backlight state.
	Lit bool

	// History records every On (true) and Off (false) call in order.
	History []bool

	// Closed tracks if Close was called.
	Closed bool

	// SetError, if set, is returned by On and Off without changing state.
	SetError error
}

// NewFake creates a Fake with the backlight off.
func NewFake() *Fake {
	return &Fake{}
}

// On records the backlight being switched on.
func (f *Fake) On() error {
	return f.set(true)
}

// Off records the backlight being switched off.
func (f *Fake) Off() error {
	return f.set(false)
}

func (f *Fake) set(lit bool) error {
	if f.SetError != nil {
		return f.SetError
	}
	f.Lit = lit
	f.History = append(f.History, lit)
	return nil
}

// Close turns the backlight off and marks the switch closed.
func (f *Fake) Close() error {
	f.Lit = false
	f.Closed = true
	return nil
}

// Reset clears recorded state.
func (f *Fake) Reset() {
	f.Lit = false
	f.History = nil
	f.Closed = false
	f.SetError = nil
}
