package sample

// Fake is a test double that returns scripted poll results.
type Fake struct {
	// Polls contains one entry per Poll call; nil means no sample waiting.
	// Once exhausted, Poll reports no sample.
	Polls []*Sample

	index int

	// EndErr, if set, is reported by Err once every scripted poll is consumed.
	EndErr error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFake creates a Fake with the given scripted polls.
func NewFake(polls ...*Sample) *Fake {
	return &Fake{Polls: polls}
}

// Poll returns the next scripted result.
func (f *Fake) Poll() (Sample, bool) {
	if f.index >= len(f.Polls) {
		return Sample{}, false
	}
	p := f.Polls[f.index]
	f.index++
	if p == nil {
		return Sample{}, false
	}
	return *p, true
}

// Remaining reports how many scripted polls have not been consumed.
func (f *Fake) Remaining() int {
	return len(f.Polls) - f.index
}

// Err returns EndErr after the script is exhausted.
func (f *Fake) Err() error {
	if f.index < len(f.Polls) {
		return nil
	}
	return f.EndErr
}

// Close marks the source as closed.
func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
