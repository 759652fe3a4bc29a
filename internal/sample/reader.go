package sample

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// queueDepth bounds how many decoded samples may wait for the loop.
const queueDepth = 16

// scanBufferSize is the scanner's fixed buffer. It only has to hold one line
// of MaxLineLength; longer input is discarded by splitLines.
const scanBufferSize = 4096

// Reader scans lines from an io.Reader on a background goroutine and exposes
// them through a non-blocking Poll.
type Reader struct {
	rc  io.ReadCloser
	log zerolog.Logger
	ch  chan Sample

	mu       sync.Mutex
	err      error
	dropped  int
	rejected int

	// discarding is set while skipping the tail of an over-long line.
	discarding bool

	done chan struct{}
	once sync.Once
}

// NewReader starts scanning rc. Closing the Reader closes rc.
func NewReader(rc io.ReadCloser, log zerolog.Logger) *Reader {
	r := &Reader{
		rc:   rc,
		log:  log,
		ch:   make(chan Sample, queueDepth),
		done: make(chan struct{}),
	}
	go r.scan()
	return r
}

func (r *Reader) scan() {
	defer close(r.done)

	sc := bufio.NewScanner(r.rc)
	sc.Buffer(make([]byte, scanBufferSize), scanBufferSize)
	sc.Split(r.splitLines)

	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}

		s, err := Decode(line)
		if err != nil {
			r.reject(err)
			continue
		}

		select {
		case r.ch <- s:
		default:
			// Queue full: the loop is behind, keep the newest reading.
			select {
			case <-r.ch:
			default:
			}
			r.ch <- s
			r.mu.Lock()
			r.dropped++
			r.mu.Unlock()
		}
	}

	err := sc.Err()
	if err != nil && !errors.Is(err, ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
		r.log.Error().Err(err).Msg("serial read failed")
	}
	r.mu.Lock()
	if err == nil {
		err = io.EOF
	}
	r.err = err
	r.mu.Unlock()
}

// splitLines splits on '\n' like bufio.ScanLines, but a line that grows past
// MaxLineLength without a terminator is counted as rejected and its bytes are
// skipped up to the next '\n', so line noise never stops the scanner.
func (r *Reader) splitLines(data []byte, atEOF bool) (int, []byte, error) {
	if len(data) == 0 {
		return 0, nil, nil
	}

	i := bytes.IndexByte(data, '\n')
	if r.discarding {
		if i < 0 {
			return len(data), nil, nil
		}
		r.discarding = false
		return i + 1, nil, nil
	}

	switch {
	case i >= 0:
		return i + 1, data[:i], nil
	case len(data) > MaxLineLength:
		r.discarding = true
		r.reject(fmt.Errorf("%w: no terminator after %d bytes", ErrLineTooLong, len(data)))
		return len(data), nil, nil
	case atEOF:
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (r *Reader) reject(err error) {
	r.mu.Lock()
	r.rejected++
	r.mu.Unlock()
	r.log.Debug().Err(err).Msg("dropping line")
}

// Poll returns the next decoded sample if one is waiting.
func (r *Reader) Poll() (Sample, bool) {
	select {
	case s := <-r.ch:
		return s, true
	default:
		return Sample{}, false
	}
}

// Err returns the error that stopped scanning, or nil while still running.
func (r *Reader) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.err
}

// Stats returns how many lines were rejected and how many samples were
// discarded because the queue was full.
func (r *Reader) Stats() (rejected, dropped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rejected, r.dropped
}

// Close closes the underlying transport and waits for the scanner to stop.
func (r *Reader) Close() error {
	var err error
	r.once.Do(func() {
		err = r.rc.Close()
		<-r.done
	})
	return err
}
