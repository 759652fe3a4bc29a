package sample

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/goburrow/serial"
)

// Serial defaults for the host link.
const (
	DefaultDevice = "/dev/ttyACM0"
	DefaultBaud   = 115200
)

// readTimeout bounds each blocking read so Close is noticed promptly.
const readTimeout = 100 * time.Millisecond

// SerialConfig selects the serial device. Framing is fixed at 8N1.
type SerialConfig struct {
	Device string
	Baud   int
}

// serialPort retries timed-out reads so line scanning only stops on Close
// or a real I/O error.
type serialPort struct {
	port   serial.Port
	closed atomic.Bool
}

// OpenSerial opens the serial device for reading samples.
func OpenSerial(cfg SerialConfig) (io.ReadCloser, error) {
	if cfg.Device == "" {
		cfg.Device = DefaultDevice
	}
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}

	port, err := serial.Open(&serial.Config{
		Address:  cfg.Device,
		BaudRate: cfg.Baud,
		DataBits: 8,
		StopBits: 1,
		Parity:   "N",
		Timeout:  readTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", cfg.Device, err)
	}
	return &serialPort{port: port}, nil
}

func (p *serialPort) Read(b []byte) (int, error) {
	for {
		if p.closed.Load() {
			return 0, ErrClosed
		}
		n, err := p.port.Read(b)
		if errors.Is(err, serial.ErrTimeout) {
			if n > 0 {
				return n, nil
			}
			continue
		}
		if err != nil && p.closed.Load() {
			return n, ErrClosed
		}
		return n, err
	}
}

func (p *serialPort) Close() error {
	p.closed.Store(true)
	return p.port.Close()
}
