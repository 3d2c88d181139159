package link

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/pkg/term"
)

// SerialAdapter is the default Adapter for a USB-CDC bootloader link (the
// Crazyflie's NRF51 presents one when the aircraft is connected over USB
// instead of radio). It frames each Send/Receive as one raw-mode
// read/write on the serial port; real deployments over radio supply their
// own Adapter instead.
type SerialAdapter struct {
	baud int

	mu   sync.Mutex
	port *term.Term
}

// NewSerialAdapter returns a SerialAdapter that will open ports at baud bps.
func NewSerialAdapter(baud int) *SerialAdapter {
	return &SerialAdapter{baud: baud}
}

// Open binds the adapter to a "usb://<device-path>" URI, e.g.
// "usb:///dev/ttyACM0".
func (a *SerialAdapter) Open(ctx context.Context, uri string) error {
	path, ok := strings.CutPrefix(uri, "usb://")
	if !ok {
		return fmt.Errorf("serial adapter: unsupported uri %q, want usb://<path>", uri)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	t, err := term.Open(path, term.Speed(a.baud), term.RawMode)
	if err != nil {
		return fmt.Errorf("serial adapter: open %s: %w", path, err)
	}
	a.port = t
	return nil
}

// Close releases the serial port, if one is open.
func (a *SerialAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.port == nil {
		return nil
	}
	err := a.port.Close()
	a.port = nil
	return err
}

// Send writes one frame to the port.
func (a *SerialAdapter) Send(ctx context.Context, frame []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.port == nil {
		return fmt.Errorf("serial adapter: not open")
	}
	_, err := a.port.Write(frame)
	return err
}

// Receive reads one frame from the port, returning whatever a single read
// of at most 64 bytes delivers.
func (a *SerialAdapter) Receive(ctx context.Context) ([]byte, error) {
	a.mu.Lock()
	port := a.port
	a.mu.Unlock()

	if port == nil {
		return nil, fmt.Errorf("serial adapter: not open")
	}

	buf := make([]byte, 64)
	n, err := port.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("serial adapter: receive: %w", err)
	}
	return buf[:n], nil
}
