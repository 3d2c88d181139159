// Package link defines the transport abstraction the bootloader core talks
// through: a packetized request/response adapter plus
// passive discovery, together with one concrete default implementation
// (SerialAdapter) and a reliability decorator (CRCGuard). The radio/USB
// framing details themselves are out of scope for the core — this package
// only fixes the interface the core depends on.
package link

import (
	"context"
	"errors"
)

// ErrNoBootloaderFound is returned by a Scanner when passive discovery times
// out without a response.
var ErrNoBootloaderFound = errors.New("link: no bootloader found")

// Adapter is the packetized transport the core issues bootloader commands
// over. Implementations must preserve packet boundaries: one Send call is
// one frame, one Receive call returns exactly the frame that answers it.
// An Adapter is owned exclusively by one session at a time; the session
// releases it with Close before another party opens it.
type Adapter interface {
	// Open binds the adapter to a transport-specific URI (e.g.
	// "radio://0/80/2M/E7E7E7E7E7", "usb://0").
	Open(ctx context.Context, uri string) error

	// Close releases the underlying transport. Close must be safe to call
	// on an adapter that was never successfully opened.
	Close() error

	// Send transmits one frame. It must not return until the frame has left
	// the host.
	Send(ctx context.Context, frame []byte) error

	// Receive blocks for the next inbound frame.
	Receive(ctx context.Context) ([]byte, error)
}

// Scanner is implemented by adapters that support passive bootloader
// discovery across all known transports.
type Scanner interface {
	// Scan returns the URI of the first responding bootloader, or
	// ErrNoBootloaderFound if none answers before ctx is done.
	Scan(ctx context.Context) (string, error)
}
