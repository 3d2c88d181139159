package session

import "github.com/bitcraze/cfloader/target"

// ProgressCallback receives a human-readable milestone and a completion
// percentage in [0,100]. Invoked at the start of each artifact, after each
// page upload, after each page-program batch, at successful completion, and
// on terminal errors.
type ProgressCallback func(message string, percent int)

// InfoCallback is invoked once after bootloader entry with the negotiated
// protocol version and the geometries probed for it (STM32 always, NRF51
// additionally for the CF2 protocol).
type InfoCallback func(version uint8, geometries []target.Geometry)

// TerminateCallback is polled once per page in the flashing engine and once
// per deck in the deck pipeline. A true return aborts the in-flight
// operation once the current command completes.
type TerminateCallback func() bool

// Logger is the narrow logging capability the session and its
// sub-collaborators use. Implementations should return promptly.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
