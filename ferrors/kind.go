// Package ferrors defines the error taxonomy shared across the firmware
// upgrade core (session, cloader, bundle, flash, deck) and the exit-code
// mapping the cfload CLI reports it through.
package ferrors

import "fmt"

// Kind classifies a failure reported by the core, per the error handling
// design: each kind maps to exactly one CLI exit code and is never silently
// swallowed.
type Kind int

const (
	// KindLinkError covers link open, scan, send, or receive failures.
	KindLinkError Kind = iota + 1
	// KindProtocolUnsupported means the device advertised a protocol
	// version outside the recognized set.
	KindProtocolUnsupported
	// KindBundleFormatError covers a missing/invalid ZIP, missing or
	// unparsable manifest, unsupported manifest version, or a raw binary
	// presented against more than one target.
	KindBundleFormatError
	// KindInsufficientSpace means an image exceeds the usable flash range
	// of its target.
	KindInsufficientSpace
	// KindDeviceProgramError means a write_flash command returned
	// non-success; DeviceErrorCode carries the device's code.
	KindDeviceProgramError
	// KindTerminated means the caller's termination predicate tripped.
	KindTerminated
	// KindDeckUpdateFailed means a deck's write_sync returned false.
	KindDeckUpdateFailed
)

func (k Kind) String() string {
	switch k {
	case KindLinkError:
		return "link-error"
	case KindProtocolUnsupported:
		return "protocol-unsupported"
	case KindBundleFormatError:
		return "bundle-format-error"
	case KindInsufficientSpace:
		return "insufficient-space"
	case KindDeviceProgramError:
		return "device-program-error"
	case KindTerminated:
		return "terminated"
	case KindDeckUpdateFailed:
		return "deck-update-failed"
	default:
		return "unknown"
	}
}

// Error is the concrete error type every core package returns. DeviceCode is
// non-nil only for KindDeviceProgramError, carrying the device's numeric
// error_code verbatim.
type Error struct {
	Kind       Kind
	DeviceCode *byte
	Err        error
}

func (e *Error) Error() string {
	if e.DeviceCode != nil {
		return fmt.Sprintf("%s: %v (device error_code=0x%02X)", e.Kind, e.Err, *e.DeviceCode)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of kind wrapping err.
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Newf builds an Error of kind from a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// WithDeviceCode attaches the device's numeric error_code to a
// KindDeviceProgramError.
func WithDeviceCode(err error, code byte) *Error {
	return &Error{Kind: KindDeviceProgramError, DeviceCode: &code, Err: err}
}

// As reports whether err is a *Error, returning it.
func As(err error) (*Error, bool) {
	e, ok := err.(*Error)
	return e, ok
}

// ExitCode maps err to the CLI exit code table: insufficient-space=2,
// protocol-unsupported=3, device-program-error=4, terminated=5,
// bundle-format-error=6, link-error=7. Unrecognized errors map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	fe, ok := As(err)
	if !ok {
		return 1
	}
	switch fe.Kind {
	case KindInsufficientSpace:
		return 2
	case KindProtocolUnsupported:
		return 3
	case KindDeviceProgramError:
		return 4
	case KindTerminated:
		return 5
	case KindBundleFormatError:
		return 6
	case KindLinkError:
		return 7
	case KindDeckUpdateFailed:
		return 4
	default:
		return 1
	}
}
