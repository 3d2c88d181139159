package link

import (
	"context"
	"fmt"

	"github.com/sigurn/crc16"
)

var crcTable = crc16.MakeTable(crc16.CCITT_FALSE)

// CRCGuard wraps an Adapter with a CRC-16 trailer on every frame and a
// bounded retry on mismatch. protocol.Frame carries no built-in integrity
// check of its own, so this decorator supplies one at the transport layer
// instead.
type CRCGuard struct {
	Adapter Adapter
	Retries int
}

// NewCRCGuard wraps adapter with a CRC-16 guard that retries up to retries
// times before giving up on a corrupted response.
func NewCRCGuard(adapter Adapter, retries int) *CRCGuard {
	if retries < 0 {
		retries = 0
	}
	return &CRCGuard{Adapter: adapter, Retries: retries}
}

func (g *CRCGuard) Open(ctx context.Context, uri string) error { return g.Adapter.Open(ctx, uri) }
func (g *CRCGuard) Close() error                                { return g.Adapter.Close() }

// Send appends a two-byte little-endian CRC-16/CCITT-FALSE trailer to frame
// before transmitting it.
func (g *CRCGuard) Send(ctx context.Context, frame []byte) error {
	sum := crc16.Checksum(frame, crcTable)
	out := make([]byte, len(frame)+2)
	copy(out, frame)
	out[len(frame)] = byte(sum)
	out[len(frame)+1] = byte(sum >> 8)
	return g.Adapter.Send(ctx, out)
}

// Receive reads frames until one passes its CRC-16 trailer check or the
// retry budget is exhausted.
func (g *CRCGuard) Receive(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= g.Retries; attempt++ {
		raw, err := g.Adapter.Receive(ctx)
		if err != nil {
			return nil, err
		}
		if len(raw) < 2 {
			lastErr = fmt.Errorf("crc guard: frame too short to carry a trailer")
			continue
		}

		body, trailer := raw[:len(raw)-2], raw[len(raw)-2:]
		want := uint16(trailer[0]) | uint16(trailer[1])<<8
		got := crc16.Checksum(body, crcTable)
		if got != want {
			lastErr = fmt.Errorf("crc guard: checksum mismatch: got 0x%04X, want 0x%04X", got, want)
			continue
		}
		return body, nil
	}
	return nil, fmt.Errorf("crc guard: exhausted %d retries: %w", g.Retries, lastErr)
}
