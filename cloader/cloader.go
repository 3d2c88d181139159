// Package cloader implements the bootloader wire-protocol engine: scanning
// for a device, opening a link, probing protocol version and geometry,
// streaming image bytes into the device's staging buffer, and issuing
// page-program and reset commands. It is the only package that calls
// protocol.Build*/Parse* against a link.Adapter.
package cloader

import (
	"context"
	"fmt"

	"github.com/bitcraze/cfloader/ferrors"
	"github.com/bitcraze/cfloader/link"
	"github.com/bitcraze/cfloader/protocol"
	"github.com/bitcraze/cfloader/target"
)

// Cloader drives one link.Adapter through the bootloader wire protocol. It
// holds no retry or flashing policy of its own; callers (session, flash,
// deck) sequence its operations.
type Cloader struct {
	adapter link.Adapter
	version protocol.Version
	errCode *byte
}

// New wraps adapter. The returned Cloader is not yet bound to a URI; call
// Open before issuing any other command.
func New(adapter link.Adapter) *Cloader {
	return &Cloader{adapter: adapter}
}

// ScanForBootloader performs passive discovery over adapter, if it
// implements link.Scanner, and returns the URI of the first responding
// bootloader.
func ScanForBootloader(ctx context.Context, adapter link.Adapter) (string, error) {
	scanner, ok := adapter.(link.Scanner)
	if !ok {
		return "", ferrors.New(ferrors.KindLinkError, fmt.Errorf("adapter does not support scanning"))
	}
	uri, err := scanner.Scan(ctx)
	if err != nil {
		return "", ferrors.New(ferrors.KindLinkError, err)
	}
	return uri, nil
}

// Open binds the underlying adapter to uri.
func (c *Cloader) Open(ctx context.Context, uri string) error {
	if err := c.adapter.Open(ctx, uri); err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}
	return nil
}

// Close releases the underlying link. Safe to call even if Open failed or
// was never called.
func (c *Cloader) Close() error {
	if err := c.adapter.Close(); err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}
	return nil
}

// ResetToBootloader sends the application-mode command that reboots
// targetID into bootloader mode. Only meaningful for a warm boot.
func (c *Cloader) ResetToBootloader(ctx context.Context, targetID uint8) error {
	frame := protocol.BuildResetCmd(targetID, true)
	if err := c.adapter.Send(ctx, frame); err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}
	return nil
}

// ResetToFirmware sends the command that boots targetID back into
// application firmware.
func (c *Cloader) ResetToFirmware(ctx context.Context, targetID uint8) error {
	frame := protocol.BuildResetCmd(targetID, false)
	if err := c.adapter.Send(ctx, frame); err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}
	return nil
}

// CheckLinkAndGetInfo probes the protocol version by requesting info for the
// STM32 target, which reports its own bootloader protocol version. For the
// CF2 protocol it additionally requests NRF51 geometry, since CF2 is the
// only variant with a second addressable MCU. It returns the negotiated
// version and the registry of geometries it populated.
func (c *Cloader) CheckLinkAndGetInfo(ctx context.Context) (protocol.Version, *target.Registry, error) {
	reg := target.NewRegistry()

	stm32, version, err := c.RequestInfoUpdate(ctx, target.IDSTM32)
	if err != nil {
		return 0, nil, err
	}
	reg.Set(stm32)

	if !protocol.IsRecognized(version) {
		return 0, nil, ferrors.Newf(ferrors.KindProtocolUnsupported, "unrecognized protocol version 0x%02X", version)
	}

	if protocol.IsCF2(version) {
		nrf51, _, err := c.RequestInfoUpdate(ctx, target.IDNRF51)
		if err != nil {
			return 0, nil, err
		}
		reg.Set(nrf51)
	}

	c.version = version
	return version, reg, nil
}

// RequestInfoUpdate issues the info-update request for one target and
// returns its geometry along with the bootloader protocol version that
// target reported.
func (c *Cloader) RequestInfoUpdate(ctx context.Context, targetID uint8) (target.Geometry, protocol.Version, error) {
	if err := c.adapter.Send(ctx, protocol.BuildGetInfoCmd(targetID)); err != nil {
		return target.Geometry{}, 0, ferrors.New(ferrors.KindLinkError, err)
	}
	raw, err := c.adapter.Receive(ctx)
	if err != nil {
		return target.Geometry{}, 0, ferrors.New(ferrors.KindLinkError, err)
	}
	info, err := protocol.ParseInfoResponse(raw, targetID)
	if err != nil {
		return target.Geometry{}, 0, ferrors.New(ferrors.KindLinkError, err)
	}

	name, err := target.NameForID(targetID)
	if err != nil {
		name = fmt.Sprintf("0x%02X", targetID)
	}
	return target.Geometry{
		ID:          targetID,
		Name:        name,
		PageSize:    int(info.PageSize),
		BufferPages: int(info.BufferPages),
		FlashPages:  int(info.FlashPages),
		StartPage:   int(info.StartPage),
		Addr:        info.Addr,
	}, info.Version, nil
}

// UploadBuffer copies up to one page of image bytes into g's device staging
// buffer at bufferPageIndex, starting at offset within that page. The bytes
// are sent as consecutive Load Buffer frames of at most
// protocol.MaxPageDataSize bytes each, at increasing offsets.
func (c *Cloader) UploadBuffer(ctx context.Context, g target.Geometry, bufferPageIndex, offset uint16, data []byte) error {
	for {
		n := len(data)
		if n > protocol.MaxPageDataSize {
			n = protocol.MaxPageDataSize
		}
		frame, err := protocol.BuildLoadBufferCmd(g.ID, g.Addr, bufferPageIndex, offset, data[:n])
		if err != nil {
			return ferrors.New(ferrors.KindLinkError, err)
		}
		if err := c.adapter.Send(ctx, frame); err != nil {
			return ferrors.New(ferrors.KindLinkError, err)
		}
		data = data[n:]
		if len(data) == 0 {
			return nil
		}
		offset += uint16(n)
	}
}

// WriteFlash commands g's device to program numPages pages from its buffer
// beginning at bufferStartPage into flash starting at flashDestPage. On
// failure it returns a KindDeviceProgramError carrying the device's
// error_code.
func (c *Cloader) WriteFlash(ctx context.Context, g target.Geometry, bufferStartPage, flashDestPage uint16, numPages uint8) error {
	frame := protocol.BuildWriteFlashCmd(g.ID, g.Addr, bufferStartPage, flashDestPage, numPages)
	if err := c.adapter.Send(ctx, frame); err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}
	raw, err := c.adapter.Receive(ctx)
	if err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}
	ack, err := protocol.ParseWriteFlashAck(raw, g.ID)
	if err != nil {
		return ferrors.New(ferrors.KindLinkError, err)
	}
	if !ack.OK() {
		c.errCode = &ack.ErrorCode
		return ferrors.WithDeviceCode(fmt.Errorf("write_flash failed for page %d", flashDestPage), ack.ErrorCode)
	}
	return nil
}

// LastErrorCode returns the most recent device error_code reported by
// WriteFlash, or nil if none has occurred.
func (c *Cloader) LastErrorCode() *byte {
	return c.errCode
}
