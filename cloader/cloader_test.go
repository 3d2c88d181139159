package cloader_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitcraze/cfloader/cloader"
	"github.com/bitcraze/cfloader/ferrors"
	"github.com/bitcraze/cfloader/link/linktest"
	"github.com/bitcraze/cfloader/protocol"
	"github.com/bitcraze/cfloader/target"
)

func infoFrame(id uint8, version protocol.Version, pageSize, bufferPages, flashPages, startPage uint16, addr uint32) []byte {
	payload := make([]byte, 0, protocol.InfoResponsePayloadSize)
	appendU16 := func(b []byte, v uint16) []byte { return append(b, byte(v), byte(v>>8)) }
	appendU32 := func(b []byte, v uint32) []byte {
		return append(b, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
	}
	payload = append(payload, byte(version))
	payload = appendU16(payload, pageSize)
	payload = appendU16(payload, bufferPages)
	payload = appendU16(payload, flashPages)
	payload = appendU16(payload, startPage)
	payload = appendU32(payload, addr)
	return protocol.Frame{TargetID: id, Command: protocol.CmdGetInfo, Payload: payload}.Encode()
}

func TestCheckLinkAndGetInfoCF2(t *testing.T) {
	mock := linktest.New()
	mock.Queue(infoFrame(target.IDSTM32, protocol.CF2ProtoVer, 1024, 10, 128, 16, 0x08004000))
	mock.Queue(infoFrame(target.IDNRF51, protocol.CF2ProtoVer, 256, 10, 240, 4, 0x00000000))

	c := cloader.New(mock)
	ctx := context.Background()
	require.NoError(t, c.Open(ctx, "usb://0"))

	version, reg, err := c.CheckLinkAndGetInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.CF2ProtoVer, version)
	assert.True(t, protocol.IsCF2(version))

	stm32, err := reg.ByID(target.IDSTM32)
	require.NoError(t, err)
	assert.Equal(t, 1024, stm32.PageSize)

	nrf51, err := reg.ByID(target.IDNRF51)
	require.NoError(t, err)
	assert.Equal(t, 240, nrf51.FlashPages)
}

func TestCheckLinkAndGetInfoCF1DoesNotProbeNRF51(t *testing.T) {
	mock := linktest.New()
	mock.Queue(infoFrame(target.IDSTM32, protocol.CF1ProtoVer1, 256, 4, 240, 4, 0x00000000))

	c := cloader.New(mock)
	ctx := context.Background()
	require.NoError(t, c.Open(ctx, "usb://0"))

	version, reg, err := c.CheckLinkAndGetInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, protocol.CF1ProtoVer1, version)
	assert.False(t, reg.Has(target.IDNRF51))
	require.Len(t, mock.Sent, 1)
}

func TestCheckLinkAndGetInfoRejectsUnrecognizedVersion(t *testing.T) {
	mock := linktest.New()
	mock.Queue(infoFrame(target.IDSTM32, protocol.Version(0x7F), 256, 4, 240, 4, 0x00000000))

	c := cloader.New(mock)
	ctx := context.Background()
	require.NoError(t, c.Open(ctx, "usb://0"))

	_, _, err := c.CheckLinkAndGetInfo(ctx)
	require.Error(t, err)
	fe, ok := ferrors.As(err)
	require.True(t, ok)
	assert.Equal(t, ferrors.KindProtocolUnsupported, fe.Kind)
}

func TestWriteFlashSurfacesDeviceErrorCode(t *testing.T) {
	mock := linktest.New()
	mock.Queue(protocol.Frame{
		TargetID: target.IDSTM32,
		Command:  protocol.CmdWriteFlash,
		Payload:  []byte{protocol.StatusErrAddress, 0x07},
	}.Encode())

	c := cloader.New(mock)
	ctx := context.Background()
	require.NoError(t, c.Open(ctx, "usb://0"))

	g := target.Geometry{ID: target.IDSTM32, PageSize: 1024, BufferPages: 10, FlashPages: 128, StartPage: 16, Addr: 0x08004000}
	err := c.WriteFlash(ctx, g, 0, 16, 4)
	require.Error(t, err)
	require.NotNil(t, c.LastErrorCode())
	assert.Equal(t, byte(0x07), *c.LastErrorCode())
}

func TestUploadBufferSendsFramedCommand(t *testing.T) {
	mock := linktest.New()
	c := cloader.New(mock)
	ctx := context.Background()
	require.NoError(t, c.Open(ctx, "usb://0"))

	g := target.Geometry{ID: target.IDSTM32, Addr: 0x08004000}
	require.NoError(t, c.UploadBuffer(ctx, g, 3, 0, []byte{1, 2, 3, 4}))

	require.Len(t, mock.Sent, 1)
	assert.Equal(t, target.IDSTM32, mock.Sent[0][0])
	assert.Equal(t, protocol.CmdLoadBuffer, mock.Sent[0][1])
}
