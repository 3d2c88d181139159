package protocol

import (
	"bytes"
	"testing"
)

func TestBuildGetInfoCmd(t *testing.T) {
	got := BuildGetInfoCmd(0xFF)
	want := []byte{0xFF, CmdGetInfo}
	if !bytes.Equal(got, want) {
		t.Errorf("BuildGetInfoCmd = % X, want % X", got, want)
	}
}

func TestBuildLoadBufferCmd(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	got, err := BuildLoadBufferCmd(0xFF, 0x08004000, 3, 0, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []byte{0xFF, CmdLoadBuffer}
	want = appendU32(want, 0x08004000)
	want = appendU16(want, 3)
	want = appendU16(want, 0)
	want = append(want, data...)

	if !bytes.Equal(got, want) {
		t.Errorf("BuildLoadBufferCmd = % X, want % X", got, want)
	}
}

func TestBuildLoadBufferCmdRejectsOversizedData(t *testing.T) {
	data := make([]byte, MaxPageDataSize+1)
	if _, err := BuildLoadBufferCmd(0xFF, 0, 0, 0, data); err == nil {
		t.Fatal("expected error for oversized payload")
	}
}

func TestBuildLoadBufferCmdRejectsEmptyData(t *testing.T) {
	if _, err := BuildLoadBufferCmd(0xFF, 0, 0, 0, nil); err == nil {
		t.Fatal("expected error for empty payload")
	}
}

func TestBuildWriteFlashCmd(t *testing.T) {
	got := BuildWriteFlashCmd(0xFF, 0x08004000, 0, 16, 4)

	want := []byte{0xFF, CmdWriteFlash}
	want = appendU32(want, 0x08004000)
	want = appendU16(want, 0)
	want = appendU16(want, 16)
	want = append(want, 4)

	if !bytes.Equal(got, want) {
		t.Errorf("BuildWriteFlashCmd = % X, want % X", got, want)
	}
}

func TestBuildResetCmd(t *testing.T) {
	toBoot := BuildResetCmd(0xFE, true)
	if toBoot[1] != CmdResetToBootloader {
		t.Errorf("reset to bootloader command byte = 0x%02X, want 0x%02X", toBoot[1], CmdResetToBootloader)
	}

	toApp := BuildResetCmd(0xFE, false)
	if toApp[1] != CmdResetToFirmware {
		t.Errorf("reset to firmware command byte = 0x%02X, want 0x%02X", toApp[1], CmdResetToFirmware)
	}
}

func TestDecodeFrameTooShort(t *testing.T) {
	if _, err := DecodeFrame([]byte{0xFF}); err == nil {
		t.Fatal("expected error decoding a one-byte frame")
	}
}
