package protocol

import "testing"

func buildInfoFrame(targetID uint8, info InfoResponse) []byte {
	payload := make([]byte, 0, InfoResponsePayloadSize)
	payload = append(payload, byte(info.Version))
	payload = appendU16(payload, info.PageSize)
	payload = appendU16(payload, info.BufferPages)
	payload = appendU16(payload, info.FlashPages)
	payload = appendU16(payload, info.StartPage)
	payload = appendU32(payload, info.Addr)
	return Frame{TargetID: targetID, Command: CmdGetInfo, Payload: payload}.Encode()
}

func TestParseInfoResponse(t *testing.T) {
	want := InfoResponse{Version: CF2ProtoVer, PageSize: 1024, BufferPages: 10, FlashPages: 128, StartPage: 16, Addr: 0x08004000}
	frame := buildInfoFrame(0xFF, want)

	got, err := ParseInfoResponse(frame, 0xFF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("ParseInfoResponse = %+v, want %+v", got, want)
	}
}

func TestParseInfoResponseWrongTarget(t *testing.T) {
	frame := buildInfoFrame(0xFF, InfoResponse{})
	if _, err := ParseInfoResponse(frame, 0xFE); err == nil {
		t.Fatal("expected error for mismatched target id")
	}
}

func TestParseInfoResponseBadLength(t *testing.T) {
	frame := Frame{TargetID: 0xFF, Command: CmdGetInfo, Payload: []byte{1, 2, 3}}.Encode()
	if _, err := ParseInfoResponse(frame, 0xFF); err == nil {
		t.Fatal("expected error for short payload")
	}
}

func TestParseWriteFlashAckOK(t *testing.T) {
	frame := Frame{TargetID: 0xFF, Command: CmdWriteFlash, Payload: []byte{StatusOK, 0x00}}.Encode()
	ack, err := ParseWriteFlashAck(frame, 0xFF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ack.OK() {
		t.Errorf("expected ack.OK() to be true, got status 0x%02X", ack.Status)
	}
}

func TestParseWriteFlashAckFailure(t *testing.T) {
	frame := Frame{TargetID: 0xFF, Command: CmdWriteFlash, Payload: []byte{StatusErrAddress, 0x07}}.Encode()
	ack, err := ParseWriteFlashAck(frame, 0xFF)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ack.OK() {
		t.Error("expected ack.OK() to be false")
	}
	if ack.ErrorCode != 0x07 {
		t.Errorf("ErrorCode = 0x%02X, want 0x07", ack.ErrorCode)
	}
}

func TestParseWriteFlashAckWrongCommand(t *testing.T) {
	frame := Frame{TargetID: 0xFF, Command: CmdGetInfo, Payload: []byte{StatusOK, 0x00}}.Encode()
	if _, err := ParseWriteFlashAck(frame, 0xFF); err == nil {
		t.Fatal("expected error for mismatched command byte")
	}
}
