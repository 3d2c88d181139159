package protocol

// ParseInfoResponse decodes a Get Info response frame for targetID.
// Data format (little-endian, InfoResponsePayloadSize bytes):
//
//	[VERSION(1)][PAGE_SIZE(2)][BUFFER_PAGES(2)][FLASH_PAGES(2)][START_PAGE(2)][ADDR(4)]
func ParseInfoResponse(frame []byte, targetID uint8) (InfoResponse, error) {
	f, err := DecodeFrame(frame)
	if err != nil {
		return InfoResponse{}, err
	}
	if f.TargetID != targetID {
		return InfoResponse{}, unexpectedTarget(f.TargetID, targetID)
	}
	if f.Command != CmdGetInfo {
		return InfoResponse{}, unexpectedCommand(f.Command, CmdGetInfo)
	}
	if len(f.Payload) != InfoResponsePayloadSize {
		return InfoResponse{}, unexpectedPayloadLength(len(f.Payload), InfoResponsePayloadSize)
	}

	return InfoResponse{
		Version:     Version(f.Payload[0]),
		PageSize:    readU16(f.Payload[1:3]),
		BufferPages: readU16(f.Payload[3:5]),
		FlashPages:  readU16(f.Payload[5:7]),
		StartPage:   readU16(f.Payload[7:9]),
		Addr:        readU32(f.Payload[9:13]),
	}, nil
}

// ParseWriteFlashAck decodes a Write Flash acknowledgement frame.
// Data format (WriteFlashAckSize bytes): [STATUS(1)][ERROR_CODE(1)].
func ParseWriteFlashAck(frame []byte, targetID uint8) (WriteFlashAck, error) {
	f, err := DecodeFrame(frame)
	if err != nil {
		return WriteFlashAck{}, err
	}
	if f.TargetID != targetID {
		return WriteFlashAck{}, unexpectedTarget(f.TargetID, targetID)
	}
	if f.Command != CmdWriteFlash {
		return WriteFlashAck{}, unexpectedCommand(f.Command, CmdWriteFlash)
	}
	if len(f.Payload) != WriteFlashAckSize {
		return WriteFlashAck{}, unexpectedPayloadLength(len(f.Payload), WriteFlashAckSize)
	}

	return WriteFlashAck{Status: f.Payload[0], ErrorCode: f.Payload[1]}, nil
}
