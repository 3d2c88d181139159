// Package protocol implements the wire codec for the Crazyflie bootloader
// protocol: building command frames and parsing response frames exchanged
// over a link.Adapter.
//
// # Frame format
//
// Every frame begins with a two-byte header: the numeric target id
// (target.IDSTM32 or target.IDNRF51) and a command byte, followed by a
// command-specific payload. Packet boundaries are the link adapter's
// responsibility: this package assumes one frame per Send/Receive call and
// never splits or joins packets itself.
//
//	[TARGET_ID][COMMAND][PAYLOAD...]
//
// # Building commands
//
//	frame := protocol.BuildGetInfoCmd(target.IDSTM32)
//	frame, err := protocol.BuildLoadBufferCmd(target.IDSTM32, addr, bufferPage, 0, chunk)
//	frame := protocol.BuildWriteFlashCmd(target.IDSTM32, addr, 0, destPage, numPages)
//	frame := protocol.BuildResetCmd(target.IDNRF51, true) // reset to bootloader
//
// # Parsing responses
//
//	info, err := protocol.ParseInfoResponse(raw, target.IDSTM32)
//	ack, err := protocol.ParseWriteFlashAck(raw, target.IDSTM32)
//	if !ack.OK() {
//	    // surface ack.ErrorCode verbatim
//	}
package protocol
