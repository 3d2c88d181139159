// Package link defines the transport boundary between the bootloader core
// and whatever actually carries bytes to the aircraft (USB-CDC, the
// Crazyradio dongle, a mock in tests). Core packages depend only on the
// Adapter interface; SerialAdapter and CRCGuard are the two concrete pieces
// shipped here.
//
// A minimal USB session:
//
//	a := link.NewSerialAdapter(115200)
//	if err := a.Open(ctx, "usb:///dev/ttyACM0"); err != nil {
//		log.Fatal(err)
//	}
//	defer a.Close()
//
// Layer a CRCGuard on top when the transport doesn't already guarantee
// frame integrity:
//
//	guarded := link.NewCRCGuard(a, 3)
package link
