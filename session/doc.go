// Package session ties the bootloader wire-protocol engine, the flashing
// engine, and the deck sub-update pipeline into the single stateful entry
// point an upgrade tool drives: Manager.
//
// # Basic usage
//
// A cold-boot upgrade, scanning for a responding bootloader through an
// adapter that also implements link.Scanner:
//
//	mgr := session.New(adapter, afero.NewOsFs(), nil,
//	    session.WithProgressCallback(func(msg string, pct int) {
//	        fmt.Printf("[%3d%%] %s\n", pct, msg)
//	    }),
//	)
//	defer mgr.Close()
//
//	if err := mgr.FlashFull(ctx, false, "firmware-cf2.zip", nil); err != nil {
//	    log.Fatal(err)
//	}
//
// # Warm boot and decks
//
// Flashing decks requires a warm boot and an application-mode client
// factory, since the deck excursion briefly resets the craft back into
// firmware:
//
//	mgr := session.New(adapter, afero.NewOsFs(), openAppClient,
//	    session.WithKnownURI("radio://0/80/2M/E7E7E7E7E7"),
//	)
//	err := mgr.FlashFull(ctx, true, "firmware-cf2.zip", nil)
//
// # Targeted flashing
//
// Pass a selection to restrict which bundle targets are flashed:
//
//	selection := []target.Descriptor{
//	    {Platform: target.PlatformCF2, Target: "stm32", Kind: target.KindFW},
//	}
//	err := mgr.FlashFull(ctx, true, "firmware-cf2.zip", selection)
package session
