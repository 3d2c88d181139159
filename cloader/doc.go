// Package cloader. See cloader.go for the Cloader type and its operations.
//
// A typical cold-boot probe:
//
//	c := cloader.New(adapter)
//	uri, err := cloader.ScanForBootloader(ctx, adapter)
//	if err := c.Open(ctx, uri); err != nil {
//		return err
//	}
//	defer c.Close()
//	version, registry, err := c.CheckLinkAndGetInfo(ctx)
package cloader
