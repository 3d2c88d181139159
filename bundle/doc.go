// Package bundle reads a firmware bundle: a ZIP archive carrying a
// manifest.json plus one image file per target, or a bare binary image for
// the single-target case.
//
// # Manifest format
//
//	{
//	  "version": 1,
//	  "files": {
//	    "cf2.bin": {"platform": "cf2", "target": "stm32", "type": "fw"},
//	    "deck.bin": {"platform": "deck", "target": "bcLighthouse4", "type": "fw"}
//	  }
//	}
//
// Entries are read back in the JSON object's key order so artifact order is
// reproducible across runs.
//
//	r := bundle.NewReader(afero.NewOsFs())
//	artifacts, err := r.Read(path)
//	if artifacts == nil && err == nil {
//		// not a ZIP: treat as a raw binary image instead
//		data, err := r.ReadRaw(path)
//	}
package bundle
