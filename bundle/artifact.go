package bundle

import "github.com/bitcraze/cfloader/target"

// Artifact pairs one image's bytes with the target descriptor it is bound
// to. Immutable after construction; artifacts exist only for the duration
// of one flash call.
type Artifact struct {
	Bytes  []byte
	Target target.Descriptor
}

func descriptorFromEntry(e ManifestEntry) target.Descriptor {
	return target.Descriptor{
		Platform: target.Platform(e.Platform),
		Target:   e.Target,
		Kind:     target.Kind(e.Type),
	}
}
