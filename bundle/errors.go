package bundle

import "fmt"

// rawBinaryMultiTargetError describes a raw (non-ZIP) path presented against
// a target count other than one. Nothing in this module constructs it:
// session.Manager.Flash reports that case with its own
// ferrors.KindBundleFormatError.
type rawBinaryMultiTargetError struct {
	TargetCount int
}

func (e *rawBinaryMultiTargetError) Error() string {
	return fmt.Sprintf("raw binary image requires exactly one target, got %d", e.TargetCount)
}
