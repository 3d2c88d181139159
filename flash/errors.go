package flash

import "fmt"

// insufficientSpaceError is wrapped into ferrors.KindInsufficientSpace.
type insufficientSpaceError struct {
	ImageLen    int
	UsableBytes int
}

func (e *insufficientSpaceError) Error() string {
	return fmt.Sprintf("image is %d bytes, usable flash range is %d bytes", e.ImageLen, e.UsableBytes)
}

// terminatedError is wrapped into ferrors.KindTerminated.
type terminatedError struct{}

func (e *terminatedError) Error() string {
	return "flashing terminated by caller"
}
