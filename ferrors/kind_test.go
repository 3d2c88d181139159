package ferrors

import (
	"errors"
	"testing"
)

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{KindInsufficientSpace, 2},
		{KindProtocolUnsupported, 3},
		{KindDeviceProgramError, 4},
		{KindTerminated, 5},
		{KindBundleFormatError, 6},
		{KindLinkError, 7},
	}
	for _, c := range cases {
		err := New(c.kind, errors.New("boom"))
		if got := ExitCode(err); got != c.want {
			t.Errorf("ExitCode(%s) = %d, want %d", c.kind, got, c.want)
		}
	}
}

func TestExitCodeNil(t *testing.T) {
	if got := ExitCode(nil); got != 0 {
		t.Errorf("ExitCode(nil) = %d, want 0", got)
	}
}

func TestExitCodeUnrecognized(t *testing.T) {
	if got := ExitCode(errors.New("plain")); got != 1 {
		t.Errorf("ExitCode(plain) = %d, want 1", got)
	}
}

func TestWithDeviceCode(t *testing.T) {
	err := WithDeviceCode(errors.New("program failed"), 0x07)
	fe, ok := As(err)
	if !ok {
		t.Fatal("expected *Error")
	}
	if fe.DeviceCode == nil || *fe.DeviceCode != 0x07 {
		t.Errorf("DeviceCode = %v, want 0x07", fe.DeviceCode)
	}
	if got := ExitCode(err); got != 4 {
		t.Errorf("ExitCode = %d, want 4", got)
	}
}
