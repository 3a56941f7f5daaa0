package tcn

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidReportIndex is returned when a parsed report's
	// first disclosure index is zero.
	ErrInvalidReportIndex = errors.New("tcn: invalid report index")

	// ErrReportVerificationFailed is returned when a signed
	// report fails the source integrity check, either because
	// the verification key is not a valid canonical encoding or
	// because the signature does not match.
	ErrReportVerificationFailed = errors.New("tcn: report verification failed")
)

// UnknownMemoTypeError is returned when a parsed memo type
// discriminant is not a known format.
type UnknownMemoTypeError struct {
	Type uint8
}

func (e *UnknownMemoTypeError) Error() string {
	return fmt.Sprintf("tcn: unknown memo type %d", e.Type)
}

// OversizeMemoError is returned when a report's memo data
// exceeds MaxMemoSize bytes.
type OversizeMemoError struct {
	Len int
}

func (e *OversizeMemoError) Error() string {
	return fmt.Sprintf("tcn: oversize memo field: %d bytes", e.Len)
}
