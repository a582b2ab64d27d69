package filters

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedFilter is matched by errors for filter names that have no codec.
	ErrUnsupportedFilter = errors.New("unsupported filter")

	// ErrMalformedPayload is matched by errors raised by a known codec that
	// could not decode its input.
	ErrMalformedPayload = errors.New("malformed stream payload")

	// ErrLimitExceeded reports decoded output larger than the registry limit.
	ErrLimitExceeded = errors.New("decoded size exceeds limit")
)

// UnsupportedFilterError names the filter that has no registered codec.
type UnsupportedFilterError struct {
	Name  string
	Index int // position in the chain
}

func (e *UnsupportedFilterError) Error() string {
	return fmt.Sprintf("filter %d (%s): %v", e.Index, e.Name, ErrUnsupportedFilter)
}

// Is reports whether target is ErrUnsupportedFilter.
func (e *UnsupportedFilterError) Is(target error) bool {
	return target == ErrUnsupportedFilter
}

// DecodeError wraps the failure of one codec in a chain.
type DecodeError struct {
	Filter string
	Index  int
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("filter %d (%s) failed: %v", e.Index, e.Filter, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is reports whether target is ErrMalformedPayload.
func (e *DecodeError) Is(target error) bool {
	return target == ErrMalformedPayload
}
