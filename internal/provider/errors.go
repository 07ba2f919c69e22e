package provider

import (
	"fmt"

	"github.com/rotisserie/eris"
)

// ErrUnavailable marks a failed external model call. It is fatal for the
// affected pair only.
var ErrUnavailable = eris.New("provider unavailable")

// UnavailableError carries the failing provider and the underlying cause.
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("provider unavailable: %s: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }

func (e *UnavailableError) Is(target error) bool { return target == ErrUnavailable }

// Unavailable wraps err so that errors.Is(err, ErrUnavailable) holds while the
// cause (for example context.DeadlineExceeded) stays reachable.
func Unavailable(name string, err error) error {
	if err == nil {
		return nil
	}
	return &UnavailableError{Provider: name, Err: err}
}
