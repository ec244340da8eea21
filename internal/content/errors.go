package content

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrTransient matches every *FetchError. Callers keep their last good
	// data when they see it.
	ErrTransient = errors.New("transient fetch failure")
	// ErrNotFound is wrapped by a *FetchError when the origin answers 404.
	ErrNotFound = errors.New("content not found")
	// ErrUnsuccessful is wrapped by a *FetchError when the envelope reports
	// success=false.
	ErrUnsuccessful = errors.New("unsuccessful response")
)

// FetchError describes a failed request to the content origin.
type FetchError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.Endpoint, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.Endpoint, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is reports every FetchError as ErrTransient.
func (e *FetchError) Is(target error) bool { return target == ErrTransient }
