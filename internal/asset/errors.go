// Package asset fetches converted assets from the file registry and decodes
// them into scene graphs.
package asset

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrTransport marks failures resolving or fetching an asset: network
	// errors and non-success responses.
	ErrTransport = errors.New("asset transport error")

	// ErrDecode marks payloads that are not a parseable binary glTF scene.
	ErrDecode = errors.New("asset decode error")

	// ErrInvalidID marks asset identifiers that are not UUIDs.
	ErrInvalidID = errors.New("invalid asset identifier")
)

// StatusError is returned for a non-success registry or storage response.
// It matches ErrTransport under errors.Is.
type StatusError struct {
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: %s returned %d %s", ErrTransport, e.URL, e.Status, http.StatusText(e.Status))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is reports whether target is ErrTransport.
func (e *StatusError) Is(target error) bool { return target == ErrTransport }

func transportErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrTransport, fmt.Sprintf(format, args...))
}

func decodeErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrDecode, fmt.Sprintf(format, args...))
}

var (
	errMissingPosition = errors.New("primitive has no POSITION attribute")
	errIndexRange      = errors.New("index refers past the last vertex")
	errAccessorRange   = errors.New("accessor out of range")
)
