package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport matches every *Error via errors.Is.
var ErrTransport = errors.New("request did not complete")

// Response is a completed HTTP exchange, whatever its status.
type Response struct {
	Status   int
	Body     string
	Location string
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsRedirect reports a 302 Found.
func (r *Response) IsRedirect() bool {
	return r.Status == http.StatusFound
}

// Expect returns a *StatusError unless the response has the given status.
func (r *Response) Expect(method, path string, status int) error {
	if r.Status == status {
		return nil
	}
	return &StatusError{Method: method, Path: path, Status: r.Status, Want: status}
}

// Error is a request that never produced a response (dial, TLS, timeout,
// cancellation).
type Error struct {
	Method string
	Path   string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrTransport }

// StatusError is a completed exchange with an unexpected status code.
type StatusError struct {
	Method string
	Path   string
	Status int
	Want   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d (want %d)", e.Method, e.Path, e.Status, e.Want)
}
