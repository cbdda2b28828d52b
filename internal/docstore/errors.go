package docstore

import (
	"errors"
	"fmt"
)

// ErrUnavailable indicates the store could not be reached or kept failing
// for the whole retry budget.
var ErrUnavailable = errors.New("document store unavailable")

// ErrMalformed indicates the store answered but the response could not be
// decoded as a document.
var ErrMalformed = errors.New("malformed document store response")

// statusError carries a non-2xx HTTP status through the retry loop.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	if e.body == "" {
		return fmt.Sprintf("unexpected status %d", e.code)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.code, e.body)
}

// decodeError marks a response body that was received but not decodable, so
// exhaustion can surface ErrMalformed rather than ErrUnavailable.
type decodeError struct {
	err error
}

func (e *decodeError) Error() string {
	return "decoding response: " + e.err.Error()
}

func (e *decodeError) Unwrap() error {
	return e.err
}
