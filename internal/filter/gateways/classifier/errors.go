package classifier

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned when a backend answers 2xx with a body
// that does not fit its response contract.
var ErrMalformedResponse = errors.New("classifier: malformed response")

// StatusError is a non-success HTTP status from a classifier endpoint.
type StatusError struct {
	Backend    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s classifier: http %d: %s", e.Backend, e.StatusCode, strings.TrimSpace(e.Body))
}
