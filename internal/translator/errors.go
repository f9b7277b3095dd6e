package translator

import (
	"errors"
	"fmt"
)

// ErrMalformedResponse is returned by a Service whose reply does not carry a
// translated text at the expected place.
var ErrMalformedResponse = errors.New("malformed translation response")

// StatusError reports a non-success HTTP status from the translation service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("translation service returned status %d: %s", e.StatusCode, e.Body)
}
