package posapi

import "fmt"

// APIError is a backend rejection; Message is the server-provided text the
// terminal surfaces to the cashier verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pos backend: %s (status %d)", e.Message, e.StatusCode)
}
