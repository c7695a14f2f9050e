package parser

import "fmt"

// UnavailableError indicates the extraction provider could not be reached or
// answered with a server-side error. Callers may retry these.
type UnavailableError struct {
	Provider string
	Err      error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Provider, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// InvalidResponseError indicates the provider answered but its payload could
// not be interpreted. Retrying is pointless: the same input produces the same
// bad response.
type InvalidResponseError struct {
	Provider string
	Err      error
}

func (e *InvalidResponseError) Error() string {
	return fmt.Sprintf("%s returned an invalid response: %v", e.Provider, e.Err)
}

func (e *InvalidResponseError) Unwrap() error {
	return e.Err
}
