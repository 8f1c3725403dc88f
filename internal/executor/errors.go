package executor

import "fmt"

// TransportError means the request never produced a readable response:
// connection refused, timeout, cancelled context, or a broken body.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// DecodeError means a response arrived but its body is not the expected JSON
type DecodeError struct {
	Status  int
	Err     error
	Snippet string
}

func (e *DecodeError) Error() string {
	if e.Status != 0 && (e.Status < 200 || e.Status >= 300) {
		return fmt.Sprintf("unexpected response (HTTP %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("invalid response body: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
