package cloudfile

import (
	"errors"
	"fmt"
)

// ErrPayloadTooLarge is returned when a remote object exceeds the download
// size cap before it is ever parsed.
var ErrPayloadTooLarge = errors.New("remote payload exceeds size limit")

// RemoteError is a non-success HTTP response from the storage API.
type RemoteError struct {
	Status int
	Body   string
}

func (e *RemoteError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("cloud storage request failed (%d)", e.Status)
	}
	return fmt.Sprintf("cloud storage request failed (%d): %s", e.Status, e.Body)
}

// NetworkError is a transport-level failure (DNS, TLS, connection reset)
// as opposed to a response the server actually produced.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("cloud storage request did not complete: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }
