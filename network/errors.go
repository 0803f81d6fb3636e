package network

import "errors"

var (
	// ErrConnectionFailed indicates the client could not connect to the node.
	ErrConnectionFailed = errors.New("network: connection failed")

	// ErrAuthFailed indicates authentication (e.g., RPC credentials) was rejected.
	ErrAuthFailed = errors.New("network: authentication failed")

	// ErrOutputNotFound indicates the node does not know the requested output.
	ErrOutputNotFound = errors.New("network: output not found")

	// ErrSubmitRejected indicates the node rejected the submitted payload.
	ErrSubmitRejected = errors.New("network: payload rejected")

	// ErrInvalidResponse indicates the node returned a malformed or unexpected response.
	ErrInvalidResponse = errors.New("network: invalid response")
)
