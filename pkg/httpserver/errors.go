package httpserver

import "errors"

var (
	// ErrStart indicates the server could not listen or stopped serving unexpectedly.
	ErrStart = errors.New("failed to start HTTP server")
	// ErrShutdown indicates in-flight requests did not drain before the shutdown timeout.
	ErrShutdown = errors.New("failed to shutdown HTTP server gracefully")
)
