package httpserver

import "time"

var (
	// ShutdownTimeout controls how long to wait for graceful shutdowns.
	ShutdownTimeout = 15 * time.Second
	// ReadTimeout bounds reading a whole request, multipart uploads included.
	ReadTimeout = 10 * time.Minute
	// WriteTimeout bounds writing a response.
	WriteTimeout = 10 * time.Minute
)
