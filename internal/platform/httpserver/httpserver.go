package httpserver

import (
	"net/http"
	"time"
)

// New builds an HTTP server with defaults suited to a small token gateway:
// requests are short-lived, so slow clients get cut off early.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
