// Package httpserver builds the HTTP servers behind `casebridge serve` and
// `casebridge refdata serve`.
package httpserver

import (
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	// Builds fan out to reference data, so responses get more room than reads.
	writeTimeout = 60 * time.Second
	idleTimeout  = 120 * time.Second
)

func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
