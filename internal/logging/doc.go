// Package logging provides the logging interface used by the bigconv
// commands and the HTTP server. The zerolog backend is the default; the
// standard library backend exists for embedding in hosts that own log output.
package logging
