// Package app assembles the service: configuration, logging, metrics,
// the middleware chain, the HTTP router and graceful shutdown.
package app
