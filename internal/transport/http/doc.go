// Package http contains the chi HTTP handlers of the service: snapshot
// upload and query endpoints plus health checks. Handlers speak JSON via
// go-chi/render and report failures as RFC 7807 problem documents
// through internal/errors.
package http
