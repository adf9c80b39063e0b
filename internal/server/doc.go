// Package server implements the HTTP side of bigform: the form page and its
// submission endpoint, signed session cookies, one-shot flash notices, and
// the health and metrics endpoints, plus lifecycle helpers used by tests and
// the production binary.
package server
