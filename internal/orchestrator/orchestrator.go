// Package orchestrator runs the content type bootstrap as a single tracked
// operation: it waits for the asynchronous part to settle, announces new
// content types, remembers the last result, and probes the dependencies.
package orchestrator
