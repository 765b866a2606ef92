// Package ports defines the collaborator contracts the engine consumes.
// Persistence, routing and authentication live behind these interfaces;
// the engine only threads an opaque tenant identifier through them and
// assumes tenant isolation is enforced by the implementation.
package ports
