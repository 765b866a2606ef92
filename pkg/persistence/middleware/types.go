// Package middleware wraps configuration stores to add behavior at the
// persistence boundary: encryption at rest for configuration attributes,
// and masking of sensitive values before they are written.
//
// Configurations are where the sensitive material lives (real security
// posture of a deployment), so the middlewares target ports.ConfigStore.
package middleware

import "github.com/aretw0/thicket/pkg/ports"

// Middleware allows wrapping a ConfigStore to add behavior.
type Middleware func(ports.ConfigStore) ports.ConfigStore

// Chain applies middlewares so the first listed is the outermost.
func Chain(store ports.ConfigStore, middlewares ...Middleware) ports.ConfigStore {
	for i := len(middlewares) - 1; i >= 0; i-- {
		store = middlewares[i](store)
	}
	return store
}
