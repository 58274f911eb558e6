// Package middleware provides composable wrappers around a SessionStore.
package middleware

import "github.com/cauceflow/cauce/pkg/ports"

// Middleware wraps a SessionStore to add behavior on the way in or out.
type Middleware func(ports.SessionStore) ports.SessionStore

// Chain applies middlewares to a store. The first middleware is the
// outermost wrapper, so it sees Save calls first and Load results last.
func Chain(store ports.SessionStore, mws ...Middleware) ports.SessionStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
