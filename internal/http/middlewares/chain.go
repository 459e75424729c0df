// Package middlewares contiene los decoradores http.Handler del Hub.
package middlewares

import "net/http"

// Middleware envuelve un handler. Compatible con chi.Router.Use.
type Middleware = func(http.Handler) http.Handler

// Chain envuelve h de modo que el primer middleware de la lista sea el más externo.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	wrapped := h
	for i := range mws {
		wrapped = mws[len(mws)-1-i](wrapped)
	}
	return wrapped
}
