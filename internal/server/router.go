package server

import (
	"net/http"
	"strings"
)

// BasicRouter is the tracking service's [Router]: an [http.ServeMux] with a
// middleware stack applied to every registered route. The surface is small
// (the /track endpoint and whatever diagnostics get added around it), so no
// pattern matching beyond ServeMux is needed.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewBasicRouter creates an empty router with no middleware installed.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
	}
}

// Use appends [Middleware] to the stack. Requests pass through middleware in
// registration order, so CORS belongs before the rate limiter.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for a single HTTP method and path; other
// methods on the path are answered with 405. Handlers that manage their own
// method dispatch (like the /track handler) register via [BasicRouter.Handler]
// instead.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	wrapped := r.Apply(handler)

	methodHandler := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !strings.EqualFold(req.Method, method) {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wrapped.ServeHTTP(w, req)
	})

	r.mux.Handle(path, methodHandler)
}

// Handler registers a [Handler] under every route it declares via
// [Handler.Routes], wrapped with the middleware stack. Method dispatch stays
// with the handler so OPTIONS preflight and 405 responses are its decision.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)

	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler in the middleware stack. Wrapping runs in reverse
// registration order so that the first-registered middleware sees the
// request first.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
