package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter mounts the catalog API on an [http.ServeMux].
//
// Middleware added with [BasicRouter.Use] wraps only the routes mounted after it, which is how the
// catalog keeps /healthz outside the bearer check.
type BasicRouter struct {
	mux    *http.ServeMux
	stack  []Middleware
	routes []string
}

// NewBasicRouter returns a router with no routes and an empty middleware stack.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use pushes middleware onto the stack. The first one pushed runs outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.stack = append(r.stack, middleware...)
}

// Handle serves path for a single method. Any other method gets a JSON 405 with an Allow header;
// the rejection passes through the middleware stack, so it is logged like any other response.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mount(path, allowOnly(method, handler))
}

// Handler mounts handler on each of its routes.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.mount(route, handler)
	}
}

// Routes lists the mounted paths in the order they were added.
func (r *BasicRouter) Routes() []string { return slices.Clone(r.routes) }

// ServeHTTP implements [http.Handler].
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps handler in the current middleware stack.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for i := len(r.stack) - 1; i >= 0; i-- {
		handler = r.stack[i](handler)
	}
	return handler
}

func (r *BasicRouter) mount(path string, handler http.Handler) {
	r.mux.Handle(path, r.Apply(handler))
	r.routes = append(r.routes, path)
}

func allowOnly(method string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !strings.EqualFold(req.Method, method) {
			w.Header().Set("Allow", method)
			writeError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		handler.ServeHTTP(w, req)
	})
}
