package router

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// HandlerFunc is the handler signature the router dispatches to.
type HandlerFunc func(http.ResponseWriter, *http.Request)

// Router is a small method-aware mux with trailing-wildcard routes. A path
// registered as "/api/v1/builds/*" matches any deeper request path; exact
// routes win over wildcards. Every request is logged with its status and
// duration.
type Router struct {
	routes map[string]HandlerFunc // key = METHOD:PATH
	paths  map[string]bool
	logger *zap.Logger
}

func New(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		routes: make(map[string]HandlerFunc),
		paths:  make(map[string]bool),
		logger: logger,
	}
}

func (r *Router) register(method, path string, handler HandlerFunc) {
	r.routes[method+":"+path] = handler
	r.paths[path] = true
}

func (r *Router) GET(path string, handler HandlerFunc)    { r.register(http.MethodGet, path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)   { r.register(http.MethodPost, path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)    { r.register(http.MethodPut, path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) { r.register(http.MethodDelete, path, handler) }

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	start := time.Now()
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

	r.dispatch(sw, req)

	r.logger.Info("request",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", sw.status),
		zap.Duration("duration", time.Since(start)),
	)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) {
	if h, ok := r.routes[req.Method+":"+req.URL.Path]; ok {
		h(w, req)
		return
	}

	// Prefer the most specific wildcard pattern (most segments) so
	// /builds/*/errors wins over /builds/* regardless of map order.
	best := ""
	for pattern := range r.paths {
		if !strings.Contains(pattern, "*") || !matchRoute(req.URL.Path, pattern) {
			continue
		}
		if _, ok := r.routes[req.Method+":"+pattern]; !ok {
			continue
		}
		if best == "" || strings.Count(pattern, "/") > strings.Count(best, "/") {
			best = pattern
		}
	}
	if best != "" {
		r.routes[req.Method+":"+best](w, req)
		return
	}

	if r.paths[req.URL.Path] {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

// matchRoute reports whether a request path matches a route pattern.
// Interior "*" segments match exactly one path segment; a trailing "*"
// matches any number of remaining segments.
func matchRoute(requestPath, pattern string) bool {
	reqSegs := strings.Split(strings.Trim(requestPath, "/"), "/")
	patSegs := strings.Split(strings.Trim(pattern, "/"), "/")

	trailing := len(patSegs) > 0 && patSegs[len(patSegs)-1] == "*"
	if trailing {
		patSegs = patSegs[:len(patSegs)-1]
		if len(reqSegs) < len(patSegs) {
			return false
		}
	} else if len(reqSegs) != len(patSegs) {
		return false
	}

	for i, seg := range patSegs {
		if seg != "*" && reqSegs[i] != seg {
			return false
		}
	}
	return true
}

// Start blocks serving HTTP on addr.
func (r *Router) Start(addr string) error {
	r.logger.Info("server listening", zap.String("addr", addr))
	return http.ListenAndServe(addr, r)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
