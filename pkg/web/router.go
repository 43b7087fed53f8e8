package web

import "net/http"

// Router is a ServeMux that renders a fallback page for GET and HEAD
// requests no pattern matches. Other methods keep the mux's plain 404 and
// 405 responses.
type Router struct {
	*http.ServeMux
	notFound http.Handler
}

// NewRouter creates a Router. A nil notFound leaves unmatched requests to
// the mux.
func NewRouter(notFound http.Handler) *Router {
	return &Router{ServeMux: http.NewServeMux(), notFound: notFound}
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.notFound != nil && (req.Method == http.MethodGet || req.Method == http.MethodHead) {
		if _, pattern := r.Handler(req); pattern == "" {
			r.notFound.ServeHTTP(w, req)
			return
		}
	}
	r.ServeMux.ServeHTTP(w, req)
}
