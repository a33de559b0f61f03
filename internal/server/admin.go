package server

import (
	"net/http"

	"github.com/jonathan/relocation-matcher/internal/server/middleware"
)

// requireAdmin lets through only callers the admin policy accepts. It must
// run after AuthMiddleware.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.deps.Policy.IsAdmin(middleware.GetEmail(r)) {
			err := &ErrForbidden{Action: "catalog administration"}
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}
