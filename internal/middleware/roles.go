package middleware

import (
	"net/http"

	"civicreport/internal/auth"
)

// RequireActor gates a route to one actor kind (citizen, officer,
// maintainer). Role claims come from the token; office-level compatibility
// is never decided here, the services re-check it against the directories.
func RequireActor(actor auth.ActorType) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if claims.Actor != actor {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOfficerRole gates a route to officers holding a given role in at
// least one office.
func RequireOfficerRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := GetClaims(r)
			if !ok {
				respondWithError(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if claims.Actor != auth.ActorOfficer || !claims.HasRole(role) {
				respondWithError(w, http.StatusForbidden, "Insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
