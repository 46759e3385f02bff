package transport

import (
	"errors"
	"net/http"

	"github.com/rpggio/tracksheet/internal/auth"
)

// AuthMiddleware resolves the request owner and rejects anonymous requests.
func AuthMiddleware(authn auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := authn.Authenticate(r.Context(), r.Header)
			if err != nil || ownerID == "" {
				if err != nil && !errors.Is(err, auth.ErrUnauthorized) {
					loggerFrom(r).Error("authentication failed", "error", err)
				}
				writeJSON(w, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), ownerID)))
		})
	}
}

func ownerFrom(r *http.Request) string {
	ownerID, _ := auth.OwnerFromContext(r.Context())
	return ownerID
}
