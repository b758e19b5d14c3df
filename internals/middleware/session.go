package middle

import (
	"kuma-gateway/pkg/apperror"
	"kuma-gateway/pkg/utils"
	"net/http"
)

// Session exposes the state of the upstream session the gateway relays
// over.
type Session interface {
	Authenticated() bool
}

// SessionMiddleware rejects relay requests while the upstream session is
// down or not logged in, the way the upstream itself would.
type SessionMiddleware struct {
	session Session
}

func NewSessionMiddleware(session Session) *SessionMiddleware {
	return &SessionMiddleware{session: session}
}

func (s *SessionMiddleware) Handle(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		if !s.session.Authenticated() {
			reqID := GetReqID(r.Context())
			utils.WriteError(w, http.StatusUnauthorized, reqID,
				apperror.Unauthorised, "not connected or authenticated")
			return
		}
		next.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
