package middle

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type Middleware func(http.Handler) http.Handler

type reqIDCtxKeyType struct{}

var reqIDCtxKey = reqIDCtxKeyType{}

// RequestID honors an incoming X-Request-ID and falls back to a fresh
// uuid, so relayed failures can be matched across gateway and caller
// logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), reqIDCtxKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetReqID(ctx context.Context) string {
	id, _ := ctx.Value(reqIDCtxKey).(string)
	return id
}
