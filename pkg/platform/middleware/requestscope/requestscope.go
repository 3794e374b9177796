// Package requestscope stamps every HTTP request with the request-scoped
// values read through pkg/requestcontext.
package requestscope

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"casebridge/pkg/requestcontext"
)

// HeaderRequestID carries the caller's request id, echoed on the response.
const HeaderRequestID = "X-Request-ID"

// Middleware stores the request id and a single "now" in the context. A
// missing request id header gets a fresh UUID.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, requestID)

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
