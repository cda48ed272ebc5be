package middleware

import (
	"net/http"

	nanoid "github.com/jaevor/go-nanoid"
	"github.com/templui/filesmanager/internal/ctxkeys"
)

const RequestIDHeader = "X-Request-ID"

// newRequestID yields 21-char URL-safe IDs
var newRequestID = mustNanoID()

func mustNanoID() func() string {
	gen, err := nanoid.Standard(21)
	if err != nil {
		panic(err)
	}
	return gen
}

// RequestID tags every request with an ID, reusing the caller's
// X-Request-ID when present, and echoes it in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = newRequestID()
		}

		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(ctxkeys.WithRequestID(r.Context(), id)))
	})
}
