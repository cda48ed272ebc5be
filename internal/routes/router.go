package routes

import (
	"net/http"
	"time"

	"github.com/templui/filesmanager/internal/handler"
	"github.com/templui/filesmanager/internal/middleware"
	"github.com/templui/filesmanager/internal/response"
	"github.com/templui/filesmanager/internal/service"
)

// Options tunes the HTTP surface.
type Options struct {
	MaxUploadBytes int64
	AuthRateLimit  int
	AuthRateWindow time.Duration
	TrustProxy     bool
}

// NewRouter builds the API handler from the services it exposes.
func NewRouter(appService *service.AppService, authService *service.AuthService, fileService *service.FileService, opts Options) http.Handler {
	// Handlers
	status := handler.NewAppHandler(appService)
	auth := handler.NewAuthHandler(authService)
	files := handler.NewFileHandler(fileService, opts.MaxUploadBytes)

	requireAuth := middleware.RequireAuth(authService)
	rateLimit := middleware.RateLimit(opts.AuthRateLimit, opts.AuthRateWindow, opts.TrustProxy)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /status", status.Status)
	mux.HandleFunc("GET /stats", status.Stats)

	mux.HandleFunc("POST /users", auth.Register)
	mux.Handle("GET /connect", rateLimit(http.HandlerFunc(auth.Connect)))

	// Token optional: public files are readable anonymously
	mux.HandleFunc("GET /files/{id}/data", files.Data)

	// ============================================================================
	// PROTECTED ROUTES (X-Token)
	// ============================================================================

	mux.Handle("GET /disconnect", requireAuth(http.HandlerFunc(auth.Disconnect)))
	mux.Handle("GET /users/me", requireAuth(http.HandlerFunc(auth.Me)))

	mux.Handle("POST /files", requireAuth(http.HandlerFunc(files.Create)))
	mux.Handle("GET /files", requireAuth(http.HandlerFunc(files.Index)))
	mux.Handle("GET /files/{id}", requireAuth(http.HandlerFunc(files.Show)))
	mux.Handle("PUT /files/{id}/publish", requireAuth(http.HandlerFunc(files.Publish)))
	mux.Handle("PUT /files/{id}/unpublish", requireAuth(http.HandlerFunc(files.Unpublish)))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	// 404
	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, service.ErrNotFound.Error())
	})

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.RequestLogging,
		middleware.Recover,
	)
}
