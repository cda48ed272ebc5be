package routes

import (
	"net/http"

	"github.com/templui/filesmanager/internal/app"
)

// SetupRoutes wires the API onto an assembled App.
func SetupRoutes(app *app.App) http.Handler {
	return NewRouter(app.AppService, app.AuthService, app.FileService, Options{
		MaxUploadBytes: app.Cfg.MaxUploadBytes,
		AuthRateLimit:  app.Cfg.AuthRateLimit,
		AuthRateWindow: app.Cfg.AuthRateWindow,
		TrustProxy:     app.Cfg.TrustProxy,
	})
}
