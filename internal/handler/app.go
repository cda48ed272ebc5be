package handler

import (
	"net/http"

	"github.com/templui/filesmanager/internal/response"
	"github.com/templui/filesmanager/internal/service"
)

type appHandler struct {
	appService *service.AppService
}

func NewAppHandler(appService *service.AppService) *appHandler {
	return &appHandler{appService: appService}
}

// Status handles GET /status.
func (h *appHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, h.appService.Status(r.Context()))
}

// Stats handles GET /stats.
func (h *appHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.appService.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, stats)
}
