package handler

import (
	"encoding/json"
	"net/http"

	"github.com/templui/filesmanager/internal/ctxkeys"
	"github.com/templui/filesmanager/internal/response"
	"github.com/templui/filesmanager/internal/service"
)

// maxRegisterBytes bounds the POST /users body; credentials are tiny.
const maxRegisterBytes = 64 << 10

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /users.
func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRegisterBytes)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	user, err := h.authService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, user)
}

// Connect handles GET /connect with Basic credentials.
func (h *authHandler) Connect(w http.ResponseWriter, r *http.Request) {
	token, err := h.authService.Authenticate(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"token": token})
}

// Disconnect handles GET /disconnect. Runs behind RequireAuth.
func (h *authHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Revoke(r.Context(), ctxkeys.Token(r.Context())); err != nil {
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /users/me. Runs behind RequireAuth.
func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, ctxkeys.User(r.Context()))
}
