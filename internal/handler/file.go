package handler

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/templui/filesmanager/internal/ctxkeys"
	"github.com/templui/filesmanager/internal/middleware"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/pagination"
	"github.com/templui/filesmanager/internal/response"
	"github.com/templui/filesmanager/internal/service"
)

type fileHandler struct {
	fileService    *service.FileService
	maxUploadBytes int64
}

func NewFileHandler(fileService *service.FileService, maxUploadBytes int64) *fileHandler {
	return &fileHandler{
		fileService:    fileService,
		maxUploadBytes: maxUploadBytes,
	}
}

type createFileRequest struct {
	Name     string         `json:"name"`
	Type     string         `json:"type"`
	ParentID model.ParentID `json:"parentId"`
	IsPublic bool           `json:"isPublic"`
	Data     string         `json:"data"`
}

// Create handles POST /files.
func (h *fileHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	var req createFileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecodeError(w, err)
		return
	}

	file, err := h.fileService.Create(r.Context(), ctxkeys.User(r.Context()), service.CreateFileInput{
		Name:     req.Name,
		Type:     req.Type,
		ParentID: req.ParentID,
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, file)
}

// Show handles GET /files/{id}.
func (h *fileHandler) Show(w http.ResponseWriter, r *http.Request) {
	file, err := h.fileService.Get(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, file)
}

// Index handles GET /files?parentId=&page=.
func (h *fileHandler) Index(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	parentID := model.ParentID(query.Get("parentId"))
	page := pagination.Normalize(query.Get("page"))

	files, err := h.fileService.List(r.Context(), ctxkeys.User(r.Context()), parentID, page)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, files)
}

// Publish handles PUT /files/{id}/publish.
func (h *fileHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

// Unpublish handles PUT /files/{id}/unpublish.
func (h *fileHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

func (h *fileHandler) setVisibility(w http.ResponseWriter, r *http.Request, isPublic bool) {
	file, err := h.fileService.SetVisibility(r.Context(), ctxkeys.User(r.Context()), r.PathValue("id"), isPublic)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, file)
}

// Data handles GET /files/{id}/data?size=. The token is optional: public
// files are served to anyone.
func (h *fileHandler) Data(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(middleware.TokenHeader)
	size := r.URL.Query().Get("size")

	content, file, err := h.fileService.ReadContent(r.Context(), token, r.PathValue("id"), size)
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer content.Close()

	contentType := service.ContentType(file)
	var body io.Reader = content
	if size != "" {
		br := bufio.NewReader(content)
		head, _ := br.Peek(512)
		contentType = service.ThumbnailContentType(head)
		body = br
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		slog.Warn("failed to stream file content", "error", err, "file_id", file.ID)
	}
}
