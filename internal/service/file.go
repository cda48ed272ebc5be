package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/queue"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/storage"
)

const enqueueTimeout = 2 * time.Second

// CreateFileInput is an upload request. Data is standard base64 and is
// ignored for folders.
type CreateFileInput struct {
	Name     string
	Type     string
	ParentID model.ParentID
	IsPublic bool
	Data     string
}

type FileService struct {
	fileRepo    repository.FileRepository
	storage     storage.Storage
	queue       queue.Queue
	authService *AuthService
}

func NewFileService(
	fileRepo repository.FileRepository,
	storage storage.Storage,
	queue queue.Queue,
	authService *AuthService,
) *FileService {
	return &FileService{
		fileRepo:    fileRepo,
		storage:     storage,
		queue:       queue,
		authService: authService,
	}
}

// Create validates in, stores its content and persists the record. Image
// uploads additionally queue thumbnail generation.
func (s *FileService) Create(ctx context.Context, user *model.User, in CreateFileInput) (*model.File, error) {
	if in.Name == "" {
		return nil, ErrMissingName
	}
	if !model.IsValidFileType(in.Type) {
		return nil, ErrMissingType
	}
	if in.Type != model.FileTypeFolder && in.Data == "" {
		return nil, ErrMissingData
	}
	if !in.ParentID.IsRoot() {
		parent, err := s.fileRepo.ByID(ctx, in.ParentID.String())
		if err != nil {
			if errors.Is(err, repository.ErrFileNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("failed to load parent: %w", err)
		}
		if !parent.IsFolder() {
			return nil, ErrParentNotFolder
		}
	}

	file := &model.File{
		UserID:   user.ID,
		Name:     in.Name,
		Type:     in.Type,
		ParentID: in.ParentID,
		IsPublic: in.IsPublic,
	}

	if in.Type == model.FileTypeFolder {
		if err := s.fileRepo.Create(ctx, file); err != nil {
			return nil, fmt.Errorf("failed to create folder record: %w", err)
		}
		return file, nil
	}

	content, err := base64.StdEncoding.DecodeString(in.Data)
	if err != nil {
		return nil, ErrInvalidData
	}

	key := s.storage.Key(uuid.NewString())
	if err := s.storage.Save(ctx, key, bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("failed to save file: %w", err)
	}
	file.LocalPath = &key

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// If DB insert fails, try to cleanup the uploaded file
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			slog.Error("failed to delete file from storage during cleanup", "error", delErr, "path", key)
		}
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	slog.Info("file created", "file_id", file.ID, "user_id", user.ID, "type", file.Type, "bytes", len(content))

	if file.Type == model.FileTypeImage {
		s.enqueueThumbnails(ctx, file)
	}
	return file, nil
}

// enqueueThumbnails is best effort: the upload already succeeded, so a
// queue failure only costs the thumbnails. A disconnected queue fails
// immediately; enqueueTimeout bounds a slow one.
func (s *FileService) enqueueThumbnails(ctx context.Context, file *model.File) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	err := s.queue.Enqueue(ctx, model.ThumbnailJob{UserID: file.UserID, FileID: file.ID})
	if err != nil {
		slog.Error("failed to enqueue thumbnail job", "error", err, "file_id", file.ID)
	}
}

// Get returns a file the user may read.
func (s *FileService) Get(ctx context.Context, user *model.User, fileID string) (*model.File, error) {
	file, err := s.fileRepo.ByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load file: %w", err)
	}
	if !CanRead(user, file) {
		return nil, ErrNotFound
	}
	return file, nil
}

// List returns one page of the user's direct children of parentID.
func (s *FileService) List(ctx context.Context, user *model.User, parentID model.ParentID, page int) ([]*model.File, error) {
	files, err := s.fileRepo.Page(ctx, user.ID, parentID, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	return files, nil
}

// SetVisibility publishes or unpublishes a file the user owns.
func (s *FileService) SetVisibility(ctx context.Context, user *model.User, fileID string, isPublic bool) (*model.File, error) {
	file, err := s.fileRepo.SetPublic(ctx, fileID, user.ID, isPublic)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update visibility: %w", err)
	}

	slog.Info("file visibility changed", "file_id", file.ID, "is_public", isPublic)
	return file, nil
}

// ReadContent opens the bytes of a file, or of one of its thumbnails when
// size is set. Public files need no token. The caller closes the reader.
func (s *FileService) ReadContent(ctx context.Context, token, fileID, size string) (io.ReadCloser, *model.File, error) {
	file, err := s.fileRepo.ByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to load file: %w", err)
	}

	if !file.IsPublic {
		user, err := s.authService.OptionalUser(ctx, token)
		if err != nil {
			return nil, nil, err
		}
		if !CanRead(user, file) {
			return nil, nil, ErrNotFound
		}
	}

	if file.IsFolder() {
		return nil, nil, ErrFolderHasNoContent
	}
	if file.LocalPath == nil {
		return nil, nil, ErrNotFound
	}

	key := *file.LocalPath
	if size != "" {
		width, ok := thumbnailWidth(size)
		if !ok {
			return nil, nil, ErrNotFound
		}
		key = file.ThumbnailPath(width)
	}

	rc, err := s.storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to open content: %w", err)
	}
	return rc, file, nil
}

// ContentType guesses the media type of an original from the file name.
// Thumbnails are re-encoded, so their type comes from ThumbnailContentType.
func ContentType(file *model.File) string {
	if ct := mime.TypeByExtension(filepath.Ext(file.Name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ThumbnailContentType sniffs the encoded thumbnail header.
func ThumbnailContentType(head []byte) string {
	return http.DetectContentType(head)
}

func thumbnailWidth(size string) (int, bool) {
	width, err := strconv.Atoi(size)
	if err != nil {
		return 0, false
	}
	for _, w := range model.ThumbnailWidths {
		if w == width {
			return width, true
		}
	}
	return 0, false
}
