// Package worker renders image thumbnails for jobs taken off the queue.
package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/storage"
	"github.com/templui/filesmanager/internal/thumbnail"
)

var (
	ErrMissingFileID = errors.New("Missing fileId")
	ErrMissingUserID = errors.New("Missing userId")
	ErrFileNotFound  = errors.New("File not found")
)

// permanentError marks a job that can never succeed. The pool drops it
// instead of asking for redelivery.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func permanent(err error) error {
	return &permanentError{err: err}
}

// IsPermanent reports whether err marks a job that must not be retried.
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Processor turns one job into the file's thumbnails.
type Processor struct {
	files   repository.FileRepository
	storage storage.Storage
}

func NewProcessor(files repository.FileRepository, store storage.Storage) *Processor {
	return &Processor{files: files, storage: store}
}

// Process renders every width in model.ThumbnailWidths next to the
// original. Rerunning a job rewrites the same bytes.
func (p *Processor) Process(ctx context.Context, job model.ThumbnailJob) error {
	if job.FileID == "" {
		return permanent(ErrMissingFileID)
	}
	if job.UserID == "" {
		return permanent(ErrMissingUserID)
	}

	file, err := p.files.ByIDAndUser(ctx, job.FileID, job.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return permanent(ErrFileNotFound)
		}
		return fmt.Errorf("failed to load file: %w", err)
	}
	if file.Type != model.FileTypeImage || file.LocalPath == nil {
		return permanent(fmt.Errorf("file %s is not an image", file.ID))
	}

	original, err := p.readOriginal(ctx, *file.LocalPath)
	if err != nil {
		return err
	}

	for _, width := range model.ThumbnailWidths {
		out, err := thumbnail.Render(bytes.NewReader(original), width)
		if err != nil {
			if errors.Is(err, thumbnail.ErrUnsupportedImage) {
				return permanent(err)
			}
			return err
		}
		if err := p.storage.Save(ctx, file.ThumbnailPath(width), bytes.NewReader(out)); err != nil {
			return fmt.Errorf("failed to store %dpx thumbnail: %w", width, err)
		}
	}

	slog.Info("thumbnails generated", "file_id", file.ID, "widths", model.ThumbnailWidths)
	return nil
}

func (p *Processor) readOriginal(ctx context.Context, key string) ([]byte, error) {
	rc, err := p.storage.Open(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, permanent(fmt.Errorf("original content missing: %w", err))
		}
		return nil, fmt.Errorf("failed to open original: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read original: %w", err)
	}
	return data, nil
}
