package worker

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/repository"
	"github.com/templui/filesmanager/internal/storage"
)

// stubFiles serves ByIDAndUser from a map keyed by file ID.
type stubFiles struct {
	repository.FileRepository
	files map[string]*model.File
	err   error
}

func (s *stubFiles) ByIDAndUser(ctx context.Context, id, userID string) (*model.File, error) {
	if s.err != nil {
		return nil, s.err
	}
	f, ok := s.files[id]
	if !ok || f.UserID != userID {
		return nil, repository.ErrFileNotFound
	}
	return f, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}
	return buf.Bytes()
}

func setupProcessor(t *testing.T) (*Processor, *stubFiles, *storage.LocalStorage) {
	t.Helper()
	store := storage.NewLocalStorage(t.TempDir())
	files := &stubFiles{files: map[string]*model.File{}}
	return NewProcessor(files, store), files, store
}

func addFile(t *testing.T, files *stubFiles, store *storage.LocalStorage, id, typ string, content []byte) *model.File {
	t.Helper()
	f := &model.File{ID: id, UserID: "owner", Name: id, Type: typ, ParentID: model.RootParentID}
	if typ != model.FileTypeFolder {
		key := store.Key(id)
		if err := store.Save(context.Background(), key, bytes.NewReader(content)); err != nil {
			t.Fatalf("failed to save content: %v", err)
		}
		f.LocalPath = &key
	}
	files.files[id] = f
	return f
}

func readAll(t *testing.T, store storage.Storage, key string) []byte {
	t.Helper()
	rc, err := store.Open(context.Background(), key)
	if err != nil {
		t.Fatalf("failed to open %s: %v", key, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("failed to read %s: %v", key, err)
	}
	return data
}

func TestProcessGeneratesAllWidths(t *testing.T) {
	p, files, store := setupProcessor(t)
	f := addFile(t, files, store, "img", model.FileTypeImage, pngBytes(t, 800, 400))

	if err := p.Process(context.Background(), model.ThumbnailJob{UserID: "owner", FileID: "img"}); err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	for _, width := range model.ThumbnailWidths {
		data := readAll(t, store, f.ThumbnailPath(width))
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("%dpx thumbnail is not an image: %v", width, err)
		}
		if cfg.Width != width {
			t.Errorf("expected width %d, got %d", width, cfg.Width)
		}
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	p, files, store := setupProcessor(t)
	f := addFile(t, files, store, "img", model.FileTypeImage, pngBytes(t, 600, 600))
	job := model.ThumbnailJob{UserID: "owner", FileID: "img"}

	if err := p.Process(context.Background(), job); err != nil {
		t.Fatalf("first Process failed: %v", err)
	}
	first := readAll(t, store, f.ThumbnailPath(100))

	if err := p.Process(context.Background(), job); err != nil {
		t.Fatalf("second Process failed: %v", err)
	}
	second := readAll(t, store, f.ThumbnailPath(100))

	if !bytes.Equal(first, second) {
		t.Error("expected rerun to produce identical thumbnails")
	}
}

func TestProcessRejectsInvalidJobs(t *testing.T) {
	p, files, store := setupProcessor(t)
	addFile(t, files, store, "doc", model.FileTypeFile, []byte("hello"))
	addFile(t, files, store, "dir", model.FileTypeFolder, nil)
	addFile(t, files, store, "bad", model.FileTypeImage, []byte("not an image"))

	tests := []struct {
		name    string
		job     model.ThumbnailJob
		wantErr error
	}{
		{"missing file id", model.ThumbnailJob{UserID: "owner"}, ErrMissingFileID},
		{"missing user id", model.ThumbnailJob{FileID: "doc"}, ErrMissingUserID},
		{"unknown file", model.ThumbnailJob{UserID: "owner", FileID: "nope"}, ErrFileNotFound},
		{"other owner", model.ThumbnailJob{UserID: "someone", FileID: "doc"}, ErrFileNotFound},
		{"plain file", model.ThumbnailJob{UserID: "owner", FileID: "doc"}, nil},
		{"folder", model.ThumbnailJob{UserID: "owner", FileID: "dir"}, nil},
		{"undecodable image", model.ThumbnailJob{UserID: "owner", FileID: "bad"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Process(context.Background(), tt.job)
			if err == nil {
				t.Fatal("expected error")
			}
			if !IsPermanent(err) {
				t.Errorf("expected permanent error, got %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProcessTransientLookupFailure(t *testing.T) {
	p, files, _ := setupProcessor(t)
	files.err = errors.New("database is locked")

	err := p.Process(context.Background(), model.ThumbnailJob{UserID: "owner", FileID: "img"})
	if err == nil {
		t.Fatal("expected error")
	}
	if IsPermanent(err) {
		t.Error("expected lookup failure to be retryable")
	}
	if !strings.Contains(err.Error(), "database is locked") {
		t.Errorf("expected cause in error, got %v", err)
	}
}
