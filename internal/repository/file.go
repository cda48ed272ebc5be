package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/templui/filesmanager/internal/model"
	"github.com/templui/filesmanager/internal/pagination"
)

var (
	ErrFileNotFound = errors.New("file not found")
)

type FileRepository interface {
	Create(ctx context.Context, file *model.File) error
	ByID(ctx context.Context, id string) (*model.File, error)
	ByIDAndUser(ctx context.Context, id, userID string) (*model.File, error)
	Page(ctx context.Context, userID string, parentID model.ParentID, page int) ([]*model.File, error)
	SetPublic(ctx context.Context, id, userID string, isPublic bool) (*model.File, error)
	Count(ctx context.Context) (int64, error)
}

type fileRepository struct {
	db *sqlx.DB
}

func NewFileRepository(db *sqlx.DB) FileRepository {
	return &fileRepository{db: db}
}

// Create inserts file and fills in the storage-assigned ID. IDs are UUIDv7,
// so ordering by id is insertion order.
func (r *fileRepository) Create(ctx context.Context, file *model.File) error {
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	file.ID = id.String()
	file.ParentID = model.ParentID(file.ParentID.String())
	if file.CreatedAt.IsZero() {
		file.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO files (id, user_id, name, type, parent_id, is_public, local_path, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.ExecContext(ctx, query,
		file.ID,
		file.UserID,
		file.Name,
		file.Type,
		file.ParentID,
		file.IsPublic,
		file.LocalPath,
		file.CreatedAt,
	)

	return err
}

func (r *fileRepository) ByID(ctx context.Context, id string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1`

	err := r.db.GetContext(ctx, file, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) ByIDAndUser(ctx context.Context, id, userID string) (*model.File, error) {
	file := &model.File{}
	query := `SELECT * FROM files WHERE id = $1 AND user_id = $2`

	err := r.db.GetContext(ctx, file, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

// Page returns the direct children of parentID owned by userID, in
// insertion order, pagination.PageSize at a time.
func (r *fileRepository) Page(ctx context.Context, userID string, parentID model.ParentID, page int) ([]*model.File, error) {
	files := []*model.File{}
	query := `SELECT * FROM files WHERE user_id = $1 AND parent_id = $2 ORDER BY id LIMIT $3 OFFSET $4`

	err := r.db.SelectContext(ctx, &files, query, userID, parentID.String(), pagination.PageSize, pagination.Offset(page))
	if err != nil {
		return nil, err
	}

	return files, nil
}

// SetPublic flips the visibility flag in a single statement so concurrent
// writers on the same row cannot interleave. A file owned by someone else
// is reported as ErrFileNotFound.
func (r *fileRepository) SetPublic(ctx context.Context, id, userID string, isPublic bool) (*model.File, error) {
	file := &model.File{}
	query := `UPDATE files SET is_public = $1 WHERE id = $2 AND user_id = $3 RETURNING *`

	err := r.db.GetContext(ctx, file, query, isPublic, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (r *fileRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM files`)
	return n, err
}
