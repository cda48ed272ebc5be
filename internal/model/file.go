package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	FileTypeFolder = "folder"
	FileTypeFile   = "file"
	FileTypeImage  = "image"
)

// RootParentID is the parent of every top-level file.
const RootParentID = "0"

// ThumbnailWidths are the derivative widths rendered for every image.
var ThumbnailWidths = []int{500, 250, 100}

func IsValidFileType(t string) bool {
	switch t {
	case FileTypeFolder, FileTypeFile, FileTypeImage:
		return true
	}
	return false
}

type File struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Type      string    `db:"type" json:"type"`
	ParentID  ParentID  `db:"parent_id" json:"parentId"`
	IsPublic  bool      `db:"is_public" json:"isPublic"`
	LocalPath *string   `db:"local_path" json:"localPath,omitempty"` // nil for folders
	CreatedAt time.Time `db:"created_at" json:"-"`
}

func (f *File) IsFolder() bool {
	return f.Type == FileTypeFolder
}

// ThumbnailPath returns the storage key of the derivative at width.
func (f *File) ThumbnailPath(width int) string {
	if f.LocalPath == nil {
		return ""
	}
	return *f.LocalPath + "_" + strconv.Itoa(width)
}

// ParentID is a file reference that accepts the root sentinel as either
// the number 0 or the string "0" on input and writes root as 0.
type ParentID string

func (p ParentID) IsRoot() bool {
	return p == "" || p == RootParentID
}

func (p ParentID) String() string {
	if p.IsRoot() {
		return RootParentID
	}
	return string(p)
}

func (p ParentID) MarshalJSON() ([]byte, error) {
	if p.IsRoot() {
		return []byte("0"), nil
	}
	return json.Marshal(string(p))
}

func (p *ParentID) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*p = RootParentID
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = ParentID(strings.TrimSpace(s))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("parentId must be a string or 0: %w", err)
		}
		*p = ParentID(n.String())
	}
	if p.IsRoot() {
		*p = RootParentID
	}
	return nil
}
