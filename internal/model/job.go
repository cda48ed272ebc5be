package model

// ThumbnailJob asks a worker to render the derivatives of one image.
type ThumbnailJob struct {
	UserID string `json:"userId"`
	FileID string `json:"fileId"`
}
