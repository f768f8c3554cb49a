package domain

import (
	"time"
)

// MediaType is the coarse class of an uploaded file.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Upload stores metadata about a file an admin uploaded. The bytes live in the
// configured FileStorage under ObjectKey.
type Upload struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	ObjectKey   string    `gorm:"not null;uniqueIndex" json:"-"` // e.g. "images/1700000000000-drill.png"
	FileName    string    `gorm:"not null" json:"filename"`
	Path        string    `gorm:"not null" json:"path"` // public path under /uploads
	Type        MediaType `gorm:"size:16;not null" json:"type"`
	ContentType string    `gorm:"not null" json:"contentType"`
	Size        int64     `json:"size"`
	UploadedBy  string    `gorm:"size:64;not null" json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
