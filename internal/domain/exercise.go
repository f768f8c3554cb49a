// internal/domain/exercise.go
package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Exercise represents a single drill in the shared library.
type Exercise struct {
	ID          string                      `gorm:"primaryKey;size:64" json:"id"`
	Name        string                      `gorm:"not null;default:''" json:"name"`
	Description string                      `gorm:"type:text;not null;default:''" json:"description"`
	// Public upload paths, in display order.
	Images      datatypes.JSONSlice[string] `json:"images"`
	// Uploaded video path. May coexist with YoutubeURL.
	Video       *string                     `json:"video"`
	YoutubeURL  *string                     `gorm:"column:youtube_url" json:"youtubeUrl"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

// BeforeSave keeps the images column a JSON array.
func (e *Exercise) BeforeSave(tx *gorm.DB) error {
	if e.Images == nil {
		e.Images = datatypes.JSONSlice[string]{}
	}
	return nil
}

// ExercisePatch lists the fields a client may change on an existing exercise.
// Nil means "leave as is".
type ExercisePatch struct {
	Name        *string
	Description *string
	Images      *[]string
	Video       **string
	YoutubeURL  **string
}

// Apply merges the patch into e.
func (p ExercisePatch) Apply(e *Exercise) {
	if p.Name != nil {
		e.Name = *p.Name
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Images != nil {
		e.Images = append(datatypes.JSONSlice[string]{}, (*p.Images)...)
	}
	if p.Video != nil {
		e.Video = *p.Video
	}
	if p.YoutubeURL != nil {
		e.YoutubeURL = *p.YoutubeURL
	}
}
