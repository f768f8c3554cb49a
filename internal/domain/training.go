// internal/domain/training.go
package domain

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Training is a scheduled session on the team calendar. Date and Time are kept
// exactly as the admin entered them.
type Training struct {
	ID          string                      `gorm:"primaryKey;size:64" json:"id"`
	Date        string                      `gorm:"not null;default:''" json:"date"`
	Time        string                      `gorm:"not null;default:''" json:"time"`
	Location    string                      `gorm:"not null;default:''" json:"location"`
	Description string                      `gorm:"type:text;not null;default:''" json:"description"`
	ExerciseIDs datatypes.JSONSlice[string] `gorm:"column:exercise_ids" json:"exerciseIds"` // weak references, may dangle
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (t *Training) BeforeSave(tx *gorm.DB) error {
	if t.ExerciseIDs == nil {
		t.ExerciseIDs = datatypes.JSONSlice[string]{}
	}
	return nil
}

// TrainingPatch lists the fields a client may change on an existing training.
type TrainingPatch struct {
	Date        *string
	Time        *string
	Location    *string
	Description *string
	ExerciseIDs *[]string
}

func (p TrainingPatch) Apply(t *Training) {
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.Time != nil {
		t.Time = *p.Time
	}
	if p.Location != nil {
		t.Location = *p.Location
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.ExerciseIDs != nil {
		t.ExerciseIDs = append(datatypes.JSONSlice[string]{}, (*p.ExerciseIDs)...)
	}
}
