// Package legacy imports records exported from the JSON-file era of the app.
package legacy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"esk/training-app/internal/domain"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	UsersFile     = "users.json"
	InvitesFile   = "invites.json"
	ExercisesFile = "exercises.json"
	TrainingsFile = "trainings.json"
)

type userRecord struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Password  string     `json:"password"` // bcrypt hash
	Role      string     `json:"role"`
	CreatedAt *time.Time `json:"createdAt"`
}

type inviteRecord struct {
	ID        string     `json:"id"`
	Code      string     `json:"code"`
	CreatedBy string     `json:"createdBy"`
	UsedBy    *string    `json:"usedBy"`
	UsedAt    *time.Time `json:"usedAt"`
	CreatedAt *time.Time `json:"createdAt"`
}

type exerciseRecord struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Images      []string   `json:"images"`
	Video       *string    `json:"video"`
	YoutubeURL  *string    `json:"youtubeUrl"`
	CreatedAt   *time.Time `json:"createdAt"`
}

type trainingRecord struct {
	ID          string     `json:"id"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	ExerciseIDs []string   `json:"exerciseIds"`
	CreatedAt   *time.Time `json:"createdAt"`
}

// Counts tallies what happened to the records of one file.
type Counts struct {
	Read     int
	Created  int
	Existing int
	Failed   int
}

type Report struct {
	Users     Counts
	Invites   Counts
	Exercises Counts
	Trainings Counts
}

// Importer inserts legacy records by id, leaving rows that already exist
// untouched. A bad record is logged and skipped.
type Importer struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewImporter(db *gorm.DB, logger *slog.Logger) *Importer {
	return &Importer{db: db, logger: logger}
}

// ImportDir reads the four export files from dir. Missing files count as empty.
func (im *Importer) ImportDir(ctx context.Context, dir string) (Report, error) {
	var report Report

	var users []userRecord
	if err := readJSON(filepath.Join(dir, UsersFile), &users); err != nil {
		return report, err
	}
	var invites []inviteRecord
	if err := readJSON(filepath.Join(dir, InvitesFile), &invites); err != nil {
		return report, err
	}
	var exercises []exerciseRecord
	if err := readJSON(filepath.Join(dir, ExercisesFile), &exercises); err != nil {
		return report, err
	}
	var trainings []trainingRecord
	if err := readJSON(filepath.Join(dir, TrainingsFile), &trainings); err != nil {
		return report, err
	}

	for _, r := range users {
		role := domain.Role(r.Role)
		if !role.Valid() {
			role = domain.RoleUser
		}
		u := &domain.User{
			ID:           r.ID,
			Name:         r.Name,
			Email:        strings.ToLower(strings.TrimSpace(r.Email)),
			PasswordHash: r.Password,
			Role:         role,
			CreatedAt:    orZero(r.CreatedAt),
		}
		im.insert(ctx, &report.Users, "user", r.ID, u)
	}

	for _, r := range invites {
		inv := &domain.Invite{
			ID:        r.ID,
			Code:      r.Code,
			CreatedBy: r.CreatedBy,
			UsedBy:    r.UsedBy,
			UsedAt:    r.UsedAt,
			CreatedAt: orZero(r.CreatedAt),
		}
		im.insert(ctx, &report.Invites, "invite", r.ID, inv)
	}

	for _, r := range exercises {
		ex := &domain.Exercise{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Images:      datatypes.JSONSlice[string](r.Images),
			Video:       r.Video,
			YoutubeURL:  r.YoutubeURL,
			CreatedAt:   orZero(r.CreatedAt),
		}
		im.insert(ctx, &report.Exercises, "exercise", r.ID, ex)
	}

	for _, r := range trainings {
		t := &domain.Training{
			ID:          r.ID,
			Date:        r.Date,
			Time:        r.Time,
			Location:    r.Location,
			Description: r.Description,
			ExerciseIDs: datatypes.JSONSlice[string](r.ExerciseIDs),
			CreatedAt:   orZero(r.CreatedAt),
		}
		im.insert(ctx, &report.Trainings, "training", r.ID, t)
	}

	return report, nil
}

// insert creates model unless a row with the same id exists.
func (im *Importer) insert(ctx context.Context, counts *Counts, kind, id string, model interface{}) {
	counts.Read++
	if id == "" {
		counts.Failed++
		im.logger.Warn("skipping record without id", "kind", kind)
		return
	}

	db := im.db.WithContext(ctx)
	var existing int64
	if err := db.Model(model).Where("id = ?", id).Count(&existing).Error; err != nil {
		counts.Failed++
		im.logger.Error("failed to look up record", "kind", kind, "id", id, "error", err)
		return
	}
	if existing > 0 {
		counts.Existing++
		return
	}

	if err := db.Create(model).Error; err != nil {
		counts.Failed++
		im.logger.Error("failed to import record", "kind", kind, "id", id, "error", err)
		return
	}
	counts.Created++
}

func readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func orZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
