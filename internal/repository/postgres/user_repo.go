package postgres

import (
	"context"

	"esk/training-app/internal/domain"
	"esk/training-app/internal/repository"

	"gorm.io/gorm"
)

// gormUserRepository implements the repository.UserRepository interface using gorm.
type gormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of gormUserRepository.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &gormUserRepository{db: db}
}

// Create inserts a new user into the database.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	return translate(conn(ctx, r.db).Create(user).Error)
}

func (r *gormUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := conn(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByEmail retrieves a user by email address, ignoring case. Rows imported
// from older data may still carry mixed-case addresses.
func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := conn(ctx, r.db).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *gormUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := conn(ctx, r.db).Model(&domain.User{}).Count(&n).Error
	return n, err
}

func (r *gormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	users := []domain.User{}
	if err := conn(ctx, r.db).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *gormUserRepository) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	result := conn(ctx, r.db).Model(&domain.User{}).Where("id = ?", id).Update("role", role)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gormUserRepository) Delete(ctx context.Context, id string) error {
	result := conn(ctx, r.db).Delete(&domain.User{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
