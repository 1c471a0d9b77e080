package repository

import (
	"context"

	"tokenvault/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

// EnsureUser returns the user with the given id, inserting it from the session
// principal when it does not exist yet.
func (r *UserRepository) EnsureUser(ctx context.Context, id, email string) (*models.User, error) {
	u := &models.User{ID: id, Email: email}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(u).Error
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByPublicTag returns users whose stored tag equals tag, oldest first.
func (r *UserRepository) FindByPublicTag(ctx context.Context, tag string) ([]models.User, error) {
	var list []models.User
	err := r.db.WithContext(ctx).Where("public_tag = ?", tag).
		Order("created_at ASC").Order("id ASC").
		Find(&list).Error
	return list, err
}

// FindByPublicParts matches on the decomposed {prefix, suffix} pair, oldest first.
func (r *UserRepository) FindByPublicParts(ctx context.Context, prefix, suffix string) ([]models.User, error) {
	var list []models.User
	err := r.db.WithContext(ctx).
		Where("public_prefix = ? AND public_suffix = ?", prefix, suffix).
		Order("created_at ASC").Order("id ASC").
		Find(&list).Error
	return list, err
}

func (r *UserRepository) CountByPublicPrefix(ctx context.Context, prefix string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("public_prefix = ?", prefix).Count(&n).Error
	return n, err
}

func (r *UserRepository) UpdateFCMToken(ctx context.Context, id, token string) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("fcm_token", token).Error
}
