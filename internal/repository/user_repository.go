package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/decoraops/quotation-service/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

type userRow struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE email = ?
		LIMIT 1
	`, email).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return rowToUser(row), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, email, password_hash, role, created_at
		FROM users
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return rowToUser(row), nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO users (id, name, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, user.ID, user.Name, user.Email, user.PasswordHash, string(user.Role), user.CreatedAt).Error
}

func rowToUser(row userRow) *model.User {
	return &model.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         model.Role(row.Role),
		CreatedAt:    row.CreatedAt,
	}
}
