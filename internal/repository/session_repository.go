package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/decoraops/quotation-service/internal/model"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	return r.db.WithContext(ctx).Exec(`
		INSERT INTO sessions (token, user_id, role, email, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, session.Token, session.UserID, string(session.Role), session.Email, session.CreatedAt, session.ExpiresAt).Error
}

// GetByToken returns (nil, nil) for unknown or expired tokens.
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	var row struct {
		Token     string
		UserID    uuid.UUID
		Role      string
		Email     string
		CreatedAt time.Time
		ExpiresAt time.Time
	}
	if err := r.db.WithContext(ctx).Raw(`
		SELECT token, user_id, role, email, created_at, expires_at
		FROM sessions
		WHERE token = ? AND expires_at > NOW()
		LIMIT 1
	`, token).Scan(&row).Error; err != nil {
		return nil, err
	}
	if row.Token == "" {
		return nil, nil
	}
	return &model.Session{
		Token:     row.Token,
		UserID:    row.UserID,
		Role:      model.Role(row.Role),
		Email:     row.Email,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Exec(`DELETE FROM sessions WHERE token = ?`, token).Error
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) error {
	return r.db.WithContext(ctx).Exec(`DELETE FROM sessions WHERE expires_at <= NOW()`).Error
}
