package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/decoraops/quotation-service/internal/auth"
	"github.com/decoraops/quotation-service/internal/model"
	"github.com/decoraops/quotation-service/internal/repository"
	"github.com/decoraops/quotation-service/internal/workflow"
)

// AuthService owns the session lifecycle: sessions are created at login,
// deleted at logout, and no other component writes them.
type AuthService struct {
	users     *repository.UserRepository
	sessions  *repository.SessionRepository
	tokens    *auth.Manager
	workflows *workflow.Manager
	log       zerolog.Logger
	now       func() time.Time
}

func NewAuthService(users *repository.UserRepository, sessions *repository.SessionRepository, tokens *auth.Manager, workflows *workflow.Manager, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:     users,
		sessions:  sessions,
		tokens:    tokens,
		workflows: workflows,
		log:       log,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) error {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if name == "" || email == "" || input.Password == "" {
		return fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}

	role, ok := model.ParseRole(input.Role)
	if !ok {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, input.Role)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return ErrEmailTaken
	} else if err != gorm.ErrRecordNotFound {
		return err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return err
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(role)).Msg("user registered")
	return nil
}

type LoginResult struct {
	SessionID string    `json:"sessionId"`
	UserID    uuid.UUID `json:"userId"`
	Role      model.Role `json:"role"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	token, expiresAt, err := s.tokens.Issue(*user, now)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		Token:     token,
		UserID:    user.ID,
		Role:      user.Role,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID.String()).Str("role", string(user.Role)).Msg("login")
	return &LoginResult{
		SessionID: token,
		UserID:    user.ID,
		Role:      user.Role,
		Email:     user.Email,
		Name:      user.Name,
	}, nil
}

// Logout removes the session and the workflow state tied to it. The in-memory
// draft, if any, dies with the session.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}
	s.workflows.Drop(token)
	return nil
}
