package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/GTDGit/gtd_shop/internal/models"
	"github.com/GTDGit/gtd_shop/internal/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
)

// adminStore is the persistence used by AdminAuthService.
type adminStore interface {
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
}

type AdminAuthService struct {
	adminRepo adminStore
	tokens    *utils.TokenIssuer
}

func NewAdminAuthService(adminRepo adminStore, tokens *utils.TokenIssuer) *AdminAuthService {
	return &AdminAuthService{adminRepo: adminRepo, tokens: tokens}
}

// Login verifies the admin's password and returns a session token.
func (s *AdminAuthService) Login(ctx context.Context, email, password string) (string, error) {
	log.Debug().Str("email", email).Msg("Login attempt")

	user, err := s.adminRepo.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error().Err(err).Str("email", email).Msg("Failed to get user by email")
		}
		return "", ErrInvalidCredentials
	}

	if !user.IsActive {
		log.Warn().Str("email", email).Msg("Account is inactive")
		return "", ErrAccountInactive
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		log.Warn().Str("email", email).Msg("Password verification failed")
		return "", ErrInvalidCredentials
	}

	log.Info().Str("email", email).Msg("Login successful")
	return s.tokens.Generate(user.ID, user.Email)
}

// EnsureAdmin creates the bootstrap admin account unless it already exists.
func (s *AdminAuthService) EnsureAdmin(ctx context.Context, email, password, name string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil
	}
	if _, err := s.adminRepo.GetByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user := &models.AdminUser{
		Email:        email,
		PasswordHash: string(hashedPassword),
		Name:         name,
		IsActive:     true,
	}
	if err := s.adminRepo.Create(ctx, user); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("Bootstrap admin created")
	return nil
}
