package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/rxdesk/rxdesk/internal/domain"
	"github.com/rxdesk/rxdesk/pkg/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account is temporarily locked due to multiple failed login attempts")
	ErrAccountInactive    = errors.New("account is inactive")
)

const maxFailedAttempts = 5

const lockDuration = 15 * time.Minute

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.UserProfile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.UserProfile, error)
	Update(ctx context.Context, u *domain.UserProfile) error
}

type AuthService struct {
	userRepo   UserRepository
	jwtManager *auth.JWTManager
	auditSvc   *AuditService
	log        *zap.Logger
}

func NewAuthService(userRepo UserRepository, jwtManager *auth.JWTManager, auditSvc *AuditService, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, jwtManager: jwtManager, auditSvc: auditSvc, log: log}
}

func (s *AuthService) Login(ctx context.Context, email, password string, ip string) (*domain.TokenPair, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		// Use bcrypt dummy hash to prevent timing-based user enumeration.
		// An attacker measuring response time should not be able to determine
		// whether the email exists in the system.
		_, _ = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		user.FailedLoginCount++
		if user.FailedLoginCount >= maxFailedAttempts {
			until := time.Now().Add(lockDuration)
			user.LockedUntil = &until
			user.FailedLoginCount = 0
		}
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.log.Error("recording failed login attempt", zap.Error(err))
		}
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	user.FailedLoginCount = 0
	user.LockedUntil = nil
	user.LastLoginAt = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		s.log.Error("recording successful login", zap.Error(err))
	}

	pair, err := s.jwtManager.GenerateTokenPair(&domain.Claims{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		PharmacyID: user.PharmacyID,
	})
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAsync(ctx, AuditEntry{
		UserID: user.ID, UserRole: user.Role, PharmacyID: user.PharmacyID,
		Action: domain.ActionLogin, ResourceType: "session", ResourceID: user.ID.String(), IPAddress: ip,
	})

	return pair, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	// Re-load the user so role or deactivation changes take effect at refresh.
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return s.jwtManager.GenerateTokenPair(&domain.Claims{
		UserID:     user.ID,
		Email:      user.Email,
		Role:       user.Role,
		PharmacyID: user.PharmacyID,
	})
}
