package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Mathumitha-create/grievance-cell/internal/model"
	"github.com/Mathumitha-create/grievance-cell/internal/repository"
	"github.com/Mathumitha-create/grievance-cell/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SignupInput struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,min=6"`
	DisplayName *string `json:"display_name"`
	Role        *string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int64       `json:"expires_in"`
	User        *model.User `json:"user"`
	Role        model.Role  `json:"role"`
}

type AuthService interface {
	Signup(ctx context.Context, input SignupInput) (*AuthResponse, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
}

type authService struct {
	repo        repository.UserRepository
	resolver    RoleResolver
	secret      string
	tokenTTL    time.Duration
	emailDomain string
}

func NewAuthService(repo repository.UserRepository, resolver RoleResolver, secret string, tokenTTL time.Duration, emailDomain string) AuthService {
	return &authService{
		repo:        repo,
		resolver:    resolver,
		secret:      secret,
		tokenTTL:    tokenTTL,
		emailDomain: emailDomain,
	}
}

func (s *authService) Signup(ctx context.Context, input SignupInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	if s.emailDomain != "" && !strings.HasSuffix(email, "@"+s.emailDomain) {
		return nil, apperror.New(http.StatusBadRequest,
			fmt.Sprintf("please use your @%s email address", s.emailDomain), apperror.ErrInvalidInput)
	}

	role := model.RoleStudent
	if input.Role != nil && *input.Role != "" {
		role = model.Role(strings.ToLower(*input.Role))
		if !role.Valid() {
			return nil, apperror.New(http.StatusBadRequest, "unknown role", apperror.ErrInvalidInput)
		}
	}

	// Admin accounts must be recognizable from the email itself, so the
	// lexical derivation on a later fresh login agrees with the stored role.
	if role == model.RoleAdmin && !strings.Contains(email, "admin") {
		return nil, apperror.New(http.StatusBadRequest,
			"admin accounts must contain 'admin' in the email", apperror.ErrInvalidInput)
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperror.New(http.StatusConflict, "an account with this email already exists", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		DisplayName:  normalizeOptional(input.DisplayName),
		PasswordHash: string(hashedPassword),
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.New(http.StatusUnauthorized, "invalid credentials", apperror.ErrUnauthorized)
	}

	// The resolver backfills a role for accounts created before roles were
	// stored; a persisted role is returned as-is.
	user.Role = s.resolver.Resolve(ctx, Identity{
		ID:            user.ID,
		Email:         user.Email,
		EmailVerified: true,
	})

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *model.User) (*AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""

	return &AuthResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   expiresAt,
		User:        user,
		Role:        user.Role,
	}, nil
}

func (s *authService) generateToken(user *model.User) (string, int64, error) {
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
