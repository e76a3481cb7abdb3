package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/outloud-backend/internal/data/repos"
	"github.com/yungbote/outloud-backend/internal/domain"
	"github.com/yungbote/outloud-backend/internal/pkg/dbctx"
	"github.com/yungbote/outloud-backend/internal/platform/apierr"
	"github.com/yungbote/outloud-backend/internal/platform/ctxutil"
	"github.com/yungbote/outloud-backend/internal/platform/logger"
)

const (
	bcryptCost    = 12
	tokenLifetime = 7 * 24 * time.Hour
)

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AuthService interface {
	Signup(ctx context.Context, username, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
	CreateGuest(ctx context.Context) (*AuthResult, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	// ParseToken verifies a bearer token and returns the identity it
	// carries. The identity is a capability claim, not re-checked
	// against the store.
	ParseToken(token string) (*ctxutil.RequestData, error)
}

type authService struct {
	log       *logger.Logger
	users     repos.UserRepo
	jwtSecret []byte
}

func NewAuthService(users repos.UserRepo, jwtSecret string, log *logger.Logger) (AuthService, error) {
	if strings.TrimSpace(jwtSecret) == "" {
		return nil, fmt.Errorf("missing JWT secret")
	}
	return &authService{
		log:       log.With("service", "AuthService"),
		users:     users,
		jwtSecret: []byte(jwtSecret),
	}, nil
}

func (s *authService) Signup(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 30 {
		return nil, apierr.Newf(http.StatusBadRequest, "invalid_username", "username must be 3-30 characters")
	}
	if len(password) < 6 {
		return nil, apierr.Newf(http.StatusBadRequest, "invalid_password", "password must be at least 6 characters")
	}

	dbc := dbctx.New(ctx)
	if _, err := s.users.GetByUsername(dbc, username); err == nil {
		return nil, apierr.Newf(http.StatusBadRequest, "username_taken", "username already taken")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)

	user, err := s.users.Create(dbc, &domain.User{
		Username:     username,
		PasswordHash: &hashStr,
		IsGuest:      false,
	})
	if err != nil {
		// Concurrent signups can slip past the existence check.
		if repos.IsUniqueViolation(err) {
			return nil, apierr.Newf(http.StatusBadRequest, "username_taken", "username already taken")
		}
		return nil, err
	}

	return s.issue(user)
}

func (s *authService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	dbc := dbctx.New(ctx)

	user, err := s.users.GetByUsername(dbc, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Newf(http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
		}
		return nil, err
	}

	if user.IsGuest || user.PasswordHash == nil {
		return nil, apierr.Newf(http.StatusBadRequest, "guest_login_not_allowed", "guest users cannot log in with password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password)); err != nil {
		return nil, apierr.Newf(http.StatusUnauthorized, "invalid_credentials", "invalid username or password")
	}

	return s.issue(user)
}

func (s *authService) CreateGuest(ctx context.Context) (*AuthResult, error) {
	dbc := dbctx.New(ctx)

	user, err := s.users.Create(dbc, &domain.User{
		Username: "guest_" + randomHex(4),
		IsGuest:  true,
	})
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(dbctx.New(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.Newf(http.StatusNotFound, "user_not_found", "user not found")
		}
		return nil, err
	}
	return user, nil
}

type tokenClaims struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	IsGuest  bool   `json:"isGuest"`
	jwt.RegisteredClaims
}

func (s *authService) issue(user *domain.User) (*AuthResult, error) {
	now := time.Now()
	claims := tokenClaims{
		UserID:   user.ID.String(),
		Username: user.Username,
		IsGuest:  user.IsGuest,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) ParseToken(token string) (*ctxutil.RequestData, error) {
	var claims tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apierr.Newf(http.StatusUnauthorized, "unauthorized", "invalid or expired token")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apierr.Newf(http.StatusUnauthorized, "unauthorized", "invalid token subject")
	}

	return &ctxutil.RequestData{
		UserID:   userID,
		Username: claims.Username,
		IsGuest:  claims.IsGuest,
	}, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
