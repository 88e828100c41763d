package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/models"
)

var (
	// ErrInvalidToken indicates a credential that is malformed, tampered with or unknown.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a credential whose expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrRefreshTokenMismatch indicates a refresh token that is not the one stored for the account.
	ErrRefreshTokenMismatch = errors.New("refresh token is expired or used")
	// ErrSessionNotFound indicates the account has no stored refresh token.
	ErrSessionNotFound = errors.New("session not found")
)

// RefreshTokenStore persists the single active refresh token of each account.
type RefreshTokenStore interface {
	SaveRefreshToken(ctx context.Context, userID, token string) error
	FindRefreshToken(ctx context.Context, userID string) (string, error)
}

// Claims carried by access tokens. Refresh tokens only use the registered claims.
type Claims struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	FullName string `json:"fullName,omitempty"`
	jwt.RegisteredClaims
}

// Manager issues, verifies and rotates HS256 access and refresh tokens.
type Manager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration

	store RefreshTokenStore
	now   func() time.Time
}

// NewManager constructs a Manager from token configuration.
func NewManager(cfg config.TokenConfig, store RefreshTokenStore) (*Manager, error) {
	if store == nil {
		return nil, errors.New("auth: refresh token store must not be nil")
	}
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("auth: token secrets are required")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 24 * time.Hour
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 10 * 24 * time.Hour
	}
	return &Manager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     cfg.AccessTTL,
		refreshTTL:    cfg.RefreshTTL,
		store:         store,
		now:           func() time.Time { return time.Now().UTC() },
	}, nil
}

// Issue signs a new token pair for user and persists the refresh token.
func (m *Manager) Issue(ctx context.Context, user models.User) (models.SessionTokens, error) {
	if user.ID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now()
	access := Claims{
		Username:         user.Username,
		Email:            user.Email,
		FullName:         user.FullName,
		RegisteredClaims: registered(user.ID, now, m.accessTTL),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(m.accessSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh := Claims{RegisteredClaims: registered(user.ID, now, m.refreshTTL)}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(m.refreshSecret)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := m.store.SaveRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return models.SessionTokens{}, fmt.Errorf("persist refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      accessToken,
		AccessExpiresAt:  access.ExpiresAt.Time,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: refresh.ExpiresAt.Time,
	}, nil
}

// VerifyAccess validates an access token and returns its claims.
func (m *Manager) VerifyAccess(token string) (*Claims, error) {
	return m.parse(token, m.accessSecret)
}

// Refresh exchanges a refresh token for a new pair. The presented token must
// equal the one currently stored for the account.
func (m *Manager) Refresh(ctx context.Context, refreshToken string, load func(ctx context.Context, userID string) (models.User, error)) (models.SessionTokens, error) {
	claims, err := m.parse(refreshToken, m.refreshSecret)
	if err != nil {
		return models.SessionTokens{}, err
	}

	stored, err := m.store.FindRefreshToken(ctx, claims.Subject)
	if err != nil {
		return models.SessionTokens{}, err
	}
	if stored == "" {
		return models.SessionTokens{}, ErrSessionNotFound
	}
	if stored != refreshToken {
		return models.SessionTokens{}, ErrRefreshTokenMismatch
	}

	user, err := load(ctx, claims.Subject)
	if err != nil {
		return models.SessionTokens{}, err
	}

	return m.Issue(ctx, user)
}

// Revoke clears the stored refresh token of userID.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	return m.store.SaveRefreshToken(ctx, userID, "")
}

func (m *Manager) parse(token string, secret []byte) (*Claims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}
