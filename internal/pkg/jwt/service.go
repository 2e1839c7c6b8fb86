package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrSignatureInvalid = errors.New("token signature invalid")
)

// Claims carries the user and the server-side session backing the token.
// A token is only honoured while its session is alive.
type Claims struct {
	UserID    uuid.UUID `json:"user_id"`
	SessionID uuid.UUID `json:"sid"`
	Email     string    `json:"email,omitempty"`
	TokenType string    `json:"token_type"`

	IssuedAt  time.Time `json:"issued_at"`
	ExpiredAt time.Time `json:"expired_at"`

	jwtlib.RegisteredClaims
}

type Service interface {
	GenerateAccessToken(userID, sessionID uuid.UUID, email string) (string, error)
	GenerateRefreshToken(userID, sessionID uuid.UUID) (string, error)
	ValidateToken(tokenString string) (Claims, error)
	IsRefreshToken(claims Claims) bool
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type HMACService struct {
	accessSecret  []byte
	refreshSecret []byte

	accessExpiresIn  time.Duration
	refreshExpiresIn time.Duration

	issuer string
	now    func() time.Time
}

func NewHMACService(accessSecret, refreshSecret string, accessExpiresIn, refreshExpiresIn time.Duration) *HMACService {
	return &HMACService{
		accessSecret:     []byte(accessSecret),
		refreshSecret:    []byte(refreshSecret),
		accessExpiresIn:  accessExpiresIn,
		refreshExpiresIn: refreshExpiresIn,
		issuer:           "cv-builder",
		now:              time.Now,
	}
}

// WithClock replaces the time source. Used by tests.
func (s *HMACService) WithClock(now func() time.Time) *HMACService {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *HMACService) AccessTTL() time.Duration  { return s.accessExpiresIn }
func (s *HMACService) RefreshTTL() time.Duration { return s.refreshExpiresIn }

func (s *HMACService) GenerateAccessToken(userID, sessionID uuid.UUID, email string) (string, error) {
	return s.generate(TokenTypeAccess, userID, sessionID, email)
}

func (s *HMACService) GenerateRefreshToken(userID, sessionID uuid.UUID) (string, error) {
	return s.generate(TokenTypeRefresh, userID, sessionID, "")
}

func (s *HMACService) ValidateToken(tokenString string) (Claims, error) {
	var lastErr error

	claims, err := s.validateWithSecret(tokenString, s.accessSecret)
	if err == nil {
		return claims, nil
	}
	lastErr = err

	claims, err = s.validateWithSecret(tokenString, s.refreshSecret)
	if err == nil {
		return claims, nil
	}

	switch {
	case errors.Is(lastErr, ErrTokenExpired) || errors.Is(err, ErrTokenExpired):
		return Claims{}, ErrTokenExpired
	case errors.Is(lastErr, ErrTokenMalformed):
		return Claims{}, ErrTokenMalformed
	case errors.Is(lastErr, ErrSignatureInvalid) && errors.Is(err, ErrSignatureInvalid):
		return Claims{}, ErrSignatureInvalid
	default:
		return Claims{}, ErrTokenInvalid
	}
}

func (s *HMACService) IsRefreshToken(claims Claims) bool {
	return claims.TokenType == TokenTypeRefresh
}

func (s *HMACService) generate(tokenType string, userID, sessionID uuid.UUID, email string) (string, error) {
	if userID == uuid.Nil || sessionID == uuid.Nil {
		return "", ErrTokenInvalid
	}

	now := s.now()
	secret, expIn, err := s.secretAndExpiry(tokenType)
	if err != nil {
		return "", err
	}

	exp := now.Add(expIn)

	c := Claims{
		UserID:    userID,
		SessionID: sessionID,
		Email:     email,
		TokenType: tokenType,
		IssuedAt:  now.UTC(),
		ExpiredAt: exp.UTC(),
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			IssuedAt:  jwtlib.NewNumericDate(now.UTC()),
			ExpiresAt: jwtlib.NewNumericDate(exp.UTC()),
			Subject:   userID.String(),
		},
	}

	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c)
	return t.SignedString(secret)
}

func (s *HMACService) validateWithSecret(tokenString string, secret []byte) (Claims, error) {
	p := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithTimeFunc(s.now),
	)

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(token *jwtlib.Token) (any, error) {
		return secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwtlib.ErrTokenMalformed):
			return Claims{}, ErrTokenMalformed
		case errors.Is(err, jwtlib.ErrTokenSignatureInvalid):
			return Claims{}, ErrSignatureInvalid
		case errors.Is(err, jwtlib.ErrTokenExpired):
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid {
		return Claims{}, ErrTokenInvalid
	}

	now := s.now().UTC()
	if !c.ExpiredAt.IsZero() && now.After(c.ExpiredAt.UTC()) {
		return Claims{}, ErrTokenExpired
	}

	if c.TokenType != TokenTypeAccess && c.TokenType != TokenTypeRefresh {
		return Claims{}, ErrTokenInvalid
	}
	if c.UserID == uuid.Nil || c.SessionID == uuid.Nil {
		return Claims{}, ErrTokenInvalid
	}

	return c, nil
}

func (s *HMACService) secretAndExpiry(tokenType string) ([]byte, time.Duration, error) {
	switch tokenType {
	case TokenTypeAccess:
		if len(s.accessSecret) == 0 || s.accessExpiresIn <= 0 {
			return nil, 0, ErrTokenInvalid
		}
		return s.accessSecret, s.accessExpiresIn, nil
	case TokenTypeRefresh:
		if len(s.refreshSecret) == 0 || s.refreshExpiresIn <= 0 {
			return nil, 0, ErrTokenInvalid
		}
		return s.refreshSecret, s.refreshExpiresIn, nil
	default:
		return nil, 0, ErrTokenInvalid
	}
}
