package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"cv-builder/internal/domain/authtoken"
	"cv-builder/internal/domain/session"
	"cv-builder/internal/domain/user"
	"cv-builder/internal/infrastructure/mailer"
	"cv-builder/internal/pkg/jwt"
	"cv-builder/internal/pkg/logger"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountDisabled     = errors.New("account is deactivated")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	// ErrRefreshTokenReused means a rotated-out refresh token was presented
	// again; the session has been revoked.
	ErrRefreshTokenReused = errors.New("refresh token reuse detected")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAlreadyVerified    = errors.New("email already verified")
)

// dummyHash is compared against when the email is unknown so both login
// failures cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcrypt.DefaultCost)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Client    ClientInfo
}

type LoginInput struct {
	Email    string
	Password string
	Client   ClientInfo
}

// ClientInfo is recorded on the session opened for a request.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// Result is returned whenever a session is opened or its tokens rotated.
type Result struct {
	User         user.User
	SessionID    uuid.UUID
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

type Service struct {
	users    user.Repository
	sessions session.Repository
	tokens   authtoken.Repository
	jwt      jwt.Service
	mail     mailer.Mailer
	throttle Throttle

	frontendURL string
	now         func() time.Time
	log         *logger.Logger
}

type Deps struct {
	Users       user.Repository
	Sessions    session.Repository
	Tokens      authtoken.Repository
	JWT         jwt.Service
	Mailer      mailer.Mailer
	Throttle    Throttle
	FrontendURL string
	Logger      *logger.Logger
}

func NewService(d Deps) *Service {
	log := d.Logger
	if log == nil {
		log = logger.Nop()
	}
	throttle := d.Throttle
	if throttle == nil {
		throttle = alwaysAllow{}
	}
	return &Service{
		users:       d.Users,
		sessions:    d.Sessions,
		tokens:      d.Tokens,
		jwt:         d.JWT,
		mail:        d.Mailer,
		throttle:    throttle,
		frontendURL: d.FrontendURL,
		now:         time.Now,
		log:         log.Named("auth"),
	}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Result, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return Result{}, fmt.Errorf("hash password: %w", err)
	}

	u, err := s.users.Create(ctx, user.User{
		ID:           uuid.New(),
		Email:        user.NormalizeEmail(in.Email),
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
	})
	if err != nil {
		return Result{}, err
	}

	if err := s.sendVerification(ctx, u); err != nil {
		s.log.Warn("verification email not sent", "user_id", u.ID, "error", err)
	}

	return s.openSession(ctx, u, in.Client)
}

func (s *Service) Login(ctx context.Context, in LoginInput) (Result, error) {
	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(in.Password))
			return Result{}, ErrInvalidCredentials
		}
		return Result{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return Result{}, ErrInvalidCredentials
	}
	if !u.IsActive {
		return Result{}, ErrAccountDisabled
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("update last login failed", "user_id", u.ID, "error", err)
	}
	u.LastLoginAt = &now

	return s.openSession(ctx, u, in.Client)
}

func (s *Service) Me(ctx context.Context, userID uuid.UUID) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	return sanitizeUser(u), nil
}

func sanitizeUser(u user.User) user.User {
	u.PasswordHash = ""
	return u
}
