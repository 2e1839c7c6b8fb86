package client

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	FullName    string     `json:"full_name"`
	IsVerified  bool       `json:"is_verified"`
	IsActive    bool       `json:"is_active"`
	IsPremium   bool       `json:"is_premium"`
	LastLoginAt *time.Time `json:"last_login_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type authResponse struct {
	User         User   `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

func (c *Client) storeAuth(res authResponse) Session {
	sess := Session{User: res.User, AccessToken: res.AccessToken, RefreshToken: res.RefreshToken}
	c.store.SetSession(sess)
	return sess
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (Session, error) {
	var res authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", req, &res, false); err != nil {
		return Session{}, err
	}
	return c.storeAuth(res), nil
}

func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	var res authResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", body, &res, false); err != nil {
		return Session{}, err
	}
	return c.storeAuth(res), nil
}

// Refresh rotates the token pair. A rejected refresh token clears the store.
func (c *Client) Refresh(ctx context.Context) (Session, error) {
	if c == nil {
		return Session{}, ErrNilClient
	}
	rt := c.store.RefreshToken()
	if rt == "" {
		return Session{}, ErrNotAuthenticated
	}
	var res authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/refresh-token", map[string]string{"refresh_token": rt}, &res, false)
	if err != nil {
		if IsStatus(err, http.StatusUnauthorized) {
			c.store.Clear()
		}
		return Session{}, err
	}
	return c.storeAuth(res), nil
}

// Logout revokes the current session. The store is cleared even when the
// server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if c == nil {
		return ErrNilClient
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, true)
	c.store.Clear()
	return err
}

func (c *Client) LogoutAll(ctx context.Context) (int, error) {
	var res struct {
		RevokedSessions int `json:"revoked_sessions"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/logout-all", nil, &res, true)
	c.store.Clear()
	return res.RevokedSessions, err
}

func (c *Client) Me(ctx context.Context) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u, true); err != nil {
		return User{}, err
	}
	c.store.SetUser(u)
	return u, nil
}

func (c *Client) UpdateMe(ctx context.Context, firstName, lastName string) (User, error) {
	body := map[string]string{"first_name": firstName, "last_name": lastName}
	var u User
	if err := c.do(ctx, http.MethodPut, "/api/auth/me", body, &u, true); err != nil {
		return User{}, err
	}
	c.store.SetUser(u)
	return u, nil
}

func (c *Client) ChangePassword(ctx context.Context, current, next string) error {
	body := map[string]string{"current_password": current, "new_password": next}
	return c.do(ctx, http.MethodPut, "/api/auth/change-password", body, nil, true)
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email}, nil, false)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	body := map[string]string{"token": token, "password": password}
	return c.do(ctx, http.MethodPost, "/api/auth/reset-password", body, nil, false)
}

func (c *Client) VerifyEmail(ctx context.Context, token string) (User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/verify-email/"+url.PathEscape(token), nil, &u, false); err != nil {
		return User{}, err
	}
	return u, nil
}

func (c *Client) ResendVerification(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/resend-verification", nil, nil, true)
}
