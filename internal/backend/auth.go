package backend

import (
	"context"
	"net/http"

	"github.com/tanicerdas/seedbot-console/model"
)

// LoginResult is the backend's successful login payload.
type LoginResult struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

// Login exchanges credentials for a bearer token and user record.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResult, error) {
	var out LoginResult
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	}, &out)
	return out, err
}

// Me validates a bearer token and returns the authoritative user record.
func (c *Client) Me(ctx context.Context, token string) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out)
	return out.User, err
}

// ForgotPassword starts the password reset flow for a username.
func (c *Client) ForgotPassword(ctx context.Context, username string) error {
	return c.do(ctx, http.MethodPost, "/auth/forgot-password", "", map[string]string{
		"username": username,
	}, nil)
}

// VerifyResetToken checks a reset token before allowing a new password.
func (c *Client) VerifyResetToken(ctx context.Context, username, token string) error {
	return c.do(ctx, http.MethodPost, "/auth/verify-reset-token", "", map[string]string{
		"username": username,
		"token":    token,
	}, nil)
}

// ResetPassword completes the reset flow with a verified token.
func (c *Client) ResetPassword(ctx context.Context, username, token, newPassword string) error {
	return c.do(ctx, http.MethodPost, "/auth/reset-password", "", map[string]string{
		"username":    username,
		"token":       token,
		"newPassword": newPassword,
	}, nil)
}
