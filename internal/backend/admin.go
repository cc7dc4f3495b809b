package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/tanicerdas/seedbot-console/model"
)

// UserInput is the writable subset of a farmer account.
type UserInput struct {
	Username string `json:"username"`
	FullName string `json:"fullName"`
	Password string `json:"password,omitempty"`
}

// ListUsers returns all farmer accounts.
func (c *Client) ListUsers(ctx context.Context, token string) ([]model.User, error) {
	var out struct {
		Users []model.User `json:"users"`
	}
	err := c.do(ctx, http.MethodGet, "/admin/users", token, nil, &out)
	return out.Users, err
}

// CreateUser registers a new farmer account.
func (c *Client) CreateUser(ctx context.Context, token string, in UserInput) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPost, "/admin/users", token, in, &out)
	return out.User, err
}

// UpdateUser modifies a farmer account.
func (c *Client) UpdateUser(ctx context.Context, token, id string, in UserInput) (model.User, error) {
	var out struct {
		User model.User `json:"user"`
	}
	err := c.do(ctx, http.MethodPut, "/admin/users/"+url.PathEscape(id), token, in, &out)
	return out.User, err
}

// DeleteUser removes a farmer account.
func (c *Client) DeleteUser(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), token, nil, nil)
}

// DefaultParameters are the system-wide sowing defaults managed by the
// admin. The backend returns them as a flat object rather than an
// envelope.
type DefaultParameters struct {
	DefaultDepth   float64 `json:"defaultDepth"`
	DefaultSpacing float64 `json:"defaultSpacing"`
}

// GetDefaultParameters returns the system-wide default sowing parameters.
func (c *Client) GetDefaultParameters(ctx context.Context, token string) (DefaultParameters, error) {
	var out DefaultParameters
	err := c.do(ctx, http.MethodGet, "/admin/parameters", token, nil, &out)
	return out, err
}

// UpdateDefaultParameters replaces the system-wide defaults. The backend
// echoes the stored values.
func (c *Client) UpdateDefaultParameters(ctx context.Context, token string, p DefaultParameters) (DefaultParameters, error) {
	var out DefaultParameters
	err := c.do(ctx, http.MethodPut, "/admin/parameters", token, p, &out)
	return out, err
}

// ChangePassword updates the calling user's password. The same payload
// shape serves both the admin and farmer endpoints.
type ChangePassword struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangeAdminPassword updates the admin's password.
func (c *Client) ChangeAdminPassword(ctx context.Context, token string, in ChangePassword) error {
	return c.do(ctx, http.MethodPut, "/admin/change-password", token, in, nil)
}
