package apiclient

import (
	"context"
	"net/http"

	"github.com/safescrow/dashboard/pkg/authapi"
)

// UpdateProfile replaces the user's name and phone number and returns the
// refreshed profile.
func (c *Client) UpdateProfile(ctx context.Context, req authapi.UpdateProfileRequest) (*authapi.Profile, error) {
	var out authapi.Profile
	if err := c.do(ctx, http.MethodPut, "/user/profile", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ChangePassword(ctx context.Context, req authapi.ChangePasswordRequest) error {
	return c.do(ctx, http.MethodPut, "/user/password", req, nil)
}
