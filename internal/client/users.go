package client

import (
	"context"
	"net/http"

	authdomain "taskboard/internal/auth/domain"
	authdto "taskboard/internal/auth/dto"
)

// Signup creates an account and logs in.
func (c *Client) Signup(ctx context.Context, name, email, password string) (*authdomain.User, error) {
	var resp authdto.TokenResponse
	err := c.do(ctx, http.MethodPost, "/users/signup", nil, authdto.SignupRequest{
		Name: name, Email: email, Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, c.session.Set(resp.Token, resp.RefreshToken, resp.User)
}

func (c *Client) Login(ctx context.Context, email, password string) (*authdomain.User, error) {
	var resp authdto.TokenResponse
	err := c.do(ctx, http.MethodPost, "/users/login", nil, authdto.LoginRequest{
		Email: email, Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, c.session.Set(resp.Token, resp.RefreshToken, resp.User)
}

// Logout revokes the refresh token when possible and always clears the session.
func (c *Client) Logout(ctx context.Context) error {
	if refresh := c.session.Refresh(); refresh != "" {
		_ = c.do(ctx, http.MethodPost, "/users/logout", nil, authdto.RefreshTokenRequest{RefreshToken: refresh}, nil)
	}
	return c.session.Clear()
}

func (c *Client) Me(ctx context.Context) (*authdomain.User, error) {
	var resp struct {
		User *authdomain.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Init restores a stored session: with a token present the profile is
// fetched; a 401 logs out silently and returns a nil user.
func (c *Client) Init(ctx context.Context) (*authdomain.User, error) {
	if !c.session.LoggedIn() {
		return nil, nil
	}
	user, err := c.Me(ctx)
	if IsStatus(err, http.StatusUnauthorized) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, c.session.SetUser(user)
}
