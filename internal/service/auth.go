package service

import (
	"context"
	"errors"
	"strings"

	"shotapi/internal/auth"
	"shotapi/internal/model"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// LoginResult is returned on a successful login. ExpiresIn is in seconds.
type LoginResult struct {
	Token     string `json:"token"`
	Username  string `json:"username"`
	ExpiresIn int64  `json:"expiresIn"`
}

// AuthService logs the single configured user in and checks session tokens.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Authenticate(token string) (*auth.Claims, error)
}

type authService struct {
	creds    auth.Credentials
	tokens   *auth.TokenService
	activity ActivityService
}

// NewAuthService constructs an AuthService.
func NewAuthService(creds auth.Credentials, tokens *auth.TokenService, activity ActivityService) AuthService {
	return &authService{creds: creds, tokens: tokens, activity: activity}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if !s.creds.Check(username, password) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		return nil, err
	}

	s.activity.Record(WithActor(ctx, username), model.ActionLogin, "", "")
	return &LoginResult{
		Token:     token,
		Username:  username,
		ExpiresIn: int64(s.tokens.TTL().Seconds()),
	}, nil
}

// Authenticate verifies token and returns its claims. Errors are the auth
// package sentinels.
func (s *authService) Authenticate(token string) (*auth.Claims, error) {
	return s.tokens.Verify(token)
}
