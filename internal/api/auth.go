package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bullion/bullion-cli/internal/secrets"
)

// ErrEmptyToken means a login response carried no usable token.
var ErrEmptyToken = errors.New("login response did not include a token")

// Login exchanges credentials for a session token and stores it.
func (s AuthService) Login(ctx context.Context, email, password string) (*LoginData, error) {
	env, err := Do[LoginData](ctx, s.Client, Login(), map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(env.Data.Token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	if s.Secrets == nil {
		return nil, fmt.Errorf("no secret store configured")
	}
	if err := s.Secrets.Save(secrets.Service, secrets.AccountToken, token); err != nil {
		return nil, fmt.Errorf("failed to store session token: %w", err)
	}
	return &env.Data, nil
}

// Logout removes the stored session token. Logging out twice is not an error.
func (s AuthService) Logout(ctx context.Context) error {
	if s.Secrets == nil {
		return nil
	}
	if err := s.Secrets.Delete(secrets.Service, secrets.AccountToken); err != nil {
		return fmt.Errorf("failed to remove session token: %w", err)
	}
	return nil
}

// Token returns the stored session token and whether one exists.
func (s AuthService) Token() (string, bool, error) {
	if s.Secrets == nil {
		return "", false, nil
	}
	token, err := s.Secrets.Read(secrets.Service, secrets.AccountToken)
	if errors.Is(err, secrets.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	token = strings.TrimSpace(token)
	return token, token != "", nil
}

// Register creates a new admin account from form.
func (s AuthService) Register(ctx context.Context, form AdminForm) (*User, error) {
	env, err := DoMultipart[User](ctx, s.Client, Register(), form.Fields(), form.File())
	if err != nil {
		return nil, err
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	return &env.Data, nil
}
