package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expira_em"`
}

type Service interface {
	// Register creates the account and its initial subscription record.
	Register(ctx context.Context, req RegisterRequest) (*Account, error)
	// Login verifies the credentials and issues a signed bearer token.
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	// Authenticate resolves a bearer token to an account id.
	Authenticate(ctx context.Context, rawToken string) (snowflake.ID, error)
}
