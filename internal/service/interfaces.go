// Package service holds the account operations shared by the command line
// and the terminal UI: local form validation followed by the remote call
// and the session update.
package service

import (
	"context"

	"github.com/equipeadalove/aduana/internal/model"
)

// AccountBackend is the part of the API the account service calls.
type AccountBackend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, reg model.Registration) error
	RequestPasswordRecovery(ctx context.Context, email string) error
	VerifyRecoveryCode(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, code, newPassword string) error
	UpdatePassword(ctx context.Context, current, newPassword string) error
	Profile(ctx context.Context) (model.UserProfile, error)
}

// SessionManager records logins and logouts.
type SessionManager interface {
	Login(ctx context.Context, token, email string) error
	Logout(ctx context.Context) error
	Email() string
}
