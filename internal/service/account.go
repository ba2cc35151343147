package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/equipeadalove/aduana/internal/api"
	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/model"
)

// CodeLength is the number of digits in a password recovery code.
const CodeLength = 6

// Messages shown after local validation.
const (
	MsgFillAllFields     = "Please fill in all fields."
	MsgFillEmail         = "Please fill in the email field."
	MsgPasswordsMismatch = "The passwords do not match."
	MsgIncompleteCode    = "Please type the complete code."
	MsgRecoveryExpired   = "Invalid session. Start the recovery again."
)

// Account performs login, sign-up and password operations.
type Account struct {
	backend AccountBackend
	session SessionManager
}

// NewAccount creates the account service.
func NewAccount(backend AccountBackend, session SessionManager) *Account {
	return &Account{backend: backend, session: session}
}

// Login authenticates and starts a session. Empty fields are rejected
// before any request.
func (a *Account) Login(ctx context.Context, email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return common.Invalid(MsgFillAllFields)
	}

	token, err := a.backend.Login(ctx, email, password)
	if err != nil {
		return common.NewUserError(api.Message(err, "An error occurred while logging in."), err)
	}
	if err := a.session.Login(ctx, token, email); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	slog.Info("Logged in", "email", email)
	return nil
}

// Logout ends the session.
func (a *Account) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// Signup creates an account. It does not log in.
func (a *Account) Signup(ctx context.Context, reg model.Registration, confirmation string) error {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Name == "" || reg.Email == "" || reg.Password == "" || confirmation == "" {
		return common.Invalid(MsgFillAllFields)
	}
	if reg.Password != confirmation {
		return common.Invalid(MsgPasswordsMismatch)
	}

	if err := a.backend.Register(ctx, reg); err != nil {
		return common.NewUserError(api.Message(err, "An error occurred while creating the account."), err)
	}
	slog.Info("Account created", "email", reg.Email)
	return nil
}

// RequestRecovery sends a recovery code to email.
func (a *Account) RequestRecovery(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return common.Invalid(MsgFillEmail)
	}
	if err := a.backend.RequestPasswordRecovery(ctx, email); err != nil {
		return common.NewUserError(api.Message(err, "Error connecting to the server."), err)
	}
	return nil
}

// VerifyCode checks a recovery code. The code must have CodeLength digits.
func (a *Account) VerifyCode(ctx context.Context, email, code string) error {
	code = strings.TrimSpace(code)
	if strings.TrimSpace(email) == "" {
		return common.Invalid(MsgRecoveryExpired)
	}
	if !validCode(code) {
		return common.Invalid(MsgIncompleteCode)
	}
	if err := a.backend.VerifyRecoveryCode(ctx, strings.TrimSpace(email), code); err != nil {
		return common.NewUserError(api.Message(err, "Error verifying the code."), err)
	}
	return nil
}

// ResetPassword sets a new password using a verified recovery code.
func (a *Account) ResetPassword(ctx context.Context, email, code, password, confirmation string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(code) == "" {
		return common.Invalid(MsgRecoveryExpired)
	}
	if password == "" || confirmation == "" {
		return common.Invalid(MsgFillAllFields)
	}
	if password != confirmation {
		return common.Invalid(MsgPasswordsMismatch)
	}
	if err := a.backend.ResetPassword(ctx, strings.TrimSpace(email), strings.TrimSpace(code), password); err != nil {
		return common.NewUserError(api.Message(err, "Error resetting the password."), err)
	}
	return nil
}

// UpdatePassword changes the password of the logged-in user and ends the
// session so the user logs in again with the new one.
func (a *Account) UpdatePassword(ctx context.Context, current, password, confirmation string) error {
	if current == "" || password == "" || confirmation == "" {
		return common.Invalid(MsgFillAllFields)
	}
	if password != confirmation {
		return common.Invalid("The new password and its confirmation do not match.")
	}
	if err := a.backend.UpdatePassword(ctx, current, password); err != nil {
		return common.NewUserError(api.Message(err, "Error updating the password."), err)
	}
	slog.Info("Password updated", "email", a.session.Email())
	return a.Logout(ctx)
}

// Profile returns the logged-in user's profile.
func (a *Account) Profile(ctx context.Context) (model.UserProfile, error) {
	profile, err := a.backend.Profile(ctx)
	if err != nil {
		return model.UserProfile{}, common.NewUserError(api.Message(err, "Could not load the profile."), err)
	}
	return profile, nil
}

func validCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
