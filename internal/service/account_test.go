package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipeadalove/aduana/internal/api"
	"github.com/equipeadalove/aduana/internal/common"
	"github.com/equipeadalove/aduana/internal/model"
)

type mockBackend struct {
	loginErr    error
	err         error
	calls       []string
	token       string
	lastCode    string
	lastNewPass string
	profile     model.UserProfile
}

func (m *mockBackend) Login(_ context.Context, _, _ string) (string, error) {
	m.calls = append(m.calls, "login")
	return m.token, m.loginErr
}

func (m *mockBackend) Register(context.Context, model.Registration) error {
	m.calls = append(m.calls, "register")
	return m.err
}

func (m *mockBackend) RequestPasswordRecovery(context.Context, string) error {
	m.calls = append(m.calls, "recover")
	return m.err
}

func (m *mockBackend) VerifyRecoveryCode(_ context.Context, _, code string) error {
	m.calls = append(m.calls, "verify")
	m.lastCode = code
	return m.err
}

func (m *mockBackend) ResetPassword(_ context.Context, _, _, newPassword string) error {
	m.calls = append(m.calls, "reset")
	m.lastNewPass = newPassword
	return m.err
}

func (m *mockBackend) UpdatePassword(_ context.Context, _, newPassword string) error {
	m.calls = append(m.calls, "update")
	m.lastNewPass = newPassword
	return m.err
}

func (m *mockBackend) Profile(context.Context) (model.UserProfile, error) {
	m.calls = append(m.calls, "profile")
	return m.profile, m.err
}

type fakeSession struct {
	token    string
	email    string
	loggedIn bool
}

func (s *fakeSession) Login(_ context.Context, token, email string) error {
	s.token, s.email, s.loggedIn = token, email, true
	return nil
}

func (s *fakeSession) Logout(context.Context) error {
	s.token, s.email, s.loggedIn = "", "", false
	return nil
}

func (s *fakeSession) Email() string { return s.email }

func TestLogin(t *testing.T) {
	backend := &mockBackend{token: "tok"}
	sess := &fakeSession{}
	account := NewAccount(backend, sess)

	require.NoError(t, account.Login(context.Background(), " ana@example.com ", "secret"))
	assert.True(t, sess.loggedIn)
	assert.Equal(t, "tok", sess.token)
	assert.Equal(t, "ana@example.com", sess.email)
}

func TestLogin_EmptyFieldsMakeNoRequest(t *testing.T) {
	backend := &mockBackend{}
	account := NewAccount(backend, &fakeSession{})

	err := account.Login(context.Background(), "", "secret")
	require.ErrorIs(t, err, common.ErrValidation)
	msg, _ := common.UserMessage(err)
	assert.Equal(t, MsgFillAllFields, msg)
	assert.Empty(t, backend.calls)
}

func TestLogin_ServerDetailShown(t *testing.T) {
	backend := &mockBackend{loginErr: &api.APIError{Status: 401, Detail: "Incorrect email or password"}}
	sess := &fakeSession{}
	account := NewAccount(backend, sess)

	err := account.Login(context.Background(), "ana@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Incorrect email or password", api.Message(err, ""))
	assert.False(t, sess.loggedIn)
}

func TestSignup(t *testing.T) {
	tests := []struct {
		name    string
		reg     model.Registration
		confirm string
		wantMsg string
		calls   int
	}{
		{
			name:    "valid",
			reg:     model.Registration{Name: "Ana", Email: "ana@example.com", Password: "pw"},
			confirm: "pw",
			calls:   1,
		},
		{
			name:    "missing name",
			reg:     model.Registration{Email: "ana@example.com", Password: "pw"},
			confirm: "pw",
			wantMsg: MsgFillAllFields,
		},
		{
			name:    "mismatch",
			reg:     model.Registration{Name: "Ana", Email: "ana@example.com", Password: "pw"},
			confirm: "other",
			wantMsg: MsgPasswordsMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &mockBackend{}
			err := NewAccount(backend, &fakeSession{}).Signup(context.Background(), tt.reg, tt.confirm)
			if tt.wantMsg == "" {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, common.ErrValidation)
				msg, _ := common.UserMessage(err)
				assert.Equal(t, tt.wantMsg, msg)
			}
			assert.Len(t, backend.calls, tt.calls)
		})
	}
}

func TestVerifyCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{code: "123456", valid: true},
		{code: " 123456 ", valid: true},
		{code: "12345"},
		{code: "12345a"},
		{code: "1234567"},
	}
	for _, tt := range tests {
		backend := &mockBackend{}
		err := NewAccount(backend, &fakeSession{}).VerifyCode(context.Background(), "ana@example.com", tt.code)
		if tt.valid {
			require.NoError(t, err, tt.code)
			assert.Equal(t, "123456", backend.lastCode)
		} else {
			assert.ErrorIs(t, err, common.ErrValidation, tt.code)
			assert.Empty(t, backend.calls)
		}
	}
}

func TestVerifyCode_RequiresEmail(t *testing.T) {
	err := NewAccount(&mockBackend{}, &fakeSession{}).VerifyCode(context.Background(), "", "123456")
	msg, _ := common.UserMessage(err)
	assert.Equal(t, MsgRecoveryExpired, msg)
}

func TestResetPassword(t *testing.T) {
	backend := &mockBackend{}
	account := NewAccount(backend, &fakeSession{})

	err := account.ResetPassword(context.Background(), "ana@example.com", "123456", "new", "other")
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Empty(t, backend.calls)

	require.NoError(t, account.ResetPassword(context.Background(), "ana@example.com", "123456", "new", "new"))
	assert.Equal(t, "new", backend.lastNewPass)
}

func TestUpdatePassword_EndsSession(t *testing.T) {
	backend := &mockBackend{}
	sess := &fakeSession{token: "tok", email: "ana@example.com", loggedIn: true}
	account := NewAccount(backend, sess)

	require.NoError(t, account.UpdatePassword(context.Background(), "old", "new", "new"))
	assert.False(t, sess.loggedIn)
	assert.Equal(t, []string{"update"}, backend.calls)
}

func TestUpdatePassword_FailureKeepsSession(t *testing.T) {
	backend := &mockBackend{err: &api.APIError{Status: 400, Detail: "Current password is wrong"}}
	sess := &fakeSession{token: "tok", loggedIn: true}

	err := NewAccount(backend, sess).UpdatePassword(context.Background(), "bad", "new", "new")
	require.Error(t, err)
	assert.Equal(t, "Current password is wrong", api.Message(err, ""))
	assert.True(t, sess.loggedIn)
}

func TestProfile_FallbackMessage(t *testing.T) {
	backend := &mockBackend{err: errors.New("connection refused")}
	_, err := NewAccount(backend, &fakeSession{}).Profile(context.Background())
	assert.Equal(t, "Could not load the profile.", api.Message(err, ""))
}
