// Package testutil provides shared fakes and fixtures for package tests:
// an in-memory client store, a recording navigator and a scripted fake of the
// remote API.
package testutil

import (
	"context"
	"testing"

	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/session"
	"github.com/equipeadalove/aduana/internal/storage"
)

// SetupTestStore creates an in-memory, migrated client store closed on cleanup.
func SetupTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// TestSession bundles a session with the store and navigator behind it.
type TestSession struct {
	Store     *storage.SQLiteStorage
	Navigator *NavRecorder
	Session   *session.Session
}

// SetupTestSession creates a session. When token is non-empty the session is
// logged in as email; the login navigation is cleared from the recorder.
func SetupTestSession(t *testing.T, token, email string) *TestSession {
	t.Helper()

	store := SetupTestStore(t)
	navigator := &NavRecorder{}
	sess := session.New(store, navigator)

	if token != "" {
		if err := sess.Login(context.Background(), token, email); err != nil {
			t.Fatalf("failed to log in test session: %v", err)
		}
		navigator.Reset()
	}

	return &TestSession{
		Store:     store,
		Navigator: navigator,
		Session:   sess,
	}
}

// StoredToken reads the persisted token, failing the test on error.
func (ts *TestSession) StoredToken(t *testing.T) (string, bool) {
	t.Helper()
	token, ok, err := ts.Store.Get(context.Background(), storage.KeyAuthToken)
	if err != nil {
		t.Fatalf("failed to read stored token: %v", err)
	}
	return token, ok
}

var _ nav.Navigator = (*NavRecorder)(nil)
