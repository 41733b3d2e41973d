// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/bookstore/internal/auth"
	"github.com/taibuivan/bookstore/internal/backend/backendtest"
	"github.com/taibuivan/bookstore/internal/platform/apperr"
	"github.com/taibuivan/bookstore/internal/platform/constants"
	"github.com/taibuivan/bookstore/internal/platform/prefs"
	"github.com/taibuivan/bookstore/internal/platform/sec"
)

const customer = "reader@example.com"

type fixture struct {
	fake  *backendtest.Server
	store prefs.Store
	state *auth.State
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	fake := backendtest.New(t)
	fake.AddUser(customer)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := prefs.OpenFile(filepath.Join(t.TempDir(), "prefs.yaml"), logger)
	require.NoError(t, err)

	return fixture{
		fake:  fake,
		store: store,
		state: auth.New(fake.Client(t), store, logger),
	}
}

func validCredentials() auth.Credentials {
	return auth.Credentials{
		Email:         customer,
		Password:      backendtest.DefaultPassword,
		CaptchaID:     backendtest.CaptchaID,
		CaptchaAnswer: backendtest.CaptchaAnswer,
	}
}

/*
TestLogin_Success persists the token and notifies subscribers.
*/
func TestLogin_Success(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var notified []bool
	f.state.Subscribe(func(_ context.Context, _ sec.Session, signedIn bool) {
		notified = append(notified, signedIn)
	})

	session, err := f.state.Login(ctx, validCredentials())
	require.NoError(t, err)

	assert.Equal(t, customer, session.Subject)
	assert.True(t, session.Roles.Has(sec.RoleCustomer))
	assert.Equal(t, []bool{true}, notified)

	stored, found, err := f.store.Get(ctx, constants.PrefKeyToken)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, stored, f.state.Token())

	current, ok := f.state.Current(ctx)
	assert.True(t, ok)
	assert.Equal(t, customer, current.Subject)
}

/*
TestLogin_Failures leaves state unchanged and surfaces the server message.
*/
func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*auth.Credentials)
		code    string
		message string
	}{
		{"wrong_captcha", func(c *auth.Credentials) { c.CaptchaAnswer = "5" }, apperr.CodeAuthFailed, "Invalid CAPTCHA"},
		{"wrong_password", func(c *auth.Credentials) { c.Password = "nope" }, apperr.CodeAuthFailed, "Invalid email or password"},
		{"missing_email", func(c *auth.Credentials) { c.Email = "" }, apperr.CodeValidation, "This field is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			credentials := validCredentials()
			tt.mutate(&credentials)

			_, err := f.state.Login(ctx, credentials)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
			assert.Equal(t, tt.message, ae.Message)

			_, ok := f.state.Current(ctx)
			assert.False(t, ok)
			assert.Empty(t, f.state.Token())

			_, found, err := f.store.Get(ctx, constants.PrefKeyToken)
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}

func TestLogin_GenericFallback(t *testing.T) {
	f := newFixture(t)
	f.fake.Fail("POST /auth/login", http.StatusUnauthorized, "")

	_, err := f.state.Login(context.Background(), validCredentials())

	assert.True(t, apperr.HasCode(err, apperr.CodeAuthFailed))
	assert.Equal(t, "Login failed", apperr.MessageOr(err, ""))
}

func TestLogin_UndecodableToken(t *testing.T) {
	f := newFixture(t)
	f.fake.Fail("POST /auth/login", http.StatusOK, `{"token":"not-a-jwt"}`)

	_, err := f.state.Login(context.Background(), validCredentials())

	assert.True(t, apperr.HasCode(err, apperr.CodeAuthFailed))
	_, found, _ := f.store.Get(context.Background(), constants.PrefKeyToken)
	assert.False(t, found)
}

func TestLogin_BackendDown(t *testing.T) {
	f := newFixture(t)
	f.fake.Close()

	_, err := f.state.Login(context.Background(), validCredentials())

	assert.True(t, apperr.HasCode(err, apperr.CodeBackendUnavailable))
}

/*
TestInit_RestoresPersistedToken covers valid, expired and malformed tokens.
*/
func TestInit_RestoresPersistedToken(t *testing.T) {
	tests := []struct {
		name     string
		token    func(f fixture) string
		signedIn bool
	}{
		{"valid", func(f fixture) string { return f.fake.IssueToken(customer, []string{"ROLE_CUSTOMER"}, time.Hour) }, true},
		{"expired", func(f fixture) string { return f.fake.IssueToken(customer, nil, -time.Minute) }, false},
		{"malformed", func(fixture) string { return "garbage" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			require.NoError(t, f.store.Set(ctx, constants.PrefKeyToken, tt.token(f)))

			require.NoError(t, f.state.Init(ctx))

			_, ok := f.state.Current(ctx)
			assert.Equal(t, tt.signedIn, ok)

			_, found, err := f.store.Get(ctx, constants.PrefKeyToken)
			require.NoError(t, err)
			assert.Equal(t, tt.signedIn, found)
		})
	}
}

/*
TestCurrent_ImplicitLogout expires a live session when its deadline passes.
*/
func TestCurrent_ImplicitLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.state.Login(ctx, validCredentials())
	require.NoError(t, err)

	var loggedOut bool
	f.state.Subscribe(func(_ context.Context, _ sec.Session, signedIn bool) { loggedOut = !signedIn })

	f.state.SetClock(func() time.Time { return time.Now().Add(2 * time.Hour) })

	_, ok := f.state.Current(ctx)
	assert.False(t, ok)
	assert.True(t, loggedOut)
	assert.Empty(t, f.state.Token())
}

func TestLogout_Unconditional(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.state.Logout(ctx))

	_, err := f.state.Login(ctx, validCredentials())
	require.NoError(t, err)
	require.NoError(t, f.state.Logout(ctx))

	_, ok := f.state.Current(ctx)
	assert.False(t, ok)
	_, found, _ := f.store.Get(ctx, constants.PrefKeyToken)
	assert.False(t, found)
}

/*
TestRegister validates locally, then creates the account without signing in.
*/
func TestRegister(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registration := auth.Registration{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Password:        "engine1",
		ConfirmPassword: "engine2",
		CaptchaID:       backendtest.CaptchaID,
		CaptchaAnswer:   backendtest.CaptchaAnswer,
	}

	// 1. Mismatch never reaches the backend
	err := f.state.Register(ctx, registration)
	assert.Equal(t, "Passwords do not match", apperr.MessageOr(err, ""))
	assert.Equal(t, 0, f.fake.Calls("POST /auth/register"))

	// 2. Valid form
	registration.ConfirmPassword = registration.Password
	require.NoError(t, f.state.Register(ctx, registration))
	_, ok := f.state.Current(ctx)
	assert.False(t, ok)

	// 3. Duplicate email reports the server text
	err = f.state.Register(ctx, registration)
	assert.Equal(t, "Email already in use", apperr.MessageOr(err, ""))
}

func TestCaptcha(t *testing.T) {
	f := newFixture(t)

	captcha, err := f.state.Captcha(context.Background())

	require.NoError(t, err)
	assert.Equal(t, backendtest.CaptchaID, captcha.ID)
	assert.NotEmpty(t, captcha.Question)
}
