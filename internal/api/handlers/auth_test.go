package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/dom/uptask-server/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_CreateAccount(t *testing.T) {
	ts := testutil.NewTestServer(t)

	valid := map[string]string{
		"name":                  "Alice",
		"email":                 "alice@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	}
	with := func(key, value string) map[string]string {
		m := make(map[string]string, len(valid))
		for k, v := range valid {
			m[k] = v
		}
		m[key] = value
		return m
	}

	tests := []struct {
		name           string
		request        map[string]string
		setup          func()
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "successful registration",
			request:        valid,
			expectedStatus: http.StatusCreated,
		},
		{
			name:    "duplicate email",
			request: valid,
			setup: func() {
				testutil.NewUserBuilder().WithEmail("alice@example.com").Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
			expectedError:  "already registered",
		},
		{
			name:    "email differing only in case",
			request: valid,
			setup: func() {
				testutil.NewUserBuilder().WithEmail("Alice@example.com").Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing name",
			request:        with("name", ""),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "name is required",
		},
		{
			name:           "invalid email",
			request:        with("email", "not-an-email"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "invalid email",
		},
		{
			name:           "short password",
			request:        with("password", "short"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "at least 8",
		},
		{
			name:           "password longer than 72 bytes",
			request:        with("password", strings.Repeat("p", 73)),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "at most 72",
		},
		{
			name:           "confirmation mismatch",
			request:        with("password_confirmation", "password124"),
			expectedStatus: http.StatusBadRequest,
			expectedError:  "do not match",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.Reset(t)
			if tt.setup != nil {
				tt.setup()
			}

			resp := ts.Do(t, http.MethodPost, "/auth/create-account", tt.request, "")

			if tt.expectedError != "" {
				testutil.AssertErrorResponse(t, resp, tt.expectedStatus, tt.expectedError)
				return
			}
			testutil.AssertStatusCode(t, resp, tt.expectedStatus)
			assert.NotEmpty(t, ts.Notifier.LastConfirmationToken("alice@example.com"))
		})
	}
}

func TestAuthHandler_ConfirmAndLogin(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Reset(t)

	resp := ts.Do(t, http.MethodPost, "/auth/create-account", map[string]string{
		"name":                  "Alice",
		"email":                 "alice@example.com",
		"password":              "password123",
		"password_confirmation": "password123",
	}, "")
	testutil.AssertStatusCode(t, resp, http.StatusCreated)

	login := map[string]string{"email": "alice@example.com", "password": "password123"}

	// Pending account: rejected, and a second confirmation mail goes out.
	resp = ts.Do(t, http.MethodPost, "/auth/login", login, "")
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "not confirmed")
	assert.Len(t, ts.Notifier.Confirmations("alice@example.com"), 2)

	token := ts.Notifier.LastConfirmationToken("alice@example.com")
	resp = ts.Do(t, http.MethodPost, "/auth/confirm-account", map[string]string{"token": token}, "")
	testutil.AssertMessageResponse(t, resp, http.StatusOK, "account confirmed successfully")

	resp = ts.Do(t, http.MethodPost, "/auth/confirm-account", map[string]string{"token": token}, "")
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "invalid token")

	resp = ts.Do(t, http.MethodPost, "/auth/login", map[string]string{"email": "alice@example.com", "password": "wrongpass1"}, "")
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "incorrect password")

	resp = ts.Do(t, http.MethodPost, "/auth/login", login, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session struct {
		Token string `json:"token"`
	}
	testutil.AssertJSONResponse(t, resp, &session)
	require.NotEmpty(t, session.Token)

	resp = ts.Do(t, http.MethodGet, "/auth/user", nil, session.Token)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var me struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	testutil.AssertJSONResponse(t, resp, &me)
	assert.Equal(t, "Alice", me.Name)
	assert.Equal(t, "alice@example.com", me.Email)
}

func TestAuthHandler_PasswordReset(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Reset(t)

	user, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	resp := ts.Do(t, http.MethodPost, "/auth/forgot-password", map[string]string{"email": "nobody@example.com"}, "")
	testutil.AssertStatusCode(t, resp, http.StatusNotFound)

	resp = ts.Do(t, http.MethodPost, "/auth/forgot-password", map[string]string{"email": user.Email}, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
	token := ts.Notifier.LastResetToken(user.Email)
	require.NotEmpty(t, token)

	resp = ts.Do(t, http.MethodPost, "/auth/validate-token", map[string]string{"token": token}, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	long := strings.Repeat("r", 73)
	resp = ts.Do(t, http.MethodPost, "/auth/update-password/"+token,
		map[string]string{"password": long, "password_confirmation": long}, "")
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "at most 72")

	newPassword := map[string]string{"password": "resetpass1", "password_confirmation": "resetpass1"}
	resp = ts.Do(t, http.MethodPost, "/auth/update-password/"+token, newPassword, "")
	testutil.AssertMessageResponse(t, resp, http.StatusOK, "password updated successfully")

	resp = ts.Do(t, http.MethodPost, "/auth/update-password/"+token, newPassword, "")
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "invalid token")

	resp = ts.Do(t, http.MethodPost, "/auth/login", map[string]string{"email": user.Email, "password": "resetpass1"}, "")
	testutil.AssertStatusCode(t, resp, http.StatusOK)
}

func TestAuthHandler_SessionRoutes(t *testing.T) {
	ts := testutil.NewTestServer(t)
	ts.Reset(t)

	user, token := testutil.NewUserBuilder().WithPassword("password123").BuildAndAuthenticate(t, ts)
	other, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	t.Run("no session", func(t *testing.T) {
		resp := ts.Do(t, http.MethodGet, "/auth/user", nil, "")
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)

		resp = ts.Do(t, http.MethodGet, "/auth/user", nil, token+"x")
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	t.Run("profile email taken", func(t *testing.T) {
		resp := ts.Do(t, http.MethodPut, "/auth/profile", map[string]string{"name": "Ana", "email": other.Email}, token)
		testutil.AssertErrorResponse(t, resp, http.StatusConflict, "already in use")
	})

	t.Run("profile update", func(t *testing.T) {
		resp := ts.Do(t, http.MethodPut, "/auth/profile", map[string]string{"name": "Ana", "email": user.Email}, token)
		testutil.AssertMessageResponse(t, resp, http.StatusOK, "profile updated successfully")
	})

	t.Run("check password", func(t *testing.T) {
		resp := ts.Do(t, http.MethodPost, "/auth/check-password", map[string]string{"password": "nope12345"}, token)
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)

		resp = ts.Do(t, http.MethodPost, "/auth/check-password", map[string]string{"password": "password123"}, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})

	t.Run("change password", func(t *testing.T) {
		resp := ts.Do(t, http.MethodPost, "/auth/update-password", map[string]string{
			"current_password":      "wrongpass1",
			"password":              "changed123",
			"password_confirmation": "changed123",
		}, token)
		testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "incorrect password")

		long := strings.Repeat("c", 73)
		resp = ts.Do(t, http.MethodPost, "/auth/update-password", map[string]string{
			"current_password":      "password123",
			"password":              long,
			"password_confirmation": long,
		}, token)
		testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "at most 72")

		resp = ts.Do(t, http.MethodPost, "/auth/update-password", map[string]string{
			"current_password":      "password123",
			"password":              "changed123",
			"password_confirmation": "changed123",
		}, token)
		testutil.AssertStatusCode(t, resp, http.StatusOK)
	})
}
