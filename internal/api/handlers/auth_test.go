package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gabaylakad/backend/internal/api/middleware"
	"github.com/gabaylakad/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registerBody(email, serial string) map[string]interface{} {
	return map[string]interface{}{
		"firstName":        "Maria",
		"lastName":         "Santos",
		"email":            email,
		"phone_number":     "+639171234567",
		"impairment_level": "total",
		"password":         "strongpassword1",
		"blind_full_name":  "Jose Santos",
		"blind_age":        67,
		"serial_number":    serial,
	}
}

func TestAuthHandler_Register(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]interface{}
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name:           "successful registration",
			request:        registerBody("newuser@example.com", "GL-1000"),
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result struct {
					Message string `json:"message"`
					User    struct {
						Email    string `json:"email"`
						Verified bool   `json:"verified"`
					} `json:"user"`
				}
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, "newuser@example.com", result.User.Email)
				assert.False(t, result.User.Verified)
				assert.Len(t, ts.Mailer.CodeFor("newuser@example.com"), 6)
			},
		},
		{
			name: "missing email",
			request: func() map[string]interface{} {
				b := registerBody("", "GL-1001")
				delete(b, "email")
				return b
			}(),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "short password",
			request:        func() map[string]interface{} { b := registerBody("short@example.com", "GL-1002"); b["password"] = "short"; return b }(),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:    "serial bound to another user",
			request: registerBody("second@example.com", "GL-TAKEN"),
			setup: func() {
				owner, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
				testutil.NewDeviceBuilder().
					WithSerialNumber("GL-TAKEN").
					WithOwner(owner).
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:    "duplicate email",
			request: registerBody("existing@example.com", "GL-1003"),
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("existing@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.APIURL("/auth/register"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_Login(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().
		WithPassword("correctpassword").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful login",
			request: map[string]string{
				"email":    user.Email,
				"password": rawPassword,
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result testutil.TokenResponse
				testutil.AssertJSONResponse(t, resp, &result)
				require.NotNil(t, result.Token)
				assert.NotEmpty(t, *result.Token)
				assert.Len(t, result.RefreshToken, 64)
				assert.Equal(t, user.Email, result.User.Email)
			},
		},
		{
			name: "wrong password",
			request: map[string]string{
				"email":    user.Email,
				"password": "wrongpassword",
			},
			expectedStatus: http.StatusUnauthorized,
			checkResponse: func(t *testing.T, resp *http.Response) {
				var result map[string]interface{}
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, "Incorrect password!", result["message"])
				// The token key is present and explicitly null.
				v, present := result["token"]
				assert.True(t, present)
				assert.Nil(t, v)
			},
		},
		{
			name: "unknown email",
			request: map[string]string{
				"email":    "nobody@example.com",
				"password": "anypassword",
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "missing password",
			request: map[string]string{
				"email": user.Email,
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if tt.checkResponse != nil {
				tt.checkResponse(t, resp)
			}
		})
	}
}

func TestAuthHandler_LoginUnverified(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, rawPassword := testutil.NewUserBuilder().Unverified().Build(t, ts.DB.DB)

	body, _ := json.Marshal(map[string]string{
		"email":    user.Email,
		"password": rawPassword,
	})
	resp, err := http.Post(ts.APIURL("/auth/login"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	testutil.AssertErrorResponse(t, resp, http.StatusForbidden, "Please verify your email first!")
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, password := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	token, refresh := testutil.Login(t, ts, user.Email, password)

	t.Run("rotates the refresh token", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"refreshToken": refresh})
		resp, err := http.Post(ts.APIURL("/auth/refresh-token"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)

		var result testutil.TokenResponse
		testutil.AssertJSONResponse(t, resp, &result)
		require.NotNil(t, result.Token)
		assert.NotEmpty(t, *result.Token)
		assert.NotEqual(t, refresh, result.RefreshToken)

		// The rotated-out token is dropped after its one second grace TTL.
		time.Sleep(1100 * time.Millisecond)

		body, _ = json.Marshal(map[string]string{"refreshToken": refresh})
		resp2, err := http.Post(ts.APIURL("/auth/refresh-token"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp2.Body.Close()
		testutil.AssertStatusCode(t, resp2, http.StatusUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"refreshToken": "not-a-real-token"})
		resp, err := http.Post(ts.APIURL("/auth/refresh-token"), "application/json", bytes.NewBuffer(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})

	// Keep the original access token exercised so renewal is covered too.
	t.Run("access token stays valid after rotation", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "GET", ts.APIURL("/auth/me"), nil, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		testutil.AssertStatusCode(t, resp, http.StatusOK)
		assert.NotEmpty(t, resp.Header.Get(middleware.RenewedTokenHeader))
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, password := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	t.Run("revoked token is refused afterwards", func(t *testing.T) {
		token, refresh := testutil.Login(t, ts, user.Email, password)

		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/auth/logout"),
			map[string]string{"refreshToken": refresh}, token)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusOK)

		req = testutil.CreateAuthenticatedRequest(t, "GET", ts.APIURL("/auth/me"), nil, token)
		resp2, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp2.Body.Close()
		testutil.AssertStatusCode(t, resp2, http.StatusForbidden)
	})

	t.Run("missing token", func(t *testing.T) {
		req := testutil.CreateAuthenticatedRequest(t, "POST", ts.APIURL("/auth/logout"), nil, "")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		testutil.AssertStatusCode(t, resp, http.StatusUnauthorized)
	})
}

func TestAuthHandler_PasswordResetFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	body, _ := json.Marshal(map[string]string{"email": user.Email})
	resp, err := http.Post(ts.APIURL("/auth/forgot-password"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	// Unknown addresses get the same answer.
	body, _ = json.Marshal(map[string]string{"email": "nobody@example.com"})
	resp, err = http.Post(ts.APIURL("/auth/forgot-password"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	resetToken := ts.Mailer.ResetTokenFor(user.Email)
	require.NotEmpty(t, resetToken)

	body, _ = json.Marshal(map[string]string{"token": resetToken, "newPassword": "freshpassword1"})
	resp, err = http.Post(ts.APIURL("/auth/reset-password"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	resp.Body.Close()
	testutil.AssertStatusCode(t, resp, http.StatusOK)

	token, _ := testutil.Login(t, ts, user.Email, "freshpassword1")
	assert.NotEmpty(t, token)
}
