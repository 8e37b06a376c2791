package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/sayantan/task-manager-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthHandler_Signup(t *testing.T) {
	ts := testutil.NewTestServer(t)

	tests := []struct {
		name           string
		request        map[string]interface{}
		setup          func()
		expectedStatus int
		checkResponse  func(*testing.T, *http.Response)
	}{
		{
			name: "successful signup",
			request: map[string]interface{}{
				"name":     "Sayantan",
				"email":    "a@b.com",
				"password": "Rook7653",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *http.Response) {
				body, err := io.ReadAll(resp.Body)
				require.NoError(t, err)

				var result testutil.AuthResponse
				require.NoError(t, json.Unmarshal(body, &result))
				assert.Equal(t, "a@b.com", result.User.Email)
				assert.Equal(t, "Sayantan", result.User.Name)
				assert.NotEmpty(t, result.Token)

				// The projection never exposes credentials or image bytes
				var envelope struct {
					User json.RawMessage `json:"user"`
				}
				require.NoError(t, json.Unmarshal(body, &envelope))
				testutil.AssertBodyLacksKeys(t, envelope.User, "password", "tokens", "avatar")

				// Stored password is hashed, never the plaintext
				stored, err := ts.Repos.User.GetByEmail(context.Background(), "a@b.com")
				require.NoError(t, err)
				assert.NotEqual(t, "Rook7653", stored.Password)
				assert.True(t, stored.CheckPassword("Rook7653"))

				// Welcome email goes out without blocking the response
				assert.Eventually(t, func() bool {
					return ts.Mailer.WelcomeCount() == 1
				}, 2*time.Second, 10*time.Millisecond)
			},
		},
		{
			name: "duplicate email",
			request: map[string]interface{}{
				"name":     "Sayantan",
				"email":    "taken@example.com",
				"password": "Rook7653",
			},
			setup: func() {
				testutil.NewUserBuilder().
					WithEmail("taken@example.com").
					Build(t, ts.DB.DB)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid email",
			request: map[string]interface{}{
				"name":     "Sayantan",
				"email":    "not-an-email",
				"password": "Rook7653",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			request: map[string]interface{}{
				"name":     "Sayantan",
				"email":    "short@example.com",
				"password": "Rook76",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "password contains password",
			request: map[string]interface{}{
				"name":     "Sayantan",
				"email":    "banned@example.com",
				"password": "Password123",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "empty request body",
			request:        map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.DB.Truncate(t)

			if tt.setup != nil {
				tt.setup()
			}

			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.URL("/users"), "application/json", bytes.NewBuffer(body))
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
		WithEmail("login@example.com").
		Build(t, ts.DB.DB)

	tests := []struct {
		name           string
		request        map[string]string
		expectedStatus int
		wantTokens     int
	}{
		{
			name: "successful login appends one token",
			request: map[string]string{
				"email":    user.Email,
				"password": rawPassword,
			},
			expectedStatus: http.StatusOK,
			wantTokens:     1,
		},
		{
			name: "wrong password",
			request: map[string]string{
				"email":    user.Email,
				"password": "WrongRook",
			},
			expectedStatus: http.StatusBadRequest,
			wantTokens:     1,
		},
		{
			name: "unknown email",
			request: map[string]string{
				"email":    "nobody@example.com",
				"password": rawPassword,
			},
			expectedStatus: http.StatusBadRequest,
			wantTokens:     1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.request)
			resp, err := http.Post(ts.URL("/users/login"), "application/json", bytes.NewBuffer(body))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)

			if resp.StatusCode == http.StatusOK {
				var result testutil.AuthResponse
				testutil.AssertJSONResponse(t, resp, &result)
				assert.Equal(t, user.Email, result.User.Email)
				assert.NotEmpty(t, result.Token)
			}

			// Failed logins must not grow the session list
			stored, err := ts.Repos.User.GetByID(context.Background(), user.ID)
			require.NoError(t, err)
			assert.Len(t, stored.TokenList(), tt.wantTokens)
		})
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, firstToken := testutil.NewUserBuilder().
		WithEmail("logout@example.com").
		WithPassword("Rook7653").
		BuildAndAuthenticate(t, ts)

	// Second session
	body, _ := json.Marshal(map[string]string{"email": user.Email, "password": "Rook7653"})
	resp, err := http.Post(ts.URL("/users/login"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	var second testutil.AuthResponse
	testutil.AssertJSONResponse(t, resp, &second)
	resp.Body.Close()

	// Logout the first session only
	req := testutil.CreateAuthenticatedRequest(t, "POST", ts.URL("/users/logout"), nil, firstToken)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := ts.Repos.User.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{second.Token}, stored.TokenList())

	// The revoked token no longer authenticates even though its signature is valid
	req = testutil.CreateAuthenticatedRequest(t, "GET", ts.URL("/users/me"), nil, firstToken)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// The surviving session still works
	req = testutil.CreateAuthenticatedRequest(t, "GET", ts.URL("/users/me"), nil, second.Token)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthHandler_LogoutAll(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, firstToken := testutil.NewUserBuilder().
		WithEmail("logoutall@example.com").
		WithPassword("Rook7653").
		BuildAndAuthenticate(t, ts)

	body, _ := json.Marshal(map[string]string{"email": user.Email, "password": "Rook7653"})
	resp, err := http.Post(ts.URL("/users/login"), "application/json", bytes.NewBuffer(body))
	require.NoError(t, err)
	var second testutil.AuthResponse
	testutil.AssertJSONResponse(t, resp, &second)
	resp.Body.Close()

	req := testutil.CreateAuthenticatedRequest(t, "POST", ts.URL("/users/logoutAll"), nil, firstToken)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stored, err := ts.Repos.User.GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.TokenList())

	for _, token := range []string{firstToken, second.Token} {
		req = testutil.CreateAuthenticatedRequest(t, "GET", ts.URL("/users/me"), nil, token)
		resp, err = http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}
}

func TestAuth_ProtectedRoutesRequireToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	routes := []struct {
		method string
		path   string
	}{
		{"POST", "/users/logout"},
		{"POST", "/users/logoutAll"},
		{"GET", "/users/me"},
		{"PATCH", "/users/me"},
		{"DELETE", "/users/me"},
		{"DELETE", "/users/me/avatar"},
		{"POST", "/tasks"},
		{"GET", "/tasks"},
	}

	for _, tt := range routes {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := testutil.CreateAuthenticatedRequest(t, tt.method, ts.URL(tt.path), nil, "")
			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			req = testutil.CreateAuthenticatedRequest(t, tt.method, ts.URL(tt.path), nil, "not.a.jwt")
			resp, err = http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}
}
