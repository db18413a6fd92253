package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeHibbert/MindCoach-sub001/internal/config"
	"github.com/MikeHibbert/MindCoach-sub001/internal/types"
)

func newTestAuthHandler() (*AuthHandler, *fakeUserStore) {
	store := newFakeUserStore()
	userService := newTestUserService(store)
	jwtService := NewJWTService(&config.JWTConfig{
		Secret:          "test-secret-key-for-jwt-signing-minimum-32-bytes",
		ExpirationHours: 24,
	})
	return NewAuthHandler(userService, jwtService), store
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBuffer(payload))
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	h, _ := newTestAuthHandler()

	w := postJSON(t, h.Register, "/auth/register", map[string]string{
		"name":     "New User",
		"email":    "new@example.com",
		"password": "securepassword123",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.User)
	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.Token)
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h, _ := newTestAuthHandler()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	h.Register(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, CodeValidationError, envelope.Error.Code)
}

func TestAuthHandler_Register_ValidationFailure(t *testing.T) {
	h, _ := newTestAuthHandler()

	w := postJSON(t, h.Register, "/auth/register", map[string]string{
		"name":     "Short Password",
		"email":    "short@example.com",
		"password": "short",
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Contains(t, envelope.Error.Message, "Password")
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	h, _ := newTestAuthHandler()

	body := map[string]string{"name": "User", "email": "dup@example.com", "password": "securepassword123"}
	w := postJSON(t, h.Register, "/auth/register", body)
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, h.Register, "/auth/register", body)
	require.Equal(t, http.StatusConflict, w.Code)
	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, CodeEmailExists, envelope.Error.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	h, _ := newTestAuthHandler()

	w := postJSON(t, h.Register, "/auth/register", map[string]string{
		"name":     "Login User",
		"email":    "login@example.com",
		"password": "securepassword123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, h.Login, "/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "securepassword123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	h, _ := newTestAuthHandler()

	w := postJSON(t, h.Register, "/auth/register", map[string]string{
		"name":     "Login User",
		"email":    "login@example.com",
		"password": "securepassword123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, h.Login, "/auth/login", map[string]string{
		"email":    "login@example.com",
		"password": "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, CodeUnauthorized, envelope.Error.Code)
}

func TestAuthHandler_UpdatePassword(t *testing.T) {
	h, _ := newTestAuthHandler()

	w := postJSON(t, h.Register, "/auth/register", map[string]string{
		"name":     "Update User",
		"email":    "update@example.com",
		"password": "oldpassword123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var registered types.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &registered))

	payload, _ := json.Marshal(map[string]string{
		"current_password": "oldpassword123",
		"new_password":     "newpassword456",
	})
	req := httptest.NewRequest(http.MethodPut, "/users/"+registered.User.ID.String()+"/password", bytes.NewBuffer(payload))
	req.SetPathValue("user_id", registered.User.ID.String())
	w = httptest.NewRecorder()
	h.UpdatePassword(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	// New password works, old does not
	resp := postJSON(t, h.Login, "/auth/login", map[string]string{
		"email":    "update@example.com",
		"password": "newpassword456",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = postJSON(t, h.Login, "/auth/login", map[string]string{
		"email":    "update@example.com",
		"password": "oldpassword123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
