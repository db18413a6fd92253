package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeHibbert/MindCoach-sub001/internal/server/middleware"
)

// withAuthenticatedUser stamps the request context the way the auth
// middleware does after validating a token.
func withAuthenticatedUser(r *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.UserIDKey(), userID)
	return r.WithContext(ctx)
}

func TestRequireOwnUser_MatchingTokenPassesThrough(t *testing.T) {
	s := &Server{}
	userID := uuid.New()

	called := false
	handler := s.requireOwnUser(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/users/"+userID.String()+"/subjects", nil)
	req.SetPathValue("user_id", userID.String())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withAuthenticatedUser(req, userID))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireOwnUser_OtherUsersResourcesForbidden(t *testing.T) {
	s := &Server{}
	tokenUser := uuid.New()
	pathUser := uuid.New()

	handler := s.requireOwnUser(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for another user's resources")
	})

	req := httptest.NewRequest(http.MethodGet, "/users/"+pathUser.String()+"/subscriptions", nil)
	req.SetPathValue("user_id", pathUser.String())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withAuthenticatedUser(req, tokenUser))

	require.Equal(t, http.StatusForbidden, w.Code)
	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, CodeForbidden, envelope.Error.Code)
}

func TestRequireOwnUser_MissingIdentityUnauthorized(t *testing.T) {
	s := &Server{}
	userID := uuid.New()

	handler := s.requireOwnUser(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without an authenticated identity")
	})

	req := httptest.NewRequest(http.MethodGet, "/users/"+userID.String()+"/subjects", nil)
	req.SetPathValue("user_id", userID.String())
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireOwnUser_MalformedPathIDReachesHandler(t *testing.T) {
	s := &Server{}

	// The handler owns validation errors for bad path IDs.
	handler := s.requireOwnUser(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, http.StatusBadRequest, CodeValidationError, "Invalid user ID")
	})

	req := httptest.NewRequest(http.MethodGet, "/users/not-a-uuid/subjects", nil)
	req.SetPathValue("user_id", "not-a-uuid")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withAuthenticatedUser(req, uuid.New()))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func newAuthzTestServer(t *testing.T) (*Server, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	return &Server{userService: newTestUserService(store)}, store
}

func registerAuthzUser(t *testing.T, store *fakeUserStore, email string, isAdmin bool) uuid.UUID {
	t.Helper()
	id, err := store.CreateUser(context.Background(), "Authz User", email)
	require.NoError(t, err)
	store.users[id].IsAdmin = isAdmin
	return id
}

func TestRequireAdmin_AdminPassesThrough(t *testing.T) {
	s, store := newAuthzTestServer(t)
	adminID := registerAuthzUser(t, store, "admin@example.com", true)

	called := false
	handler := s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/documents", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withAuthenticatedUser(req, adminID))

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAdmin_RegularUserForbidden(t *testing.T) {
	s, store := newAuthzTestServer(t)
	userID := registerAuthzUser(t, store, "user@example.com", false)

	handler := s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for non-admin users")
	})

	req := httptest.NewRequest(http.MethodDelete, "/admin/documents/1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withAuthenticatedUser(req, userID))

	require.Equal(t, http.StatusForbidden, w.Code)
	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, CodeForbidden, envelope.Error.Code)
}

func TestRequireAdmin_UnknownUserForbidden(t *testing.T) {
	s, _ := newAuthzTestServer(t)

	handler := s.requireAdmin(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run for unknown users")
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/documents", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, withAuthenticatedUser(req, uuid.New()))

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserService_IsAdmin(t *testing.T) {
	store := newFakeUserStore()
	svc := newTestUserService(store)
	adminID := registerAuthzUser(t, store, "flag@example.com", true)
	plainID := registerAuthzUser(t, store, "plain@example.com", false)

	isAdmin, err := svc.IsAdmin(context.Background(), adminID)
	require.NoError(t, err)
	assert.True(t, isAdmin)

	isAdmin, err = svc.IsAdmin(context.Background(), plainID)
	require.NoError(t, err)
	assert.False(t, isAdmin)

	isAdmin, err = svc.IsAdmin(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, isAdmin)
}
