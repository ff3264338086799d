package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlistings/internal/delivery/http/helpers"
	"eventlistings/internal/domain"
)

// fakeUserService implements domain.UserService for handler tests.
type fakeUserService struct {
	registerResult *domain.User
	registerErr    error
	lastRegister   *domain.RegisterInput
	loginToken     string
	loginResult    *domain.User
	loginErr       error
	getResult      *domain.User
	getErr         error
	updateResult   *domain.User
	updateErr      error
	lastProfile    *domain.ProfileInput
}

func (f *fakeUserService) Register(ctx context.Context, input *domain.RegisterInput) (*domain.User, error) {
	f.lastRegister = input
	return f.registerResult, f.registerErr
}

func (f *fakeUserService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	return f.loginToken, f.loginResult, f.loginErr
}

func (f *fakeUserService) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return f.getResult, f.getErr
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, actor *domain.Identity, input *domain.ProfileInput) (*domain.User, error) {
	f.lastProfile = input
	return f.updateResult, f.updateErr
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:         1,
		Username:   "alice",
		Email:      "alice@example.com",
		FirstName:  "Alice",
		IsStaff:    true,
		IsActive:   true,
		DateJoined: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestAuthController_Register(t *testing.T) {
	t.Run("success omits credentials from the response", func(t *testing.T) {
		svc := &fakeUserService{registerResult: sampleUser()}
		ctrl := NewAuthController(testLogger, svc)

		body := `{"username":"alice","email":"alice@example.com","password":"sup3rsecret","password_confirm":"sup3rsecret","first_name":"Alice"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ctrl.Register(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "alice", svc.lastRegister.Username)

		var raw map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
		assert.Equal(t, "alice", raw["username"])
		assert.Equal(t, true, raw["is_staff"])
		assert.NotContains(t, raw, "password")
		assert.NotContains(t, raw, "password_hash")
	})

	t.Run("duplicate email", func(t *testing.T) {
		errs := domain.FieldErrors{}
		errs.Add("email", "A user with this email already exists.")
		ctrl := NewAuthController(testLogger, &fakeUserService{registerErr: errs})

		body := `{"username":"alice","email":"alice@example.com","password":"sup3rsecret","password_confirm":"sup3rsecret"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ctrl.Register(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, helpers.ErrKindValidation, resp.Error)
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(`{"username":"alice","is_staff":true}`))
		rec := httptest.NewRecorder()
		ctrl.Register(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, helpers.ErrKindParse, resp.Error)
	})
}

func TestAuthController_Login(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{loginToken: "tok123", loginResult: sampleUser()})

		body := `{"username":"alice","password":"sup3rsecret"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ctrl.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp LoginResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "tok123", resp.Token)
		assert.Equal(t, "alice", resp.User.Username)
	})

	t.Run("bad credentials", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{loginErr: domain.ErrInvalidCredentials})

		body := `{"username":"alice","password":"wrong"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		ctrl.Login(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, helpers.ErrKindAuthFailed, resp.Error)
	})

	t.Run("missing fields", func(t *testing.T) {
		ctrl := NewAuthController(testLogger, &fakeUserService{})

		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		ctrl.Login(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, helpers.ErrKindValidation, resp.Error)
	})
}

func TestUserController_Me(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		ctrl := NewUserController(testLogger, &fakeUserService{})

		req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
		rec := httptest.NewRecorder()
		ctrl.Me(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		resp := decodeError(t, rec.Body)
		assert.Equal(t, helpers.ErrKindNotAuthenticated, resp.Error)
	})

	t.Run("authenticated", func(t *testing.T) {
		ctrl := NewUserController(testLogger, &fakeUserService{getResult: sampleUser()})

		req := withIdentity(httptest.NewRequest(http.MethodGet, "/users/me", nil), &domain.Identity{UserID: 1})
		rec := httptest.NewRecorder()
		ctrl.Me(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp UserResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "alice", resp.Username)
	})
}

func TestUserController_UpdateMe(t *testing.T) {
	svc := &fakeUserService{updateResult: sampleUser()}
	ctrl := NewUserController(testLogger, svc)

	req := withIdentity(httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(`{"last_name":"Wanjiru"}`)),
		&domain.Identity{UserID: 1})
	rec := httptest.NewRecorder()
	ctrl.UpdateMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.lastProfile)
	require.NotNil(t, svc.lastProfile.LastName)
	assert.Equal(t, "Wanjiru", *svc.lastProfile.LastName)
	assert.Nil(t, svc.lastProfile.Username)
}
