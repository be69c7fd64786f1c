package users

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/corray333/jersey-shop/internal/service/models/apperr"
	"github.com/corray333/jersey-shop/internal/service/models/page"
	"github.com/corray333/jersey-shop/internal/service/models/user"
	"github.com/corray333/jersey-shop/internal/service/services/usersvc"
	"github.com/corray333/jersey-shop/pkg/auth"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	users   map[int64]user.User
	gotRole string
	deleted int64
}

func newStub() *stubService {
	return &stubService{users: map[int64]user.User{
		1: {ID: 1, Role: user.RoleAdmin, Email: "admin@ex.fr", PasswordHash: "secret-hash"},
		2: {ID: 2, Role: user.RoleUser, Email: "zz@ex.fr", Firstname: "Zinédine"},
	}}
}

func (s *stubService) Register(ctx context.Context, p usersvc.Profile) (user.User, error) {
	if p.Email == "zz@ex.fr" {
		return user.User{}, apperr.ErrConflict
	}

	return user.User{ID: 3, Role: user.RoleUser, Email: p.Email, PasswordHash: "h"}, nil
}

func (s *stubService) Login(ctx context.Context, email, password string) (usersvc.Session, error) {
	if email != "zz@ex.fr" || password != "right" {
		return usersvc.Session{}, fmt.Errorf("bad credentials: %w", apperr.ErrUnauthorized)
	}

	return usersvc.Session{User: s.users[2], Token: "tok"}, nil
}

func (s *stubService) GetUser(ctx context.Context, id int64) (user.User, error) {
	u, ok := s.users[id]
	if !ok {
		return user.User{}, apperr.ErrNotFound
	}

	return u, nil
}

func (s *stubService) GetUsers(ctx context.Context, p page.Page) ([]user.User, error) {
	return []user.User{s.users[1], s.users[2]}, nil
}

func (s *stubService) GetLatestUsers(ctx context.Context) ([]user.User, error) {
	return nil, nil
}

func (s *stubService) UpdateProfile(ctx context.Context, id int64, p usersvc.Profile) (user.User, error) {
	u := s.users[id]
	u.Lastname = p.Lastname

	return u, nil
}

func (s *stubService) UpdateUser(ctx context.Context, id int64, p usersvc.Profile, role string) (user.User, error) {
	s.gotRole = role
	u := s.users[id]
	u.Role = user.ParseRole(role)

	return u, nil
}

func (s *stubService) DeleteUser(ctx context.Context, id int64) error {
	if id == 2 {
		return apperr.ErrInUse
	}
	s.deleted = id

	return nil
}

func request(method, body string, userID int64, id string) *http.Request {
	r := httptest.NewRequest(method, "/", strings.NewReader(body))
	rctx := chi.NewRouteContext()
	if id != "" {
		rctx.URLParams.Add("id", id)
	}
	ctx := auth.WithClaims(r.Context(), &auth.Claims{UserID: userID})

	return r.WithContext(context.WithValue(ctx, chi.RouteCtxKey, rctx))
}

func TestLogin(t *testing.T) {
	rec := httptest.NewRecorder()
	Login(rec, request(http.MethodPost, `{"email":"zz@ex.fr","password":"right"}`, 0, ""), newStub())
	require.Equal(t, http.StatusOK, rec.Code)

	var body loginResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "tok", body.Token)
	assert.Equal(t, int64(2), body.ID)
	assert.Equal(t, "Zinédine", body.Firstname)

	rec = httptest.NewRecorder()
	Login(rec, request(http.MethodPost, `{"email":"zz@ex.fr","password":"wrong"}`, 0, ""), newStub())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	Login(rec, request(http.MethodPost, `nope`, 0, ""), newStub())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegister(t *testing.T) {
	rec := httptest.NewRecorder()
	Register(rec, request(http.MethodPost, `{"email":"new@ex.fr"}`, 0, ""), newStub())
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
	assert.NotContains(t, rec.Body.String(), `"h"`)

	rec = httptest.NewRecorder()
	Register(rec, request(http.MethodPost, `{"email":"zz@ex.fr"}`, 0, ""), newStub())
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestProfileAndGet(t *testing.T) {
	rec := httptest.NewRecorder()
	Profile(rec, request(http.MethodGet, "", 1, ""), newStub())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	rec = httptest.NewRecorder()
	Get(rec, request(http.MethodGet, "", 1, "99"), newStub())
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	Latest(rec, request(http.MethodGet, "", 1, ""), newStub())
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdate(t *testing.T) {
	stub := newStub()
	rec := httptest.NewRecorder()
	Update(rec, request(http.MethodPut, `{"lastname":"Zidane","role":"admin"}`, 1, "2"), stub)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin", stub.gotRole)

	rec = httptest.NewRecorder()
	UpdateProfile(rec, request(http.MethodPut, `{"lastname":"Zidane"}`, 2, ""), stub)
	require.Equal(t, http.StatusOK, rec.Code)

	var u user.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&u))
	assert.Equal(t, "Zidane", u.Lastname)
	assert.Equal(t, user.RoleUser, u.Role)
}

func TestDelete(t *testing.T) {
	stub := newStub()
	rec := httptest.NewRecorder()
	Delete(rec, request(http.MethodDelete, "", 1, "1"), stub)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(1), stub.deleted)

	rec = httptest.NewRecorder()
	DeleteProfile(rec, request(http.MethodDelete, "", 2, ""), stub)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
