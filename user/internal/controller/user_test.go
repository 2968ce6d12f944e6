package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/gearshare/internal/auth"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/user/pkg/request"
	"github.com/Alturino/gearshare/user/pkg/response"
)

type fakeService struct {
	lastRegister request.Register
	lastLogin    request.LoginRequest
	lastUpdate   request.UpdateUser
	lastTarget   uuid.UUID
	lastActor    auth.Actor
	err          error
}

func (f *fakeService) Register(_ context.Context, param request.Register) (response.User, error) {
	f.lastRegister = param
	return response.User{ID: uuid.New(), Email: param.Email, Role: auth.RoleUser}, f.err
}

func (f *fakeService) Login(_ context.Context, param request.LoginRequest) (response.Login, error) {
	f.lastLogin = param
	return response.Login{Token: "token", User: response.User{Email: param.Email}}, f.err
}

func (f *fakeService) SetAdmin(_ context.Context, actor auth.Actor, param request.SetAdmin) (response.User, error) {
	f.lastActor = actor
	return response.User{Email: param.Email, Role: auth.RoleAdmin}, f.err
}

func (f *fakeService) ListUsers(_ context.Context, actor auth.Actor) ([]response.User, error) {
	f.lastActor = actor
	return []response.User{{Email: "a@gearshare.test"}}, f.err
}

func (f *fakeService) UpdateUser(
	_ context.Context,
	actor auth.Actor,
	id uuid.UUID,
	param request.UpdateUser,
) (response.User, error) {
	f.lastActor = actor
	f.lastTarget = id
	f.lastUpdate = param
	return response.User{ID: id}, f.err
}

func (f *fakeService) DeleteUser(_ context.Context, actor auth.Actor, id uuid.UUID) error {
	f.lastActor = actor
	f.lastTarget = id
	return f.err
}

func do(router *mux.Router, method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestUserController(t *testing.T) {
	verifier := auth.NewVerifier("secret", time.Hour)
	adminID := uuid.New()
	token, err := verifier.Issue(context.Background(), adminID, auth.RoleAdmin)
	require.NoError(t, err)

	svc := &fakeService{}
	router := mux.NewRouter()
	AttachUserController(router, svc, verifier)

	t.Run("register is public", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/users/register", "",
			`{"username":"rina","email":"rina@gearshare.test","password":"secret1"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "rina@gearshare.test", svc.lastRegister.Email)
		assert.Equal(t, "secret1", svc.lastRegister.Password)
	})

	t.Run("login returns token", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/users/login", "",
			`{"email":"rina@gearshare.test","password":"secret1"}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Data response.Login `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "token", body.Data.Token)
	})

	t.Run("login maps unauthenticated", func(t *testing.T) {
		svc.err = inErrors.ErrUnauthenticated
		defer func() { svc.err = nil }()
		rec := do(router, http.MethodPost, "/users/login", "", `{"email":"x@gearshare.test","password":"nope"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("listing requires a token", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/users", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("list users passes actor", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/users", token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, adminID, svc.lastActor.UserID)
	})

	t.Run("set-admin is not treated as a user id", func(t *testing.T) {
		rec := do(router, http.MethodPatch, "/users/set-admin", token, `{"email":"rina@gearshare.test"}`)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("update user", func(t *testing.T) {
		target := uuid.New()
		rec := do(router, http.MethodPatch, "/users/"+target.String(), token, `{"blocked":true}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, target, svc.lastTarget)
		require.NotNil(t, svc.lastUpdate.Blocked)
		assert.True(t, *svc.lastUpdate.Blocked)
	})

	t.Run("update user rejects bad id", func(t *testing.T) {
		rec := do(router, http.MethodPatch, "/users/not-a-uuid", token, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete maps forbidden", func(t *testing.T) {
		svc.err = inErrors.ErrForbidden
		defer func() { svc.err = nil }()
		rec := do(router, http.MethodDelete, "/users/"+uuid.NewString(), token, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
