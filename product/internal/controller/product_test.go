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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/gearshare/internal/auth"
	inErrors "github.com/Alturino/gearshare/internal/errors"
	"github.com/Alturino/gearshare/product/pkg/request"
	"github.com/Alturino/gearshare/product/pkg/response"
)

type fakeService struct {
	lastViewer *auth.Actor
	lastCreate request.Product
	lastToggle uuid.UUID
	err        error
}

func (f *fakeService) Create(_ context.Context, _ auth.Actor, param request.Product) (response.Product, error) {
	f.lastCreate = param
	return response.Product{ID: uuid.New(), Name: param.Name, Price: param.Price}, f.err
}

func (f *fakeService) List(context.Context) ([]response.Product, error) {
	return []response.Product{{Name: "tent"}}, f.err
}

func (f *fakeService) FindByID(_ context.Context, id uuid.UUID, viewer *auth.Actor) (response.ProductDetail, error) {
	f.lastViewer = viewer
	return response.ProductDetail{Product: response.Product{ID: id}, LikedByMe: viewer != nil}, f.err
}

func (f *fakeService) Update(
	_ context.Context,
	_ auth.Actor,
	id uuid.UUID,
	_ request.UpdateProduct,
) (response.Product, error) {
	return response.Product{ID: id}, f.err
}

func (f *fakeService) Delete(context.Context, auth.Actor, uuid.UUID) error {
	return f.err
}

func (f *fakeService) ToggleLike(_ context.Context, _ auth.Actor, productID uuid.UUID) (response.ToggleLike, error) {
	f.lastToggle = productID
	return response.ToggleLike{Liked: true, LikeCount: 1}, f.err
}

func (f *fakeService) Favorites(context.Context, auth.Actor) ([]response.Product, error) {
	return []response.Product{}, f.err
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

func TestProductController(t *testing.T) {
	verifier := auth.NewVerifier("secret", time.Hour)
	userID := uuid.New()
	token, err := verifier.Issue(context.Background(), userID, auth.RoleUser)
	require.NoError(t, err)

	svc := &fakeService{}
	router := mux.NewRouter()
	AttachProductController(router, svc, verifier)
	productID := uuid.New()

	t.Run("list is public", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/products", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("detail without token has no viewer", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/products/"+productID.String(), "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, svc.lastViewer)
	})

	t.Run("detail with garbage token stays anonymous", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/products/"+productID.String(), "garbage", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, svc.lastViewer)
	})

	t.Run("detail with token passes viewer", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/products/"+productID.String(), token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, svc.lastViewer)
		assert.Equal(t, userID, svc.lastViewer.UserID)

		var body struct {
			Data response.ProductDetail `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Data.LikedByMe)
	})

	t.Run("create requires a token", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/products", "", `{"name":"tent","price":"1"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create decodes body", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/products", token, `{"name":"tent","price":"2000000"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "tent", svc.lastCreate.Name)
		assert.True(t, decimal.NewFromInt(2_000_000).Equal(svc.lastCreate.Price))
	})

	t.Run("delete maps forbidden", func(t *testing.T) {
		svc.err = inErrors.ErrForbidden
		defer func() { svc.err = nil }()
		rec := do(router, http.MethodDelete, "/products/"+productID.String(), token, "")
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("like by path", func(t *testing.T) {
		rec := do(router, http.MethodPut, "/products/"+productID.String()+"/like", token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, productID, svc.lastToggle)
	})

	t.Run("favorites toggle by body", func(t *testing.T) {
		other := uuid.New()
		rec := do(router, http.MethodPost, "/favorites/toggle", token, `{"productId":"`+other.String()+`"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, other, svc.lastToggle)
	})

	t.Run("favorites toggle requires product id", func(t *testing.T) {
		rec := do(router, http.MethodPost, "/favorites/toggle", token, `{}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("favorites requires a token", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/favorites", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
