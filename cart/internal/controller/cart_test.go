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

	"github.com/Alturino/gearshare/cart/pkg/request"
	"github.com/Alturino/gearshare/cart/pkg/response"
	"github.com/Alturino/gearshare/internal/auth"
	inErrors "github.com/Alturino/gearshare/internal/errors"
)

type fakeService struct {
	lastUser   uuid.UUID
	lastUpsert request.UpsertCartLine
	removeErr  error
}

func (f *fakeService) cart(userID uuid.UUID) response.Cart {
	f.lastUser = userID
	return response.Cart{
		UserID:      userID,
		Items:       []response.LineItem{},
		TotalAmount: decimal.NewFromInt(1_000_000),
		ItemCount:   2,
		LineCount:   1,
	}
}

func (f *fakeService) BuildCart(_ context.Context, userID uuid.UUID) (response.Cart, error) {
	return f.cart(userID), nil
}

func (f *fakeService) AddOrUpdate(
	_ context.Context,
	userID uuid.UUID,
	param request.UpsertCartLine,
) (response.Cart, error) {
	f.lastUpsert = param
	return f.cart(userID), nil
}

func (f *fakeService) Remove(
	_ context.Context,
	userID uuid.UUID,
	_ request.RemoveCartLine,
) (response.Cart, error) {
	if f.removeErr != nil {
		return response.Cart{}, f.removeErr
	}
	return f.cart(userID), nil
}

func (f *fakeService) Clear(_ context.Context, userID uuid.UUID) (response.Cart, error) {
	return f.cart(userID), nil
}

func setup(t *testing.T) (*mux.Router, *fakeService, string, uuid.UUID) {
	verifier := auth.NewVerifier("secret", time.Hour)
	userID := uuid.New()
	token, err := verifier.Issue(context.Background(), userID, auth.RoleUser)
	require.NoError(t, err)

	svc := &fakeService{}
	router := mux.NewRouter()
	AttachCartController(router, svc, verifier)
	return router, svc, token, userID
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

func TestCartController(t *testing.T) {
	router, svc, token, userID := setup(t)

	t.Run("requires a token", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/cart", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("find cart", func(t *testing.T) {
		rec := do(router, http.MethodGet, "/cart", token, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, svc.lastUser)

		var body struct {
			Status string `json:"status"`
			Data   struct {
				Cart response.Cart `json:"cart"`
			} `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "success", body.Status)
		assert.Equal(t, 2, body.Data.Cart.ItemCount)
		assert.True(t, decimal.NewFromInt(1_000_000).Equal(body.Data.Cart.TotalAmount))
	})

	t.Run("upsert decodes body", func(t *testing.T) {
		productID := uuid.New()
		rec := do(router, http.MethodPut, "/cart", token,
			`{"productId":"`+productID.String()+`","quantity":2,"action":"add","selectedOption":{"name":"large","extraPrice":"5000"}}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, productID, svc.lastUpsert.ProductID)
		assert.Equal(t, "large", svc.lastUpsert.Option())
		assert.Equal(t, request.ActionAdd, svc.lastUpsert.Mode())
		require.NotNil(t, svc.lastUpsert.OptionExtraPrice())
		assert.True(t, decimal.NewFromInt(5000).Equal(*svc.lastUpsert.OptionExtraPrice()))
	})

	t.Run("malformed body", func(t *testing.T) {
		rec := do(router, http.MethodPut, "/cart", token, `{"productId":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("remove maps not found", func(t *testing.T) {
		svc.removeErr = inErrors.ErrNotFound
		rec := do(router, http.MethodDelete, "/cart/items", token, `{"productId":"`+uuid.NewString()+`"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		svc.removeErr = nil
	})

	t.Run("clear", func(t *testing.T) {
		rec := do(router, http.MethodDelete, "/cart", token, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
