package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"barangay-asset-backend/internal/cart"
	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/security"
	"barangay-asset-backend/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-0123456789abcdef0123456789"

// stubRequestSvc overrides only the methods a test exercises; calling an
// unstubbed method panics, which is what we want in a unit test.
type stubRequestSvc struct {
	service.RequestService
	getRequest func(ctx context.Context, requesterID, requestID int32, staff bool) (*domain.AssetRequest, error)
	pay        func(ctx context.Context, requesterID, requestID int32) (*domain.AssetRequest, error)
	cancel     func(ctx context.Context, requesterID, requestID int32) error
	rate       func(ctx context.Context, requesterID, itemID int32, stars int32) (*domain.AssetRequestItem, error)
	deny       func(ctx context.Context, requestID int32) (*domain.AssetRequest, error)
}

func (s *stubRequestSvc) GetRequest(ctx context.Context, requesterID, requestID int32, staff bool) (*domain.AssetRequest, error) {
	return s.getRequest(ctx, requesterID, requestID, staff)
}
func (s *stubRequestSvc) Pay(ctx context.Context, requesterID, requestID int32) (*domain.AssetRequest, error) {
	return s.pay(ctx, requesterID, requestID)
}
func (s *stubRequestSvc) Cancel(ctx context.Context, requesterID, requestID int32) error {
	return s.cancel(ctx, requesterID, requestID)
}
func (s *stubRequestSvc) Rate(ctx context.Context, requesterID, itemID int32, stars int32) (*domain.AssetRequestItem, error) {
	return s.rate(ctx, requesterID, itemID, stars)
}
func (s *stubRequestSvc) DenyRequest(ctx context.Context, requestID int32) (*domain.AssetRequest, error) {
	return s.deny(ctx, requestID)
}

type stubAssetRepo struct {
	asset *domain.Asset
}

func (s *stubAssetRepo) Create(ctx context.Context, asset *domain.Asset) error { return nil }
func (s *stubAssetRepo) GetByID(ctx context.Context, id int32) (*domain.Asset, error) {
	if s.asset == nil {
		return nil, domain.ErrNotFound
	}
	return s.asset, nil
}
func (s *stubAssetRepo) Update(ctx context.Context, asset *domain.Asset) error { return nil }
func (s *stubAssetRepo) List(ctx context.Context, category string, page, pageSize int32) ([]domain.Asset, int32, error) {
	return nil, 0, nil
}

type handlerFixture struct {
	handler *Handler
	tokens  security.TokenManager
	svc     *stubRequestSvc
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()
	tokens := security.NewTokenManager(testSecret)
	svc := &stubRequestSvc{}
	cartStore := cart.NewStore(&stubAssetRepo{
		asset: &domain.Asset{ID: 1, Name: "Tent", PriceCents: 800, Stock: 5, Status: domain.AssetStatusAvailable},
	})
	h := NewHandler(cartStore, svc, nil, nil, tokens, 24*time.Hour)
	return &handlerFixture{handler: h, tokens: tokens, svc: svc}
}

func (f *handlerFixture) request(t *testing.T, method, path, body string, userID int32, roles ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if userID != 0 {
		token, err := f.tokens.GenerateAccessToken(userID, "user@test", roles)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.Router().ServeHTTP(rec, req)
	return rec
}

func TestRouter_Auth(t *testing.T) {
	f := newHandlerFixture(t)

	t.Run("Missing Token", func(t *testing.T) {
		rec := f.request(t, http.MethodGet, "/api/v1/cart/lines", "", 0)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Garbage Token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/lines", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		f.handler.Router().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Staff Route Rejects Resident", func(t *testing.T) {
		rec := f.request(t, http.MethodPost, "/api/v1/requests/10/deny", "", 7)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Staff Route Accepts Staff", func(t *testing.T) {
		f.svc.deny = func(ctx context.Context, requestID int32) (*domain.AssetRequest, error) {
			return &domain.AssetRequest{ID: requestID}, nil
		}
		rec := f.request(t, http.MethodPost, "/api/v1/requests/10/deny", "", 7, security.RoleStaff)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCartEndpoints(t *testing.T) {
	t.Run("Add And List", func(t *testing.T) {
		f := newHandlerFixture(t)
		body := `{"asset_id":1,"quantity":2,"request_date":"2025-11-15","until_date":"2025-11-16"}`
		rec := f.request(t, http.MethodPost, "/api/v1/cart/lines", body, 7)
		assert.Equal(t, http.StatusCreated, rec.Code)

		rec = f.request(t, http.MethodGet, "/api/v1/cart/lines", "", 7)
		assert.Equal(t, http.StatusOK, rec.Code)
		var lines []domain.CartLine
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
		assert.Len(t, lines, 1)
	})

	t.Run("Malformed Date Is 400", func(t *testing.T) {
		f := newHandlerFixture(t)
		body := `{"asset_id":1,"quantity":2,"request_date":"15-11-2025","until_date":"2025-11-16"}`
		rec := f.request(t, http.MethodPost, "/api/v1/cart/lines", body, 7)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Window Too Long Is 422", func(t *testing.T) {
		f := newHandlerFixture(t)
		body := `{"asset_id":1,"quantity":2,"request_date":"2025-11-15","until_date":"2025-11-23"}`
		rec := f.request(t, http.MethodPost, "/api/v1/cart/lines", body, 7)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("Duplicate Line Is 409", func(t *testing.T) {
		f := newHandlerFixture(t)
		body := `{"asset_id":1,"quantity":2,"request_date":"2025-11-15","until_date":"2025-11-16"}`
		rec := f.request(t, http.MethodPost, "/api/v1/cart/lines", body, 7)
		require.Equal(t, http.StatusCreated, rec.Code)
		rec = f.request(t, http.MethodPost, "/api/v1/cart/lines", body, 7)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestRequestEndpoints(t *testing.T) {
	t.Run("Cancel Past Window Is 403", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.svc.cancel = func(ctx context.Context, requesterID, requestID int32) error {
			return domain.ErrCancellationWindowExpired
		}
		rec := f.request(t, http.MethodPost, "/api/v1/requests/10/cancel", "", 7)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("Pay Conflict Is 409", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.svc.pay = func(ctx context.Context, requesterID, requestID int32) (*domain.AssetRequest, error) {
			return nil, domain.ErrInvalidTransition
		}
		rec := f.request(t, http.MethodPost, "/api/v1/requests/10/pay", "", 7)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("Rate Out Of Range Is 422", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.svc.rate = func(ctx context.Context, requesterID, itemID int32, stars int32) (*domain.AssetRequestItem, error) {
			assert.Equal(t, int32(9), stars)
			return nil, domain.ErrInvalidRating
		}
		rec := f.request(t, http.MethodPost, "/api/v1/items/100/rate", `{"stars":9}`, 7)
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})

	t.Run("Overdue Is Derived Per Read", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.svc.getRequest = func(ctx context.Context, requesterID, requestID int32, staff bool) (*domain.AssetRequest, error) {
			return &domain.AssetRequest{
				ID:          requestID,
				RequesterID: requesterID,
				Items: []domain.AssetRequestItem{
					{ID: 100, RequestID: requestID, ReturnDate: "2020-01-02", Status: domain.ItemStatusPaid},
				},
			}, nil
		}

		rec := f.request(t, http.MethodGet, "/api/v1/requests/10", "", 7)
		require.Equal(t, http.StatusOK, rec.Code)

		var view struct {
			Items []struct {
				Period *struct {
					Status string `json:"status"`
				} `json:"period"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		require.Len(t, view.Items, 1)
		require.NotNil(t, view.Items[0].Period)
		assert.Equal(t, "OVERDUE", view.Items[0].Period.Status)
	})

	t.Run("Not Found Is 404", func(t *testing.T) {
		f := newHandlerFixture(t)
		f.svc.getRequest = func(ctx context.Context, requesterID, requestID int32, staff bool) (*domain.AssetRequest, error) {
			return nil, domain.ErrNotFound
		}
		rec := f.request(t, http.MethodGet, "/api/v1/requests/99", "", 7)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
