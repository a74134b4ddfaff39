package http

import (
	"net/http"
	"strconv"
	"time"

	"barangay-asset-backend/internal/cart"
	"barangay-asset-backend/internal/security"
	"barangay-asset-backend/internal/service"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// Handler wires the REST surface to the services. Identity comes from the
// validated bearer token, never from request bodies.
type Handler struct {
	cartStore  *cart.Store
	requestSvc service.RequestService
	assetSvc   service.AssetService
	noteSvc    service.NotificationService
	tokens     security.TokenManager
	validate   *validatorv10.Validate

	dueSoonHorizon time.Duration
	nowFunc        func() time.Time
}

func NewHandler(
	cartStore *cart.Store,
	requestSvc service.RequestService,
	assetSvc service.AssetService,
	noteSvc service.NotificationService,
	tokens security.TokenManager,
	dueSoonHorizon time.Duration,
) *Handler {
	return &Handler{
		cartStore:      cartStore,
		requestSvc:     requestSvc,
		assetSvc:       assetSvc,
		noteSvc:        noteSvc,
		tokens:         tokens,
		validate:       validatorv10.New(),
		dueSoonHorizon: dueSoonHorizon,
		nowFunc:        time.Now,
	}
}

// Router builds the /api/v1 route table. Every route requires a valid
// token; staff-only routes re-check the role claim.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware(h.tokens))

	// Cart and checkout.
	api.HandleFunc("/cart/lines", h.AddCartLine).Methods(http.MethodPost)
	api.HandleFunc("/cart/lines", h.ListCartLines).Methods(http.MethodGet)
	api.HandleFunc("/cart/lines", h.RemoveCartLine).Methods(http.MethodDelete)
	api.HandleFunc("/checkout", h.Checkout).Methods(http.MethodPost)

	// Requests.
	api.HandleFunc("/requests", h.ListRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id:[0-9]+}", h.GetRequest).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id:[0-9]+}/approve", requireStaff(h.ApproveRequest)).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}/deny", requireStaff(h.DenyRequest)).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}/pay", h.Pay).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id:[0-9]+}/cancel", h.CancelRequest).Methods(http.MethodPost)

	// Request lines.
	api.HandleFunc("/items/{id:[0-9]+}/approve", requireStaff(h.ApproveItem)).Methods(http.MethodPost)
	api.HandleFunc("/items/{id:[0-9]+}/deny", requireStaff(h.DenyItem)).Methods(http.MethodPost)
	api.HandleFunc("/items/{id:[0-9]+}/cancel", h.CancelItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id:[0-9]+}/return-proof", h.SubmitReturnProof).Methods(http.MethodPost)
	api.HandleFunc("/items/{id:[0-9]+}/approve-return", requireStaff(h.ApproveReturn)).Methods(http.MethodPost)
	api.HandleFunc("/items/{id:[0-9]+}/reject-return", requireStaff(h.RejectReturn)).Methods(http.MethodPost)
	api.HandleFunc("/items/{id:[0-9]+}/rate", h.RateItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id:[0-9]+}/return-date", requireStaff(h.SetReturnDate)).Methods(http.MethodPut)
	api.HandleFunc("/items/{id:[0-9]+}/tracking", requireStaff(h.SetTracking)).Methods(http.MethodPut)

	// Assets.
	api.HandleFunc("/assets", h.ListAssets).Methods(http.MethodGet)
	api.HandleFunc("/assets", requireStaff(h.CreateAsset)).Methods(http.MethodPost)
	api.HandleFunc("/assets/{id:[0-9]+}", h.GetAsset).Methods(http.MethodGet)
	api.HandleFunc("/assets/{id:[0-9]+}", requireStaff(h.UpdateAsset)).Methods(http.MethodPut)

	// Notifications.
	api.HandleFunc("/notifications", h.ListNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", h.MarkNotificationRead).Methods(http.MethodPost)

	return r
}

func pathID(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(id), nil
}

func pagination(r *http.Request) (page, pageSize int32) {
	page, pageSize = 1, 20
	if v, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32); err == nil && v > 0 {
		page = int32(v)
	}
	if v, err := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32); err == nil && v > 0 && v <= 100 {
		pageSize = int32(v)
	}
	return page, pageSize
}
