package service

import (
	"context"

	"barangay-asset-backend/internal/domain"
)

type AssetService interface {
	AddAsset(ctx context.Context, asset *domain.Asset) error
	GetAsset(ctx context.Context, id int32) (*domain.Asset, error)
	UpdateAsset(ctx context.Context, asset *domain.Asset) error
	ListAssets(ctx context.Context, category string, page, pageSize int32) ([]domain.Asset, int32, error)
}

type RequestService interface {
	// Submit is the checkout path: reserve stock for every line, then
	// create the request with all lines PENDING. All-or-nothing.
	Submit(ctx context.Context, requesterID int32, lines []domain.CartLine) (*domain.AssetRequest, error)

	GetRequest(ctx context.Context, requesterID int32, requestID int32, staff bool) (*domain.AssetRequest, error)
	ListRequests(ctx context.Context, requesterID int32, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error)
	ListAllRequests(ctx context.Context, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error)

	// Staff decisions, per line.
	ApproveItem(ctx context.Context, itemID int32) (*domain.AssetRequestItem, error)
	DenyItem(ctx context.Context, itemID int32) (*domain.AssetRequestItem, error)
	// Request-level convenience: apply the decision to every pending line.
	ApproveRequest(ctx context.Context, requestID int32) (*domain.AssetRequest, error)
	DenyRequest(ctx context.Context, requestID int32) (*domain.AssetRequest, error)

	// Pay settles the whole request; legal only when every line is
	// APPROVED. Receipt number and amount are assigned exactly once.
	Pay(ctx context.Context, requesterID, requestID int32) (*domain.AssetRequest, error)

	// Cancel voids the request's pending/approved lines within the
	// cancellation window and releases their stock.
	Cancel(ctx context.Context, requesterID, requestID int32) error
	CancelItem(ctx context.Context, requesterID, itemID int32) error

	// Staff maintenance on lines.
	SetReturnDate(ctx context.Context, itemID int32, returnDate string) (*domain.AssetRequestItem, error)
	SetTrackingNumber(ctx context.Context, itemID int32, tracking string) (*domain.AssetRequestItem, error)

	// Return verification.
	SubmitReturnProof(ctx context.Context, requesterID, itemID int32, note, photoURL string) (*domain.ReturnProof, error)
	ApproveReturn(ctx context.Context, itemID int32) (*domain.AssetRequestItem, error)
	RejectReturn(ctx context.Context, itemID int32, reason string) error

	// Rating, once per returned line.
	Rate(ctx context.Context, requesterID, itemID int32, stars int32) (*domain.AssetRequestItem, error)
}

type NotificationService interface {
	GetNotifications(ctx context.Context, userID int32, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, userID, notificationID int32) error
}

// EmailService covers the mail the backend itself originates. Requester
// addresses live in the identity provider, so outbound mail targets the
// barangay staff inbox; requesters are reached through in-app
// notifications instead.
type EmailService interface {
	SendCheckoutAlert(ctx context.Context, staffEmail, customRequestID string, lineCount int32) error
	SendOverdueReminder(ctx context.Context, staffEmail, customRequestID, returnDate string) error
}
