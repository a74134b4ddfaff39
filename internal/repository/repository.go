package repository

import (
	"context"
	"time"

	"barangay-asset-backend/internal/domain"
)

type AssetRepository interface {
	Create(ctx context.Context, asset *domain.Asset) error
	GetByID(ctx context.Context, id int32) (*domain.Asset, error)
	Update(ctx context.Context, asset *domain.Asset) error
	List(ctx context.Context, category string, page, pageSize int32) ([]domain.Asset, int32, error)
}

type RequestRepository interface {
	// CreateWithItems persists a request and all of its lines in one
	// transaction; ids are written back onto the passed structs.
	CreateWithItems(ctx context.Context, req *domain.AssetRequest) error
	GetByID(ctx context.Context, id int32) (*domain.AssetRequest, error)
	GetItemByID(ctx context.Context, id int32) (*domain.AssetRequestItem, error)
	ListByRequester(ctx context.Context, requesterID int32, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error)
	List(ctx context.Context, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error)

	// TransitionItem applies from→to only if the line still holds the
	// from status. false means another writer got there first.
	TransitionItem(ctx context.Context, itemID int32, from, to domain.ItemStatus) (bool, error)
	// MarkItemReturned is the PAID→RETURNED transition plus the returned
	// flag and timestamp, applied under the same guard.
	MarkItemReturned(ctx context.Context, itemID int32, returnedAt time.Time) (bool, error)
	// SetItemRating records a one-time rating and moves the line to
	// RATED; guarded on RETURNED status and an unset rating.
	SetItemRating(ctx context.Context, itemID int32, stars int32) (bool, error)
	SetItemReturnDate(ctx context.Context, itemID int32, returnDate string) error
	SetItemTracking(ctx context.Context, itemID int32, tracking string) error

	// MarkPaid assigns the receipt number and amount exactly once,
	// guarded on payment status. false means the request was already paid.
	MarkPaid(ctx context.Context, requestID int32, receiptNumber string, amountCents int32) (bool, error)

	// ListUnreturnedDueBefore finds paid, unreturned lines whose return
	// date is before the given date. Used by the reminder job only; the
	// authoritative overdue signal stays computed per read.
	ListUnreturnedDueBefore(ctx context.Context, date string) ([]domain.AssetRequestItem, error)
}

type ProofRepository interface {
	Create(ctx context.Context, proof *domain.ReturnProof) error
	GetLatestByItem(ctx context.Context, itemID int32) (*domain.ReturnProof, error)
	Review(ctx context.Context, proofID int32, status domain.ProofStatus, reason string, reviewedOn time.Time) error
}

type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id, userID int32) error
}
