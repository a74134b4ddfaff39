package stock

import (
	"context"
	"time"
)

// Reservation is a claim on asset stock. The token is the handle for a
// later release; the quantity rejoins the asset's stock exactly once no
// matter how many release paths fire.
type Reservation struct {
	Token     string    `json:"token"`
	AssetID   int32     `json:"asset_id"`
	Quantity  int32     `json:"quantity"`
	Released  bool      `json:"released"`
	CreatedOn time.Time `json:"created_on"`
}

// Ledger is the single source of truth for asset availability. Reserve is
// an atomic check-and-decrement: concurrent reservations against the same
// asset can never take stock below zero. Release is idempotent per token so
// independent paths (denial, cancellation, return) may race safely.
type Ledger interface {
	Reserve(ctx context.Context, assetID, qty int32) (*Reservation, error)
	Release(ctx context.Context, token string) error
}
