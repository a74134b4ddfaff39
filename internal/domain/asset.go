package domain

import "time"

type AssetStatus string

const (
	AssetStatusAvailable   AssetStatus = "AVAILABLE"
	AssetStatusMaintenance AssetStatus = "MAINTENANCE"
	AssetStatusUnavailable AssetStatus = "UNAVAILABLE"
)

// Asset is a catalog entry for a rentable physical asset. Stock is only
// mutated through the stock ledger's reserve/release operations.
type Asset struct {
	ID         int32       `json:"id"`
	Name       string      `json:"name"`
	Category   string      `json:"category"`
	PriceCents int32       `json:"price_cents"` // per rental day
	Stock      int32       `json:"stock"`
	Status     AssetStatus `json:"status"`
	CreatedOn  time.Time   `json:"created_on"`
	UpdatedOn  time.Time   `json:"updated_on"`
}
