package domain

import "time"

type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "PENDING"
	ItemStatusApproved  ItemStatus = "APPROVED"
	ItemStatusDenied    ItemStatus = "DENIED"
	ItemStatusCancelled ItemStatus = "CANCELLED"
	ItemStatusPaid      ItemStatus = "PAID"
	ItemStatusReturned  ItemStatus = "RETURNED"
	ItemStatusRated     ItemStatus = "RATED"
)

// Terminal reports whether no further transition is legal from s.
func (s ItemStatus) Terminal() bool {
	return s == ItemStatusDenied || s == ItemStatusCancelled || s == ItemStatusRated
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// AssetRequest is one checkout transaction. CustomRequestID and
// ReceiptNumber are assigned at most once and never recomputed.
type AssetRequest struct {
	ID              int32              `json:"id"`
	RequesterID     int32              `json:"requester_id"`
	CustomRequestID string             `json:"custom_request_id"`
	PaymentStatus   PaymentStatus      `json:"payment_status"`
	ReceiptNumber   *string            `json:"receipt_number,omitempty"`
	AmountPaidCents int32              `json:"amount_paid_cents"`
	CreatedOn       time.Time          `json:"created_on"`
	UpdatedOn       time.Time          `json:"updated_on"`
	Items           []AssetRequestItem `json:"items,omitempty"`
}

// AssetRequestItem is a single line of an AssetRequest. Dates are
// yyyy-mm-dd. PriceCents snapshots the asset's daily price at checkout so
// later catalog edits never change what a request costs.
type AssetRequestItem struct {
	ID                 int32      `json:"id"`
	RequestID          int32      `json:"request_id"`
	AssetID            int32      `json:"asset_id"`
	Quantity           int32      `json:"quantity"`
	RequestDate        string     `json:"request_date"`
	ReturnDate         string     `json:"return_date"`
	RentalDurationDays int32      `json:"rental_duration_days"`
	PriceCents         int32      `json:"price_cents"`
	Status             ItemStatus `json:"status"`
	IsReturned         bool       `json:"is_returned"`
	ReturnedAt         *time.Time `json:"returned_at,omitempty"`
	Rating             int32      `json:"rating"` // 0 = unset
	TrackingNumber     string     `json:"tracking_number,omitempty"`
	ReservationToken   string     `json:"-"`
	CreatedOn          time.Time  `json:"created_on"`
	UpdatedOn          time.Time  `json:"updated_on"`
}

// LineCostCents is quantity * daily price snapshot * inclusive rental days.
func (it *AssetRequestItem) LineCostCents() int32 {
	return it.Quantity * it.PriceCents * it.RentalDurationDays
}

type ProofStatus string

const (
	ProofStatusPending  ProofStatus = "PENDING"
	ProofStatusApproved ProofStatus = "APPROVED"
	ProofStatusRejected ProofStatus = "REJECTED"
)

// ReturnProof is a requester's claim that an item came back; review happens
// in the staff UI, this engine only gates the RETURNED transition on it.
type ReturnProof struct {
	ID          int32       `json:"id"`
	ItemID      int32       `json:"item_id"`
	Note        string      `json:"note"`
	PhotoURL    string      `json:"photo_url,omitempty"`
	Status      ProofStatus `json:"status"`
	Reason      string      `json:"reason,omitempty"`
	SubmittedOn time.Time   `json:"submitted_on"`
	ReviewedOn  *time.Time  `json:"reviewed_on,omitempty"`
}
