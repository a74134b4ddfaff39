package domain

import "time"

// CartLine is a pending reservation intent. It lives only in the
// requester's server-side cart until checkout consumes or discards it.
type CartLine struct {
	AssetID     int32     `json:"asset_id"`
	RequestDate string    `json:"request_date"` // yyyy-mm-dd
	UntilDate   string    `json:"until_date"`   // yyyy-mm-dd, inclusive
	Quantity    int32     `json:"quantity"`
	AddedOn     time.Time `json:"added_on"`
}

// CartKey identifies a line within a cart. Inserting a second line with the
// same key fails with ErrDuplicateCartEntry.
type CartKey struct {
	AssetID     int32
	RequestDate string
}

func (l CartLine) Key() CartKey {
	return CartKey{AssetID: l.AssetID, RequestDate: l.RequestDate}
}
