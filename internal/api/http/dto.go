package http

import (
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/utils"
)

type addCartLineRequest struct {
	AssetID     int32  `json:"asset_id" validate:"required,min=1"`
	Quantity    int32  `json:"quantity" validate:"required,min=1"`
	RequestDate string `json:"request_date" validate:"required,datetime=2006-01-02"`
	UntilDate   string `json:"until_date" validate:"required,datetime=2006-01-02"`
}

type removeCartLineRequest struct {
	AssetID     int32  `json:"asset_id" validate:"required,min=1"`
	RequestDate string `json:"request_date" validate:"required,datetime=2006-01-02"`
}

type setReturnDateRequest struct {
	ReturnDate string `json:"return_date" validate:"required,datetime=2006-01-02"`
}

type setTrackingRequest struct {
	TrackingNumber string `json:"tracking_number" validate:"required,max=64"`
}

type returnProofRequest struct {
	Note     string `json:"note" validate:"required_without=PhotoURL,max=500"`
	PhotoURL string `json:"photo_url" validate:"omitempty,url"`
}

type rejectReturnRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// Stars carries no validate tags: the 1..5 range is a business rule and
// the service answers violations with ErrInvalidRating (422, not 400).
type rateRequest struct {
	Stars int32 `json:"stars"`
}

type assetRequest struct {
	Name       string `json:"name" validate:"required,max=120"`
	Category   string `json:"category" validate:"required,max=60"`
	PriceCents int32  `json:"price_cents" validate:"min=0"`
	Stock      int32  `json:"stock" validate:"min=0"`
	Status     string `json:"status" validate:"omitempty,oneof=AVAILABLE MAINTENANCE UNAVAILABLE"`
}

type periodView struct {
	Status    utils.PeriodStatus `json:"status"`
	Remaining *utils.Remaining   `json:"remaining,omitempty"`
}

type itemView struct {
	domain.AssetRequestItem
	Period *periodView `json:"period,omitempty"`
}

type requestView struct {
	domain.AssetRequest
	Items []itemView `json:"items,omitempty"`
}

type listResponse struct {
	Data  any   `json:"data"`
	Total int32 `json:"total"`
	Page  int32 `json:"page"`
}

// newItemView attaches the computed rental period to a paid line. The
// classification is never stored, each response derives it fresh.
func newItemView(it domain.AssetRequestItem, now time.Time, horizon time.Duration) itemView {
	v := itemView{AssetRequestItem: it}
	if it.Status != domain.ItemStatusPaid && !it.IsReturned {
		return v
	}
	status, rem, err := utils.ClassifyPeriod(it.ReturnDate, it.IsReturned, now, horizon)
	if err != nil {
		return v
	}
	pv := &periodView{Status: status}
	if status == utils.PeriodActive || status == utils.PeriodDueSoon {
		pv.Remaining = &rem
	}
	v.Period = pv
	return v
}

func newRequestView(req *domain.AssetRequest, now time.Time, horizon time.Duration) requestView {
	v := requestView{AssetRequest: *req}
	v.AssetRequest.Items = nil
	for _, it := range req.Items {
		v.Items = append(v.Items, newItemView(it, now, horizon))
	}
	return v
}
