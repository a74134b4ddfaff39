package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/repository"
	"barangay-asset-backend/internal/utils"
)

type requestRepository struct {
	db *sql.DB
}

func NewRequestRepository(db *sql.DB) repository.RequestRepository {
	return &requestRepository{db: db}
}

const itemColumns = `id, request_id, asset_id, quantity, request_date, return_date, rental_duration_days,
	price_cents, status, is_returned, returned_at, rating, COALESCE(tracking_number, ''),
	reservation_token, created_on, updated_on`

func (r *requestRepository) CreateWithItems(ctx context.Context, req *domain.AssetRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	err = tx.QueryRowContext(ctx,
		`INSERT INTO asset_requests (requester_id, custom_request_id, payment_status, amount_paid_cents, created_on, updated_on)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		req.RequesterID, req.CustomRequestID, req.PaymentStatus, req.AmountPaidCents, req.CreatedOn, now).Scan(&req.ID)
	if err != nil {
		return err
	}

	for i := range req.Items {
		it := &req.Items[i]
		it.RequestID = req.ID
		err = tx.QueryRowContext(ctx,
			`INSERT INTO asset_request_items
			 (request_id, asset_id, quantity, request_date, return_date, rental_duration_days,
			  price_cents, status, is_returned, rating, reservation_token, created_on, updated_on)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, 0, $9, $10, $11) RETURNING id`,
			it.RequestID, it.AssetID, it.Quantity, it.RequestDate, it.ReturnDate, it.RentalDurationDays,
			it.PriceCents, it.Status, it.ReservationToken, now, now).Scan(&it.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *requestRepository) GetByID(ctx context.Context, id int32) (*domain.AssetRequest, error) {
	req := &domain.AssetRequest{}
	query := `SELECT id, requester_id, custom_request_id, payment_status, receipt_number, amount_paid_cents, created_on, updated_on
	          FROM asset_requests WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&req.ID, &req.RequesterID, &req.CustomRequestID,
		&req.PaymentStatus, &req.ReceiptNumber, &req.AmountPaidCents, &req.CreatedOn, &req.UpdatedOn)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM asset_request_items WHERE request_id = $1 ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.AssetRequestItem
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		req.Items = append(req.Items, it)
	}
	return req, rows.Err()
}

func (r *requestRepository) GetItemByID(ctx context.Context, id int32) (*domain.AssetRequestItem, error) {
	it := &domain.AssetRequestItem{}
	row := r.db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM asset_request_items WHERE id = $1`, id)
	err := scanItem(row, it)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return it, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// request_date and return_date are DATE columns; pq hands them over as
// time.Time, so they are scanned as such and reformatted to the wire
// layout the window and period calculators expect.
func scanItem(row rowScanner, it *domain.AssetRequestItem) error {
	var requestDate, returnDate time.Time
	err := row.Scan(&it.ID, &it.RequestID, &it.AssetID, &it.Quantity, &requestDate, &returnDate,
		&it.RentalDurationDays, &it.PriceCents, &it.Status, &it.IsReturned, &it.ReturnedAt,
		&it.Rating, &it.TrackingNumber, &it.ReservationToken, &it.CreatedOn, &it.UpdatedOn)
	if err != nil {
		return err
	}
	it.RequestDate = requestDate.Format(utils.DateLayout)
	it.ReturnDate = returnDate.Format(utils.DateLayout)
	return nil
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID int32, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error) {
	return r.list(ctx, "requester_id = $1", []interface{}{requesterID}, status, page, pageSize)
}

func (r *requestRepository) List(ctx context.Context, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error) {
	return r.list(ctx, "1=1", nil, status, page, pageSize)
}

func (r *requestRepository) list(ctx context.Context, where string, args []interface{}, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT DISTINCT r.id, r.requester_id, r.custom_request_id, r.payment_status, r.receipt_number,
	                 r.amount_paid_cents, r.created_on, r.updated_on
	          FROM asset_requests r`
	if status != "" {
		query += ` JOIN asset_request_items i ON i.request_id = r.id AND i.status = $` + fmt.Sprint(len(args)+1)
		args = append(args, status)
	}
	query += ` WHERE ` + where

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY r.created_on DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reqs []domain.AssetRequest
	for rows.Next() {
		var req domain.AssetRequest
		if err := rows.Scan(&req.ID, &req.RequesterID, &req.CustomRequestID, &req.PaymentStatus,
			&req.ReceiptNumber, &req.AmountPaidCents, &req.CreatedOn, &req.UpdatedOn); err != nil {
			return nil, 0, err
		}
		reqs = append(reqs, req)
	}
	return reqs, count, nil
}

func (r *requestRepository) TransitionItem(ctx context.Context, itemID int32, from, to domain.ItemStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE asset_request_items SET status = $3, updated_on = $4 WHERE id = $1 AND status = $2`,
		itemID, from, to, time.Now())
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *requestRepository) MarkItemReturned(ctx context.Context, itemID int32, returnedAt time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE asset_request_items
		 SET status = $2, is_returned = TRUE, returned_at = $3, updated_on = $4
		 WHERE id = $1 AND status = $5`,
		itemID, domain.ItemStatusReturned, returnedAt, time.Now(), domain.ItemStatusPaid)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *requestRepository) SetItemRating(ctx context.Context, itemID int32, stars int32) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE asset_request_items SET status = $3, rating = $2, updated_on = $4
		 WHERE id = $1 AND status = $5 AND rating = 0`,
		itemID, stars, domain.ItemStatusRated, time.Now(), domain.ItemStatusReturned)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *requestRepository) SetItemReturnDate(ctx context.Context, itemID int32, returnDate string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE asset_request_items SET return_date = $2, updated_on = $3 WHERE id = $1`,
		itemID, returnDate, time.Now())
	return err
}

func (r *requestRepository) SetItemTracking(ctx context.Context, itemID int32, tracking string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE asset_request_items SET tracking_number = $2, updated_on = $3 WHERE id = $1`,
		itemID, tracking, time.Now())
	return err
}

func (r *requestRepository) MarkPaid(ctx context.Context, requestID int32, receiptNumber string, amountCents int32) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE asset_requests
		 SET payment_status = $2, receipt_number = $3, amount_paid_cents = $4, updated_on = $5
		 WHERE id = $1 AND payment_status = $6`,
		requestID, domain.PaymentStatusPaid, receiptNumber, amountCents, time.Now(), domain.PaymentStatusUnpaid)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *requestRepository) ListUnreturnedDueBefore(ctx context.Context, date string) ([]domain.AssetRequestItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM asset_request_items
		 WHERE status = $1 AND is_returned = FALSE AND return_date < $2 ORDER BY return_date`,
		domain.ItemStatusPaid, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.AssetRequestItem
	for rows.Next() {
		var it domain.AssetRequestItem
		if err := scanItem(rows, &it); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
