package stock

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/logger"
	"barangay-asset-backend/internal/utils"
)

// PostgresLedger keeps stock counters in the assets table and reservation
// rows alongside them. The check-then-decrement runs as one guarded UPDATE
// so the database serializes racing reservations.
type PostgresLedger struct {
	db *sql.DB
}

func NewPostgresLedger(db *sql.DB) *PostgresLedger {
	return &PostgresLedger{db: db}
}

func (l *PostgresLedger) Reserve(ctx context.Context, assetID, qty int32) (*Reservation, error) {
	if qty < 1 {
		return nil, domain.ErrInvalidQuantity
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE assets SET stock = stock - $2, updated_on = $3
		 WHERE id = $1 AND stock >= $2 AND status = 'AVAILABLE'`,
		assetID, qty, time.Now())
	if err != nil {
		return nil, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("%w: asset %d", domain.ErrInsufficientStock, assetID)
	}

	rsv := &Reservation{
		Token:     utils.NewReservationToken(),
		AssetID:   assetID,
		Quantity:  qty,
		CreatedOn: time.Now(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO stock_reservations (token, asset_id, quantity, released, created_on)
		 VALUES ($1, $2, $3, FALSE, $4)`,
		rsv.Token, rsv.AssetID, rsv.Quantity, rsv.CreatedOn)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	logger.Debug("Stock reserved", "asset_id", assetID, "quantity", qty, "token", rsv.Token)
	return rsv, nil
}

func (l *PostgresLedger) Release(ctx context.Context, token string) error {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Flip the reservation first; zero rows means it was already released
	// and the stock must not be incremented again.
	var assetID, qty int32
	err = tx.QueryRowContext(ctx,
		`UPDATE stock_reservations SET released = TRUE, released_on = $2
		 WHERE token = $1 AND released = FALSE
		 RETURNING asset_id, quantity`,
		token, time.Now()).Scan(&assetID, &qty)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE assets SET stock = stock + $2, updated_on = $3 WHERE id = $1`,
		assetID, qty, time.Now())
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	logger.Debug("Stock released", "asset_id", assetID, "quantity", qty, "token", token)
	return nil
}
