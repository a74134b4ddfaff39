package postgres

import (
	"context"
	"database/sql"
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/repository"
)

type proofRepository struct {
	db *sql.DB
}

func NewProofRepository(db *sql.DB) repository.ProofRepository {
	return &proofRepository{db: db}
}

func (r *proofRepository) Create(ctx context.Context, p *domain.ReturnProof) error {
	query := `INSERT INTO return_proofs (item_id, note, photo_url, status, submitted_on)
	          VALUES ($1, $2, $3, $4, $5) RETURNING id`
	return r.db.QueryRowContext(ctx, query, p.ItemID, p.Note, p.PhotoURL, p.Status, p.SubmittedOn).Scan(&p.ID)
}

func (r *proofRepository) GetLatestByItem(ctx context.Context, itemID int32) (*domain.ReturnProof, error) {
	p := &domain.ReturnProof{}
	query := `SELECT id, item_id, note, COALESCE(photo_url, ''), status, COALESCE(reason, ''), submitted_on, reviewed_on
	          FROM return_proofs WHERE item_id = $1 ORDER BY submitted_on DESC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, itemID).Scan(&p.ID, &p.ItemID, &p.Note, &p.PhotoURL,
		&p.Status, &p.Reason, &p.SubmittedOn, &p.ReviewedOn)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *proofRepository) Review(ctx context.Context, proofID int32, status domain.ProofStatus, reason string, reviewedOn time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE return_proofs SET status = $2, reason = $3, reviewed_on = $4 WHERE id = $1`,
		proofID, status, reason, reviewedOn)
	return err
}
