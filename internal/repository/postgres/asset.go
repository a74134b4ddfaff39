package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/repository"
)

type assetRepository struct {
	db *sql.DB
}

func NewAssetRepository(db *sql.DB) repository.AssetRepository {
	return &assetRepository{db: db}
}

func (r *assetRepository) Create(ctx context.Context, a *domain.Asset) error {
	query := `INSERT INTO assets (name, category, price_cents, stock, status, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	now := time.Now()
	return r.db.QueryRowContext(ctx, query, a.Name, a.Category, a.PriceCents, a.Stock, a.Status, now, now).Scan(&a.ID)
}

func (r *assetRepository) GetByID(ctx context.Context, id int32) (*domain.Asset, error) {
	a := &domain.Asset{}
	query := `SELECT id, name, category, price_cents, stock, status, created_on, updated_on FROM assets WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&a.ID, &a.Name, &a.Category, &a.PriceCents, &a.Stock, &a.Status, &a.CreatedOn, &a.UpdatedOn)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *assetRepository) Update(ctx context.Context, a *domain.Asset) error {
	query := `UPDATE assets SET name=$1, category=$2, price_cents=$3, status=$4, updated_on=$5 WHERE id=$6`
	_, err := r.db.ExecContext(ctx, query, a.Name, a.Category, a.PriceCents, a.Status, time.Now(), a.ID)
	return err
}

func (r *assetRepository) List(ctx context.Context, category string, page, pageSize int32) ([]domain.Asset, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT id, name, category, price_cents, stock, status, created_on, updated_on FROM assets WHERE 1=1`

	args := []interface{}{}
	argIdx := 1
	if category != "" {
		query += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, category)
		argIdx++
	}

	var count int32
	countQuery := "SELECT count(*) FROM (" + query + ") as sub"
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&count); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, pageSize, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var assets []domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.ID, &a.Name, &a.Category, &a.PriceCents, &a.Stock, &a.Status, &a.CreatedOn, &a.UpdatedOn); err != nil {
			return nil, 0, err
		}
		assets = append(assets, a)
	}
	return assets, count, nil
}
