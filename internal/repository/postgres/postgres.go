package postgres

import (
	"database/sql"

	"barangay-asset-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.AssetRepository
	repository.RequestRepository
	repository.ProofRepository
	repository.NotificationRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                     db,
		AssetRepository:        NewAssetRepository(db),
		RequestRepository:      NewRequestRepository(db),
		ProofRepository:        NewProofRepository(db),
		NotificationRepository: NewNotificationRepository(db),
	}
}
