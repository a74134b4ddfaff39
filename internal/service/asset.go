package service

import (
	"context"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/repository"
)

type assetService struct {
	assetRepo repository.AssetRepository
}

func NewAssetService(assetRepo repository.AssetRepository) AssetService {
	return &assetService{assetRepo: assetRepo}
}

func (s *assetService) AddAsset(ctx context.Context, asset *domain.Asset) error {
	if asset.Status == "" {
		asset.Status = domain.AssetStatusAvailable
	}
	return s.assetRepo.Create(ctx, asset)
}

func (s *assetService) GetAsset(ctx context.Context, id int32) (*domain.Asset, error) {
	return s.assetRepo.GetByID(ctx, id)
}

func (s *assetService) UpdateAsset(ctx context.Context, asset *domain.Asset) error {
	return s.assetRepo.Update(ctx, asset)
}

func (s *assetService) ListAssets(ctx context.Context, category string, page, pageSize int32) ([]domain.Asset, int32, error) {
	return s.assetRepo.List(ctx, category, page, pageSize)
}
