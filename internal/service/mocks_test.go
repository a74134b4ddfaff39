package service

import (
	"context"
	"time"

	"barangay-asset-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockAssetRepo
type MockAssetRepo struct {
	mock.Mock
}

func (m *MockAssetRepo) Create(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}
func (m *MockAssetRepo) GetByID(ctx context.Context, id int32) (*domain.Asset, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Asset), args.Error(1)
}
func (m *MockAssetRepo) Update(ctx context.Context, asset *domain.Asset) error {
	args := m.Called(ctx, asset)
	return args.Error(0)
}
func (m *MockAssetRepo) List(ctx context.Context, category string, page, pageSize int32) ([]domain.Asset, int32, error) {
	args := m.Called(ctx, category, page, pageSize)
	return args.Get(0).([]domain.Asset), args.Get(1).(int32), args.Error(2)
}

// MockRequestRepo
type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) CreateWithItems(ctx context.Context, req *domain.AssetRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}
func (m *MockRequestRepo) GetByID(ctx context.Context, id int32) (*domain.AssetRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssetRequest), args.Error(1)
}
func (m *MockRequestRepo) GetItemByID(ctx context.Context, id int32) (*domain.AssetRequestItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssetRequestItem), args.Error(1)
}
func (m *MockRequestRepo) ListByRequester(ctx context.Context, requesterID int32, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error) {
	args := m.Called(ctx, requesterID, status, page, pageSize)
	return args.Get(0).([]domain.AssetRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRequestRepo) List(ctx context.Context, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error) {
	args := m.Called(ctx, status, page, pageSize)
	return args.Get(0).([]domain.AssetRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRequestRepo) TransitionItem(ctx context.Context, itemID int32, from, to domain.ItemStatus) (bool, error) {
	args := m.Called(ctx, itemID, from, to)
	return args.Bool(0), args.Error(1)
}
func (m *MockRequestRepo) MarkItemReturned(ctx context.Context, itemID int32, returnedAt time.Time) (bool, error) {
	args := m.Called(ctx, itemID, returnedAt)
	return args.Bool(0), args.Error(1)
}
func (m *MockRequestRepo) SetItemRating(ctx context.Context, itemID int32, stars int32) (bool, error) {
	args := m.Called(ctx, itemID, stars)
	return args.Bool(0), args.Error(1)
}
func (m *MockRequestRepo) SetItemReturnDate(ctx context.Context, itemID int32, returnDate string) error {
	args := m.Called(ctx, itemID, returnDate)
	return args.Error(0)
}
func (m *MockRequestRepo) SetItemTracking(ctx context.Context, itemID int32, tracking string) error {
	args := m.Called(ctx, itemID, tracking)
	return args.Error(0)
}
func (m *MockRequestRepo) MarkPaid(ctx context.Context, requestID int32, receiptNumber string, amountCents int32) (bool, error) {
	args := m.Called(ctx, requestID, receiptNumber, amountCents)
	return args.Bool(0), args.Error(1)
}
func (m *MockRequestRepo) ListUnreturnedDueBefore(ctx context.Context, date string) ([]domain.AssetRequestItem, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.AssetRequestItem), args.Error(1)
}

// MockProofRepo
type MockProofRepo struct {
	mock.Mock
}

func (m *MockProofRepo) Create(ctx context.Context, proof *domain.ReturnProof) error {
	args := m.Called(ctx, proof)
	return args.Error(0)
}
func (m *MockProofRepo) GetLatestByItem(ctx context.Context, itemID int32) (*domain.ReturnProof, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReturnProof), args.Error(1)
}
func (m *MockProofRepo) Review(ctx context.Context, proofID int32, status domain.ProofStatus, reason string, reviewedOn time.Time) error {
	args := m.Called(ctx, proofID, status, reason, reviewedOn)
	return args.Error(0)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, userID int32, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id, userID int32) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendCheckoutAlert(ctx context.Context, staffEmail, customRequestID string, lineCount int32) error {
	args := m.Called(ctx, staffEmail, customRequestID, lineCount)
	return args.Error(0)
}
func (m *MockEmailService) SendOverdueReminder(ctx context.Context, staffEmail, customRequestID, returnDate string) error {
	args := m.Called(ctx, staffEmail, customRequestID, returnDate)
	return args.Error(0)
}
