package service

import (
	"context"
	"testing"
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type requestFixture struct {
	requestRepo *MockRequestRepo
	assetRepo   *MockAssetRepo
	proofRepo   *MockProofRepo
	noteRepo    *MockNotificationRepo
	emailSvc    *MockEmailService
	ledger      *stock.MemoryLedger
	svc         *requestService
}

func newRequestFixture() *requestFixture {
	f := &requestFixture{
		requestRepo: new(MockRequestRepo),
		assetRepo:   new(MockAssetRepo),
		proofRepo:   new(MockProofRepo),
		noteRepo:    new(MockNotificationRepo),
		emailSvc:    new(MockEmailService),
		ledger:      stock.NewMemoryLedger(),
	}
	f.svc = NewRequestService(
		f.requestRepo, f.assetRepo, f.proofRepo, f.noteRepo,
		f.ledger, f.emailSvc, "staff@barangay.test", 24*time.Hour,
	).(*requestService)
	return f
}

func TestRequestService_Submit(t *testing.T) {
	ctx := context.Background()
	requesterID := int32(7)

	generator := &domain.Asset{ID: 1, Name: "Generator", PriceCents: 1500, Stock: 5, Status: domain.AssetStatusAvailable}
	tent := &domain.Asset{ID: 2, Name: "Tent", PriceCents: 800, Stock: 3, Status: domain.AssetStatusAvailable}

	t.Run("Success", func(t *testing.T) {
		f := newRequestFixture()
		f.ledger.SetStock(1, 5)
		f.ledger.SetStock(2, 3)

		f.assetRepo.On("GetByID", ctx, int32(1)).Return(generator, nil)
		f.assetRepo.On("GetByID", ctx, int32(2)).Return(tent, nil)
		f.requestRepo.On("CreateWithItems", ctx, mock.AnythingOfType("*domain.AssetRequest")).Return(nil)
		f.emailSvc.On("SendCheckoutAlert", ctx, "staff@barangay.test", mock.AnythingOfType("string"), int32(2)).Return(nil)
		f.noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		lines := []domain.CartLine{
			{AssetID: 1, Quantity: 2, RequestDate: "2025-11-15", UntilDate: "2025-11-16"},
			{AssetID: 2, Quantity: 1, RequestDate: "2025-11-15", UntilDate: "2025-11-22"},
		}
		req, err := f.svc.Submit(ctx, requesterID, lines)
		assert.NoError(t, err)
		assert.Len(t, req.Items, 2)
		assert.Equal(t, domain.PaymentStatusUnpaid, req.PaymentStatus)
		assert.NotEmpty(t, req.CustomRequestID)

		// Price and duration are snapshotted per line.
		assert.Equal(t, int32(1500), req.Items[0].PriceCents)
		assert.Equal(t, int32(2), req.Items[0].RentalDurationDays)
		assert.Equal(t, int32(8), req.Items[1].RentalDurationDays)
		assert.Equal(t, domain.ItemStatusPending, req.Items[0].Status)
		assert.NotEmpty(t, req.Items[0].ReservationToken)

		assert.Equal(t, int32(3), f.ledger.Stock(1))
		assert.Equal(t, int32(2), f.ledger.Stock(2))
	})

	t.Run("Insufficient Stock Rolls Back Earlier Lines", func(t *testing.T) {
		f := newRequestFixture()
		f.ledger.SetStock(1, 5)
		f.ledger.SetStock(2, 3)

		f.assetRepo.On("GetByID", ctx, int32(1)).Return(generator, nil)
		f.assetRepo.On("GetByID", ctx, int32(2)).Return(tent, nil)

		lines := []domain.CartLine{
			{AssetID: 1, Quantity: 2, RequestDate: "2025-11-15", UntilDate: "2025-11-16"},
			{AssetID: 2, Quantity: 9, RequestDate: "2025-11-15", UntilDate: "2025-11-16"},
		}
		req, err := f.svc.Submit(ctx, requesterID, lines)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Nil(t, req)

		// The generator reservation from line one must be undone.
		assert.Equal(t, int32(5), f.ledger.Stock(1))
		assert.Equal(t, int32(3), f.ledger.Stock(2))
		f.requestRepo.AssertNotCalled(t, "CreateWithItems", mock.Anything, mock.Anything)
	})

	t.Run("Window Too Long", func(t *testing.T) {
		f := newRequestFixture()
		lines := []domain.CartLine{
			{AssetID: 1, Quantity: 1, RequestDate: "2025-11-15", UntilDate: "2025-11-23"},
		}
		_, err := f.svc.Submit(ctx, requesterID, lines)
		assert.ErrorIs(t, err, domain.ErrWindowTooLong)
	})

	t.Run("Asset Not Available", func(t *testing.T) {
		f := newRequestFixture()
		f.ledger.SetStock(1, 5)
		down := &domain.Asset{ID: 1, Name: "Generator", PriceCents: 1500, Stock: 5, Status: domain.AssetStatusMaintenance}
		f.assetRepo.On("GetByID", ctx, int32(1)).Return(down, nil)

		lines := []domain.CartLine{
			{AssetID: 1, Quantity: 1, RequestDate: "2025-11-15", UntilDate: "2025-11-16"},
		}
		_, err := f.svc.Submit(ctx, requesterID, lines)
		assert.ErrorIs(t, err, domain.ErrInsufficientStock)
		assert.Equal(t, int32(5), f.ledger.Stock(1))
	})

	t.Run("Empty Cart", func(t *testing.T) {
		f := newRequestFixture()
		_, err := f.svc.Submit(ctx, requesterID, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	})
}

func TestRequestService_Pay(t *testing.T) {
	ctx := context.Background()
	requesterID := int32(7)

	approvedRequest := func() *domain.AssetRequest {
		return &domain.AssetRequest{
			ID:            10,
			RequesterID:   requesterID,
			PaymentStatus: domain.PaymentStatusUnpaid,
			Items: []domain.AssetRequestItem{
				{ID: 100, RequestID: 10, Quantity: 2, RentalDurationDays: 2, PriceCents: 1500, Status: domain.ItemStatusApproved},
				{ID: 101, RequestID: 10, Quantity: 1, RentalDurationDays: 8, PriceCents: 800, Status: domain.ItemStatusApproved},
			},
		}
	}

	t.Run("Success", func(t *testing.T) {
		f := newRequestFixture()
		req := approvedRequest()
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(req, nil)
		// 2*2*1500 + 1*8*800 = 12400
		f.requestRepo.On("MarkPaid", ctx, int32(10), mock.AnythingOfType("string"), int32(12400)).Return(true, nil)
		f.requestRepo.On("TransitionItem", ctx, int32(100), domain.ItemStatusApproved, domain.ItemStatusPaid).Return(true, nil)
		f.requestRepo.On("TransitionItem", ctx, int32(101), domain.ItemStatusApproved, domain.ItemStatusPaid).Return(true, nil)
		f.noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		_, err := f.svc.Pay(ctx, requesterID, 10)
		assert.NoError(t, err)
		f.requestRepo.AssertExpectations(t)
	})

	t.Run("Already Paid Keeps First Receipt", func(t *testing.T) {
		f := newRequestFixture()
		req := approvedRequest()
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(req, nil)
		f.requestRepo.On("MarkPaid", ctx, int32(10), mock.AnythingOfType("string"), int32(12400)).Return(false, nil)

		_, err := f.svc.Pay(ctx, requesterID, 10)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		f.requestRepo.AssertNotCalled(t, "TransitionItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Pending Line Blocks Payment", func(t *testing.T) {
		f := newRequestFixture()
		req := approvedRequest()
		req.Items[1].Status = domain.ItemStatusPending
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(req, nil)

		_, err := f.svc.Pay(ctx, requesterID, 10)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		f.requestRepo.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Wrong Requester", func(t *testing.T) {
		f := newRequestFixture()
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(approvedRequest(), nil)

		_, err := f.svc.Pay(ctx, int32(99), 10)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestRequestService_CancelWindow(t *testing.T) {
	ctx := context.Background()
	requesterID := int32(7)
	createdOn := time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC)

	pendingRequest := func(token string) *domain.AssetRequest {
		return &domain.AssetRequest{
			ID:          10,
			RequesterID: requesterID,
			CreatedOn:   createdOn,
			Items: []domain.AssetRequestItem{
				{ID: 100, RequestID: 10, AssetID: 1, Quantity: 2, Status: domain.ItemStatusPending, ReservationToken: token},
			},
		}
	}

	t.Run("Inside Window", func(t *testing.T) {
		f := newRequestFixture()
		f.ledger.SetStock(1, 5)
		rsv, err := f.ledger.Reserve(ctx, 1, 2)
		assert.NoError(t, err)

		f.svc.nowFunc = func() time.Time { return createdOn.Add(23*time.Hour + 59*time.Minute) }
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(pendingRequest(rsv.Token), nil)
		f.requestRepo.On("TransitionItem", ctx, int32(100), domain.ItemStatusPending, domain.ItemStatusCancelled).Return(true, nil)
		f.noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		err = f.svc.Cancel(ctx, requesterID, 10)
		assert.NoError(t, err)
		assert.Equal(t, int32(5), f.ledger.Stock(1))
	})

	t.Run("Past Window", func(t *testing.T) {
		f := newRequestFixture()
		f.svc.nowFunc = func() time.Time { return createdOn.Add(24*time.Hour + time.Minute) }
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(pendingRequest("tok"), nil)

		err := f.svc.Cancel(ctx, requesterID, 10)
		assert.ErrorIs(t, err, domain.ErrCancellationWindowExpired)
		f.requestRepo.AssertNotCalled(t, "TransitionItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Paid Line Is Not Cancellable", func(t *testing.T) {
		f := newRequestFixture()
		f.svc.nowFunc = func() time.Time { return createdOn.Add(time.Hour) }
		req := pendingRequest("tok")
		req.Items[0].Status = domain.ItemStatusPaid
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(req, nil)

		err := f.svc.Cancel(ctx, requesterID, 10)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestRequestService_Decisions(t *testing.T) {
	ctx := context.Background()

	t.Run("Deny Releases Stock", func(t *testing.T) {
		f := newRequestFixture()
		f.ledger.SetStock(1, 5)
		rsv, err := f.ledger.Reserve(ctx, 1, 2)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), f.ledger.Stock(1))

		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, AssetID: 1, Quantity: 2, Status: domain.ItemStatusPending, ReservationToken: rsv.Token}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)
		f.requestRepo.On("TransitionItem", ctx, int32(100), domain.ItemStatusPending, domain.ItemStatusDenied).Return(true, nil)
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(&domain.AssetRequest{ID: 10, RequesterID: 7, CustomRequestID: "BRGY-X"}, nil)
		f.noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		_, err = f.svc.DenyItem(ctx, 100)
		assert.NoError(t, err)
		assert.Equal(t, int32(5), f.ledger.Stock(1))
	})

	t.Run("Approve Leaves Stock Reserved", func(t *testing.T) {
		f := newRequestFixture()
		f.ledger.SetStock(1, 5)
		rsv, _ := f.ledger.Reserve(ctx, 1, 2)

		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, AssetID: 1, Quantity: 2, Status: domain.ItemStatusPending, ReservationToken: rsv.Token}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)
		f.requestRepo.On("TransitionItem", ctx, int32(100), domain.ItemStatusPending, domain.ItemStatusApproved).Return(true, nil)
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(&domain.AssetRequest{ID: 10, RequesterID: 7, CustomRequestID: "BRGY-X"}, nil)
		f.noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		_, err := f.svc.ApproveItem(ctx, 100)
		assert.NoError(t, err)
		assert.Equal(t, int32(3), f.ledger.Stock(1))
	})

	t.Run("Second Decision Loses", func(t *testing.T) {
		f := newRequestFixture()
		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, Status: domain.ItemStatusApproved}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)
		f.requestRepo.On("TransitionItem", ctx, int32(100), domain.ItemStatusPending, domain.ItemStatusDenied).Return(false, nil)

		_, err := f.svc.DenyItem(ctx, 100)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Request Level Decision Skips Decided Lines", func(t *testing.T) {
		f := newRequestFixture()
		req := &domain.AssetRequest{
			ID:          10,
			RequesterID: 7,
			Items: []domain.AssetRequestItem{
				{ID: 100, RequestID: 10, Status: domain.ItemStatusDenied},
				{ID: 101, RequestID: 10, Status: domain.ItemStatusPending},
			},
		}
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(req, nil)
		f.requestRepo.On("TransitionItem", ctx, int32(101), domain.ItemStatusPending, domain.ItemStatusApproved).Return(true, nil)
		f.noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		_, err := f.svc.ApproveRequest(ctx, 10)
		assert.NoError(t, err)
		f.requestRepo.AssertNotCalled(t, "TransitionItem", ctx, int32(100), mock.Anything, mock.Anything)
	})
}

func TestRequestService_Returns(t *testing.T) {
	ctx := context.Background()
	requesterID := int32(7)

	t.Run("Proof Requires Paid Item", func(t *testing.T) {
		f := newRequestFixture()
		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, Status: domain.ItemStatusApproved}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(&domain.AssetRequest{ID: 10, RequesterID: requesterID}, nil)

		_, err := f.svc.SubmitReturnProof(ctx, requesterID, 100, "returned at hall", "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Approve Return Releases Stock", func(t *testing.T) {
		f := newRequestFixture()
		f.ledger.SetStock(1, 5)
		rsv, _ := f.ledger.Reserve(ctx, 1, 2)

		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, AssetID: 1, Quantity: 2, Status: domain.ItemStatusPaid, ReservationToken: rsv.Token}
		proof := &domain.ReturnProof{ID: 1, ItemID: 100, Status: domain.ProofStatusPending}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)
		f.proofRepo.On("GetLatestByItem", ctx, int32(100)).Return(proof, nil)
		f.requestRepo.On("MarkItemReturned", ctx, int32(100), mock.AnythingOfType("time.Time")).Return(true, nil)
		f.proofRepo.On("Review", ctx, int32(1), domain.ProofStatusApproved, "", mock.AnythingOfType("time.Time")).Return(nil)
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(&domain.AssetRequest{ID: 10, RequesterID: requesterID, CustomRequestID: "BRGY-X"}, nil)
		f.noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		_, err := f.svc.ApproveReturn(ctx, 100)
		assert.NoError(t, err)
		assert.Equal(t, int32(5), f.ledger.Stock(1))
	})

	t.Run("Reject Return Keeps Item Paid", func(t *testing.T) {
		f := newRequestFixture()
		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, Status: domain.ItemStatusPaid}
		proof := &domain.ReturnProof{ID: 1, ItemID: 100, Status: domain.ProofStatusPending}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)
		f.proofRepo.On("GetLatestByItem", ctx, int32(100)).Return(proof, nil)
		f.proofRepo.On("Review", ctx, int32(1), domain.ProofStatusRejected, "damaged tarp", mock.AnythingOfType("time.Time")).Return(nil)
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(&domain.AssetRequest{ID: 10, RequesterID: requesterID, CustomRequestID: "BRGY-X"}, nil)
		f.noteRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil)

		err := f.svc.RejectReturn(ctx, 100, "damaged tarp")
		assert.NoError(t, err)
		f.requestRepo.AssertNotCalled(t, "MarkItemReturned", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Approve Without Pending Proof", func(t *testing.T) {
		f := newRequestFixture()
		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, Status: domain.ItemStatusPaid}
		proof := &domain.ReturnProof{ID: 1, ItemID: 100, Status: domain.ProofStatusRejected}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)
		f.proofRepo.On("GetLatestByItem", ctx, int32(100)).Return(proof, nil)

		_, err := f.svc.ApproveReturn(ctx, 100)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestRequestService_Rate(t *testing.T) {
	ctx := context.Background()
	requesterID := int32(7)

	t.Run("Stars Out Of Range", func(t *testing.T) {
		f := newRequestFixture()
		_, err := f.svc.Rate(ctx, requesterID, 100, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
		_, err = f.svc.Rate(ctx, requesterID, 100, 6)
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	})

	t.Run("Success", func(t *testing.T) {
		f := newRequestFixture()
		returned := &domain.AssetRequestItem{ID: 100, RequestID: 10, Status: domain.ItemStatusReturned, IsReturned: true}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(returned, nil)
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(&domain.AssetRequest{ID: 10, RequesterID: requesterID}, nil)
		f.requestRepo.On("SetItemRating", ctx, int32(100), int32(4)).Return(true, nil)

		_, err := f.svc.Rate(ctx, requesterID, 100, 4)
		assert.NoError(t, err)
	})

	t.Run("Already Rated", func(t *testing.T) {
		f := newRequestFixture()
		rated := &domain.AssetRequestItem{ID: 100, RequestID: 10, Status: domain.ItemStatusRated, IsReturned: true, Rating: 5}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(rated, nil)
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(&domain.AssetRequest{ID: 10, RequesterID: requesterID}, nil)
		f.requestRepo.On("SetItemRating", ctx, int32(100), int32(3)).Return(false, nil)

		_, err := f.svc.Rate(ctx, requesterID, 100, 3)
		assert.ErrorIs(t, err, domain.ErrAlreadyRated)
	})

	t.Run("Unreturned Item", func(t *testing.T) {
		f := newRequestFixture()
		pending := &domain.AssetRequestItem{ID: 100, RequestID: 10, Status: domain.ItemStatusPending}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(pending, nil)
		f.requestRepo.On("GetByID", ctx, int32(10)).Return(&domain.AssetRequest{ID: 10, RequesterID: requesterID}, nil)
		f.requestRepo.On("SetItemRating", ctx, int32(100), int32(4)).Return(false, nil)

		_, err := f.svc.Rate(ctx, requesterID, 100, 4)
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestRequestService_StaffLineMaintenance(t *testing.T) {
	ctx := context.Background()

	t.Run("Override Past Rental Cap", func(t *testing.T) {
		f := newRequestFixture()
		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, RequestDate: "2025-11-15", ReturnDate: "2025-11-22", Status: domain.ItemStatusPaid}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)
		f.requestRepo.On("SetItemReturnDate", ctx, int32(100), "2025-12-05").Return(nil)

		_, err := f.svc.SetReturnDate(ctx, 100, "2025-12-05")
		assert.NoError(t, err)
	})

	t.Run("Override Before Start Rejected", func(t *testing.T) {
		f := newRequestFixture()
		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, RequestDate: "2025-11-15", ReturnDate: "2025-11-22", Status: domain.ItemStatusPaid}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)

		_, err := f.svc.SetReturnDate(ctx, 100, "2025-11-14")
		assert.ErrorIs(t, err, domain.ErrInvalidWindow)
	})

	t.Run("Return Date Requires Paid", func(t *testing.T) {
		f := newRequestFixture()
		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, RequestDate: "2025-11-15", Status: domain.ItemStatusPending}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)

		_, err := f.svc.SetReturnDate(ctx, 100, "2025-12-05")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Tracking On Terminal Item Rejected", func(t *testing.T) {
		f := newRequestFixture()
		item := &domain.AssetRequestItem{ID: 100, RequestID: 10, Status: domain.ItemStatusCancelled}
		f.requestRepo.On("GetItemByID", ctx, int32(100)).Return(item, nil)

		_, err := f.svc.SetTrackingNumber(ctx, 100, "LBC-123")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestRequestService_LockMapDoesNotLeak(t *testing.T) {
	t.Run("Uncontended Entry Is Dropped", func(t *testing.T) {
		f := newRequestFixture()

		unlock := f.svc.lockRequest(10)
		f.svc.mu.Lock()
		assert.Len(t, f.svc.locks, 1)
		f.svc.mu.Unlock()
		unlock()

		f.svc.mu.Lock()
		assert.Empty(t, f.svc.locks)
		f.svc.mu.Unlock()
	})

	t.Run("Contended Entry Survives Until Last Holder", func(t *testing.T) {
		f := newRequestFixture()

		unlock := f.svc.lockRequest(10)
		done := make(chan struct{})
		go func() {
			second := f.svc.lockRequest(10)
			second()
			close(done)
		}()

		// Give the goroutine time to register as a waiter, then hand over.
		for {
			f.svc.mu.Lock()
			waiting := len(f.svc.locks) == 1 && f.svc.locks[10].refs == 2
			f.svc.mu.Unlock()
			if waiting {
				break
			}
			time.Sleep(time.Millisecond)
		}
		unlock()
		<-done

		f.svc.mu.Lock()
		assert.Empty(t, f.svc.locks)
		f.svc.mu.Unlock()
	})
}
