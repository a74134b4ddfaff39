package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/logger"
	"barangay-asset-backend/internal/repository"
	"barangay-asset-backend/internal/stock"
	"barangay-asset-backend/internal/utils"
)

type requestService struct {
	requestRepo repository.RequestRepository
	assetRepo   repository.AssetRepository
	proofRepo   repository.ProofRepository
	noteRepo    repository.NotificationRepository
	ledger      stock.Ledger
	emailSvc    EmailService
	staffEmail  string
	cancelWindow time.Duration
	nowFunc      func() time.Time

	mu    sync.Mutex
	locks map[int32]*requestLock
}

// requestLock is refcounted so the map entry can be dropped once the last
// holder releases it.
type requestLock struct {
	mu   sync.Mutex
	refs int
}

func NewRequestService(
	requestRepo repository.RequestRepository,
	assetRepo repository.AssetRepository,
	proofRepo repository.ProofRepository,
	noteRepo repository.NotificationRepository,
	ledger stock.Ledger,
	emailSvc EmailService,
	staffEmail string,
	cancelWindow time.Duration,
) RequestService {
	return &requestService{
		requestRepo:  requestRepo,
		assetRepo:    assetRepo,
		proofRepo:    proofRepo,
		noteRepo:     noteRepo,
		ledger:       ledger,
		emailSvc:     emailSvc,
		staffEmail:   staffEmail,
		cancelWindow: cancelWindow,
		nowFunc:      time.Now,
		locks:        make(map[int32]*requestLock),
	}
}

// lockRequest serializes lifecycle transitions per request so racing
// staff and requester actions resolve in a deterministic order. The SQL
// status guards remain the source of truth; the lock only removes
// interleavings inside multi-step operations.
func (s *requestService) lockRequest(requestID int32) func() {
	s.mu.Lock()
	l, ok := s.locks[requestID]
	if !ok {
		l = &requestLock{}
		s.locks[requestID] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, requestID)
		}
		s.mu.Unlock()
	}
}

func (s *requestService) Submit(ctx context.Context, requesterID int32, lines []domain.CartLine) (*domain.AssetRequest, error) {
	if len(lines) == 0 {
		return nil, domain.ErrInvalidQuantity
	}

	now := s.nowFunc()
	req := &domain.AssetRequest{
		RequesterID:     requesterID,
		CustomRequestID: utils.NewCustomRequestID(now, requesterID),
		PaymentStatus:   domain.PaymentStatusUnpaid,
		CreatedOn:       now,
	}

	// Reserve stock line by line; any failure rolls back every
	// reservation already taken in this batch.
	var tokens []string
	rollback := func() {
		for _, tok := range tokens {
			if err := s.ledger.Release(ctx, tok); err != nil {
				logger.Error("Failed to roll back reservation", "token", tok, "error", err)
			}
		}
	}

	for _, line := range lines {
		days, err := utils.ValidateWindow(line.RequestDate, line.UntilDate)
		if err != nil {
			rollback()
			return nil, err
		}

		asset, err := s.assetRepo.GetByID(ctx, line.AssetID)
		if err != nil {
			rollback()
			return nil, err
		}
		if asset.Status != domain.AssetStatusAvailable {
			rollback()
			return nil, fmt.Errorf("%w: asset %d", domain.ErrInsufficientStock, line.AssetID)
		}

		rsv, err := s.ledger.Reserve(ctx, line.AssetID, line.Quantity)
		if err != nil {
			rollback()
			return nil, err
		}
		tokens = append(tokens, rsv.Token)

		req.Items = append(req.Items, domain.AssetRequestItem{
			AssetID:            line.AssetID,
			Quantity:           line.Quantity,
			RequestDate:        line.RequestDate,
			ReturnDate:         line.UntilDate,
			RentalDurationDays: days,
			PriceCents:         asset.PriceCents,
			Status:             domain.ItemStatusPending,
			ReservationToken:   rsv.Token,
		})
	}

	if err := s.requestRepo.CreateWithItems(ctx, req); err != nil {
		rollback()
		return nil, err
	}

	logger.Info("Asset request submitted",
		"request_id", req.ID, "custom_request_id", req.CustomRequestID,
		"requester_id", requesterID, "lines", len(req.Items))

	_ = s.emailSvc.SendCheckoutAlert(ctx, s.staffEmail, req.CustomRequestID, int32(len(req.Items)))
	s.notify(ctx, requesterID, "Request Submitted",
		fmt.Sprintf("Your asset request %s with %d item(s) is pending review", req.CustomRequestID, len(req.Items)),
		map[string]string{"type": "REQUEST_SUBMITTED", "request_id": fmt.Sprintf("%d", req.ID)})

	return req, nil
}

func (s *requestService) GetRequest(ctx context.Context, requesterID, requestID int32, staff bool) (*domain.AssetRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if !staff && req.RequesterID != requesterID {
		return nil, domain.ErrUnauthorized
	}
	return req, nil
}

func (s *requestService) ListRequests(ctx context.Context, requesterID int32, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error) {
	return s.requestRepo.ListByRequester(ctx, requesterID, status, page, pageSize)
}

func (s *requestService) ListAllRequests(ctx context.Context, status string, page, pageSize int32) ([]domain.AssetRequest, int32, error) {
	return s.requestRepo.List(ctx, status, page, pageSize)
}

func (s *requestService) ApproveItem(ctx context.Context, itemID int32) (*domain.AssetRequestItem, error) {
	it, err := s.requestRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockRequest(it.RequestID)
	defer unlock()

	ok, err := s.requestRepo.TransitionItem(ctx, itemID, domain.ItemStatusPending, domain.ItemStatusApproved)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: item %d is not pending", domain.ErrInvalidTransition, itemID)
	}

	// Approval does not touch stock: the decrement already happened at
	// reservation time.
	req, _ := s.requestRepo.GetByID(ctx, it.RequestID)
	if req != nil {
		s.notify(ctx, req.RequesterID, "Request Item Approved",
			fmt.Sprintf("An item on request %s was approved", req.CustomRequestID),
			map[string]string{"type": "ITEM_APPROVED", "item_id": fmt.Sprintf("%d", itemID)})
	}

	return s.requestRepo.GetItemByID(ctx, itemID)
}

func (s *requestService) DenyItem(ctx context.Context, itemID int32) (*domain.AssetRequestItem, error) {
	it, err := s.requestRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockRequest(it.RequestID)
	defer unlock()

	ok, err := s.requestRepo.TransitionItem(ctx, itemID, domain.ItemStatusPending, domain.ItemStatusDenied)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: item %d is not pending", domain.ErrInvalidTransition, itemID)
	}

	if err := s.ledger.Release(ctx, it.ReservationToken); err != nil {
		logger.Error("Failed to release stock on denial", "item_id", itemID, "error", err)
	}

	req, _ := s.requestRepo.GetByID(ctx, it.RequestID)
	if req != nil {
		s.notify(ctx, req.RequesterID, "Request Item Denied",
			fmt.Sprintf("An item on request %s was denied", req.CustomRequestID),
			map[string]string{"type": "ITEM_DENIED", "item_id": fmt.Sprintf("%d", itemID)})
	}

	return s.requestRepo.GetItemByID(ctx, itemID)
}

func (s *requestService) ApproveRequest(ctx context.Context, requestID int32) (*domain.AssetRequest, error) {
	return s.decideRequest(ctx, requestID, domain.ItemStatusApproved)
}

func (s *requestService) DenyRequest(ctx context.Context, requestID int32) (*domain.AssetRequest, error) {
	return s.decideRequest(ctx, requestID, domain.ItemStatusDenied)
}

func (s *requestService) decideRequest(ctx context.Context, requestID int32, decision domain.ItemStatus) (*domain.AssetRequest, error) {
	unlock := s.lockRequest(requestID)
	defer unlock()

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	transitioned := 0
	for i := range req.Items {
		it := &req.Items[i]
		if it.Status != domain.ItemStatusPending {
			continue
		}
		ok, err := s.requestRepo.TransitionItem(ctx, it.ID, domain.ItemStatusPending, decision)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		transitioned++
		if decision == domain.ItemStatusDenied {
			if err := s.ledger.Release(ctx, it.ReservationToken); err != nil {
				logger.Error("Failed to release stock on denial", "item_id", it.ID, "error", err)
			}
		}
	}
	if transitioned == 0 {
		return nil, fmt.Errorf("%w: request %d has no pending items", domain.ErrInvalidTransition, requestID)
	}

	verb := "approved"
	noteType := "REQUEST_APPROVED"
	if decision == domain.ItemStatusDenied {
		verb = "denied"
		noteType = "REQUEST_DENIED"
	}
	s.notify(ctx, req.RequesterID, "Request "+verb,
		fmt.Sprintf("Your asset request %s was %s", req.CustomRequestID, verb),
		map[string]string{"type": noteType, "request_id": fmt.Sprintf("%d", requestID)})

	return s.requestRepo.GetByID(ctx, requestID)
}

func (s *requestService) Pay(ctx context.Context, requesterID, requestID int32) (*domain.AssetRequest, error) {
	unlock := s.lockRequest(requestID)
	defer unlock()

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != requesterID {
		return nil, domain.ErrUnauthorized
	}
	if len(req.Items) == 0 {
		return nil, domain.ErrInvalidTransition
	}
	for _, it := range req.Items {
		if it.Status != domain.ItemStatusApproved {
			return nil, fmt.Errorf("%w: item %d is %s, payment requires every line approved",
				domain.ErrInvalidTransition, it.ID, it.Status)
		}
	}

	var amount int32
	for i := range req.Items {
		amount += req.Items[i].LineCostCents()
	}

	receipt := utils.NewReceiptNumber(s.nowFunc())
	ok, err := s.requestRepo.MarkPaid(ctx, requestID, receipt, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Guarded on payment status: a second pay can never assign a
		// second receipt number.
		return nil, fmt.Errorf("%w: request %d is already paid", domain.ErrInvalidTransition, requestID)
	}

	for _, it := range req.Items {
		if _, err := s.requestRepo.TransitionItem(ctx, it.ID, domain.ItemStatusApproved, domain.ItemStatusPaid); err != nil {
			return nil, err
		}
	}

	logger.Info("Request paid", "request_id", requestID, "receipt_number", receipt, "amount_cents", amount)
	s.notify(ctx, requesterID, "Payment Recorded",
		fmt.Sprintf("Payment for request %s recorded under receipt %s", req.CustomRequestID, receipt),
		map[string]string{"type": "REQUEST_PAID", "request_id": fmt.Sprintf("%d", requestID), "receipt_number": receipt})

	return s.requestRepo.GetByID(ctx, requestID)
}

func (s *requestService) Cancel(ctx context.Context, requesterID, requestID int32) error {
	unlock := s.lockRequest(requestID)
	defer unlock()

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.RequesterID != requesterID {
		return domain.ErrUnauthorized
	}
	if s.nowFunc().Sub(req.CreatedOn) > s.cancelWindow {
		return domain.ErrCancellationWindowExpired
	}

	cancelled := 0
	for i := range req.Items {
		it := &req.Items[i]
		if it.Status != domain.ItemStatusPending && it.Status != domain.ItemStatusApproved {
			continue
		}
		ok, err := s.requestRepo.TransitionItem(ctx, it.ID, it.Status, domain.ItemStatusCancelled)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		cancelled++
		if err := s.ledger.Release(ctx, it.ReservationToken); err != nil {
			logger.Error("Failed to release stock on cancellation", "item_id", it.ID, "error", err)
		}
	}
	if cancelled == 0 {
		return fmt.Errorf("%w: request %d has no cancellable items", domain.ErrInvalidTransition, requestID)
	}

	s.notify(ctx, requesterID, "Request Cancelled",
		fmt.Sprintf("Your asset request %s was cancelled", req.CustomRequestID),
		map[string]string{"type": "REQUEST_CANCELLED", "request_id": fmt.Sprintf("%d", requestID)})
	return nil
}

func (s *requestService) CancelItem(ctx context.Context, requesterID, itemID int32) error {
	it, err := s.requestRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	unlock := s.lockRequest(it.RequestID)
	defer unlock()

	req, err := s.requestRepo.GetByID(ctx, it.RequestID)
	if err != nil {
		return err
	}
	if req.RequesterID != requesterID {
		return domain.ErrUnauthorized
	}
	if s.nowFunc().Sub(req.CreatedOn) > s.cancelWindow {
		return domain.ErrCancellationWindowExpired
	}
	if it.Status != domain.ItemStatusPending && it.Status != domain.ItemStatusApproved {
		return fmt.Errorf("%w: item %d is %s", domain.ErrInvalidTransition, itemID, it.Status)
	}

	ok, err := s.requestRepo.TransitionItem(ctx, itemID, it.Status, domain.ItemStatusCancelled)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: item %d changed state concurrently", domain.ErrInvalidTransition, itemID)
	}
	if err := s.ledger.Release(ctx, it.ReservationToken); err != nil {
		logger.Error("Failed to release stock on cancellation", "item_id", itemID, "error", err)
	}
	return nil
}

func (s *requestService) SetReturnDate(ctx context.Context, itemID int32, returnDate string) (*domain.AssetRequestItem, error) {
	it, err := s.requestRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockRequest(it.RequestID)
	defer unlock()

	if it.Status != domain.ItemStatusPaid {
		return nil, fmt.Errorf("%w: return date can only be set on a paid item", domain.ErrInvalidTransition)
	}
	// Staff override is authoritative past the rental cap; only end >=
	// start still holds.
	if err := utils.ValidateOverride(it.RequestDate, returnDate); err != nil {
		return nil, err
	}
	if err := s.requestRepo.SetItemReturnDate(ctx, itemID, returnDate); err != nil {
		return nil, err
	}
	return s.requestRepo.GetItemByID(ctx, itemID)
}

func (s *requestService) SetTrackingNumber(ctx context.Context, itemID int32, tracking string) (*domain.AssetRequestItem, error) {
	it, err := s.requestRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if it.Status.Terminal() {
		return nil, fmt.Errorf("%w: item %d is %s", domain.ErrInvalidTransition, itemID, it.Status)
	}
	if err := s.requestRepo.SetItemTracking(ctx, itemID, tracking); err != nil {
		return nil, err
	}
	return s.requestRepo.GetItemByID(ctx, itemID)
}

func (s *requestService) SubmitReturnProof(ctx context.Context, requesterID, itemID int32, note, photoURL string) (*domain.ReturnProof, error) {
	it, err := s.requestRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	req, err := s.requestRepo.GetByID(ctx, it.RequestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != requesterID {
		return nil, domain.ErrUnauthorized
	}
	// Early return is allowed: the rental window need not have closed.
	if it.Status != domain.ItemStatusPaid {
		return nil, fmt.Errorf("%w: return proof requires a paid item, item %d is %s",
			domain.ErrInvalidTransition, itemID, it.Status)
	}

	proof := &domain.ReturnProof{
		ItemID:      itemID,
		Note:        note,
		PhotoURL:    photoURL,
		Status:      domain.ProofStatusPending,
		SubmittedOn: s.nowFunc(),
	}
	if err := s.proofRepo.Create(ctx, proof); err != nil {
		return nil, err
	}

	logger.Info("Return proof submitted", "item_id", itemID, "proof_id", proof.ID)
	return proof, nil
}

func (s *requestService) ApproveReturn(ctx context.Context, itemID int32) (*domain.AssetRequestItem, error) {
	it, err := s.requestRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	unlock := s.lockRequest(it.RequestID)
	defer unlock()

	proof, err := s.proofRepo.GetLatestByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("%w: no return proof on item %d", domain.ErrInvalidTransition, itemID)
	}
	if proof.Status != domain.ProofStatusPending {
		return nil, fmt.Errorf("%w: latest proof on item %d is already %s",
			domain.ErrInvalidTransition, itemID, proof.Status)
	}

	now := s.nowFunc()
	ok, err := s.requestRepo.MarkItemReturned(ctx, itemID, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: item %d is not paid", domain.ErrInvalidTransition, itemID)
	}

	if err := s.proofRepo.Review(ctx, proof.ID, domain.ProofStatusApproved, "", now); err != nil {
		logger.Error("Failed to mark proof approved", "proof_id", proof.ID, "error", err)
	}
	if err := s.ledger.Release(ctx, it.ReservationToken); err != nil {
		logger.Error("Failed to release stock on return", "item_id", itemID, "error", err)
	}

	req, _ := s.requestRepo.GetByID(ctx, it.RequestID)
	if req != nil {
		s.notify(ctx, req.RequesterID, "Return Accepted",
			fmt.Sprintf("Your return on request %s was accepted", req.CustomRequestID),
			map[string]string{"type": "RETURN_ACCEPTED", "item_id": fmt.Sprintf("%d", itemID)})
	}

	return s.requestRepo.GetItemByID(ctx, itemID)
}

func (s *requestService) RejectReturn(ctx context.Context, itemID int32, reason string) error {
	it, err := s.requestRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	unlock := s.lockRequest(it.RequestID)
	defer unlock()

	proof, err := s.proofRepo.GetLatestByItem(ctx, itemID)
	if err != nil {
		return fmt.Errorf("%w: no return proof on item %d", domain.ErrInvalidTransition, itemID)
	}
	if proof.Status != domain.ProofStatusPending {
		return fmt.Errorf("%w: latest proof on item %d is already %s",
			domain.ErrInvalidTransition, itemID, proof.Status)
	}

	// The line stays PAID; the requester may resubmit proof.
	if err := s.proofRepo.Review(ctx, proof.ID, domain.ProofStatusRejected, reason, s.nowFunc()); err != nil {
		return err
	}

	req, _ := s.requestRepo.GetByID(ctx, it.RequestID)
	if req != nil {
		s.notify(ctx, req.RequesterID, "Return Rejected",
			fmt.Sprintf("Your return on request %s was rejected: %s", req.CustomRequestID, reason),
			map[string]string{"type": "RETURN_REJECTED", "item_id": fmt.Sprintf("%d", itemID)})
	}
	return nil
}

func (s *requestService) Rate(ctx context.Context, requesterID, itemID int32, stars int32) (*domain.AssetRequestItem, error) {
	if stars < 1 || stars > 5 {
		return nil, domain.ErrInvalidRating
	}

	it, err := s.requestRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	req, err := s.requestRepo.GetByID(ctx, it.RequestID)
	if err != nil {
		return nil, err
	}
	if req.RequesterID != requesterID {
		return nil, domain.ErrUnauthorized
	}

	ok, err := s.requestRepo.SetItemRating(ctx, itemID, stars)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.requestRepo.GetItemByID(ctx, itemID)
		if err != nil {
			return nil, err
		}
		if current.Status == domain.ItemStatusRated || current.Rating != 0 {
			return nil, domain.ErrAlreadyRated
		}
		return nil, fmt.Errorf("%w: item %d is %s, rating requires a returned item",
			domain.ErrInvalidTransition, itemID, current.Status)
	}

	return s.requestRepo.GetItemByID(ctx, itemID)
}

func (s *requestService) notify(ctx context.Context, userID int32, title, message string, attrs map[string]string) {
	note := &domain.Notification{
		UserID:     userID,
		Title:      title,
		Message:    message,
		Attributes: attrs,
	}
	if err := s.noteRepo.Create(ctx, note); err != nil {
		logger.Error("Failed to create notification", "user_id", userID, "title", title, "error", err)
	}
}
