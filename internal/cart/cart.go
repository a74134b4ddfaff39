package cart

import (
	"context"
	"sync"
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/logger"
	"barangay-asset-backend/internal/repository"
	"barangay-asset-backend/internal/utils"
)

// Submitter consumes a cart's lines as one atomic submission. Implemented
// by the request lifecycle service.
type Submitter interface {
	Submit(ctx context.Context, requesterID int32, lines []domain.CartLine) (*domain.AssetRequest, error)
}

type entry struct {
	lines   []domain.CartLine
	index   map[domain.CartKey]int
	touched time.Time
}

// Store holds each requester's pending reservation intents server-side.
// The cart is a UX convenience, never authoritative for stock: the only
// binding check happens in the stock ledger at checkout.
type Store struct {
	mu        sync.Mutex
	carts     map[int32]*entry
	assetRepo repository.AssetRepository
	nowFunc   func() time.Time
}

func NewStore(assetRepo repository.AssetRepository) *Store {
	return &Store{
		carts:     make(map[int32]*entry),
		assetRepo: assetRepo,
		nowFunc:   time.Now,
	}
}

// AddLine validates the window and quantity, then admits the line. The
// quantity check against known stock is advisory; two requesters may both
// cart the last unit and the ledger settles it at checkout.
func (s *Store) AddLine(ctx context.Context, requesterID int32, line domain.CartLine) error {
	if _, err := utils.ValidateWindow(line.RequestDate, line.UntilDate); err != nil {
		return err
	}
	if line.Quantity < 1 {
		return domain.ErrInvalidQuantity
	}

	asset, err := s.assetRepo.GetByID(ctx, line.AssetID)
	if err != nil {
		return err
	}
	if asset.Status != domain.AssetStatusAvailable || line.Quantity > asset.Stock {
		return domain.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[requesterID]
	if !ok {
		e = &entry{index: make(map[domain.CartKey]int)}
		s.carts[requesterID] = e
	}
	if _, exists := e.index[line.Key()]; exists {
		return domain.ErrDuplicateCartEntry
	}

	line.AddedOn = s.nowFunc()
	e.index[line.Key()] = len(e.lines)
	e.lines = append(e.lines, line)
	e.touched = line.AddedOn
	return nil
}

// RemoveLine drops one line; unknown keys fail with ErrNotFound.
func (s *Store) RemoveLine(requesterID int32, key domain.CartKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[requesterID]
	if !ok {
		return domain.ErrNotFound
	}
	pos, ok := e.index[key]
	if !ok {
		return domain.ErrNotFound
	}

	e.lines = append(e.lines[:pos], e.lines[pos+1:]...)
	delete(e.index, key)
	for i, l := range e.lines[pos:] {
		e.index[l.Key()] = pos + i
	}
	e.touched = s.nowFunc()
	return nil
}

// Lines returns the requester's cart in insertion order.
func (s *Store) Lines(requesterID int32) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[requesterID]
	if !ok {
		return nil
	}
	out := make([]domain.CartLine, len(e.lines))
	copy(out, e.lines)
	return out
}

// Clear discards the requester's cart.
func (s *Store) Clear(requesterID int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, requesterID)
}

// Checkout hands the full cart to the lifecycle engine as one atomic
// submission. On any rejection the cart is left unchanged so the requester
// can correct and retry; on success it is consumed.
func (s *Store) Checkout(ctx context.Context, requesterID int32, submitter Submitter) (*domain.AssetRequest, error) {
	lines := s.Lines(requesterID)
	if len(lines) == 0 {
		return nil, domain.ErrNotFound
	}

	req, err := submitter.Submit(ctx, requesterID, lines)
	if err != nil {
		return nil, err
	}

	s.Clear(requesterID)
	logger.Info("Cart checked out", "requester_id", requesterID, "request_id", req.ID, "lines", len(lines))
	return req, nil
}

// PurgeStale drops carts untouched for longer than maxAge and reports how
// many were removed. Called from the cron runner.
func (s *Store) PurgeStale(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.nowFunc().Add(-maxAge)
	purged := 0
	for id, e := range s.carts {
		if e.touched.Before(cutoff) {
			delete(s.carts, id)
			purged++
		}
	}
	return purged
}
