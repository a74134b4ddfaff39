package stock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"barangay-asset-backend/internal/domain"
	"barangay-asset-backend/internal/utils"
)

// MemoryLedger mirrors PostgresLedger semantics in process memory. It backs
// unit tests and local runs without a database.
type MemoryLedger struct {
	mu           sync.Mutex
	stock        map[int32]int32
	reservations map[string]*Reservation
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		stock:        make(map[int32]int32),
		reservations: make(map[string]*Reservation),
	}
}

// SetStock seeds the counter for an asset.
func (l *MemoryLedger) SetStock(assetID, qty int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stock[assetID] = qty
}

// Stock reads the current counter for an asset.
func (l *MemoryLedger) Stock(assetID int32) int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stock[assetID]
}

func (l *MemoryLedger) Reserve(ctx context.Context, assetID, qty int32) (*Reservation, error) {
	if qty < 1 {
		return nil, domain.ErrInvalidQuantity
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	available, ok := l.stock[assetID]
	if !ok || available < qty {
		return nil, fmt.Errorf("%w: asset %d", domain.ErrInsufficientStock, assetID)
	}
	l.stock[assetID] = available - qty

	rsv := &Reservation{
		Token:     utils.NewReservationToken(),
		AssetID:   assetID,
		Quantity:  qty,
		CreatedOn: time.Now(),
	}
	l.reservations[rsv.Token] = rsv
	return rsv, nil
}

func (l *MemoryLedger) Release(ctx context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	rsv, ok := l.reservations[token]
	if !ok || rsv.Released {
		return nil
	}
	rsv.Released = true
	l.stock[rsv.AssetID] += rsv.Quantity
	return nil
}
