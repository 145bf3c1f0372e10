package inventory

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/nourtarek555/BuyerMS3/internal/remotestore"
)

// Result reports the remote stock after a successful reserve or release.
type Result struct {
	NewStock int
}

// Service performs atomic reserve/release of stock units against the
// remote keyed store. Correctness under concurrent buyers comes entirely
// from the store's conditional-write primitive; the service holds no
// locks and keeps no state of its own.
type Service struct {
	store  remotestore.Store
	logger *log.Logger
}

func NewService(store remotestore.Store, logger *log.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// stockPaths returns the candidate locations for a product's stock record,
// primary first. Two historical schema layouts coexist in the data, so
// both operations probe the legacy location before surfacing failure.
// Which path holds the authoritative record is a migration hazard; callers
// must not assume either.
func stockPaths(sellerID, productID string) []string {
	return []string{
		fmt.Sprintf("sellers/%s/products/%s/stock", sellerID, productID),
		fmt.Sprintf("sellers/%s/catalog/%s/stock", sellerID, productID),
	}
}

// Reserve atomically decrements the product's stock by quantity. If the
// record holds fewer units, the transaction aborts without writing and an
// InsufficientStockError carries the observed stock. Exactly one of two
// callers competing for the last units commits; the loser is retried by
// the store against a fresh read before insufficiency is reported.
func (s *Service) Reserve(ctx context.Context, productID, sellerID string, quantity int) (Result, error) {
	if quantity <= 0 {
		reservationsTotal.WithLabelValues("reserve", "invalid").Inc()
		return Result{}, ErrInvalidQuantity
	}

	var (
		observed     int
		insufficient bool
		lastErr      error
	)

	for _, path := range stockPaths(sellerID, productID) {
		committed, result, err := s.store.AtomicUpdate(ctx, path, func(current any) (any, error) {
			if current == nil {
				return nil, remotestore.ErrAbort
			}
			stock := CoerceStock(current)
			if stock < quantity {
				observed = stock
				insufficient = true
				return nil, remotestore.ErrAbort
			}
			return stock - quantity, nil
		})
		if err != nil {
			s.logger.Printf("reserve %s/%s: %v", sellerID, productID, err)
			lastErr = err
			continue
		}
		if committed {
			reservationsTotal.WithLabelValues("reserve", "ok").Inc()
			return Result{NewStock: CoerceStock(result)}, nil
		}
		// Aborted here: record absent or insufficient. Either way the
		// identical operation is retried against the next candidate path.
	}

	switch {
	case insufficient:
		reservationsTotal.WithLabelValues("reserve", "insufficient").Inc()
		return Result{}, &InsufficientStockError{Available: observed, Requested: quantity}
	case lastErr != nil:
		reservationsTotal.WithLabelValues("reserve", "transient").Inc()
		return Result{}, &TransientError{Op: "update stock", Cause: lastErr}
	default:
		reservationsTotal.WithLabelValues("reserve", "not_found").Inc()
		return Result{}, ErrRecordNotFound
	}
}

// Release atomically returns quantity units to the product's stock. A
// release is never blocked by a ceiling, so it only fails when the record
// is entirely unreachable. Non-positive quantities are a no-op success.
func (s *Service) Release(ctx context.Context, productID, sellerID string, quantity int) (Result, error) {
	if quantity <= 0 {
		return Result{}, nil
	}

	paths := stockPaths(sellerID, productID)
	var lastErr error

	// Add at the first path that holds a record.
	for _, path := range paths {
		committed, result, err := s.store.AtomicUpdate(ctx, path, func(current any) (any, error) {
			if current == nil {
				return nil, remotestore.ErrAbort
			}
			return CoerceStock(current) + quantity, nil
		})
		if err != nil {
			s.logger.Printf("release %s/%s: %v", sellerID, productID, err)
			lastErr = err
			continue
		}
		if committed {
			reservationsTotal.WithLabelValues("release", "ok").Inc()
			return Result{NewStock: CoerceStock(result)}, nil
		}
	}

	if lastErr != nil {
		reservationsTotal.WithLabelValues("release", "transient").Inc()
		return Result{}, &TransientError{Op: "restore stock", Cause: lastErr}
	}

	// Neither path held a record. Create one at the primary location so
	// the units are not lost.
	committed, result, err := s.store.AtomicUpdate(ctx, paths[0], func(current any) (any, error) {
		return CoerceStock(current) + quantity, nil
	})
	if err != nil || !committed {
		reservationsTotal.WithLabelValues("release", "transient").Inc()
		return Result{}, &TransientError{Op: "restore stock", Cause: err}
	}
	reservationsTotal.WithLabelValues("release", "ok").Inc()
	return Result{NewStock: CoerceStock(result)}, nil
}

// CurrentStock reads the authoritative remote stock, probing the candidate
// paths in order. Used by callers that must not trust a cached ceiling.
func (s *Service) CurrentStock(ctx context.Context, productID, sellerID string) (int, error) {
	for _, path := range stockPaths(sellerID, productID) {
		v, err := s.store.Get(ctx, path)
		if err != nil {
			if errors.Is(err, remotestore.ErrNotFound) {
				continue
			}
			return 0, &TransientError{Op: "verify stock", Cause: err}
		}
		return CoerceStock(v), nil
	}
	return 0, ErrRecordNotFound
}
