package clientcart

import (
	"context"
	"log"
	"sync"
)

// Session holds the working cart together with its injected ports. Local
// mutations always apply and persist first; when the session is
// authenticated, each mutation's outbound write is mirrored to the ledger
// asynchronously and best-effort. A failed mirror is logged, never rolled
// back: the local copy stays the source of truth for the UI.
type Session struct {
	mu            sync.Mutex
	cart          Cart
	store         Store
	remote        Remote
	authenticated bool
	mirrors       sync.WaitGroup
}

// NewSession loads the persisted cart and wires the ports. The session
// starts unauthenticated; Reconcile flips it after a successful merge.
func NewSession(store Store, remote Remote) (*Session, error) {
	cart, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Session{
		cart:   cart,
		store:  store,
		remote: remote,
	}, nil
}

// Cart returns the current cart snapshot.
func (s *Session) Cart() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart
}

// Add applies an add mutation.
func (s *Session) Add(item Item) {
	s.apply(func(c Cart) (Cart, *Op) { return c.Add(item) })
}

// Remove applies a removal.
func (s *Session) Remove(productID, sizeID uint) {
	s.apply(func(c Cart) (Cart, *Op) { return c.Remove(productID, sizeID) })
}

// Increase bumps a line's quantity.
func (s *Session) Increase(productID, sizeID uint) {
	s.apply(func(c Cart) (Cart, *Op) { return c.Increase(productID, sizeID) })
}

// Decrease lowers a line's quantity, flooring at one.
func (s *Session) Decrease(productID, sizeID uint) {
	s.apply(func(c Cart) (Cart, *Op) { return c.Decrease(productID, sizeID) })
}

func (s *Session) apply(mutate func(Cart) (Cart, *Op)) {
	s.mu.Lock()
	next, op := mutate(s.cart)
	s.cart = next
	if err := s.store.Save(s.cart); err != nil {
		log.Printf("Failed to persist cart locally: %v", err)
	}
	mirror := s.authenticated && op != nil
	s.mu.Unlock()

	if mirror {
		s.mirrors.Add(1)
		go func() {
			defer s.mirrors.Done()
			s.sendOp(op)
		}()
	}
}

func (s *Session) sendOp(op *Op) {
	ctx := context.Background()
	var err error
	switch op.Kind {
	case OpUpsert:
		err = s.remote.Upsert(ctx, op.ProductID, op.SizeID, op.Quantity)
	case OpRemove:
		err = s.remote.Remove(ctx, op.ProductID, op.SizeID)
	}
	if err != nil {
		log.Printf("Failed to mirror cart mutation to server: %v", err)
	}
}

// Flush blocks until all in-flight mirror writes have completed.
func (s *Session) Flush() {
	s.mirrors.Wait()
}

// Reconcile merges the offline cart into the server ledger and replaces
// the local copy with the authoritative result. Call it exactly once after
// a successful login or signup. The sync step completes before the fetch
// begins, so the fetch observes at least its own writes; replaying it is a
// no-op because sync overwrites quantities rather than summing them.
func (s *Session) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	offline := s.cart
	s.mu.Unlock()

	if offline.Len() > 0 {
		if err := s.remote.Sync(ctx, offline.SyncItems()); err != nil {
			return err
		}
	}

	fetched, err := s.remote.Fetch(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = New(fetched...)
	s.authenticated = true
	if err := s.store.Save(s.cart); err != nil {
		log.Printf("Failed to persist reconciled cart locally: %v", err)
	}
	return nil
}
