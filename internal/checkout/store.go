package checkout

import (
	"context"
	"sync"

	"pos-checkout/internal/posapi"
)

// Store holds the live sessions, one per open checkout. Each session is
// owned by exactly one terminal dialog; the map lock only covers lookup.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	deps         Deps
	methods      []posapi.PaymentMethod
	staticQRISID string
}

func NewStore(deps Deps, methods []posapi.PaymentMethod, staticQRISID string) *Store {
	return &Store{
		sessions:     make(map[string]*Session),
		deps:         deps,
		methods:      methods,
		staticQRISID: staticQRISID,
	}
}

func (st *Store) Create() *Session {
	s := NewSession(st.deps, st.methods, st.staticQRISID)
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Order resolves an order detail cache-first, falling back to the backend
// and warming the cache on a miss. It serves lookups for orders this
// terminal does not own (kitchen display, reprint).
func (st *Store) Order(ctx context.Context, orderID string) (*posapi.Order, error) {
	if st.deps.Cache != nil {
		if o, ok, err := st.deps.Cache.GetOrder(ctx, orderID); err == nil && ok {
			return o, nil
		}
	}
	o, err := st.deps.Client.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if st.deps.Cache != nil {
		_ = st.deps.Cache.PutOrder(ctx, o)
	}
	return o, nil
}

func (st *Store) Remove(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if ok {
		s.StopWatching()
	}
}
