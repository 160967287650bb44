package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"cartflow/pkg/logger"
	"cartflow/pkg/otel"
)

// Store owns the in-memory cart and its persisted mirror.
//
// Every mutation is computed from the latest state under mu, so concurrent
// callers never lose updates. Each write carries the newest revision at the
// time it runs, and a revision already in Storage is not written again.
type Store struct {
	mu    sync.Mutex
	items []Item
	rev   uint64

	writeMu sync.Mutex
	written uint64
	lastErr error

	subMu   sync.Mutex
	subs    map[int]chan []Item
	nextSub int

	storage  Storage
	key      string
	log      *logger.Logger
	validate *validator.Validate
}

// Option configures a Store.
type Option func(*Store)

// WithKey overrides the storage key. Defaults to DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) {
		if strings.TrimSpace(key) != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger used for load and write failures.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// NewStore returns an empty Store backed by storage. Call Load to restore
// the persisted cart.
func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{
		items:    []Item{},
		subs:     make(map[int]chan []Item),
		storage:  storage,
		key:      DefaultKey,
		log:      logger.NewNop(),
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key the cart is persisted under.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory cart with the persisted snapshot. A missing or
// unreadable snapshot leaves the cart empty; only a storage read failure is
// returned.
func (s *Store) Load(ctx context.Context) error {
	ctx, span := otel.AddSpan(ctx, "cart.load", attribute.String("cart.key", s.key))
	defer span.End()

	raw, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("reading %s: %w", s.key, err)
	}
	if !found {
		s.log.Debug(ctx, "no persisted cart", "key", s.key)
		return nil
	}

	items, err := Decode(raw)
	if err != nil {
		s.log.Warn(ctx, "discarding persisted cart", "key", s.key, "error", err)
		return nil
	}

	s.mu.Lock()
	s.items = items
	s.rev++
	s.notify(items)
	s.mu.Unlock()

	s.log.Info(ctx, "cart loaded", "key", s.key, "items", len(items))
	return nil
}

// Items returns a copy of the cart in display order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.items)
}

// Find returns the line for id.
func (s *Store) Find(id string) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.items, id); i >= 0 {
		return s.items[i], true
	}
	return Item{}, false
}

// Count returns the total number of units in the cart.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Total returns the sum of every line's subtotal.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// AddToCart appends p with quantity 1, or increments the existing line when
// p.ID is already in the cart. In that case the other fields of p are ignored.
func (s *Store) AddToCart(ctx context.Context, p Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProduct, err)
	}

	ctx, span := otel.AddSpan(ctx, "cart.add", attribute.String("cart.item_id", p.ID))
	defer span.End()

	s.apply(ctx, func(items []Item) ([]Item, bool) {
		if i := indexOf(items, p.ID); i >= 0 {
			return withQuantity(items, i, items[i].Quantity+1), true
		}
		next := make([]Item, len(items), len(items)+1)
		copy(next, items)
		return append(next, Item{
			ID:       p.ID,
			Title:    p.Title,
			ImageURL: p.ImageURL,
			Price:    p.Price,
			Quantity: 1,
		}), true
	})
	return nil
}

// Increment adds one unit to the line for id. Unknown ids are ignored.
func (s *Store) Increment(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := otel.AddSpan(ctx, "cart.increment", attribute.String("cart.item_id", id))
	defer span.End()

	s.apply(ctx, func(items []Item) ([]Item, bool) {
		i := indexOf(items, id)
		if i < 0 {
			return items, false
		}
		return withQuantity(items, i, items[i].Quantity+1), true
	})
	return nil
}

// Decrement removes one unit from the line for id, dropping the line when it
// reaches zero. Unknown ids are ignored.
func (s *Store) Decrement(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := otel.AddSpan(ctx, "cart.decrement", attribute.String("cart.item_id", id))
	defer span.End()

	s.apply(ctx, func(items []Item) ([]Item, bool) {
		i := indexOf(items, id)
		if i < 0 {
			return items, false
		}
		if items[i].Quantity-1 == 0 {
			next := make([]Item, 0, len(items)-1)
			next = append(next, items[:i]...)
			return append(next, items[i+1:]...), true
		}
		return withQuantity(items, i, items[i].Quantity-1), true
	})
	return nil
}

// Clear empties the cart. Clearing an empty cart does nothing.
func (s *Store) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := otel.AddSpan(ctx, "cart.clear")
	defer span.End()

	s.apply(ctx, func(items []Item) ([]Item, bool) {
		return []Item{}, len(items) > 0
	})
	return nil
}

// LastWriteErr returns the error of the most recent failed write, or nil once
// a later write succeeded.
func (s *Store) LastWriteErr() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.lastErr
}

// Subscribe returns a channel that receives a copy of the cart after every
// change. Only the latest snapshot is buffered. cancel closes the channel.
func (s *Store) Subscribe() (<-chan []Item, func()) {
	ch := make(chan []Item, 1)
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// apply computes the next cart from the current one. fn must not modify its
// argument; it reports whether the cart changed. Unchanged carts are not
// persisted.
func (s *Store) apply(ctx context.Context, fn func([]Item) ([]Item, bool)) {
	s.mu.Lock()
	next, changed := fn(s.items)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.items = next
	s.rev++
	s.notify(next)
	s.mu.Unlock()

	s.persist(ctx)
}

// persist writes the current cart. The snapshot is taken after writeMu is
// held, so a write never carries an older revision than one that ran before
// it. Cancellation of ctx does not abort the write: memory already changed.
func (s *Store) persist(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	rev := s.rev
	items := clone(s.items)
	s.mu.Unlock()

	if rev <= s.written {
		return
	}
	ctx = context.WithoutCancel(ctx)
	raw, err := Encode(items)
	if err == nil {
		err = s.storage.Set(ctx, s.key, raw)
	}
	if err != nil {
		s.lastErr = fmt.Errorf("%w: %w", ErrWrite, err)
		s.log.Error(ctx, "persisting cart", "key", s.key, "revision", rev, "error", err)
		return
	}
	s.written = rev
	s.lastErr = nil
}

// notify must be called with mu held so subscribers see changes in order.
func (s *Store) notify(items []Item) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		snap := clone(items)
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

func indexOf(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func withQuantity(items []Item, i, qty int) []Item {
	next := clone(items)
	next[i].Quantity = qty
	return next
}

func clone(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	return out
}
