package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/notify"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/nikolayk812/shopcart/internal/service"

var ErrClosed = errors.New("cart store is closed")

// Store owns a single cart. Mutations are serialized; readers get snapshots
// and never wait for an inventory lookup in flight.
type Store struct {
	storage   port.CartStorage
	inventory port.InventoryClient
	notifier  port.Notifier
	log       logrus.FieldLogger
	tracer    trace.Tracer

	// opMu is held for a whole read-modify-write, including remote lookups.
	opMu sync.Mutex

	mu        sync.RWMutex
	cart      domain.Cart
	closed    bool
	observers map[int]func(domain.Cart)
	nextObs   int
}

type Option func(*Store)

func WithNotifier(n port.Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Store) {
		s.log = log
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *Store) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// New builds a store whose initial cart is whatever storage holds.
func New(ctx context.Context, storage port.CartStorage, inventory port.InventoryClient, opts ...Option) (*Store, error) {
	if storage == nil {
		return nil, fmt.Errorf("storage is nil")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory is nil")
	}

	s := &Store{
		storage:   storage,
		inventory: inventory,
		notifier:  notify.Discard,
		log:       logrus.StandardLogger(),
		tracer:    otel.Tracer(tracerName),
		observers: make(map[int]func(domain.Cart)),
	}
	for _, opt := range opts {
		opt(s)
	}

	cart, err := storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage.Load: %w", err)
	}
	s.cart = cart

	s.log.WithField("items", cart.Len()).Debug("cart loaded")

	return s, nil
}

// Cart returns a copy of the current cart.
func (s *Store) Cart() domain.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cart.Clone()
}

// Subscribe registers fn to be called with every committed cart.
// fn runs while mutations are serialized and must not call back into the store's mutations.
func (s *Store) Subscribe(fn func(domain.Cart)) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return func() {}
	}

	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// Close ends the store's lifecycle. The persisted cart is kept.
func (s *Store) Close() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.observers = make(map[int]func(domain.Cart))
}

func (s *Store) AddProduct(ctx context.Context, productID int64) (domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "Store.AddProduct", trace.WithAttributes(
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	cart, err := s.mutate(ctx, func(ctx context.Context, current domain.Cart) (domain.Cart, error) {
		return s.addProduct(ctx, current, productID)
	})
	if err != nil {
		notice := domain.NoticeAddFailed
		if errors.Is(err, domain.ErrOutOfStock) {
			notice = domain.NoticeAddOutOfStock
		}
		s.reject(ctx, span, notice, err, logrus.Fields{"product_id": productID})
		return cart, fmt.Errorf("add product %d: %w", productID, err)
	}

	span.SetAttributes(attribute.Int("cart.items", cart.Len()))
	return cart, nil
}

func (s *Store) RemoveProduct(ctx context.Context, productID int64) (domain.Cart, error) {
	ctx, span := s.tracer.Start(ctx, "Store.RemoveProduct", trace.WithAttributes(
		attribute.Int64("product.id", productID),
	))
	defer span.End()

	cart, err := s.mutate(ctx, func(_ context.Context, current domain.Cart) (domain.Cart, error) {
		next, ok := current.Remove(productID)
		if !ok {
			return current, domain.ErrNotFound
		}
		return next, nil
	})
	if err != nil {
		s.reject(ctx, span, domain.NoticeRemoveFailed, err, logrus.Fields{"product_id": productID})
		return cart, fmt.Errorf("remove product %d: %w", productID, err)
	}

	span.SetAttributes(attribute.Int("cart.items", cart.Len()))
	return cart, nil
}

// UpdateProductAmount sets an absolute amount for an item already in the cart.
// Non-positive amounts are ignored.
func (s *Store) UpdateProductAmount(ctx context.Context, update domain.AmountUpdate) (domain.Cart, error) {
	if update.Amount <= 0 {
		return s.Cart(), nil
	}

	ctx, span := s.tracer.Start(ctx, "Store.UpdateProductAmount", trace.WithAttributes(
		attribute.Int64("product.id", update.ProductID),
		attribute.Int("product.amount", update.Amount),
	))
	defer span.End()

	cart, err := s.mutate(ctx, func(ctx context.Context, current domain.Cart) (domain.Cart, error) {
		return s.updateProductAmount(ctx, current, update)
	})
	if err != nil {
		notice := domain.NoticeUpdateFailed
		if errors.Is(err, domain.ErrOutOfStock) {
			notice = domain.NoticeUpdateOutOfStock
		}
		s.reject(ctx, span, notice, err, logrus.Fields{
			"product_id": update.ProductID,
			"amount":     update.Amount,
		})
		return cart, fmt.Errorf("update product %d: %w", update.ProductID, err)
	}

	return cart, nil
}

func (s *Store) addProduct(ctx context.Context, current domain.Cart, productID int64) (domain.Cart, error) {
	existing, idx := current.Find(productID)
	desired := existing.Amount + 1

	stock, err := s.inventory.GetStock(ctx, productID)
	if err != nil {
		return current, fmt.Errorf("%w: inventory.GetStock: %w", domain.ErrUpstream, err)
	}
	if desired > stock.Amount {
		return current, fmt.Errorf("%w: want %d, have %d", domain.ErrOutOfStock, desired, stock.Amount)
	}

	if idx >= 0 {
		next, _ := current.SetAmount(productID, desired)
		return next, nil
	}

	product, err := s.inventory.GetProduct(ctx, productID)
	if err != nil {
		return current, fmt.Errorf("%w: inventory.GetProduct: %w", domain.ErrUpstream, err)
	}

	return current.Append(domain.NewCartItem(product)), nil
}

func (s *Store) updateProductAmount(ctx context.Context, current domain.Cart, update domain.AmountUpdate) (domain.Cart, error) {
	stock, err := s.inventory.GetStock(ctx, update.ProductID)
	if err != nil {
		return current, fmt.Errorf("%w: inventory.GetStock: %w", domain.ErrUpstream, err)
	}
	if update.Amount > stock.Amount {
		return current, fmt.Errorf("%w: want %d, have %d", domain.ErrOutOfStock, update.Amount, stock.Amount)
	}

	next, ok := current.SetAmount(update.ProductID, update.Amount)
	if !ok {
		return current, domain.ErrNotFound
	}

	return next, nil
}

// mutate runs one read-modify-write. The new cart is persisted first and only
// then becomes visible, so a failure at any step leaves the cart as it was.
func (s *Store) mutate(ctx context.Context, fn func(context.Context, domain.Cart) (domain.Cart, error)) (domain.Cart, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.RLock()
	current, closed := s.cart, s.closed
	s.mu.RUnlock()

	if closed {
		return domain.Cart{}, ErrClosed
	}

	next, err := fn(ctx, current)
	if err != nil {
		return current.Clone(), err
	}

	if err := s.storage.Save(ctx, next); err != nil {
		return current.Clone(), fmt.Errorf("%w: storage.Save: %w", domain.ErrPersist, err)
	}

	s.mu.Lock()
	s.cart = next
	observers := make([]func(domain.Cart), 0, len(s.observers))
	for _, obs := range s.observers {
		observers = append(observers, obs)
	}
	s.mu.Unlock()

	for _, obs := range observers {
		obs(next.Clone())
	}

	return next.Clone(), nil
}

func (s *Store) reject(ctx context.Context, span trace.Span, notice domain.Notice, err error, fields logrus.Fields) {
	span.RecordError(err)
	span.SetStatus(codes.Error, string(notice))

	entry := s.log.WithFields(fields).WithError(err).WithField("notice", string(notice))
	if errors.Is(err, domain.ErrOutOfStock) || errors.Is(err, domain.ErrNotFound) {
		entry.Info("cart mutation rejected")
	} else {
		entry.Warn("cart mutation failed")
	}

	s.notifier.Notify(ctx, notice)
}
