package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/nikolayk812/shopcart/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var errUnreachable = errors.New("connection refused")

type fakeInventory struct {
	mu         sync.Mutex
	stock      map[int64]int
	products   map[int64]domain.Product
	stockErr   error
	productErr error

	stockCalls   int
	productCalls int
}

func newFakeInventory() *fakeInventory {
	return &fakeInventory{
		stock:    make(map[int64]int),
		products: make(map[int64]domain.Product),
	}
}

// withProduct registers a catalog product with the given stock.
func (f *fakeInventory) withProduct(id int64, stock int) *fakeInventory {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stock[id] = stock
	f.products[id] = randomProduct(id)
	return f
}

func (f *fakeInventory) GetStock(_ context.Context, productID int64) (domain.Stock, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.stockCalls++
	if f.stockErr != nil {
		return domain.Stock{}, f.stockErr
	}
	amount, ok := f.stock[productID]
	if !ok {
		return domain.Stock{}, fmt.Errorf("stock[%d]: not found", productID)
	}
	return domain.Stock{ProductID: productID, Amount: amount}, nil
}

func (f *fakeInventory) GetProduct(_ context.Context, productID int64) (domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.productCalls++
	if f.productErr != nil {
		return domain.Product{}, f.productErr
	}
	product, ok := f.products[productID]
	if !ok {
		return domain.Product{}, fmt.Errorf("product[%d]: not found", productID)
	}
	return product, nil
}

func (f *fakeInventory) calls() (stock, product int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stockCalls, f.productCalls
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []domain.Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice domain.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) all() []domain.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notice(nil), n.notices...)
}

type countingStorage struct {
	port.CartStorage

	mu      sync.Mutex
	saves   int
	saveErr error
}

func (s *countingStorage) Save(ctx context.Context, cart domain.Cart) error {
	s.mu.Lock()
	s.saves++
	err := s.saveErr
	s.mu.Unlock()

	if err != nil {
		return err
	}
	return s.CartStorage.Save(ctx, cart)
}

func (s *countingStorage) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func randomProduct(id int64) domain.Product {
	return domain.Product{
		ID:    id,
		Title: gofakeit.ProductName(),
		Price: decimal.NewFromFloat(gofakeit.Price(1, 500)).Round(2),
		Image: gofakeit.URL(),
	}
}

func newStorage(items ...domain.CartItem) *countingStorage {
	inner := repository.NewMemory(quietLogger())
	if len(items) > 0 {
		if err := inner.Save(context.Background(), domain.Cart{Items: items}); err != nil {
			panic(err)
		}
	}
	return &countingStorage{CartStorage: inner}
}

func item(id int64, amount int) domain.CartItem {
	return domain.CartItem{Product: randomProduct(id), Amount: amount}
}

// amounts flattens a cart to id→amount pairs in cart order.
func amounts(cart domain.Cart) [][2]int64 {
	out := make([][2]int64, 0, cart.Len())
	for _, it := range cart.Items {
		out = append(out, [2]int64{it.ID, int64(it.Amount)})
	}
	return out
}
