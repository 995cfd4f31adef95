package repository

import (
	"context"
	"sync"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/sirupsen/logrus"
)

type memoryStorage struct {
	mu   sync.RWMutex
	data []byte
	log  logrus.FieldLogger
}

func NewMemory(log logrus.FieldLogger) port.CartStorage {
	return NewMemoryFrom(nil, log)
}

// NewMemoryFrom starts with a raw payload already in the slot.
func NewMemoryFrom(payload []byte, log logrus.FieldLogger) port.CartStorage {
	return &memoryStorage{
		data: payload,
		log:  log,
	}
}

func (s *memoryStorage) Load(_ context.Context) (domain.Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.data == nil {
		return domain.Cart{}, nil
	}

	return decodeCart(s.log, "memory", s.data), nil
}

func (s *memoryStorage) Save(_ context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()

	return nil
}
