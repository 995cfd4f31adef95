package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type redisStorage struct {
	client redis.UniversalClient
	key    string
	log    logrus.FieldLogger
}

func NewRedis(client redis.UniversalClient, key string, log logrus.FieldLogger) (port.CartStorage, error) {
	if client == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &redisStorage{
		client: client,
		key:    key,
		log:    log,
	}, nil
}

func (s *redisStorage) Load(ctx context.Context) (domain.Cart, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("client.Get: %w", err)
	}

	return decodeCart(s.log, s.key, data), nil
}

func (s *redisStorage) Save(ctx context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}
