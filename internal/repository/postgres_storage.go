package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/sirupsen/logrus"
)

const (
	pgLoadSlot = `SELECT payload FROM cart_slots WHERE slot_key = $1`
	pgSaveSlot = `
INSERT INTO cart_slots (slot_key, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (slot_key) DO UPDATE
SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
)

type postgresStorage struct {
	pool *pgxpool.Pool
	key  string
	log  logrus.FieldLogger
}

func NewPostgres(pool *pgxpool.Pool, key string, log logrus.FieldLogger) (port.CartStorage, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &postgresStorage{
		pool: pool,
		key:  key,
		log:  log,
	}, nil
}

func (s *postgresStorage) Load(ctx context.Context) (domain.Cart, error) {
	var payload string

	err := s.pool.QueryRow(ctx, pgLoadSlot, s.key).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("pool.QueryRow: %w", err)
	}

	return decodeCart(s.log, s.key, []byte(payload)), nil
}

func (s *postgresStorage) Save(ctx context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	if _, err := s.pool.Exec(ctx, pgSaveSlot, s.key, string(data)); err != nil {
		return fmt.Errorf("pool.Exec: %w", err)
	}

	return nil
}
