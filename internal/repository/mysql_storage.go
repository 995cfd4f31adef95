package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/sirupsen/logrus"
)

const (
	mysqlLoadSlot = `SELECT payload FROM cart_slots WHERE slot_key = ?`
	mysqlSaveSlot = `
INSERT INTO cart_slots (slot_key, payload, updated_at)
VALUES (?, ?, NOW())
ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`
)

type mysqlStorage struct {
	db  *sql.DB
	key string
	log logrus.FieldLogger
}

func NewMySQL(db *sql.DB, key string, log logrus.FieldLogger) (port.CartStorage, error) {
	if db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}

	return &mysqlStorage{
		db:  db,
		key: key,
		log: log,
	}, nil
}

func (s *mysqlStorage) Load(ctx context.Context) (domain.Cart, error) {
	var payload []byte

	err := s.db.QueryRowContext(ctx, mysqlLoadSlot, s.key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("db.QueryRowContext: %w", err)
	}

	return decodeCart(s.log, s.key, payload), nil
}

func (s *mysqlStorage) Save(ctx context.Context, cart domain.Cart) error {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, mysqlSaveSlot, s.key, data); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}
