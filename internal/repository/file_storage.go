package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/sirupsen/logrus"
)

type fileStorage struct {
	path string
	log  logrus.FieldLogger
}

func NewFile(path string, log logrus.FieldLogger) (port.CartStorage, error) {
	if path == "" {
		return nil, fmt.Errorf("path is empty")
	}

	return &fileStorage{
		path: path,
		log:  log,
	}, nil
}

func (s *fileStorage) Load(_ context.Context) (domain.Cart, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Cart{}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("os.ReadFile: %w", err)
	}

	return decodeCart(s.log, s.path, data), nil
}

// Save replaces the file atomically so a crash never leaves a half-written cart.
func (s *fileStorage) Save(_ context.Context, cart domain.Cart) (saveErr error) {
	data, err := encodeCart(cart)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("os.MkdirAll: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".cart-*")
	if err != nil {
		return fmt.Errorf("os.CreateTemp: %w", err)
	}
	defer func() {
		if saveErr != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("tmp.Write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("tmp.Sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tmp.Close: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("os.Rename: %w", err)
	}

	return nil
}
