package repository_test

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func startPostgres(ctx context.Context) (*postgres.PostgresContainer, string, error) {
	postgresContainer, err := postgres.Run(ctx, "postgres:17.6-alpine3.22",
		postgres.BasicWaitStrategies(),
		postgres.WithInitScripts(
			"../migrations/01_cart_slots.up.sql"),
	)
	if err != nil {
		return nil, "", fmt.Errorf("postgres.Run: %w", err)
	}

	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, "", fmt.Errorf("pc.ConnectionString: %w", err)
	}

	return postgresContainer, connStr, nil
}

func quietLogger() logrus.FieldLogger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// hookedLogger captures entries so tests can assert on degraded loads.
func hookedLogger() (logrus.FieldLogger, *test.Hook) {
	return test.NewNullLogger()
}

func randomCart(n int) domain.Cart {
	var cart domain.Cart
	for i := range n {
		cart.Items = append(cart.Items, randomCartItem(int64(i+1)))
	}
	return cart
}

func randomCartItem(id int64) domain.CartItem {
	return domain.CartItem{
		Product: domain.Product{
			ID:    id,
			Title: gofakeit.ProductName(),
			Price: decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2),
			Image: gofakeit.URL(),
		},
		Amount: gofakeit.IntRange(1, 10),
	}
}

func assertCart(t *testing.T, expected, actual domain.Cart) {
	t.Helper()

	decimalComparer := cmp.Comparer(func(x, y decimal.Decimal) bool {
		return x.Equal(y)
	})

	diff := cmp.Diff(expected, actual, decimalComparer, cmpopts.EquateEmpty())
	assert.Empty(t, diff)
}

// malformedPayloads are slot contents that must load as an empty cart.
var malformedPayloads = []struct {
	name    string
	payload string
}{
	{name: "not json", payload: "{{{"},
	{name: "object instead of array", payload: `{"id":1,"amount":1}`},
	{name: "zero amount", payload: `[{"id":1,"title":"a","price":1,"image":"","amount":0}]`},
	{name: "duplicate id", payload: `[{"id":1,"amount":1},{"id":1,"amount":2}]`},
	{name: "amount is a string", payload: `[{"id":1,"amount":"two"}]`},
}
