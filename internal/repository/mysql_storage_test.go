package repository_test

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-sql-driver/mysql"
	"github.com/nikolayk812/shopcart/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/shopcart"
	}

	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("mysql.ParseDSN: %v", err)
	}
	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		t.Fatalf("mysql.NewConnector: %v", err)
	}

	db := sql.OpenDB(connector)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		t.Skipf("MySQL not available: %v", err)
	}

	schema, err := os.ReadFile("../migrations/mysql/01_cart_slots.up.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	return db
}

func TestMySQL_RoundTrip(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := t.Context()
	key := gofakeit.UUID()
	defer db.ExecContext(context.Background(), "DELETE FROM cart_slots WHERE slot_key = ?", key)

	storage, err := repository.NewMySQL(db, key, quietLogger())
	require.NoError(t, err)

	loaded, err := storage.Load(ctx)
	require.NoError(t, err)
	assert.Zero(t, loaded.Len())

	first := randomCart(4)
	require.NoError(t, storage.Save(ctx, first))

	want := randomCart(2)
	require.NoError(t, storage.Save(ctx, want))

	loaded, err = storage.Load(ctx)
	require.NoError(t, err)
	assertCart(t, want, loaded)
}

func TestMySQL_MalformedSlot(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	for _, tt := range malformedPayloads {
		t.Run(tt.name+": empty cart", func(t *testing.T) {
			ctx := t.Context()
			key := gofakeit.UUID()
			defer db.ExecContext(context.Background(), "DELETE FROM cart_slots WHERE slot_key = ?", key)

			_, err := db.ExecContext(ctx, "INSERT INTO cart_slots (slot_key, payload) VALUES (?, ?)", key, tt.payload)
			require.NoError(t, err)

			storage, err := repository.NewMySQL(db, key, quietLogger())
			require.NoError(t, err)

			loaded, err := storage.Load(ctx)
			require.NoError(t, err)
			assert.Zero(t, loaded.Len())
		})
	}
}
