package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"techstore/internal/catalog"
	"techstore/internal/domain"
	"techstore/internal/repos"
	"techstore/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func product(id int64, model, color, memory string, stock int) domain.Product {
	return domain.Product{
		ID: id, Category: "СМАРТФОНЫ", Manufacturer: "Apple", ShortName: model,
		Name: "iPhone " + model, Color: color, Memory: memory, Stock: stock,
		Price: decimal.NewFromInt(100 * id),
	}
}

// testCatalog holds ids 1..60 so cart tests can add distinct products.
func testCatalog() *catalog.Catalog {
	ps := []domain.Product{
		product(1, "15", "White", "128Gb", 1),
		product(2, "15", "White", "256Gb", 1),
		product(3, "15", "Black", "128Gb", 1),
		product(4, "15", "Black", "256Gb", 1),
		product(5, "15", "Blue", "128Gb", 1),
		product(6, "15", "Blue", "256Gb", 1),
		product(7, "15", "Blue", "512Gb", 1),
		product(8, "SE", "Red", "64Gb", 1),
	}
	for id := int64(9); id <= 60; id++ {
		ps = append(ps, product(id, "Case", "Clear", "", 3))
	}
	return catalog.New(ps)
}

func newCartService(t *testing.T) *services.CartService {
	db := memdb(t)
	return services.NewCartService(repos.NewCartRepo(db), repos.NewUserRepo(db), testCatalog())
}
