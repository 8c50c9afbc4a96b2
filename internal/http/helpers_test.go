package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"techstore/internal/catalog"
	"techstore/internal/domain"
	"techstore/internal/http/handlers"
	"techstore/internal/repos"
	"techstore/internal/services"
)

const adminToken = "s3cret-admin-token"

type testApp struct {
	app   *fiber.App
	users *repos.UserRepo
	reqs  *repos.RequestRepo
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte(adminToken), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cat := catalog.New([]domain.Product{
		{ID: 44, Category: "СМАРТФОНЫ", Manufacturer: "Apple", ShortName: "15 Pro Max", Name: "iPhone 15 Pro Max",
			Color: "White Titanium", Memory: "256Gb", Stock: 1, Price: decimal.RequireFromString("130900")},
		{ID: 45, Category: "СМАРТФОНЫ", Manufacturer: "Apple", ShortName: "15 Pro Max", Name: "iPhone 15 Pro Max",
			Color: "Black Titanium", Memory: "256Gb", Stock: 0, Price: decimal.RequireFromString("130900")},
		{ID: 46, Category: "НАУШНИКИ", Manufacturer: "Sony", ShortName: "WH-1000XM5", Name: "Sony WH-1000XM5",
			Color: "Black", Stock: 0, Price: decimal.RequireFromString("29990")},
	})
	sel := services.NewSelectionStore(cat, 10, 0)
	deps := handlers.NewDeps(db, cat, sel, nil, string(hash))
	return &testApp{app: handlers.NewApp(deps), users: repos.NewUserRepo(db), reqs: repos.NewRequestRepo(db)}
}

func (a *testApp) get(t *testing.T, path, token string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.app.Test(req)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func decode(t *testing.T, body string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(body), v); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
}
