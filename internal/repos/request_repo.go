package repos

import (
	"techstore/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type RequestRepo struct{ db *sqlx.DB }

func NewRequestRepo(db *sqlx.DB) *RequestRepo { return &RequestRepo{db: db} }

// Create records a purchase request and returns its id.
func (r *RequestRepo) Create(userID int64, username string, productID int64, price decimal.Decimal) (int64, error) {
	res, err := r.db.Exec(`
	  INSERT INTO purchase_requests(user_id, username, product_id, price, created_at)
	  VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, userID, username, productID, price.String())
	if err != nil {
		return 0, domain.Storage("requests.create", err)
	}
	id, err := res.LastInsertId()
	return id, domain.Storage("requests.create", err)
}

func (r *RequestRepo) ListLatest(limit int) ([]domain.PurchaseRequest, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.PurchaseRequest
	err := r.db.Select(&out, `
		SELECT id, user_id, username, product_id, price, COALESCE(created_at,'') AS created_at
		FROM purchase_requests
		ORDER BY datetime(created_at) DESC, id DESC
		LIMIT ?
	`, limit)
	return out, domain.Storage("requests.list", err)
}

func (r *RequestRepo) CountByUser(userID int64) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM purchase_requests WHERE user_id = ?`, userID)
	return n, domain.Storage("requests.count", err)
}

func (r *RequestRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM purchase_requests`)
	return n, domain.Storage("requests.count", err)
}
