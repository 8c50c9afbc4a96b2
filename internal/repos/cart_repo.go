package repos

import (
	"techstore/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

// Add appends an entry without any size check.
func (r *CartRepo) Add(userID, productID int64) error {
	_, err := r.db.Exec(`INSERT INTO cart(user_id, product_id) VALUES(?, ?)`, userID, productID)
	return domain.Storage("cart.add", err)
}

// AddCapped appends an entry only while the cart holds fewer than limit rows.
// The count and the insert run as one statement.
func (r *CartRepo) AddCapped(userID, productID int64, limit int) (bool, error) {
	res, err := r.db.Exec(`
		INSERT INTO cart(user_id, product_id)
		SELECT ?, ?
		WHERE (SELECT COUNT(*) FROM cart WHERE user_id = ?) < ?
	`, userID, productID, userID, limit)
	if err != nil {
		return false, domain.Storage("cart.add", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, domain.Storage("cart.add", err)
	}
	return n == 1, nil
}

// Products returns the user's product ids in insertion order.
func (r *CartRepo) Products(userID int64) ([]int64, error) {
	ids := []int64{}
	if err := r.db.Select(&ids, `SELECT product_id FROM cart WHERE user_id = ? ORDER BY id`, userID); err != nil {
		return nil, domain.Storage("cart.list", err)
	}
	return ids, nil
}

// Remove deletes every entry of productID from the user's cart and reports
// how many rows went.
func (r *CartRepo) Remove(userID, productID int64) (int64, error) {
	res, err := r.db.Exec(`DELETE FROM cart WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return 0, domain.Storage("cart.remove", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *CartRepo) Clear(userID int64) error {
	_, err := r.db.Exec(`DELETE FROM cart WHERE user_id = ?`, userID)
	return domain.Storage("cart.clear", err)
}

func (r *CartRepo) Count(userID int64) (int, error) {
	var n int
	if err := r.db.Get(&n, `SELECT COUNT(*) FROM cart WHERE user_id = ?`, userID); err != nil {
		return 0, domain.Storage("cart.count", err)
	}
	return n, nil
}
