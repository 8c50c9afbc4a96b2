package repos

import (
	"techstore/internal/domain"

	"github.com/jmoiron/sqlx"
)

type UserRepo struct{ DB *sqlx.DB }

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{DB: db} }

// Upsert creates the user or refreshes its names; created_at is kept.
func (r *UserRepo) Upsert(id int64, username, firstName, lastName string) error {
	_, err := r.DB.Exec(`
		INSERT INTO users(id, username, first_name, last_name)
		VALUES(?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		  username = excluded.username,
		  first_name = excluded.first_name,
		  last_name = excluded.last_name
	`, id, username, firstName, lastName)
	return domain.Storage("users.upsert", err)
}

// Ensure inserts a bare row for id if none exists.
func (r *UserRepo) Ensure(id int64) error {
	_, err := r.DB.Exec(`INSERT INTO users(id) VALUES(?) ON CONFLICT(id) DO NOTHING`, id)
	return domain.Storage("users.ensure", err)
}

func (r *UserRepo) ByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.DB.Get(&u, `SELECT id, username, first_name, last_name, COALESCE(created_at,'') AS created_at FROM users WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// IDs returns every registered user id, oldest first.
func (r *UserRepo) IDs() ([]int64, error) {
	var ids []int64
	if err := r.DB.Select(&ids, `SELECT id FROM users ORDER BY created_at, id`); err != nil {
		return nil, domain.Storage("users.ids", err)
	}
	return ids, nil
}

func (r *UserRepo) Count() (int, error) {
	var n int
	if err := r.DB.Get(&n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, domain.Storage("users.count", err)
	}
	return n, nil
}

// List returns the newest users first.
func (r *UserRepo) List(limit int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.User
	err := r.DB.Select(&out, `
		SELECT id, username, first_name, last_name, COALESCE(created_at,'') AS created_at
		FROM users
		ORDER BY datetime(created_at) DESC, id DESC
		LIMIT ?
	`, limit)
	return out, domain.Storage("users.list", err)
}

// Delete removes the user; cart rows go with it through the foreign key.
func (r *UserRepo) Delete(id int64) error {
	_, err := r.DB.Exec(`DELETE FROM users WHERE id = ?`, id)
	return domain.Storage("users.delete", err)
}
