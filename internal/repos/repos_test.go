package repos_test

import (
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"techstore/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenDB_CreatesDirectoryAndIsIdempotent(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "database", "cart.db")
	db, err := repos.OpenDB(dsn)
	require.NoError(t, err)
	require.NoError(t, repos.NewUserRepo(db).Upsert(1, "a", "A", ""))
	require.NoError(t, db.Close())

	db, err = repos.OpenDB(dsn)
	require.NoError(t, err)
	defer db.Close()
	n, err := repos.NewUserRepo(db).Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUserRepo_UpsertRefreshesNames(t *testing.T) {
	users := repos.NewUserRepo(memdb(t))
	require.NoError(t, users.Upsert(42, "old", "Ann", "Lee"))
	require.NoError(t, users.Upsert(42, "new", "Ann", "Smith"))

	u, err := users.ByID(42)
	require.NoError(t, err)
	assert.Equal(t, "new", u.Username)
	assert.Equal(t, "Smith", u.LastName)
	assert.NotEmpty(t, u.CreatedAt)

	require.NoError(t, users.Ensure(42))
	require.NoError(t, users.Ensure(43))
	ids, err := users.IDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{42, 43}, ids)
}

func TestCartRepo_InsertionOrderAndRemoveAll(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	carts := repos.NewCartRepo(db)
	require.NoError(t, users.Ensure(1))

	for _, pid := range []int64{5, 5, 7} {
		require.NoError(t, carts.Add(1, pid))
	}
	got, err := carts.Products(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{5, 5, 7}, got)

	n, err := carts.Remove(1, 5)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	got, err = carts.Products(1)
	require.NoError(t, err)
	assert.Equal(t, []int64{7}, got)

	count, err := carts.Count(1)
	require.NoError(t, err)
	assert.Equal(t, len(got), count)
}

func TestCartRepo_AddCapped(t *testing.T) {
	db := memdb(t)
	require.NoError(t, repos.NewUserRepo(db).Ensure(1))
	carts := repos.NewCartRepo(db)

	for i := 0; i < 3; i++ {
		ok, err := carts.AddCapped(1, int64(i), 3)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := carts.AddCapped(1, 99, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	n, _ := carts.Count(1)
	assert.Equal(t, 3, n)
}

func TestCartRepo_AddCappedConcurrent(t *testing.T) {
	db := memdb(t)
	require.NoError(t, repos.NewUserRepo(db).Ensure(1))
	carts := repos.NewCartRepo(db)

	var accepted atomic.Int64
	var g errgroup.Group
	for i := 0; i < 120; i++ {
		pid := int64(i)
		g.Go(func() error {
			ok, err := carts.AddCapped(1, pid, 50)
			if ok {
				accepted.Add(1)
			}
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.EqualValues(t, 50, accepted.Load())
	n, err := carts.Count(1)
	require.NoError(t, err)
	assert.Equal(t, 50, n)
}

func TestCartRepo_ForeignKeyCascade(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	carts := repos.NewCartRepo(db)

	// unknown user violates the foreign key
	require.Error(t, carts.Add(77, 1))

	require.NoError(t, users.Ensure(77))
	require.NoError(t, carts.Add(77, 1))
	require.NoError(t, users.Delete(77))
	n, err := carts.Count(77)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCartRepo_Clear(t *testing.T) {
	db := memdb(t)
	require.NoError(t, repos.NewUserRepo(db).Ensure(1))
	carts := repos.NewCartRepo(db)
	for i := 0; i < 12; i++ {
		require.NoError(t, carts.Add(1, int64(i%4)))
	}
	require.NoError(t, carts.Clear(1))
	got, err := carts.Products(1)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRequestRepo_CreateAndList(t *testing.T) {
	reqs := repos.NewRequestRepo(memdb(t))
	id, err := reqs.Create(1, "ann", 44, decimal.RequireFromString("130900"))
	require.NoError(t, err)
	assert.Positive(t, id)
	_, err = reqs.Create(1, "ann", 45, decimal.RequireFromString("99.5"))
	require.NoError(t, err)

	list, err := reqs.ListLatest(10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(45), list[0].ProductID)
	assert.True(t, list[0].Price.Equal(decimal.RequireFromString("99.5")))

	n, err := reqs.CountByUser(1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	total, err := reqs.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}
