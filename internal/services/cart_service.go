package services

import (
	"techstore/internal/catalog"
	"techstore/internal/domain"
	"techstore/internal/repos"
)

// PageSize is the number of cart entries shown per page.
const PageSize = 10

type CartService struct {
	Carts   *repos.CartRepo
	Users   *repos.UserRepo
	Catalog *catalog.Catalog
	Limit   int
}

func NewCartService(carts *repos.CartRepo, users *repos.UserRepo, cat *catalog.Catalog) *CartService {
	return &CartService{Carts: carts, Users: users, Catalog: cat, Limit: domain.CartLimit}
}

// Add appends productID to the cart. A full cart yields ErrCartFull and is
// left untouched; an unknown product yields ErrNotFound.
func (s *CartService) Add(userID, productID int64) error {
	if _, ok := s.Catalog.Product(productID); !ok {
		return domain.ErrNotFound
	}
	if err := s.Users.Ensure(userID); err != nil {
		return err
	}
	added, err := s.Carts.AddCapped(userID, productID, s.Limit)
	if err != nil {
		return err
	}
	if !added {
		return domain.ErrCartFull
	}
	return nil
}

// Remove drops every entry of productID; stacked duplicates go together.
func (s *CartService) Remove(userID, productID int64) (int64, error) {
	return s.Carts.Remove(userID, productID)
}

func (s *CartService) Clear(userID int64) error { return s.Carts.Clear(userID) }

func (s *CartService) Count(userID int64) (int, error) { return s.Carts.Count(userID) }

func (s *CartService) Products(userID int64) ([]int64, error) { return s.Carts.Products(userID) }

// CartLine is one displayed cart entry. Index is 1-based over the whole cart.
// Available is false when the product has left the catalog.
type CartLine struct {
	Index     int
	ProductID int64
	Product   domain.Product
	Available bool
}

type CartPage struct {
	Window
	Lines []CartLine
}

func (p CartPage) Empty() bool { return p.Total == 0 }

// View returns one page of the cart joined with catalog data.
func (s *CartService) View(userID int64, page int) (CartPage, error) {
	ids, err := s.Carts.Products(userID)
	if err != nil {
		return CartPage{}, err
	}
	w := Paginate(len(ids), page, PageSize)
	out := CartPage{Window: w}
	for i := w.Start; i < w.End; i++ {
		p, ok := s.Catalog.Product(ids[i])
		out.Lines = append(out.Lines, CartLine{Index: i + 1, ProductID: ids[i], Product: p, Available: ok})
	}
	return out, nil
}

// Window is a page of a list: entries [Start, End).
type Window struct {
	Page    int
	Pages   int
	Total   int
	Start   int
	End     int
	HasPrev bool
	HasNext bool
}

// Paginate clamps page into range and computes its window.
func Paginate(total, page, size int) Window {
	if size <= 0 {
		size = PageSize
	}
	pages := (total + size - 1) / size
	if pages == 0 {
		pages = 1
	}
	if page < 0 {
		page = 0
	}
	if page >= pages {
		page = pages - 1
	}
	start := page * size
	end := min(start+size, total)
	return Window{
		Page:    page,
		Pages:   pages,
		Total:   total,
		Start:   start,
		End:     end,
		HasPrev: page > 0,
		HasNext: end < total,
	}
}
