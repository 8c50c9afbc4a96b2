package services

import (
	"techstore/internal/catalog"
	"techstore/internal/domain"
	"techstore/internal/repos"
)

// OrderService turns "buy" presses into purchase requests for the admin.
type OrderService struct {
	Catalog  *catalog.Catalog
	Requests *repos.RequestRepo
}

func NewOrderService(cat *catalog.Catalog, requests *repos.RequestRepo) *OrderService {
	return &OrderService{Catalog: cat, Requests: requests}
}

// Request records a purchase request for productID and returns the product
// with the request id.
func (s *OrderService) Request(userID int64, username string, productID int64) (domain.Product, int64, error) {
	p, ok := s.Catalog.Product(productID)
	if !ok {
		return domain.Product{}, 0, domain.ErrNotFound
	}
	id, err := s.Requests.Create(userID, username, productID, p.Price)
	if err != nil {
		return p, 0, err
	}
	return p, id, nil
}

// Latest lists the newest purchase requests first.
func (s *OrderService) Latest(limit int) ([]domain.PurchaseRequest, error) {
	return s.Requests.ListLatest(limit)
}

func (s *OrderService) Count() (int, error) {
	return s.Requests.Count()
}
