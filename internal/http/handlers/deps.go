package handlers

import (
	"techstore/internal/catalog"
	"techstore/internal/repos"
	"techstore/internal/services"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	AdminHandler    *AdminHandler
	AdminTokenHash  string
}

func NewDeps(db *sqlx.DB, cat *catalog.Catalog, sel *services.SelectionStore, bc *services.BroadcastService, adminTokenHash string) *Deps {
	admin := &AdminHandler{
		Users:     repos.NewUserRepo(db),
		Orders:    services.NewOrderService(cat, repos.NewRequestRepo(db)),
		Products:  cat.Len(),
		Broadcast: bc,
	}
	if sel != nil {
		admin.Sessions = sel.Len
	}
	return &Deps{
		CategoryHandler: &CategoryHandler{Catalog: cat},
		ProductHandler:  &ProductHandler{Catalog: cat},
		AdminHandler:    admin,
		AdminTokenHash:  adminTokenHash,
	}
}
