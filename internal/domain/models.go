package domain

import "github.com/shopspring/decimal"

// CartLimit caps how many entries a single cart may hold.
const CartLimit = 50

type Product struct {
	ID           int64           `db:"id" json:"id" validate:"gt=0"`
	Category     string          `db:"category" json:"category" validate:"required"`
	Manufacturer string          `db:"manufacturer" json:"manufacturer" validate:"required"`
	ShortName    string          `db:"short_name" json:"short_name" validate:"required"`
	Name         string          `db:"name" json:"name"`
	Description  string          `db:"description" json:"description,omitempty"`
	Memory       string          `db:"memory" json:"memory,omitempty"`
	Color        string          `db:"color" json:"color"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Stock        int             `db:"stock" json:"stock"`
	Photo        string          `db:"photo" json:"photo,omitempty"`
}

func (p Product) InStock() bool { return p.Stock > 0 }

// Variant is one purchasable memory option of a colour.
type Variant struct {
	Memory  string  `json:"memory"`
	Product Product `json:"product"`
}

type ColorGroup struct {
	Color    string    `json:"color"`
	Variants []Variant `json:"variants"`
}

// Configuration is the in-stock variant grid of one model: colours in
// first-appearance order, each with its memory variants.
type Configuration struct {
	Model  string       `json:"model"`
	Colors []ColorGroup `json:"colors"`
}

func (c Configuration) Empty() bool { return len(c.Colors) == 0 }

func (c Configuration) ColorCount() int { return len(c.Colors) }

// MemoryCount returns the number of memory variants of the colour at idx, or
// 0 when idx is out of range.
func (c Configuration) MemoryCount(idx int) int {
	if idx < 0 || idx >= len(c.Colors) {
		return 0
	}
	return len(c.Colors[idx].Variants)
}

// At returns the variant at (colorIdx, memoryIdx).
func (c Configuration) At(colorIdx, memoryIdx int) (ColorGroup, Variant, bool) {
	if colorIdx < 0 || colorIdx >= len(c.Colors) {
		return ColorGroup{}, Variant{}, false
	}
	g := c.Colors[colorIdx]
	if memoryIdx < 0 || memoryIdx >= len(g.Variants) {
		return ColorGroup{}, Variant{}, false
	}
	return g, g.Variants[memoryIdx], true
}

type User struct {
	ID        int64  `db:"id" json:"id"`
	Username  string `db:"username" json:"username"`
	FirstName string `db:"first_name" json:"first_name"`
	LastName  string `db:"last_name" json:"last_name"`
	CreatedAt string `db:"created_at" json:"created_at"`
}

// PurchaseRequest records a "buy" press forwarded to the admin.
type PurchaseRequest struct {
	ID        int64           `db:"id" json:"id"`
	UserID    int64           `db:"user_id" json:"user_id"`
	Username  string          `db:"username" json:"username"`
	ProductID int64           `db:"product_id" json:"product_id"`
	Price     decimal.Decimal `db:"price" json:"price"`
	CreatedAt string          `db:"created_at" json:"created_at"`
}

// Axis is one dimension of a model's variant grid.
type Axis int

const (
	AxisColor Axis = iota
	AxisMemory
)

func (a Axis) String() string {
	if a == AxisMemory {
		return "memory"
	}
	return "color"
}

// Direction moves a selection index; both directions wrap.
type Direction int

const (
	Prev Direction = -1
	Next Direction = 1
)

// MediaKind is the payload type of a broadcast.
type MediaKind string

const (
	MediaText     MediaKind = "text"
	MediaPhoto    MediaKind = "photo"
	MediaVideo    MediaKind = "video"
	MediaDocument MediaKind = "document"
)

func (k MediaKind) Valid() bool {
	switch k {
	case MediaText, MediaPhoto, MediaVideo, MediaDocument:
		return true
	}
	return false
}
