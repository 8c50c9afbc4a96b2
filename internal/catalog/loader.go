package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"techstore/internal/domain"
	applog "techstore/internal/log"
)

// Columns every catalog sheet must carry.
var Columns = []string{
	"id", "category", "manufacturer", "short_name", "name", "description",
	"memory", "color", "price", "stock", "photo",
}

var ErrUnsupportedFormat = errors.New("catalog: unsupported file format")

var validate = validator.New()

// Load reads a catalog file (.xlsx or .csv) and indexes it. For workbooks the
// first sheet is used unless sheet is set.
func Load(path, sheet string) (*Catalog, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(path, sheet)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, err
	}
	products, err := ParseRows(rows)
	if err != nil {
		return nil, err
	}
	cat := New(products)
	applog.Info(nil, "catalog.load", map[string]any{
		"path": path, "products": cat.Len(), "categories": len(cat.Categories()),
	})
	return cat, nil
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("catalog: read sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV reads all records; rows may have differing lengths.
func ReadCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("catalog: csv: %w", err)
	}
	return rows, nil
}

// ParseRows converts a header row plus data rows into products. Blank rows are
// ignored; rows failing validation are logged and skipped.
func ParseRows(rows [][]string) ([]domain.Product, error) {
	if len(rows) == 0 {
		return nil, errors.New("catalog: empty sheet")
	}
	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range Columns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("catalog: missing column %q", col)
		}
	}

	var out []domain.Product
	for n, row := range rows[1:] {
		cell := func(col string) string {
			i := idx[col]
			if i >= len(row) {
				return ""
			}
			return cleanCell(row[i])
		}
		if blank(row) {
			continue
		}
		p, err := parseProduct(cell)
		if err == nil {
			err = validate.Struct(p)
		}
		if err != nil {
			applog.Warn(nil, "catalog.row.skip", err, map[string]any{"row": n + 2})
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func parseProduct(cell func(string) string) (domain.Product, error) {
	id, err := parseInt(cell("id"))
	if err != nil {
		return domain.Product{}, fmt.Errorf("id: %w", err)
	}
	price := decimal.Zero
	if s := cell("price"); s != "" {
		if price, err = decimal.NewFromString(strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")); err != nil {
			return domain.Product{}, fmt.Errorf("price: %w", err)
		}
	}
	var stock int64
	if s := cell("stock"); s != "" {
		if stock, err = parseInt(s); err != nil {
			return domain.Product{}, fmt.Errorf("stock: %w", err)
		}
	}
	memory := cell("memory")
	if memory == "0" {
		memory = ""
	}
	return domain.Product{
		ID:           id,
		Category:     cell("category"),
		Manufacturer: cell("manufacturer"),
		ShortName:    cell("short_name"),
		Name:         cell("name"),
		Description:  cell("description"),
		Memory:       memory,
		Color:        cell("color"),
		Price:        price,
		Stock:        int(stock),
		Photo:        cell("photo"),
	}, nil
}

// parseInt accepts integers and integral floats such as "44.0".
func parseInt(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int64(f), nil
}

func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "nan") {
		return ""
	}
	return s
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
