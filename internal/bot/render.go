package bot

import (
	"html"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"techstore/internal/domain"
	"techstore/internal/services"
	"techstore/internal/texts"
)

// price renders whole roubles, dropping kopecks.
func price(d decimal.Decimal) string { return d.Truncate(0).String() }

// squeeze collapses the runs of spaces left by empty fields, line by line.
func squeeze(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.Join(strings.Fields(l), " ")
	}
	return strings.Join(lines, "\n")
}

// CardCaption describes the selected variant.
func CardCaption(t *texts.Texts, sel services.Selection) string {
	p := sel.Variant.Product
	lines := []string{p.Name, ""}
	if p.Description != "" {
		lines = append(lines, p.Description)
	}
	lines = append(lines, texts.Format(t.Catalog.CaptionColor, "color", sel.Color))
	if sel.Variant.Memory != "" {
		lines = append(lines, texts.Format(t.Catalog.CaptionMemory, "memory", sel.Variant.Memory))
	}
	lines = append(lines, texts.Format(t.Catalog.CaptionPrice, "price", price(p.Price)))
	return strings.Join(lines, "\n")
}

// CartText renders the entries of one cart page as HTML.
func CartText(t *texts.Texts, page services.CartPage) string {
	if page.Empty() {
		return t.Cart.Empty
	}
	var b strings.Builder
	b.WriteString(t.Cart.Header)
	b.WriteString("\n")
	for _, l := range page.Lines {
		if !l.Available {
			b.WriteString(texts.Format(t.Cart.MissingLine,
				"index", strconv.Itoa(l.Index), "id", strconv.FormatInt(l.ProductID, 10)))
			b.WriteString("\n\n")
			continue
		}
		p := l.Product
		b.WriteString(squeeze(texts.Format(t.Cart.Line,
			"index", strconv.Itoa(l.Index),
			"item", t.Category(p.Category).Item,
			"manufacturer", html.EscapeString(p.Manufacturer),
			"model", html.EscapeString(p.ShortName),
			"color", html.EscapeString(p.Color),
			"memory", html.EscapeString(p.Memory),
			"price", price(p.Price),
		)))
		b.WriteString("\n\n")
	}
	if page.Pages > 1 {
		b.WriteString(texts.Format(t.Cart.Page,
			"page", strconv.Itoa(page.Page+1), "pages", strconv.Itoa(page.Pages)))
		b.WriteString("\n\n")
	}
	b.WriteString(t.Cart.Footer)
	return b.String()
}

// OrderNotice is the HTML message the admin gets for a purchase request.
func OrderNotice(t *texts.Texts, username string, p domain.Product) string {
	if username == "" {
		username = "None"
	}
	return texts.Format(t.Order.AdminRequest,
		"username", html.EscapeString(username),
		"item", t.Category(p.Category).Item,
		"manufacturer", html.EscapeString(p.Manufacturer),
		"model", html.EscapeString(p.ShortName),
		"color", html.EscapeString(p.Color),
		"memory", html.EscapeString(p.Memory),
		"price", price(p.Price),
		"id", strconv.FormatInt(p.ID, 10),
	)
}
