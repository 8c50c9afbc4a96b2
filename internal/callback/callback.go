// Package callback encodes the data carried by inline keyboard buttons.
//
// Payloads are versioned: "1|<kind>|<field>|...". Fields escape only '%'
// and '|' so non-ASCII names stay compact. Decode also understands the
// older underscore-delimited tokens still attached to sent messages.
package callback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"techstore/internal/domain"
	"techstore/internal/validate"
)

// MaxLen is the transport limit for callback data, in bytes.
const MaxLen = 64

const version = "1"

var (
	ErrTooLong   = errors.New("callback: payload exceeds 64 bytes")
	ErrMalformed = errors.New("callback: malformed payload")
)

type Kind string

const (
	Category       Kind = "c"   // Category
	Manufacturer   Kind = "m"   // Category, Manufacturer
	Model          Kind = "o"   // Model
	Cycle          Kind = "y"   // Axis, Dir, Model
	AddToCart      Kind = "a"   // ProductID
	DeleteFromCart Kind = "d"   // UserID, ProductID
	CartPage       Kind = "p"   // UserID, Page
	Buy            Kind = "b"   // ProductID
	BackToCategory Kind = "bc"  // no fields
	BackToCard     Kind = "bm"  // Manufacturer
	Noop           Kind = "n"   // Tag
	MediaType      Kind = "mt"  // Media
	CaptionChoice  Kind = "cap" // Yes: add a caption
	WhenChoice     Kind = "w"   // Yes: send now
)

// Noop tags.
const (
	TagOutOfStock = "out_of_stock"
	TagColor      = "color"
	TagMemory     = "memory"
)

// Action is a decoded button press. Only the fields of its Kind are set.
type Action struct {
	Kind         Kind
	Category     string
	Manufacturer string
	Model        string
	ProductID    int64
	UserID       int64
	Page         int
	Axis         domain.Axis
	Dir          domain.Direction
	Media        domain.MediaKind
	Tag          string
	Yes          bool
	// Legacy is set when the payload used the old token format.
	Legacy bool
}

func (a Action) fields() ([]string, error) {
	switch a.Kind {
	case Category:
		return []string{a.Category}, nil
	case Manufacturer:
		return []string{a.Category, a.Manufacturer}, nil
	case Model:
		return []string{a.Model}, nil
	case Cycle:
		axis := "c"
		if a.Axis == domain.AxisMemory {
			axis = "m"
		}
		dir := "n"
		if a.Dir == domain.Prev {
			dir = "p"
		}
		return []string{axis, dir, a.Model}, nil
	case AddToCart, Buy:
		return []string{itoa(a.ProductID)}, nil
	case DeleteFromCart:
		return []string{itoa(a.UserID), itoa(a.ProductID)}, nil
	case CartPage:
		return []string{itoa(a.UserID), strconv.Itoa(a.Page)}, nil
	case BackToCategory:
		return nil, nil
	case BackToCard:
		return []string{a.Manufacturer}, nil
	case Noop:
		return []string{a.Tag}, nil
	case MediaType:
		return []string{string(a.Media)}, nil
	case CaptionChoice, WhenChoice:
		return []string{flag(a.Yes)}, nil
	}
	return nil, fmt.Errorf("callback: unknown kind %q", a.Kind)
}

// Encode renders a in the current format.
func Encode(a Action) (string, error) {
	fs, err := a.fields()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(version)
	b.WriteByte('|')
	b.WriteString(string(a.Kind))
	for _, f := range fs {
		b.WriteByte('|')
		b.WriteString(escape(f))
	}
	if b.Len() > MaxLen {
		return "", fmt.Errorf("%w: %s %d bytes", ErrTooLong, a.Kind, b.Len())
	}
	return b.String(), nil
}

// Decode parses a payload in either format.
func Decode(data string) (Action, error) {
	if strings.HasPrefix(data, version+"|") {
		return decodeV1(data)
	}
	return decodeLegacy(data)
}

func decodeV1(data string) (Action, error) {
	parts := strings.Split(data, "|")[1:]
	a := Action{Kind: Kind(parts[0])}
	fs := parts[1:]
	for i, f := range fs {
		u, err := unescape(f)
		if err != nil {
			return Action{}, err
		}
		fs[i] = u
	}
	want := map[Kind]int{
		Category: 1, Manufacturer: 2, Model: 1, Cycle: 3, AddToCart: 1, Buy: 1,
		DeleteFromCart: 2, CartPage: 2, BackToCategory: 0, BackToCard: 1, Noop: 1,
		MediaType: 1, CaptionChoice: 1, WhenChoice: 1,
	}
	n, ok := want[a.Kind]
	if !ok || len(fs) != n {
		return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
	}

	var err error
	switch a.Kind {
	case Category:
		a.Category = fs[0]
	case Manufacturer:
		a.Category, a.Manufacturer = fs[0], fs[1]
	case Model:
		a.Model = fs[0]
	case Cycle:
		switch fs[0] {
		case "c":
			a.Axis = domain.AxisColor
		case "m":
			a.Axis = domain.AxisMemory
		default:
			return Action{}, fmt.Errorf("%w: axis %q", ErrMalformed, fs[0])
		}
		switch fs[1] {
		case "n":
			a.Dir = domain.Next
		case "p":
			a.Dir = domain.Prev
		default:
			return Action{}, fmt.Errorf("%w: direction %q", ErrMalformed, fs[1])
		}
		a.Model = fs[2]
	case AddToCart, Buy:
		a.ProductID, err = atoi(fs[0])
	case DeleteFromCart:
		if a.UserID, err = atoi(fs[0]); err == nil {
			a.ProductID, err = atoi(fs[1])
		}
	case CartPage:
		if a.UserID, err = atoi(fs[0]); err == nil {
			var ok bool
			if a.Page, ok = validate.Page(fs[1]); !ok {
				err = fmt.Errorf("%w: page %q", ErrMalformed, fs[1])
			}
		}
	case BackToCard:
		a.Manufacturer = fs[0]
	case Noop:
		a.Tag = fs[0]
	case MediaType:
		a.Media = domain.MediaKind(fs[0])
	case CaptionChoice, WhenChoice:
		a.Yes = fs[0] == "1"
	}
	if err != nil {
		return Action{}, fmt.Errorf("%w: %q", ErrMalformed, data)
	}
	return a, nil
}

// decodeLegacy handles the underscore tokens. Model names there have spaces
// replaced by underscores, so everything after the fixed prefix is the name.
func decodeLegacy(data string) (Action, error) {
	bad := fmt.Errorf("%w: %q", ErrMalformed, data)
	a := Action{Legacy: true}
	cut := func(prefix string) (string, bool) {
		rest, ok := strings.CutPrefix(data, prefix)
		return rest, ok && rest != ""
	}
	model := func(s string) string { return strings.ReplaceAll(s, "_", " ") }

	switch data {
	case "back_to_categories":
		a.Kind = BackToCategory
		return a, nil
	case "out_of_stock":
		a.Kind, a.Tag = Noop, TagOutOfStock
		return a, nil
	case "color_ignor":
		a.Kind, a.Tag = Noop, TagColor
		return a, nil
	case "memory_ignor":
		a.Kind, a.Tag = Noop, TagMemory
		return a, nil
	case "add_caption", "skip_caption":
		a.Kind, a.Yes = CaptionChoice, data == "add_caption"
		return a, nil
	case "send_now", "schedule":
		a.Kind, a.Yes = WhenChoice, data == "send_now"
		return a, nil
	}

	for _, c := range []struct {
		prefix string
		axis   domain.Axis
		dir    domain.Direction
	}{
		{"previous_color_", domain.AxisColor, domain.Prev},
		{"next_color_", domain.AxisColor, domain.Next},
		{"previous_memory_", domain.AxisMemory, domain.Prev},
		{"next_memory_", domain.AxisMemory, domain.Next},
	} {
		if rest, ok := cut(c.prefix); ok {
			a.Kind, a.Axis, a.Dir, a.Model = Cycle, c.axis, c.dir, model(rest)
			return a, nil
		}
	}

	if rest, ok := cut("back_to_manufacturer_"); ok {
		a.Kind, a.Manufacturer = BackToCard, rest
		return a, nil
	}
	if rest, ok := cut("add_to_cart_"); ok {
		id, err := atoi(rest)
		if err != nil {
			return Action{}, bad
		}
		a.Kind, a.ProductID = AddToCart, id
		return a, nil
	}
	if rest, ok := cut("buy_"); ok {
		id, err := atoi(rest)
		if err != nil {
			return Action{}, bad
		}
		a.Kind, a.ProductID = Buy, id
		return a, nil
	}
	if rest, ok := cut("delete_product_"); ok {
		u, p, found := strings.Cut(rest, "_")
		if !found {
			return Action{}, bad
		}
		uid, err1 := atoi(u)
		pid, err2 := atoi(p)
		if err1 != nil || err2 != nil {
			return Action{}, bad
		}
		a.Kind, a.UserID, a.ProductID = DeleteFromCart, uid, pid
		return a, nil
	}
	if rest, ok := cut("cart_page_"); ok {
		u, p, found := strings.Cut(rest, "_")
		if !found {
			return Action{}, bad
		}
		uid, err1 := atoi(u)
		page, ok := validate.Page(p)
		if err1 != nil || !ok {
			return Action{}, bad
		}
		a.Kind, a.UserID, a.Page = CartPage, uid, page
		return a, nil
	}
	if rest, ok := cut("media_"); ok {
		a.Kind, a.Media = MediaType, domain.MediaKind(rest)
		return a, nil
	}
	if rest, ok := cut("model_"); ok {
		a.Kind, a.Model = Model, model(rest)
		return a, nil
	}
	// positional: category first, then manufacturer
	if rest, ok := cut("manufacturer_"); ok {
		c, m, found := strings.Cut(rest, "_")
		if !found || c == "" || m == "" {
			return Action{}, bad
		}
		a.Kind, a.Category, a.Manufacturer = Manufacturer, c, m
		return a, nil
	}
	if rest, ok := cut("category_"); ok {
		a.Kind, a.Category = Category, rest
		return a, nil
	}
	return Action{}, bad
}

func escape(s string) string {
	if !strings.ContainsAny(s, "%|") {
		return s
	}
	return strings.NewReplacer("%", "%25", "|", "%7C").Replace(s)
}

func unescape(s string) (string, error) {
	if !strings.Contains(s, "%") {
		return s, nil
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", fmt.Errorf("%w: bad escape in %q", ErrMalformed, s)
		}
		switch s[i+1 : i+3] {
		case "25":
			b.WriteByte('%')
		case "7C", "7c":
			b.WriteByte('|')
		default:
			return "", fmt.Errorf("%w: bad escape in %q", ErrMalformed, s)
		}
		i += 2
	}
	return b.String(), nil
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func atoi(s string) (int64, error) { return strconv.ParseInt(s, 10, 64) }

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
