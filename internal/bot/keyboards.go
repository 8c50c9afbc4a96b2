package bot

import (
	"strconv"

	"techstore/internal/callback"
	"techstore/internal/domain"
	applog "techstore/internal/log"
	"techstore/internal/services"
	"techstore/internal/texts"
)

// button encodes a. A payload that cannot be encoded degrades to a no-op
// button so the rest of the keyboard still works.
func button(text string, a callback.Action) Button {
	data, err := callback.Encode(a)
	if err != nil {
		applog.Warn(nil, "callback.encode.fail", err, map[string]any{"callback_kind": string(a.Kind)})
		data, _ = callback.Encode(callback.Action{Kind: callback.Noop, Tag: callback.TagOutOfStock})
	}
	return Button{Text: text, Data: data}
}

// grid lays buttons out perRow per row.
func grid(buttons []Button, perRow int) Keyboard {
	var kb Keyboard
	for i := 0; i < len(buttons); i += perRow {
		end := min(i+perRow, len(buttons))
		kb = append(kb, buttons[i:end])
	}
	return kb
}

func MainMenu(t *texts.Texts) Menu {
	return Menu{
		{t.Menu.Products, t.Menu.Site, t.Menu.Contacts},
		{t.Menu.About, t.Menu.Requisites, t.Menu.Cart},
	}
}

func CategoriesKeyboard(categories []string) Keyboard {
	bs := make([]Button, 0, len(categories))
	for _, c := range categories {
		bs = append(bs, button(c, callback.Action{Kind: callback.Category, Category: c}))
	}
	return grid(bs, 3)
}

func ManufacturersKeyboard(t *texts.Texts, category string, manufacturers []string) Keyboard {
	bs := make([]Button, 0, len(manufacturers))
	for _, m := range manufacturers {
		bs = append(bs, button(m, callback.Action{Kind: callback.Manufacturer, Category: category, Manufacturer: m}))
	}
	kb := grid(bs, 3)
	return append(kb, []Button{button(t.Buttons.Back, callback.Action{Kind: callback.BackToCategory})})
}

func ModelsKeyboard(t *texts.Texts, category string, models []string) Keyboard {
	bs := make([]Button, 0, len(models))
	for _, m := range models {
		bs = append(bs, button(m, callback.Action{Kind: callback.Model, Model: m}))
	}
	kb := grid(bs, 3)
	return append(kb, []Button{button(t.Buttons.Back, callback.Action{Kind: callback.Category, Category: category})})
}

func OutOfStockKeyboard(t *texts.Texts) Keyboard {
	return Keyboard{{button(t.Catalog.OutOfStock, callback.Action{Kind: callback.Noop, Tag: callback.TagOutOfStock})}}
}

// CardKeyboard has colour and memory cyclers, buy/cart buttons and a back
// button that closes the card.
func CardKeyboard(t *texts.Texts, sel services.Selection) Keyboard {
	if sel.Config.Empty() {
		return OutOfStockKeyboard(t)
	}
	cycle := func(axis domain.Axis, dir domain.Direction, label string) Button {
		return button(label, callback.Action{Kind: callback.Cycle, Axis: axis, Dir: dir, Model: sel.Model})
	}
	noop := func(label, tag string) Button {
		return button(label, callback.Action{Kind: callback.Noop, Tag: tag})
	}
	p := sel.Variant.Product
	return Keyboard{
		{
			cycle(domain.AxisColor, domain.Prev, t.Buttons.Prev),
			noop(t.Buttons.Color, callback.TagColor),
			cycle(domain.AxisColor, domain.Next, t.Buttons.Next),
		},
		{
			cycle(domain.AxisMemory, domain.Prev, t.Buttons.Prev),
			noop(t.Buttons.Memory, callback.TagMemory),
			cycle(domain.AxisMemory, domain.Next, t.Buttons.Next),
		},
		{
			button(t.Buttons.Buy, callback.Action{Kind: callback.Buy, ProductID: p.ID}),
			button(t.Buttons.AddToCart, callback.Action{Kind: callback.AddToCart, ProductID: p.ID}),
		},
		{button(t.Buttons.Back, callback.Action{Kind: callback.BackToCard, Manufacturer: p.Manufacturer})},
	}
}

// CartKeyboard has one delete button per entry of the page, five per row,
// then the page navigation row.
func CartKeyboard(t *texts.Texts, userID int64, page services.CartPage) Keyboard {
	bs := make([]Button, 0, len(page.Lines))
	for _, l := range page.Lines {
		bs = append(bs, button(strconv.Itoa(l.Index), callback.Action{
			Kind: callback.DeleteFromCart, UserID: userID, ProductID: l.ProductID,
		}))
	}
	kb := grid(bs, 5)
	var nav []Button
	if page.HasPrev {
		nav = append(nav, button(t.Buttons.PagePrev, callback.Action{Kind: callback.CartPage, UserID: userID, Page: page.Page - 1}))
	}
	if page.HasNext {
		nav = append(nav, button(t.Buttons.PageNext, callback.Action{Kind: callback.CartPage, UserID: userID, Page: page.Page + 1}))
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}
	return kb
}

func MediaKindKeyboard(t *texts.Texts) Keyboard {
	var bs []Button
	for _, k := range []domain.MediaKind{domain.MediaPhoto, domain.MediaVideo, domain.MediaDocument, domain.MediaText} {
		bs = append(bs, button(t.Broadcast.Kinds[string(k)], callback.Action{Kind: callback.MediaType, Media: k}))
	}
	return grid(bs, 2)
}

func CaptionKeyboard(t *texts.Texts) Keyboard {
	return Keyboard{{
		button(t.Broadcast.AddCaption, callback.Action{Kind: callback.CaptionChoice, Yes: true}),
		button(t.Broadcast.SkipCaption, callback.Action{Kind: callback.CaptionChoice}),
	}}
}

func WhenKeyboard(t *texts.Texts) Keyboard {
	return Keyboard{{
		button(t.Broadcast.SendNow, callback.Action{Kind: callback.WhenChoice, Yes: true}),
		button(t.Broadcast.Schedule, callback.Action{Kind: callback.WhenChoice}),
	}}
}
