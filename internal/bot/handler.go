package bot

import (
	"context"
	"errors"
	"fmt"

	"techstore/internal/callback"
	"techstore/internal/catalog"
	"techstore/internal/domain"
	applog "techstore/internal/log"
	"techstore/internal/repos"
	"techstore/internal/services"
	"techstore/internal/texts"
)

// Handler turns updates into service calls and replies.
type Handler struct {
	Msg       Messenger
	Texts     *texts.Texts
	Catalog   *catalog.Catalog
	Users     *repos.UserRepo
	Cart      *services.CartService
	Selection *services.SelectionStore
	Orders    *services.OrderService
	Broadcast *services.BroadcastService
	AdminID   int64
	// Manager is the contact given to customers after "Buy".
	Manager string
}

func (h *Handler) isAdmin(userID int64) bool { return h.AdminID != 0 && userID == h.AdminID }

func fields(u Update, kv ...any) map[string]any {
	f := map[string]any{"update_id": u.ID, "user_id": u.UserID}
	for i := 0; i+1 < len(kv); i += 2 {
		f[fmt.Sprint(kv[i])] = kv[i+1]
	}
	return f
}

// Handle processes one update. Errors are returned after the user has been
// answered where possible; the caller logs them.
func (h *Handler) Handle(ctx context.Context, u Update) error {
	if u.IsCallback() {
		return h.onCallback(ctx, u)
	}
	switch u.Command {
	case "start":
		return h.onStart(ctx, u)
	case "clear_cart":
		return h.onClearCart(ctx, u)
	case "broadcast":
		return h.onBroadcast(ctx, u)
	case "cancel":
		return h.onCancel(ctx, u)
	}
	if h.isAdmin(u.UserID) && h.wizardWaitsForInput(u.UserID) {
		return h.onWizardInput(ctx, u)
	}
	return h.onMenu(ctx, u)
}

func (h *Handler) onStart(ctx context.Context, u Update) error {
	if err := h.Users.Upsert(u.UserID, u.Username, u.FirstName, u.LastName); err != nil {
		return err
	}
	applog.Audit(nil, "bot.user.start", fields(u, "username", u.Username))
	_, err := h.Msg.Send(ctx, u.ChatID, Message{Text: h.Texts.Start, Menu: MainMenu(h.Texts)})
	return err
}

func (h *Handler) onClearCart(ctx context.Context, u Update) error {
	if err := h.Cart.Clear(u.UserID); err != nil {
		return err
	}
	applog.Info(nil, "cart.clear", fields(u))
	_, err := h.Msg.Send(ctx, u.ChatID, Message{Text: h.Texts.Cart.Cleared})
	return err
}

func (h *Handler) onMenu(ctx context.Context, u Update) error {
	t := h.Texts
	switch u.Text {
	case t.Menu.Products:
		_, err := h.Msg.Send(ctx, u.ChatID, Message{
			Text:   t.Catalog.ChooseCategory,
			Inline: CategoriesKeyboard(h.Catalog.Categories()),
		})
		return err
	case t.Menu.Cart:
		return h.sendCart(ctx, u)
	}
	if answer, ok := t.Answers[u.Text]; ok {
		_, err := h.Msg.Send(ctx, u.ChatID, Message{Text: answer})
		return err
	}
	applog.Debug(nil, "bot.message.ignored", fields(u))
	return nil
}

func (h *Handler) sendCart(ctx context.Context, u Update) error {
	page, err := h.Cart.View(u.UserID, 0)
	if err != nil {
		return err
	}
	m := Message{Text: CartText(h.Texts, page), HTML: true}
	if !page.Empty() {
		m.Inline = CartKeyboard(h.Texts, u.UserID, page)
	}
	_, err = h.Msg.Send(ctx, u.ChatID, m)
	return err
}

// editCart re-renders the cart message in place.
func (h *Handler) editCart(ctx context.Context, u Update, page int) error {
	view, err := h.Cart.View(u.UserID, page)
	if err != nil {
		return err
	}
	m := Message{Text: CartText(h.Texts, view), HTML: true}
	if !view.Empty() {
		m.Inline = CartKeyboard(h.Texts, u.UserID, view)
	}
	return h.Msg.EditText(ctx, u.ChatID, u.MessageID, m)
}

func (h *Handler) onCallback(ctx context.Context, u Update) error {
	a, err := callback.Decode(u.Data)
	if err != nil {
		applog.Warn(nil, "bot.callback.malformed", err, fields(u, "data", u.Data))
		return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
	}
	applog.Debug(nil, "bot.callback", fields(u, "callback_kind", string(a.Kind), "legacy", a.Legacy))

	switch a.Kind {
	case callback.Category:
		return h.onCategory(ctx, u, a.Category)
	case callback.BackToCategory:
		if err := h.Msg.EditText(ctx, u.ChatID, u.MessageID, Message{
			Text:   h.Texts.Catalog.ChooseCategory,
			Inline: CategoriesKeyboard(h.Catalog.Categories()),
		}); err != nil {
			return err
		}
		return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
	case callback.Manufacturer:
		return h.onManufacturer(ctx, u, a.Category, a.Manufacturer)
	case callback.Model:
		return h.onModel(ctx, u, a.Model)
	case callback.Cycle:
		return h.onCycle(ctx, u, a)
	case callback.BackToCard:
		if err := h.Msg.Delete(ctx, u.ChatID, u.MessageID); err != nil {
			return err
		}
		return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
	case callback.AddToCart:
		return h.onAddToCart(ctx, u, a.ProductID)
	case callback.DeleteFromCart:
		return h.onDeleteFromCart(ctx, u, a)
	case callback.CartPage:
		return h.onCartPage(ctx, u, a)
	case callback.Buy:
		return h.onBuy(ctx, u, a.ProductID)
	case callback.Noop:
		text := ""
		if a.Tag == callback.TagOutOfStock {
			text = h.Texts.Catalog.OutOfStock
		}
		return h.Msg.AnswerCallback(ctx, u.CallbackID, text, false)
	case callback.MediaType, callback.CaptionChoice, callback.WhenChoice:
		return h.onWizardButton(ctx, u, a)
	}
	return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
}

func (h *Handler) onCategory(ctx context.Context, u Update, category string) error {
	names := h.Texts.Category(category)
	manufacturers := h.Catalog.Manufacturers(category)
	tmpl := h.Texts.Catalog.ChooseManufacturer
	if len(manufacturers) == 0 {
		tmpl = h.Texts.Catalog.NoManufacturers
	}
	if err := h.Msg.EditText(ctx, u.ChatID, u.MessageID, Message{
		Text:   texts.Format(tmpl, "of", names.Of),
		Inline: ManufacturersKeyboard(h.Texts, category, manufacturers),
	}); err != nil {
		return err
	}
	return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
}

func (h *Handler) onManufacturer(ctx context.Context, u Update, category, manufacturer string) error {
	names := h.Texts.Category(category)
	models := h.Catalog.Models(category, manufacturer)
	tmpl := h.Texts.Catalog.ChooseModel
	if len(models) == 0 {
		tmpl = h.Texts.Catalog.NoModels
	}
	if err := h.Msg.EditText(ctx, u.ChatID, u.MessageID, Message{
		Text:   texts.Format(tmpl, "one_of", names.OneOf, "manufacturer", manufacturer),
		Inline: ModelsKeyboard(h.Texts, category, models),
	}); err != nil {
		return err
	}
	return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
}

// onModel sends a new product card at the first variant.
func (h *Handler) onModel(ctx context.Context, u Update, model string) error {
	sel, err := h.Selection.Open(u.UserID, model)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		if _, err := h.Msg.Send(ctx, u.ChatID, Message{
			Text:   h.Texts.Catalog.Unavailable,
			Inline: OutOfStockKeyboard(h.Texts),
		}); err != nil {
			return err
		}
	case err != nil:
		return err
	default:
		caption, kb := CardCaption(h.Texts, sel), CardKeyboard(h.Texts, sel)
		if photo := sel.Variant.Product.Photo; photo != "" {
			_, err = h.Msg.SendMedia(ctx, u.ChatID, domain.MediaPhoto, photo, caption, kb)
		} else {
			_, err = h.Msg.Send(ctx, u.ChatID, Message{Text: caption, Inline: kb})
		}
		if err != nil {
			return err
		}
	}
	return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
}

// onCycle moves the colour or memory cursor and redraws the card in place.
func (h *Handler) onCycle(ctx context.Context, u Update, a callback.Action) error {
	sel, err := h.Selection.Cycle(u.UserID, a.Model, a.Axis, a.Dir)
	switch {
	case errors.Is(err, domain.ErrSingleOption):
		msg := h.Texts.Catalog.OnlyColor
		if a.Axis == domain.AxisMemory {
			msg = h.Texts.Catalog.OnlyMemory
		}
		return h.Msg.AnswerCallback(ctx, u.CallbackID, msg, true)
	case errors.Is(err, domain.ErrNotFound):
		return h.Msg.AnswerCallback(ctx, u.CallbackID, h.Texts.Catalog.Unavailable, true)
	case err != nil:
		return err
	}

	caption, kb := CardCaption(h.Texts, sel), CardKeyboard(h.Texts, sel)
	if photo := sel.Variant.Product.Photo; photo != "" {
		err = h.Msg.EditPhoto(ctx, u.ChatID, u.MessageID, photo, caption, kb)
	} else {
		err = h.Msg.EditText(ctx, u.ChatID, u.MessageID, Message{Text: caption, Inline: kb})
	}
	if err != nil {
		return err
	}
	return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
}

func (h *Handler) onAddToCart(ctx context.Context, u Update, productID int64) error {
	err := h.Cart.Add(u.UserID, productID)
	switch {
	case errors.Is(err, domain.ErrCartFull):
		applog.Info(nil, "cart.add.full", fields(u, "product_id", productID))
		return h.Msg.AnswerCallback(ctx, u.CallbackID, h.Texts.Cart.Full, true)
	case errors.Is(err, domain.ErrNotFound):
		return h.Msg.AnswerCallback(ctx, u.CallbackID, h.Texts.Catalog.Unavailable, true)
	case err != nil:
		_ = h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
		return err
	}
	applog.Info(nil, "cart.add", fields(u, "product_id", productID))
	return h.Msg.AnswerCallback(ctx, u.CallbackID, h.Texts.Cart.Added, true)
}

// ownsCart rejects buttons carrying someone else's user id, e.g. from a
// forwarded cart message.
func (h *Handler) ownsCart(ctx context.Context, u Update, a callback.Action) (bool, error) {
	if a.UserID == u.UserID {
		return true, nil
	}
	applog.Security(nil, "cart.foreign_button", fields(u, "token_user_id", a.UserID, "callback_kind", string(a.Kind)))
	return false, h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
}

func (h *Handler) onDeleteFromCart(ctx context.Context, u Update, a callback.Action) error {
	if ok, err := h.ownsCart(ctx, u, a); !ok {
		return err
	}
	n, err := h.Cart.Remove(u.UserID, a.ProductID)
	if err != nil {
		_ = h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
		return err
	}
	applog.Info(nil, "cart.remove", fields(u, "product_id", a.ProductID, "removed", n))
	if err := h.Msg.AnswerCallback(ctx, u.CallbackID, h.Texts.Cart.Removed, true); err != nil {
		return err
	}
	return h.editCart(ctx, u, 0)
}

func (h *Handler) onCartPage(ctx context.Context, u Update, a callback.Action) error {
	if ok, err := h.ownsCart(ctx, u, a); !ok {
		return err
	}
	if err := h.editCart(ctx, u, a.Page); err != nil {
		return err
	}
	return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
}

// onBuy notifies the admin, records the request and points the customer to
// the manager.
func (h *Handler) onBuy(ctx context.Context, u Update, productID int64) error {
	p, reqID, err := h.Orders.Request(u.UserID, u.Username, productID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return h.Msg.AnswerCallback(ctx, u.CallbackID, h.Texts.Catalog.Unavailable, true)
	case err != nil:
		// the admin still hears about it
		applog.Error(nil, "order.request.store_fail", err, fields(u, "product_id", productID))
	default:
		applog.Audit(nil, "order.request", fields(u, "product_id", productID, "request_id", reqID))
	}
	if h.AdminID != 0 {
		if _, err := h.Msg.Send(ctx, h.AdminID, Message{Text: OrderNotice(h.Texts, u.Username, p), HTML: true}); err != nil {
			applog.Error(nil, "order.notify_admin.fail", err, fields(u, "product_id", productID))
		}
	}
	if _, err := h.Msg.Send(ctx, u.ChatID, Message{
		Text: texts.Format(h.Texts.Order.ContactManager, "manager", h.Manager),
	}); err != nil {
		return err
	}
	return h.Msg.AnswerCallback(ctx, u.CallbackID, "", false)
}
