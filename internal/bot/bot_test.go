package bot_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"techstore/internal/bot"
	"techstore/internal/callback"
	"techstore/internal/catalog"
	"techstore/internal/domain"
	"techstore/internal/repos"
	"techstore/internal/services"
	"techstore/internal/texts"
)

const (
	adminID    = int64(1338143348)
	customerID = int64(501)
)

type call struct {
	Op        string
	ChatID    int64
	MessageID int
	Text      string
	HTML      bool
	Inline    bot.Keyboard
	Menu      bot.Menu
	Kind      domain.MediaKind
	File      string
	Alert     bool
}

// fakeMessenger records every effect instead of talking to a chat service.
type fakeMessenger struct {
	mu     sync.Mutex
	calls  []call
	fail   map[int64]bool
	nextID int
}

func (f *fakeMessenger) record(c call) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[c.ChatID] {
		return 0, errors.New("Forbidden: bot was blocked by the user")
	}
	f.nextID++
	f.calls = append(f.calls, c)
	return f.nextID, nil
}

func (f *fakeMessenger) Send(_ context.Context, chatID int64, m bot.Message) (int, error) {
	return f.record(call{Op: "send", ChatID: chatID, Text: m.Text, HTML: m.HTML, Inline: m.Inline, Menu: m.Menu})
}

func (f *fakeMessenger) SendMedia(_ context.Context, chatID int64, kind domain.MediaKind, fileID, caption string, kb bot.Keyboard) (int, error) {
	return f.record(call{Op: "media", ChatID: chatID, Kind: kind, File: fileID, Text: caption, Inline: kb})
}

func (f *fakeMessenger) EditText(_ context.Context, chatID int64, messageID int, m bot.Message) error {
	_, err := f.record(call{Op: "edit_text", ChatID: chatID, MessageID: messageID, Text: m.Text, HTML: m.HTML, Inline: m.Inline})
	return err
}

func (f *fakeMessenger) EditPhoto(_ context.Context, chatID int64, messageID int, photo, caption string, kb bot.Keyboard) error {
	_, err := f.record(call{Op: "edit_photo", ChatID: chatID, MessageID: messageID, File: photo, Text: caption, Inline: kb})
	return err
}

func (f *fakeMessenger) EditKeyboard(_ context.Context, chatID int64, messageID int, kb bot.Keyboard) error {
	_, err := f.record(call{Op: "edit_keyboard", ChatID: chatID, MessageID: messageID, Inline: kb})
	return err
}

func (f *fakeMessenger) Delete(_ context.Context, chatID int64, messageID int) error {
	_, err := f.record(call{Op: "delete", ChatID: chatID, MessageID: messageID})
	return err
}

func (f *fakeMessenger) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	_, err := f.record(call{Op: "answer", Text: text, Alert: alert})
	return err
}

// take returns and clears the recorded calls.
func (f *fakeMessenger) take() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.calls
	f.calls = nil
	return out
}

func only(t *testing.T, calls []call, op string) call {
	t.Helper()
	var found []call
	for _, c := range calls {
		if c.Op == op {
			found = append(found, c)
		}
	}
	require.Len(t, found, 1, "calls: %+v", calls)
	return found[0]
}

func data(t *testing.T, a callback.Action) string {
	t.Helper()
	s, err := callback.Encode(a)
	require.NoError(t, err)
	return s
}

func hasButton(kb bot.Keyboard, d string) bool {
	for _, row := range kb {
		for _, b := range row {
			if b.Data == d {
				return true
			}
		}
	}
	return false
}

func phone(id int64, model, color, memory string, stock int) domain.Product {
	return domain.Product{
		ID: id, Category: "СМАРТФОНЫ", Manufacturer: "Apple", ShortName: model,
		Name: "Смартфон Apple iPhone " + model + " " + color, Color: color, Memory: memory,
		Stock: stock, Price: decimal.NewFromFloat(99990.5), Photo: "photo-" + model + color,
	}
}

type env struct {
	h     *bot.Handler
	msg   *fakeMessenger
	carts *services.CartService
	reqs  *repos.RequestRepo
	users *repos.UserRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ps := []domain.Product{
		phone(1, "15 Pro", "White", "128Gb", 2),
		phone(2, "15 Pro", "White", "256Gb", 1),
		phone(3, "15 Pro", "Black", "256Gb", 1),
		phone(4, "SE", "Red", "64Gb", 1),
		phone(5, "Old", "Gray", "32Gb", 0),
	}
	for id := int64(10); id < 40; id++ {
		p := phone(id, "Case", "Clear", "", 5)
		p.Category, p.Manufacturer, p.Photo = "АКСЕССУАРЫ", "Spigen", ""
		ps = append(ps, p)
	}
	cat := catalog.New(ps)

	users := repos.NewUserRepo(db)
	reqs := repos.NewRequestRepo(db)
	msg := &fakeMessenger{}
	carts := services.NewCartService(repos.NewCartRepo(db), users, cat)
	h := &bot.Handler{
		Msg:       msg,
		Texts:     texts.Default(),
		Catalog:   cat,
		Users:     users,
		Cart:      carts,
		Selection: services.NewSelectionStore(cat, 100, 0),
		Orders:    services.NewOrderService(cat, reqs),
		AdminID:   adminID,
		Manager:   "@Abu_Alonse",
	}
	h.Broadcast = services.NewBroadcastService(users, bot.BroadcastSender{Msg: msg}, 0)
	h.Broadcast.Done = h.BroadcastDone
	t.Cleanup(h.Broadcast.Stop)
	return &env{h: h, msg: msg, carts: carts, reqs: reqs, users: users}
}

func (e *env) press(t *testing.T, userID int64, d string) []call {
	t.Helper()
	require.NoError(t, e.h.Handle(context.Background(), bot.Update{
		ID: "u", UserID: userID, ChatID: userID, MessageID: 77, Username: "ann",
		CallbackID: "cb", Data: d,
	}))
	return e.msg.take()
}

func (e *env) say(t *testing.T, userID int64, text string) []call {
	t.Helper()
	require.NoError(t, e.h.Handle(context.Background(), bot.Update{
		ID: "u", UserID: userID, ChatID: userID, Username: "ann", Text: text,
	}))
	return e.msg.take()
}

func (e *env) command(t *testing.T, userID int64, cmd string) []call {
	t.Helper()
	require.NoError(t, e.h.Handle(context.Background(), bot.Update{
		ID: "u", UserID: userID, ChatID: userID, Username: "ann", FirstName: "Ann", Command: cmd,
	}))
	return e.msg.take()
}
