package telegram

import (
	"context"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"techstore/internal/bot"
	"techstore/internal/domain"
)

type fakeAPI struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func TestSend_HTMLWithInlineKeyboard(t *testing.T) {
	api := &fakeAPI{}
	c := &Client{API: api}
	id, err := c.Send(context.Background(), 5, bot.Message{
		Text: "<b>hi</b>", HTML: true,
		Inline: bot.Keyboard{{{Text: "1", Data: "1|d|5|44"}}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	cfg := api.sent[0].(tgbotapi.MessageConfig)
	assert.Equal(t, tgbotapi.ModeHTML, cfg.ParseMode)
	mk := cfg.ReplyMarkup.(*tgbotapi.InlineKeyboardMarkup)
	require.NotNil(t, mk.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, "1|d|5|44", *mk.InlineKeyboard[0][0].CallbackData)
}

func TestSend_MenuBecomesReplyKeyboard(t *testing.T) {
	api := &fakeAPI{}
	c := &Client{API: api}
	_, err := c.Send(context.Background(), 5, bot.Message{Text: "hi", Menu: bot.Menu{{"Товары", "Сайт"}}})
	require.NoError(t, err)
	mk := api.sent[0].(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.Equal(t, "Товары", mk.Keyboard[0][0].Text)
	assert.True(t, mk.ResizeKeyboard)
}

func TestSendMedia_Kinds(t *testing.T) {
	api := &fakeAPI{}
	c := &Client{API: api}
	ctx := context.Background()
	_, err := c.SendMedia(ctx, 1, domain.MediaPhoto, "p", "cap", nil)
	require.NoError(t, err)
	_, err = c.SendMedia(ctx, 1, domain.MediaVideo, "v", "", nil)
	require.NoError(t, err)
	_, err = c.SendMedia(ctx, 1, domain.MediaDocument, "d", "", nil)
	require.NoError(t, err)
	_, err = c.SendMedia(ctx, 1, domain.MediaText, "x", "", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	require.Len(t, api.sent, 3)
	photo := api.sent[0].(tgbotapi.PhotoConfig)
	assert.Equal(t, "cap", photo.Caption)
	assert.Nil(t, photo.ReplyMarkup)
	assert.IsType(t, tgbotapi.VideoConfig{}, api.sent[1])
	assert.IsType(t, tgbotapi.DocumentConfig{}, api.sent[2])
}

func TestEditsAndCallbacks(t *testing.T) {
	api := &fakeAPI{}
	c := &Client{API: api}
	ctx := context.Background()
	kb := bot.Keyboard{{{Text: "➡️", Data: "1|y|c|n|15"}}}

	require.NoError(t, c.EditPhoto(ctx, 1, 9, "file", "caption", kb))
	media := api.sent[0].(tgbotapi.EditMessageMediaConfig)
	assert.Equal(t, 9, media.MessageID)
	assert.Equal(t, "caption", media.Media.(tgbotapi.InputMediaPhoto).Caption)

	require.NoError(t, c.EditText(ctx, 1, 9, bot.Message{Text: "cart"}))
	assert.Nil(t, api.sent[1].(tgbotapi.EditMessageTextConfig).ReplyMarkup)

	require.NoError(t, c.EditKeyboard(ctx, 1, 9, nil))
	require.NoError(t, c.Delete(ctx, 1, 9))
	require.NoError(t, c.AnswerCallback(ctx, "cb", "Товар добавлен", true))
	cb := api.requested[1].(tgbotapi.CallbackConfig)
	assert.True(t, cb.ShowAlert)
	assert.Equal(t, "cb", cb.CallbackQueryID)
}

func TestCancelledContextSkipsCall(t *testing.T) {
	api := &fakeAPI{}
	c := &Client{API: api}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Send(ctx, 1, bot.Message{Text: "x"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, api.sent)
}

func TestToUpdate(t *testing.T) {
	from := &tgbotapi.User{ID: 42, UserName: "ann", FirstName: "Ann"}
	chat := &tgbotapi.Chat{ID: 42}

	u, ok := ToUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		MessageID: 3, From: from, Chat: chat, Text: "/start",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}})
	require.True(t, ok)
	assert.Equal(t, "start", u.Command)
	assert.Equal(t, int64(42), u.UserID)
	assert.NotEmpty(t, u.ID)

	u, ok = ToUpdate(tgbotapi.Update{Message: &tgbotapi.Message{
		From: from, Chat: chat,
		Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}},
	}})
	require.True(t, ok)
	assert.Equal(t, &bot.Media{Kind: domain.MediaPhoto, FileID: "large"}, u.Media)

	u, ok = ToUpdate(tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID: "cb", From: from, Data: "buy_44",
		Message: &tgbotapi.Message{MessageID: 8, Chat: chat},
	}})
	require.True(t, ok)
	assert.True(t, u.IsCallback())
	assert.Equal(t, 8, u.MessageID)
	assert.Equal(t, "buy_44", u.Data)

	_, ok = ToUpdate(tgbotapi.Update{EditedMessage: &tgbotapi.Message{From: from, Chat: chat}})
	assert.False(t, ok)
}

func TestDispatch_StopsOnContextAndLogsErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	ch := make(chan tgbotapi.Update, 2)
	from := &tgbotapi.User{ID: 1}
	ch <- tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{From: from, Chat: &tgbotapi.Chat{ID: 1}, Text: "a"}}
	ch <- tgbotapi.Update{UpdateID: 2}

	var mu sync.Mutex
	var seen []string
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() {
		done <- Dispatch(ctx, ch, func(_ context.Context, u bot.Update) error {
			mu.Lock()
			defer mu.Unlock()
			seen = append(seen, u.Text)
			return assert.AnError
		})
	}()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1 && len(ch) == 0
	}, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
	assert.Equal(t, []string{"a"}, seen)
}
