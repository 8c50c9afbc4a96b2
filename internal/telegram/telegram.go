// Package telegram adapts the Telegram Bot API to bot.Messenger and feeds
// long-polled updates to a handler.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"techstore/internal/bot"
	"techstore/internal/domain"
	applog "techstore/internal/log"
)

// API is the part of *tgbotapi.BotAPI the client uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client implements bot.Messenger.
type Client struct {
	API API
}

func New(token string) (*Client, *tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, nil, fmt.Errorf("telegram: %w", err)
	}
	applog.Info(nil, "telegram.connect", map[string]any{"bot": api.Self.UserName})
	return &Client{API: api}, api, nil
}

func inlineMarkup(kb bot.Keyboard) *tgbotapi.InlineKeyboardMarkup {
	if len(kb) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, r := range kb {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, row)
	}
	m := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &m
}

func replyMarkup(menu bot.Menu) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(menu))
	for _, r := range menu {
		row := make([]tgbotapi.KeyboardButton, 0, len(r))
		for _, text := range r {
			row = append(row, tgbotapi.NewKeyboardButton(text))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewReplyKeyboard(rows...)
}

func (c *Client) Send(ctx context.Context, chatID int64, m bot.Message) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	cfg := tgbotapi.NewMessage(chatID, m.Text)
	if m.HTML {
		cfg.ParseMode = tgbotapi.ModeHTML
	}
	switch {
	case len(m.Inline) > 0:
		cfg.ReplyMarkup = inlineMarkup(m.Inline)
	case len(m.Menu) > 0:
		cfg.ReplyMarkup = replyMarkup(m.Menu)
	}
	sent, err := c.API.Send(cfg)
	return sent.MessageID, err
}

func (c *Client) SendMedia(ctx context.Context, chatID int64, kind domain.MediaKind, fileID, caption string, kb bot.Keyboard) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var markup any
	if mk := inlineMarkup(kb); mk != nil {
		markup = mk
	}
	file := tgbotapi.FileID(fileID)
	var cfg tgbotapi.Chattable
	switch kind {
	case domain.MediaPhoto:
		p := tgbotapi.NewPhoto(chatID, file)
		p.Caption, p.ReplyMarkup = caption, markup
		cfg = p
	case domain.MediaVideo:
		v := tgbotapi.NewVideo(chatID, file)
		v.Caption, v.ReplyMarkup = caption, markup
		cfg = v
	case domain.MediaDocument:
		d := tgbotapi.NewDocument(chatID, file)
		d.Caption, d.ReplyMarkup = caption, markup
		cfg = d
	default:
		return 0, fmt.Errorf("%w: media kind %q", domain.ErrInvalidInput, kind)
	}
	sent, err := c.API.Send(cfg)
	return sent.MessageID, err
}

func (c *Client) EditText(ctx context.Context, chatID int64, messageID int, m bot.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewEditMessageText(chatID, messageID, m.Text)
	if m.HTML {
		cfg.ParseMode = tgbotapi.ModeHTML
	}
	cfg.ReplyMarkup = inlineMarkup(m.Inline)
	_, err := c.API.Send(cfg)
	return err
}

func (c *Client) EditPhoto(ctx context.Context, chatID int64, messageID int, photo, caption string, kb bot.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	media := tgbotapi.NewInputMediaPhoto(tgbotapi.FileID(photo))
	media.Caption = caption
	cfg := tgbotapi.EditMessageMediaConfig{
		BaseEdit: tgbotapi.BaseEdit{ChatID: chatID, MessageID: messageID, ReplyMarkup: inlineMarkup(kb)},
		Media:    media,
	}
	_, err := c.API.Send(cfg)
	return err
}

func (c *Client) EditKeyboard(ctx context.Context, chatID int64, messageID int, kb bot.Keyboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	markup := inlineMarkup(kb)
	if markup == nil {
		markup = &tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	}
	_, err := c.API.Send(tgbotapi.NewEditMessageReplyMarkup(chatID, messageID, *markup))
	return err
}

func (c *Client) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := c.API.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cfg := tgbotapi.NewCallback(callbackID, text)
	if alert {
		cfg = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	_, err := c.API.Request(cfg)
	return err
}

// ToUpdate converts an API update. Updates the bot does not handle, such as
// edited messages, report false.
func ToUpdate(in tgbotapi.Update) (bot.Update, bool) {
	out := bot.Update{ID: uuid.NewString()}
	switch {
	case in.CallbackQuery != nil:
		q := in.CallbackQuery
		if q.From == nil {
			return out, false
		}
		setUser(&out, q.From)
		out.CallbackID, out.Data = q.ID, q.Data
		if q.Message != nil {
			out.ChatID, out.MessageID = q.Message.Chat.ID, q.Message.MessageID
		}
		return out, true

	case in.Message != nil:
		m := in.Message
		if m.From == nil || m.Chat == nil {
			return out, false
		}
		setUser(&out, m.From)
		out.ChatID, out.MessageID = m.Chat.ID, m.MessageID
		out.Text = m.Text
		if m.IsCommand() {
			out.Command = m.Command()
		}
		switch {
		case len(m.Photo) > 0:
			// the last size is the largest
			out.Media = &bot.Media{Kind: domain.MediaPhoto, FileID: m.Photo[len(m.Photo)-1].FileID}
		case m.Video != nil:
			out.Media = &bot.Media{Kind: domain.MediaVideo, FileID: m.Video.FileID}
		case m.Document != nil:
			out.Media = &bot.Media{Kind: domain.MediaDocument, FileID: m.Document.FileID}
		}
		return out, true
	}
	return out, false
}

func setUser(u *bot.Update, from *tgbotapi.User) {
	u.UserID = from.ID
	u.Username, u.FirstName, u.LastName = from.UserName, from.FirstName, from.LastName
}

// HandlerFunc processes one update.
type HandlerFunc func(ctx context.Context, u bot.Update) error

// Poll long-polls for updates and handles them one at a time until ctx is
// done.
func Poll(ctx context.Context, api *tgbotapi.BotAPI, timeout int, handle HandlerFunc) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = timeout
	updates := api.GetUpdatesChan(cfg)
	defer api.StopReceivingUpdates()
	return Dispatch(ctx, updates, handle)
}

// Dispatch feeds updates from ch to handle until ctx is done or ch closes.
// Handler errors are logged, not returned.
func Dispatch(ctx context.Context, ch <-chan tgbotapi.Update, handle HandlerFunc) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case in, ok := <-ch:
			if !ok {
				return nil
			}
			u, ok := ToUpdate(in)
			if !ok {
				continue
			}
			if err := handle(ctx, u); err != nil {
				applog.Error(nil, "bot.update.fail", err, map[string]any{
					"update_id": u.ID, "user_id": u.UserID, "tg_update_id": in.UpdateID,
				})
			}
		}
	}
}
