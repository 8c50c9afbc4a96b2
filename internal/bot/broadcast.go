package bot

import (
	"context"
	"errors"
	"strconv"

	"techstore/internal/callback"
	"techstore/internal/domain"
	applog "techstore/internal/log"
	"techstore/internal/services"
	"techstore/internal/texts"
	"techstore/internal/validate"
)

// BroadcastSender delivers broadcast drafts through a Messenger.
type BroadcastSender struct {
	Msg Messenger
}

func (s BroadcastSender) Deliver(ctx context.Context, chatID int64, d services.Draft) error {
	if d.Kind == domain.MediaText {
		_, err := s.Msg.Send(ctx, chatID, Message{Text: d.Media})
		return err
	}
	_, err := s.Msg.SendMedia(ctx, chatID, d.Kind, d.Media, d.Caption, nil)
	return err
}

// BroadcastDone tells the admin how a broadcast went. It is wired as
// BroadcastService.Done for scheduled runs.
func (h *Handler) BroadcastDone(adminID int64, r services.Report, runErr error) {
	if _, err := h.Msg.Send(context.Background(), adminID, Message{Text: h.doneText(r, runErr)}); err != nil {
		applog.Error(nil, "broadcast.report.fail", err, map[string]any{"job_id": r.JobID})
	}
}

func (h *Handler) doneText(r services.Report, err error) string {
	if err != nil {
		return h.Texts.Broadcast.Failed
	}
	return texts.Format(h.Texts.Broadcast.Done, "sent", strconv.Itoa(r.Sent), "total", strconv.Itoa(r.Total))
}

func (h *Handler) reply(ctx context.Context, u Update, text string, kb Keyboard) error {
	_, err := h.Msg.Send(ctx, u.ChatID, Message{Text: text, Inline: kb})
	return err
}

func (h *Handler) onBroadcast(ctx context.Context, u Update) error {
	if !h.isAdmin(u.UserID) {
		applog.Security(nil, "broadcast.forbidden", fields(u))
		return h.reply(ctx, u, h.Texts.Broadcast.Forbidden, nil)
	}
	h.Broadcast.Begin(u.UserID)
	applog.Audit(nil, "broadcast.begin", fields(u))
	return h.reply(ctx, u, h.Texts.Broadcast.ChooseKind, MediaKindKeyboard(h.Texts))
}

func (h *Handler) onCancel(ctx context.Context, u Update) error {
	if !h.isAdmin(u.UserID) {
		return nil
	}
	if h.Broadcast.Cancel(u.UserID) {
		applog.Audit(nil, "broadcast.cancel", fields(u))
		return h.reply(ctx, u, h.Texts.Broadcast.Cancelled, nil)
	}
	return h.reply(ctx, u, h.Texts.Broadcast.NothingToCancel, nil)
}

// wizardWaitsForInput reports whether the admin's next message belongs to
// the broadcast wizard rather than the menu.
func (h *Handler) wizardWaitsForInput(adminID int64) bool {
	switch h.Broadcast.Step(adminID) {
	case services.StepMedia, services.StepCaption, services.StepCaptionText, services.StepTime:
		return true
	}
	return false
}

func (h *Handler) onWizardInput(ctx context.Context, u Update) error {
	t := h.Texts.Broadcast
	switch h.Broadcast.Step(u.UserID) {
	case services.StepMedia:
		kind, ref := domain.MediaText, u.Text
		if u.Media != nil {
			kind, ref = u.Media.Kind, u.Media.FileID
		}
		if err := h.Broadcast.SetMedia(u.UserID, kind, ref); err != nil {
			return h.wizardError(ctx, u, err, t.WrongMedia)
		}
		return h.reply(ctx, u, t.AskCaption, CaptionKeyboard(h.Texts))

	case services.StepCaption, services.StepCaptionText:
		if err := h.Broadcast.SetCaption(u.UserID, u.Text); err != nil {
			return h.wizardError(ctx, u, err, t.CaptionTooLong)
		}
		return h.reply(ctx, u, t.When, WhenKeyboard(h.Texts))

	case services.StepTime:
		job, err := h.Broadcast.Schedule(u.UserID, u.Text)
		if errors.Is(err, domain.ErrPastTime) {
			return h.reply(ctx, u, t.PastTime, nil)
		}
		if err != nil {
			return h.wizardError(ctx, u, err, t.BadTime)
		}
		return h.reply(ctx, u, texts.Format(t.Scheduled, "at", job.At.Format(validate.ScheduleLayout)), nil)
	}
	return nil
}

// wizardError re-prompts on bad input and passes anything else up.
func (h *Handler) wizardError(ctx context.Context, u Update, err error, prompt string) error {
	if errors.Is(err, domain.ErrInvalidInput) && prompt != "" {
		return h.reply(ctx, u, prompt, nil)
	}
	if errors.Is(err, domain.ErrWrongStep) || errors.Is(err, domain.ErrInvalidInput) {
		return nil
	}
	return err
}

func (h *Handler) onWizardButton(ctx context.Context, u Update, a callback.Action) error {
	t := h.Texts.Broadcast
	if !h.isAdmin(u.UserID) {
		applog.Security(nil, "broadcast.forbidden", fields(u, "callback_kind", string(a.Kind)))
		return h.Msg.AnswerCallback(ctx, u.CallbackID, t.Forbidden, true)
	}
	if err := h.Msg.AnswerCallback(ctx, u.CallbackID, "", false); err != nil {
		return err
	}
	// each wizard prompt is answered once
	if err := h.Msg.EditKeyboard(ctx, u.ChatID, u.MessageID, nil); err != nil {
		applog.Warn(nil, "broadcast.keyboard.clear.fail", err, fields(u))
	}

	switch a.Kind {
	case callback.MediaType:
		if err := h.Broadcast.ChooseKind(u.UserID, a.Media); err != nil {
			return h.wizardError(ctx, u, err, t.ChooseKind)
		}
		return h.reply(ctx, u, t.SendMedia, nil)

	case callback.CaptionChoice:
		if a.Yes {
			if err := h.Broadcast.WantCaption(u.UserID); err != nil {
				return h.wizardError(ctx, u, err, "")
			}
			return h.reply(ctx, u, t.EnterCaption, nil)
		}
		if err := h.Broadcast.SkipCaption(u.UserID); err != nil {
			return h.wizardError(ctx, u, err, "")
		}
		return h.reply(ctx, u, t.When, WhenKeyboard(h.Texts))

	case callback.WhenChoice:
		if a.Yes {
			r, err := h.Broadcast.SendNow(ctx, u.UserID)
			if errors.Is(err, domain.ErrStorage) {
				return errors.Join(err, h.reply(ctx, u, h.doneText(r, err), nil))
			}
			if err != nil {
				return h.wizardError(ctx, u, err, "")
			}
			return h.reply(ctx, u, h.doneText(r, nil), nil)
		}
		if err := h.Broadcast.AskSchedule(u.UserID); err != nil {
			return h.wizardError(ctx, u, err, "")
		}
		return h.reply(ctx, u, t.EnterTime, nil)
	}
	return nil
}
