package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"techstore/internal/domain"
	applog "techstore/internal/log"
	"techstore/internal/validate"
)

// Step is the position of an admin in the broadcast wizard.
type Step int

const (
	StepIdle Step = iota
	StepKind
	StepMedia
	StepCaption
	StepCaptionText
	StepWhen
	StepTime
)

// Draft is the broadcast being assembled. Media holds the text body for
// MediaText and a file reference otherwise.
type Draft struct {
	Kind    domain.MediaKind
	Media   string
	Caption string
}

// Recipients lists broadcast targets; *repos.UserRepo satisfies it.
type Recipients interface {
	IDs() ([]int64, error)
}

// Sender delivers one broadcast to one chat.
type Sender interface {
	Deliver(ctx context.Context, chatID int64, d Draft) error
}

type Report struct {
	JobID  string
	Total  int
	Sent   int
	Failed int
}

// Job is a scheduled broadcast.
type Job struct {
	ID    string
	At    time.Time
	Delay time.Duration
}

type wizard struct {
	step  Step
	draft Draft
}

// BroadcastService runs the admin broadcast wizard and delivers broadcasts,
// immediately or from a timer.
type BroadcastService struct {
	Recipients Recipients
	Sender     Sender
	Limiter    *rate.Limiter
	Location   *time.Location
	Now        func() time.Time
	// AfterFunc arms a timer and returns its stop function.
	AfterFunc func(d time.Duration, f func()) func() bool
	// Done is called with the outcome of every scheduled run; err is set
	// when the recipients could not be read.
	Done func(adminID int64, r Report, err error)

	mu      sync.Mutex
	wizards map[int64]*wizard
	jobs    map[string]func() bool
	wg      sync.WaitGroup
}

// NewBroadcastService paces delivery at perSecond messages (burst 1); zero
// or less disables pacing.
func NewBroadcastService(recipients Recipients, sender Sender, perSecond float64) *BroadcastService {
	lim := rate.NewLimiter(rate.Inf, 1)
	if perSecond > 0 {
		lim = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
	return &BroadcastService{
		Recipients: recipients,
		Sender:     sender,
		Limiter:    lim,
		Location:   time.Local,
		Now:        time.Now,
		AfterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
		wizards: map[int64]*wizard{},
		jobs:    map[string]func() bool{},
	}
}

// Begin (re)starts the wizard for adminID.
func (s *BroadcastService) Begin(adminID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wizards[adminID] = &wizard{step: StepKind}
}

// Cancel drops the wizard; it reports whether one was active.
func (s *BroadcastService) Cancel(adminID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.wizards[adminID]
	delete(s.wizards, adminID)
	return ok
}

func (s *BroadcastService) Step(adminID int64) Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wizards[adminID]; ok {
		return w.step
	}
	return StepIdle
}

func (s *BroadcastService) Draft(adminID int64) (Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[adminID]
	if !ok {
		return Draft{}, false
	}
	return w.draft, true
}

// advance runs fn on the wizard when it is in one of the given steps.
func (s *BroadcastService) advance(adminID int64, fn func(w *wizard) error, steps ...Step) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[adminID]
	if !ok {
		return domain.ErrWrongStep
	}
	for _, st := range steps {
		if w.step == st {
			return fn(w)
		}
	}
	return domain.ErrWrongStep
}

func (s *BroadcastService) ChooseKind(adminID int64, kind domain.MediaKind) error {
	return s.advance(adminID, func(w *wizard) error {
		if !kind.Valid() {
			return domain.ErrInvalidInput
		}
		w.draft = Draft{Kind: kind}
		w.step = StepMedia
		return nil
	}, StepKind)
}

// SetMedia stores the payload. Its kind must match the chosen kind; a
// mismatch keeps the wizard waiting for media.
func (s *BroadcastService) SetMedia(adminID int64, kind domain.MediaKind, ref string) error {
	return s.advance(adminID, func(w *wizard) error {
		if kind != w.draft.Kind {
			return domain.ErrInvalidInput
		}
		if kind == domain.MediaText {
			text, ok := validate.Text(ref)
			if !ok {
				return domain.ErrInvalidInput
			}
			ref = text
		} else if strings.TrimSpace(ref) == "" {
			return domain.ErrInvalidInput
		}
		w.draft.Media = ref
		w.step = StepCaption
		return nil
	}, StepMedia)
}

func (s *BroadcastService) WantCaption(adminID int64) error {
	return s.advance(adminID, func(w *wizard) error {
		w.step = StepCaptionText
		return nil
	}, StepCaption)
}

func (s *BroadcastService) SkipCaption(adminID int64) error {
	return s.advance(adminID, func(w *wizard) error {
		w.draft.Caption = ""
		w.step = StepWhen
		return nil
	}, StepCaption, StepCaptionText)
}

// SetCaption accepts caption text; "stop" means no caption.
func (s *BroadcastService) SetCaption(adminID int64, text string) error {
	return s.advance(adminID, func(w *wizard) error {
		caption, ok := validate.Caption(text)
		if !ok {
			return domain.ErrInvalidInput
		}
		if strings.EqualFold(caption, "stop") {
			caption = ""
		}
		w.draft.Caption = caption
		w.step = StepWhen
		return nil
	}, StepCaption, StepCaptionText)
}

// AskSchedule moves the wizard to waiting for a time.
func (s *BroadcastService) AskSchedule(adminID int64) error {
	return s.advance(adminID, func(w *wizard) error {
		w.step = StepTime
		return nil
	}, StepWhen)
}

// take ends the wizard and hands back its draft.
func (s *BroadcastService) take(adminID int64, step Step) (Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wizards[adminID]
	if !ok || w.step != step {
		return Draft{}, domain.ErrWrongStep
	}
	delete(s.wizards, adminID)
	return w.draft, nil
}

// SendNow finishes the wizard and delivers the draft to every recipient.
func (s *BroadcastService) SendNow(ctx context.Context, adminID int64) (Report, error) {
	d, err := s.take(adminID, StepWhen)
	if err != nil {
		return Report{}, err
	}
	return s.Deliver(ctx, uuid.NewString(), d)
}

// Schedule parses input as a local "YYYY-MM-DD HH:MM" time and arms a timer
// for the draft. Malformed or past times return ErrInvalidInput (ErrPastTime
// for the latter) and keep the wizard where it is.
func (s *BroadcastService) Schedule(adminID int64, input string) (Job, error) {
	if s.Step(adminID) != StepTime {
		return Job{}, domain.ErrWrongStep
	}
	at, ok := validate.ScheduleTime(input, s.Location)
	if !ok {
		return Job{}, domain.ErrInvalidInput
	}
	delay := at.Sub(s.Now())
	if delay < 0 {
		return Job{}, domain.ErrPastTime
	}
	d, err := s.take(adminID, StepTime)
	if err != nil {
		return Job{}, err
	}

	job := Job{ID: uuid.NewString(), At: at, Delay: delay}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wg.Add(1)
	s.jobs[job.ID] = s.AfterFunc(delay, func() {
		defer s.wg.Done()
		s.mu.Lock()
		delete(s.jobs, job.ID)
		s.mu.Unlock()
		r, err := s.Deliver(context.Background(), job.ID, d)
		if s.Done != nil {
			s.Done(adminID, r, err)
		}
	})
	applog.Audit(nil, "broadcast.schedule", map[string]any{
		"job_id": job.ID, "admin_id": adminID, "at": at.Format(time.RFC3339), "media_kind": string(d.Kind),
	})
	return job, nil
}

// Pending reports how many scheduled broadcasts have not fired yet.
func (s *BroadcastService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Stop disarms pending timers and waits for running deliveries.
func (s *BroadcastService) Stop() {
	s.mu.Lock()
	for id, stop := range s.jobs {
		if stop() {
			s.wg.Done()
		}
		delete(s.jobs, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

// Deliver sends d to every recipient. A failed recipient is logged and
// skipped; a cancelled context counts the rest as failed. Failing to list
// recipients aborts the run with ErrStorage.
func (s *BroadcastService) Deliver(ctx context.Context, jobID string, d Draft) (Report, error) {
	r := Report{JobID: jobID}
	ids, err := s.Recipients.IDs()
	if err != nil {
		applog.Error(nil, "broadcast.recipients.fail", err, map[string]any{"job_id": jobID})
		return r, domain.Storage("list recipients", err)
	}
	r.Total = len(ids)
	for i, id := range ids {
		if err := s.Limiter.Wait(ctx); err != nil {
			r.Failed += len(ids) - i
			applog.Warn(nil, "broadcast.abort", err, map[string]any{"job_id": jobID, "remaining": len(ids) - i})
			break
		}
		if err := s.Sender.Deliver(ctx, id, d); err != nil {
			r.Failed++
			applog.Warn(nil, "broadcast.deliver.fail", err, map[string]any{"job_id": jobID, "user_id": id})
			continue
		}
		r.Sent++
	}
	applog.Audit(nil, "broadcast.done", map[string]any{
		"job_id": jobID, "total": r.Total, "sent": r.Sent, "failed": r.Failed,
	})
	return r, nil
}
