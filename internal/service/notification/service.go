package notification

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cmlabs-hris/kintai-line-go/internal/config"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/company"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/notification"
	"github.com/cmlabs-hris/kintai-line-go/internal/domain/user"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/email"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/line"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/slack"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/sse"
	"github.com/cmlabs-hris/kintai-line-go/internal/pkg/timeutil"
)

// Channels are the delivery targets. Nil channels are skipped.
type Channels struct {
	Email email.EmailService
	Slack slack.Notifier
	Line  line.Messenger
	Hub   *sse.Hub
}

type DispatcherImpl struct {
	userRepo       user.UserRepository
	companyRepo    company.CompanyRepository
	membershipRepo company.MembershipRepository
	channels       Channels
	config         config.NotificationConfig
	loc            *time.Location

	mu      sync.RWMutex
	stopped bool
	queue   chan notification.Event
	wg      sync.WaitGroup
}

// NewDispatcher starts cfg.Workers background workers draining a queue of
// cfg.QueueSize events.
func NewDispatcher(
	userRepo user.UserRepository,
	companyRepo company.CompanyRepository,
	membershipRepo company.MembershipRepository,
	channels Channels,
	cfg config.NotificationConfig,
	loc *time.Location,
) *DispatcherImpl {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 256
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	d := &DispatcherImpl{
		userRepo:       userRepo,
		companyRepo:    companyRepo,
		membershipRepo: membershipRepo,
		channels:       channels,
		config:         cfg,
		loc:            loc,
		queue:          make(chan notification.Event, cfg.QueueSize),
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	slog.Info("notification dispatcher started", "workers", cfg.Workers, "queue_size", cfg.QueueSize)
	return d
}

// Dispatch implements notification.Dispatcher. It never blocks: when the
// queue is full or the dispatcher is shut down the event is dropped.
func (d *DispatcherImpl) Dispatch(event notification.Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		slog.Warn("notification dropped after shutdown", "type", event.Type, "company_id", event.CompanyID)
		metrics.Notifications.WithLabelValues("queue", "dropped").Inc()
		return
	}

	select {
	case d.queue <- event:
		metrics.NotificationQueueDepth.Inc()
	default:
		slog.Warn("notification queue full, dropping event", "type", event.Type, "company_id", event.CompanyID)
		metrics.Notifications.WithLabelValues("queue", "dropped").Inc()
	}
}

func (d *DispatcherImpl) worker(id int) {
	defer d.wg.Done()

	for event := range d.queue {
		metrics.NotificationQueueDepth.Dec()

		ctx, cancel := context.WithTimeout(context.Background(), d.config.Timeout)
		d.deliver(ctx, event)
		cancel()
	}
	slog.Debug("notification worker stopped", "worker", id)
}

// Shutdown stops accepting events and waits for queued ones to be delivered
// or for ctx to expire.
func (d *DispatcherImpl) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification dispatcher shutdown: %w", ctx.Err())
	}
}

// resolved carries the names an event message needs.
type resolved struct {
	user        user.User
	actorName   string
	companyName string
}

func (d *DispatcherImpl) resolve(ctx context.Context, e notification.Event) resolved {
	var r resolved
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := d.userRepo.GetByID(gctx, e.UserID)
		if err != nil {
			slog.Warn("notification: failed to load user", "user_id", e.UserID, "error", err)
			u = user.User{ID: e.UserID, DisplayName: e.UserID}
		}
		r.user = u
		return nil
	})
	g.Go(func() error {
		if e.ActorID == "" || e.ActorID == e.UserID {
			return nil
		}
		actor, err := d.userRepo.GetByID(gctx, e.ActorID)
		if err != nil {
			slog.Warn("notification: failed to load actor", "user_id", e.ActorID, "error", err)
			r.actorName = e.ActorID
			return nil
		}
		r.actorName = actor.DisplayName
		return nil
	})
	g.Go(func() error {
		c, err := d.companyRepo.GetByID(gctx, e.CompanyID)
		if err != nil {
			slog.Warn("notification: failed to load company", "company_id", e.CompanyID, "error", err)
			r.companyName = e.CompanyID
			return nil
		}
		r.companyName = c.Name
		return nil
	})
	_ = g.Wait()

	if r.actorName == "" {
		r.actorName = r.user.DisplayName
	}
	return r
}

// deliver fans one event out to every configured channel. Each channel
// fails on its own; failures are logged and counted only.
func (d *DispatcherImpl) deliver(ctx context.Context, e notification.Event) {
	names := d.resolve(ctx, e)
	msg := d.render(e, names)

	var g errgroup.Group
	if d.channels.Hub != nil {
		g.Go(func() error {
			d.channels.Hub.Publish(sse.Event{
				CompanyID: e.CompanyID,
				Event:     string(e.Type),
				Data:      newStreamPayload(e, names, msg, d.loc),
			})
			metrics.Notifications.WithLabelValues("sse", "sent").Inc()
			return nil
		})
	}
	if d.channels.Email != nil {
		g.Go(func() error {
			d.sendEmail(ctx, e, names, msg)
			return nil
		})
	}
	if d.channels.Slack != nil {
		g.Go(func() error {
			d.record("slack", e, d.channels.Slack.Post(ctx, fmt.Sprintf("[%s] %s", names.companyName, msg.summary)))
			return nil
		})
	}
	if d.channels.Line != nil && e.NotifiesUser() && names.user.LineUserID != "" {
		g.Go(func() error {
			d.record("line", e, d.channels.Line.Push(ctx, names.user.LineUserID, msg.summary))
			return nil
		})
	}
	_ = g.Wait()
}

func (d *DispatcherImpl) sendEmail(ctx context.Context, e notification.Event, names resolved, msg message) {
	to, err := d.membershipRepo.ListAdminEmails(ctx, e.CompanyID)
	if err != nil {
		d.record("email", e, fmt.Errorf("failed to list admin emails: %w", err))
		return
	}
	if len(to) == 0 {
		metrics.Notifications.WithLabelValues("email", "skipped").Inc()
		return
	}
	d.record("email", e, d.channels.Email.SendAdminNotification(ctx, to, email.AdminNotification{
		CompanyName: names.companyName,
		Title:       msg.title,
		Summary:     msg.summary,
		OccurredAt:  e.OccurredAt.In(d.loc).Format("2006-01-02 15:04"),
	}))
}

func (d *DispatcherImpl) record(channel string, e notification.Event, err error) {
	if err != nil {
		slog.Error("notification delivery failed",
			"channel", channel,
			"type", e.Type,
			"company_id", e.CompanyID,
			"error", err,
		)
		metrics.Notifications.WithLabelValues(channel, "failed").Inc()
		return
	}
	metrics.Notifications.WithLabelValues(channel, "sent").Inc()
}

// StreamPayload is the data of one server-sent event.
type StreamPayload struct {
	Type       notification.EventType `json:"type"`
	UserID     string                 `json:"user_id"`
	UserName   string                 `json:"user_name"`
	ActorID    string                 `json:"actor_id,omitempty"`
	Date       string                 `json:"date,omitempty"`
	OccurredAt string                 `json:"occurred_at"`
	SubjectID  string                 `json:"subject_id,omitempty"`
	Title      string                 `json:"title"`
	Summary    string                 `json:"summary"`
}

func newStreamPayload(e notification.Event, names resolved, msg message, loc *time.Location) StreamPayload {
	p := StreamPayload{
		Type:       e.Type,
		UserID:     e.UserID,
		UserName:   names.user.DisplayName,
		ActorID:    e.ActorID,
		OccurredAt: e.OccurredAt.In(loc).Format(time.RFC3339),
		SubjectID:  e.SubjectID,
		Title:      msg.title,
		Summary:    msg.summary,
	}
	if !e.Date.IsZero() {
		p.Date = e.Date.Format(timeutil.DateLayout)
	}
	return p
}
