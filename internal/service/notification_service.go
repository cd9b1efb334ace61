package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/nexus-club/admin-api/pkg/jobs"
	"github.com/nexus-club/admin-api/pkg/notify"
)

const jobTypeAnnouncement = "announcement.fanout"

type contactRepository interface {
	Contacts(ctx context.Context) (phones []string, emails []string, err error)
}

// AnnouncementNotice describes an announcement change to broadcast.
type AnnouncementNotice struct {
	AnnouncementID int64
	Action         string
	Title          string
	Content        string
}

// DeliveryResult is the outcome of one send.
type DeliveryResult struct {
	Channel   notify.Channel
	Recipient string
	Err       error
}

// NotificationConfig tunes the fanout worker pool.
type NotificationConfig struct {
	Workers     int
	Concurrency int
	SendTimeout time.Duration
	Retries     int
}

// NotificationService broadcasts announcement changes to every member
// through the configured providers, off the request path.
type NotificationService struct {
	contacts    contactRepository
	senders     []notify.Sender
	queue       *jobs.Queue
	concurrency int
	sendTimeout time.Duration
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewNotificationService wires the fanout queue. With no senders the service
// is disabled and Enqueue is a no-op.
func NewNotificationService(contacts contactRepository, senders []notify.Sender, cfg NotificationConfig, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	svc := &NotificationService{
		contacts:    contacts,
		senders:     senders,
		concurrency: cfg.Concurrency,
		sendTimeout: cfg.SendTimeout,
		metrics:     metrics,
		logger:      logger,
	}
	svc.queue = jobs.NewQueue("notifications", svc.handleJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		RetryDelay: 5 * time.Second,
		JobTimeout: 5 * time.Minute,
		Logger:     logger,
	})
	return svc
}

// Enabled reports whether at least one provider is configured.
func (s *NotificationService) Enabled() bool {
	return s != nil && len(s.senders) > 0
}

// Start launches the workers.
func (s *NotificationService) Start(ctx context.Context) {
	if !s.Enabled() {
		s.logger.Info("notifications disabled: no provider configured")
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	if !s.Enabled() {
		return
	}
	s.queue.Stop()
}

// Enqueue schedules a fanout for notice.
func (s *NotificationService) Enqueue(notice AnnouncementNotice) error {
	if !s.Enabled() {
		return nil
	}
	return s.queue.Enqueue(jobs.Job{Type: jobTypeAnnouncement, Payload: notice})
}

// NotifyAll sends msg to every recipient through sender. Sends run with
// bounded concurrency and their own timeout; one failure never stops the rest.
func (s *NotificationService) NotifyAll(ctx context.Context, sender notify.Sender, recipients []string, msg notify.Message) []DeliveryResult {
	results := make([]DeliveryResult, len(recipients))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, recipient := range recipients {
		i, recipient := i, recipient
		g.Go(func() error {
			sendCtx, cancel := context.WithTimeout(gctx, s.sendTimeout)
			defer cancel()
			err := sender.Send(sendCtx, recipient, msg)

			mu.Lock()
			results[i] = DeliveryResult{Channel: sender.Channel(), Recipient: recipient, Err: err}
			mu.Unlock()

			s.metrics.RecordNotification(string(sender.Channel()), err == nil)
			if err != nil {
				s.logger.Warn("notification send failed",
					zap.String("channel", string(sender.Channel())),
					zap.String("recipient", maskRecipient(recipient)),
					zap.Error(err))
			}
			// never fail the group so siblings keep their context
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *NotificationService) handleJob(ctx context.Context, job jobs.Job) error {
	notice, ok := job.Payload.(AnnouncementNotice)
	if !ok {
		s.logger.Error("unexpected notification payload", zap.String("job_id", job.ID), zap.String("type", job.Type))
		return nil
	}
	phones, emails, err := s.contacts.Contacts(ctx)
	if err != nil {
		return fmt.Errorf("load member contacts: %w", err)
	}

	msg := noticeMessage(notice)
	for _, sender := range s.senders {
		var recipients []string
		switch sender.Channel() {
		case notify.ChannelSMS:
			recipients = phones
		case notify.ChannelEmail:
			recipients = emails
		}
		if len(recipients) == 0 {
			continue
		}
		results := s.NotifyAll(ctx, sender, recipients, msg)
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		s.logger.Info("announcement fanout complete",
			zap.Int64("announcement_id", notice.AnnouncementID),
			zap.String("action", notice.Action),
			zap.String("channel", string(sender.Channel())),
			zap.Int("recipients", len(recipients)),
			zap.Int("failed", failed))
	}
	return nil
}

func noticeMessage(notice AnnouncementNotice) notify.Message {
	switch notice.Action {
	case noticeActionDelete:
		return notify.Message{
			Subject: "Announcement withdrawn",
			Body:    fmt.Sprintf("The announcement %q has been removed.", notice.Title),
		}
	case noticeActionUpdate:
		return notify.Message{Subject: "Announcement updated: " + notice.Title, Body: notice.Content}
	default:
		return notify.Message{Subject: "New announcement: " + notice.Title, Body: notice.Content}
	}
}

func maskRecipient(recipient string) string {
	if at := strings.IndexByte(recipient, '@'); at > 0 {
		return recipient[:1] + "***" + recipient[at:]
	}
	if len(recipient) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(recipient)-4) + recipient[len(recipient)-4:]
}
