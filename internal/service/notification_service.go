package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fieldops/field-report-service/internal/config"
	"github.com/fieldops/field-report-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventSubmissionCreated, n.handleSubmissionCreated)
	n.dispatcher.Subscribe(events.EventSubmissionReviewed, n.handleSubmissionReviewed)
	n.dispatcher.Subscribe(events.EventSolutionEdited, n.handleSolutionEdited)
	n.dispatcher.Subscribe(events.EventSubmissionViewed, n.handleSubmissionViewed)
}

// New submissions alert the reviewers.
func (n *NotificationService) handleSubmissionCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("SubmissionCreated", eventFields(event)...)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// A decision reaches the submitter.
func (n *NotificationService) handleSubmissionReviewed(ctx context.Context, event events.Event) error {
	n.logger.Info("SubmissionReviewed", eventFields(event)...)
	n.sendEmailNotificationStub(ctx, event)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSolutionEdited(ctx context.Context, event events.Event) error {
	n.logger.Info("SolutionEdited", eventFields(event)...)
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleSubmissionViewed(_ context.Context, event events.Event) error {
	n.logger.Debug("SubmissionViewed", eventFields(event)...)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("submission_id", event.Submission),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("submission_id", event.Submission),
		zap.String("event_type", string(event.Type)))
}

func eventFields(event events.Event) []zap.Field {
	return []zap.Field{
		zap.String("kind", string(event.Kind)),
		zap.String("submission_id", event.Submission),
		zap.Any("payload", event.Payload),
	}
}
