package contact

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"fieldpal/internal/email"
)

// Notifier is the email side channel for new submissions.
type Notifier interface {
	Enabled() bool
	SendContactNotification(ctx context.Context, n email.Notification) error
}

// EventCapturer is the analytics side channel.
type EventCapturer interface {
	Capture(ctx context.Context, distinctID, event string, properties map[string]any) error
}

// MetricsRecorder counts accepted submissions and failed notification
// emails.
type MetricsRecorder interface {
	RecordContactSubmission()
	RecordNotificationFailure()
}

// SubmitInput carries the contact-form fields.
type SubmitInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// Service stores submissions and fans out to the side channels. Storage
// is the primary action; email and analytics failures are logged and
// never fail a submission.
type Service struct {
	repo        Repository
	notifier    Notifier
	events      EventCapturer
	metrics     MetricsRecorder
	notifyEmail string
	logger      *slog.Logger
	now         func() time.Time
}

// NewService constructs a Service. notifier, events and metrics may be
// nil when the corresponding provider is not configured.
func NewService(repo Repository, notifier Notifier, events EventCapturer, metrics MetricsRecorder, notifyEmail string, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		notifier:    notifier,
		events:      events,
		metrics:     metrics,
		notifyEmail: notifyEmail,
		logger:      logger,
		now:         time.Now,
	}
}

// Submit validates and stores a submission, then notifies best effort.
// distinctID correlates the submission with the visitor's analytics id.
func (s *Service) Submit(ctx context.Context, input SubmitInput, distinctID string) (Submission, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)

	if input.Name == "" {
		return Submission{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.Message == "" {
		return Submission{}, fmt.Errorf("%w: message is required", ErrValidation)
	}
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return Submission{}, fmt.Errorf("%w: invalid email address", ErrValidation)
	}

	submittedAt := s.now().UTC()
	submission := Submission{
		PartitionKey: submittedAt.Format("2006-01"),
		RowKey:       uuid.New(),
		Name:         input.Name,
		Email:        input.Email,
		Subject:      input.Subject,
		Message:      input.Message,
		SubmittedAt:  submittedAt,
	}

	if err := s.repo.Save(ctx, submission); err != nil {
		return Submission{}, fmt.Errorf("store submission: %w", err)
	}
	if s.metrics != nil {
		s.metrics.RecordContactSubmission()
	}

	if s.events != nil {
		err := s.events.Capture(ctx, distinctID, "contact_form_submitted", map[string]any{
			"email":          submission.Email,
			"has_subject":    submission.Subject != "",
			"message_length": len(submission.Message),
		})
		if err != nil {
			s.logger.Warn("contact analytics capture failed", "error", err)
		}
	}

	if s.notifier != nil && s.notifier.Enabled() && s.notifyEmail != "" {
		err := s.notifier.SendContactNotification(ctx, email.Notification{
			To:      s.notifyEmail,
			Name:    submission.Name,
			Email:   submission.Email,
			Subject: submission.Subject,
			Message: submission.Message,
		})
		if err != nil {
			s.logger.Error("contact notification email failed", "error", err)
			if s.metrics != nil {
				s.metrics.RecordNotificationFailure()
			}
		}
	}

	return submission, nil
}

// Submissions returns all stored submissions, newest first.
func (s *Service) Submissions(ctx context.Context) ([]Submission, error) {
	return s.repo.List(ctx)
}
