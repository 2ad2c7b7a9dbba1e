package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/events"
	"github.com/fieldops/field-report-service/internal/observability"
	"github.com/fieldops/field-report-service/internal/repository"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

// SubmissionService owns creation and the review lifecycle of submissions.
// It is the only writer of review state.
type SubmissionService struct {
	complaints        repository.ComplaintRepository
	reports           repository.ServiceReportRepository
	feedback          repository.FeedbackRepository
	dispatcher        events.Dispatcher
	badges            BadgeCache
	metrics           *observability.Metrics
	logger            *zap.Logger
	allowRetransition bool
	now               func() time.Time
}

// SubmissionDependencies bundles collaborators for the submission service.
type SubmissionDependencies struct {
	ComplaintRepo     repository.ComplaintRepository
	ServiceReportRepo repository.ServiceReportRepository
	FeedbackRepo      repository.FeedbackRepository
	Dispatcher        events.Dispatcher
	Badges            BadgeCache
	Metrics           *observability.Metrics
	Logger            *zap.Logger
	AllowRetransition bool
	Now               func() time.Time
}

// ComplaintInput describes complaint creation payload.
type ComplaintInput struct {
	MachineID   string
	ProblemType domain.ComplaintProblemType
	Details     string
	Flags       domain.IssueFlags
	Other       string
	Solution    string
	ImageRef    *string
}

// ServiceReportInput describes service report creation payload.
type ServiceReportInput struct {
	MachineID     string
	ProblemType   domain.ServiceProblemType
	WorkPerformed string
	Flags         domain.IssueFlags
	Other         string
	Solution      string
	ImageRef      *string
}

// FeedbackInput describes feedback creation payload.
type FeedbackInput struct {
	Category     domain.FeedbackCategory
	Comments     string
	ContactEmail *string
	ImageRef     *string
}

// NewSubmissionService constructs the service.
func NewSubmissionService(deps SubmissionDependencies) *SubmissionService {
	s := &SubmissionService{
		complaints:        deps.ComplaintRepo,
		reports:           deps.ServiceReportRepo,
		feedback:          deps.FeedbackRepo,
		dispatcher:        deps.Dispatcher,
		badges:            deps.Badges,
		metrics:           deps.Metrics,
		logger:            deps.Logger,
		allowRetransition: deps.AllowRetransition,
		now:               deps.Now,
	}
	if s.badges == nil {
		s.badges = NoopBadgeCache{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// SubmitComplaint records a new pending complaint for the actor.
func (s *SubmissionService) SubmitComplaint(ctx context.Context, actor *domain.Actor, input ComplaintInput) (*domain.Complaint, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !input.ProblemType.Valid() {
		return nil, invalidProblemType(string(input.ProblemType))
	}

	complaint := &domain.Complaint{
		MachineID:   strings.TrimSpace(input.MachineID),
		ProblemType: input.ProblemType,
		Details:     strings.TrimSpace(input.Details),
		Flags:       input.Flags,
		Other:       strings.TrimSpace(input.Other),
		Solution:    strings.TrimSpace(input.Solution),
		ImageRef:    input.ImageRef,
		SubmittedBy: actor.UserID,
		Review:      domain.Review{Status: domain.StatusPending},
	}
	if err := s.complaints.Create(ctx, complaint); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.badges.Invalidate(ctx)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventSubmissionCreated,
		Kind:       domain.KindComplaint,
		Submission: complaint.ID,
		ActorID:    &actor.UserID,
		Payload: events.SubmissionCreatedPayload{
			ProblemType: string(complaint.ProblemType),
			Preview:     stringPreview(complaint.Details, 120),
		},
	})
	return complaint, nil
}

// SubmitServiceReport records a new pending service report for the actor.
func (s *SubmissionService) SubmitServiceReport(ctx context.Context, actor *domain.Actor, input ServiceReportInput) (*domain.ServiceReport, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	if !input.ProblemType.Valid() {
		return nil, invalidProblemType(string(input.ProblemType))
	}

	report := &domain.ServiceReport{
		MachineID:     strings.TrimSpace(input.MachineID),
		ProblemType:   input.ProblemType,
		WorkPerformed: strings.TrimSpace(input.WorkPerformed),
		Flags:         input.Flags,
		Other:         strings.TrimSpace(input.Other),
		Solution:      strings.TrimSpace(input.Solution),
		ImageRef:      input.ImageRef,
		SubmittedBy:   actor.UserID,
		Review:        domain.Review{Status: domain.StatusPending},
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.badges.Invalidate(ctx)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventSubmissionCreated,
		Kind:       domain.KindServiceReport,
		Submission: report.ID,
		ActorID:    &actor.UserID,
		Payload: events.SubmissionCreatedPayload{
			ProblemType: string(report.ProblemType),
			Preview:     stringPreview(report.WorkPerformed, 120),
		},
	})
	return report, nil
}

// SubmitFeedback records customer feedback. No caller identity is needed.
func (s *SubmissionService) SubmitFeedback(ctx context.Context, input FeedbackInput) (*domain.Feedback, error) {
	if !input.Category.Valid() {
		return nil, apperrors.NewInvalidArgument("unsupported feedback category", map[string]any{"category": input.Category})
	}

	fb := &domain.Feedback{
		Category:     input.Category,
		Comments:     strings.TrimSpace(input.Comments),
		ContactEmail: input.ContactEmail,
		ImageRef:     input.ImageRef,
	}
	if err := s.feedback.Create(ctx, fb); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventSubmissionCreated,
		Kind:       domain.KindFeedback,
		Submission: fb.ID,
		Payload: events.SubmissionCreatedPayload{
			Preview: stringPreview(fb.Comments, 120),
		},
	})
	return fb, nil
}

// Review moves a complaint or service report to approved or rejected.
func (s *SubmissionService) Review(ctx context.Context, actor *domain.Actor, ref domain.SubmissionRef, decision domain.SubmissionStatus) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	store, err := s.reviewable(ref)
	if err != nil {
		return err
	}
	if !decision.Terminal() {
		return apperrors.NewInvalidArgument("decision must be approved or rejected", map[string]any{"decision": decision})
	}

	current, err := store.GetReview(ctx, ref.ID)
	if err != nil {
		return notFound(ref, err)
	}
	if current.Review.Status.Terminal() && !s.allowRetransition {
		return apperrors.NewConflict("submission already reviewed", map[string]any{
			"id":     ref.ID,
			"status": current.Review.Status,
		})
	}

	var next domain.Review
	next.Apply(decision, actor.UserID, s.now())
	if err := store.UpdateReview(ctx, ref.ID, next); err != nil {
		return notFound(ref, err)
	}

	s.badges.Invalidate(ctx)
	s.metrics.RecordReview(string(ref.Kind), string(decision))
	s.logger.Info("submission reviewed",
		zap.String("kind", string(ref.Kind)),
		zap.String("id", ref.ID),
		zap.String("from", string(current.Review.Status)),
		zap.String("to", string(decision)),
		zap.String("reviewer", actor.UserID),
	)
	s.publishEvent(ctx, events.Event{
		Type:       events.EventSubmissionReviewed,
		Kind:       ref.Kind,
		Submission: ref.ID,
		ActorID:    &actor.UserID,
		Payload: events.SubmissionReviewedPayload{
			OldStatus:   current.Review.Status,
			NewStatus:   decision,
			SubmittedBy: current.SubmittedBy,
		},
	})
	return nil
}

// EditSolution replaces the solution text. Review fields are untouched.
func (s *SubmissionService) EditSolution(ctx context.Context, actor *domain.Actor, ref domain.SubmissionRef, solution string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	store, err := s.reviewable(ref)
	if err != nil {
		return err
	}

	solution = strings.TrimSpace(solution)
	if err := store.UpdateSolution(ctx, ref.ID, solution); err != nil {
		return notFound(ref, err)
	}

	s.publishEvent(ctx, events.Event{
		Type:       events.EventSolutionEdited,
		Kind:       ref.Kind,
		Submission: ref.ID,
		ActorID:    &actor.UserID,
		Payload:    events.SolutionEditedPayload{Preview: stringPreview(solution, 120)},
	})
	return nil
}

// MarkViewed lets the submitter acknowledge an approved submission.
// Submissions that are not approved are left as they are.
func (s *SubmissionService) MarkViewed(ctx context.Context, actor *domain.Actor, ref domain.SubmissionRef) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	store, err := s.reviewable(ref)
	if err != nil {
		return err
	}

	current, err := store.GetReview(ctx, ref.ID)
	if err != nil {
		return notFound(ref, err)
	}
	if current.SubmittedBy != actor.UserID {
		return apperrors.NewForbidden("only the submitter can acknowledge a submission")
	}
	if current.Review.Status != domain.StatusApproved {
		return nil
	}
	if v := current.Review.ViewedBySubmitter; v != nil && *v {
		return nil
	}

	if err := store.SetViewed(ctx, ref.ID, true); err != nil {
		return notFound(ref, err)
	}
	s.publishEvent(ctx, events.Event{
		Type:       events.EventSubmissionViewed,
		Kind:       ref.Kind,
		Submission: ref.ID,
		ActorID:    &actor.UserID,
	})
	return nil
}

// reviewable picks the store for ref. Ids that are not UUIDs cannot name a row
// and are reported as not found before any query runs.
func (s *SubmissionService) reviewable(ref domain.SubmissionRef) (repository.ReviewableRepository, error) {
	var store repository.ReviewableRepository
	switch ref.Kind {
	case domain.KindComplaint:
		store = s.complaints
	case domain.KindServiceReport:
		store = s.reports
	case domain.KindFeedback:
		return nil, apperrors.NewInvalidArgument("feedback has no review lifecycle", map[string]any{"kind": ref.Kind})
	default:
		return nil, apperrors.NewInvalidArgument("unsupported submission kind", map[string]any{"kind": ref.Kind})
	}
	if _, err := uuid.Parse(ref.ID); err != nil {
		return nil, apperrors.NewNotFound(string(ref.Kind), map[string]any{"id": ref.ID})
	}
	return store, nil
}

func (s *SubmissionService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.String("submission_id", event.Submission),
			zap.Error(err),
		)
	}
}

func invalidProblemType(value string) error {
	return apperrors.NewInvalidArgument("unsupported problem type", map[string]any{"problem_type": value})
}

func notFound(ref domain.SubmissionRef, err error) error {
	if apperrors.IsMissing(err) {
		return apperrors.NewNotFound(string(ref.Kind), map[string]any{"id": ref.ID})
	}
	return apperrors.MapError(err)
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
