package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/events"
	"github.com/fieldops/field-report-service/internal/repository"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

func TestSubmitCreatesPendingSubmissions(t *testing.T) {
	env := newTestEnv()
	u1 := env.addUser(t, "Una Field", false)

	c := env.complaint(t, u1, "  pump leaks  ")
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, domain.StatusPending, c.Status)
	assert.Equal(t, u1.UserID, c.SubmittedBy)
	assert.Equal(t, "pump leaks", c.Details)
	assert.Nil(t, c.ApprovedBy)
	assert.Nil(t, c.ApprovedAt)
	assert.Nil(t, c.ViewedBySubmitter)

	r := env.report(t, u1, "replaced seal")
	assert.Equal(t, domain.StatusPending, r.Status)
	assert.Equal(t, u1.UserID, r.SubmittedBy)

	fb := env.feedback(t, "great service")
	assert.NotEmpty(t, fb.ID)
	assert.Equal(t, 2, env.badges.invalidated)
}

func TestSubmitValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	u1 := env.addUser(t, "Una Field", false)

	_, err := env.subs.SubmitComplaint(ctx, nil, ComplaintInput{ProblemType: domain.ComplaintSafety})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))

	_, err = env.subs.SubmitServiceReport(ctx, nil, ServiceReportInput{ProblemType: domain.ServiceRepair})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))

	_, err = env.subs.SubmitComplaint(ctx, u1, ComplaintInput{ProblemType: "broken-ish"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))

	_, err = env.subs.SubmitServiceReport(ctx, u1, ServiceReportInput{ProblemType: "equipment-fault"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))

	_, err = env.subs.SubmitFeedback(ctx, FeedbackInput{Category: "rant"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))
}

func TestReviewApproveSetsUnreadFlag(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	u1 := env.addUser(t, "Una Field", false)
	admin := env.addUser(t, "Ada Admin", true)
	c := env.complaint(t, u1, "pump leaks")

	env.clock.Advance(time.Hour)
	reviewedAt := env.clock.Now()
	env.review(t, admin, domain.KindComplaint, c.ID, domain.StatusApproved)

	rec, err := env.store.Complaints().GetReview(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, rec.Review.Status)
	require.NotNil(t, rec.Review.ApprovedBy)
	assert.Equal(t, admin.UserID, *rec.Review.ApprovedBy)
	require.NotNil(t, rec.Review.ApprovedAt)
	assert.True(t, reviewedAt.Equal(*rec.Review.ApprovedAt))
	require.NotNil(t, rec.Review.ViewedBySubmitter)
	assert.False(t, *rec.Review.ViewedBySubmitter)

	assert.Equal(t, int64(1), env.metrics.Snapshot().Reviews["complaint|approved"])
}

func TestReviewRejectLeavesViewedUnset(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	u1 := env.addUser(t, "Una Field", false)
	admin := env.addUser(t, "Ada Admin", true)
	r := env.report(t, u1, "replaced seal")

	env.review(t, admin, domain.KindServiceReport, r.ID, domain.StatusRejected)

	rec, err := env.store.ServiceReports().GetReview(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rec.Review.Status)
	require.NotNil(t, rec.Review.ApprovedBy)
	assert.Equal(t, admin.UserID, *rec.Review.ApprovedBy)
	assert.NotNil(t, rec.Review.ApprovedAt)
	assert.Nil(t, rec.Review.ViewedBySubmitter)
}

func TestReviewAuthorization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	u1 := env.addUser(t, "Una Field", false)
	c := env.complaint(t, u1, "pump leaks")
	ref := domain.SubmissionRef{ID: c.ID, Kind: domain.KindComplaint}

	err := env.subs.Review(ctx, nil, ref, domain.StatusApproved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))

	err = env.subs.Review(ctx, u1, ref, domain.StatusApproved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	rec, err := env.store.Complaints().GetReview(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, rec.Review.Status)
}

func TestReviewRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	admin := env.addUser(t, "Ada Admin", true)
	c := env.complaint(t, admin, "pump leaks")

	err := env.subs.Review(ctx, admin, domain.SubmissionRef{ID: c.ID, Kind: domain.KindFeedback}, domain.StatusApproved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))

	err = env.subs.Review(ctx, admin, domain.SubmissionRef{ID: c.ID, Kind: "manual"}, domain.StatusApproved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))

	err = env.subs.Review(ctx, admin, domain.SubmissionRef{ID: c.ID, Kind: domain.KindComplaint}, domain.StatusPending)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))

	err = env.subs.Review(ctx, admin, domain.SubmissionRef{ID: "missing", Kind: domain.KindComplaint}, domain.StatusApproved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	// a complaint id is not a service report id
	err = env.subs.Review(ctx, admin, domain.SubmissionRef{ID: c.ID, Kind: domain.KindServiceReport}, domain.StatusApproved)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestReviewRetransitionPolicy(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed overwrites reviewer", func(t *testing.T) {
		env := newTestEnv()
		u1 := env.addUser(t, "Una Field", false)
		first := env.addUser(t, "Ada Admin", true)
		second := env.addUser(t, "Bo Admin", true)
		c := env.complaint(t, u1, "pump leaks")

		env.review(t, first, domain.KindComplaint, c.ID, domain.StatusApproved)
		env.clock.Advance(time.Minute)
		env.review(t, second, domain.KindComplaint, c.ID, domain.StatusRejected)

		rec, err := env.store.Complaints().GetReview(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, rec.Review.Status)
		assert.Equal(t, second.UserID, *rec.Review.ApprovedBy)
		assert.True(t, env.clock.Now().Equal(*rec.Review.ApprovedAt))
	})

	t.Run("forbidden returns conflict", func(t *testing.T) {
		env := newTestEnv(withRetransition(false))
		u1 := env.addUser(t, "Una Field", false)
		admin := env.addUser(t, "Ada Admin", true)
		c := env.complaint(t, u1, "pump leaks")
		ref := domain.SubmissionRef{ID: c.ID, Kind: domain.KindComplaint}

		require.NoError(t, env.subs.Review(ctx, admin, ref, domain.StatusApproved))
		err := env.subs.Review(ctx, admin, ref, domain.StatusRejected)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

		rec, err := env.store.Complaints().GetReview(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, rec.Review.Status)
	})
}

func TestEditSolutionLeavesReviewUntouched(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	u1 := env.addUser(t, "Una Field", false)
	admin := env.addUser(t, "Ada Admin", true)
	c := env.complaint(t, u1, "pump leaks")
	env.review(t, admin, domain.KindComplaint, c.ID, domain.StatusApproved)

	before, err := env.store.Complaints().GetReview(ctx, c.ID)
	require.NoError(t, err)

	ref := domain.SubmissionRef{ID: c.ID, Kind: domain.KindComplaint}
	env.clock.Advance(time.Hour)
	require.NoError(t, env.subs.EditSolution(ctx, admin, ref, " tighten the flange "))

	after, err := env.store.Complaints().GetReview(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Review, after.Review)

	stored, err := env.store.Complaints().GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "tighten the flange", stored.Solution)

	// also allowed while pending
	r := env.report(t, u1, "replaced seal")
	require.NoError(t, env.subs.EditSolution(ctx, admin, domain.SubmissionRef{ID: r.ID, Kind: domain.KindServiceReport}, "done"))
	rec, err := env.store.ServiceReports().GetReview(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, rec.Review.Status)
	assert.Nil(t, rec.Review.ApprovedBy)
}

func TestEditSolutionErrors(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	u1 := env.addUser(t, "Una Field", false)
	admin := env.addUser(t, "Ada Admin", true)
	c := env.complaint(t, u1, "pump leaks")

	err := env.subs.EditSolution(ctx, u1, domain.SubmissionRef{ID: c.ID, Kind: domain.KindComplaint}, "x")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	err = env.subs.EditSolution(ctx, nil, domain.SubmissionRef{ID: c.ID, Kind: domain.KindComplaint}, "x")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))

	err = env.subs.EditSolution(ctx, admin, domain.SubmissionRef{ID: c.ID, Kind: domain.KindFeedback}, "x")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArgument))

	err = env.subs.EditSolution(ctx, admin, domain.SubmissionRef{ID: "missing", Kind: domain.KindComplaint}, "x")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestMarkViewed(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	u1 := env.addUser(t, "Una Field", false)
	u2 := env.addUser(t, "Udo Other", false)
	admin := env.addUser(t, "Ada Admin", true)
	c := env.complaint(t, u1, "pump leaks")
	ref := domain.SubmissionRef{ID: c.ID, Kind: domain.KindComplaint}

	// pending: nothing to acknowledge
	require.NoError(t, env.subs.MarkViewed(ctx, u1, ref))
	rec, err := env.store.Complaints().GetReview(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, rec.Review.ViewedBySubmitter)

	env.review(t, admin, domain.KindComplaint, c.ID, domain.StatusApproved)

	err = env.subs.MarkViewed(ctx, u2, ref)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))
	err = env.subs.MarkViewed(ctx, nil, ref)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))

	require.NoError(t, env.subs.MarkViewed(ctx, u1, ref))
	rec, err = env.store.Complaints().GetReview(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.Review.ViewedBySubmitter)
	assert.True(t, *rec.Review.ViewedBySubmitter)

	require.NoError(t, env.subs.MarkViewed(ctx, u1, ref))
}

func TestSubmissionEventsPublished(t *testing.T) {
	ctx := context.Background()
	dispatcher := &mockDispatcher{}
	env := newTestEnv(withDispatcher(dispatcher))
	u1 := env.addUser(t, "Una Field", false)
	admin := env.addUser(t, "Ada Admin", true)

	dispatcher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		payload, ok := e.Payload.(events.SubmissionCreatedPayload)
		return e.Type == events.EventSubmissionCreated &&
			e.Kind == domain.KindComplaint &&
			e.ID != "" &&
			ok && payload.ProblemType == string(domain.ComplaintEquipmentFault)
	})).Return(nil).Once()
	c := env.complaint(t, u1, "pump leaks")

	dispatcher.On("Publish", mock.Anything, mock.MatchedBy(func(e events.Event) bool {
		payload, ok := e.Payload.(events.SubmissionReviewedPayload)
		return e.Type == events.EventSubmissionReviewed &&
			e.Submission == c.ID &&
			ok &&
			payload.OldStatus == domain.StatusPending &&
			payload.NewStatus == domain.StatusApproved &&
			payload.SubmittedBy == u1.UserID
	})).Return(assert.AnError).Once()
	// a failing handler does not fail the review
	require.NoError(t, env.subs.Review(ctx, admin, domain.SubmissionRef{ID: c.ID, Kind: domain.KindComplaint}, domain.StatusApproved))

	dispatcher.AssertExpectations(t)
}

func TestStringPreview(t *testing.T) {
	assert.Equal(t, "short", stringPreview("  short ", 10))
	assert.Equal(t, "abcdefg...", stringPreview("abcdefghijklmnop", 10))
	assert.Equal(t, "żółć ż...", stringPreview("żółć żółć żółć", 9))
}

// malformedKeyComplaints fails lookups the way Postgres does for a key that
// cannot be cast to its UUID column.
type malformedKeyComplaints struct {
	repository.ComplaintRepository
}

func (malformedKeyComplaints) GetReview(context.Context, string) (*repository.ReviewRecord, error) {
	return nil, fmt.Errorf("get review: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"})
}

func (malformedKeyComplaints) UpdateSolution(context.Context, string, string) error {
	return &pgconn.PgError{Code: "22P02"}
}

func TestMalformedIDsAreNotFound(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	u1 := env.addUser(t, "Una Field", false)
	admin := env.addUser(t, "Ada Admin", true)

	for _, id := range []string{"abc", "", "1; DROP TABLE complaints"} {
		ref := domain.SubmissionRef{ID: id, Kind: domain.KindComplaint}
		assert.True(t, apperrors.HasCode(env.subs.Review(ctx, admin, ref, domain.StatusApproved), apperrors.CodeNotFound), id)
		assert.True(t, apperrors.HasCode(env.subs.EditSolution(ctx, admin, ref, "x"), apperrors.CodeNotFound), id)
		assert.True(t, apperrors.HasCode(env.subs.MarkViewed(ctx, u1, ref), apperrors.CodeNotFound), id)
	}

	subs := NewSubmissionService(SubmissionDependencies{
		ComplaintRepo:     malformedKeyComplaints{env.store.Complaints()},
		ServiceReportRepo: env.store.ServiceReports(),
		FeedbackRepo:      env.store.Feedback(),
	})
	ref := domain.SubmissionRef{ID: "00000000-0000-0000-0000-000000000001", Kind: domain.KindComplaint}
	assert.True(t, apperrors.HasCode(subs.Review(ctx, admin, ref, domain.StatusApproved), apperrors.CodeNotFound))
	assert.True(t, apperrors.HasCode(subs.EditSolution(ctx, admin, ref, "x"), apperrors.CodeNotFound))
}
