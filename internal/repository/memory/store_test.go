package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/repository"
	"github.com/fieldops/field-report-service/pkg/util/errorutil"
)

func TestComplaintVisibilityFilter(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)
	repo := store.Complaints()

	mine := &domain.Complaint{SubmittedBy: "u1", Review: domain.Review{Status: domain.StatusPending}}
	theirs := &domain.Complaint{SubmittedBy: "u2", Review: domain.Review{Status: domain.StatusPending}}
	approved := &domain.Complaint{SubmittedBy: "u2", Review: domain.Review{Status: domain.StatusApproved}}
	for _, c := range []*domain.Complaint{mine, theirs, approved} {
		require.NoError(t, repo.Create(ctx, c))
	}

	all, err := repo.List(ctx, repository.SubmissionFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	u1 := "u1"
	visible, err := repo.List(ctx, repository.SubmissionFilter{VisibleTo: &u1})
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, mine.ID, visible[0].ID)
	assert.Equal(t, approved.ID, visible[1].ID)
}

func TestUpdateReviewKeepsViewedFlagWhenUnset(t *testing.T) {
	ctx := context.Background()
	repo := NewStore(nil).ServiceReports()
	sr := &domain.ServiceReport{SubmittedBy: "u1", Review: domain.Review{Status: domain.StatusPending}}
	require.NoError(t, repo.Create(ctx, sr))

	require.NoError(t, repo.SetViewed(ctx, sr.ID, true))
	admin := "admin"
	now := time.Now()
	require.NoError(t, repo.UpdateReview(ctx, sr.ID, domain.Review{Status: domain.StatusRejected, ApprovedBy: &admin, ApprovedAt: &now}))

	rec, err := repo.GetReview(ctx, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rec.Review.Status)
	require.NotNil(t, rec.Review.ViewedBySubmitter)
	assert.True(t, *rec.Review.ViewedBySubmitter)
}

func TestMissingRowsReportNoRows(t *testing.T) {
	ctx := context.Background()
	store := NewStore(nil)

	_, err := store.Complaints().GetReview(ctx, "nope")
	assert.True(t, errorutil.IsNoRows(err))
	assert.True(t, errorutil.IsNoRows(store.ServiceReports().UpdateSolution(ctx, "nope", "x")))
	_, err = store.Users().GetByID(ctx, "nope")
	assert.True(t, errorutil.IsNoRows(err))
}

func TestSearchByNameRangeScan(t *testing.T) {
	ctx := context.Background()
	users := NewStore(nil).Users()
	add := func(name string, active bool) *domain.User {
		u := &domain.User{AccountActivated: active}
		u.SetName(name)
		require.NoError(t, users.Create(ctx, u))
		return u
	}
	add("Joan", true)
	john := add("John", true)
	add("Jo", true)
	add("Jonas", false)
	add("Mary", true)

	got, err := users.SearchByName(ctx, repository.UserSearchQuery{From: "jo", To: "jo\uffff", Exclude: []string{john.ID}, Limit: 10})
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, u := range got {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"Jo", "Joan"}, names)
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := NewStore(nil).Users()
	email := "a@example.com"
	require.NoError(t, users.Create(ctx, &domain.User{Email: &email}))
	assert.Error(t, users.Create(ctx, &domain.User{Email: &email}))
}
