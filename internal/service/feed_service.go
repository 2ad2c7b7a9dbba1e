package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/repository"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

// URLResolver turns a stored blob ref into a fetchable URL.
type URLResolver interface {
	ResolveURL(ref *string) *string
}

// FeedService builds the role-filtered activity feed.
type FeedService struct {
	complaints repository.ComplaintRepository
	reports    repository.ServiceReportRepository
	feedback   repository.FeedbackRepository
	users      repository.UserRepository
	urls       URLResolver
	badges     BadgeCache
	location   *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

// FeedDependencies bundles collaborators for the feed service.
type FeedDependencies struct {
	ComplaintRepo     repository.ComplaintRepository
	ServiceReportRepo repository.ServiceReportRepository
	FeedbackRepo      repository.FeedbackRepository
	UserRepo          repository.UserRepository
	URLs              URLResolver
	Badges            BadgeCache
	// Location is the zone whose midnight opens the "today" window. Nil means UTC.
	Location *time.Location
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewFeedService constructs the service.
func NewFeedService(deps FeedDependencies) *FeedService {
	s := &FeedService{
		complaints: deps.ComplaintRepo,
		reports:    deps.ServiceReportRepo,
		feedback:   deps.FeedbackRepo,
		users:      deps.UserRepo,
		urls:       deps.URLs,
		badges:     deps.Badges,
		location:   deps.Location,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if s.badges == nil {
		s.badges = NoopBadgeCache{}
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// GetFeed merges every submission kind the actor may see, newest first.
// Anonymous callers get an empty feed rather than an error.
func (s *FeedService) GetFeed(ctx context.Context, actor *domain.Actor) (*domain.FeedResult, error) {
	result := &domain.FeedResult{Submissions: []domain.FeedItem{}}
	if !actor.Authenticated() {
		return result, nil
	}
	result.IsAdmin = actor.IsAdmin

	filter := repository.SubmissionFilter{}
	if !actor.IsAdmin {
		viewer := actor.UserID
		filter.VisibleTo = &viewer
	}

	var (
		complaints []domain.Complaint
		reports    []domain.ServiceReport
		feedback   []domain.Feedback
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		complaints, err = s.complaints.List(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = s.reports.List(gctx, filter)
		return err
	})
	if actor.IsAdmin {
		g.Go(func() error {
			var err error
			feedback, err = s.feedback.List(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, apperrors.MapError(err)
	}

	names, err := s.submitterNames(ctx, complaints, reports)
	if err != nil {
		return nil, err
	}

	items := make([]domain.FeedItem, 0, len(complaints)+len(reports)+len(feedback))
	for i := range complaints {
		c := &complaints[i]
		items = append(items, domain.FeedItem{
			Kind:          domain.KindComplaint,
			ID:            c.ID,
			MainText:      c.Details,
			SubmitterName: names.lookup(c.SubmittedBy),
			Status:        statusPtr(c.Status),
			ImageURL:      s.resolveURL(c.ImageRef),
			CreatedAt:     c.CreatedAt,
			Complaint:     c,
		})
	}
	for i := range reports {
		r := &reports[i]
		items = append(items, domain.FeedItem{
			Kind:          domain.KindServiceReport,
			ID:            r.ID,
			MainText:      r.WorkPerformed,
			SubmitterName: names.lookup(r.SubmittedBy),
			Status:        statusPtr(r.Status),
			ImageURL:      s.resolveURL(r.ImageRef),
			CreatedAt:     r.CreatedAt,
			ServiceReport: r,
		})
	}
	for i := range feedback {
		f := &feedback[i]
		items = append(items, domain.FeedItem{
			Kind:          domain.KindFeedback,
			ID:            f.ID,
			MainText:      f.Comments,
			SubmitterName: domain.CustomerSubmitterName,
			ImageURL:      s.resolveURL(f.ImageRef),
			CreatedAt:     f.CreatedAt,
			Feedback:      f,
		})
	}

	// Stable so equal timestamps keep store insertion order.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	midnight := startOfDay(s.now(), s.location)
	for _, item := range items {
		if item.Status != nil && *item.Status == domain.StatusPending {
			result.PendingCount++
		}
		if !item.CreatedAt.Before(midnight) {
			result.SubmissionsTodayCount++
		}
	}
	result.Submissions = items
	return result, nil
}

// PendingBadgeCount returns the global number of pending complaints and
// service reports for admins, and 0 for everyone else.
func (s *FeedService) PendingBadgeCount(ctx context.Context, actor *domain.Actor) (int, error) {
	if !actor.Admin() {
		return 0, nil
	}
	count, generation, ok := s.badges.Get(ctx)
	if ok {
		return count, nil
	}

	var complaints, reports int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		complaints, err = s.complaints.CountByStatus(gctx, domain.StatusPending)
		return err
	})
	g.Go(func() error {
		var err error
		reports, err = s.reports.CountByStatus(gctx, domain.StatusPending)
		return err
	})
	if err := g.Wait(); err != nil {
		return 0, apperrors.MapError(err)
	}

	total := complaints + reports
	s.badges.Set(ctx, generation, total)
	return total, nil
}

type submitterNames map[string]string

func (n submitterNames) lookup(id string) string {
	if name, ok := n[id]; ok && name != "" {
		return name
	}
	return domain.UnknownSubmitterName
}

// submitterNames loads display names for every distinct submitter in one query.
func (s *FeedService) submitterNames(ctx context.Context, complaints []domain.Complaint, reports []domain.ServiceReport) (submitterNames, error) {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	for i := range complaints {
		add(complaints[i].SubmittedBy)
	}
	for i := range reports {
		add(reports[i].SubmittedBy)
	}

	names := make(submitterNames, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	users, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names, nil
}

func (s *FeedService) resolveURL(ref *string) *string {
	if s.urls == nil {
		return nil
	}
	return s.urls.ResolveURL(ref)
}

func statusPtr(status domain.SubmissionStatus) *domain.SubmissionStatus {
	return &status
}

func startOfDay(now time.Time, loc *time.Location) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
