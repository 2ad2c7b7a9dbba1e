package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/events"
	"github.com/fieldops/field-report-service/internal/observability"
	"github.com/fieldops/field-report-service/internal/repository"
	"github.com/fieldops/field-report-service/internal/repository/memory"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryBadgeCache records cache traffic for assertions.
type memoryBadgeCache struct {
	mu          sync.Mutex
	value       *int
	generation  int64
	sets        int
	invalidated int
}

func (m *memoryBadgeCache) Get(context.Context) (int, int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		return 0, m.generation, false
	}
	return *m.value, m.generation, true
}

func (m *memoryBadgeCache) Set(_ context.Context, generation int64, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if generation != m.generation {
		return
	}
	m.value = &count
	m.sets++
}

func (m *memoryBadgeCache) Invalidate(context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = nil
	m.generation++
	m.invalidated++
}

type mockDispatcher struct {
	mock.Mock
}

func (m *mockDispatcher) Publish(ctx context.Context, event events.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *mockDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {
	m.Called(eventType, handler)
}

type prefixResolver struct{}

func (prefixResolver) ResolveURL(ref *string) *string {
	if ref == nil || *ref == "" {
		return nil
	}
	url := "https://blobs.test/" + *ref
	return &url
}

type testEnv struct {
	clock   *testClock
	store   *memory.Store
	badges  *memoryBadgeCache
	metrics *observability.Metrics
	subs    *SubmissionService
	feed    *FeedService
	dir     *DirectoryService
}

type envOption func(*SubmissionDependencies, *FeedDependencies)

func withRetransition(allow bool) envOption {
	return func(s *SubmissionDependencies, _ *FeedDependencies) { s.AllowRetransition = allow }
}

func withDispatcher(d events.Dispatcher) envOption {
	return func(s *SubmissionDependencies, _ *FeedDependencies) { s.Dispatcher = d }
}

func withLocation(loc *time.Location) envOption {
	return func(_ *SubmissionDependencies, f *FeedDependencies) { f.Location = loc }
}

func withFeedComplaints(wrap func(repository.ComplaintRepository) repository.ComplaintRepository) envOption {
	return func(_ *SubmissionDependencies, f *FeedDependencies) { f.ComplaintRepo = wrap(f.ComplaintRepo) }
}

func newTestEnv(opts ...envOption) *testEnv {
	clock := newTestClock()
	store := memory.NewStore(clock.Now)
	badges := &memoryBadgeCache{}
	metrics := observability.NewMetrics()

	subDeps := SubmissionDependencies{
		ComplaintRepo:     store.Complaints(),
		ServiceReportRepo: store.ServiceReports(),
		FeedbackRepo:      store.Feedback(),
		Dispatcher:        events.NewInMemoryDispatcher(),
		Badges:            badges,
		Metrics:           metrics,
		AllowRetransition: true,
		Now:               clock.Now,
	}
	feedDeps := FeedDependencies{
		ComplaintRepo:     store.Complaints(),
		ServiceReportRepo: store.ServiceReports(),
		FeedbackRepo:      store.Feedback(),
		UserRepo:          store.Users(),
		URLs:              prefixResolver{},
		Badges:            badges,
		Now:               clock.Now,
	}
	for _, opt := range opts {
		opt(&subDeps, &feedDeps)
	}

	return &testEnv{
		clock:   clock,
		store:   store,
		badges:  badges,
		metrics: metrics,
		subs:    NewSubmissionService(subDeps),
		feed:    NewFeedService(feedDeps),
		dir:     NewDirectoryService(store.Users()),
	}
}

func (e *testEnv) addUser(t *testing.T, name string, admin bool) *domain.Actor {
	t.Helper()
	u := &domain.User{IsAdmin: admin, AccountActivated: true}
	u.SetName(name)
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return &domain.Actor{UserID: u.ID, IsAdmin: admin}
}

func (e *testEnv) complaint(t *testing.T, actor *domain.Actor, details string) *domain.Complaint {
	t.Helper()
	c, err := e.subs.SubmitComplaint(context.Background(), actor, ComplaintInput{
		MachineID:   "M-100",
		ProblemType: domain.ComplaintEquipmentFault,
		Details:     details,
	})
	require.NoError(t, err)
	return c
}

func (e *testEnv) report(t *testing.T, actor *domain.Actor, work string) *domain.ServiceReport {
	t.Helper()
	r, err := e.subs.SubmitServiceReport(context.Background(), actor, ServiceReportInput{
		MachineID:     "M-200",
		ProblemType:   domain.ServiceRepair,
		WorkPerformed: work,
	})
	require.NoError(t, err)
	return r
}

func (e *testEnv) feedback(t *testing.T, comments string) *domain.Feedback {
	t.Helper()
	fb, err := e.subs.SubmitFeedback(context.Background(), FeedbackInput{
		Category: domain.FeedbackService,
		Comments: comments,
	})
	require.NoError(t, err)
	return fb
}

func (e *testEnv) review(t *testing.T, admin *domain.Actor, kind domain.Kind, id string, decision domain.SubmissionStatus) {
	t.Helper()
	require.NoError(t, e.subs.Review(context.Background(), admin, domain.SubmissionRef{ID: id, Kind: kind}, decision))
}

func feedIDs(result *domain.FeedResult) []string {
	ids := make([]string, 0, len(result.Submissions))
	for _, item := range result.Submissions {
		ids = append(ids, item.ID)
	}
	return ids
}
