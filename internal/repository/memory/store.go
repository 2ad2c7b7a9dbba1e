// Package memory provides in-process repositories used when no Postgres DSN
// is configured, and as fixtures in tests. Rows are kept in insertion order.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/repository"
)

// Store holds every collection behind a single lock.
type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      []domain.User
	complaints []domain.Complaint
	reports    []domain.ServiceReport
	feedback   []domain.Feedback
}

// NewStore creates an empty store. now stamps created_at; nil uses time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now}
}

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s} }

// Complaints returns the complaint repository view.
func (s *Store) Complaints() repository.ComplaintRepository {
	return &complaintRepo{reviewTable[domain.Complaint]{
		store: s,
		rows:  &s.complaints,
		key: func(c *domain.Complaint) (string, string, *domain.Review, *string) {
			return c.ID, c.SubmittedBy, &c.Review, &c.Solution
		},
	}}
}

// ServiceReports returns the service report repository view.
func (s *Store) ServiceReports() repository.ServiceReportRepository {
	return &serviceReportRepo{reviewTable[domain.ServiceReport]{
		store: s,
		rows:  &s.reports,
		key: func(sr *domain.ServiceReport) (string, string, *domain.Review, *string) {
			return sr.ID, sr.SubmittedBy, &sr.Review, &sr.Solution
		},
	}}
}

// Feedback returns the feedback repository view.
func (s *Store) Feedback() repository.FeedbackRepository { return &feedbackRepo{s} }

func (s *Store) stamp() time.Time {
	return s.now().UTC()
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if user.Email != nil {
		for i := range r.s.users {
			if e := r.s.users[i].Email; e != nil && strings.EqualFold(*e, *user.Email) {
				return errDuplicateEmail
			}
		}
	}
	user.ID = uuid.NewString()
	user.CreatedAt = r.s.stamp()
	user.UpdatedAt = user.CreatedAt
	r.s.users = append(r.s.users, cloneUser(*user))
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == user.ID {
			user.UpdatedAt = r.s.stamp()
			r.s.users[i] = cloneUser(*user)
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			u := cloneUser(r.s.users[i])
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := range r.s.users {
		if e := r.s.users[i].Email; e != nil && *e == email {
			u := cloneUser(r.s.users[i])
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepo) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.User
	for i := range r.s.users {
		if _, ok := want[r.s.users[i].ID]; ok {
			result = append(result, cloneUser(r.s.users[i]))
		}
	}
	return result, nil
}

func (r *userRepo) SearchByName(_ context.Context, q repository.UserSearchQuery) ([]domain.User, error) {
	excluded := make(map[string]struct{}, len(q.Exclude))
	for _, id := range q.Exclude {
		excluded[id] = struct{}{}
	}

	r.s.mu.RLock()
	var matches []domain.User
	for i := range r.s.users {
		u := r.s.users[i]
		if !u.AccountActivated || u.SearchName < q.From || u.SearchName >= q.To {
			continue
		}
		if _, skip := excluded[u.ID]; skip {
			continue
		}
		matches = append(matches, cloneUser(u))
	}
	r.s.mu.RUnlock()

	sortUsersBySearchName(matches)
	if q.Limit > 0 && len(matches) > q.Limit {
		matches = matches[:q.Limit]
	}
	return matches, nil
}

type feedbackRepo struct{ s *Store }

func (r *feedbackRepo) Create(_ context.Context, fb *domain.Feedback) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	fb.ID = uuid.NewString()
	fb.CreatedAt = r.s.stamp()
	r.s.feedback = append(r.s.feedback, cloneFeedback(*fb))
	return nil
}

func (r *feedbackRepo) List(_ context.Context) ([]domain.Feedback, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	result := make([]domain.Feedback, 0, len(r.s.feedback))
	for _, fb := range r.s.feedback {
		result = append(result, cloneFeedback(fb))
	}
	return result, nil
}
