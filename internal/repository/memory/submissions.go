package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/repository"
)

var errDuplicateEmail = errors.New("memory: email already exists")

// reviewTable implements the review operations for any row type exposing the
// shared review columns through key.
type reviewTable[T any] struct {
	store *Store
	rows  *[]T
	key   func(*T) (id, submittedBy string, review *domain.Review, solution *string)
}

func (t reviewTable[T]) find(id string) (*T, bool) {
	for i := range *t.rows {
		row := &(*t.rows)[i]
		if rowID, _, _, _ := t.key(row); rowID == id {
			return row, true
		}
	}
	return nil, false
}

func (t reviewTable[T]) GetReview(_ context.Context, id string) (*repository.ReviewRecord, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	row, ok := t.find(id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	rowID, submittedBy, review, _ := t.key(row)
	return &repository.ReviewRecord{ID: rowID, SubmittedBy: submittedBy, Review: cloneReview(*review)}, nil
}

func (t reviewTable[T]) UpdateReview(_ context.Context, id string, review domain.Review) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	row, ok := t.find(id)
	if !ok {
		return pgx.ErrNoRows
	}
	_, _, stored, _ := t.key(row)
	viewed := stored.ViewedBySubmitter
	*stored = cloneReview(review)
	if review.ViewedBySubmitter == nil {
		stored.ViewedBySubmitter = viewed
	}
	return nil
}

func (t reviewTable[T]) UpdateSolution(_ context.Context, id, solution string) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	row, ok := t.find(id)
	if !ok {
		return pgx.ErrNoRows
	}
	_, _, _, stored := t.key(row)
	*stored = solution
	return nil
}

func (t reviewTable[T]) SetViewed(_ context.Context, id string, viewed bool) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	row, ok := t.find(id)
	if !ok {
		return pgx.ErrNoRows
	}
	_, _, review, _ := t.key(row)
	review.ViewedBySubmitter = &viewed
	return nil
}

func (t reviewTable[T]) CountByStatus(_ context.Context, status domain.SubmissionStatus) (int, error) {
	t.store.mu.RLock()
	defer t.store.mu.RUnlock()
	count := 0
	for i := range *t.rows {
		if _, _, review, _ := t.key(&(*t.rows)[i]); review.Status == status {
			count++
		}
	}
	return count, nil
}

// visible applies the same predicate the SQL repositories render.
func (t reviewTable[T]) visible(row *T, filter repository.SubmissionFilter) bool {
	if filter.VisibleTo == nil {
		return true
	}
	_, submittedBy, review, _ := t.key(row)
	return submittedBy == *filter.VisibleTo || review.Status == domain.StatusApproved
}

type complaintRepo struct {
	reviewTable[domain.Complaint]
}

func (r *complaintRepo) Create(_ context.Context, c *domain.Complaint) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	c.ID = uuid.NewString()
	c.CreatedAt = r.store.stamp()
	*r.rows = append(*r.rows, cloneComplaint(*c))
	return nil
}

func (r *complaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	row, ok := r.find(id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	c := cloneComplaint(*row)
	return &c, nil
}

func (r *complaintRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]domain.Complaint, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []domain.Complaint
	for i := range *r.rows {
		if row := &(*r.rows)[i]; r.visible(row, filter) {
			result = append(result, cloneComplaint(*row))
		}
	}
	return result, nil
}

type serviceReportRepo struct {
	reviewTable[domain.ServiceReport]
}

func (r *serviceReportRepo) Create(_ context.Context, sr *domain.ServiceReport) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	sr.ID = uuid.NewString()
	sr.CreatedAt = r.store.stamp()
	*r.rows = append(*r.rows, cloneServiceReport(*sr))
	return nil
}

func (r *serviceReportRepo) GetByID(_ context.Context, id string) (*domain.ServiceReport, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	row, ok := r.find(id)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	sr := cloneServiceReport(*row)
	return &sr, nil
}

func (r *serviceReportRepo) List(_ context.Context, filter repository.SubmissionFilter) ([]domain.ServiceReport, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var result []domain.ServiceReport
	for i := range *r.rows {
		if row := &(*r.rows)[i]; r.visible(row, filter) {
			result = append(result, cloneServiceReport(*row))
		}
	}
	return result, nil
}

func sortUsersBySearchName(users []domain.User) {
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].SearchName < users[j].SearchName
	})
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneReview(r domain.Review) domain.Review {
	out := domain.Review{Status: r.Status, ApprovedBy: cloneString(r.ApprovedBy)}
	if r.ApprovedAt != nil {
		at := *r.ApprovedAt
		out.ApprovedAt = &at
	}
	if r.ViewedBySubmitter != nil {
		v := *r.ViewedBySubmitter
		out.ViewedBySubmitter = &v
	}
	return out
}

func cloneUser(u domain.User) domain.User {
	u.Email = cloneString(u.Email)
	return u
}

func cloneComplaint(c domain.Complaint) domain.Complaint {
	c.ImageRef = cloneString(c.ImageRef)
	c.Review = cloneReview(c.Review)
	return c
}

func cloneServiceReport(sr domain.ServiceReport) domain.ServiceReport {
	sr.ImageRef = cloneString(sr.ImageRef)
	sr.Review = cloneReview(sr.Review)
	return sr
}

func cloneFeedback(fb domain.Feedback) domain.Feedback {
	fb.ContactEmail = cloneString(fb.ContactEmail)
	fb.ImageRef = cloneString(fb.ImageRef)
	return fb
}
