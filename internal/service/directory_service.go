package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/fieldops/field-report-service/internal/domain"
	"github.com/fieldops/field-report-service/internal/repository"
	apperrors "github.com/fieldops/field-report-service/pkg/util/errorutil"
)

const (
	searchLimit = 10
	// searchSentinel sorts after every character a normalized name can hold.
	searchSentinel = "\uffff"
)

// DirectoryEntry is the public view of a user in search results.
type DirectoryEntry struct {
	ID   string
	Name string
}

// DirectoryService answers name lookups over activated users.
type DirectoryService struct {
	users repository.UserRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(users repository.UserRepository) *DirectoryService {
	return &DirectoryService{users: users}
}

// SearchUsers returns up to ten activated users whose normalized name starts
// with the normalized prefix, ordered by that name. Ids in exclude are skipped;
// entries that are not UUIDs cannot match a user and are ignored.
func (s *DirectoryService) SearchUsers(ctx context.Context, actor *domain.Actor, prefix string, exclude []string) ([]DirectoryEntry, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}

	entries := []DirectoryEntry{}
	key := domain.NormalizeName(prefix)
	if key == "" {
		return entries, nil
	}

	users, err := s.users.SearchByName(ctx, repository.UserSearchQuery{
		From:    key,
		To:      key + searchSentinel,
		Exclude: validIDs(exclude),
		Limit:   searchLimit,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for _, u := range users {
		entries = append(entries, DirectoryEntry{ID: u.ID, Name: u.Name})
	}
	return entries, nil
}

func validIDs(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, err := uuid.Parse(id); err == nil {
			valid = append(valid, id)
		}
	}
	return valid
}
