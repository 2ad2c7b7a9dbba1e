package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/fieldops/field-report-service/internal/api/dto"
	"github.com/fieldops/field-report-service/internal/auth"
	"github.com/fieldops/field-report-service/internal/service"
)

// FeedHandler serves the activity feed, the pending badge and directory search.
type FeedHandler struct {
	feed      *service.FeedService
	directory *service.DirectoryService
}

// NewFeedHandler constructs handler.
func NewFeedHandler(feed *service.FeedService, directory *service.DirectoryService) *FeedHandler {
	return &FeedHandler{feed: feed, directory: directory}
}

// GetFeed GET /api/feed.
func (h *FeedHandler) GetFeed(c *fiber.Ctx) error {
	result, err := h.feed.GetFeed(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewFeedResponse(result)})
}

// Badge GET /api/feed/badge.
func (h *FeedHandler) Badge(c *fiber.Ctx) error {
	count, err := h.feed.PendingBadgeCount(c.UserContext(), auth.ActorFromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.BadgeResponse{Count: count}})
}

// SearchUsers GET /api/users/search?q=&exclude=id1,id2.
func (h *FeedHandler) SearchUsers(c *fiber.Ctx) error {
	entries, err := h.directory.SearchUsers(c.UserContext(), auth.ActorFromContext(c), c.Query("q"), splitCSV(c.Query("exclude")))
	if err != nil {
		return err
	}
	items := make([]dto.UserSearchResult, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.UserSearchResult{ID: e.ID, Name: e.Name})
	}
	return c.JSON(fiber.Map{"data": items})
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}
