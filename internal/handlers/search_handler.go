package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/services"
)

const defaultSearchLimit = 5

type SearchHandler struct {
	index services.CandidateIndex
}

func NewSearchHandler(index services.CandidateIndex) *SearchHandler {
	return &SearchHandler{index: index}
}

// HandleSearch handles GET /candidates/search?q=&limit=
func (h *SearchHandler) HandleSearch(c *fiber.Ctx) error {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "query parameter 'q' is required",
		})
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= 50 {
			limit = v
		}
	}

	results, err := h.index.Search(c.Context(), query, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "candidate search failed",
		})
	}

	return c.JSON(models.CandidateSearchResponse{
		Query:   query,
		Results: results,
	})
}
