package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Params struct {
	Page  int
	Limit int
}

// Offset is the number of rows to skip for the page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParseFromRequest reads page and limit from the query string, falling back to
// page 1 and DefaultLimit. Limit is capped at MaxLimit.
func ParseFromRequest(c *fiber.Ctx) Params {
	page, err := strconv.Atoi(c.Query("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

// Meta creates the pagination block returned next to a page of data
func Meta(p Params, total int64) fiber.Map {
	totalPages := total / int64(p.Limit)
	if total%int64(p.Limit) > 0 {
		totalPages++
	}

	return fiber.Map{
		"current_page": p.Page,
		"per_page":     p.Limit,
		"total_items":  total,
		"total_pages":  totalPages,
	}
}
