package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thewebvalue/task-management-api/internal/constants"
)

// PaginationParams is a resolved page request. Offset is derived from Page and Limit.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// NewPagination clamps page and limit into range. Out-of-range limits fall back
// to the default page size.
func NewPagination(page, limit int) PaginationParams {
	if page < 1 {
		page = 1
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}
	return PaginationParams{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// GetPaginationParams reads ?page and ?limit. Unparseable values are treated as absent.
func GetPaginationParams(c *gin.Context) PaginationParams {
	return NewPagination(queryInt(c, "page", 1), queryInt(c, "limit", constants.DefaultPageSize))
}

// Describe builds the response metadata for a page out of total rows.
func (p PaginationParams) Describe(total int64) PaginationResponse {
	pages := 0
	if p.Limit > 0 {
		pages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return PaginationResponse{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    p.Page < pages,
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
