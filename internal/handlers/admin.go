package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thewebvalue/task-management-api/internal/dto"
	apierrors "github.com/thewebvalue/task-management-api/internal/errors"
	"github.com/thewebvalue/task-management-api/internal/services"
	"github.com/thewebvalue/task-management-api/internal/utils"
)

// AdminHandler serves the admin-only analytics, scoring and export routes and
// the owner-or-admin performance view.
type AdminHandler struct {
	adminService *services.AdminService
}

func NewAdminHandler(adminService *services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

// ListUsers returns every user with assigned and completed task counts.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, err, "An error occurred while fetching users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *AdminHandler) GetUserAnalytics(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	analytics, err := h.adminService.UserAnalytics(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err, "An error occurred while fetching user analytics")
		return
	}

	c.JSON(http.StatusOK, dto.ToUserAnalyticsResponse(analytics))
}

// UpsertPerformanceScore records the user's score for a month.
func (h *AdminHandler) UpsertPerformanceScore(c *gin.Context) {
	userID, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	type ScoreRequest struct {
		Score *int   `json:"score" binding:"required"`
		Month string `json:"month" binding:"required"`
		Notes string `json:"notes"`
	}

	var req ScoreRequest
	if !bindJSON(c, &req, "Score and month are required") {
		return
	}
	month, _, err := utils.ParseDateOrTime(req.Month)
	if err != nil {
		apierrors.BadRequest(c, sentence(services.ErrMonthRequired.Error()))
		return
	}

	score, err := h.adminService.UpsertPerformanceScore(c.Request.Context(), userID, services.UpsertScoreInput{
		Score: *req.Score,
		Month: month,
		Notes: req.Notes,
	})
	if err != nil {
		respondError(c, err, "An error occurred while updating performance score")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Performance score updated successfully",
		"performance_score": dto.ToPerformanceScoreDTO(*score),
	})
}

func (h *AdminHandler) GetSystemAnalytics(c *gin.Context) {
	analytics, err := h.adminService.SystemAnalytics(c.Request.Context())
	if err != nil {
		respondError(c, err, "An error occurred while fetching system analytics")
		return
	}

	c.JSON(http.StatusOK, dto.ToSystemAnalyticsResponse(analytics))
}

// ExportData returns tasks, users or performance scores as JSON rows.
func (h *AdminHandler) ExportData(c *gin.Context) {
	exportType := services.ExportType(c.Query("type"))
	if exportType == "" {
		apierrors.BadRequest(c, "Export type is required")
		return
	}

	dates, err := utils.ParseDateRange(c.Query("startDate"), c.Query("endDate"))
	if err != nil {
		apierrors.BadRequest(c, sentence(err.Error()))
		return
	}

	result, err := h.adminService.Export(c.Request.Context(), services.ExportInput{Type: exportType, Range: dates})
	if err != nil {
		respondError(c, err, "An error occurred while exporting data")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"type": result.Type,
		"data": dto.ToExportRows(result),
	})
}

// GetPerformanceHistory returns a user's scores to that user or an admin.
func (h *AdminHandler) GetPerformanceHistory(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id", "user ID")
	if !ok {
		return
	}

	scores, err := h.adminService.GetPerformanceHistory(c.Request.Context(), identity, userID)
	if err != nil {
		respondError(c, err, "An error occurred while fetching performance history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"performance_history": dto.ToPerformanceScoreDTOs(scores)})
}
