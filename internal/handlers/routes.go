package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thewebvalue/task-management-api/internal/auth"
	"github.com/thewebvalue/task-management-api/internal/middleware"
	"github.com/thewebvalue/task-management-api/internal/services"
)

// Services are the collaborators the HTTP layer is built on.
type Services struct {
	Tokens *auth.TokenService
	Auth   *services.AuthService
	Tasks  *services.TaskService
	Admin  *services.AdminService
}

// Health reports that the process is serving requests.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Task Management API is running",
	})
}

// RegisterRoutes mounts every API route on api.
func RegisterRoutes(api *gin.RouterGroup, svc Services) {
	authHandler := NewAuthHandler(svc.Auth)
	taskHandler := NewTaskHandler(svc.Tasks)
	adminHandler := NewAdminHandler(svc.Admin)

	requireAuth := middleware.RequireAuth(svc.Tokens)

	// Auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh-token", authHandler.RefreshToken)
		authGroup.POST("/users", requireAuth, middleware.RequireAdmin(), authHandler.CreateUser)
		authGroup.GET("/profile", requireAuth, authHandler.GetProfile)
	}

	// Task routes (protected)
	tasks := api.Group("/tasks")
	tasks.Use(requireAuth)
	{
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("", taskHandler.ListTasks)
		tasks.GET("/:id", middleware.RequireTaskAccess(svc.Tasks), taskHandler.GetTask)
		tasks.PATCH("/:id", taskHandler.UpdateTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.PATCH("/:id/status", taskHandler.UpdateTaskStatus)
	}

	// User routes (owner or admin)
	users := api.Group("/users")
	users.Use(requireAuth)
	{
		users.GET("/:id/performance", adminHandler.GetPerformanceHistory)
	}

	// Admin routes
	admin := api.Group("/admin")
	admin.Use(requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users", authHandler.CreateUser)
		admin.GET("/users/:id/analytics", adminHandler.GetUserAnalytics)
		admin.POST("/users/:id/performance", adminHandler.UpsertPerformanceScore)
		admin.GET("/analytics", adminHandler.GetSystemAnalytics)
		admin.GET("/export", adminHandler.ExportData)
	}
}
