package api

import (
	"net/http"

	authdomain "taskboard/internal/auth/domain"
	"taskboard/internal/auth/delivery"
	authUsecase "taskboard/internal/auth/usecase"
	taskDelivery "taskboard/internal/task/delivery"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUsecase authUsecase.AuthUsecase, taskHandler *taskDelivery.TaskHandler) {
	authHandler := delivery.NewAuthHandler(authUsecase)
	requireAuth := delivery.AuthMiddleware(authUsecase)

	// Health check (no auth required)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	users := r.Group("/users")
	{
		users.POST("/signup", authHandler.Signup)
		users.POST("/login", authHandler.Login)
		users.POST("/refresh", authHandler.RefreshToken)
		users.POST("/logout", authHandler.Logout)

		me := users.Group("/me", requireAuth)
		{
			me.GET("", authHandler.Me)
			me.POST("/devices", authHandler.RegisterDevice)
			me.DELETE("/devices/:token", authHandler.UnregisterDevice)
		}

		// Admin-style user management
		admin := users.Group("", requireAuth, delivery.RequireRole(authdomain.RoleAdmin))
		{
			admin.GET("", authHandler.ListUsers)
			admin.POST("", authHandler.CreateUser)
			admin.GET("/:id", authHandler.GetUser)
			admin.PUT("/:id", authHandler.UpdateUser)
			admin.PATCH("/:id", authHandler.UpdateUser)
			admin.DELETE("/:id", authHandler.DeleteUser)
		}
	}

	// Task routes (protected, owner scoped)
	tasks := r.Group("/tasks", requireAuth)
	{
		tasks.GET("", taskHandler.GetTasks)
		tasks.POST("", taskHandler.CreateTask)
		tasks.GET("/stats", taskHandler.GetStats)
		tasks.GET("/:id", taskHandler.GetTaskByID)
		tasks.PUT("/:id", taskHandler.ReplaceTask)
		tasks.PATCH("/:id", taskHandler.PatchTask)
		tasks.DELETE("/:id", taskHandler.DeleteTask)
		tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
		tasks.GET("/:id/activity", taskHandler.GetActivity)
		tasks.POST("/:id/subtasks", taskHandler.AddSubtask)
		tasks.PATCH("/:id/subtasks/:subtaskId", taskHandler.UpdateSubtask)
		tasks.DELETE("/:id/subtasks/:subtaskId", taskHandler.DeleteSubtask)
	}

	r.GET("/search", requireAuth, taskHandler.Search)
}
