package server

import (
	"github.com/labstack/echo/v4"

	"example.com/cashdash/backend/internal/handlers"
)

type routes struct {
	health       echo.HandlerFunc
	profiles     *handlers.ProfileHandler
	categories   *handlers.CategoryHandler
	budgets      *handlers.BudgetHandler
	expenses     *handlers.ExpenseHandler
	dashboard    *handlers.DashboardHandler
	achievements *handlers.AchievementHandler
	events       *handlers.EventHandler
	auth         echo.MiddlewareFunc
	rateLimiter  echo.MiddlewareFunc
}

func registerRoutes(e *echo.Echo, r routes) {
	e.GET("/health", r.health)

	api := e.Group("/api", r.rateLimiter, r.auth)

	api.GET("/profile", r.profiles.Get)
	api.PATCH("/profile", r.profiles.Update)
	api.POST("/profiles/ensure", r.profiles.Ensure)

	api.GET("/categories", r.categories.List)
	api.POST("/categories", r.categories.Create)

	budgets := api.Group("/budgets")
	budgets.GET("", r.budgets.List)
	budgets.POST("", r.budgets.Create)
	budgets.PATCH("", r.budgets.Update)
	budgets.GET("/status", r.budgets.Status)
	budgets.GET("/categories", r.categories.List)

	expenses := api.Group("/expenses")
	expenses.POST("", r.expenses.Create)
	expenses.GET("/categories", r.expenses.ByCategory)
	expenses.GET("/recent", r.expenses.Recent)
	expenses.GET("/monthly", r.expenses.Monthly)
	expenses.GET("/heatmap", r.dashboard.Heatmap)

	api.GET("/charts/daily", r.dashboard.Daily)
	api.GET("/achievements", r.achievements.List)
	api.GET("/events", r.events.Stream)
}
