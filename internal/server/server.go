package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"

	"example.com/cashdash/backend/internal/alerts"
	"example.com/cashdash/backend/internal/auth"
	"example.com/cashdash/backend/internal/config"
	"example.com/cashdash/backend/internal/handlers"
	"example.com/cashdash/backend/internal/notifications"
	"example.com/cashdash/backend/internal/repository"
)

// New собирает HTTP-сервер Echo с роутами и зависимостями.
func New(cfg config.Config, logger *slog.Logger, db *pgxpool.Pool, publisher alerts.Publisher) *echo.Echo {
	if logger == nil {
		logger = slog.Default()
	}
	if publisher == nil {
		publisher = alerts.Noop{}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(logger))
	e.Use(corsMiddleware(cfg.App))

	verifier := auth.NewTokenVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer(), cfg.Auth.JWTAudience)
	clock := handlers.Clock{Location: cfg.App.Location}

	profileRepo := repository.NewProfileRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	expenseRepo := repository.NewExpenseRepository(db)
	notificationHub := notifications.NewHub()

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}

	registerRoutes(e, routes{
		health:       handlers.Health(pinger),
		profiles:     handlers.NewProfileHandler(profileRepo),
		categories:   handlers.NewCategoryHandler(categoryRepo),
		budgets:      handlers.NewBudgetHandler(categoryRepo, budgetRepo, expenseRepo, notificationHub, clock),
		expenses:     handlers.NewExpenseHandler(categoryRepo, budgetRepo, expenseRepo, profileRepo, notificationHub, publisher, clock),
		dashboard:    handlers.NewDashboardHandler(budgetRepo, expenseRepo, clock),
		achievements: handlers.NewAchievementHandler(profileRepo, expenseRepo, clock),
		events:       handlers.NewEventHandler(notificationHub),
		auth:         auth.Middleware(verifier),
		rateLimiter:  apiRateLimiter(cfg.Auth),
	})

	return e
}

// NewHTTPServer создает net/http сервер с заданными таймаутами.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.String("remote_ip", v.RemoteIP),
				slog.String("request_id", v.RequestID),
				slog.Duration("latency", v.Latency),
			}

			if user, ok := auth.UserFromContext(c); ok {
				attrs = append(attrs, slog.String("user_id", user.ID.String()))
			}

			if v.Error != nil {
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}

			msg := "request completed"
			if v.Status >= http.StatusInternalServerError {
				logger.LogAttrs(c.Request().Context(), slog.LevelError, msg, attrs...)
				return nil
			}

			logger.LogAttrs(c.Request().Context(), slog.LevelInfo, msg, attrs...)
			return nil
		},
	})
}

func corsMiddleware(cfg config.AppConfig) echo.MiddlewareFunc {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: origins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderAuthorization, echo.HeaderContentType},
	})
}

func apiRateLimiter(cfg config.AuthConfig) echo.MiddlewareFunc {
	limit := rate.Limit(float64(cfg.RateLimitPerMinute) / 60.0)
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      limit,
		Burst:     cfg.RateLimitBurst,
		ExpiresIn: time.Minute,
	})

	return middleware.RateLimiter(store)
}
