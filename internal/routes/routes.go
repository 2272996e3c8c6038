package routes

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/resume-ranker/internal/config"
	apperrors "alfredoptarigan/resume-ranker/internal/errors"
	"alfredoptarigan/resume-ranker/internal/handlers"
	"alfredoptarigan/resume-ranker/internal/metrics"
)

const (
	AppName = "Resume Ranker API"
	Version = "1.0.0"
)

// Handlers groups the endpoint handlers. Run may be nil when run history
// is disabled.
type Handlers struct {
	Extract *handlers.ExtractHandler
	Score   *handlers.ScoreHandler
	Suggest *handlers.SuggestHandler
	Run     *handlers.RunHandler
}

// NewApp builds the fiber app with middleware and all routes registered.
func NewApp(cfg config.ServerConfig, h Handlers, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      AppName,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
		ErrorHandler: handlers.ErrorHandler(log),
	})

	app.Use(recover.New())
	if cfg.Env != "test" {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		ExposeHeaders: handlers.HeaderFailedResumes + ", " + handlers.HeaderRunID + ", Content-Disposition",
	}))
	app.Use(requestMetrics())

	Register(app, h)
	return app
}

// Register mounts every route on app.
func Register(app *fiber.App, h Handlers) {
	endpoints := []string{
		"POST /extract-criteria",
		"POST /score-resumes",
		"POST /suggest-improvements",
		"GET /health",
		"GET /metrics",
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Post("/extract-criteria", h.Extract.HandleExtract)
	app.Post("/score-resumes", h.Score.HandleScore)
	app.Post("/suggest-improvements", h.Suggest.HandleSuggest)

	if h.Run != nil {
		api := app.Group("/api/v1")
		api.Get("/runs/:id", h.Run.HandleGetRun)
		endpoints = append(endpoints, "GET /api/v1/runs/:id")
	}

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":   AppName,
			"version":   Version,
			"endpoints": endpoints,
		})
	})
}

func requestMetrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// the error handler has not written the status yet
		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if appErr, ok := apperrors.As(err); ok {
				status = appErr.HTTPStatus()
			} else if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		route := c.Route().Path
		metrics.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}
