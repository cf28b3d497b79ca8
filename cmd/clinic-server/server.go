package main

import (
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/clinic/clinic/internal/config"
	"github.com/clinic/clinic/internal/domain/doctor"
	"github.com/clinic/clinic/internal/domain/followup"
	"github.com/clinic/clinic/internal/domain/reminder"
	"github.com/clinic/clinic/internal/domain/statistics"
	"github.com/clinic/clinic/internal/domain/visit"
	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/internal/platform/middleware"
	"github.com/clinic/clinic/internal/platform/notification"
	"github.com/clinic/clinic/internal/platform/websocket"
)

// stores bundles one backend's repositories. pinger is nil for the memory
// backend.
type stores struct {
	doctors   doctor.Repository
	visits    visit.Repository
	followups followup.Repository
	reminders reminder.Repository
	tx        db.Transactor
	pinger    db.Pinger
}

func memoryStores() stores {
	return stores{
		doctors:   doctor.NewRepoMem(),
		visits:    visit.NewRepoMem(),
		followups: followup.NewRepoMem(),
		reminders: reminder.NewRepoMem(),
		tx:        db.NoopTransactor{},
	}
}

func postgresStores(pool *pgxpool.Pool) stores {
	return stores{
		doctors:   doctor.NewRepoPG(pool),
		visits:    visit.NewRepoPG(pool),
		followups: followup.NewRepoPG(pool),
		reminders: reminder.NewRepoPG(pool),
		tx:        db.NewPoolTransactor(pool),
		pinger:    pool,
	}
}

type services struct {
	doctors   *doctor.Service
	visits    *visit.Service
	followups *followup.Service
	reminders *reminder.Service
	stats     *statistics.Service
}

// newServices wires the domain services. The follow-up tracker and the
// reminder drafter read back from the visit ledger, so they get it after
// construction.
func newServices(st stores, events websocket.Publisher) *services {
	doctors := doctor.NewService(st.doctors)
	followups := followup.NewService(st.followups, st.tx, events)
	reminders := reminder.NewService(st.reminders, notification.NewTemplateEngine(), events)
	visits := visit.NewService(st.visits, st.tx, doctors, followups, reminders)
	followups.SetPatients(visits)
	reminders.SetSummarySource(visits)

	return &services{
		doctors:   doctors,
		visits:    visits,
		followups: followups,
		reminders: reminders,
		stats:     statistics.NewService(visits, doctors),
	}
}

func newServer(cfg *config.Config, logger zerolog.Logger, st stores) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderContentType, middleware.RequestIDHeader},
	}))
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout, "/api/ws"))

	hub := websocket.NewHub(logger)
	svc := newServices(st, hub)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})
	e.GET("/health/db", db.HealthHandler(st.pinger))

	api := e.Group("/api")
	rl := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}
	if rl.RequestsPerSecond <= 0 {
		rl = middleware.DefaultRateLimitConfig()
	}
	api.Use(middleware.RateLimit(rl))

	api.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "Clinic follow-up API"})
	})

	doctor.NewHandler(svc.doctors).RegisterRoutes(api)
	visit.NewHandler(svc.visits).RegisterRoutes(api)
	followup.NewHandler(svc.followups).RegisterRoutes(api)
	reminder.NewHandler(svc.reminders).RegisterRoutes(api)
	statistics.NewHandler(svc.stats).RegisterRoutes(api)
	websocket.NewHandler(hub, cfg.CORSOrigins).RegisterRoutes(api)

	return e
}
