package router

import (
	"context"
	"net/http"
	"time"

	healthsvc "mortgage-dashboard/internal/application/health"
	pkgsvc "mortgage-dashboard/internal/application/packages"
	"mortgage-dashboard/internal/application/session"
	"mortgage-dashboard/internal/config"
	"mortgage-dashboard/internal/infrastructure/database"
	authhandler "mortgage-dashboard/internal/interfaces/handlers/auth"
	healthhandler "mortgage-dashboard/internal/interfaces/handlers/health"
	pkghandler "mortgage-dashboard/internal/interfaces/handlers/packages"
	"mortgage-dashboard/internal/metrics"
	"mortgage-dashboard/internal/middleware"
	"mortgage-dashboard/internal/pkg/constants"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const backfillTimeout = 2 * time.Minute

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// App is the wired server with the collaborators that need an explicit lifecycle.
type App struct {
	Fiber    *fiber.App
	DB       *gorm.DB
	Rdb      *redis.Client
	Sessions *session.Provider

	cfg      *config.Config
	store    pkgsvc.Store
	backfill *cron.Cron
}

func openRedis(url string) (*redis.Client, error) {
	if url == "" {
		return nil, nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func tokenVerifier(cfg *config.Config, supabase *session.SupabaseAuthClient) session.TokenVerifier {
	if cfg.SupabaseJWTSecret != "" {
		return session.NewJWTVerifier(cfg.SupabaseJWTSecret)
	}
	return supabase
}

// CreateApp opens the database and Redis and registers every route. Call Start before
// serving and Shutdown after.
func CreateApp(cfg *config.Config) (*App, error) {
	rdb, err := openRedis(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if database.IsSQLite(cfg.DatabaseURL) {
			if err := database.AutoMigrate(db); err != nil {
				return nil, err
			}
		}
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.NewErrorHandler(rdb),
	})

	app.Use(metrics.RequestCounter())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.HealthMarker(rdb))

	supabase := &session.SupabaseAuthClient{BaseURL: cfg.SupabaseURL, AnonKey: cfg.SupabaseAnonKey}

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if db != nil {
		hh.DB = &gormDBPinger{db: db}
	}
	if cfg.SupabaseURL != "" {
		hh.External = map[string]healthsvc.Pinger{"supabase_auth": supabase}
	}
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)
	app.Get("/metrics", metrics.Handler())

	var roles session.RoleLookup = noProfiles{}
	if db != nil {
		roles = &session.GormProfiles{DB: db}
	}
	provider := session.NewProvider(tokenVerifier(cfg, supabase), roles, rdb)
	provider.OnChange(func(ev session.Event) {
		log.Info().Str("event", string(ev.Type)).Str("user_id", ev.UserID).Msg("auth state changed")
	})
	requireSession := middleware.RequireSession(provider, cfg.AuthDisabled)
	if cfg.AuthDisabled {
		log.Warn().Msg("AUTH_DISABLED is set: every request runs as an anonymous admin")
	}

	ah := &authhandler.Handlers{Publisher: provider, WebhookSecret: cfg.AuthWebhookSecret}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Get("/me", requireSession, ah.Me)
	authGroup.Post("/events", ah.Events)

	out := &App{Fiber: app, DB: db, Rdb: rdb, Sessions: provider, cfg: cfg}

	if db != nil {
		store := &pkgsvc.GormStore{DB: db}
		svc := &pkgsvc.Service{
			Store:    store,
			Editor:   &pkgsvc.Editor{Store: store},
			PageSize: cfg.PageSize,
		}
		ph := &pkghandler.Handlers{Service: svc}
		pg := app.Group("/api/v1/packages", requireSession)
		pg.Get("/", middleware.AuthorizePermission(constants.ViewPackages), ph.List)
		pg.Get("/options", middleware.AuthorizePermission(constants.ViewPackages), ph.Options)
		pg.Get("/:id", middleware.AuthorizePermission(constants.ViewPackages), ph.Get)
		pg.Post("/", middleware.AuthorizePermission(constants.ManagePackages), ph.Create)
		pg.Put("/:id", middleware.AuthorizePermission(constants.ManagePackages), ph.Update)
		pg.Delete("/:id", middleware.AuthorizePermission(constants.DeletePackages), ph.Delete)
		out.store = store
	} else {
		log.Warn().Msg("no database configured: package routes are disabled")
	}

	return out, nil
}

// noProfiles answers every role lookup with no role when no database is configured.
type noProfiles struct{}

func (noProfiles) ProfileRole(ctx context.Context, userID string) (string, error) {
	return "", nil
}

// Start subscribes to auth events, runs the tag backfill once and schedules it.
func (a *App) Start(ctx context.Context) error {
	if err := a.Sessions.Start(ctx); err != nil {
		return err
	}
	if a.store == nil {
		return nil
	}
	go func() {
		bctx, cancel := context.WithTimeout(context.Background(), backfillTimeout)
		defer cancel()
		n, err := pkgsvc.Backfill(bctx, a.store)
		if err != nil {
			log.Error().Err(err).Msg("initial tag backfill failed")
			return
		}
		log.Info().Int("updated", n).Msg("initial tag backfill finished")
	}()
	c, err := pkgsvc.ScheduleBackfill(a.cfg.TagBackfillSchedule, a.store, backfillTimeout)
	if err != nil {
		return err
	}
	a.backfill = c
	return nil
}

// Shutdown stops the scheduler and the event subscription, drains the server and closes
// the connections.
func (a *App) Shutdown(ctx context.Context) error {
	if a.backfill != nil {
		<-a.backfill.Stop().Done()
	}
	if err := a.Sessions.Stop(); err != nil {
		log.Warn().Err(err).Msg("session: unsubscribe failed")
	}
	err := a.Fiber.ShutdownWithContext(ctx)
	if a.Rdb != nil {
		_ = a.Rdb.Close()
	}
	if a.DB != nil {
		if sqlDB, dbErr := a.DB.DB(); dbErr == nil {
			_ = sqlDB.Close()
		}
	}
	return err
}

func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
