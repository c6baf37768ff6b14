package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/cms-admin/internal/api/http"
	"github.com/spec-kit/cms-admin/internal/api/http/handlers"
	"github.com/spec-kit/cms-admin/internal/auth"
	"github.com/spec-kit/cms-admin/internal/config"
	"github.com/spec-kit/cms-admin/internal/events"
	"github.com/spec-kit/cms-admin/internal/observability"
	"github.com/spec-kit/cms-admin/internal/persistence"
	"github.com/spec-kit/cms-admin/internal/repository"
	"github.com/spec-kit/cms-admin/internal/service"
	"github.com/spec-kit/cms-admin/internal/worker"
)

func main() {
	createAdmin := flag.String("create-admin", "", "create or reset an admin account (password from ADMIN_PASSWORD) and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Auth.SecretFromDefault {
		logger.Warn("AUTH_JWT_SECRET not set; using the development default secret")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	stores := repository.NewStores(pg.PoolHandle())
	userService := service.NewUserService(stores.Users, logger)

	if *createAdmin != "" {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			logger.Fatal("ADMIN_PASSWORD is required with -create-admin")
		}
		user, err := userService.EnsureAdmin(ctx, *createAdmin, password)
		if err != nil {
			logger.Fatal("failed to create admin", zap.Error(err))
		}
		logger.Info("admin account ready", zap.String("user_id", user.ID), zap.String("username", user.Username))
		return
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	var denylist *auth.Denylist
	var revocations auth.RevocationChecker
	if cfg.Auth.RevocationEnabled {
		denylist = auth.NewDenylist(redis.Client, tokens.TTL())
		revocations = denylist
	}
	cookies := auth.CookieSettings{Name: cfg.Auth.CookieName, Secure: !cfg.App.IsDevelopment()}

	authService := service.NewAuthService(service.AuthDependencies{
		Users:     stores.Users,
		Tokens:    tokens,
		Passwords: auth.NewPasswordVerifier(cfg.Auth.LegacyPassword, logger),
		Denylist:  denylist,
		Logger:    logger,
	})
	authMiddleware := auth.NewMiddleware(auth.NewGuard(tokens, revocations, logger), cookies)

	dispatcher := events.NewInMemoryDispatcher()
	catalog := service.NewCatalog(stores, dispatcher, logger)
	mediaService := service.NewMediaService(stores.Media, dispatcher, logger, service.MediaOptions{
		Dir:       cfg.Media.Dir,
		URLPrefix: cfg.Media.URLPrefix,
		MaxSize:   int64(cfg.Media.MaxSizeMB) << 20,
	})
	settingsService := service.NewSettingsService(stores.Settings, stores.Homepage, dispatcher, logger)
	sitemapService := service.NewSitemapService(service.SitemapDependencies{
		Entries:  stores.SitemapEntries,
		Posts:    stores.Posts,
		Pages:    stores.Pages,
		Cache:    redis.Client,
		CacheTTL: cfg.Site.SitemapCacheTTL(),
		BaseURL:  cfg.Site.BaseURL,
		Logger:   logger,
	})
	worker.StartSitemapWorker(dispatcher, sitemapService)

	metrics := observability.NewMetrics()
	bodyLimit := cfg.App.BodyLimitMB
	if cfg.Media.MaxSizeMB+1 > bodyLimit {
		bodyLimit = cfg.Media.MaxSizeMB + 1
	}
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    bodyLimit << 20,
		ErrorHandler: httptransport.ErrorHandler(logger),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Auth:           handlers.NewAuthHandler(authService, cookies),
		Users:          handlers.NewUsersHandler(userService, authService),
		Posts:          handlers.NewPostsHandler(catalog.Posts),
		Pages:          handlers.NewPagesHandler(catalog.Pages),
		Categories:     handlers.NewCategoriesHandler(catalog.Categories),
		Apps:           handlers.NewAppsHandler(catalog.Apps),
		SitemapEntries: handlers.NewSitemapEntriesHandler(catalog.SitemapEntries),
		Media:          handlers.NewMediaHandler(mediaService),
		Settings:       handlers.NewSettingsHandler(settingsService),
		Sitemap:        handlers.NewSitemapHandler(sitemapService),
		AuthMiddleware: authMiddleware,
		LoginLimiter:   httptransport.LoginLimiter(cfg.Auth.LoginRatePerMinute),
		MediaDir:       cfg.Media.Dir,
		MediaURLPrefix: cfg.Media.URLPrefix,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
