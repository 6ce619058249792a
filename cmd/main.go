package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"movie-discovery-client/internal/config"
	"movie-discovery-client/internal/database"
	"movie-discovery-client/internal/favorites"
	"movie-discovery-client/internal/handler"
	"movie-discovery-client/internal/kvstore"
	"movie-discovery-client/internal/logging"
	"movie-discovery-client/internal/middleware"
	"movie-discovery-client/internal/proxy"
	"movie-discovery-client/internal/tmdb"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Structured logging
	logCloser := logging.Setup(cfg.Log)
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Persistent slot for favorites
	kv, closeKV, err := kvstore.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open favorites store", "backend", cfg.KV.Backend, "error", err)
		os.Exit(1)
	}
	defer closeKV()

	// Catalog client, direct or through the proxy
	endpoint := cfg.CatalogEndpoint()
	catalog := tmdb.NewClient(endpoint, cfg.TMDB.Timeout)
	slog.Info("catalog endpoint resolved", "base_url", endpoint.BaseURL, "proxied", endpoint.Proxied())
	if cfg.UnservedSelfProxy() {
		slog.Warn("catalog proxy points at this process but TMDB_API_TOKEN is unset, catalog calls will fail; set TMDB_API_TOKEN or CATALOG_PROXY_URL",
			"proxy_url", cfg.TMDB.ProxyURL)
	}

	store := favorites.NewStore(kv, cfg.KV.FavoriteKey)

	app := fiber.New(fiber.Config{
		AppName:      "Movie Discovery Client",
		ServerHeader: "Movie-Discovery-Client",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			slog.Error("unhandled error", "error", err, "status", code)
			return c.Status(code).JSON(handler.ErrorResponse{Error: err.Error()})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	// Swagger docs
	swaggerYAML, err := os.ReadFile(cfg.Server.SwaggerPath)
	if err != nil {
		slog.Warn("swagger.yaml not found, swagger UI will be unavailable", "error", err)
	} else {
		handler.RegisterSwagger(app, "Movie Discovery Client", swaggerYAML)
	}

	// API routes
	handler.RegisterRoutes(app.Group("/api/v1"),
		handler.NewCatalogHandler(catalog),
		handler.NewFavoritesHandler(store))

	// Same-origin catalog proxy, only when this process holds the credential
	if cfg.TMDB.APIToken != "" {
		group := app.Group(config.ProxyPath)
		if cfg.Server.RateLimitMax > 0 {
			rdb, err := database.NewRedis(ctx, cfg.Redis)
			if err != nil {
				slog.Warn("Redis unavailable, catalog proxy runs without rate limiting", "error", err)
			} else {
				defer rdb.Close()
				group.Use(middleware.NewRateLimiter(rdb, "catalog", cfg.Server.RateLimitMax, cfg.Server.RateLimitWindowSeconds).Handler())
			}
		}
		catalogProxy := proxy.NewCatalogProxy(cfg.TMDB.BaseURL, cfg.TMDB.APIToken, cfg.TMDB.Timeout)
		catalogProxy.Mount(group)
		slog.Info("catalog proxy enabled", "prefix", config.ProxyPath)
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down movie discovery client...")
		_ = app.Shutdown()
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	slog.Info("starting movie discovery client", "addr", addr)
	if err := app.Listen(addr); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
