package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/relocation-matcher/internal/authz"
	"github.com/jonathan/relocation-matcher/internal/cache"
	"github.com/jonathan/relocation-matcher/internal/config"
	"github.com/jonathan/relocation-matcher/internal/db"
	"github.com/jonathan/relocation-matcher/internal/llm"
	"github.com/jonathan/relocation-matcher/internal/logger"
	"github.com/jonathan/relocation-matcher/internal/matching"
	"github.com/jonathan/relocation-matcher/internal/regions"
	"github.com/jonathan/relocation-matcher/internal/server"
	"github.com/jonathan/relocation-matcher/internal/server/ratelimit"
	"github.com/jonathan/relocation-matcher/internal/vibes"
)

var (
	servePort    int
	serveMigrate bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server exposing matching, diagnosis, catalog, vibe and auth endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the database schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.NewServerConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	log, err := logger.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	table, err := regions.LoadOrDefault(cfg.RegionsFile)
	if err != nil {
		return fmt.Errorf("failed to load region table: %w", err)
	}

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if serveMigrate {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
		log.Info("database schema applied")
	}

	deps := server.Deps{
		Logger:     log,
		Catalog:    database,
		Properties: database,
		Answers:    database,
		Results:    database,
		Health:     database,
	}

	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewRedis(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = redisClient.Close() }()

		if err := redisClient.Ping(ctx); err != nil {
			log.Warn("redis unreachable, serving without cache", zap.Error(err))
			redisClient = nil
		} else {
			catalogCache := cache.NewCatalogCache(database, redisClient, cfg.CatalogCacheTTL, log)
			deps.Catalog = catalogCache
			deps.Invalidator = catalogCache
		}
	}

	vibeSource, closeLLM, err := buildVibeSource(ctx, log)
	if err != nil {
		return err
	}
	defer closeLLM()
	if vibeSource != nil && redisClient != nil {
		vibeSource = cache.NewVibeCache(vibeSource, redisClient, cfg.VibeCacheTTL, log)
	}
	deps.Vibes = vibeSource

	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return fmt.Errorf("failed to create JWT config: %w", err)
	}
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return fmt.Errorf("failed to create password config: %w", err)
	}
	deps.Policy = authz.NewEmailAllowlist(config.NewAdminConfig().Emails)
	deps.JWT = server.NewJWTService(jwtConfig)
	deps.Users = server.NewUserService(database, passwordConfig, deps.Policy)

	deps.Matcher = matching.NewEngine(deps.Catalog, database, table, log)
	deps.RateLimiter = ratelimit.NewLimiter(ratelimit.LoadConfig())

	srv, err := server.New(server.Config{Port: cfg.Port}, deps)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start(ctx)
}

// buildVibeSource returns nil when no LLM key is configured; the vibe
// endpoint then answers 503.
func buildVibeSource(ctx context.Context, log *zap.Logger) (vibes.Source, func(), error) {
	noop := func() {}

	settings, err := config.NewLLMSettings()
	if err != nil {
		return nil, noop, err
	}
	if !settings.Enabled() {
		log.Warn("no LLM API key configured, vibe calculation disabled", zap.String("provider", settings.Provider))
		return nil, noop, nil
	}

	llmConfig, err := settings.LLMConfig()
	if err != nil {
		return nil, noop, err
	}
	client, err := llm.NewClient(ctx, llmConfig, settings.APIKey)
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create LLM client: %w", err)
	}

	log.Info("vibe calculation enabled",
		zap.String("provider", settings.Provider),
		zap.String("model", client.GetModel(llm.TierLite)),
	)
	return vibes.NewGenerator(client, log), func() { _ = client.Close() }, nil
}
