package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cashflow-forecast/internal/api"
	"cashflow-forecast/internal/config"
	"cashflow-forecast/internal/data"
	"cashflow-forecast/internal/service"
	"cashflow-forecast/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "examples/config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config %s: %v", cfgPath, err)
	}
	log.Printf("Loaded config %s (sources=%s, store=%s, scenarios=%s)", cfgPath, cfg.Sources.Type, cfg.Store.Type, cfg.Scenarios.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	records, weekly, err := buildSources(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up data sources: %v", err)
	}
	plans, closeStore, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to set up plan store: %v", err)
	}
	defer closeStore()

	planner, err := service.New(cfg, records, weekly, plans)
	if err != nil {
		log.Fatalf("Failed to create planner: %v", err)
	}

	// Set up Gin router
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(planner, api.Options{
		Strategy:       planner.Strategy.Name(),
		AllowedOrigins: splitList(os.Getenv("CORS_ORIGINS")),
	})

	// Start server
	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// buildSources picks the record source, wraps it in the TTL cache, and picks
// the weekly model source (remote URL first, then a local snapshot).
func buildSources(ctx context.Context, cfg *config.Config) (data.RecordSource, data.WeeklySource, error) {
	var records data.RecordSource
	switch cfg.Sources.Type {
	case config.SourceSheets:
		s := cfg.Sources.Sheets
		src, err := data.NewSheetsSource(ctx, s.APIKey, s.SalesSheet(), s.PurchasesSheet())
		if err != nil {
			return nil, nil, err
		}
		records = src
	default:
		records = &data.JSONSource{
			SalesPath:     cfg.Sources.JSON.SalesFile,
			PurchasesPath: cfg.Sources.JSON.PurchasesFile,
		}
	}
	cached := data.NewCachedRecords(records, cfg.Sources.CacheTTL)
	if cfg.Sources.CacheTTL > 0 {
		cached.StartJanitor(ctx, cfg.Sources.CacheTTL)
	}

	var weekly data.WeeklySource
	switch {
	case cfg.Sources.WeeklyURL != "":
		weekly = data.NewCachedWeekly(data.NewWeeklyClient(cfg.Sources.WeeklyURL), cfg.Sources.CacheTTL)
	case cfg.Sources.JSON.WeeklyFile != "":
		weekly = &data.JSONSource{WeeklyPath: cfg.Sources.JSON.WeeklyFile}
	default:
		log.Printf("No weekly model configured, projections use historical averages only")
	}
	return cached, weekly, nil
}

func buildStore(ctx context.Context, cfg *config.Config) (store.PlanStore, func(), error) {
	switch cfg.Store.Type {
	case config.StoreRedis:
		client, err := store.DialRedis(ctx, cfg.Store.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Plans stored in redis")
		return store.NewRedisStore(client), func() { _ = client.Close() }, nil
	case config.StorePostgres:
		pool, err := store.OpenPostgres(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		log.Printf("Plans stored in postgres")
		return pg, pool.Close, nil
	default:
		log.Printf("Plans stored in memory; they are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
