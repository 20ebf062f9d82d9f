package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"cashflow-forecast/internal/config"
	"cashflow-forecast/internal/data"

	"github.com/joho/godotenv"
)

// snapshot pulls sales and purchase orders from Google Sheets (and the weekly
// model when a URL is configured) and writes the JSON files the CLI and the
// json source read.
func main() {
	var (
		cfgPath = flag.String("config", "examples/config.yaml", "YAML config with sources.sheets settings")
		outDir  = flag.String("out-dir", "examples/data", "Directory for sales.json, purchases.json and weekly.json")
		timeout = flag.Duration("timeout", 2*time.Minute, "Overall fetch timeout")
	)
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.LoadUnchecked(*cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ApplyDefaults()
	cfg.ApplyEnv(os.Getenv)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	s := cfg.Sources.Sheets
	src, err := data.NewSheetsSource(ctx, s.APIKey, s.SalesSheet(), s.PurchasesSheet())
	if err != nil {
		log.Fatalf("Failed to create sheets client: %v", err)
	}

	now := time.Now()
	fmt.Printf("Fetching sales from %s!%s\n", s.SalesSpreadsheetID, s.SalesRange)
	sales, err := src.FetchSales(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch sales: %v", err)
	}
	fmt.Printf("Fetching purchase orders from %s!%s\n", s.PurchasesSpreadsheetID, s.PurchasesRange)
	purchases, err := src.FetchPurchases(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch purchase orders: %v", err)
	}

	for name, set := range map[string]data.RecordSet{"sales.json": sales, "purchases.json": purchases} {
		path := filepath.Join(*outDir, name)
		if err := data.SaveRecordsJSON(path, set.Records, now); err != nil {
			log.Fatalf("Failed to save %s: %v", path, err)
		}
		fmt.Printf("Saved %d records to %s", len(set.Records), path)
		if set.CoercedAmounts > 0 {
			fmt.Printf(" (%d non-numeric amounts read as 0)", set.CoercedAmounts)
		}
		fmt.Println()
	}

	if cfg.Sources.WeeklyURL == "" {
		fmt.Println("No weekly_url configured, skipping weekly model")
		return
	}
	weekly, err := data.NewWeeklyClient(cfg.Sources.WeeklyURL).FetchWeekly(ctx)
	if err != nil {
		// Keep the previous weekly.json rather than failing the whole export.
		log.Printf("Warning: failed to fetch weekly model: %v", err)
		return
	}
	path := filepath.Join(*outDir, "weekly.json")
	if err := data.SaveWeeklyJSON(path, weekly); err != nil {
		log.Fatalf("Failed to save %s: %v", path, err)
	}
	fmt.Printf("Saved %d weeks for %d cities to %s\n", len(weekly.Weeks), len(weekly.CitiesData), path)
}
