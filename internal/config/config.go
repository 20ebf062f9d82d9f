package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cashflow-forecast/internal/currency"
	"cashflow-forecast/internal/data"
	"cashflow-forecast/internal/model"
	"cashflow-forecast/internal/scenario"
	"cashflow-forecast/internal/seasonal"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	WindowDays      int               `yaml:"window_days"`
	ProjectionWeeks int               `yaml:"projection_weeks"`
	PlanTTLDays     int               `yaml:"plan_ttl_days"`
	Seasonal        SeasonalConfig    `yaml:"seasonal"`
	Scenarios       ScenarioConfig    `yaml:"scenarios"`
	Currency        CurrencyConfig    `yaml:"currency"`
	Cities          map[string]string `yaml:"cities"`
	Sources         SourcesConfig     `yaml:"sources"`
	Store           StoreConfig       `yaml:"store"`
}

type SeasonalConfig struct {
	MatchToleranceDays int     `yaml:"match_tolerance_days"`
	TrailingWeeks      int     `yaml:"trailing_weeks"`
	Confidence         float64 `yaml:"confidence"`
	FallbackConfidence float64 `yaml:"fallback_confidence"`
}

// ScenarioConfig picks the factor strategy. The factor blocks override the
// default fixed factors field by field and are ignored in derived mode.
type ScenarioConfig struct {
	Mode         string                `yaml:"mode"`
	Base         model.ScenarioFactors `yaml:"base"`
	Optimistic   model.ScenarioFactors `yaml:"optimistic"`
	Conservative model.ScenarioFactors `yaml:"conservative"`
}

type CurrencyConfig struct {
	// Rates are local units per USD, keyed by currency tag.
	Rates map[string]float64 `yaml:"rates"`
}

type SourcesConfig struct {
	Type      string        `yaml:"type"` // json | sheets
	JSON      JSONConfig    `yaml:"json"`
	Sheets    SheetsConfig  `yaml:"sheets"`
	WeeklyURL string        `yaml:"weekly_url"`
	CacheTTL  time.Duration `yaml:"cache_ttl"`
}

type JSONConfig struct {
	SalesFile     string `yaml:"sales_file"`
	PurchasesFile string `yaml:"purchases_file"`
	WeeklyFile    string `yaml:"weekly_file"`
}

type SheetsConfig struct {
	APIKey                 string          `yaml:"api_key"`
	SalesSpreadsheetID     string          `yaml:"sales_spreadsheet_id"`
	SalesRange             string          `yaml:"sales_range"`
	PurchasesSpreadsheetID string          `yaml:"purchases_spreadsheet_id"`
	PurchasesRange         string          `yaml:"purchases_range"`
	SalesColumns           ColumnOverrides `yaml:"sales_columns"`
	PurchasesColumns       ColumnOverrides `yaml:"purchases_columns"`
}

// ColumnOverrides moves individual fields of a sheet layout. Omitted fields
// keep the default column; -1 drops a field.
type ColumnOverrides struct {
	ID           *int `yaml:"id"`
	Date         *int `yaml:"date"`
	Amount       *int `yaml:"amount"`
	Country      *int `yaml:"country"`
	Currency     *int `yaml:"currency"`
	Category     *int `yaml:"category"`
	Counterparty *int `yaml:"counterparty"`
	Description  *int `yaml:"description"`
}

// Apply returns base with the set fields replaced.
func (o ColumnOverrides) Apply(base data.ColumnLayout) data.ColumnLayout {
	set := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	set(&base.ID, o.ID)
	set(&base.Date, o.Date)
	set(&base.Amount, o.Amount)
	set(&base.Country, o.Country)
	set(&base.Currency, o.Currency)
	set(&base.Category, o.Category)
	set(&base.Counterparty, o.Counterparty)
	set(&base.Description, o.Description)
	return base
}

type StoreConfig struct {
	Type        string `yaml:"type"` // memory | redis | postgres
	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`
}

const (
	SourceJSON   = "json"
	SourceSheets = "sheets"

	StoreMemory   = "memory"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// Default is the configuration used when no file is given.
func Default() *Config {
	so := seasonal.DefaultOptions()
	return &Config{
		WindowDays:      30,
		ProjectionWeeks: 4,
		PlanTTLDays:     28,
		Seasonal: SeasonalConfig{
			MatchToleranceDays: so.MatchToleranceDays,
			TrailingWeeks:      so.TrailingWeeks,
			Confidence:         so.MatchConfidence,
			FallbackConfidence: so.FallbackConfidence,
		},
		Scenarios: ScenarioConfig{Mode: scenario.NameFixed},
		Sources: SourcesConfig{
			Type:     SourceJSON,
			CacheTTL: 5 * time.Minute,
			Sheets: SheetsConfig{
				SalesRange:     "Data total",
				PurchasesRange: "OC_MASTER",
			},
		},
		Store: StoreConfig{Type: StoreMemory},
	}
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	c.ApplyDefaults()
	c.ApplyEnv(os.Getenv)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked reads the file and resolves relative snapshot paths, but does
// not apply defaults or validate. Useful for printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	c.Sources.JSON.SalesFile = resolvePath(dir, c.Sources.JSON.SalesFile)
	c.Sources.JSON.PurchasesFile = resolvePath(dir, c.Sources.JSON.PurchasesFile)
	c.Sources.JSON.WeeklyFile = resolvePath(dir, c.Sources.JSON.WeeklyFile)
	return &c, nil
}

// resolvePath prefers interpreting p relative to the config file directory,
// falling back to p as given (relative to cwd) when that file doesn't exist.
func resolvePath(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	return p
}

// ApplyDefaults fills zero fields from Default.
func (c *Config) ApplyDefaults() {
	d := Default()
	if c.WindowDays == 0 {
		c.WindowDays = d.WindowDays
	}
	if c.ProjectionWeeks == 0 {
		c.ProjectionWeeks = d.ProjectionWeeks
	}
	if c.PlanTTLDays == 0 {
		c.PlanTTLDays = d.PlanTTLDays
	}
	if c.Seasonal.MatchToleranceDays == 0 {
		c.Seasonal.MatchToleranceDays = d.Seasonal.MatchToleranceDays
	}
	if c.Seasonal.TrailingWeeks == 0 {
		c.Seasonal.TrailingWeeks = d.Seasonal.TrailingWeeks
	}
	if c.Seasonal.Confidence == 0 {
		c.Seasonal.Confidence = d.Seasonal.Confidence
	}
	if c.Seasonal.FallbackConfidence == 0 {
		c.Seasonal.FallbackConfidence = d.Seasonal.FallbackConfidence
	}
	if c.Scenarios.Mode == "" {
		c.Scenarios.Mode = d.Scenarios.Mode
	}
	if c.Sources.Type == "" {
		c.Sources.Type = d.Sources.Type
	}
	if c.Sources.CacheTTL == 0 {
		c.Sources.CacheTTL = d.Sources.CacheTTL
	}
	if c.Sources.Sheets.SalesRange == "" {
		c.Sources.Sheets.SalesRange = d.Sources.Sheets.SalesRange
	}
	if c.Sources.Sheets.PurchasesRange == "" {
		c.Sources.Sheets.PurchasesRange = d.Sources.Sheets.PurchasesRange
	}
	if c.Store.Type == "" {
		c.Store.Type = d.Store.Type
	}
}

// ApplyEnv overlays secrets and endpoints from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv("SHEETS_API_KEY"); v != "" {
		c.Sources.Sheets.APIKey = v
	}
	if v := getenv("WEEKLY_MODEL_URL"); v != "" {
		c.Sources.WeeklyURL = v
	}
	if v := getenv("REDIS_URL"); v != "" {
		c.Store.RedisURL = v
	}
	if v := getenv("DATABASE_URL"); v != "" {
		c.Store.DatabaseURL = v
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("window_days must be > 0, got %d", c.WindowDays)
	}
	if c.ProjectionWeeks <= 0 {
		return fmt.Errorf("projection_weeks must be > 0, got %d", c.ProjectionWeeks)
	}
	if c.PlanTTLDays <= 0 {
		return fmt.Errorf("plan_ttl_days must be > 0, got %d", c.PlanTTLDays)
	}
	if c.Seasonal.Confidence < 0 || c.Seasonal.Confidence > 1 ||
		c.Seasonal.FallbackConfidence < 0 || c.Seasonal.FallbackConfidence > 1 {
		return errors.New("seasonal confidences must be within [0, 1]")
	}
	if _, err := c.Strategy(); err != nil {
		return fmt.Errorf("scenarios config invalid: %w", err)
	}
	for name, f := range map[string]model.ScenarioFactors{
		"base": c.Scenarios.Base, "optimistic": c.Scenarios.Optimistic, "conservative": c.Scenarios.Conservative,
	} {
		if f.InflowFactor < 0 || f.OutflowFactor < 0 {
			return fmt.Errorf("scenarios.%s factors must be positive", name)
		}
	}
	for tag, rate := range c.Currency.Rates {
		if rate <= 0 {
			return fmt.Errorf("currency.rates.%s must be > 0, got %v", tag, rate)
		}
	}
	for city, country := range c.Cities {
		if _, ok := model.ParseCountry(country); !ok {
			return fmt.Errorf("cities.%s: unknown country %q", city, country)
		}
	}

	switch c.Sources.Type {
	case SourceJSON:
		if c.Sources.JSON.SalesFile == "" || c.Sources.JSON.PurchasesFile == "" {
			return errors.New("sources.json.sales_file and sources.json.purchases_file are required")
		}
	case SourceSheets:
		s := c.Sources.Sheets
		if s.APIKey == "" {
			return errors.New("sources.sheets.api_key (or SHEETS_API_KEY) is required")
		}
		if s.SalesSpreadsheetID == "" || s.PurchasesSpreadsheetID == "" {
			return errors.New("sources.sheets spreadsheet ids are required")
		}
	default:
		return fmt.Errorf("unsupported sources.type: %q", c.Sources.Type)
	}

	switch c.Store.Type {
	case StoreMemory:
	case StoreRedis:
		if c.Store.RedisURL == "" {
			return errors.New("store.redis_url (or REDIS_URL) is required for the redis store")
		}
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return errors.New("store.database_url (or DATABASE_URL) is required for the postgres store")
		}
	default:
		return fmt.Errorf("unsupported store.type: %q", c.Store.Type)
	}
	return nil
}

// Strategy builds the configured factor strategy.
func (c *Config) Strategy() (scenario.Strategy, error) {
	override := model.FactorSet{
		Base:         c.Scenarios.Base,
		Optimistic:   c.Scenarios.Optimistic,
		Conservative: c.Scenarios.Conservative,
	}
	return scenario.New(strings.ToLower(c.Scenarios.Mode), &override)
}

func (c *Config) SeasonalOptions() seasonal.Options {
	return seasonal.Options{
		MatchToleranceDays: c.Seasonal.MatchToleranceDays,
		TrailingWeeks:      c.Seasonal.TrailingWeeks,
		MatchConfidence:    c.Seasonal.Confidence,
		FallbackConfidence: c.Seasonal.FallbackConfidence,
	}
}

func (c *Config) Rates() *currency.Table {
	return currency.NewTable(c.Currency.Rates)
}

// CityMap returns the weekly-model city mapping. Nil (no cities configured)
// selects the built-in mapping.
func (c *Config) CityMap() map[string]model.Country {
	if len(c.Cities) == 0 {
		return nil
	}
	out := make(map[string]model.Country, len(c.Cities))
	for city, name := range c.Cities {
		if country, ok := model.ParseCountry(name); ok {
			out[city] = country
		}
	}
	return out
}

func (c *Config) PlanTTL() time.Duration {
	return time.Duration(c.PlanTTLDays) * 24 * time.Hour
}

// SalesSheet is the sales table location with the configured or default layout.
func (s SheetsConfig) SalesSheet() data.SheetRange {
	return data.SheetRange{
		SpreadsheetID:   s.SalesSpreadsheetID,
		Range:           s.SalesRange,
		Columns:         s.SalesColumns.Apply(data.SalesColumns()),
		IDPrefix:        "sale",
		DefaultCategory: "sale",
	}
}

// PurchasesSheet is the purchase-order table location.
func (s SheetsConfig) PurchasesSheet() data.SheetRange {
	return data.SheetRange{
		SpreadsheetID:   s.PurchasesSpreadsheetID,
		Range:           s.PurchasesRange,
		Columns:         s.PurchasesColumns.Apply(data.PurchaseColumns()),
		IDPrefix:        "oc",
		DefaultCategory: "purchase_order",
	}
}
