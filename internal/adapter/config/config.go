package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database  *Database
	HTTP      *HTTP
	Provider  *Provider
	Ledger    *Ledger
	Reconcile *Reconcile
	Admin     *Admin
	App       *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string `env:"APP_MODE"`
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type Provider struct {
	URL       string        `env:"PROVIDER_API_URL"`
	Key       string        `env:"PROVIDER_API_KEY"`
	Timeout   time.Duration `env:"PROVIDER_TIMEOUT"`
	RPS       float64       `env:"PROVIDER_RPS"`
	BatchSize int           `env:"PROVIDER_BATCH_SIZE"`
}

type Ledger struct {
	ProviderCurrency string `env:"PROVIDER_CURRENCY"`
	LedgerCurrency   string `env:"LEDGER_CURRENCY"`
	// Rates is a comma separated list of CODE:rate pairs, rate being ledger
	// units per one unit of CODE, e.g. "USD:92.5,EUR:100.1".
	Rates string `env:"CURRENCY_RATES"`
}

type Reconcile struct {
	Workers  int           `env:"RECONCILE_WORKERS"`
	Interval time.Duration `env:"RECONCILE_INTERVAL"`
}

type Admin struct {
	Secret   string        `env:"ADMIN_SECRET"`
	TokenTTL time.Duration `env:"ADMIN_TOKEN_TTL"`
}

func NewConfig() (*Config, error) {
	var db Database
	var http HTTP
	var provider Provider
	var ledger Ledger
	var reconcile Reconcile
	var admin Admin
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&provider.URL, "p", "", "Provider API url")
	flag.StringVar(&provider.Key, "k", "", "Provider API key")
	flag.DurationVar(&provider.Timeout, "provider-timeout", 15*time.Second, "Provider request timeout")
	flag.Float64Var(&provider.RPS, "provider-rps", 5, "Provider requests per second")
	flag.IntVar(&provider.BatchSize, "provider-batch", 100, "Max order ids per multi-status request")
	flag.StringVar(&ledger.ProviderCurrency, "provider-currency", "USD", "Provider charge currency")
	flag.StringVar(&ledger.LedgerCurrency, "ledger-currency", "USD", "Ledger currency")
	flag.StringVar(&ledger.Rates, "rates", "", "Currency rates CODE:rate,...")
	flag.IntVar(&reconcile.Workers, "w", 8, "Concurrent settlements in bulk refresh")
	flag.DurationVar(&reconcile.Interval, "i", 0, "Background refresh interval, 0 disables")
	flag.StringVar(&admin.Secret, "s", "", "Operator secret")
	flag.DurationVar(&admin.TokenTTL, "token-ttl", 12*time.Hour, "Operator token lifetime")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}
	err = env.Parse(&provider)
	if err != nil {
		return nil, fmt.Errorf("error parsing provider config: %w", err)
	}
	err = env.Parse(&ledger)
	if err != nil {
		return nil, fmt.Errorf("error parsing ledger config: %w", err)
	}
	err = env.Parse(&reconcile)
	if err != nil {
		return nil, fmt.Errorf("error parsing reconcile config: %w", err)
	}
	err = env.Parse(&admin)
	if err != nil {
		return nil, fmt.Errorf("error parsing admin config: %w", err)
	}

	if admin.Secret == "" {
		return nil, fmt.Errorf("operator secret is required")
	}

	config := Config{
		Database:  &db,
		HTTP:      &http,
		Provider:  &provider,
		Ledger:    &ledger,
		Reconcile: &reconcile,
		Admin:     &admin,
		App:       &app,
	}

	return &config, nil
}
