package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Stale-rate policies for summaries. Fallback converts with a stale rate and
// labels the result; strict refuses the conversion.
const (
	StalePolicyFallback = "fallback"
	StalePolicyStrict   = "strict"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Import    ImportConfig
	Currency  CurrencyConfig
	Fx        FxConfig
	Providers ProviderConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// ImportConfig holds the workbook location and the sheets to import from it.
type ImportConfig struct {
	WorkbookPath string
	Sheets       []SheetConfig
}

// SheetConfig describes where each normalized field lives in one sheet.
// Column names are matched against trimmed, lowercased header cells. An empty
// CurrencyColumn means the sheet carries no per-row currency and DefaultCurrency
// applies unless a cell-level tag overrides it.
type SheetConfig struct {
	Name               string
	DateColumn         string
	AmountColumn       string
	DebitColumn        string
	CreditColumn       string
	CurrencyColumn     string
	NumberColumn       string
	BalanceColumn      string
	DescriptionColumns []string
	DefaultCurrency    string
}

// CurrencyConfig holds the supported currency set, the alias table applied
// before validation, and the default display currency.
type CurrencyConfig struct {
	Supported      []string
	Aliases        map[string]string
	DisplayDefault string
}

// FxConfig holds exchange-rate cache behavior.
type FxConfig struct {
	RateTTL     time.Duration
	StalePolicy string
}

// ProviderConfig holds market-data provider endpoints and credentials.
// FernetSecret enables encrypted key storage in the setting table; empty
// disables it and only the environment keys are used.
type ProviderConfig struct {
	AlphaVantageKey      string
	AlphaVantageEndpoint string
	CoinrankingKey       string
	CoinrankingHost      string
	Timeout              time.Duration
	FernetSecret         string
}

// SchedulerConfig holds the background FX refresh schedule.
type SchedulerConfig struct {
	Enabled       bool
	FxRefreshSpec string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	displayDefault := strings.ToUpper(getEnv("DISPLAY_CURRENCY_DEFAULT", "CHF"))

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/finance_dash.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Import: ImportConfig{
			WorkbookPath: getEnv("WORKBOOK_PATH", "./data/transactions_v3.xlsx"),
			Sheets:       sheetConfigs(getEnvList("IMPORT_SHEETS", "crypto_transac,stocks_transac"), displayDefault),
		},
		Currency: CurrencyConfig{
			Supported:      upperAll(getEnvList("SUPPORTED_CURRENCIES", "CHF,EUR,USD,GBP")),
			Aliases:        getEnvMap("CURRENCY_ALIASES", "SFR=CHF"),
			DisplayDefault: displayDefault,
		},
		Fx: FxConfig{
			RateTTL:     getEnvDuration("FX_RATE_TTL", 24*time.Hour),
			StalePolicy: getEnv("FX_STALE_POLICY", StalePolicyFallback),
		},
		Providers: ProviderConfig{
			AlphaVantageKey:      getEnv("ALPHAVANTAGE_API_KEY", ""),
			AlphaVantageEndpoint: getEnv("ALPHAVANTAGE_ENDPOINT", "https://www.alphavantage.co/query"),
			CoinrankingKey:       getEnv("COINRANKING_API_KEY", ""),
			CoinrankingHost:      getEnv("COINRANKING_HOST", "coinranking1.p.rapidapi.com"),
			Timeout:              getEnvDuration("PROVIDER_TIMEOUT", 30*time.Second),
			FernetSecret:         getEnv("FERNET_SECRET", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:       getEnvBool("SCHEDULER_ENABLED", true),
			FxRefreshSpec: getEnv("FX_REFRESH_SCHEDULE", "0 6 * * *"),
		},
	}

	if config.Fx.StalePolicy != StalePolicyFallback && config.Fx.StalePolicy != StalePolicyStrict {
		return nil, fmt.Errorf("invalid FX_STALE_POLICY %q: must be %q or %q",
			config.Fx.StalePolicy, StalePolicyFallback, StalePolicyStrict)
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// sheetConfigs resolves the column conventions for each named sheet.
func sheetConfigs(names []string, defaultCurrency string) []SheetConfig {
	sheets := make([]SheetConfig, 0, len(names))
	for _, name := range names {
		sheets = append(sheets, SheetDefaults(name, defaultCurrency))
	}
	return sheets
}

// SheetDefaults returns the column conventions for a sheet. The crypto sheet
// carries no per-row currency column; every other sheet follows the generic
// bank-export layout.
func SheetDefaults(name, defaultCurrency string) SheetConfig {
	sheet := SheetConfig{
		Name:               name,
		DateColumn:         "transac_date",
		AmountColumn:       "amount_chf",
		DebitColumn:        "debit",
		CreditColumn:       "credit",
		CurrencyColumn:     "transac_currency",
		NumberColumn:       "transac_nbr",
		BalanceColumn:      "balance",
		DescriptionColumns: []string{"descr_1", "descr_2", "descr_3"},
		DefaultCurrency:    defaultCurrency,
	}
	if name == "crypto_transac" {
		sheet.CurrencyColumn = ""
	}
	return sheet
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvList splits a comma-separated environment variable, trimming blanks.
func getEnvList(key, defaultValue string) []string {
	raw := getEnv(key, defaultValue)
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// getEnvMap parses comma-separated KEY=VALUE pairs, uppercasing both sides.
func getEnvMap(key, defaultValue string) map[string]string {
	values := make(map[string]string)
	for _, pair := range getEnvList(key, defaultValue) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		k = strings.ToUpper(strings.TrimSpace(k))
		v = strings.ToUpper(strings.TrimSpace(v))
		if k != "" && v != "" {
			values[k] = v
		}
	}
	return values
}

// getEnvDuration parses a Go duration or returns a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvBool parses a boolean or returns a default value.
func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return value
}

// upperAll uppercases each element in place and returns the slice.
func upperAll(values []string) []string {
	for i, v := range values {
		values[i] = strings.ToUpper(v)
	}
	return values
}
