package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Devansh171021/swpl/internal/platform/logging"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

const (
	SheetWriterModeQuery = "query"
	SheetWriterModeJSON  = "json"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv         string
	ServiceName    string
	ServiceVersion string
	HTTPAddr       string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration

	CORSAllowedOrigins []string
	LogLevel           logging.Level

	PprofEnabled bool
	PprofAddr    string

	UptraceEnabled bool
	UptraceDSN     string

	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration

	// Roster source. The importer tries the CSV URL first, then the Sheets
	// values API, then the gviz export; whichever is configured wins.
	SheetCSVURL             string
	SheetTeamsCSVURL        string
	GoogleAPIKey            string
	GoogleSheetID           string
	GoogleSheetRange        string
	SheetTeamsRange         string
	SheetGvizIndex          int
	SheetTimeout            time.Duration
	SheetMaxRetries         int
	SheetCircuitEnabled     bool
	SheetCircuitFailures    int
	SheetCircuitOpenTimeout time.Duration
	SheetCircuitHalfOpenMax int

	// Disposition write-back (external Apps-Script-style endpoint).
	SheetWriterURL                string
	SheetWriterMode               string
	SheetWriterTimeout            time.Duration
	SheetWriterCircuitEnabled     bool
	SheetWriterCircuitFailures    int
	SheetWriterCircuitOpenTimeout time.Duration
	SheetWriterCircuitHalfOpenMax int
	ResyncWorkers                 int

	AllowZeroPurchase bool
	RoleOrder         []string

	CacheEnabled bool
	CacheTTL     time.Duration

	// Transaction log storage. Empty DBURL keeps the in-memory recorder.
	DBURL                   string
	DBDisablePreparedBinary bool
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}

	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	sheetTimeout, err := time.ParseDuration(getEnv("SHEET_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_TIMEOUT: %w", err)
	}
	if sheetTimeout <= 0 {
		return Config{}, fmt.Errorf("SHEET_TIMEOUT must be > 0")
	}
	sheetMaxRetries, err := getEnvAsInt("SHEET_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_MAX_RETRIES: %w", err)
	}
	if sheetMaxRetries < 0 {
		return Config{}, fmt.Errorf("SHEET_MAX_RETRIES must be >= 0")
	}
	sheetCircuitEnabled, err := strconv.ParseBool(getEnv("SHEET_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_CIRCUIT_ENABLED: %w", err)
	}
	sheetCircuitFailures, err := getEnvAsInt("SHEET_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if sheetCircuitFailures < 1 {
		return Config{}, fmt.Errorf("SHEET_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	sheetCircuitOpenTimeout, err := time.ParseDuration(getEnv("SHEET_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if sheetCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SHEET_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	sheetCircuitHalfOpenMax, err := getEnvAsInt("SHEET_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if sheetCircuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("SHEET_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	sheetGvizIndex, err := getEnvAsInt("SHEET_GVIZ_INDEX", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_GVIZ_INDEX: %w", err)
	}
	if sheetGvizIndex < 0 {
		return Config{}, fmt.Errorf("SHEET_GVIZ_INDEX must be >= 0")
	}

	sheetWriterMode := strings.ToLower(strings.TrimSpace(getEnv("SHEET_WRITER_MODE", SheetWriterModeJSON)))
	switch sheetWriterMode {
	case SheetWriterModeQuery, SheetWriterModeJSON:
	default:
		return Config{}, fmt.Errorf("invalid SHEET_WRITER_MODE %q: valid values are %s, %s", sheetWriterMode, SheetWriterModeQuery, SheetWriterModeJSON)
	}
	sheetWriterTimeout, err := time.ParseDuration(getEnv("SHEET_WRITER_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_WRITER_TIMEOUT: %w", err)
	}
	if sheetWriterTimeout <= 0 {
		return Config{}, fmt.Errorf("SHEET_WRITER_TIMEOUT must be > 0")
	}
	writerCircuitEnabled, err := strconv.ParseBool(getEnv("SHEET_WRITER_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_WRITER_CIRCUIT_ENABLED: %w", err)
	}
	writerCircuitFailures, err := getEnvAsInt("SHEET_WRITER_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_WRITER_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if writerCircuitFailures < 1 {
		return Config{}, fmt.Errorf("SHEET_WRITER_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	writerCircuitOpenTimeout, err := time.ParseDuration(getEnv("SHEET_WRITER_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_WRITER_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if writerCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("SHEET_WRITER_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	writerCircuitHalfOpenMax, err := getEnvAsInt("SHEET_WRITER_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_WRITER_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if writerCircuitHalfOpenMax < 1 {
		return Config{}, fmt.Errorf("SHEET_WRITER_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}
	resyncWorkers, err := getEnvAsInt("SHEET_RESYNC_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SHEET_RESYNC_WORKERS: %w", err)
	}
	if resyncWorkers < 1 {
		return Config{}, fmt.Errorf("SHEET_RESYNC_WORKERS must be >= 1")
	}

	allowZeroPurchase, err := strconv.ParseBool(getEnv("ALLOW_ZERO_PURCHASE", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ALLOW_ZERO_PURCHASE: %w", err)
	}

	cacheEnabled, err := strconv.ParseBool(getEnv("CACHE_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_ENABLED: %w", err)
	}
	cacheTTL, err := time.ParseDuration(getEnv("CACHE_TTL", "60s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CACHE_TTL: %w", err)
	}
	if cacheTTL <= 0 {
		return Config{}, fmt.Errorf("CACHE_TTL must be > 0")
	}

	dbDisablePreparedBinary, err := strconv.ParseBool(getEnv("DB_DISABLE_PREPARED_BINARY_RESULT", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse DB_DISABLE_PREPARED_BINARY_RESULT: %w", err)
	}

	cfg := Config{
		AppEnv:         appEnv,
		ServiceName:    getEnv("APP_SERVICE_NAME", "swpl-auction-api"),
		ServiceVersion: getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:       getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		LogLevel:           parseLogLevel(getEnv("APP_LOG_LEVEL", "info")),

		PprofEnabled: pprofEnabled,
		PprofAddr:    pprofAddr,

		UptraceEnabled: uptraceEnabled,
		UptraceDSN:     uptraceDSN,

		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,

		SheetCSVURL:             strings.TrimSpace(getEnv("SHEET_CSV_URL", "")),
		SheetTeamsCSVURL:        strings.TrimSpace(getEnv("SHEET_TEAMS_CSV_URL", "")),
		GoogleAPIKey:            strings.TrimSpace(getEnv("GOOGLE_API_KEY", "")),
		GoogleSheetID:           strings.TrimSpace(getEnv("GOOGLE_SHEET_ID", "")),
		GoogleSheetRange:        strings.TrimSpace(getEnv("GOOGLE_SHEET_RANGE", "")),
		SheetTeamsRange:         strings.TrimSpace(getEnv("SHEET_TEAMS_RANGE", "")),
		SheetGvizIndex:          sheetGvizIndex,
		SheetTimeout:            sheetTimeout,
		SheetMaxRetries:         sheetMaxRetries,
		SheetCircuitEnabled:     sheetCircuitEnabled,
		SheetCircuitFailures:    sheetCircuitFailures,
		SheetCircuitOpenTimeout: sheetCircuitOpenTimeout,
		SheetCircuitHalfOpenMax: sheetCircuitHalfOpenMax,

		SheetWriterURL:                strings.TrimSpace(getEnv("SHEET_WRITER_URL", "")),
		SheetWriterMode:               sheetWriterMode,
		SheetWriterTimeout:            sheetWriterTimeout,
		SheetWriterCircuitEnabled:     writerCircuitEnabled,
		SheetWriterCircuitFailures:    writerCircuitFailures,
		SheetWriterCircuitOpenTimeout: writerCircuitOpenTimeout,
		SheetWriterCircuitHalfOpenMax: writerCircuitHalfOpenMax,
		ResyncWorkers:                 resyncWorkers,

		AllowZeroPurchase: allowZeroPurchase,
		RoleOrder:         splitCSV(getEnv("AUCTION_ROLE_ORDER", "")),

		CacheEnabled: cacheEnabled,
		CacheTTL:     cacheTTL,

		DBURL:                   strings.TrimSpace(getEnv("DB_URL", "")),
		DBDisablePreparedBinary: dbDisablePreparedBinary,
	}

	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}
	if cfg.GoogleAPIKey != "" && cfg.GoogleSheetID == "" {
		return Config{}, fmt.Errorf("GOOGLE_SHEET_ID is required when GOOGLE_API_KEY is set")
	}

	return cfg, nil
}

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

func parseLogLevel(v string) logging.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return logging.LevelDebug
	case "warn", "warning":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}
