package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"pocketpilot/internal/extraction"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	JWT        JWTConfig
	S3         S3Config
	CORS       CORSConfig
	Extractor  ExtractorConfig
	Extraction ExtractionConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ExtractorProviderConfig holds settings for a single extraction service provider.
type ExtractorProviderConfig struct {
	Provider string `mapstructure:"provider"`
	// APIKey is the Gemini API key, or a Document AI OAuth access token.
	APIKey string `mapstructure:"api_key"`
	// Endpoint overrides the provider's base URL.
	Endpoint string `mapstructure:"endpoint"`
	// Processor is the Document AI processor resource name
	// (projects/{project}/locations/{location}/processors/{id}).
	Processor   string `mapstructure:"processor"`
	Model       string `mapstructure:"model"`
	TimeoutSecs int    `mapstructure:"timeout_secs"`
}

// ExtractorConfig holds extraction service settings with fallback support.
type ExtractorConfig struct {
	Primary   ExtractorProviderConfig `mapstructure:"primary"`
	Secondary ExtractorProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (e *ExtractorConfig) SecondaryConfig() *ExtractorProviderConfig {
	if e.Secondary.Provider != "" {
		return &e.Secondary
	}
	return nil
}

// ExtractionConfig holds receipt pipeline settings. Nil overrides leave the
// value from the rules file (or the built-in defaults) untouched.
type ExtractionConfig struct {
	RulesFile          string   `mapstructure:"rules_file"`
	MinConfidence      *float64 `mapstructure:"min_confidence"`
	FallbackConfidence *float64 `mapstructure:"fallback_confidence"`
	DateFallbackToday  *bool    `mapstructure:"date_fallback_today"`
}

// Rules builds the pipeline configuration: the rules file when set, else the
// defaults, with any environment overrides applied on top.
func (e *ExtractionConfig) Rules() (extraction.Rules, error) {
	rules := extraction.DefaultRules()
	if e.RulesFile != "" {
		loaded, err := extraction.LoadRules(e.RulesFile)
		if err != nil {
			return extraction.Rules{}, err
		}
		rules = loaded
	}
	if e.MinConfidence != nil {
		rules.MinConfidence = *e.MinConfidence
	}
	if e.FallbackConfidence != nil {
		rules.FallbackConfidence = *e.FallbackConfidence
	}
	if e.DateFallbackToday != nil {
		rules.DateFallbackToday = *e.DateFallbackToday
	}
	if err := rules.Validate(); err != nil {
		return extraction.Rules{}, err
	}
	return rules, nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds bearer token verification settings.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Load reads configuration from environment variables with the POCKETPILOT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("POCKETPILOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "pocketpilot")
	v.SetDefault("db.password", "pocketpilot_secret")
	v.SetDefault("db.name", "pocketpilot_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "pocketpilot")

	// S3 defaults
	v.SetDefault("s3.region", "ap-south-1")
	v.SetDefault("s3.bucket", "pocketpilot-receipts")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 10)
	v.SetDefault("s3.presign_expiry", 3600)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173")

	// Extractor defaults
	v.SetDefault("extractor.primary.provider", "demo")
	v.SetDefault("extractor.primary.timeout_secs", 60)
	v.SetDefault("extractor.secondary.provider", "")
	v.SetDefault("extractor.secondary.timeout_secs", 60)

	// Extraction defaults
	v.SetDefault("extraction.rules_file", "")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                      "POCKETPILOT_SERVER_PORT",
		"server.read_timeout":              "POCKETPILOT_SERVER_READ_TIMEOUT",
		"server.write_timeout":             "POCKETPILOT_SERVER_WRITE_TIMEOUT",
		"server.environment":               "POCKETPILOT_SERVER_ENVIRONMENT",
		"db.host":                          "POCKETPILOT_DB_HOST",
		"db.port":                          "POCKETPILOT_DB_PORT",
		"db.user":                          "POCKETPILOT_DB_USER",
		"db.password":                      "POCKETPILOT_DB_PASSWORD",
		"db.name":                          "POCKETPILOT_DB_NAME",
		"db.sslmode":                       "POCKETPILOT_DB_SSLMODE",
		"db.max_open":                      "POCKETPILOT_DB_MAX_OPEN",
		"db.max_idle":                      "POCKETPILOT_DB_MAX_IDLE",
		"jwt.secret":                       "POCKETPILOT_JWT_SECRET",
		"jwt.issuer":                       "POCKETPILOT_JWT_ISSUER",
		"s3.region":                        "POCKETPILOT_S3_REGION",
		"s3.bucket":                        "POCKETPILOT_S3_BUCKET",
		"s3.endpoint":                      "POCKETPILOT_S3_ENDPOINT",
		"s3.access_key":                    "POCKETPILOT_S3_ACCESS_KEY",
		"s3.secret_key":                    "POCKETPILOT_S3_SECRET_KEY",
		"s3.max_file_size_mb":              "POCKETPILOT_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":                "POCKETPILOT_S3_PRESIGN_EXPIRY",
		"cors.allowed_origins":             "POCKETPILOT_CORS_ALLOWED_ORIGINS",
		"extractor.primary.provider":       "POCKETPILOT_EXTRACTOR_PRIMARY_PROVIDER",
		"extractor.primary.api_key":        "POCKETPILOT_EXTRACTOR_PRIMARY_API_KEY",
		"extractor.primary.endpoint":       "POCKETPILOT_EXTRACTOR_PRIMARY_ENDPOINT",
		"extractor.primary.processor":      "POCKETPILOT_EXTRACTOR_PRIMARY_PROCESSOR",
		"extractor.primary.model":          "POCKETPILOT_EXTRACTOR_PRIMARY_MODEL",
		"extractor.primary.timeout_secs":   "POCKETPILOT_EXTRACTOR_PRIMARY_TIMEOUT_SECS",
		"extractor.secondary.provider":     "POCKETPILOT_EXTRACTOR_SECONDARY_PROVIDER",
		"extractor.secondary.api_key":      "POCKETPILOT_EXTRACTOR_SECONDARY_API_KEY",
		"extractor.secondary.endpoint":     "POCKETPILOT_EXTRACTOR_SECONDARY_ENDPOINT",
		"extractor.secondary.processor":    "POCKETPILOT_EXTRACTOR_SECONDARY_PROCESSOR",
		"extractor.secondary.model":        "POCKETPILOT_EXTRACTOR_SECONDARY_MODEL",
		"extractor.secondary.timeout_secs": "POCKETPILOT_EXTRACTOR_SECONDARY_TIMEOUT_SECS",
		"extraction.rules_file":            "POCKETPILOT_EXTRACTION_RULES_FILE",
		"extraction.min_confidence":        "POCKETPILOT_EXTRACTION_MIN_CONFIDENCE",
		"extraction.fallback_confidence":   "POCKETPILOT_EXTRACTION_FALLBACK_CONFIDENCE",
		"extraction.date_fallback_today":   "POCKETPILOT_EXTRACTION_DATE_FALLBACK_TODAY",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if POCKETPILOT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("POCKETPILOT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Extractor = ExtractorConfig{
		Primary:   providerConfig(v, "extractor.primary"),
		Secondary: providerConfig(v, "extractor.secondary"),
	}

	cfg.Extraction = ExtractionConfig{
		RulesFile: v.GetString("extraction.rules_file"),
	}
	if v.IsSet("extraction.min_confidence") {
		f := v.GetFloat64("extraction.min_confidence")
		cfg.Extraction.MinConfidence = &f
	}
	if v.IsSet("extraction.fallback_confidence") {
		f := v.GetFloat64("extraction.fallback_confidence")
		cfg.Extraction.FallbackConfidence = &f
	}
	if v.IsSet("extraction.date_fallback_today") {
		b := v.GetBool("extraction.date_fallback_today")
		cfg.Extraction.DateFallbackToday = &b
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, prefix string) ExtractorProviderConfig {
	return ExtractorProviderConfig{
		Provider:    v.GetString(prefix + ".provider"),
		APIKey:      v.GetString(prefix + ".api_key"),
		Endpoint:    v.GetString(prefix + ".endpoint"),
		Processor:   v.GetString(prefix + ".processor"),
		Model:       v.GetString(prefix + ".model"),
		TimeoutSecs: v.GetInt(prefix + ".timeout_secs"),
	}
}
