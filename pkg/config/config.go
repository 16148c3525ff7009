package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Cache    CacheConfig
	Sheets   SheetsConfig
	Sync     SyncConfig
	Lessons  LessonsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs list response caching in Redis.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SheetsConfig describes the external spreadsheet mirror.
type SheetsConfig struct {
	// SheetID is the spreadsheet used for reads and pushes. DefaultSheetID is
	// used when SheetID is empty.
	SheetID        string
	DefaultSheetID string
	ExportHost     string
	WebhookURL     string
	TeacherTab     string
	EnrollmentTab  string
	TeacherGID     string
	EnrollmentGID  string
	HTTPTimeout    time.Duration
}

// ResolvedSheetID returns the configured sheet or the default one.
func (c SheetsConfig) ResolvedSheetID() string {
	if id := strings.TrimSpace(c.SheetID); id != "" {
		return id
	}
	return strings.TrimSpace(c.DefaultSheetID)
}

// SyncConfig controls the background re-pull from the sheet.
type SyncConfig struct {
	PullInterval time.Duration
}

// LessonsConfig holds lesson package limits.
type LessonsConfig struct {
	MaxPerCard int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("CACHE_ENABLED"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 2*time.Minute),
	}

	cfg.Sheets = SheetsConfig{
		SheetID:        v.GetString("SHEETS_ID"),
		DefaultSheetID: v.GetString("SHEETS_DEFAULT_ID"),
		ExportHost:     strings.TrimRight(v.GetString("SHEETS_EXPORT_HOST"), "/"),
		WebhookURL:     v.GetString("SHEETS_WEBHOOK_URL"),
		TeacherTab:     v.GetString("SHEETS_TEACHER_TAB"),
		EnrollmentTab:  v.GetString("SHEETS_ENROLLMENT_TAB"),
		TeacherGID:     v.GetString("SHEETS_TEACHER_GID"),
		EnrollmentGID:  v.GetString("SHEETS_ENROLLMENT_GID"),
		HTTPTimeout:    parseDuration(v.GetString("SHEETS_HTTP_TIMEOUT"), 0),
	}

	cfg.Sync = SyncConfig{
		PullInterval: parseDuration(v.GetString("SYNC_PULL_INTERVAL"), 0),
	}

	maxPerCard := v.GetInt("LESSONS_MAX_PER_CARD")
	if maxPerCard <= 0 {
		maxPerCard = 10
	}
	cfg.Lessons = LessonsConfig{MaxPerCard: maxPerCard}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "dms_admin")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("CACHE_TTL", "2m")

	v.SetDefault("SHEETS_ID", "")
	v.SetDefault("SHEETS_DEFAULT_ID", "")
	v.SetDefault("SHEETS_EXPORT_HOST", "https://docs.google.com")
	v.SetDefault("SHEETS_WEBHOOK_URL", "")
	v.SetDefault("SHEETS_TEACHER_TAB", "Teacher Profiles")
	v.SetDefault("SHEETS_ENROLLMENT_TAB", "Enrollment")
	v.SetDefault("SHEETS_TEACHER_GID", "0")
	v.SetDefault("SHEETS_ENROLLMENT_GID", "0")
	v.SetDefault("SHEETS_HTTP_TIMEOUT", "")

	v.SetDefault("SYNC_PULL_INTERVAL", "")
	v.SetDefault("LESSONS_MAX_PER_CARD", 10)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
