package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Extraction ExtractionConfig `mapstructure:"extraction"`
	TrustAPI   TrustAPIConfig   `mapstructure:"trustapi"`
	Publish    PublishConfig    `mapstructure:"publish"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres or sqlite
	Path            string        `mapstructure:"path"`   // sqlite file path
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the driver-specific connection string.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type StorageConfig struct {
	// Type selects the backend: "s3" (any S3-compatible endpoint) or "local".
	Type      string `mapstructure:"type"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`

	// PublicURL is the prefix under which stored objects are reachable. It is
	// mandatory in practice because the stored file's URL becomes the
	// sourceURI of every published claim.
	PublicURL string `mapstructure:"public_url"`

	// LocalDir is the upload directory for the local backend.
	LocalDir string `mapstructure:"local_dir"`
}

type UploadConfig struct {
	MaxSizeMB         int      `mapstructure:"max_size_mb"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`
}

type ExtractionConfig struct {
	Model      string `mapstructure:"model"`
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	PromptFile string `mapstructure:"prompt_file"` // named file under prompt_dir or absolute path
	PromptDir  string `mapstructure:"prompt_dir"`

	TimeoutSeconds int `mapstructure:"timeout_seconds"`
	Workers        int `mapstructure:"workers"`
	QueueSize      int `mapstructure:"queue_size"`
	MinPageChars   int `mapstructure:"min_page_chars"`
	MaxPages       int `mapstructure:"max_pages"`
}

type TrustAPIConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Email          string `mapstructure:"email"`
	Password       string `mapstructure:"password"`
	IssuerID       string `mapstructure:"issuer_id"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type PublishConfig struct {
	// Cleanup controls what happens to a draft after the remote accepts it:
	// "archive" keeps the row with status published, "delete" removes it.
	Cleanup string `mapstructure:"cleanup"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	// Set config file path
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/claims.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_dir", "./data/uploads")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.bucket", "impact-reports")
	v.SetDefault("storage.public_url", "http://localhost:8080/files")
	v.SetDefault("upload.max_size_mb", 32)
	v.SetDefault("upload.allowed_extensions", []string{".pdf"})
	v.SetDefault("extraction.model", "gpt-4o-mini")
	v.SetDefault("extraction.base_url", "https://api.openai.com/v1")
	v.SetDefault("extraction.prompt_file", "")
	v.SetDefault("extraction.prompt_dir", "./prompts")
	v.SetDefault("extraction.timeout_seconds", 120)
	v.SetDefault("extraction.workers", 3)
	v.SetDefault("extraction.queue_size", 64)
	v.SetDefault("extraction.min_page_chars", 50)
	v.SetDefault("extraction.max_pages", 200)
	v.SetDefault("trustapi.base_url", "https://dev.linkedtrust.us")
	v.SetDefault("trustapi.issuer_id", "https://extract.linkedtrust.us")
	v.SetDefault("trustapi.timeout_seconds", 30)
	v.SetDefault("publish.cleanup", "archive")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "")

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.public_url", "STORAGE_PUBLIC_URL")
	v.BindEnv("extraction.api_key", "EXTRACTION_API_KEY")
	v.BindEnv("extraction.base_url", "EXTRACTION_BASE_URL")
	v.BindEnv("extraction.model", "EXTRACTION_MODEL")
	v.BindEnv("extraction.prompt_file", "EXTRACTION_PROMPT_FILE")
	v.BindEnv("trustapi.base_url", "TRUSTAPI_BASE_URL")
	v.BindEnv("trustapi.email", "TRUSTAPI_EMAIL")
	v.BindEnv("trustapi.password", "TRUSTAPI_PASSWORD")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Publish.Cleanup != "archive" && cfg.Publish.Cleanup != "delete" {
		return nil, fmt.Errorf("publish.cleanup must be archive or delete, got %q", cfg.Publish.Cleanup)
	}

	return &cfg, nil
}
