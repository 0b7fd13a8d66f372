package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Artwork  ArtworkConfig  `mapstructure:"artwork"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Retro    RetroConfig    `mapstructure:"retro"`
	Activity ActivityConfig `mapstructure:"activity"`
	Metadata MetadataConfig `mapstructure:"metadata"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	BufferSize int    `mapstructure:"buffer_size"`
}

// ArtworkConfig controls where posters are written and how they are fetched.
type ArtworkConfig struct {
	Dir               string `mapstructure:"dir"`
	DownloadTimeout   int    `mapstructure:"download_timeout"` // seconds
	PreferredLanguage string `mapstructure:"preferred_language"`
	MaxBytes          int64  `mapstructure:"max_bytes"`
}

// WorkerConfig holds the background poster worker policy.
type WorkerConfig struct {
	QueueCapacity    int   `mapstructure:"queue_capacity"`
	MaxAttempts      int   `mapstructure:"max_attempts"`
	MinIntervalMs    int   `mapstructure:"min_interval_ms"`
	AttemptTimeout   int   `mapstructure:"attempt_timeout"` // seconds
	JobBudget        int   `mapstructure:"job_budget"`      // seconds
	PosterTTLDays    int   `mapstructure:"poster_ttl_days"`
	BackoffSeconds   []int `mapstructure:"backoff_seconds"`
	JitterMinMs      int   `mapstructure:"jitter_min_ms"`
	JitterMaxMs      int   `mapstructure:"jitter_max_ms"`
	FailureReasonMax int   `mapstructure:"failure_reason_max"`
	Enabled          bool  `mapstructure:"enabled"`
}

// RetroConfig controls the scheduled retro-fetch of releases missing posters.
type RetroConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Cron      string `mapstructure:"cron"`
	Dir       string `mapstructure:"dir"`
	BatchSize int    `mapstructure:"batch_size"`
}

// ActivityConfig controls activity log retention.
type ActivityConfig struct {
	RetentionDays int    `mapstructure:"retention_days"`
	CleanupCron   string `mapstructure:"cleanup_cron"`
}

// MetadataConfig holds configuration for every metadata provider.
type MetadataConfig struct {
	TMDB        TMDBConfig        `mapstructure:"tmdb"`
	TVDB        TVDBConfig        `mapstructure:"tvdb"`
	OMDB        OMDBConfig        `mapstructure:"omdb"`
	TVMaze      TVMazeConfig      `mapstructure:"tvmaze"`
	IGDB        IGDBConfig        `mapstructure:"igdb"`
	AniList     AniListConfig     `mapstructure:"anilist"`
	Deezer      DeezerConfig      `mapstructure:"deezer"`
	GoogleBooks GoogleBooksConfig `mapstructure:"googlebooks"`
	ComicVine   ComicVineConfig   `mapstructure:"comicvine"`
	Fanart      FanartConfig      `mapstructure:"fanart"`
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	Language     string `mapstructure:"language"`
	Timeout      int    `mapstructure:"timeout"` // seconds
}

// TVDBConfig holds TVDB API configuration.
type TVDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// OMDBConfig holds OMDb API configuration.
type OMDBConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// TVMazeConfig holds TVmaze API configuration. TVmaze needs no key.
type TVMazeConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// IGDBConfig holds IGDB API configuration (Twitch client credentials).
type IGDBConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	BaseURL      string `mapstructure:"base_url"`
	TokenURL     string `mapstructure:"token_url"`
	ImageBaseURL string `mapstructure:"image_base_url"`
	Timeout      int    `mapstructure:"timeout"`
}

// AniListConfig holds AniList GraphQL configuration.
type AniListConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Timeout  int    `mapstructure:"timeout"`
}

// DeezerConfig holds Deezer API configuration.
type DeezerConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// GoogleBooksConfig holds Google Books API configuration.
type GoogleBooksConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// ComicVineConfig holds Comic Vine API configuration.
type ComicVineConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// FanartConfig holds fanart.tv API configuration.
type FanartConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"`
}

// Default returns a Config with default values.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	_ = v.Unmarshal(cfg)
	applyEmbeddedKeys(cfg)
	return cfg
}

// Load reads configuration from file and environment variables.
// Priority: environment variables > config file > defaults
func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.posterd")
	}

	v.SetEnvPrefix("POSTERD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEmbeddedKeys(cfg)

	return cfg, nil
}

func applyEmbeddedKeys(cfg *Config) {
	if cfg.Metadata.TMDB.APIKey == "" {
		cfg.Metadata.TMDB.APIKey = EmbeddedTMDBKey
	}
	if cfg.Metadata.TVDB.APIKey == "" {
		cfg.Metadata.TVDB.APIKey = EmbeddedTVDBKey
	}
	if cfg.Metadata.Fanart.APIKey == "" {
		cfg.Metadata.Fanart.APIKey = EmbeddedFanartKey
	}
}

// setDefaults sets default values in viper
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8484)

	v.SetDefault("database.path", "./data/posterd.db")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.path", "")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("logging.max_age_days", 30)
	v.SetDefault("logging.compress", true)
	v.SetDefault("logging.buffer_size", 1000)

	v.SetDefault("artwork.dir", "./data/posters")
	v.SetDefault("artwork.download_timeout", 30)
	v.SetDefault("artwork.preferred_language", "en")
	v.SetDefault("artwork.max_bytes", 15<<20)

	v.SetDefault("worker.enabled", true)
	v.SetDefault("worker.queue_capacity", 2000)
	v.SetDefault("worker.max_attempts", 3)
	v.SetDefault("worker.min_interval_ms", 250)
	v.SetDefault("worker.attempt_timeout", 60)
	v.SetDefault("worker.job_budget", 60)
	v.SetDefault("worker.poster_ttl_days", 30)
	v.SetDefault("worker.backoff_seconds", []int{2, 5, 15})
	v.SetDefault("worker.jitter_min_ms", 200)
	v.SetDefault("worker.jitter_max_ms", 800)
	v.SetDefault("worker.failure_reason_max", 200)

	v.SetDefault("retro.enabled", false)
	v.SetDefault("retro.cron", "30 3 * * *")
	v.SetDefault("retro.dir", "./data/retro")
	v.SetDefault("retro.batch_size", 500)

	v.SetDefault("activity.retention_days", 30)
	v.SetDefault("activity.cleanup_cron", "0 4 * * *")

	v.SetDefault("metadata.tmdb.api_key", "")
	v.SetDefault("metadata.tmdb.base_url", "https://api.themoviedb.org/3")
	v.SetDefault("metadata.tmdb.image_base_url", "https://image.tmdb.org/t/p")
	v.SetDefault("metadata.tmdb.language", "en-US")
	v.SetDefault("metadata.tmdb.timeout", 15)

	v.SetDefault("metadata.tvdb.api_key", "")
	v.SetDefault("metadata.tvdb.base_url", "https://api4.thetvdb.com/v4")
	v.SetDefault("metadata.tvdb.timeout", 15)

	v.SetDefault("metadata.omdb.api_key", "")
	v.SetDefault("metadata.omdb.base_url", "https://www.omdbapi.com/")
	v.SetDefault("metadata.omdb.timeout", 15)

	v.SetDefault("metadata.tvmaze.base_url", "https://api.tvmaze.com")
	v.SetDefault("metadata.tvmaze.timeout", 15)

	v.SetDefault("metadata.igdb.client_id", "")
	v.SetDefault("metadata.igdb.client_secret", "")
	v.SetDefault("metadata.igdb.base_url", "https://api.igdb.com/v4")
	v.SetDefault("metadata.igdb.token_url", "https://id.twitch.tv/oauth2/token")
	v.SetDefault("metadata.igdb.image_base_url", "https://images.igdb.com/igdb/image/upload")
	v.SetDefault("metadata.igdb.timeout", 15)

	v.SetDefault("metadata.anilist.endpoint", "https://graphql.anilist.co")
	v.SetDefault("metadata.anilist.timeout", 15)

	v.SetDefault("metadata.deezer.base_url", "https://api.deezer.com")
	v.SetDefault("metadata.deezer.timeout", 15)

	v.SetDefault("metadata.googlebooks.api_key", "")
	v.SetDefault("metadata.googlebooks.base_url", "https://www.googleapis.com/books/v1")
	v.SetDefault("metadata.googlebooks.timeout", 15)

	v.SetDefault("metadata.comicvine.api_key", "")
	v.SetDefault("metadata.comicvine.base_url", "https://comicvine.gamespot.com/api")
	v.SetDefault("metadata.comicvine.timeout", 15)

	v.SetDefault("metadata.fanart.api_key", "")
	v.SetDefault("metadata.fanart.base_url", "https://webservice.fanart.tv/v3")
	v.SetDefault("metadata.fanart.timeout", 15)
}

// Address returns the server address string.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
