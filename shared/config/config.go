package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"video-recommender/shared/dataset"
)

type Config struct {
	Dataset    DatasetConfig    `yaml:"dataset"`
	Index      IndexConfig      `yaml:"index"`
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	AI         AIConfig         `yaml:"ai"`
	YouTube    YouTubeConfig    `yaml:"youtube"`
	Email      EmailConfig      `yaml:"email"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	// Schedule is a six-field cron expression for rebuilding the index from
	// disk. Empty means build once at start-up.
	Schedule string `yaml:"schedule"`
}

type DatasetConfig struct {
	VideosPath   string          `yaml:"videos_path" validate:"required"`
	CommentsPath string          `yaml:"comments_path" validate:"required"`
	Delimiter    string          `yaml:"delimiter" validate:"len=1"`
	Columns      dataset.Columns `yaml:"columns"`
}

type IndexConfig struct {
	DefaultCount int    `yaml:"default_count" validate:"gte=1,lte=100"`
	StopWords    string `yaml:"stop_words" validate:"oneof=english none"`
}

type ServerConfig struct {
	Port int `yaml:"port" validate:"gte=1,lte=65535"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// AIConfig enables Gemini sentiment scoring when the comments file has no
// sentiment column. Leave the key empty to disable.
type AIConfig struct {
	GeminiAPIKey   string `yaml:"gemini_api_key"`
	Model          string `yaml:"model"`
	CacheDir       string `yaml:"cache_dir"`
	BatchSize      int    `yaml:"batch_size" validate:"gte=1,lte=200"`
	MaxPerVideo    int    `yaml:"max_comments_per_video" validate:"gte=0"`
	RequestDelayMs int    `yaml:"request_delay_ms" validate:"gte=0"`
}

// Enabled reports whether sentiment scoring is configured.
func (c AIConfig) Enabled() bool {
	return c.GeminiAPIKey != ""
}

// YouTubeConfig is only used by the dataset export mode.
type YouTubeConfig struct {
	APIKey             string   `yaml:"api_key"`
	ClientID           string   `yaml:"client_id"`
	ClientSecret       string   `yaml:"client_secret"`
	TokenFile          string   `yaml:"token_file"`
	VideoIDs           []string `yaml:"video_ids"`
	Keyword            string   `yaml:"keyword"`
	MaxVideos          int64    `yaml:"max_videos" validate:"gte=1"`
	MaxCommentsPerItem int64    `yaml:"max_comments_per_video" validate:"gte=0"`
	Concurrency        int      `yaml:"concurrency" validate:"gte=1,lte=32"`
}

type EmailConfig struct {
	Enabled    bool   `yaml:"enabled"`
	SMTPServer string `yaml:"smtp_server" validate:"required_if=Enabled true"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	FromEmail  string `yaml:"from_email" validate:"omitempty,email"`
	ToEmail    string `yaml:"to_email" validate:"omitempty,email"`
	TopN       int    `yaml:"top_n" validate:"gte=1"`
}

type MonitoringConfig struct {
	Metrics bool `yaml:"metrics"`
}

// Load reads CONFIG_FILE (default config.yaml) after loading .env. A missing
// config file is not an error: defaults and environment variables are used.
func Load() (*Config, error) {
	_ = godotenv.Load()

	configFile := os.Getenv("CONFIG_FILE")
	if configFile == "" {
		configFile = "config.yaml"
	}

	var cfg Config
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configFile, err)
		}
	case errors.Is(err, os.ErrNotExist) && os.Getenv("CONFIG_FILE") == "":
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	envFallback(&c.Dataset.VideosPath, "VIDEOS_PATH")
	envFallback(&c.Dataset.CommentsPath, "COMMENTS_PATH")
	envFallback(&c.AI.GeminiAPIKey, "GEMINI_API_KEY")
	envFallback(&c.YouTube.APIKey, "YOUTUBE_API_KEY")
	envFallback(&c.YouTube.ClientID, "GOOGLE_CLIENT_ID")
	envFallback(&c.YouTube.ClientSecret, "GOOGLE_CLIENT_SECRET")
	envFallback(&c.Email.Username, "EMAIL_USERNAME")
	envFallback(&c.Email.Password, "EMAIL_PASSWORD")

	// Log settings from the environment win over the file.
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
}

func envFallback(field *string, key string) {
	if *field == "" {
		*field = os.Getenv(key)
	}
}

func (c *Config) applyDefaults() {
	if c.Dataset.VideosPath == "" {
		c.Dataset.VideosPath = "data/videos-stats.csv"
	}
	if c.Dataset.CommentsPath == "" {
		c.Dataset.CommentsPath = "data/comments.csv"
	}
	if c.Dataset.Delimiter == "" {
		c.Dataset.Delimiter = ","
	}
	c.Dataset.Columns = withDefaultColumns(c.Dataset.Columns)

	if c.Index.DefaultCount == 0 {
		c.Index.DefaultCount = 5
	}
	if c.Index.StopWords == "" {
		c.Index.StopWords = "english"
	}

	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	if c.AI.Model == "" {
		c.AI.Model = "gemini-2.5-flash"
	}
	if c.AI.CacheDir == "" {
		c.AI.CacheDir = "data"
	}
	if c.AI.BatchSize == 0 {
		c.AI.BatchSize = 50
	}

	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if c.YouTube.MaxVideos == 0 {
		c.YouTube.MaxVideos = 50
	}
	if c.YouTube.MaxCommentsPerItem == 0 {
		c.YouTube.MaxCommentsPerItem = 20
	}
	if c.YouTube.Concurrency == 0 {
		c.YouTube.Concurrency = 4
	}

	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
	if c.Email.TopN == 0 {
		c.Email.TopN = 10
	}
}

func withDefaultColumns(cols dataset.Columns) dataset.Columns {
	def := dataset.DefaultColumns()
	fill := func(field *string, fallback string) {
		if strings.TrimSpace(*field) == "" {
			*field = fallback
		}
	}
	fill(&cols.VideoID, def.VideoID)
	fill(&cols.Title, def.Title)
	fill(&cols.Keyword, def.Keyword)
	fill(&cols.Views, def.Views)
	fill(&cols.Likes, def.Likes)
	fill(&cols.Comments, def.Comments)
	fill(&cols.PublishedAt, def.PublishedAt)
	fill(&cols.CommentText, def.CommentText)
	fill(&cols.CommentLikes, def.CommentLikes)
	fill(&cols.Sentiment, def.Sentiment)
	return cols
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints after defaults are applied.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return errors.New(strings.Join(msgs, "; "))
		}
		return err
	}
	return nil
}

// ValidateFetch checks the settings the YouTube export mode needs.
func (c *Config) ValidateFetch() error {
	if c.YouTube.APIKey == "" && (c.YouTube.ClientID == "" || c.YouTube.ClientSecret == "") {
		return fmt.Errorf("YouTube credentials are required (set YOUTUBE_API_KEY, or GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET)")
	}
	if len(c.YouTube.VideoIDs) == 0 && c.YouTube.Keyword == "" && c.YouTube.APIKey != "" {
		return fmt.Errorf("youtube.video_ids or youtube.keyword is required when using an API key")
	}
	return nil
}

// DelimiterRune returns the configured field delimiter.
func (c *Config) DelimiterRune() rune {
	for _, r := range c.Dataset.Delimiter {
		return r
	}
	return ','
}
