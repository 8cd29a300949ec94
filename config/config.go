package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Crawler   CrawlerConfig   `mapstructure:"crawler"`
	Processor ProcessorConfig `mapstructure:"processor"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Session   SessionConfig   `mapstructure:"session"`
	Bot       BotConfig       `mapstructure:"bot"`
	Server    ServerConfig    `mapstructure:"server"`
	Storage   StorageConfig   `mapstructure:"storage"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// LogFlags returns the stdlib log flags for component loggers. Debug mode
// (or log_level "debug") adds microsecond timestamps and call sites.
func (g GeneralConfig) LogFlags() int {
	if g.Debug || strings.EqualFold(g.LogLevel, "debug") {
		return log.LstdFlags | log.Lmicroseconds | log.Lshortfile
	}
	return log.LstdFlags
}

// LLMConfig configures the completion/embedding provider.
type LLMConfig struct {
	Provider        string        `mapstructure:"provider"` // openai-compatible
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	CompletionModel string        `mapstructure:"completion_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

func (l LLMConfig) Validate() error {
	if strings.TrimSpace(l.APIKey) == "" {
		return errors.New("llm.api_key is required (IITUBOT_LLM_API_KEY)")
	}
	return nil
}

// CrawlerConfig controls the breadth-first site crawl.
type CrawlerConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	Domain    string        `mapstructure:"domain"` // host suffix pages must match
	MaxPages  int           `mapstructure:"max_pages"`
	Delay     time.Duration `mapstructure:"delay"` // courtesy pause between fetches
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

func (c CrawlerConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("crawler.base_url is required")
	}
	if c.MaxPages <= 0 {
		return errors.New("crawler.max_pages must be positive")
	}
	return nil
}

// ProcessorConfig controls enhancement and chunking.
type ProcessorConfig struct {
	ChunkSize       int  `mapstructure:"chunk_size"`
	ChunkOverlap    int  `mapstructure:"chunk_overlap"`
	EnhanceEnabled  bool `mapstructure:"enhance_enabled"`
	EnhanceMaxChars int  `mapstructure:"enhance_max_chars"`
}

func (p ProcessorConfig) Validate() error {
	if p.ChunkSize <= 0 {
		return errors.New("processor.chunk_size must be positive")
	}
	if p.ChunkOverlap < 0 || p.ChunkOverlap >= p.ChunkSize {
		return errors.New("processor.chunk_overlap must be in [0, chunk_size)")
	}
	return nil
}

// KnowledgeConfig configures the vector collection.
type KnowledgeConfig struct {
	Backend            string  `mapstructure:"backend"` // sqlite or inmemory
	Path               string  `mapstructure:"path"`
	Collection         string  `mapstructure:"collection"`
	EmbeddingDim       int     `mapstructure:"embedding_dim"`
	RelevanceThreshold float64 `mapstructure:"relevance_threshold"`
	SearchK            int     `mapstructure:"search_k"`
	BatchSize          int     `mapstructure:"batch_size"`
}

// SessionConfig selects and bounds the conversation-session store.
type SessionConfig struct {
	Store string `mapstructure:"store"` // inmemory or redis
	// MaxSessions caps the in-memory store with LRU eviction by last
	// activity. 0 keeps sessions for process lifetime.
	MaxSessions int           `mapstructure:"max_sessions"`
	TTL         time.Duration `mapstructure:"ttl"` // redis key expiry
	Redis       RedisConfig   `mapstructure:"redis"`
}

// RedisConfig holds redis connection settings for the redis session store.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// BotConfig controls the answering protocol.
type BotConfig struct {
	MaxRetries      int    `mapstructure:"max_retries"` // refinement budget per query
	ContextWindow   int    `mapstructure:"context_window"`
	MaxContextChars int    `mapstructure:"max_context_chars"`
	UniversityName  string `mapstructure:"university_name"`
	OfficialSite    string `mapstructure:"official_site"`
}

// ServerConfig contains HTTP transport settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// StorageConfig locates the JSON artifact cache.
type StorageConfig struct {
	DataDir       string `mapstructure:"data_dir"`
	RawFile       string `mapstructure:"raw_file"`
	ProcessedFile string `mapstructure:"processed_file"`
}

// Validate checks settings that must be present before startup. A missing
// credential is fatal; everything else has a default.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Crawler.Validate(); err != nil {
		return err
	}
	return c.Processor.Validate()
}

// LoadConfig loads config from file, falling back to defaults and IITUBOT_*
// environment variables when no file is found.
func LoadConfig(path string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	setDefaults()

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("IITUBOT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// No file: defaults + env only.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")

	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.completion_model", "gpt-4o-mini")
	viper.SetDefault("llm.embedding_model", "text-embedding-3-small")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 1024)
	viper.SetDefault("llm.timeout", 30*time.Second)

	viper.SetDefault("crawler.base_url", "https://iitu.edu.kz")
	viper.SetDefault("crawler.domain", "iitu.edu.kz")
	viper.SetDefault("crawler.max_pages", 100)
	viper.SetDefault("crawler.delay", time.Second)
	viper.SetDefault("crawler.timeout", 10*time.Second)
	viper.SetDefault("crawler.user_agent", "IITUBot/1.0 (+https://iitu.edu.kz)")

	viper.SetDefault("processor.chunk_size", 1000)
	viper.SetDefault("processor.chunk_overlap", 200)
	viper.SetDefault("processor.enhance_enabled", true)
	viper.SetDefault("processor.enhance_max_chars", 2000)

	viper.SetDefault("knowledge.backend", "sqlite")
	viper.SetDefault("knowledge.path", "./data/knowledge.db")
	viper.SetDefault("knowledge.collection", "iitu_knowledge")
	viper.SetDefault("knowledge.embedding_dim", 1536)
	viper.SetDefault("knowledge.relevance_threshold", 0.5)
	viper.SetDefault("knowledge.search_k", 5)
	viper.SetDefault("knowledge.batch_size", 100)

	viper.SetDefault("session.store", "inmemory")
	viper.SetDefault("session.max_sessions", 0)
	viper.SetDefault("session.ttl", 48*time.Hour)
	viper.SetDefault("session.redis.addr", "localhost:6379")
	viper.SetDefault("session.redis.db", 0)

	viper.SetDefault("bot.max_retries", 3)
	viper.SetDefault("bot.context_window", 5)
	viper.SetDefault("bot.max_context_chars", 6000)
	viper.SetDefault("bot.university_name", "IITU")
	viper.SetDefault("bot.official_site", "https://iitu.edu.kz")

	viper.SetDefault("server.address", ":8080")

	viper.SetDefault("storage.data_dir", "data")
	viper.SetDefault("storage.raw_file", "scraped_data.json")
	viper.SetDefault("storage.processed_file", "processed_data.json")
}
