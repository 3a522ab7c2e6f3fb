package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	RabbitMQ    RabbitMQConfig    `yaml:"rabbitmq"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Assistant   AssistantConfig   `yaml:"assistant"`
	Import      ImportConfig      `yaml:"import"`
	Generation  GenerationConfig  `yaml:"generation"`
	Pipeline    PipelineConfig    `yaml:"pipeline"`
	LogLevel    string            `yaml:"log_level"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type MarketplaceConfig struct {
	FeedbackBaseURL string        `yaml:"feedback_base_url"`
	ContentBaseURL  string        `yaml:"content_base_url"`
	Timeout         time.Duration `yaml:"timeout"`
}

type AssistantConfig struct {
	BaseURL     string  `yaml:"base_url"`
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
}

type ImportConfig struct {
	BatchSize     int `yaml:"batch_size"`
	CardChunkSize int `yaml:"card_chunk_size"`
}

type GenerationConfig struct {
	// AllowRegenerate lifts the status guard on the single-item entry point,
	// letting an already generated or published item be re-drafted.
	AllowRegenerate bool `yaml:"allow_regenerate"`
}

type PipelineConfig struct {
	Interval   time.Duration `yaml:"interval"`
	RunTimeout time.Duration `yaml:"run_timeout"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "feedback_responder"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "replies"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "published_replies"
	}
	if c.Marketplace.FeedbackBaseURL == "" {
		c.Marketplace.FeedbackBaseURL = "https://feedbacks-api.wildberries.ru/api/v1"
	}
	if c.Marketplace.ContentBaseURL == "" {
		c.Marketplace.ContentBaseURL = "https://content-api.wildberries.ru/content/v2"
	}
	if c.Marketplace.Timeout == 0 {
		c.Marketplace.Timeout = 30 * time.Second
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = "gpt-4o-mini"
	}
	if c.Assistant.Temperature == 0 {
		c.Assistant.Temperature = 0.7
	}
	if c.Assistant.MaxTokens == 0 {
		c.Assistant.MaxTokens = 300
	}
	if c.Import.BatchSize == 0 {
		c.Import.BatchSize = 30
	}
	if c.Import.CardChunkSize == 0 {
		c.Import.CardChunkSize = 100
	}
	if c.Pipeline.Interval == 0 {
		c.Pipeline.Interval = 15 * time.Minute
	}
	if c.Pipeline.RunTimeout == 0 {
		c.Pipeline.RunTimeout = 10 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
