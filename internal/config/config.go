package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	LogLevel string         `yaml:"log_level"`
}

type SourceConfig struct {
	Kind string    `yaml:"kind"`
	CSV  CSVConfig `yaml:"csv"`
}

// CSVConfig locates the extract files. BasePath is a directory or an
// http(s) URL prefix.
type CSVConfig struct {
	BasePath string        `yaml:"base_path"`
	Files    CSVFiles      `yaml:"files"`
	Timeout  time.Duration `yaml:"timeout"`
	Retry    RetryConfig   `yaml:"retry"`
}

type CSVFiles struct {
	Talks   string `yaml:"talks"`
	Details string `yaml:"details"`
	Tags    string `yaml:"tags"`
	Images  string `yaml:"images"`
	Related string `yaml:"related"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
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

// Enabled reports whether a database is configured at all.
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

type MongoConfig struct {
	URI           string        `yaml:"uri"`
	Database      string        `yaml:"database"`
	Collection    string        `yaml:"collection"`
	BatchSize     int           `yaml:"batch_size"`
	Transactional bool          `yaml:"transactional"`
	Timeout       time.Duration `yaml:"timeout"`
}

type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

// PipelineConfig holds the enrichment choices left open by the source data.
type PipelineConfig struct {
	// DropNullIDs removes talks without an id before any join. When false
	// they flow through and the sink rejects the run.
	DropNullIDs bool `yaml:"drop_null_ids"`
	// StrictCardinality fails the run when images or talk extras repeat an
	// id while building detail records, instead of fanning out.
	StrictCardinality bool `yaml:"strict_cardinality"`
	// SortLists sorts tags and related videos for stable documents.
	SortLists  bool `yaml:"sort_lists"`
	Partitions int  `yaml:"partitions"`
}

type ScheduleConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
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

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Source.Kind == "" {
		c.Source.Kind = SourceCSV
	}
	files := &c.Source.CSV.Files
	if files.Talks == "" {
		files.Talks = "final_list.csv"
	}
	if files.Details == "" {
		files.Details = "details.csv"
	}
	if files.Tags == "" {
		files.Tags = "tags.csv"
	}
	if files.Images == "" {
		files.Images = "images.csv"
	}
	if files.Related == "" {
		files.Related = "related_videos.csv"
	}
	if c.Source.CSV.Timeout == 0 {
		c.Source.CSV.Timeout = 60 * time.Second
	}
	if c.Source.CSV.Retry.MaxAttempts == 0 {
		c.Source.CSV.Retry.MaxAttempts = 3
	}
	if c.Source.CSV.Retry.InitialBackoff == 0 {
		c.Source.CSV.Retry.InitialBackoff = 1 * time.Second
	}
	if c.Source.CSV.Retry.MaxBackoff == 0 {
		c.Source.CSV.Retry.MaxBackoff = 30 * time.Second
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "unibg_tedx_2025"
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = "tedx_data"
	}
	if c.Mongo.BatchSize == 0 {
		c.Mongo.BatchSize = 500
	}
	if c.Mongo.Timeout == 0 {
		c.Mongo.Timeout = 5 * time.Minute
	}
	if c.RabbitMQ.Exchange == "" {
		c.RabbitMQ.Exchange = "talk_enricher"
	}
	if c.RabbitMQ.RoutingKey == "" {
		c.RabbitMQ.RoutingKey = "runs"
	}
	if c.RabbitMQ.QueueName == "" {
		c.RabbitMQ.QueueName = "enrichment_runs"
	}
	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = 24 * time.Hour
	}
	if c.Schedule.Timeout == 0 {
		c.Schedule.Timeout = 30 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) validate() error {
	switch c.Source.Kind {
	case SourceCSV:
		if c.Source.CSV.BasePath == "" {
			return fmt.Errorf("source.csv.base_path is required")
		}
	case SourcePostgres:
		if !c.Database.Enabled() {
			return fmt.Errorf("database.host is required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.Pipeline.Partitions < 0 {
		return fmt.Errorf("pipeline.partitions must not be negative")
	}
	if c.Schedule.Interval <= 0 {
		return fmt.Errorf("schedule.interval must be positive")
	}
	if c.Schedule.Timeout <= 0 {
		return fmt.Errorf("schedule.timeout must be positive")
	}
	return nil
}
