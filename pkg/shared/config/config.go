package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// Config is the top-level application configuration loaded from YAML.
type Config struct {
	Logger     Logger     `yaml:"logger"`
	Server     Server     `yaml:"server"`
	Redis      Redis      `yaml:"redis"`
	Queue      Queue      `yaml:"queue"`
	Worker     Worker     `yaml:"worker"`
	Classifier Classifier `yaml:"classifier"`
	Results    Results    `yaml:"results"`
	HttpClient HttpClient `yaml:"http_client"`
}

type Logger struct {
	Level string `yaml:"level"`
}

// Server holds the listen settings for the API/websocket process.
type Server struct {
	Address         string        `yaml:"address"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type Redis struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// Queue configures the analysis stream and its consumer group.
type Queue struct {
	Stream string `yaml:"stream"`
	Group  string `yaml:"group"`
}

// Worker configures the consumer pool attached to the analysis stream.
type Worker struct {
	Consumers     int           `yaml:"consumers"`
	BatchSize     int           `yaml:"batch_size"`
	BlockTimeout  time.Duration `yaml:"block_timeout"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
	ClaimInterval time.Duration `yaml:"claim_interval"`
	ClaimMinIdle  time.Duration `yaml:"claim_min_idle"`
}

// Classifier configures the external model inference service. An empty URL
// disables the classifier and detection runs pattern-only.
type Classifier struct {
	URL       string        `yaml:"url"`
	Threshold float64       `yaml:"threshold"`
	Timeout   time.Duration `yaml:"timeout"`
}

type Results struct {
	TTL time.Duration `yaml:"ttl"`
}

type HttpClient struct {
	Debug            bool          `yaml:"debug"`
	RetryCount       int           `yaml:"retry_count"`
	RetryWaitTime    time.Duration `yaml:"retry_wait_time"`
	RetryMaxWaitTime time.Duration `yaml:"retry_max_wait_time"`
	Timeout          time.Duration `yaml:"timeout"`
}

// ValidateConfigPath checks that the given path exists and is a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes a YAML file into the provided destination.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// NewConfig loads the configuration file, applies defaults and validates it.
func NewConfig(configPath string) (*Config, error) {
	config := &Config{}

	if err := LoadYAML(configPath, config); err != nil {
		return nil, err
	}
	config.ApplyDefaults()

	if err := ValidateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a configuration usable without a config file.
func Default() *Config {
	config := &Config{}
	config.ApplyDefaults()
	return config
}

// ApplyDefaults fills in zero-valued fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8001"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Redis.Address == "" {
		c.Redis.Address = "localhost:6379"
	}
	if c.Queue.Stream == "" {
		c.Queue.Stream = "code_analysis_stream"
	}
	if c.Queue.Group == "" {
		c.Queue.Group = "analysis_workers"
	}
	if c.Worker.Consumers == 0 {
		c.Worker.Consumers = 2
	}
	if c.Worker.BatchSize == 0 {
		c.Worker.BatchSize = 10
	}
	if c.Worker.BlockTimeout == 0 {
		c.Worker.BlockTimeout = time.Second
	}
	if c.Worker.RetryDelay == 0 {
		c.Worker.RetryDelay = time.Second
	}
	if c.Worker.ClaimInterval == 0 {
		c.Worker.ClaimInterval = 10 * time.Second
	}
	if c.Worker.ClaimMinIdle == 0 {
		c.Worker.ClaimMinIdle = 30 * time.Second
	}
	if c.Classifier.Threshold == 0 {
		c.Classifier.Threshold = 0.6
	}
	if c.Classifier.Timeout == 0 {
		c.Classifier.Timeout = 5 * time.Second
	}
	if c.Results.TTL == 0 {
		c.Results.TTL = time.Hour
	}
	if c.HttpClient.Timeout == 0 {
		c.HttpClient.Timeout = 10 * time.Second
	}
	if c.HttpClient.RetryWaitTime == 0 {
		c.HttpClient.RetryWaitTime = 500 * time.Millisecond
	}
	if c.HttpClient.RetryMaxWaitTime == 0 {
		c.HttpClient.RetryMaxWaitTime = 3 * time.Second
	}
}
