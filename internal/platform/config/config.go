package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendRemote = "remote"
	BackendLocal  = "local"
)

type Config struct {
	Backend       string              `yaml:"backend"`
	DataDir       string              `yaml:"data_dir"`
	Gateway       GatewayConfig       `yaml:"gateway"`
	Auth          AuthConfig          `yaml:"auth"`
	Study         StudyConfig         `yaml:"study"`
	Assessment    AssessmentConfig    `yaml:"assessment"`
	Pronunciation PronunciationConfig `yaml:"pronunciation"`
	Log           LogConfig           `yaml:"log"`
	Server        ServerConfig        `yaml:"server"`
}

type GatewayConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type AuthConfig struct {
	Token     string `yaml:"token"`
	TokenFile string `yaml:"token_file"`
}

type StudyConfig struct {
	ModeFilter      string        `yaml:"mode_filter"`
	Interaction     string        `yaml:"interaction"`
	NewItemLimit    int           `yaml:"new_item_limit"`
	ReviewItemLimit int           `yaml:"review_item_limit"`
	CorrectDelay    time.Duration `yaml:"correct_delay"`
	IncorrectDelay  time.Duration `yaml:"incorrect_delay"`
}

type AssessmentConfig struct {
	ItemLimit int `yaml:"item_limit"`
}

type PronunciationConfig struct {
	LookupURL string  `yaml:"lookup_url"`
	Accent    string  `yaml:"accent"`
	Locale    string  `yaml:"locale"`
	Rate      float64 `yaml:"rate"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type ServerConfig struct {
	Addr  string `yaml:"addr"`
	Token string `yaml:"token"`
}

// DBPath is the SQLite file backing the local gateways.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "vocabhub.db")
}

func Default(dataDir string) Config {
	return Config{
		Backend: BackendLocal,
		DataDir: dataDir,
		Gateway: GatewayConfig{
			BaseURL: "http://127.0.0.1:8787",
			Timeout: 10 * time.Second,
		},
		Study: StudyConfig{
			ModeFilter:      "mixed",
			Interaction:     "reveal",
			NewItemLimit:    10,
			ReviewItemLimit: 20,
			CorrectDelay:    time.Second,
			IncorrectDelay:  2500 * time.Millisecond,
		},
		Assessment: AssessmentConfig{ItemLimit: 30},
		Pronunciation: PronunciationConfig{
			LookupURL: "https://api.dictionaryapi.dev/api/v2/entries/en/",
			Accent:    "us",
			Locale:    "en-US",
			Rate:      0.9,
		},
		Log:    LogConfig{Level: "info"},
		Server: ServerConfig{Addr: "127.0.0.1:8787"},
	}
}

// New builds the effective configuration: defaults, then the YAML file at
// path (if it exists), then VOCABHUB_* environment overrides.
func New(dataDir, path string) (Config, error) {
	if dataDir == "" {
		return Config{}, fmt.Errorf("data dir is required")
	}
	cfg := Default(dataDir)
	if path == "" {
		path = filepath.Join(dataDir, "config.yaml")
	}
	if err := cfg.loadFile(path); err != nil {
		return Config{}, err
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("VOCABHUB_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("VOCABHUB_GATEWAY_URL"); v != "" {
		c.Gateway.BaseURL = v
	}
	if v := os.Getenv("VOCABHUB_TOKEN"); v != "" {
		c.Auth.Token = v
	}
	if v := os.Getenv("VOCABHUB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("VOCABHUB_LOG_FILE"); v != "" {
		c.Log.File = v
	}
	if v := os.Getenv("VOCABHUB_SERVER_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if err := envInt("VOCABHUB_NEW_LIMIT", &c.Study.NewItemLimit); err != nil {
		return err
	}
	return envInt("VOCABHUB_REVIEW_LIMIT", &c.Study.ReviewItemLimit)
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fmt.Errorf("invalid %s %q: want an integer", key, v)
	}
	*dst = n
	return nil
}

func (c Config) Validate() error {
	switch c.Backend {
	case BackendLocal, BackendRemote:
	default:
		return fmt.Errorf("invalid backend %q (want local|remote)", c.Backend)
	}
	if c.Backend == BackendRemote && strings.TrimSpace(c.Gateway.BaseURL) == "" {
		return fmt.Errorf("gateway.base_url is required for the remote backend")
	}
	switch c.Study.Interaction {
	case "reveal", "spelling":
	default:
		return fmt.Errorf("invalid study.interaction %q (want reveal|spelling)", c.Study.Interaction)
	}
	if c.Study.NewItemLimit < 0 || c.Study.ReviewItemLimit < 0 || c.Assessment.ItemLimit < 0 {
		return fmt.Errorf("item limits must be non-negative")
	}
	if c.Pronunciation.Rate <= 0 {
		return fmt.Errorf("pronunciation.rate must be positive")
	}
	return nil
}
