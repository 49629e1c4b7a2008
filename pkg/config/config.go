package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config representa a estrutura completa do config.yaml
type Config struct {
	App struct {
		Env             string `yaml:"env"`
		DefaultPlatform string `yaml:"default_platform"`
	} `yaml:"app"`

	// Infraestrutura Compartilhada
	Nats struct {
		URL string `yaml:"url"`
	} `yaml:"nats"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Database struct {
		URL string `yaml:"url"`
	} `yaml:"database"`

	Meilisearch struct {
		Host  string `yaml:"host"`
		Key   string `yaml:"key"`
		Index string `yaml:"index"`
	} `yaml:"meilisearch"`

	Browser struct {
		Headless bool   `yaml:"headless"`
		Bin      string `yaml:"bin"`
		// DebugPort expõe o monitor do Rod (resolver captcha via VNC). Vazio desliga.
		DebugPort          string `yaml:"debug_port"`
		NavigateTimeoutSec int    `yaml:"navigate_timeout_seconds"`
		CaptchaWaitSec     int    `yaml:"captcha_wait_seconds"`
	} `yaml:"browser"`

	Scraper struct {
		PageSize    int `yaml:"page_size"`
		PageDelayMs int `yaml:"page_delay_ms"`
		MaxRetries  int `yaml:"max_retries"`
		BaseDelayMs int `yaml:"base_delay_ms"`
		MaxDelayMs  int `yaml:"max_delay_ms"`
	} `yaml:"scraper"`

	Session struct {
		// Backend: "file" ou "redis".
		Backend  string `yaml:"backend"`
		Dir      string `yaml:"dir"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"session"`

	API struct {
		Port          string `yaml:"port"`
		MaxConcurrent int    `yaml:"max_concurrent"`
	} `yaml:"api"`

	Metrics struct {
		Port string `yaml:"port"`
	} `yaml:"metrics"`

	Worker struct {
		ID             string `yaml:"id"`
		JobSubject     string `yaml:"job_subject"`
		ResultSubject  string `yaml:"result_subject"`
		Durable        string `yaml:"durable"`
		DedupTTLHours  int    `yaml:"dedup_ttl_hours"`
		MinDelaySec    int    `yaml:"min_delay_seconds"`
		MaxDelaySec    int    `yaml:"max_delay_seconds"`
		SkipPersist    bool   `yaml:"skip_persist"`
		SkipIndex      bool   `yaml:"skip_index"`
		AckWaitMinutes int    `yaml:"ack_wait_minutes"`
	} `yaml:"worker"`
}

// PageDelay etc. convertem os campos numéricos do YAML.
func (c *Config) PageDelay() time.Duration {
	return time.Duration(c.Scraper.PageDelayMs) * time.Millisecond
}

func (c *Config) BaseDelay() time.Duration {
	return time.Duration(c.Scraper.BaseDelayMs) * time.Millisecond
}

func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.Scraper.MaxDelayMs) * time.Millisecond
}

func (c *Config) NavigateTimeout() time.Duration {
	return time.Duration(c.Browser.NavigateTimeoutSec) * time.Second
}

func (c *Config) CaptchaWait() time.Duration {
	return time.Duration(c.Browser.CaptchaWaitSec) * time.Second
}

func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Session.TTLHours) * time.Hour
}

func (c *Config) setDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.DefaultPlatform == "" {
		c.App.DefaultPlatform = "tiktok"
	}
	if c.Nats.URL == "" {
		c.Nats.URL = "nats://localhost:4222"
	}
	if c.Redis.Address == "" {
		c.Redis.Address = "localhost:6379"
	}
	if c.Meilisearch.Index == "" {
		c.Meilisearch.Index = "comments"
	}
	if c.Browser.NavigateTimeoutSec <= 0 {
		c.Browser.NavigateTimeoutSec = 20
	}
	if c.Browser.CaptchaWaitSec <= 0 {
		c.Browser.CaptchaWaitSec = 300
	}
	if c.Scraper.PageSize <= 0 {
		c.Scraper.PageSize = 50
	}
	if c.Scraper.PageDelayMs <= 0 {
		c.Scraper.PageDelayMs = 100
	}
	if c.Scraper.MaxRetries <= 0 {
		c.Scraper.MaxRetries = 3
	}
	if c.Scraper.BaseDelayMs <= 0 {
		c.Scraper.BaseDelayMs = 1000
	}
	if c.Scraper.MaxDelayMs <= 0 {
		c.Scraper.MaxDelayMs = 4000
	}
	if c.Session.Backend == "" {
		c.Session.Backend = "file"
	}
	if c.Session.Dir == "" {
		c.Session.Dir = "./sessions"
	}
	if c.API.Port == "" {
		c.API.Port = ":8080"
	}
	if c.API.MaxConcurrent <= 0 {
		c.API.MaxConcurrent = 2
	}
	if c.Metrics.Port == "" {
		c.Metrics.Port = ":9091"
	}
	if c.Worker.ID == "" {
		c.Worker.ID = "1"
	}
	if c.Worker.JobSubject == "" {
		c.Worker.JobSubject = "jobs.comments"
	}
	if c.Worker.ResultSubject == "" {
		c.Worker.ResultSubject = "data.comments_extracted"
	}
	if c.Worker.Durable == "" {
		c.Worker.Durable = "comments-worker-group"
	}
	if c.Worker.DedupTTLHours <= 0 {
		c.Worker.DedupTTLHours = 48
	}
	if c.Worker.MinDelaySec <= 0 {
		c.Worker.MinDelaySec = 3
	}
	if c.Worker.MaxDelaySec < c.Worker.MinDelaySec {
		c.Worker.MaxDelaySec = c.Worker.MinDelaySec + 5
	}
	if c.Worker.AckWaitMinutes <= 0 {
		c.Worker.AckWaitMinutes = 10
	}
}

// Default devolve a configuração usada quando não há config.yaml.
func Default() *Config {
	var cfg Config
	cfg.setDefaults()
	return &cfg
}

// Load lê e decodifica o YAML em path, preenchendo os campos vazios com os padrões.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("abrindo config %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("erro ao decodificar YAML: %w", err)
	}
	cfg.setDefaults()
	return &cfg, nil
}

// findConfig procura o config.yaml: CONFIG_PATH, depois subindo pastas (dev local).
func findConfig() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	for _, p := range []string{"config.yaml", "config/config.yaml", "../../config/config.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadConfig acha e carrega o config.yaml. Sem arquivo, segue com os padrões;
// arquivo presente mas inválido é fatal.
func LoadConfig() *Config {
	configPath := findConfig()
	if configPath == "" {
		log.Println("config.yaml não encontrado, usando padrões")
		return Default()
	}

	absPath, _ := filepath.Abs(configPath)
	log.Printf("Carregando config de: %s", absPath)

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("Erro fatal lendo config: %v", err)
	}
	return cfg
}
