package config

import (
	"errors"
	"fmt"
	"os"

	"storecrew/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Server     ServerConfig     `yaml:"server"`
	Admin      AdminConfig      `yaml:"admin"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Logging    LoggingConfig    `yaml:"logging"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Google     GoogleConfig     `yaml:"google"`
	Intake     IntakeConfig     `yaml:"intake"`
	Backup     BackupConfig     `yaml:"backup"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type ServerConfig struct {
	Port           int     `yaml:"port"`
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// AdminConfig carries the Basic auth credentials for the admin API.
// Values come from the environment via ${ADMIN_USER}/${ADMIN_PASS} expansion
// in the YAML, never from literals committed to the repo.
type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   int64  `yaml:"chat_id"`
}

type GoogleConfig struct {
	CredentialsFile       string `yaml:"credentials_file"`
	BookingsSpreadsheetID string `yaml:"bookings_spreadsheet_id"`
}

type IntakeConfig struct {
	ProgressTTLSeconds int `yaml:"progress_ttl_seconds"`
}

// BackupConfig controls periodic snapshots of the sqlite file. Schedule is a
// Go duration string, e.g. "24h".
type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	StoragePath   string `yaml:"storage_path"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
}

func Load(configPath string) (*Config, error) {
	// .env подхватывается если есть, иначе работаем с окружением как есть
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Admin.Username == "" || c.Admin.Password == "" {
		return errors.New("admin credentials are required")
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return errors.New("telegram chat_id is required when bot_token is set")
	}

	return nil
}

// ValidateCatalog checks the service catalog loaded from catalog.yaml.
func ValidateCatalog(cat *models.Catalog) error {
	if cat.Currency == "" {
		return errors.New("catalog currency is required")
	}
	if len(cat.Services) == 0 {
		return errors.New("catalog has no services")
	}

	serviceIDs := make(map[string]bool)
	for _, svc := range cat.Services {
		if svc.ID == "" {
			return fmt.Errorf("service '%s' has empty id", svc.Label)
		}
		if serviceIDs[svc.ID] {
			return fmt.Errorf("duplicate service id: %s", svc.ID)
		}
		if svc.BasePrice < 0 {
			return fmt.Errorf("service %s has negative base price", svc.ID)
		}
		serviceIDs[svc.ID] = true
	}

	optionIDs := make(map[string]bool)
	for _, opt := range cat.Options {
		if opt.ID == "" {
			return fmt.Errorf("option '%s' has empty id", opt.Label)
		}
		if optionIDs[opt.ID] {
			return fmt.Errorf("duplicate option id: %s", opt.ID)
		}
		if opt.UnitPrice < 0 {
			return fmt.Errorf("option %s has negative unit price", opt.ID)
		}
		optionIDs[opt.ID] = true
	}

	modifierIDs := make(map[string]bool)
	for _, mod := range cat.Modifiers {
		if mod.ID == "" {
			return fmt.Errorf("modifier '%s' has empty id", mod.Label)
		}
		if modifierIDs[mod.ID] {
			return fmt.Errorf("duplicate modifier id: %s", mod.ID)
		}
		switch mod.Kind {
		case models.ModifierFee:
			if mod.Amount < 0 {
				return fmt.Errorf("fee modifier %s has negative amount", mod.ID)
			}
		case models.ModifierDiscount:
			if mod.Percent < 0 || mod.Percent > 100 {
				return fmt.Errorf("discount modifier %s has percent outside 0-100", mod.ID)
			}
		default:
			return fmt.Errorf("modifier %s has unknown kind %q", mod.ID, mod.Kind)
		}
		modifierIDs[mod.ID] = true
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.RateLimitRPS == 0 {
		c.Server.RateLimitRPS = models.RateLimitRPS
	}
	if c.Server.RateLimitBurst == 0 {
		c.Server.RateLimitBurst = models.RateLimitBurst
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Intake.ProgressTTLSeconds == 0 {
		c.Intake.ProgressTTLSeconds = models.DefaultProgressTTL
	}
	if c.Backup.Enabled && c.Backup.StoragePath == "" {
		c.Backup.StoragePath = "data/backups"
	}
}
