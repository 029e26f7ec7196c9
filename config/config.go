package config

import (
	"fmt"
	"os"

	"github.com/ruslamp94/reglament-svetofor-v78/analyzer"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig        `yaml:"server"`
	Log        LogConfig           `yaml:"log"`
	Auth       AuthConfig          `yaml:"auth"`
	Users      []User              `yaml:"users"`
	Org        OrgConfig           `yaml:"org"`
	Thresholds analyzer.Thresholds `yaml:"thresholds"`
	Store      StoreConfig         `yaml:"store"`
	Archive    ArchiveConfig       `yaml:"archive"`
	Advisor    AdvisorConfig       `yaml:"advisor"`
	Templates  []analyzer.Template `yaml:"templates"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type AuthConfig struct {
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

// User is an account from the config file. PasswordHash is a bcrypt hash.
type User struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
	Role         string `yaml:"role"`
	FullName     string `yaml:"full_name"`
}

// Roles
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// OrgConfig identifies the operator's own organization. Exclusions are the
// substrings the extractor uses to avoid reporting the operator itself as
// the counterparty.
type OrgConfig struct {
	FullName   string   `yaml:"full_name"`
	ShortName  string   `yaml:"short_name"`
	INN        string   `yaml:"inn"`
	Exclusions []string `yaml:"exclusions"`
}

type StoreConfig struct {
	MaxReviews int `yaml:"max_reviews"`
}

// ArchiveConfig configures optional MinIO archival of uploaded originals.
type ArchiveConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

// AdvisorConfig holds API keys for the narrative AI reviewers. The system
// is fully functional with no provider configured.
type AdvisorConfig struct {
	OpenAIKey      string `yaml:"openai_key"`
	AnthropicKey   string `yaml:"anthropic_key"`
	YandexKey      string `yaml:"yandex_key"`
	YandexFolder   string `yaml:"yandex_folder"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Auth.TokenExpireHours == 0 {
		cfg.Auth.TokenExpireHours = 24
	}
	if cfg.Thresholds == (analyzer.Thresholds{}) {
		cfg.Thresholds = analyzer.DefaultThresholds()
	}
	if cfg.Archive.ExpireDays == 0 {
		cfg.Archive.ExpireDays = 7
	}
	if cfg.Advisor.TimeoutSeconds == 0 {
		cfg.Advisor.TimeoutSeconds = 90
	}
	if cfg.Org.ShortName == "" {
		cfg.Org.ShortName = "АО «СПК»"
	}
	if len(cfg.Org.Exclusions) == 0 {
		cfg.Org.Exclusions = []string{"СПК", "Старая"}
	}

	for i := range cfg.Users {
		if cfg.Users[i].Role == "" {
			cfg.Users[i].Role = RoleUser
		}
	}

	for _, t := range cfg.Templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %q: missing id", t.Name)
		}
	}

	return &cfg, nil
}

// FindUser finds a user by username
func (c *Config) FindUser(username string) *User {
	for i := range c.Users {
		if c.Users[i].Username == username {
			return &c.Users[i]
		}
	}
	return nil
}
